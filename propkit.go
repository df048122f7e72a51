package propkit

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/zero-day-ai/propkit/property"
	"github.com/zero-day-ai/propkit/schema"
)

// New creates a container and declares its properties from the schema file,
// schema documents and definitions given as options, in that order.
//
// Example:
//
//	c, err := propkit.New(
//	    propkit.WithSchemaFile("schemas/order.yaml"),
//	    propkit.WithDefinitions(property.Definition{
//	        Name:       "note",
//	        Constraint: constraint.MustParse("string|null"),
//	    }),
//	)
func New(opts ...Option) (*property.Container, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	documents := cfg.documents
	if cfg.schemaPath != "" {
		doc, err := schema.Load(cfg.schemaPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load schema: %w", err)
		}
		documents = append([]*schema.Document{doc}, documents...)
	}

	c := property.New(property.WithLogger(cfg.logger))
	for _, doc := range documents {
		if err := doc.Apply(c); err != nil {
			return nil, fmt.Errorf("failed to apply schema %q: %w", doc.Name, err)
		}
	}
	if err := c.Define(cfg.defs...); err != nil {
		return nil, err
	}

	cfg.logger.Debug("container created",
		"schemas", len(documents),
		"properties", len(c.ListPropertyNames()))
	return c, nil
}

// CloseWithLog attempts to close the provided resource and logs any error
// at warning level. This is intended for use in defer statements, typically
// with a snapshot store.
//
// If logger is nil, slog.Default() is used.
//
//	defer propkit.CloseWithLog(st, logger, "snapshot store")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
