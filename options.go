package propkit

import (
	"log/slog"

	"github.com/zero-day-ai/propkit/property"
	"github.com/zero-day-ai/propkit/schema"
)

// Option configures New.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	schemaPath string
	documents  []*schema.Document
	defs       []property.Definition
}

// WithLogger sets the logger handed to the container. If not provided,
// slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithSchemaFile loads a schema document from path (a file, or a directory
// holding schema.yaml) and applies it.
func WithSchemaFile(path string) Option {
	return func(c *config) {
		c.schemaPath = path
	}
}

// WithSchema applies an already parsed schema document. It may be given
// several times; documents apply in order.
func WithSchema(doc *schema.Document) Option {
	return func(c *config) {
		c.documents = append(c.documents, doc)
	}
}

// WithDefinitions declares properties after every schema document.
func WithDefinitions(defs ...property.Definition) Option {
	return func(c *config) {
		c.defs = append(c.defs, defs...)
	}
}
