package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/google/uuid"

	"github.com/zero-day-ai/propkit/property"
)

// ErrNotFound is returned when no snapshot exists under an id. It matches
// fs.ErrNotExist.
var ErrNotFound = fmt.Errorf("snapshot not found: %w", fs.ErrNotExist)

// ErrEmptyID is returned by Load and Delete when id is empty.
var ErrEmptyID = errors.New("snapshot id is empty")

// Store persists container snapshots by id.
type Store interface {
	// Save writes the current state of src under id and returns the id.
	// An empty id is replaced by a new UUID.
	Save(ctx context.Context, id string, src property.Arrayer) (string, error)

	// Load populates dst from the snapshot stored under id.
	Load(ctx context.Context, id string, dst property.Populator, opts ...property.PopulateOption) error

	// Delete removes the snapshot stored under id.
	Delete(ctx context.Context, id string) error

	// List returns every stored id in ascending order.
	List(ctx context.Context) ([]string, error)

	// Close releases the backend connection.
	Close() error
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
