// Package store persists document templates. The interface is small on
// purpose so that the in-memory implementation used by the CLI and tests can
// later be swapped for a database-backed one.
package store

import (
	"context"
	"time"

	"github.com/hauswerk/vorlage/document"
)

// Template is a stored document template.
type Template struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Content   document.Node `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Store is the template persistence interface. Implementations report
// failures as recovery errors so callers can classify them uniformly.
type Store interface {
	// Create stores a new template and returns it with its assigned ID.
	Create(ctx context.Context, name string, content document.Node) (Template, error)

	// Get returns the template with the given ID.
	Get(ctx context.Context, id string) (Template, error)

	// List returns all templates ordered by name.
	List(ctx context.Context) ([]Template, error)

	// Update replaces name and content of an existing template.
	Update(ctx context.Context, id string, name string, content document.Node) (Template, error)

	// Delete removes the template with the given ID.
	Delete(ctx context.Context, id string) error
}
