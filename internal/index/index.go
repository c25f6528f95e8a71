package index

import (
	"context"

	"github.com/starford/lcsc2kicad/internal/models"
)

// Catalog defines the component catalog operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type Catalog interface {
	UpsertComponent(ctx context.Context, c models.ComponentSummary) error
	DeleteComponent(ctx context.Context, id string) error
	GetComponent(ctx context.Context, id string) (*models.ComponentSummary, error)
	ListComponents(ctx context.Context, limit, offset int, sort string) ([]models.ComponentSummary, int, error)
	Search(ctx context.Context, query string, limit int) ([]models.ComponentSummary, error)
	AllIDs(ctx context.Context) (map[string]struct{}, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
