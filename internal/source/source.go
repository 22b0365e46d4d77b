package source

import (
	"context"

	"readtrack/internal/models"
)

// Source defines the read-only provider of the book catalog. The tracker
// loads the catalog once per session and never writes back; all progress
// mutation stays in memory.
type Source interface {
	// FetchAll returns every book in the catalog
	FetchAll(ctx context.Context) ([]models.Book, error)

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
