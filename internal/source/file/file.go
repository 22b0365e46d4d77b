package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"readtrack/internal/models"
)

// FileSource serves the book catalog from a JSON file on disk
// (the books.json format)
type FileSource struct {
	path string
}

// New creates a catalog source backed by the given JSON file
func New(path string) *FileSource {
	return &FileSource{path: path}
}

// Initialize verifies the catalog file exists and decodes
func (s *FileSource) Initialize(ctx context.Context) error {
	if _, err := s.FetchAll(ctx); err != nil {
		return err
	}
	return nil
}

// FetchAll reads and decodes the full catalog. Partial per-book fields are
// fine: absent progress fields decode to zero values and the tracker
// backfills them.
func (s *FileSource) FetchAll(ctx context.Context) ([]models.Book, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", s.path, err)
	}

	var books []models.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("failed to decode catalog file %s: %w", s.path, err)
	}
	return books, nil
}

// Close does nothing for a file-backed catalog
func (s *FileSource) Close() error {
	return nil
}
