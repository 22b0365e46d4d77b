package stubs

import (
	"context"
	"sort"
	"sync"

	"readtrack/internal/models"
)

// MockSource is an in-memory implementation of the Source interface for
// testing and mock mode
type MockSource struct {
	mu    sync.RWMutex
	books map[int64]models.Book
}

// NewMockSource creates a new mock catalog
func NewMockSource() *MockSource {
	return &MockSource{
		books: make(map[int64]models.Book),
	}
}

// Initialize seeds a default sample catalog
func (m *MockSource) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.books[1] = models.Book{
		ID:         1,
		Title:      "Dune",
		Author:     "Frank Herbert",
		Year:       1965,
		Genre:      "Science Fiction",
		TotalPages: 412,
	}
	m.books[2] = models.Book{
		ID:         2,
		Title:      "Neuromancer",
		Author:     "William Gibson",
		Year:       1984,
		Genre:      "Science Fiction",
		TotalPages: 271,
	}
	m.books[3] = models.Book{
		ID:         3,
		Title:      "The Hobbit",
		Author:     "J.R.R. Tolkien",
		Year:       1937,
		Genre:      "Fantasy",
		TotalPages: 310,
	}

	return nil
}

// AddBook puts a book into the catalog, replacing any existing entry with
// the same id
func (m *MockSource) AddBook(book models.Book) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.books[book.ID] = book
}

// FetchAll returns all books sorted by id
func (m *MockSource) FetchAll(ctx context.Context) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	books := make([]models.Book, 0, len(m.books))
	for _, book := range m.books {
		books = append(books, book)
	}

	sort.Slice(books, func(i, j int) bool {
		return books[i].ID < books[j].ID
	})

	return books, nil
}

// Close does nothing for the mock catalog
func (m *MockSource) Close() error {
	return nil
}
