package ch

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"

	"readtrack/internal/models"
)

// ClickHouseSource serves the book catalog from a ClickHouse database
type ClickHouseSource struct {
	conn clickhouse.Conn
}

// New creates a new ClickHouse catalog connection
func New(host string, port int, database, user, password string, useTLS bool) (*ClickHouseSource, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseSource{conn: conn}, nil
}

// Initialize is a no-op - the books table is managed via migrations
func (s *ClickHouseSource) Initialize(ctx context.Context) error {
	// Tables are managed via migrations (see migrations/ directory)
	// This method is kept for interface compatibility
	return nil
}

// FetchAll returns every book in the catalog ordered by id. Progress fields
// are not stored here; the tracker backfills them on load.
func (s *ClickHouseSource) FetchAll(ctx context.Context) ([]models.Book, error) {
	rows, err := s.conn.Query(ctx, `SELECT id, title, author, cover_image_url, year, genre, total_pages FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var (
			id         int64
			title      string
			author     string
			coverURL   string
			year       int32
			genre      string
			totalPages int32
		)
		if err := rows.Scan(&id, &title, &author, &coverURL, &year, &genre, &totalPages); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, models.Book{
			ID:            id,
			Title:         title,
			Author:        author,
			CoverImageURL: coverURL,
			Year:          int(year),
			Genre:         genre,
			TotalPages:    int(totalPages),
		})
	}
	return books, nil
}

// Close closes the database connection
func (s *ClickHouseSource) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
