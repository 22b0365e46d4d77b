package ch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clickhouseTC "github.com/testcontainers/testcontainers-go/modules/clickhouse"
)

// runMigrations manually creates the catalog schema
func runMigrations(ctx context.Context, src *ClickHouseSource) error {
	_ = src.conn.Exec(ctx, "DROP TABLE IF EXISTS books")

	return src.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS books (
			id Int64,
			title String,
			author String,
			cover_image_url String,
			year Int32,
			genre String,
			total_pages Int32
		) ENGINE = MergeTree()
		ORDER BY id
	`)
}

// insertBook adds a catalog row directly
func insertBook(ctx context.Context, src *ClickHouseSource, id int64, title, author string, year, totalPages int32) error {
	return src.conn.Exec(ctx,
		`INSERT INTO books (id, title, author, cover_image_url, year, genre, total_pages) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, title, author, "", year, "", totalPages)
}

// setupTestDB creates a test ClickHouse instance using testcontainers
func setupTestDB(t *testing.T) (*ClickHouseSource, func()) {
	ctx := context.Background()

	// Start ClickHouse container
	clickhouseContainer, err := clickhouseTC.Run(ctx,
		"clickhouse/clickhouse-server:24.3.3.102-alpine",
		clickhouseTC.WithUsername("default"),
		clickhouseTC.WithPassword(""),
		clickhouseTC.WithDatabase("default"),
	)
	require.NoError(t, err, "Failed to start ClickHouse container")

	// Get connection details
	host, err := clickhouseContainer.Host(ctx)
	require.NoError(t, err)

	port, err := clickhouseContainer.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	// Create database connection
	src, err := New(host, port.Int(), "default", "default", "", false)
	require.NoError(t, err, "Failed to connect to ClickHouse")

	// Run migrations manually (goose doesn't work well with ClickHouse)
	err = runMigrations(ctx, src)
	require.NoError(t, err, "Failed to run migrations")

	// Cleanup function
	cleanup := func() {
		src.Close()
		clickhouseContainer.Terminate(ctx)
	}

	return src, cleanup
}

func TestClickHouseSource_FetchAll(t *testing.T) {
	src, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	// Initially should be empty
	books, err := src.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	// Add catalog rows out of order
	require.NoError(t, insertBook(ctx, src, 3, "The Hobbit", "J.R.R. Tolkien", 1937, 310))
	require.NoError(t, insertBook(ctx, src, 1, "Dune", "Frank Herbert", 1965, 412))
	require.NoError(t, insertBook(ctx, src, 2, "Neuromancer", "William Gibson", 1984, 271))

	// Should return books ordered by id
	books, err = src.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)

	assert.Equal(t, int64(1), books[0].ID)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Frank Herbert", books[0].Author)
	assert.Equal(t, 412, books[0].TotalPages)

	assert.Equal(t, int64(2), books[1].ID)
	assert.Equal(t, int64(3), books[2].ID)

	// Progress fields come back zeroed; the tracker backfills them
	assert.Equal(t, 0, books[0].PagesRead)
	assert.False(t, books[0].IsCompleted)
	assert.Empty(t, books[0].ReadingStatus)
}

func TestClickHouseSource_Initialize(t *testing.T) {
	src, cleanup := setupTestDB(t)
	defer cleanup()

	assert.NoError(t, src.Initialize(context.Background()))
}

func TestClickHouseSource_Close(t *testing.T) {
	src, cleanup := setupTestDB(t)
	defer cleanup()

	err := src.Close()
	assert.NoError(t, err)

	// Second close should not panic
	err = src.Close()
	assert.NoError(t, err)
}
