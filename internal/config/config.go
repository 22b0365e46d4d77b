package config

import (
	"fmt"
	"os"
	"strconv"
)

// Catalog source kinds
const (
	SourceMock       = "mock"
	SourceFile       = "file"
	SourceClickHouse = "clickhouse"
)

// ClickHouseConfig holds the connection settings for the catalog database
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	UseTLS   bool
}

// Config holds the application configuration
type Config struct {
	Port string

	// Catalog source selection
	BookSource string // mock, file or clickhouse
	BooksFile  string // path to books.json (required for the file source)

	ClickHouse ClickHouseConfig
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	config.Port = os.Getenv("PORT")
	if config.Port == "" {
		config.Port = "8080"
	}

	config.BookSource = os.Getenv("BOOK_SOURCE")
	if config.BookSource == "" {
		config.BookSource = SourceMock
	}

	switch config.BookSource {
	case SourceMock:
		// Nothing else required

	case SourceFile:
		config.BooksFile = os.Getenv("BOOKS_FILE")
		if config.BooksFile == "" {
			return nil, fmt.Errorf("BOOKS_FILE is required when BOOK_SOURCE is file")
		}

	case SourceClickHouse:
		clickhouse, err := LoadClickHouseFromEnv()
		if err != nil {
			return nil, err
		}
		config.ClickHouse = *clickhouse

	default:
		return nil, fmt.Errorf("invalid BOOK_SOURCE %q (expected mock, file or clickhouse)", config.BookSource)
	}

	return config, nil
}

// LoadClickHouseFromEnv loads the catalog database settings on their own.
// The migration runner uses this directly: migrations always target
// ClickHouse regardless of which source the application itself is running on.
func LoadClickHouseFromEnv() (*ClickHouseConfig, error) {
	clickhouse := &ClickHouseConfig{}

	clickhouse.Host = os.Getenv("CLICKHOUSE_HOST")
	if clickhouse.Host == "" {
		return nil, fmt.Errorf("CLICKHOUSE_HOST is required")
	}

	portStr := os.Getenv("CLICKHOUSE_PORT")
	if portStr == "" {
		clickhouse.Port = 9000 // Default ClickHouse native port
	} else {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid CLICKHOUSE_PORT: %w", err)
		}
		clickhouse.Port = port
	}

	clickhouse.Database = os.Getenv("CLICKHOUSE_DATABASE")
	if clickhouse.Database == "" {
		clickhouse.Database = "default"
	}

	clickhouse.User = os.Getenv("CLICKHOUSE_USER")
	if clickhouse.User == "" {
		clickhouse.User = "default"
	}

	clickhouse.Password = os.Getenv("CLICKHOUSE_PASSWORD")
	// Password is optional, can be empty

	clickhouse.UseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"

	return clickhouse, nil
}

// DSN renders the database/sql connection string for the goose migration
// runner
func (c ClickHouseConfig) DSN() string {
	dsn := fmt.Sprintf("clickhouse://%s:%s@%s:%d/%s?dial_timeout=10s&max_execution_time=60",
		c.User, c.Password, c.Host, c.Port, c.Database)
	if c.UseTLS {
		dsn += "&secure=true"
	}
	return dsn
}
