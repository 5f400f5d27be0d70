package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	_ "github.com/lib/pq"

	"github.com/hjs-etl/internal/config"
)

// Connection holds the database connection
type Connection struct {
	DB *sql.DB
}

// NewConnection opens the warehouse and pings it, retrying a fixed number of
// times with a fixed delay while the database comes up.
func NewConnection(ctx context.Context, settings config.Settings) (*Connection, error) {
	tries := max(settings.ConnectRetries, 1)
	attempt := 0

	open := func() (*sql.DB, error) {
		attempt++
		db, err := sql.Open("postgres", settings.DSN())
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to open database: %w", err))
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			fmt.Printf("Database not ready (attempt %d/%d): %v\n", attempt, tries, err)
			return nil, err
		}
		return db, nil
	}

	db, err := backoff.Retry(ctx, open,
		backoff.WithBackOff(backoff.NewConstantBackOff(settings.ConnectDelay)),
		backoff.WithMaxTries(uint(tries)),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Single writer per process
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	return &Connection{DB: db}, nil
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.DB.Close()
}
