// Package postgres wraps database/sql with the lib/pq driver for storing and
// reading records in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/recordsearch/pkg/resilience"
	_ "github.com/lib/pq"
)

type Client struct {
	DB  *sql.DB
	cfg config.PostgresConfig
}

// New opens a connection pool and pings it, retrying transient failures.
func New(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	err = resilience.Retry(ctx, "postgres-ping", resilience.RetryConfig{}, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{DB: db, cfg: cfg}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

func (c *Client) InTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction after error %v: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// QueryLines runs query in a read-only transaction and returns the first
// column of every row, in row order. NULL values become empty strings.
func (c *Client) QueryLines(ctx context.Context, query string) ([]string, error) {
	var lines []string
	err := c.InTx(ctx, &sql.TxOptions{ReadOnly: true}, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("querying records: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var line sql.NullString
			if err := rows.Scan(&line); err != nil {
				return fmt.Errorf("scanning record row: %w", err)
			}
			lines = append(lines, line.String)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

const createRecordsTable = `CREATE TABLE IF NOT EXISTS records (
	position INTEGER PRIMARY KEY,
	line     TEXT NOT NULL
)`

// ReplaceLines swaps the contents of the records table for lines in a single
// transaction, so readers never observe a partial set.
func (c *Client) ReplaceLines(ctx context.Context, lines []string) error {
	return c.InTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, createRecordsTable); err != nil {
			return fmt.Errorf("creating records table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
			return fmt.Errorf("clearing records: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (position, line) VALUES ($1, $2)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()
		for i, line := range lines {
			if _, err := stmt.ExecContext(ctx, i, line); err != nil {
				return fmt.Errorf("inserting record %d: %w", i, err)
			}
		}
		return nil
	})
}
