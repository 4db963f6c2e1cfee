package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"triage_server/core/port/out"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// PostgresStore implements out.KeyValueStore as a two-column table.
type PostgresStore struct {
	db    *sqlx.DB
	table string // quoted

	getQuery    string
	upsertQuery string
	deleteQuery string
}

var _ out.KeyValueStore = (*PostgresStore)(nil)

// NewPostgresStore validates the table name; call EnsureSchema before first use.
func NewPostgresStore(db *sqlx.DB, table string) (*PostgresStore, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableID, table)
	}
	t := pq.QuoteIdentifier(table)
	return &PostgresStore{
		db:          db,
		table:       t,
		getQuery:    `SELECT value FROM ` + t + ` WHERE key = $1`,
		upsertQuery: `INSERT INTO ` + t + ` (key, value, updated_at) VALUES ($1, $2, NOW()) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		deleteQuery: `DELETE FROM ` + t + ` WHERE key = $1`,
	}, nil
}

// EnsureSchema creates the table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + s.table + ` (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	var value []byte
	if err := s.db.GetContext(ctx, &value, s.getQuery, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := s.db.ExecContext(ctx, s.upsertQuery, key, value)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.deleteQuery, key)
	return err
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
