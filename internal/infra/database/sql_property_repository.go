// internal/infra/database/sql_property_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLPropertyStore keeps string properties in a single key/value table.
// Queries use ? placeholders, rebound for PostgreSQL by sqlx.
type SQLPropertyStore struct {
	db *sqlx.DB
}

func NewSQLPropertyStore(db *sql.DB, dialect Dialect) *SQLPropertyStore {
	return &SQLPropertyStore{db: sqlx.NewDb(db, string(dialect))}
}

// EnsureTable creates the properties table if needed.
func (r *SQLPropertyStore) EnsureTable(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS script_properties (
               key        VARCHAR(255) PRIMARY KEY,
               value      TEXT NOT NULL,
               updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
           )`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("error creating script_properties table: %w", err)
	}
	return nil
}

func (r *SQLPropertyStore) GetProperty(ctx context.Context, key string) (string, bool, error) {
	query := r.db.Rebind(`SELECT value FROM script_properties WHERE key = ?`)
	var value string
	err := r.db.GetContext(ctx, &value, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error getting property %s: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLPropertyStore) SetProperty(ctx context.Context, key, value string) error {
	query := r.db.Rebind(`INSERT INTO script_properties (key, value, updated_at)
               VALUES (?, ?, CURRENT_TIMESTAMP)
               ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP`)
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("error setting property %s: %w", key, err)
	}
	return nil
}
