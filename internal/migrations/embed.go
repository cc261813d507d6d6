// Package migrations provides embedded SQL migration files.
package migrations

import (
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed sql/001_cache.sql
var CacheSQL string

// Apply runs every migration. Statements are idempotent.
func Apply(db *sql.DB) error {
	if _, err := db.Exec(CacheSQL); err != nil {
		return fmt.Errorf("migrate cache: %w", err)
	}
	return nil
}
