package migrations

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestApply_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Apply(db))
	require.NoError(t, Apply(db))

	_, err = db.Exec("INSERT INTO cache_entries (namespace, key, value, inserted_at) VALUES ('omdb', 'k', '{}', 1)")
	require.NoError(t, err)
}
