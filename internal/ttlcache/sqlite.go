package ttlcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore persists entries in the cache_entries table, one namespace per
// cache so several caches can share a database. Values are stored as JSON.
type SQLiteStore[V any] struct {
	db        *sql.DB
	namespace string
	timeout   time.Duration
}

// NewSQLiteStore creates a store for namespace. The schema from the
// migrations package must already be applied.
func NewSQLiteStore[V any](db *sql.DB, namespace string) *SQLiteStore[V] {
	return &SQLiteStore[V]{db: db, namespace: namespace, timeout: 5 * time.Second}
}

func (s *SQLiteStore[V]) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *SQLiteStore[V]) Load(key string) (Entry[V], bool, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	var (
		value    string
		inserted int64
		entry    Entry[V]
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT value, inserted_at FROM cache_entries WHERE namespace = ? AND key = ?",
		s.namespace, key,
	).Scan(&value, &inserted)
	if errors.Is(err, sql.ErrNoRows) {
		return entry, false, nil
	}
	if err != nil {
		return entry, false, fmt.Errorf("cache load: %w", err)
	}

	if err := json.Unmarshal([]byte(value), &entry.Value); err != nil {
		return entry, false, fmt.Errorf("cache decode %q: %w", key, err)
	}
	entry.InsertedAt = time.Unix(0, inserted)
	return entry, true, nil
}

func (s *SQLiteStore[V]) Save(key string, entry Entry[V]) error {
	data, err := json.Marshal(entry.Value)
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", key, err)
	}

	ctx, cancel := s.ctx()
	defer cancel()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (namespace, key, value, inserted_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, inserted_at = excluded.inserted_at`,
		s.namespace, key, string(data), entry.InsertedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("cache save: %w", err)
	}
	return nil
}

func (s *SQLiteStore[V]) Delete(key string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE namespace = ? AND key = ?", s.namespace, key)
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (s *SQLiteStore[V]) Clear() error {
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE namespace = ?", s.namespace)
	if err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

func (s *SQLiteStore[V]) Keys() ([]string, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		"SELECT key FROM cache_entries WHERE namespace = ? ORDER BY key", s.namespace)
	if err != nil {
		return nil, fmt.Errorf("cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("cache keys scan: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// PruneBefore removes entries inserted at or before cutoff.
func (s *SQLiteStore[V]) PruneBefore(cutoff time.Time) (int64, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE namespace = ? AND inserted_at <= ?",
		s.namespace, cutoff.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return result.RowsAffected()
}
