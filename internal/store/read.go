package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound reports a missing object or field.
var ErrNotFound = errors.New("not found")

// HasObject reports whether an object row exists. The store is queried
// every call; callers must not cache the answer, since concurrent
// writers in the same or another session can delete the row.
func (s *Store) HasObject(ctx context.Context, table string, key int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM objects WHERE tbl = ? AND key = ?`, table, key,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has object: %w", err)
	}
	return true, nil
}

// Field returns the stored value bytes for one field. Missing objects
// and unset fields both fail with ErrNotFound.
func (s *Store) Field(ctx context.Context, table string, key int64, name string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM fields WHERE tbl = ? AND key = ? AND name = ?`, table, key, name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("field %q on %s[%d]: %w", name, table, key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read field: %w", err)
	}
	return value, nil
}

// Fields returns all set fields of an object, ordered by field name for
// deterministic iteration.
func (s *Store) Fields(ctx context.Context, table string, key int64) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value FROM fields WHERE tbl = ? AND key = ? ORDER BY name ASC`, table, key,
	)
	if err != nil {
		return nil, fmt.Errorf("read fields: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var name string
		var value []byte
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("read fields: scan: %w", err)
		}
		out[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read fields: %w", err)
	}
	return out, nil
}

// Objects returns the keys of every object in a table in ascending
// order.
func (s *Store) Objects(ctx context.Context, table string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM objects WHERE tbl = ? ORDER BY key ASC`, table,
	)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	defer rows.Close()

	var keys []int64
	for rows.Next() {
		var key int64
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("list objects: scan: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	return keys, nil
}

// Tables returns every table name holding at least one object, in
// ascending order.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT tbl FROM objects ORDER BY tbl ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("list tables: scan: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}
