package store

import (
	"context"
	"fmt"
)

// CreateObject inserts a new object row in the given table and returns
// its key. Keys are allocated per table, starting at 1, and are never
// reused within a table's lifetime unless the highest object is deleted.
func (s *Store) CreateObject(ctx context.Context, table string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("create object: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var key int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(key), 0) + 1 FROM objects WHERE tbl = ?`, table,
	).Scan(&key)
	if err != nil {
		return 0, fmt.Errorf("create object: allocate key: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO objects (tbl, key) VALUES (?, ?)`, table, key,
	); err != nil {
		return 0, fmt.Errorf("create object: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("create object: commit: %w", err)
	}
	return key, nil
}

// DeleteObject removes an object row. Field rows cascade-delete with it.
// Deleting an object that does not exist fails with ErrNotFound.
func (s *Store) DeleteObject(ctx context.Context, table string, key int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM objects WHERE tbl = ? AND key = ?`, table, key,
	)
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete object: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete object %s[%d]: %w", table, key, ErrNotFound)
	}
	return nil
}

// SetField upserts a field value on an existing object. The value bytes
// are stored verbatim. Setting a field on a missing object fails with
// ErrNotFound rather than a bare foreign-key violation.
func (s *Store) SetField(ctx context.Context, table string, key int64, name string, value []byte) error {
	ok, err := s.HasObject(ctx, table, key)
	if err != nil {
		return fmt.Errorf("set field: %w", err)
	}
	if !ok {
		return fmt.Errorf("set field %q on %s[%d]: %w", name, table, key, ErrNotFound)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fields (tbl, key, name, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(tbl, key, name) DO UPDATE SET value = excluded.value
	`, table, key, name, value)
	if err != nil {
		return fmt.Errorf("set field: %w", err)
	}
	return nil
}

// DeleteField removes a single field row. Missing fields fail with
// ErrNotFound.
func (s *Store) DeleteField(ctx context.Context, table string, key int64, name string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM fields WHERE tbl = ? AND key = ? AND name = ?`, table, key, name,
	)
	if err != nil {
		return fmt.Errorf("delete field: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete field: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete field %q on %s[%d]: %w", name, table, key, ErrNotFound)
	}
	return nil
}
