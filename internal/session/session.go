// Package session provides the live database context: sessions own a
// store connection and hand out managed object wrappers that mixed
// values can reference.
//
// A session is either typed (carries a compiled schema and resolves
// declared classes statically) or dynamic (no schema; every object is
// addressed by table name). The capability is an explicit flag on the
// session, queried by the value layer when it resolves object
// references.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/karstdb/karst/internal/mixed"
	"github.com/karstdb/karst/internal/schema"
	"github.com/karstdb/karst/internal/store"
)

// Session is a live connection to a karst database. Each Session has
// its own identity: two sessions over the same file are distinct, and
// object references do not transfer between them.
type Session struct {
	st  *store.Store
	sch *schema.Schema // nil for dynamic sessions
	id  string
}

// OpenTyped opens a session with static resolution backed by a compiled
// schema.
func OpenTyped(path string, sch *schema.Schema) (*Session, error) {
	if sch == nil {
		return nil, fmt.Errorf("open typed session: schema is required")
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open typed session: %w", err)
	}
	return &Session{st: st, sch: sch, id: uuid.NewString()}, nil
}

// OpenDynamic opens a session without a schema. Every object reference
// it resolves is dynamically named.
func OpenDynamic(path string) (*Session, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dynamic session: %w", err)
	}
	return &Session{st: st, id: uuid.NewString()}, nil
}

// Close releases the session's store connection.
func (s *Session) Close() error {
	return s.st.Close()
}

// ID uniquely identifies this session instance.
func (s *Session) ID() string {
	return s.id
}

// Typed reports whether schema-backed static resolution is available.
func (s *Session) Typed() bool {
	return s.sch != nil
}

// Schema returns the compiled schema, or nil for dynamic sessions.
func (s *Session) Schema() *schema.Schema {
	return s.sch
}

// ClassForTable maps a storage table to its declared class name.
// Dynamic sessions report every table as undeclared.
func (s *Session) ClassForTable(table string) (string, error) {
	if s.sch == nil {
		return "", fmt.Errorf("table %q: %w", table, schema.ErrClassNotFound)
	}
	c, err := s.sch.ClassForTable(table)
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

// Resolve constructs a managed object wrapper for a declared class and
// row key. The row's existence is not verified here; IsValid on the
// returned object re-checks it on every call.
func (s *Session) Resolve(class string, key int64) (mixed.ManagedObject, error) {
	return &Object{
		sess:  s,
		class: class,
		table: schema.TableForClass(class),
		key:   key,
	}, nil
}

// ResolveDynamic constructs a dynamically-typed managed object wrapper
// addressed by table name and row key.
func (s *Session) ResolveDynamic(table string, key int64) (mixed.ManagedObject, error) {
	return &Object{
		sess:  s,
		class: schema.ClassNameForTable(table),
		table: table,
		key:   key,
	}, nil
}

// Tables returns every storage table holding at least one object.
func (s *Session) Tables(ctx context.Context) ([]string, error) {
	return s.st.Tables(ctx)
}

// ObjectsInTable returns managed wrappers for every object in a table,
// in ascending key order.
func (s *Session) ObjectsInTable(ctx context.Context, table string) ([]*Object, error) {
	keys, err := s.st.Objects(ctx, table)
	if err != nil {
		return nil, err
	}
	class := schema.ClassNameForTable(table)
	if s.sch != nil {
		if c, err := s.sch.ClassForTable(table); err == nil {
			class = c.Name
		}
	}
	objs := make([]*Object, 0, len(keys))
	for _, key := range keys {
		objs = append(objs, &Object{sess: s, class: class, table: table, key: key})
	}
	return objs, nil
}

var _ mixed.Session = (*Session)(nil)
