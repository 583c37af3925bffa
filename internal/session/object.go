package session

import (
	"context"
	"fmt"
	"sort"

	"github.com/karstdb/karst/internal/mixed"
	"github.com/karstdb/karst/internal/packed"
	"github.com/karstdb/karst/internal/schema"
)

// Object is a managed object: an application-level handle backed by a
// live row in the store. An Object constructed by Unmanaged has no
// session and no row until it is persisted elsewhere; it exists so
// values can reference not-yet-persisted objects and fail validation
// rather than construction.
type Object struct {
	sess  *Session
	class string
	table string
	key   int64
}

// Create inserts a new object of the given class and returns its
// managed wrapper. Typed sessions require the class to be declared.
func (s *Session) Create(ctx context.Context, class string) (*Object, error) {
	if s.sch != nil {
		if _, err := s.sch.Class(class); err != nil {
			return nil, fmt.Errorf("create: %w", err)
		}
	}
	table := schema.TableForClass(class)
	key, err := s.st.CreateObject(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", class, err)
	}
	return &Object{sess: s, class: class, table: table, key: key}, nil
}

// Get returns the managed wrapper for an existing object. Missing
// objects fail with store.ErrNotFound.
func (s *Session) Get(ctx context.Context, class string, key int64) (*Object, error) {
	table := schema.TableForClass(class)
	ok, err := s.st.HasObject(ctx, table, key)
	if err != nil {
		return nil, fmt.Errorf("get %s[%d]: %w", class, key, err)
	}
	if !ok {
		return nil, fmt.Errorf("get %s[%d]: object does not exist", class, key)
	}
	return &Object{sess: s, class: class, table: table, key: key}, nil
}

// Delete removes an object's row. Wrappers referencing it stay usable
// but report IsValid false from then on.
func (s *Session) Delete(ctx context.Context, obj *Object) error {
	if obj.sess != s {
		return fmt.Errorf("delete: object belongs to a different session")
	}
	return s.st.DeleteObject(ctx, obj.table, obj.key)
}

// Unmanaged constructs a free-standing object of the given class,
// attached to no session and backed by no row.
func Unmanaged(class string) *Object {
	return &Object{class: class, table: schema.TableForClass(class)}
}

// Class returns the object's class name.
func (o *Object) Class() string { return o.class }

// Table returns the storage table backing the object.
func (o *Object) Table() string { return o.table }

// Key returns the object's row key.
func (o *Object) Key() int64 { return o.key }

// Session returns the owning session, or nil for unmanaged objects.
func (o *Object) Session() mixed.Session {
	if o.sess == nil {
		return nil
	}
	return o.sess
}

// IsManaged reports whether the object is attached to a session.
func (o *Object) IsManaged() bool {
	return o.sess != nil
}

// IsValid reports whether the backing row still exists. The store is
// queried every call: a row deleted by a concurrent write flips this to
// false immediately.
func (o *Object) IsValid() bool {
	if o.sess == nil {
		return false
	}
	ok, err := o.sess.st.HasObject(context.Background(), o.table, o.key)
	return err == nil && ok
}

// SetMixed writes a mixed value into a field. Object-reference values
// are validated against this object's session first, so a deleted,
// unmanaged or cross-session reference is rejected before anything is
// written.
func (o *Object) SetMixed(ctx context.Context, field string, v *mixed.Value) error {
	if o.sess == nil {
		return fmt.Errorf("set %q: object is not managed", field)
	}
	if err := v.Validate(o.sess); err != nil {
		return fmt.Errorf("set %q: %w", field, err)
	}
	p, err := v.Packed()
	if err != nil {
		return fmt.Errorf("set %q: %w", field, err)
	}
	if err := o.sess.st.SetField(ctx, o.table, o.key, field, p.Bytes()); err != nil {
		return fmt.Errorf("set %q: %w", field, err)
	}
	return nil
}

// Mixed reads a field back as a mixed value. The stored bytes are
// decoded and, for object references, resolved against this object's
// session.
func (o *Object) Mixed(ctx context.Context, field string) (*mixed.Value, error) {
	if o.sess == nil {
		return nil, fmt.Errorf("get %q: object is not managed", field)
	}
	raw, err := o.sess.st.Field(ctx, o.table, o.key, field)
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", field, err)
	}
	p, err := packed.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", field, err)
	}
	v, err := mixed.FromPacked(o.sess, p)
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", field, err)
	}
	return v, nil
}

// FieldNames returns the names of all set fields on the object.
func (o *Object) FieldNames(ctx context.Context) ([]string, error) {
	if o.sess == nil {
		return nil, fmt.Errorf("fields: object is not managed")
	}
	m, err := o.sess.st.Fields(ctx, o.table, o.key)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

var _ mixed.ManagedObject = (*Object)(nil)
