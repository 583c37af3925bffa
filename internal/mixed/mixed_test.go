package mixed

import (
	"fmt"

	"github.com/karstdb/karst/internal/schema"
)

// fakeSession implements Session for tests without a real store. Object
// existence lives in a map so tests can delete rows out from under
// live references.
type fakeSession struct {
	id      string
	typed   bool
	classes map[string]string // table -> declared class
	rows    map[string]bool   // "table|key" -> exists

	mediationErr error // forced ClassForTable failure
}

func newFakeSession(id string, typed bool) *fakeSession {
	return &fakeSession{
		id:      id,
		typed:   typed,
		classes: map[string]string{},
		rows:    map[string]bool{},
	}
}

func (s *fakeSession) declare(class string) {
	s.classes[schema.TableForClass(class)] = class
}

func (s *fakeSession) rowKey(table string, key int64) string {
	return fmt.Sprintf("%s|%d", table, key)
}

func (s *fakeSession) insert(class string, key int64) *fakeObject {
	table := schema.TableForClass(class)
	s.rows[s.rowKey(table, key)] = true
	return &fakeObject{sess: s, class: class, table: table, key: key}
}

func (s *fakeSession) delete(table string, key int64) {
	delete(s.rows, s.rowKey(table, key))
}

func (s *fakeSession) ID() string  { return s.id }
func (s *fakeSession) Typed() bool { return s.typed }

func (s *fakeSession) ClassForTable(table string) (string, error) {
	if s.mediationErr != nil {
		return "", s.mediationErr
	}
	if !s.typed {
		return "", fmt.Errorf("table %q: %w", table, schema.ErrClassNotFound)
	}
	class, ok := s.classes[table]
	if !ok {
		return "", fmt.Errorf("table %q: %w", table, schema.ErrClassNotFound)
	}
	return class, nil
}

func (s *fakeSession) Resolve(class string, key int64) (ManagedObject, error) {
	return &fakeObject{sess: s, class: class, table: schema.TableForClass(class), key: key}, nil
}

func (s *fakeSession) ResolveDynamic(table string, key int64) (ManagedObject, error) {
	return &fakeObject{sess: s, class: schema.ClassNameForTable(table), table: table, key: key}, nil
}

// fakeObject implements ManagedObject. IsValid re-consults the session's
// row map on every call.
type fakeObject struct {
	sess  *fakeSession
	class string
	table string
	key   int64
}

func (o *fakeObject) Class() string { return o.class }
func (o *fakeObject) Table() string { return o.table }
func (o *fakeObject) Key() int64    { return o.key }

func (o *fakeObject) Session() Session {
	if o.sess == nil {
		return nil
	}
	return o.sess
}

func (o *fakeObject) IsManaged() bool { return o.sess != nil }

func (o *fakeObject) IsValid() bool {
	return o.sess != nil && o.sess.rows[o.sess.rowKey(o.table, o.key)]
}

// unmanagedObject builds a fakeObject with no session.
func unmanagedObject(class string) *fakeObject {
	return &fakeObject{class: class, table: schema.TableForClass(class)}
}

var (
	_ Session       = (*fakeSession)(nil)
	_ ManagedObject = (*fakeObject)(nil)
)
