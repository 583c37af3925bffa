package mixed

// Session is the live database context object-reference values resolve
// against. Implemented by the session layer; this package only consumes
// the contract.
//
// Resolution capability is an explicit flag, not a type assertion: a
// typed session carries a compiled schema and can resolve statically
// declared classes, a dynamic session cannot and every reference it
// resolves is dynamically named.
type Session interface {
	// ID uniquely identifies this session instance.
	ID() string

	// Typed reports whether static (schema-backed) resolution is
	// available.
	Typed() bool

	// ClassForTable maps a storage table to its declared class name.
	// Undeclared tables fail with schema.ErrClassNotFound, which
	// triggers the dynamic-resolution fallback.
	ClassForTable(table string) (string, error)

	// Resolve constructs a managed object wrapper for a declared class
	// and row key. It does not verify the row exists; validity is
	// checked through the object itself.
	Resolve(class string, key int64) (ManagedObject, error)

	// ResolveDynamic constructs a dynamically-typed managed object
	// wrapper addressed by table name and row key.
	ResolveDynamic(table string, key int64) (ManagedObject, error)
}

// ManagedObject is an application object backed by a row in the store.
// Object-reference values hold one without owning it: the owning session
// governs its lifetime, and both validity and session membership must be
// rechecked at use time.
type ManagedObject interface {
	// Class returns the object's class name (declared or dynamic).
	Class() string

	// Table returns the storage table backing the object.
	Table() string

	// Key returns the object's row key.
	Key() int64

	// Session returns the owning session, or nil for an unmanaged
	// instance.
	Session() Session

	// IsValid reports whether the backing row still exists. The check
	// hits the store every call; rows can be deleted between calls.
	IsValid() bool

	// IsManaged reports whether the object is attached to a session.
	IsManaged() bool
}
