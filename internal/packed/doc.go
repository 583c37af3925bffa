// Package packed implements the storage-level representation of mixed
// values.
//
// A packed.Value is the canonical byte encoding stored in the database:
// a one-byte kind tag followed by a kind-specific payload. The encoding
// is deterministic, so raw byte equality is meaningful for values of the
// same kind, and CoercedEquals layers numeric coercion on top for
// comparisons that cross kinds (an int64 3 equals a double 3.0).
//
// Higher layers treat a packed.Value as an opaque handle: they construct
// one per kind, read payloads back through the typed accessors, and never
// inspect the bytes directly.
package packed
