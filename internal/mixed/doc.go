// Package mixed implements the dynamic value held by a "mixed" field:
// a single field whose type is not fixed at schema-definition time.
//
// A Value is a closed tagged union over the kinds in package packed.
// It is created either by wrapping a typed Go value (From* constructors)
// or by decoding a stored packed encoding (FromPacked). Either way the
// kind is fixed at construction and the value is immutable.
//
// Each Value lazily binds to its packed representation: the handle is
// built on first use, at most once, and reused for the value's lifetime.
// Two comparators exist: Equal/HashCode operate on the in-memory payload
// per kind, while CoercedEqual compares realized packed representations
// and is safe across sessions.
//
// Object-reference values resolve against a live Session. Resolution
// prefers the statically declared class when schema mediation knows the
// table, and falls back to a dynamically named object otherwise. Validity
// and session membership of the referenced object are rechecked on every
// Validate call, never cached.
package mixed
