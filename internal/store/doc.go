// Package store provides SQLite-backed storage for karst objects and
// their mixed field values.
//
// The layout is two tables:
//   - objects: one row per live object, addressed by (table name, key)
//   - fields:  one row per set field, holding the packed value bytes
//
// Field rows cascade-delete with their object, so deleting an object
// immediately invalidates every reference to it; callers observe that
// through HasObject, which always re-queries.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes, and multiple sessions
//     may hold the same database file open
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce the fields->objects relationship
//
// Packed value bytes are stored verbatim; this package never interprets
// them beyond BLOB identity.
package store
