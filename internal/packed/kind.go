package packed

import "fmt"

// Kind is the storage-level type tag of a packed value.
//
// The set is closed: the engine and the value layer agree on these tags
// and nothing else. A tag outside this set in stored data indicates a
// version mismatch between writer and reader, not a recoverable input
// error.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindDouble
	KindString
	KindBinary
	KindDate
	KindDecimal
	KindObjectID
	KindUUID
	KindObject

	// kindMax bounds the closed set for tag validation.
	kindMax
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindDate:
		return "date"
	case KindDecimal:
		return "decimal"
	case KindObjectID:
		return "objectID"
	case KindUUID:
		return "uuid"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// GoType returns the Go type name a value of this kind is surfaced as.
// KindObject values report the referenced object's class instead; callers
// wanting that go through the value layer, not the kind.
func (k Kind) GoType() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int64"
	case KindFloat:
		return "float32"
	case KindDouble:
		return "float64"
	case KindString:
		return "string"
	case KindBinary:
		return "[]byte"
	case KindDate:
		return "time.Time"
	case KindDecimal:
		return "apd.Decimal"
	case KindObjectID:
		return "packed.ObjectID"
	case KindUUID:
		return "uuid.UUID"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// valid reports whether k is inside the closed tag set.
func (k Kind) valid() bool {
	return k < kindMax
}

// Numeric reports whether values of this kind participate in numeric
// coercion (see Value.CoercedEquals).
func (k Kind) Numeric() bool {
	switch k {
	case KindInt, KindFloat, KindDouble, KindDecimal:
		return true
	}
	return false
}
