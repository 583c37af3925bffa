package mixed

import (
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/karstdb/karst/internal/packed"
)

// Value is a dynamically-typed field value. The kind is fixed at
// construction and the payload is immutable; the packed handle is built
// lazily and cached for the value's lifetime.
type Value struct {
	op operand
}

// Null returns a null value.
func Null() *Value {
	return &Value{op: newNullOperand()}
}

// FromBool wraps a boolean.
func FromBool(b bool) *Value {
	return &Value{op: &boolOperand{operandBase: newBase(packed.KindBool), v: b}}
}

// FromInt wraps a 64-bit integer.
func FromInt(i int64) *Value {
	return &Value{op: &intOperand{operandBase: newBase(packed.KindInt), v: i}}
}

// FromInt8 wraps an 8-bit integer, widening to int64.
func FromInt8(i int8) *Value { return FromInt(int64(i)) }

// FromInt16 wraps a 16-bit integer, widening to int64.
func FromInt16(i int16) *Value { return FromInt(int64(i)) }

// FromInt32 wraps a 32-bit integer, widening to int64.
func FromInt32(i int32) *Value { return FromInt(int64(i)) }

// FromFloat32 wraps a 32-bit float.
func FromFloat32(f float32) *Value {
	return &Value{op: &floatOperand{operandBase: newBase(packed.KindFloat), v: f}}
}

// FromFloat64 wraps a 64-bit float.
func FromFloat64(f float64) *Value {
	return &Value{op: &doubleOperand{operandBase: newBase(packed.KindDouble), v: f}}
}

// FromString wraps a string.
func FromString(s string) *Value {
	return &Value{op: &stringOperand{operandBase: newBase(packed.KindString), v: s}}
}

// FromBinary wraps a byte slice. The bytes are copied.
func FromBinary(b []byte) *Value {
	c := make([]byte, len(b))
	copy(c, b)
	return &Value{op: &binaryOperand{operandBase: newBase(packed.KindBinary), v: c}}
}

// FromTime wraps a timestamp. Precision is milliseconds, the resolution
// of the stored form; finer components are discarded.
func FromTime(t time.Time) *Value {
	norm := time.UnixMilli(t.UnixMilli()).UTC()
	return &Value{op: &dateOperand{operandBase: newBase(packed.KindDate), v: norm}}
}

// FromDecimal wraps a high-precision decimal. The decimal is copied.
func FromDecimal(d *apd.Decimal) *Value {
	var c apd.Decimal
	c.Set(d)
	return &Value{op: &decimalOperand{operandBase: newBase(packed.KindDecimal), v: &c}}
}

// FromObjectID wraps a 12-byte object identifier.
func FromObjectID(id packed.ObjectID) *Value {
	return &Value{op: &objectIDOperand{operandBase: newBase(packed.KindObjectID), v: id}}
}

// FromUUID wraps a UUID.
func FromUUID(u uuid.UUID) *Value {
	return &Value{op: &uuidOperand{operandBase: newBase(packed.KindUUID), v: u}}
}

// FromObject wraps a reference to a managed object. A nil object wraps
// to null. The object may be unmanaged at this point; validation is
// deferred to Validate so values can be built before a transaction
// context exists.
func FromObject(obj ManagedObject) *Value {
	if obj == nil {
		return Null()
	}
	return &Value{op: &objectOperand{
		operandBase: newBase(packed.KindObject),
		obj:         obj,
		class:       obj.Class(),
	}}
}

// Kind returns the value's variant tag.
func (v *Value) Kind() packed.Kind {
	return v.op.kind()
}

// IsNull reports whether the value holds the null kind.
func (v *Value) IsNull() bool {
	return v.op.kind() == packed.KindNull
}

// TypedClass returns the externally-visible type of the value. For most
// kinds this derives from the tag; for object references it is the
// referenced object's own class, static or dynamic.
func (v *Value) TypedClass() string {
	return v.op.typedClass()
}

// Packed returns the value's packed representation, building it on
// first call and reusing it afterwards. Construction happens at most
// once per value; concurrent callers serialize on the value's own lock.
func (v *Value) Packed() (*packed.Value, error) {
	return v.op.base().realize(v.op.pack)
}

// AsBool returns the boolean payload.
func (v *Value) AsBool() (bool, error) {
	o, ok := v.op.(*boolOperand)
	if !ok {
		return false, newTypeMismatch(packed.KindBool, v.Kind())
	}
	return o.v, nil
}

// AsInt returns the integer payload as int64, whatever width it was
// written with.
func (v *Value) AsInt() (int64, error) {
	o, ok := v.op.(*intOperand)
	if !ok {
		return 0, newTypeMismatch(packed.KindInt, v.Kind())
	}
	return o.v, nil
}

// AsFloat32 returns the 32-bit float payload.
func (v *Value) AsFloat32() (float32, error) {
	o, ok := v.op.(*floatOperand)
	if !ok {
		return 0, newTypeMismatch(packed.KindFloat, v.Kind())
	}
	return o.v, nil
}

// AsFloat64 returns the 64-bit float payload.
func (v *Value) AsFloat64() (float64, error) {
	o, ok := v.op.(*doubleOperand)
	if !ok {
		return 0, newTypeMismatch(packed.KindDouble, v.Kind())
	}
	return o.v, nil
}

// AsString returns the string payload.
func (v *Value) AsString() (string, error) {
	o, ok := v.op.(*stringOperand)
	if !ok {
		return "", newTypeMismatch(packed.KindString, v.Kind())
	}
	return o.v, nil
}

// AsBinary returns a copy of the binary payload.
func (v *Value) AsBinary() ([]byte, error) {
	o, ok := v.op.(*binaryOperand)
	if !ok {
		return nil, newTypeMismatch(packed.KindBinary, v.Kind())
	}
	c := make([]byte, len(o.v))
	copy(c, o.v)
	return c, nil
}

// AsTime returns the timestamp payload in UTC at millisecond precision.
func (v *Value) AsTime() (time.Time, error) {
	o, ok := v.op.(*dateOperand)
	if !ok {
		return time.Time{}, newTypeMismatch(packed.KindDate, v.Kind())
	}
	return o.v, nil
}

// AsDecimal returns a copy of the decimal payload.
func (v *Value) AsDecimal() (*apd.Decimal, error) {
	o, ok := v.op.(*decimalOperand)
	if !ok {
		return nil, newTypeMismatch(packed.KindDecimal, v.Kind())
	}
	var c apd.Decimal
	c.Set(o.v)
	return &c, nil
}

// AsObjectID returns the object-identifier payload.
func (v *Value) AsObjectID() (packed.ObjectID, error) {
	o, ok := v.op.(*objectIDOperand)
	if !ok {
		return packed.ObjectID{}, newTypeMismatch(packed.KindObjectID, v.Kind())
	}
	return o.v, nil
}

// AsUUID returns the UUID payload.
func (v *Value) AsUUID() (uuid.UUID, error) {
	o, ok := v.op.(*uuidOperand)
	if !ok {
		return uuid.UUID{}, newTypeMismatch(packed.KindUUID, v.Kind())
	}
	return o.v, nil
}

// AsObject returns the referenced managed object.
func (v *Value) AsObject() (ManagedObject, error) {
	o, ok := v.op.(*objectOperand)
	if !ok {
		return nil, newTypeMismatch(packed.KindObject, v.Kind())
	}
	return o.obj, nil
}

// IsDynamicObject reports whether the value is an object reference that
// was resolved dynamically (no declared class for its table).
func (v *Value) IsDynamicObject() bool {
	o, ok := v.op.(*objectOperand)
	return ok && o.dynamic
}

// Equal reports in-memory equality. Kinds must match; within a kind,
// payloads compare by value (byte content for binary, numeric value for
// integers and decimals, object identity for references).
func (v *Value) Equal(other *Value) bool {
	if other == nil {
		return false
	}
	return v.op.equal(other.op)
}

// HashCode returns a hash consistent with Equal: equal values hash
// equally. Null hashes to a fixed sentinel.
func (v *Value) HashCode() uint64 {
	return v.op.hashCode()
}

// CoercedEqual compares the packed representations of both values,
// realizing them if needed. Unlike Equal it is meaningful across
// sessions, and numeric kinds coerce (an int 3 equals a double 3.0).
func (v *Value) CoercedEqual(other *Value) (bool, error) {
	if other == nil {
		return false, nil
	}
	a, err := v.Packed()
	if err != nil {
		return false, err
	}
	b, err := other.Packed()
	if err != nil {
		return false, err
	}
	return a.CoercedEquals(b), nil
}

// Validate checks that the value can be trusted for use inside sess,
// typically right before a write. Object references must point at a
// live, managed object owned by exactly sess; all other kinds always
// pass. The checks run on every call because object validity and
// session membership can change between construction and use.
func (v *Value) Validate(sess Session) error {
	return v.op.validate(sess)
}

// String renders the payload for diagnostics.
func (v *Value) String() string {
	return v.op.render()
}
