package packed

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// Value is an immutable packed value: a kind tag followed by a canonical
// payload. Construct one through the New* functions or Decode; never
// modify the bytes afterwards.
//
// Payload encodings:
//
//	null:     empty
//	bool:     1 byte, 0 or 1
//	int:      8 bytes, big-endian two's complement (all widths widen)
//	float:    4 bytes, IEEE-754 bits, big-endian
//	double:   8 bytes, IEEE-754 bits, big-endian
//	string:   raw UTF-8 bytes
//	binary:   raw bytes
//	date:     8 bytes, big-endian milliseconds since the Unix epoch
//	decimal:  reduced scientific text ("125E-2" style)
//	objectID: 12 bytes
//	uuid:     16 bytes
//	object:   8 bytes big-endian row key + table name bytes
type Value struct {
	buf []byte
}

// NewNull returns the packed null value.
func NewNull() *Value {
	return &Value{buf: []byte{byte(KindNull)}}
}

// NewBool packs a boolean.
func NewBool(b bool) *Value {
	v := byte(0)
	if b {
		v = 1
	}
	return &Value{buf: []byte{byte(KindBool), v}}
}

// NewInt packs an integer. Narrower integer widths widen to int64 before
// packing, so 8-, 16-, 32- and 64-bit writes of the same number produce
// identical bytes.
func NewInt(i int64) *Value {
	buf := make([]byte, 9)
	buf[0] = byte(KindInt)
	binary.BigEndian.PutUint64(buf[1:], uint64(i))
	return &Value{buf: buf}
}

// NewFloat packs a 32-bit float.
func NewFloat(f float32) *Value {
	buf := make([]byte, 5)
	buf[0] = byte(KindFloat)
	binary.BigEndian.PutUint32(buf[1:], math.Float32bits(f))
	return &Value{buf: buf}
}

// NewDouble packs a 64-bit float.
func NewDouble(f float64) *Value {
	buf := make([]byte, 9)
	buf[0] = byte(KindDouble)
	binary.BigEndian.PutUint64(buf[1:], math.Float64bits(f))
	return &Value{buf: buf}
}

// NewString packs a string.
func NewString(s string) *Value {
	buf := make([]byte, 1+len(s))
	buf[0] = byte(KindString)
	copy(buf[1:], s)
	return &Value{buf: buf}
}

// NewBinary packs a byte slice. The bytes are copied.
func NewBinary(b []byte) *Value {
	buf := make([]byte, 1+len(b))
	buf[0] = byte(KindBinary)
	copy(buf[1:], b)
	return &Value{buf: buf}
}

// NewDate packs a timestamp at millisecond precision. Sub-millisecond
// components are discarded; that is the resolution of the stored form.
func NewDate(t time.Time) *Value {
	buf := make([]byte, 9)
	buf[0] = byte(KindDate)
	binary.BigEndian.PutUint64(buf[1:], uint64(t.UnixMilli()))
	return &Value{buf: buf}
}

// NewDecimal packs a high-precision decimal. Finite values are reduced
// (trailing zeros stripped) so numerically identical decimals written
// with different exponents pack to the same bytes.
func NewDecimal(d *apd.Decimal) *Value {
	var r apd.Decimal
	r.Set(d)
	if r.Form == apd.Finite {
		r.Reduce(&r)
	}
	text := r.Text('E')
	buf := make([]byte, 1+len(text))
	buf[0] = byte(KindDecimal)
	copy(buf[1:], text)
	return &Value{buf: buf}
}

// NewObjectID packs a 12-byte object identifier.
func NewObjectID(id ObjectID) *Value {
	buf := make([]byte, 1+ObjectIDLen)
	buf[0] = byte(KindObjectID)
	copy(buf[1:], id[:])
	return &Value{buf: buf}
}

// NewUUID packs a UUID.
func NewUUID(u uuid.UUID) *Value {
	buf := make([]byte, 1+16)
	buf[0] = byte(KindUUID)
	copy(buf[1:], u[:])
	return &Value{buf: buf}
}

// NewLink packs a reference to the object at (table, key).
func NewLink(table string, key int64) *Value {
	buf := make([]byte, 9+len(table))
	buf[0] = byte(KindObject)
	binary.BigEndian.PutUint64(buf[1:], uint64(key))
	copy(buf[9:], table)
	return &Value{buf: buf}
}

// Decode validates and wraps a stored packed encoding. The tag must be
// inside the closed kind set and the payload must have the exact length
// the kind demands; anything else means the bytes were written by an
// incompatible version or corrupted, and decoding fails.
func Decode(buf []byte) (*Value, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("packed: empty encoding")
	}
	k := Kind(buf[0])
	if !k.valid() {
		return nil, fmt.Errorf("packed: unrecognized type tag %d", buf[0])
	}
	payload := len(buf) - 1
	want := -1
	switch k {
	case KindNull:
		want = 0
	case KindBool:
		want = 1
	case KindFloat:
		want = 4
	case KindInt, KindDouble, KindDate:
		want = 8
	case KindObjectID:
		want = ObjectIDLen
	case KindUUID:
		want = 16
	case KindObject:
		if payload < 9 {
			return nil, fmt.Errorf("packed: truncated %s payload (%d bytes)", k, payload)
		}
	case KindDecimal:
		if payload == 0 {
			return nil, fmt.Errorf("packed: empty %s payload", k)
		}
	}
	if want >= 0 && payload != want {
		return nil, fmt.Errorf("packed: %s payload must be %d bytes, got %d", k, want, payload)
	}
	b := make([]byte, len(buf))
	copy(b, buf)
	return &Value{buf: b}, nil
}

// Kind returns the type tag.
func (v *Value) Kind() Kind {
	return Kind(v.buf[0])
}

// Bytes returns the stored encoding. Callers must not modify it.
func (v *Value) Bytes() []byte {
	return v.buf
}

func (v *Value) payload() []byte {
	return v.buf[1:]
}

func (v *Value) kindCheck(want Kind) error {
	if v.Kind() != want {
		return fmt.Errorf("packed: %s value read as %s", v.Kind(), want)
	}
	return nil
}

// AsBool extracts a boolean payload.
func (v *Value) AsBool() (bool, error) {
	if err := v.kindCheck(KindBool); err != nil {
		return false, err
	}
	return v.payload()[0] != 0, nil
}

// AsInt extracts an integer payload as int64.
func (v *Value) AsInt() (int64, error) {
	if err := v.kindCheck(KindInt); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(v.payload())), nil
}

// AsFloat extracts a 32-bit float payload.
func (v *Value) AsFloat() (float32, error) {
	if err := v.kindCheck(KindFloat); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(v.payload())), nil
}

// AsDouble extracts a 64-bit float payload.
func (v *Value) AsDouble() (float64, error) {
	if err := v.kindCheck(KindDouble); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(v.payload())), nil
}

// AsString extracts a string payload.
func (v *Value) AsString() (string, error) {
	if err := v.kindCheck(KindString); err != nil {
		return "", err
	}
	return string(v.payload()), nil
}

// AsBinary extracts a binary payload. The returned slice is a copy.
func (v *Value) AsBinary() ([]byte, error) {
	if err := v.kindCheck(KindBinary); err != nil {
		return nil, err
	}
	b := make([]byte, len(v.payload()))
	copy(b, v.payload())
	return b, nil
}

// AsDate extracts a timestamp payload in UTC.
func (v *Value) AsDate() (time.Time, error) {
	if err := v.kindCheck(KindDate); err != nil {
		return time.Time{}, err
	}
	ms := int64(binary.BigEndian.Uint64(v.payload()))
	return time.UnixMilli(ms).UTC(), nil
}

// AsDecimal extracts a decimal payload.
func (v *Value) AsDecimal() (*apd.Decimal, error) {
	if err := v.kindCheck(KindDecimal); err != nil {
		return nil, err
	}
	d, _, err := apd.NewFromString(string(v.payload()))
	if err != nil {
		return nil, fmt.Errorf("packed: parse decimal payload: %w", err)
	}
	return d, nil
}

// AsObjectID extracts an object identifier payload.
func (v *Value) AsObjectID() (ObjectID, error) {
	var id ObjectID
	if err := v.kindCheck(KindObjectID); err != nil {
		return id, err
	}
	copy(id[:], v.payload())
	return id, nil
}

// AsUUID extracts a UUID payload.
func (v *Value) AsUUID() (uuid.UUID, error) {
	var u uuid.UUID
	if err := v.kindCheck(KindUUID); err != nil {
		return u, err
	}
	copy(u[:], v.payload())
	return u, nil
}

// LinkTable extracts the referenced table name of an object payload.
func (v *Value) LinkTable() (string, error) {
	if err := v.kindCheck(KindObject); err != nil {
		return "", err
	}
	return string(v.payload()[8:]), nil
}

// LinkKey extracts the referenced row key of an object payload.
func (v *Value) LinkKey() (int64, error) {
	if err := v.kindCheck(KindObject); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(v.payload()[:8])), nil
}

// String renders the value for diagnostics.
func (v *Value) String() string {
	return fmt.Sprintf("packed.Value(%s, %d bytes)", v.Kind(), len(v.payload()))
}
