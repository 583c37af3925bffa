package mixed

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/karstdb/karst/internal/packed"
)

// packHook, when set, observes every packed-handle construction. Tests
// use it to assert that realization happens at most once per value.
var packHook func(packed.Kind)

// operand is the sealed union behind a Value: exactly one implementation
// per kind. All implementations are pointer types; the embedded base
// carries the kind tag and the memoized packed handle.
type operand interface {
	base() *operandBase
	kind() packed.Kind
	typedClass() string

	// pack builds the packed representation. Called at most once per
	// operand, under the base lock.
	pack() (*packed.Value, error)

	equal(other operand) bool
	hashCode() uint64
	render() string
	validate(sess Session) error
}

// operandBase holds the state shared by every operand: the immutable
// kind tag and the lazily-built packed handle. The mutex serializes
// handle construction so concurrent readers observe either no handle or
// a fully built one.
type operandBase struct {
	knd packed.Kind

	mu     sync.Mutex
	handle *packed.Value
}

func newBase(k packed.Kind) operandBase {
	return operandBase{knd: k}
}

// newDecodedBase seeds the handle for values decoded from storage, so
// realization never re-packs them.
func newDecodedBase(k packed.Kind, h *packed.Value) operandBase {
	return operandBase{knd: k, handle: h}
}

func (b *operandBase) base() *operandBase    { return b }
func (b *operandBase) kind() packed.Kind     { return b.knd }
func (b *operandBase) typedClass() string    { return b.knd.GoType() }
func (b *operandBase) validate(Session) error { return nil }

// realize returns the memoized packed handle, building it with build on
// first use. A failed build leaves the slot empty so the error surfaces
// again on retry rather than caching a half-made handle.
func (b *operandBase) realize(build func() (*packed.Value, error)) (*packed.Value, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handle != nil {
		return b.handle, nil
	}
	h, err := build()
	if err != nil {
		return nil, err
	}
	if packHook != nil {
		packHook(h.Kind())
	}
	b.handle = h
	return h, nil
}

// hashKindBytes computes an FNV-1a hash over the kind tag and a
// canonical payload rendering. Operands that compare equal must feed
// identical bytes here.
func hashKindBytes(k packed.Kind, payload []byte) uint64 {
	h := fnv.New64a()
	h.Write([]byte{byte(k)})
	h.Write(payload)
	return h.Sum64()
}

func hashUint64(k packed.Kind, u uint64) uint64 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], u)
	return hashKindBytes(k, b[:])
}

// nullHash is the fixed sentinel hash for null values.
const nullHash uint64 = 0

type nullOperand struct {
	operandBase
}

func newNullOperand() *nullOperand {
	return &nullOperand{newBase(packed.KindNull)}
}

func (o *nullOperand) pack() (*packed.Value, error) {
	return packed.NewNull(), nil
}

// equal treats every null as equal to every other null, however it was
// constructed.
func (o *nullOperand) equal(other operand) bool {
	_, ok := other.(*nullOperand)
	return ok
}

func (o *nullOperand) hashCode() uint64 { return nullHash }
func (o *nullOperand) render() string   { return "null" }

type boolOperand struct {
	operandBase
	v bool
}

func (o *boolOperand) pack() (*packed.Value, error) {
	return packed.NewBool(o.v), nil
}

func (o *boolOperand) equal(other operand) bool {
	p, ok := other.(*boolOperand)
	return ok && o.v == p.v
}

func (o *boolOperand) hashCode() uint64 {
	if o.v {
		return hashUint64(packed.KindBool, 1)
	}
	return hashUint64(packed.KindBool, 0)
}

func (o *boolOperand) render() string { return strconv.FormatBool(o.v) }

// intOperand holds every integer width widened to int64, so an 8-bit
// and a 64-bit write of the same number are indistinguishable.
type intOperand struct {
	operandBase
	v int64
}

func (o *intOperand) pack() (*packed.Value, error) {
	return packed.NewInt(o.v), nil
}

func (o *intOperand) equal(other operand) bool {
	p, ok := other.(*intOperand)
	return ok && o.v == p.v
}

func (o *intOperand) hashCode() uint64 {
	return hashUint64(packed.KindInt, uint64(o.v))
}

func (o *intOperand) render() string { return strconv.FormatInt(o.v, 10) }

type floatOperand struct {
	operandBase
	v float32
}

func (o *floatOperand) pack() (*packed.Value, error) {
	return packed.NewFloat(o.v), nil
}

// equal compares the IEEE-754 bits, keeping the comparator consistent
// with the bit-based hash: NaN equals NaN, and +0 is distinct from -0.
func (o *floatOperand) equal(other operand) bool {
	p, ok := other.(*floatOperand)
	return ok && math.Float32bits(o.v) == math.Float32bits(p.v)
}

func (o *floatOperand) hashCode() uint64 {
	return hashUint64(packed.KindFloat, uint64(math.Float32bits(o.v)))
}

func (o *floatOperand) render() string {
	return strconv.FormatFloat(float64(o.v), 'g', -1, 32)
}

type doubleOperand struct {
	operandBase
	v float64
}

func (o *doubleOperand) pack() (*packed.Value, error) {
	return packed.NewDouble(o.v), nil
}

// equal compares bits, like floatOperand.equal.
func (o *doubleOperand) equal(other operand) bool {
	p, ok := other.(*doubleOperand)
	return ok && math.Float64bits(o.v) == math.Float64bits(p.v)
}

func (o *doubleOperand) hashCode() uint64 {
	return hashUint64(packed.KindDouble, math.Float64bits(o.v))
}

func (o *doubleOperand) render() string {
	return strconv.FormatFloat(o.v, 'g', -1, 64)
}

type stringOperand struct {
	operandBase
	v string
}

func (o *stringOperand) pack() (*packed.Value, error) {
	return packed.NewString(o.v), nil
}

func (o *stringOperand) equal(other operand) bool {
	p, ok := other.(*stringOperand)
	return ok && o.v == p.v
}

func (o *stringOperand) hashCode() uint64 {
	return hashKindBytes(packed.KindString, []byte(o.v))
}

func (o *stringOperand) render() string { return o.v }

type binaryOperand struct {
	operandBase
	v []byte
}

func (o *binaryOperand) pack() (*packed.Value, error) {
	return packed.NewBinary(o.v), nil
}

// equal compares byte content, not slice identity.
func (o *binaryOperand) equal(other operand) bool {
	p, ok := other.(*binaryOperand)
	if !ok || len(o.v) != len(p.v) {
		return false
	}
	for i := range o.v {
		if o.v[i] != p.v[i] {
			return false
		}
	}
	return true
}

func (o *binaryOperand) hashCode() uint64 {
	return hashKindBytes(packed.KindBinary, o.v)
}

func (o *binaryOperand) render() string {
	return "0x" + hex.EncodeToString(o.v)
}

// dateOperand holds a timestamp normalized to millisecond precision,
// matching the packed representation's resolution.
type dateOperand struct {
	operandBase
	v time.Time
}

func (o *dateOperand) pack() (*packed.Value, error) {
	return packed.NewDate(o.v), nil
}

func (o *dateOperand) equal(other operand) bool {
	p, ok := other.(*dateOperand)
	return ok && o.v.UnixMilli() == p.v.UnixMilli()
}

func (o *dateOperand) hashCode() uint64 {
	return hashUint64(packed.KindDate, uint64(o.v.UnixMilli()))
}

func (o *dateOperand) render() string {
	return o.v.UTC().Format(time.RFC3339Nano)
}

// decimalOperand compares numerically: 1.0 and 1.00 are equal.
type decimalOperand struct {
	operandBase
	v *apd.Decimal
}

func (o *decimalOperand) pack() (*packed.Value, error) {
	return packed.NewDecimal(o.v), nil
}

func (o *decimalOperand) equal(other operand) bool {
	p, ok := other.(*decimalOperand)
	if !ok {
		return false
	}
	if isNaN(o.v) || isNaN(p.v) {
		return false
	}
	return o.v.Cmp(p.v) == 0
}

func (o *decimalOperand) hashCode() uint64 {
	// Zero hashes to one bucket regardless of sign or exponent, keeping
	// the hash consistent with numeric equality (-0 == 0).
	if o.v.Form == apd.Finite && o.v.IsZero() {
		return hashKindBytes(packed.KindDecimal, []byte("0"))
	}
	var r apd.Decimal
	r.Set(o.v)
	if r.Form == apd.Finite {
		r.Reduce(&r)
	}
	return hashKindBytes(packed.KindDecimal, []byte(r.Text('E')))
}

func (o *decimalOperand) render() string { return o.v.String() }

func isNaN(d *apd.Decimal) bool {
	return d.Form == apd.NaN || d.Form == apd.NaNSignaling
}

type objectIDOperand struct {
	operandBase
	v packed.ObjectID
}

func (o *objectIDOperand) pack() (*packed.Value, error) {
	return packed.NewObjectID(o.v), nil
}

func (o *objectIDOperand) equal(other operand) bool {
	p, ok := other.(*objectIDOperand)
	return ok && o.v == p.v
}

func (o *objectIDOperand) hashCode() uint64 {
	return hashKindBytes(packed.KindObjectID, o.v[:])
}

func (o *objectIDOperand) render() string { return o.v.String() }

type uuidOperand struct {
	operandBase
	v uuid.UUID
}

func (o *uuidOperand) pack() (*packed.Value, error) {
	return packed.NewUUID(o.v), nil
}

func (o *uuidOperand) equal(other operand) bool {
	p, ok := other.(*uuidOperand)
	return ok && o.v == p.v
}

func (o *uuidOperand) hashCode() uint64 {
	return hashKindBytes(packed.KindUUID, o.v[:])
}

func (o *uuidOperand) render() string { return o.v.String() }

// objectOperand references a managed object. The reference is
// non-owning: the session governs the object's lifetime, and validate
// rechecks liveness and membership on every call.
type objectOperand struct {
	operandBase
	obj     ManagedObject
	class   string
	dynamic bool
}

func (o *objectOperand) typedClass() string { return o.class }

func (o *objectOperand) pack() (*packed.Value, error) {
	if o.obj == nil || !o.obj.IsManaged() {
		return nil, newInvalidReference("only managed objects can back a packed mixed value")
	}
	return packed.NewLink(o.obj.Table(), o.obj.Key()), nil
}

// equal delegates to object identity: managed objects are the same when
// they name the same row in the same session; unmanaged instances are
// only ever equal to themselves.
func (o *objectOperand) equal(other operand) bool {
	p, ok := other.(*objectOperand)
	if !ok {
		return false
	}
	if o.obj == nil || p.obj == nil {
		return o.obj == p.obj
	}
	if o.obj.IsManaged() && p.obj.IsManaged() {
		return o.obj.Session() == p.obj.Session() &&
			o.obj.Table() == p.obj.Table() &&
			o.obj.Key() == p.obj.Key()
	}
	return o.obj == p.obj
}

func (o *objectOperand) hashCode() uint64 {
	if o.obj != nil && o.obj.IsManaged() {
		payload := fmt.Sprintf("%s|%s|%d", o.obj.Session().ID(), o.obj.Table(), o.obj.Key())
		return hashKindBytes(packed.KindObject, []byte(payload))
	}
	return hashKindBytes(packed.KindObject, []byte(o.class))
}

func (o *objectOperand) render() string {
	if o.obj != nil && o.obj.IsManaged() {
		return fmt.Sprintf("%s{key=%d}", o.class, o.obj.Key())
	}
	return o.class + "{unmanaged}"
}

func (o *objectOperand) validate(sess Session) error {
	if o.obj == nil || !o.obj.IsValid() || !o.obj.IsManaged() {
		return newInvalidReference("referenced object is not a valid managed object")
	}
	if o.obj.Session() != sess {
		return newCrossSession("referenced object belongs to a different session")
	}
	return nil
}
