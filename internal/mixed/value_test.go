package mixed

import (
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karstdb/karst/internal/packed"
)

func mustDecimal(t *testing.T, s string) *apd.Decimal {
	t.Helper()
	d, _, err := apd.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestValue_KindAndAccessors(t *testing.T) {
	oid, err := packed.ObjectIDFromHex("507f1f77bcf86cd799439011")
	require.NoError(t, err)
	u := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	v := FromBool(true)
	assert.Equal(t, packed.KindBool, v.Kind())
	b, err := v.AsBool()
	require.NoError(t, err)
	assert.True(t, b)

	v = FromInt(42)
	i, err := v.AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(42), i)

	v = FromFloat32(1.5)
	f32, err := v.AsFloat32()
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f32)

	v = FromFloat64(-2.25)
	f64, err := v.AsFloat64()
	require.NoError(t, err)
	assert.Equal(t, -2.25, f64)

	v = FromString("hello")
	s, err := v.AsString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	v = FromBinary([]byte{1, 2, 3})
	raw, err := v.AsBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, raw)

	v = FromObjectID(oid)
	gotOID, err := v.AsObjectID()
	require.NoError(t, err)
	assert.Equal(t, oid, gotOID)

	v = FromUUID(u)
	gotUUID, err := v.AsUUID()
	require.NoError(t, err)
	assert.Equal(t, u, gotUUID)
}

func TestValue_IntWidthsWiden(t *testing.T) {
	wide := FromInt(42)

	assert.True(t, FromInt8(42).Equal(wide))
	assert.True(t, FromInt16(42).Equal(wide))
	assert.True(t, FromInt32(42).Equal(wide))
	assert.Equal(t, wide.HashCode(), FromInt8(42).HashCode())

	// All widths surface as int64.
	i, err := FromInt8(42).AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(42), i)
}

func TestValue_NullBehavior(t *testing.T) {
	n := Null()
	assert.True(t, n.IsNull())
	assert.Equal(t, packed.KindNull, n.Kind())

	// Null built via a nil object reference equals plain null.
	fromNilObject := FromObject(nil)
	assert.True(t, fromNilObject.IsNull())
	assert.True(t, n.Equal(fromNilObject))
	assert.Equal(t, n.HashCode(), fromNilObject.HashCode())

	assert.False(t, FromInt(0).IsNull())
	assert.False(t, n.Equal(FromInt(0)))
}

func TestValue_NullAccessorsMismatch(t *testing.T) {
	n := Null()

	_, err := n.AsBool()
	assert.True(t, IsTypeMismatch(err))
	_, err = n.AsString()
	assert.True(t, IsTypeMismatch(err))
	_, err = n.AsObject()
	assert.True(t, IsTypeMismatch(err))
}

func TestValue_TypeMismatchError(t *testing.T) {
	_, err := FromString("x").AsInt()
	require.Error(t, err)
	assert.True(t, IsTypeMismatch(err))
	assert.Contains(t, err.Error(), "value is string")
	assert.Contains(t, err.Error(), "requested int")
}

func TestValue_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b *Value
		want bool
	}{
		{"equal strings", FromString("a"), FromString("a"), true},
		{"unequal strings", FromString("a"), FromString("b"), false},
		{"equal bools", FromBool(true), FromBool(true), true},
		{"binary by content", FromBinary([]byte{1, 2}), FromBinary([]byte{1, 2}), true},
		{"binary unequal length", FromBinary([]byte{1, 2}), FromBinary([]byte{1, 2, 3}), false},
		{"no cross-kind int/double", FromInt(1), FromFloat64(1.0), false},
		{"no cross-kind int/bool", FromInt(1), FromBool(true), false},
		{"no cross-kind string/binary", FromString("a"), FromBinary([]byte("a")), false},
		{"decimal trailing zeros", FromDecimal(mustDecimal(t, "1.0")), FromDecimal(mustDecimal(t, "1.00")), true},
		{"decimal unequal", FromDecimal(mustDecimal(t, "1.0")), FromDecimal(mustDecimal(t, "1.01")), false},
		{"decimal NaN never equal", FromDecimal(mustDecimal(t, "NaN")), FromDecimal(mustDecimal(t, "NaN")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a), "must be symmetric")
			if tt.want {
				assert.Equal(t, tt.a.HashCode(), tt.b.HashCode(), "equal values must hash equally")
			}
		})
	}

	assert.False(t, FromInt(1).Equal(nil))
}

func TestValue_DateEquality(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 123_000_000, time.UTC)

	// Sub-millisecond components are discarded at construction.
	a := FromTime(base)
	b := FromTime(base.Add(400 * time.Microsecond))
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.HashCode(), b.HashCode())

	// Different zones, same instant.
	est := time.FixedZone("EST", -5*3600)
	c := FromTime(base.In(est))
	assert.True(t, a.Equal(c))

	got, err := a.AsTime()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, base.UnixMilli(), got.UnixMilli())
}

func TestValue_DecimalHashZero(t *testing.T) {
	zero := FromDecimal(mustDecimal(t, "0"))
	negZero := FromDecimal(mustDecimal(t, "-0"))
	scaledZero := FromDecimal(mustDecimal(t, "0.000"))

	assert.True(t, zero.Equal(negZero))
	assert.Equal(t, zero.HashCode(), negZero.HashCode())
	assert.Equal(t, zero.HashCode(), scaledZero.HashCode())
}

func TestValue_FloatBitwiseEquality(t *testing.T) {
	// Floats compare by their IEEE-754 bits, so NaN equality is
	// reflexive and consistent with the bit-based hash.
	a := FromFloat64(math.NaN())
	assert.True(t, a.Equal(a))
	assert.True(t, a.Equal(FromFloat64(math.NaN())))
	assert.Equal(t, a.HashCode(), FromFloat64(math.NaN()).HashCode())

	f := FromFloat32(float32(math.NaN()))
	assert.True(t, f.Equal(FromFloat32(float32(math.NaN()))))
}

func TestValue_FloatSignedZero(t *testing.T) {
	// +0 and -0 have different bits: unequal, and hashed differently.
	pos := FromFloat64(0.0)
	neg := FromFloat64(math.Copysign(0, -1))
	assert.False(t, pos.Equal(neg))
	assert.NotEqual(t, pos.HashCode(), neg.HashCode())

	pos32 := FromFloat32(0)
	neg32 := FromFloat32(float32(math.Copysign(0, -1)))
	assert.False(t, pos32.Equal(neg32))
	assert.NotEqual(t, pos32.HashCode(), neg32.HashCode())

	// Coerced comparison stays numeric: -0 and 0 hold the same number.
	ok, err := pos.CoercedEqual(neg)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValue_BinaryIsDefensivelyCopied(t *testing.T) {
	src := []byte{1, 2, 3}
	v := FromBinary(src)
	src[0] = 99

	got, err := v.AsBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	// The accessor's copy is independent too.
	got[1] = 99
	again, err := v.AsBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, again)
}

func TestValue_DecimalIsDefensivelyCopied(t *testing.T) {
	d := mustDecimal(t, "1.5")
	v := FromDecimal(d)
	d.SetInt64(99)

	got, err := v.AsDecimal()
	require.NoError(t, err)
	assert.Zero(t, got.Cmp(mustDecimal(t, "1.5")))
}

func TestValue_TypedClass(t *testing.T) {
	assert.Equal(t, "null", Null().TypedClass())
	assert.Equal(t, "int64", FromInt(1).TypedClass())
	assert.Equal(t, "string", FromString("x").TypedClass())
	assert.Equal(t, "time.Time", FromTime(time.Now()).TypedClass())

	sess := newFakeSession("s1", true)
	obj := sess.insert("Person", 1)
	assert.Equal(t, "Person", FromObject(obj).TypedClass())
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "null", Null().String())
	assert.Equal(t, "true", FromBool(true).String())
	assert.Equal(t, "-7", FromInt(-7).String())
	assert.Equal(t, "hello", FromString("hello").String())
	assert.Equal(t, "0x010203", FromBinary([]byte{1, 2, 3}).String())
}

func TestValue_PackedMemoization(t *testing.T) {
	var packs int
	packHook = func(packed.Kind) { packs++ }
	defer func() { packHook = nil }()

	v := FromString("memo")
	p1, err := v.Packed()
	require.NoError(t, err)
	p2, err := v.Packed()
	require.NoError(t, err)

	assert.Same(t, p1, p2)
	assert.Equal(t, 1, packs, "handle must be built exactly once")
}

func TestValue_PackedFailureIsNotCached(t *testing.T) {
	var packs int
	packHook = func(packed.Kind) { packs++ }
	defer func() { packHook = nil }()

	v := FromObject(unmanagedObject("Person"))

	_, err := v.Packed()
	require.Error(t, err)
	assert.True(t, IsInvalidReference(err))

	// A second attempt fails the same way instead of returning a stale
	// handle.
	_, err = v.Packed()
	assert.True(t, IsInvalidReference(err))
	assert.Zero(t, packs)
}

func TestValue_FromPackedDoesNotRepack(t *testing.T) {
	var packs int
	packHook = func(packed.Kind) { packs++ }
	defer func() { packHook = nil }()

	p, err := packed.Decode(packed.NewString("stored").Bytes())
	require.NoError(t, err)

	v, err := FromPacked(nil, p)
	require.NoError(t, err)

	got, err := v.Packed()
	require.NoError(t, err)
	assert.Same(t, p, got)
	assert.Zero(t, packs, "decoded values keep their handle")
}

func TestValue_CoercedEqual(t *testing.T) {
	ok, err := FromInt(3).CoercedEqual(FromFloat64(3.0))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = FromInt(3).CoercedEqual(FromString("3"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = FromDecimal(mustDecimal(t, "2.50")).CoercedEqual(FromFloat32(2.5))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = FromInt(3).CoercedEqual(nil)
	require.NoError(t, err)
	assert.False(t, ok)

	// Unmanaged references cannot realize, so coercion surfaces the
	// packing error.
	_, err = FromObject(unmanagedObject("Person")).CoercedEqual(FromInt(3))
	assert.True(t, IsInvalidReference(err))
}
