package mixed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karstdb/karst/internal/packed"
)

func TestFromPacked_Primitives(t *testing.T) {
	v, err := FromPacked(nil, packed.NewString("hello"))
	require.NoError(t, err)
	s, err := v.AsString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	v, err = FromPacked(nil, packed.NewInt(-9))
	require.NoError(t, err)
	i, err := v.AsInt()
	require.NoError(t, err)
	assert.Equal(t, int64(-9), i)

	v, err = FromPacked(nil, packed.NewNull())
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	// Null decoded from storage equals null constructed directly.
	assert.True(t, v.Equal(Null()))
	assert.True(t, Null().Equal(v))
	assert.Equal(t, Null().HashCode(), v.HashCode())
}

func TestFromPacked_ObjectRequiresSession(t *testing.T) {
	_, err := FromPacked(nil, packed.NewLink("class_Person", 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a session")
}

func TestFromPacked_StaticResolution(t *testing.T) {
	sess := newFakeSession("s1", true)
	sess.declare("Person")
	sess.insert("Person", 1)

	v, err := FromPacked(sess, packed.NewLink("class_Person", 1))
	require.NoError(t, err)

	assert.Equal(t, packed.KindObject, v.Kind())
	assert.Equal(t, "Person", v.TypedClass())
	assert.False(t, v.IsDynamicObject())

	obj, err := v.AsObject()
	require.NoError(t, err)
	assert.Equal(t, "class_Person", obj.Table())
	assert.Equal(t, int64(1), obj.Key())
	assert.True(t, obj.IsManaged())
}

func TestFromPacked_DynamicFallback(t *testing.T) {
	// Typed session, but the table's class is not declared.
	sess := newFakeSession("s1", true)
	sess.insert("Ghost", 3)

	v, err := FromPacked(sess, packed.NewLink("class_Ghost", 3))
	require.NoError(t, err)
	assert.True(t, v.IsDynamicObject())
	assert.Equal(t, "Ghost", v.TypedClass())
}

func TestFromPacked_DynamicSession(t *testing.T) {
	sess := newFakeSession("s1", false)
	sess.insert("Person", 2)

	v, err := FromPacked(sess, packed.NewLink("class_Person", 2))
	require.NoError(t, err)
	assert.True(t, v.IsDynamicObject())
	assert.Equal(t, "Person", v.TypedClass())
}

func TestFromPacked_MediationErrorPropagates(t *testing.T) {
	sess := newFakeSession("s1", true)
	sess.declare("Person")
	sess.mediationErr = errors.New("schema cache poisoned")

	_, err := FromPacked(sess, packed.NewLink("class_Person", 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema cache poisoned")
}

func TestObjectValue_Equality(t *testing.T) {
	sess := newFakeSession("s1", true)
	sess.declare("Person")
	a := sess.insert("Person", 1)

	// Two distinct wrappers for the same row in the same session.
	b, err := sess.Resolve("Person", 1)
	require.NoError(t, err)

	va := FromObject(a)
	vb := FromObject(b)
	assert.True(t, va.Equal(vb))
	assert.Equal(t, va.HashCode(), vb.HashCode())

	// Same row key in a different session is a different object.
	other := newFakeSession("s2", true)
	other.declare("Person")
	vc := FromObject(other.insert("Person", 1))
	assert.False(t, va.Equal(vc))

	// Different rows differ.
	vd := FromObject(sess.insert("Person", 2))
	assert.False(t, va.Equal(vd))

	// Object references never equal other kinds or null.
	assert.False(t, va.Equal(Null()))
	assert.False(t, va.Equal(FromInt(1)))
}

func TestObjectValue_UnmanagedEquality(t *testing.T) {
	u := unmanagedObject("Person")
	va := FromObject(u)
	vb := FromObject(u)
	vc := FromObject(unmanagedObject("Person"))

	// Unmanaged references compare by instance identity.
	assert.True(t, va.Equal(vb))
	assert.False(t, va.Equal(vc))
}

func TestObjectValue_Validate(t *testing.T) {
	sess := newFakeSession("s1", true)
	sess.declare("Person")
	obj := sess.insert("Person", 1)
	v := FromObject(obj)

	require.NoError(t, v.Validate(sess))

	// Validation is per-call: deleting the row invalidates an already
	// constructed value.
	sess.delete("class_Person", 1)
	err := v.Validate(sess)
	assert.True(t, IsInvalidReference(err))

	// Reinserting makes the same value pass again.
	sess.insert("Person", 1)
	require.NoError(t, v.Validate(sess))

	// A different session rejects the reference.
	other := newFakeSession("s2", true)
	err = v.Validate(other)
	assert.True(t, IsCrossSession(err))
}

func TestObjectValue_ValidateUnmanaged(t *testing.T) {
	sess := newFakeSession("s1", true)
	err := FromObject(unmanagedObject("Person")).Validate(sess)
	assert.True(t, IsInvalidReference(err))
}

func TestPrimitiveValue_ValidateAlwaysPasses(t *testing.T) {
	sess := newFakeSession("s1", true)
	require.NoError(t, Null().Validate(sess))
	require.NoError(t, FromInt(1).Validate(sess))
	require.NoError(t, FromString("x").Validate(sess))
}

func TestObjectValue_PackedLink(t *testing.T) {
	sess := newFakeSession("s1", true)
	sess.declare("Person")
	obj := sess.insert("Person", 5)

	p, err := FromObject(obj).Packed()
	require.NoError(t, err)
	assert.Equal(t, packed.KindObject, p.Kind())

	table, err := p.LinkTable()
	require.NoError(t, err)
	assert.Equal(t, "class_Person", table)
	key, err := p.LinkKey()
	require.NoError(t, err)
	assert.Equal(t, int64(5), key)
}

func TestFromPacked_RoundTripObject(t *testing.T) {
	sess := newFakeSession("s1", true)
	sess.declare("Person")
	obj := sess.insert("Person", 7)

	p, err := FromObject(obj).Packed()
	require.NoError(t, err)

	v, err := FromPacked(sess, p)
	require.NoError(t, err)

	back, err := v.AsObject()
	require.NoError(t, err)
	assert.Equal(t, obj.Table(), back.Table())
	assert.Equal(t, obj.Key(), back.Key())
	assert.True(t, FromObject(obj).Equal(v))
}
