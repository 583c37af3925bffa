package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpen_AppliesPragmas(t *testing.T) {
	st := openTestStore(t)

	assert.NoError(t, st.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, st.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, st.verifyPragma("busy_timeout", "5000"))
}

func TestOpen_SetsSchemaVersion(t *testing.T) {
	st := openTestStore(t)

	var version int
	require.NoError(t, st.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	st1, err := Open(path)
	require.NoError(t, err)

	ctx := context.Background()
	key, err := st1.CreateObject(ctx, "class_Person")
	require.NoError(t, err)
	require.NoError(t, st1.Close())

	// Reopening preserves data and reruns migrations harmlessly.
	st2, err := Open(path)
	require.NoError(t, err)
	defer st2.Close()

	ok, err := st2.HasObject(ctx, "class_Person", key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateObject_AllocatesPerTable(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	k1, err := st.CreateObject(ctx, "class_Person")
	require.NoError(t, err)
	k2, err := st.CreateObject(ctx, "class_Person")
	require.NoError(t, err)
	k3, err := st.CreateObject(ctx, "class_Note")
	require.NoError(t, err)

	assert.Equal(t, int64(1), k1)
	assert.Equal(t, int64(2), k2)
	assert.Equal(t, int64(1), k3, "keys allocate independently per table")
}

func TestDeleteObject(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	key, err := st.CreateObject(ctx, "class_Person")
	require.NoError(t, err)

	require.NoError(t, st.DeleteObject(ctx, "class_Person", key))

	ok, err := st.HasObject(ctx, "class_Person", key)
	require.NoError(t, err)
	assert.False(t, ok)

	err = st.DeleteObject(ctx, "class_Person", key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteObject_CascadesFields(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	key, err := st.CreateObject(ctx, "class_Person")
	require.NoError(t, err)
	require.NoError(t, st.SetField(ctx, "class_Person", key, "name", []byte("x")))

	require.NoError(t, st.DeleteObject(ctx, "class_Person", key))

	_, err = st.Field(ctx, "class_Person", key, "name")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetField_Upserts(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	key, err := st.CreateObject(ctx, "class_Person")
	require.NoError(t, err)

	require.NoError(t, st.SetField(ctx, "class_Person", key, "name", []byte("first")))
	require.NoError(t, st.SetField(ctx, "class_Person", key, "name", []byte("second")))

	got, err := st.Field(ctx, "class_Person", key, "name")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestSetField_MissingObject(t *testing.T) {
	st := openTestStore(t)

	err := st.SetField(context.Background(), "class_Person", 99, "name", []byte("x"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestField_Missing(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	key, err := st.CreateObject(ctx, "class_Person")
	require.NoError(t, err)

	_, err = st.Field(ctx, "class_Person", key, "unset")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFields_ReturnsAllSet(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	key, err := st.CreateObject(ctx, "class_Person")
	require.NoError(t, err)
	require.NoError(t, st.SetField(ctx, "class_Person", key, "b", []byte{2}))
	require.NoError(t, st.SetField(ctx, "class_Person", key, "a", []byte{1}))

	fields, err := st.Fields(ctx, "class_Person", key)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": {1}, "b": {2}}, fields)
}

func TestDeleteField(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	key, err := st.CreateObject(ctx, "class_Person")
	require.NoError(t, err)
	require.NoError(t, st.SetField(ctx, "class_Person", key, "name", []byte("x")))

	require.NoError(t, st.DeleteField(ctx, "class_Person", key, "name"))

	_, err = st.Field(ctx, "class_Person", key, "name")
	assert.ErrorIs(t, err, ErrNotFound)

	err = st.DeleteField(ctx, "class_Person", key, "name")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestObjectsAndTables(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := st.CreateObject(ctx, "class_Person")
		require.NoError(t, err)
	}
	_, err := st.CreateObject(ctx, "class_Note")
	require.NoError(t, err)

	keys, err := st.Objects(ctx, "class_Person")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, keys)

	tables, err := st.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"class_Note", "class_Person"}, tables)

	keys, err = st.Objects(ctx, "class_Missing")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
