// Package testutil provides shared helpers for tests that need a live
// session over a temporary database.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/require"

	"github.com/karstdb/karst/internal/schema"
	"github.com/karstdb/karst/internal/session"
)

// DefaultSchema declares two classes used by most integration tests.
//
// Person has a mixed field and an object reference; Note exists so
// tests can exercise references across classes.
const DefaultSchema = `class: {
	Person: fields: {
		name:   "string"
		extra:  "mixed"
		spouse: "object"
	}
	Note: fields: {
		body: "mixed"
	}
}
`

// CompileSchema compiles CUE source into a Schema, failing the test on
// any compile error.
func CompileSchema(t *testing.T, src string) *schema.Schema {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	sch, err := schema.Compile(v)
	require.NoError(t, err)
	return sch
}

// WriteSchemaDir writes CUE source into a fresh temporary directory and
// returns the directory path. Used by CLI tests that load schemas from
// disk.
func WriteSchemaDir(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "schema.cue"), []byte(src), 0o644)
	require.NoError(t, err)
	return dir
}

// TempDBPath returns a database path inside a fresh temporary
// directory.
func TempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "karst.db")
}

// NewTypedSession opens a typed session over a fresh temporary database
// using the given CUE schema source. The session is closed when the
// test finishes.
func NewTypedSession(t *testing.T, src string) *session.Session {
	t.Helper()
	sess, err := session.OpenTyped(TempDBPath(t), CompileSchema(t, src))
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })
	return sess
}

// NewDynamicSession opens a schema-less session over a fresh temporary
// database. The session is closed when the test finishes.
func NewDynamicSession(t *testing.T) *session.Session {
	t.Helper()
	sess, err := session.OpenDynamic(TempDBPath(t))
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })
	return sess
}
