package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCUE(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
}

func TestLoadDir_SingleFile(t *testing.T) {
	dir := t.TempDir()
	writeCUE(t, dir, "schema.cue", `class: Person: fields: name: "string"`)

	sch, err := LoadDir(dir)
	require.NoError(t, err)

	c, err := sch.Class("Person")
	require.NoError(t, err)
	assert.Equal(t, "string", c.Fields["name"])
}

func TestLoadDir_UnifiesMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	writeCUE(t, dir, "person.cue", `class: Person: fields: name: "string"`)
	writeCUE(t, dir, "note.cue", `class: Note: fields: body: "mixed"`)

	sch, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, sch.Classes(), 2)
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadDir_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeCUE(t, dir, "schema.cue", `class: Person: fields: name: "string"`)

	_, err := LoadDir(filepath.Join(dir, "schema.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestLoadDir_EmptyDirectory(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no CUE files")
}

func TestLoadDir_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeCUE(t, dir, "broken.cue", `class: Person: fields: {`)

	_, err := LoadDir(dir)
	assert.Error(t, err)
}

func TestLoadDir_InvalidFieldType(t *testing.T) {
	dir := t.TempDir()
	writeCUE(t, dir, "schema.cue", `class: Person: fields: name: "varchar"`)

	_, err := LoadDir(dir)
	require.Error(t, err)

	var ce *CompileError
	assert.ErrorAs(t, err, &ce)
}
