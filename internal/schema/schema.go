// Package schema compiles CUE class declarations and mediates between
// storage-level table names and application-declared classes.
//
// A schema file declares classes and their field types:
//
//	class: Person: fields: {
//		name:  "string"
//		extra: "mixed"
//	}
//
// Each class is backed by one storage table named "class_<Name>". The
// mediator resolves a table back to its declared class; a table with no
// declaration is reported with ErrClassNotFound, which the value layer
// treats as the signal to fall back to dynamic resolution.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// tablePrefix separates storage table names from class names.
const tablePrefix = "class_"

// ErrClassNotFound reports that a table has no declared class. It is an
// expected condition, not a failure: callers fall back to dynamic
// resolution when they see it.
var ErrClassNotFound = errors.New("class not found in schema")

// ValidFieldTypes is the closed set of declarable field types.
var ValidFieldTypes = map[string]bool{
	"bool":     true,
	"int":      true,
	"float":    true,
	"double":   true,
	"string":   true,
	"binary":   true,
	"date":     true,
	"decimal":  true,
	"objectID": true,
	"uuid":     true,
	"object":   true,
	"mixed":    true,
}

// Class is a compiled class declaration.
type Class struct {
	Name   string
	Table  string
	Fields map[string]string // field name -> declared type
}

// Schema is a compiled set of class declarations.
type Schema struct {
	classes map[string]Class // keyed by class name
	tables  map[string]Class // keyed by table name
}

// NewSchema builds a Schema from compiled classes. Duplicate class names
// are rejected.
func NewSchema(classes []Class) (*Schema, error) {
	s := &Schema{
		classes: make(map[string]Class, len(classes)),
		tables:  make(map[string]Class, len(classes)),
	}
	for _, c := range classes {
		if _, dup := s.classes[c.Name]; dup {
			return nil, fmt.Errorf("duplicate class %q", c.Name)
		}
		s.classes[c.Name] = c
		s.tables[c.Table] = c
	}
	return s, nil
}

// Class looks up a declared class by name.
func (s *Schema) Class(name string) (Class, error) {
	c, ok := s.classes[name]
	if !ok {
		return Class{}, fmt.Errorf("class %q: %w", name, ErrClassNotFound)
	}
	return c, nil
}

// ClassForTable maps a storage table to its declared class. Undeclared
// tables fail with ErrClassNotFound.
func (s *Schema) ClassForTable(table string) (Class, error) {
	c, ok := s.tables[table]
	if !ok {
		return Class{}, fmt.Errorf("table %q: %w", table, ErrClassNotFound)
	}
	return c, nil
}

// Classes returns all declared classes in unspecified order.
func (s *Schema) Classes() []Class {
	out := make([]Class, 0, len(s.classes))
	for _, c := range s.classes {
		out = append(out, c)
	}
	return out
}

// TableForClass derives the storage table name for a class name.
func TableForClass(class string) string {
	return tablePrefix + class
}

// ClassNameForTable derives a class name from a storage table name.
// Used for dynamic resolution, where no declaration exists and the name
// is all the caller gets.
func ClassNameForTable(table string) string {
	return strings.TrimPrefix(table, tablePrefix)
}
