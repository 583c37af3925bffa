package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"
)

// Compile parses a CUE value holding class declarations into a Schema.
// Uses the CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value is the file root, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`class: Person: fields: { name: "string" }`)
//	sch, err := schema.Compile(v)
func Compile(v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	classVal := v.LookupPath(cue.ParsePath("class"))
	if !classVal.Exists() {
		return nil, &CompileError{
			Field:   "class",
			Message: "no class declarations found",
			Pos:     v.Pos(),
		}
	}

	iter, err := classVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var classes []Class
	for iter.Next() {
		c, err := compileClass(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	if len(classes) == 0 {
		return nil, &CompileError{
			Field:   "class",
			Message: "at least one class is required",
			Pos:     classVal.Pos(),
		}
	}

	return NewSchema(classes)
}

// compileClass parses a single class declaration.
func compileClass(name string, v cue.Value) (Class, error) {
	// Identifiers are NFC-normalized so the table<->class mapping is
	// canonical regardless of how the declaration file was encoded.
	name = norm.NFC.String(name)

	c := Class{
		Name:   name,
		Table:  TableForClass(name),
		Fields: make(map[string]string),
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return c, &CompileError{
			Field:   fmt.Sprintf("class.%s.fields", name),
			Message: "fields are required",
			Pos:     v.Pos(),
		}
	}

	fieldIter, err := fieldsVal.Fields()
	if err != nil {
		return c, formatCUEError(err)
	}
	for fieldIter.Next() {
		fieldName := norm.NFC.String(fieldIter.Label())
		typeName, err := fieldIter.Value().String()
		if err != nil {
			return c, formatCUEError(err)
		}
		if !ValidFieldTypes[typeName] {
			return c, &CompileError{
				Field:   fmt.Sprintf("class.%s.fields.%s", name, fieldName),
				Message: fmt.Sprintf("unknown field type %q", typeName),
				Pos:     fieldIter.Value().Pos(),
			}
		}
		c.Fields[fieldName] = typeName
	}
	if len(c.Fields) == 0 {
		return c, &CompileError{
			Field:   fmt.Sprintf("class.%s.fields", name),
			Message: "at least one field is required",
			Pos:     fieldsVal.Pos(),
		}
	}

	return c, nil
}

// CompileError represents a schema compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
