package mixed

import (
	"errors"
	"fmt"

	"github.com/karstdb/karst/internal/packed"
	"github.com/karstdb/karst/internal/schema"
)

// FromPacked decodes a stored packed value into a Value, dispatching on
// the type tag. The payload is extracted eagerly and the handle is kept,
// so the returned value never re-packs.
//
// sess is required only for object-reference payloads; primitive kinds
// accept a nil session. A tag outside the closed kind set fails with an
// unknown-type error: it means the stored bytes and this binding
// disagree about the format, which is not recoverable.
func FromPacked(sess Session, p *packed.Value) (*Value, error) {
	switch k := p.Kind(); k {
	case packed.KindNull:
		return &Value{op: &nullOperand{newDecodedBase(k, p)}}, nil
	case packed.KindBool:
		b, err := p.AsBool()
		if err != nil {
			return nil, err
		}
		return &Value{op: &boolOperand{operandBase: newDecodedBase(k, p), v: b}}, nil
	case packed.KindInt:
		i, err := p.AsInt()
		if err != nil {
			return nil, err
		}
		return &Value{op: &intOperand{operandBase: newDecodedBase(k, p), v: i}}, nil
	case packed.KindFloat:
		f, err := p.AsFloat()
		if err != nil {
			return nil, err
		}
		return &Value{op: &floatOperand{operandBase: newDecodedBase(k, p), v: f}}, nil
	case packed.KindDouble:
		f, err := p.AsDouble()
		if err != nil {
			return nil, err
		}
		return &Value{op: &doubleOperand{operandBase: newDecodedBase(k, p), v: f}}, nil
	case packed.KindString:
		s, err := p.AsString()
		if err != nil {
			return nil, err
		}
		return &Value{op: &stringOperand{operandBase: newDecodedBase(k, p), v: s}}, nil
	case packed.KindBinary:
		b, err := p.AsBinary()
		if err != nil {
			return nil, err
		}
		return &Value{op: &binaryOperand{operandBase: newDecodedBase(k, p), v: b}}, nil
	case packed.KindDate:
		t, err := p.AsDate()
		if err != nil {
			return nil, err
		}
		return &Value{op: &dateOperand{operandBase: newDecodedBase(k, p), v: t}}, nil
	case packed.KindDecimal:
		d, err := p.AsDecimal()
		if err != nil {
			return nil, err
		}
		return &Value{op: &decimalOperand{operandBase: newDecodedBase(k, p), v: d}}, nil
	case packed.KindObjectID:
		id, err := p.AsObjectID()
		if err != nil {
			return nil, err
		}
		return &Value{op: &objectIDOperand{operandBase: newDecodedBase(k, p), v: id}}, nil
	case packed.KindUUID:
		u, err := p.AsUUID()
		if err != nil {
			return nil, err
		}
		return &Value{op: &uuidOperand{operandBase: newDecodedBase(k, p), v: u}}, nil
	case packed.KindObject:
		if sess == nil {
			return nil, fmt.Errorf("mixed: object reference requires a session")
		}
		op, err := resolveObject(sess, p)
		if err != nil {
			return nil, err
		}
		return &Value{op: op}, nil
	default:
		return nil, newUnknownType(k)
	}
}

// resolveObject binds an object-reference payload to a managed object.
//
// Typed sessions try static resolution first: schema mediation maps the
// table to its declared class. Only a class-not-found miss falls back to
// dynamic resolution; any other mediation failure propagates, on the
// grounds that a schema that knows the table but cannot produce its
// class is broken, not merely incomplete.
func resolveObject(sess Session, p *packed.Value) (*objectOperand, error) {
	table, err := p.LinkTable()
	if err != nil {
		return nil, err
	}
	key, err := p.LinkKey()
	if err != nil {
		return nil, err
	}

	if sess.Typed() {
		class, err := sess.ClassForTable(table)
		switch {
		case err == nil:
			obj, err := sess.Resolve(class, key)
			if err != nil {
				return nil, fmt.Errorf("resolve %s[%d]: %w", class, key, err)
			}
			return &objectOperand{
				operandBase: newDecodedBase(packed.KindObject, p),
				obj:         obj,
				class:       class,
			}, nil
		case errors.Is(err, schema.ErrClassNotFound):
			// Fall through to dynamic resolution.
		default:
			return nil, fmt.Errorf("schema mediation for table %q: %w", table, err)
		}
	}

	obj, err := sess.ResolveDynamic(table, key)
	if err != nil {
		return nil, fmt.Errorf("resolve dynamic %s[%d]: %w", table, key, err)
	}
	return &objectOperand{
		operandBase: newDecodedBase(packed.KindObject, p),
		obj:         obj,
		class:       schema.ClassNameForTable(table),
		dynamic:     true,
	}, nil
}
