package packed

import (
	"bytes"
	"math"

	"github.com/cockroachdb/apd/v3"
)

// CoercedEquals compares two packed values by content, independent of
// which in-memory value or session produced them.
//
// Identical encodings are equal by definition, which also makes the
// comparison reflexive for payloads that are not equal to themselves
// numerically (a stored NaN equals its own encoding). Beyond that,
// numeric kinds coerce: an int, float, double or decimal holding the
// same number compare equal regardless of kind. All other cross-kind
// pairs are unequal.
func (v *Value) CoercedEquals(other *Value) bool {
	if other == nil {
		return false
	}
	if bytes.Equal(v.buf, other.buf) {
		return true
	}
	if v.Kind().Numeric() && other.Kind().Numeric() {
		return numericEquals(v, other)
	}
	return false
}

func numericEquals(a, b *Value) bool {
	// Same-representation pairs take the cheap path. Distinct NaN bit
	// patterns fall through to the float comparison and stay unequal.
	if isFloatKind(a.Kind()) && isFloatKind(b.Kind()) {
		return floatValue(a) == floatValue(b)
	}
	da, ok := toDecimal(a)
	if !ok {
		return false
	}
	db, ok := toDecimal(b)
	if !ok {
		return false
	}
	return da.Cmp(db) == 0
}

func isFloatKind(k Kind) bool {
	return k == KindFloat || k == KindDouble
}

func floatValue(v *Value) float64 {
	if v.Kind() == KindFloat {
		f, _ := v.AsFloat()
		return float64(f)
	}
	f, _ := v.AsDouble()
	return f
}

// toDecimal widens a numeric payload to an apd.Decimal for exact
// cross-kind comparison. NaN payloads report !ok: NaN never equals
// anything under coercion (the raw-bytes path already covered the
// identical-encoding case).
func toDecimal(v *Value) (*apd.Decimal, bool) {
	d := new(apd.Decimal)
	switch v.Kind() {
	case KindInt:
		i, _ := v.AsInt()
		return d.SetInt64(i), true
	case KindFloat, KindDouble:
		f := floatValue(v)
		if math.IsNaN(f) {
			return nil, false
		}
		if math.IsInf(f, 0) {
			d.Form = apd.Infinite
			d.Negative = math.Signbit(f)
			return d, true
		}
		if _, err := d.SetFloat64(f); err != nil {
			return nil, false
		}
		return d, true
	case KindDecimal:
		parsed, err := v.AsDecimal()
		if err != nil {
			return nil, false
		}
		if parsed.Form == apd.NaN || parsed.Form == apd.NaNSignaling {
			return nil, false
		}
		return parsed, true
	}
	return nil, false
}
