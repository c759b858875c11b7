package graphmodel

import (
	"fmt"
	"strconv"
)

// ValueKind enumerates the scalar types a property value may hold.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindString
	KindBool
)

// Value is a scalar property value. Properties on stored nodes and edges,
// where-clause constants, and projected result columns all use this type.
type Value struct {
	Kind ValueKind
	I    int64
	F    float64
	S    string
	B    bool
}

func NullValue() Value           { return Value{Kind: KindNull} }
func IntValue(i int64) Value     { return Value{Kind: KindInt, I: i} }
func FloatValue(f float64) Value { return Value{Kind: KindFloat, F: f} }
func StringValue(s string) Value { return Value{Kind: KindString, S: s} }
func BoolValue(b bool) Value     { return Value{Kind: KindBool, B: b} }

// ValueFrom converts a plain Go scalar into a Value. It accepts the types
// the parser hands over as where-clause constants.
func ValueFrom(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return NullValue(), nil
	case int:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case float64:
		return FloatValue(x), nil
	case string:
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case Value:
		return x, nil
	default:
		return NullValue(), fmt.Errorf("unsupported constant type %T", v)
	}
}

// IsNull reports whether the value holds nothing.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

func (v Value) numeric() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.I), true
	case KindFloat:
		return v.F, true
	default:
		return 0, false
	}
}

// Compare orders two values, returning a negative number, zero, or a
// positive number as v is less than, equal to, or greater than o.
// Int and float values compare numerically against each other; all other
// cross-kind comparisons are errors.
func (v Value) Compare(o Value) (int, error) {
	if vn, ok := v.numeric(); ok {
		on, ook := o.numeric()
		if !ook {
			return 0, fmt.Errorf("cannot compare %s against %s", v.Kind, o.Kind)
		}
		switch {
		case vn < on:
			return -1, nil
		case vn > on:
			return 1, nil
		default:
			return 0, nil
		}
	}

	if v.Kind != o.Kind {
		return 0, fmt.Errorf("cannot compare %s against %s", v.Kind, o.Kind)
	}

	switch v.Kind {
	case KindString:
		switch {
		case v.S < o.S:
			return -1, nil
		case v.S > o.S:
			return 1, nil
		default:
			return 0, nil
		}
	case KindBool:
		vb, ob := 0, 0
		if v.B {
			vb = 1
		}
		if o.B {
			ob = 1
		}
		return vb - ob, nil
	case KindNull:
		return 0, nil
	default:
		return 0, fmt.Errorf("cannot compare values of kind %s", v.Kind)
	}
}

// Equals reports whether two values compare equal. Incomparable kinds are
// simply not equal.
func (v Value) Equals(o Value) bool {
	c, err := v.Compare(o)
	return err == nil && c == 0
}

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt:
		return strconv.FormatInt(v.I, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case KindString:
		return v.S
	case KindBool:
		return strconv.FormatBool(v.B)
	default:
		return "?"
	}
}
