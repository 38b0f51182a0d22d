package primitive

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"time"
)

// CategoryEnum tells how a scalar kind is carried in structured form.
type CategoryEnum int

const (
	CategoryIdentity  CategoryEnum = 1 << iota // native and structured forms coincide
	CategoryDuration                           // string(2h45m) <-> time.Duration: textual duration representation
	CategoryBigNumber                          // string(decimal) <-> *big.Int, *big.Float: textual number representation

	CategoryAll  = (1 << iota) - 1 //all categories combined
	CategoryNone = 0               // no categories selected
)

var ErrNotScalar = errors.New("value does not match scalar kind")

// CategoryOf returns the structured representation category of k,
// or CategoryNone for the zero kind.
func CategoryOf(k KindEnum) CategoryEnum {
	switch {
	case k == KindDuration:
		return CategoryDuration
	case k == KindBigInt, k == KindBigFloat:
		return CategoryBigNumber
	case k.IsPrimitive(), k == KindString, k == KindTime:
		return CategoryIdentity
	default:
		return CategoryNone
	}
}

// Format renders v, a native value of kind k, in its textual form.
func Format(k KindEnum, v any) (string, error) {
	switch k {
	case KindDuration:
		d, ok := v.(time.Duration)
		if !ok {
			return "", fmt.Errorf("%w: %T is not %s", ErrNotScalar, v, k.Name())
		}
		return d.String(), nil
	case KindBigInt:
		switch n := v.(type) {
		case *big.Int:
			if n == nil {
				return "", fmt.Errorf("%w: nil %s", ErrNotScalar, k.Name())
			}
			return n.Text(10), nil
		case big.Int:
			return n.Text(10), nil
		}
	case KindBigFloat:
		switch n := v.(type) {
		case *big.Float:
			if n == nil {
				return "", fmt.Errorf("%w: nil %s", ErrNotScalar, k.Name())
			}
			return n.Text('g', -1), nil
		case big.Float:
			return n.Text('g', -1), nil
		}
	case KindTime:
		t, ok := v.(time.Time)
		if !ok {
			return "", fmt.Errorf("%w: %T is not %s", ErrNotScalar, v, k.Name())
		}
		return t.Format(time.RFC3339Nano), nil
	default:
		if k.IsPrimitive() || k == KindString {
			return fmt.Sprint(v), nil
		}
	}

	return "", fmt.Errorf("%w: %T is not %s", ErrNotScalar, v, k.Name())
}

// Parse is the inverse of Format for the textual categories.
func Parse(k KindEnum, s string) (any, error) {
	switch k {
	case KindDuration:
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotScalar, err)
		}
		return d, nil
	case KindBigInt:
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a decimal integer", ErrNotScalar, s)
		}
		return n, nil
	case KindBigFloat:
		n, ok := new(big.Float).SetString(s)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a decimal number", ErrNotScalar, s)
		}
		return n, nil
	case KindTime:
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotScalar, err)
		}
		return t, nil
	case KindString:
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %s has no textual form", ErrNotScalar, k.Name())
	}
}

// Coerce checks that v carries kind k and converts numeric values of a
// different width into the native type of k. Structured values that went
// through a generic decoder (float64 for every JSON number, say) come back
// with the right Go type this way.
func Coerce(k KindEnum, v any) (any, error) {
	want := k.ReflectType()
	if want == nil || v == nil {
		return nil, fmt.Errorf("%w: %v is not %s", ErrNotScalar, v, k.Name())
	}

	rv := reflect.ValueOf(v)
	if rv.Type() == want {
		return v, nil
	}

	// defined types over the same underlying kind, e.g. `type Name string`
	if rv.Kind() == want.Kind() && rv.Type().ConvertibleTo(want) && want.Kind() != reflect.Struct && want.Kind() != reflect.Pointer {
		return rv.Convert(want).Interface(), nil
	}

	if k.IsNumber() && FromReflectType(rv.Type()).IsNumber() {
		conv := rv.Convert(want)
		// reject lossy conversions: the value must survive the way back
		if !conv.Convert(rv.Type()).Equal(rv) {
			return nil, fmt.Errorf("%w: %v overflows %s", ErrNotScalar, v, k.Name())
		}
		return conv.Interface(), nil
	}

	return nil, fmt.Errorf("%w: %T is not %s", ErrNotScalar, v, k.Name())
}
