package convert

import (
	"encoding"
	"fmt"
	"reflect"

	"typeconv/internal/diagnostic"
	"typeconv/internal/match"
	"typeconv/internal/typelib"
	"typeconv/primitive"
)

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// Converter converts between native values of one descriptor and their
// structured form. Converters are immutable and safe for concurrent use.
type Converter struct {
	typ      typelib.Descriptor
	schema   Schema
	native   reflect.Type
	identity bool
	lossy    bool
	to       func(any) (any, error)
	from     func(any) (any, error)
	notes    []diagnostic.Diagnostic // recorded by the Builder when the converter is first cached
}

// Type returns the descriptor the converter was built for.
func (c *Converter) Type() typelib.Descriptor { return c.typ }

// Schema returns the structured schema.
func (c *Converter) Schema() Schema { return c.schema }

// Native returns the Go type FromStructured produces. It is nil when the
// descriptor is not bound to a Go type.
func (c *Converter) Native() reflect.Type { return c.native }

// IsIdentity reports whether correctly typed native values are already in
// structured form, so callers may skip conversion.
func (c *Converter) IsIdentity() bool { return c.identity }

// Lossy reports whether the structured form drops information, as the
// textual fallback does.
func (c *Converter) Lossy() bool { return c.lossy }

// ToStructured converts a native value to its structured form.
func (c *Converter) ToStructured(v any) (any, error) { return c.to(v) }

// FromStructured converts a structured value back to its native form.
func (c *Converter) FromStructured(v any) (any, error) { return c.from(v) }

func (c *Converter) String() string {
	return c.typ.String() + " => " + c.schema.String()
}

func (c *Converter) nativeOrAny() reflect.Type {
	if c.native == nil {
		return anyType
	}
	return c.native
}

// isNil reports whether v is nil or a nil pointer, map, slice or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// nilOf is the native counterpart of a structured nil: the nil value of
// native, or an untyped nil when native has none.
func nilOf(native reflect.Type) any {
	if native == nil {
		return nil
	}
	switch native.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return reflect.Zero(native).Interface()
	default:
		return nil
	}
}

func primitiveConverter(d *typelib.Primitive) *Converter {
	k := d.PrimitiveKind
	coerce := func(v any) (any, error) {
		if v == nil && k == primitive.KindVoid {
			return struct{}{}, nil
		}
		out, err := primitive.Coerce(k, v)
		if err != nil {
			return nil, &ConversionError{Type: d, Value: v, Reason: "not a " + k.Name(), Err: err}
		}
		return out, nil
	}

	return &Converter{
		typ:      d,
		schema:   &ScalarSchema{Scalar: k},
		native:   k.ReflectType(),
		identity: true,
		to:       coerce,
		from:     coerce,
	}
}

// scalarClasses are the predeclared classes with a scalar structured form.
var scalarClasses = map[typelib.TypeID]primitive.KindEnum{
	typelib.StringID:   primitive.KindString,
	typelib.TimeID:     primitive.KindTime,
	typelib.DurationID: primitive.KindDuration,
	typelib.BigIntID:   primitive.KindBigInt,
	typelib.BigFloatID: primitive.KindBigFloat,
}

func scalarConverter(d typelib.Descriptor, k primitive.KindEnum, native reflect.Type) *Converter {
	if native == nil {
		native = k.ReflectType()
	}

	if primitive.CategoryOf(k) == primitive.CategoryIdentity {
		coerce := func(v any) (any, error) {
			out, err := primitive.Coerce(k, v)
			if err != nil {
				return nil, &ConversionError{Type: d, Value: v, Reason: "not a " + k.Name(), Err: err}
			}
			return out, nil
		}
		return &Converter{typ: d, schema: &ScalarSchema{Scalar: k}, native: native, identity: true, to: coerce, from: coerce}
	}

	return &Converter{
		typ:    d,
		schema: &ScalarSchema{Scalar: primitive.KindString},
		native: native,
		to: func(v any) (any, error) {
			if isNil(v) {
				return nil, nil
			}
			s, err := primitive.Format(k, v)
			if err != nil {
				return nil, &ConversionError{Type: d, Value: v, Reason: "not a " + k.Name(), Err: err}
			}
			return s, nil
		},
		from: func(v any) (any, error) {
			if v == nil {
				return nilOf(native), nil
			}
			s, ok := v.(string)
			if !ok {
				return nil, &ConversionError{Type: d, Value: v, Reason: "expected the textual form"}
			}
			out, err := primitive.Parse(k, s)
			if err != nil {
				return nil, &ConversionError{Type: d, Value: v, Reason: "not a " + k.Name(), Err: err}
			}
			return out, nil
		},
	}
}

func enumConverter(d typelib.Descriptor, decl *typelib.Declaration) *Converter {
	constants := decl.Constants()
	names := make([]string, len(constants))
	for i, c := range constants {
		names[i] = c.Name
	}

	return &Converter{
		typ:    d,
		schema: &EnumSchema{Type: decl.ID(), Constants: names},
		native: decl.Native(),
		to: func(v any) (any, error) {
			for _, c := range constants {
				if sameConstant(c.Value, v) {
					return c.Name, nil
				}
			}
			return nil, &ConversionError{Type: d, Value: v, Reason: "not a constant of " + decl.ID().String()}
		},
		from: func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, &ConversionError{Type: d, Value: v, Reason: "expected a constant name"}
			}
			if c, ok := decl.Constant(s); ok {
				return c.Value, nil
			}

			err := &ConversionError{Type: d, Value: v, Reason: "no constant named " + s}
			err.Suggestion, _ = match.Suggest(s, names, match.DefaultThreshold)
			return nil, err
		},
	}
}

func sameConstant(constant, v any) bool {
	if constant == nil || v == nil {
		return constant == v
	}

	cv, vv := reflect.ValueOf(constant), reflect.ValueOf(v)
	if cv.Type() != vv.Type() || !cv.Comparable() {
		return false
	}
	return cv.Equal(vv)
}

// arrayConverter converts dim nested arrays whose innermost elements use inner.
func arrayConverter(d *typelib.ArrayOf, inner *Converter, dim int) *Converter {
	native := inner.nativeOrAny()
	for range dim {
		native = reflect.SliceOf(native)
	}

	var to func(rv reflect.Value, depth int) (any, error)
	to = func(rv reflect.Value, depth int) (any, error) {
		if depth == dim {
			if !rv.IsValid() {
				return inner.ToStructured(nil)
			}
			return inner.ToStructured(rv.Interface())
		}

		rv = indirect(rv)
		switch {
		case !rv.IsValid():
			return nil, nil
		case rv.Kind() == reflect.Slice && rv.IsNil():
			return nil, nil
		case rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array:
			return nil, &ConversionError{Type: d, Value: rv.Interface(), Reason: "expected an array at " + describeDimension(depth, dim)}
		}

		out := make([]any, rv.Len())
		for i := range out {
			sv, err := to(rv.Index(i), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = sv
		}
		return out, nil
	}

	var from func(v any, depth int, t reflect.Type) (reflect.Value, error)
	from = func(v any, depth int, t reflect.Type) (reflect.Value, error) {
		if depth == dim {
			nv, err := inner.FromStructured(v)
			if err != nil {
				return reflect.Value{}, err
			}
			return assignable(d, nv, t)
		}

		if v == nil {
			return reflect.Zero(t), nil
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return reflect.Value{}, &ConversionError{Type: d, Value: v, Reason: "expected a sequence at " + describeDimension(depth, dim)}
		}

		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := range rv.Len() {
			ev, err := from(rv.Index(i).Interface(), depth+1, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	}

	return &Converter{
		typ:    d,
		schema: &ArraySchema{Element: inner.Schema(), Dimension: dim},
		native: native,
		to: func(v any) (any, error) {
			return to(reflect.ValueOf(v), 0)
		},
		from: func(v any) (any, error) {
			out, err := from(v, 0, native)
			if err != nil {
				return nil, err
			}
			return out.Interface(), nil
		},
	}
}

// fallbackConverter renders values through their textual form. Values come
// back only when the native type can parse that text.
func fallbackConverter(d typelib.Descriptor, native reflect.Type, meta MemberMetadata) *Converter {
	return &Converter{
		typ:    d,
		schema: &ScalarSchema{Scalar: primitive.KindString},
		native: native,
		lossy:  true,
		to: func(v any) (any, error) {
			if isNil(v) {
				return nil, nil
			}
			switch v := v.(type) {
			case encoding.TextMarshaler:
				text, err := v.MarshalText()
				if err != nil {
					return nil, &ConversionError{Type: d, Value: v, Reason: "textual form", Err: err}
				}
				return string(text), nil
			case fmt.Stringer:
				return v.String(), nil
			default:
				return fmt.Sprint(v), nil
			}
		},
		from: func(v any) (any, error) {
			if v == nil {
				return nilOf(native), nil
			}
			s, ok := v.(string)
			if !ok {
				return nil, &ConversionError{Type: d, Value: v, Reason: "expected the textual form"}
			}
			if native == nil {
				return nil, &UnsupportedOperationError{Type: d, Op: "rebuild", Reason: "no native type bound"}
			}
			return unmarshalText(d, native, s)
		},
		notes: []diagnostic.Diagnostic{lossyNote(d, meta)},
	}
}

func lossyNote(d typelib.Descriptor, meta MemberMetadata) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticWarning,
		Code:     diagnostic.CodeLossyFallback,
		Message:  "no structural match, converted through its textual form",
		Type:     d.String(),
		Member:   meta.Name,
	}
}

func unmarshalText(d typelib.Descriptor, native reflect.Type, s string) (any, error) {
	target, ptr := native, false
	if native.Kind() == reflect.Pointer {
		target, ptr = native.Elem(), true
	}

	pv := reflect.New(target)
	u, ok := pv.Interface().(encoding.TextUnmarshaler)
	if !ok {
		return nil, &UnsupportedOperationError{Type: d, Op: "rebuild", Reason: native.String() + " cannot parse its textual form"}
	}
	if err := u.UnmarshalText([]byte(s)); err != nil {
		return nil, &ConversionError{Type: d, Value: s, Reason: "unparsable", Err: err}
	}

	if ptr {
		return pv.Interface(), nil
	}
	return pv.Elem().Interface(), nil
}

// assignable returns v as a value settable into a slot of type t.
func assignable(d typelib.Descriptor, v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(t):
		return rv, nil
	case rv.Type().ConvertibleTo(t):
		return rv.Convert(t), nil
	default:
		return reflect.Value{}, &ConversionError{Type: d, Value: v, Reason: "cannot be stored as " + t.String()}
	}
}

// indirect follows pointers and interfaces down to the value they hold.
func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}
