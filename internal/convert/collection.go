package convert

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"typeconv/internal/typelib"
)

// container is a recognized container ancestor of a class.
type container struct {
	ID   typelib.TypeID
	Args []typelib.Descriptor
}

func (c container) isMap() bool {
	return c.ID == typelib.MapID || c.ID == typelib.SortedMapID
}

func (c container) isSet() bool {
	return c.ID == typelib.SetID || c.ID == typelib.SortedSetID
}

func (c container) sorted() bool {
	return c.ID == typelib.SortedSetID || c.ID == typelib.SortedMapID
}

func isContainer(id typelib.TypeID) bool {
	switch id {
	case typelib.ListID, typelib.SetID, typelib.SortedSetID, typelib.MapID, typelib.SortedMapID:
		return true
	default:
		return false
	}
}

// entrySchema is the {key, value} composite of map-like collections.
func entrySchema(key, value Schema) *CompositeSchema {
	return &CompositeSchema{Type: entryID, Items: []Item{
		{Name: "key", Schema: key},
		{Name: "value", Schema: value},
	}}
}

// collectionNative picks the Go type of a container when its class is not
// bound to one: slices for lists, set-maps for sets of comparable elements,
// maps for map-like containers.
func collectionNative(c container, elem, key, value *Converter) reflect.Type {
	switch {
	case c.isMap():
		k := key.nativeOrAny()
		if !k.Comparable() {
			k = anyType
		}
		return reflect.MapOf(k, value.nativeOrAny())
	case c.isSet() && elem.nativeOrAny().Comparable() && elem.nativeOrAny() != anyType:
		return reflect.MapOf(elem.nativeOrAny(), reflect.TypeOf(struct{}{}))
	default:
		return reflect.SliceOf(elem.nativeOrAny())
	}
}

// sequenceConverter handles lists and sets. Native values may be slices,
// arrays or set-maps (map[E]struct{} or map[E]bool, keys are the elements).
func sequenceConverter(d typelib.Descriptor, c container, elem *Converter, native reflect.Type) *Converter {
	if native == nil {
		native = collectionNative(c, elem, nil, nil)
	}
	sorted := c.sorted()

	to := func(v any) (any, error) {
		rv := indirect(reflect.ValueOf(v))
		if !rv.IsValid() {
			return nil, nil
		}

		var items []reflect.Value
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := range rv.Len() {
				items = append(items, rv.Index(i))
			}
			if sorted {
				slices.SortStableFunc(items, compareValues)
			}
		case reflect.Map:
			items = rv.MapKeys()
			slices.SortStableFunc(items, compareValues)
		default:
			return nil, &ConversionError{Type: d, Value: v, Reason: "expected a sequence or a set"}
		}

		out := make([]any, len(items))
		for i, it := range items {
			sv, err := elem.ToStructured(it.Interface())
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = sv
		}
		return out, nil
	}

	from := func(v any) (any, error) {
		if v == nil {
			return reflect.Zero(native).Interface(), nil
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, &ConversionError{Type: d, Value: v, Reason: "expected a sequence"}
		}

		var out reflect.Value
		switch native.Kind() {
		case reflect.Map:
			out = reflect.MakeMapWithSize(native, rv.Len())
		case reflect.Slice:
			out = reflect.MakeSlice(native, 0, rv.Len())
		default:
			return nil, &UnsupportedOperationError{Type: d, Op: "rebuild", Reason: native.String() + " is not a slice or a map"}
		}

		for i := range rv.Len() {
			nv, err := elem.FromStructured(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}

			if native.Kind() == reflect.Map {
				k, err := assignable(d, nv, native.Key())
				if err != nil {
					return nil, err
				}
				out.SetMapIndex(k, setMember(native.Elem()))
				continue
			}

			ev, err := assignable(d, nv, native.Elem())
			if err != nil {
				return nil, err
			}
			out = reflect.Append(out, ev)
		}

		if sorted && out.Kind() == reflect.Slice {
			sortSlice(out)
		}
		return out.Interface(), nil
	}

	return &Converter{
		typ:    d,
		schema: &CollectionSchema{Container: c.ID, Element: elem.Schema(), Sorted: sorted},
		native: native,
		to:     to,
		from:   from,
	}
}

// mapConverter handles map-like containers. Entries are emitted in key order.
func mapConverter(d typelib.Descriptor, c container, key, value *Converter, native reflect.Type) *Converter {
	if native == nil {
		native = collectionNative(c, nil, key, value)
	}
	entry := entrySchema(key.Schema(), value.Schema())

	to := func(v any) (any, error) {
		rv := indirect(reflect.ValueOf(v))
		if !rv.IsValid() {
			return nil, nil
		}
		if rv.Kind() != reflect.Map {
			return nil, &ConversionError{Type: d, Value: v, Reason: "expected a map"}
		}

		keys := rv.MapKeys()
		slices.SortStableFunc(keys, compareValues)

		out := make([]any, len(keys))
		for i, k := range keys {
			sk, err := key.ToStructured(k.Interface())
			if err != nil {
				return nil, fmt.Errorf("key %v: %w", k, err)
			}
			sv, err := value.ToStructured(rv.MapIndex(k).Interface())
			if err != nil {
				return nil, fmt.Errorf("value of %v: %w", k, err)
			}

			e := NewCompositeValue(entry)
			e.Values["key"], e.Values["value"] = sk, sv
			out[i] = e
		}
		return out, nil
	}

	from := func(v any) (any, error) {
		if v == nil {
			return reflect.Zero(native).Interface(), nil
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, &ConversionError{Type: d, Value: v, Reason: "expected a sequence of entries"}
		}
		if native.Kind() != reflect.Map {
			return nil, &UnsupportedOperationError{Type: d, Op: "rebuild", Reason: native.String() + " is not a map"}
		}

		out := reflect.MakeMapWithSize(native, rv.Len())
		for i := range rv.Len() {
			sk, sv, err := entryOf(d, rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}

			nk, err := key.FromStructured(sk)
			if err != nil {
				return nil, fmt.Errorf("entry %d key: %w", i, err)
			}
			nv, err := value.FromStructured(sv)
			if err != nil {
				return nil, fmt.Errorf("entry %d value: %w", i, err)
			}

			kv, err := assignable(d, nk, native.Key())
			if err != nil {
				return nil, err
			}
			vv, err := assignable(d, nv, native.Elem())
			if err != nil {
				return nil, err
			}
			out.SetMapIndex(kv, vv)
		}
		return out.Interface(), nil
	}

	return &Converter{
		typ:    d,
		schema: &CollectionSchema{Container: c.ID, Element: entry, Sorted: c.sorted()},
		native: native,
		to:     to,
		from:   from,
	}
}

func entryOf(d typelib.Descriptor, v any) (key, value any, err error) {
	switch e := v.(type) {
	case *CompositeValue:
		return e.Values["key"], e.Values["value"], nil
	case map[string]any:
		return e["key"], e["value"], nil
	default:
		return nil, nil, &ConversionError{Type: d, Value: v, Reason: "expected a {key, value} entry"}
	}
}

// setMember is the value stored under each key of a set-map.
func setMember(t reflect.Type) reflect.Value {
	if t.Kind() == reflect.Bool {
		return reflect.ValueOf(true).Convert(t)
	}
	return reflect.Zero(t)
}

func sortSlice(s reflect.Value) {
	items := make([]reflect.Value, s.Len())
	for i := range items {
		items[i] = reflect.New(s.Type().Elem()).Elem()
		items[i].Set(s.Index(i))
	}
	slices.SortStableFunc(items, compareValues)
	for i, it := range items {
		s.Index(i).Set(it)
	}
}

// compareValues orders numbers numerically, strings lexically and booleans
// false first. Anything else compares by its printed form.
func compareValues(a, b reflect.Value) int {
	a, b = indirect(a), indirect(b)
	if a.IsValid() && b.IsValid() && a.Kind() == b.Kind() {
		switch a.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return cmp.Compare(a.Int(), b.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return cmp.Compare(a.Uint(), b.Uint())
		case reflect.Float32, reflect.Float64:
			return cmp.Compare(a.Float(), b.Float())
		case reflect.String:
			return cmp.Compare(a.String(), b.String())
		case reflect.Bool:
			return cmp.Compare(boolRank(a.Bool()), boolRank(b.Bool()))
		}
	}

	return cmp.Compare(printed(a), printed(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func printed(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	return fmt.Sprint(v.Interface())
}
