// Package discover finds the managed attributes of records bound to Go structs.
//
// Every declared member, own or inherited, that maps to an exported field of
// the bound struct is an attribute. Field tags refine the view:
//
//	type Order struct {
//		ID    string `managed:"id" description:"order identifier"`
//		Cache []byte `managed:"-"`
//	}
//
// As soon as one field carries a managed tag, untagged fields are ignored.
// Attribute names default to the member name with a lower-case first letter.
package discover

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"typeconv/internal/convert"
	"typeconv/internal/typelib"
)

const (
	tagManaged     = "managed"
	tagDescription = "description"
)

// Describer is implemented by records that describe themselves.
type Describer interface {
	Description() string
}

// Discoverer implements convert.Discoverer over struct fields.
type Discoverer struct {
	decls *typelib.Declarations
}

// New creates a Discoverer reading member lists from decls.
func New(decls *typelib.Declarations) *Discoverer {
	return &Discoverer{decls: decls}
}

var _ convert.Discoverer = (*Discoverer)(nil)

// Discover implements convert.Discoverer. Classes without a bound struct type
// are not records.
func (d *Discoverer) Discover(_ typelib.Descriptor, decl *typelib.Declaration) (*convert.Record, error) {
	native := decl.Native()
	if native == nil || decl.Kind() != typelib.ClassKindClass {
		return nil, nil
	}

	st := native
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return nil, nil
	}

	lineage, err := d.decls.Lineage(decl.ID())
	if err != nil {
		return nil, err
	}

	strict := hasManagedTags(st)
	seen := make(map[string]bool)
	fields := make(map[string][]int)

	rec := &convert.Record{}
	if desc, ok := reflect.New(st).Interface().(Describer); ok {
		rec.Description = desc.Description()
	}

	for _, ld := range lineage {
		for _, m := range ld.Members() {
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true

			f, ok := st.FieldByName(m.Name)
			if !ok || !f.IsExported() {
				continue
			}

			tag, tagged := f.Tag.Lookup(tagManaged)
			if tag == "-" || (strict && !tagged) {
				continue
			}

			name := tag
			if name == "" {
				name = lowerFirst(m.Name)
			}
			if _, dup := fields[name]; dup {
				return nil, fmt.Errorf("%s: attribute name %q used twice", decl.ID(), name)
			}
			fields[name] = f.Index

			rec.Attributes = append(rec.Attributes, convert.Attribute{
				Name:        name,
				Description: f.Tag.Get(tagDescription),
				Scope:       ld.ID(),
				Type:        m.Type,
				Get:         getter(st, f.Index),
			})
		}
	}

	if len(rec.Attributes) == 0 {
		return nil, nil
	}

	rec.Construct = constructor(native, st, fields)
	return rec, nil
}

func hasManagedTags(st reflect.Type) bool {
	for _, f := range reflect.VisibleFields(st) {
		if _, ok := f.Tag.Lookup(tagManaged); ok {
			return true
		}
	}
	return false
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func getter(st reflect.Type, index []int) func(any) (any, error) {
	return func(native any) (any, error) {
		rv := reflect.ValueOf(native)
		for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
			if rv.IsNil() {
				return nil, fmt.Errorf("nil %s", st)
			}
			rv = rv.Elem()
		}
		if rv.Type() != st {
			return nil, fmt.Errorf("%s is not %s", rv.Type(), st)
		}

		fv, err := rv.FieldByIndexErr(index)
		if err != nil {
			// promoted through a nil embedded pointer
			return nil, nil
		}
		return fv.Interface(), nil
	}
}

func constructor(native, st reflect.Type, fields map[string][]int) func(map[string]any) (any, error) {
	return func(values map[string]any) (any, error) {
		pv := reflect.New(st)
		for name, val := range values {
			index, ok := fields[name]
			if !ok {
				return nil, fmt.Errorf("%s has no attribute %q", st, name)
			}
			if val == nil {
				continue
			}

			fv := fieldForWrite(pv.Elem(), index)
			rv := reflect.ValueOf(val)
			switch {
			case rv.Type().AssignableTo(fv.Type()):
				fv.Set(rv)
			case rv.Type().ConvertibleTo(fv.Type()):
				fv.Set(rv.Convert(fv.Type()))
			case fv.Kind() == reflect.Pointer && rv.Type().AssignableTo(fv.Type().Elem()):
				p := reflect.New(fv.Type().Elem())
				p.Elem().Set(rv)
				fv.Set(p)
			default:
				return nil, fmt.Errorf("attribute %s: %s cannot be stored in %s", name, rv.Type(), fv.Type())
			}
		}

		if native.Kind() == reflect.Pointer {
			return pv.Interface(), nil
		}
		return pv.Elem().Interface(), nil
	}
}

// fieldForWrite walks index from v, allocating nil embedded pointers on the way.
func fieldForWrite(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}
