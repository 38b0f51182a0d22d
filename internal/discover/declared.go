package discover

import (
	"fmt"
	"maps"

	"typeconv/internal/convert"
	"typeconv/internal/typelib"
)

// Declared implements convert.Discoverer over declarations alone, for
// classes that have no Go type behind them. Every class with fields is a
// record whose attributes are its fields, own and inherited, under their
// declared names. Native values are map[string]any keyed by attribute name.
type Declared struct {
	decls *typelib.Declarations
}

// NewDeclared creates a Declared discoverer reading member lists from decls.
func NewDeclared(decls *typelib.Declarations) *Declared {
	return &Declared{decls: decls}
}

var _ convert.Discoverer = (*Declared)(nil)

// Discover implements convert.Discoverer.
func (d *Declared) Discover(_ typelib.Descriptor, decl *typelib.Declaration) (*convert.Record, error) {
	if decl.Kind() != typelib.ClassKindClass || decl.Native() != nil {
		return nil, nil
	}

	lineage, err := d.decls.Lineage(decl.ID())
	if err != nil {
		return nil, err
	}

	rec := &convert.Record{}
	seen := make(map[string]bool)
	for _, ld := range lineage {
		for _, m := range ld.Members() {
			if !m.Field || seen[m.Name] {
				continue
			}
			seen[m.Name] = true

			rec.Attributes = append(rec.Attributes, convert.Attribute{
				Name:  m.Name,
				Scope: ld.ID(),
				Type:  m.Type,
				Get:   mapGetter(m.Name),
			})
		}
	}

	if len(rec.Attributes) == 0 {
		return nil, nil
	}

	rec.Construct = func(values map[string]any) (any, error) {
		return maps.Clone(values), nil
	}
	return rec, nil
}

func mapGetter(name string) func(any) (any, error) {
	return func(native any) (any, error) {
		m, ok := native.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected map[string]any, got %T", native)
		}
		return m[name], nil
	}
}
