package typelib

import (
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Declarations is a read-through cache of frozen declarations.
// Entries are never invalidated: the class universe is assumed static once
// evaluation starts.
type Declarations struct {
	src   Introspector
	cache sync.Map // TypeID -> *Declaration
	group singleflight.Group
}

// NewDeclarations creates a cache over src.
func NewDeclarations(src Introspector) *Declarations {
	return &Declarations{src: src}
}

// Of returns the declaration of id, introspecting it on first use.
func (d *Declarations) Of(id TypeID) (*Declaration, error) {
	if cached, ok := d.cache.Load(id); ok {
		return cached.(*Declaration), nil
	}

	v, err, _ := d.group.Do(id.String(), func() (any, error) {
		if cached, ok := d.cache.Load(id); ok {
			return cached, nil
		}

		spec, err := d.src.Introspect(id)
		if err != nil {
			var ie *IntrospectionError
			if errors.As(err, &ie) {
				return nil, err
			}
			return nil, &IntrospectionError{Class: id, Reason: "introspector failed", Err: err}
		}
		if spec == nil {
			return nil, &IntrospectionError{Class: id, Reason: "no declaration"}
		}
		if spec.ID != id {
			return nil, &IntrospectionError{Class: id, Reason: "introspector returned " + spec.ID.String()}
		}

		decl, err := freeze(spec)
		if err != nil {
			return nil, err
		}

		actual, _ := d.cache.LoadOrStore(id, decl)
		return actual, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Declaration), nil
}

// Lineage returns the declaration of id followed by its ancestors, depth
// first, superclass before interfaces, each once.
func (d *Declarations) Lineage(id TypeID) ([]*Declaration, error) {
	seen := make(map[TypeID]bool)
	var out []*Declaration

	var walk func(id TypeID) error
	walk = func(id TypeID) error {
		if seen[id] {
			return nil
		}
		seen[id] = true

		decl, err := d.Of(id)
		if err != nil {
			return err
		}
		out = append(out, decl)

		for _, sup := range decl.Supertypes() {
			sid, _ := baseID(sup)
			if err := walk(sid); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(id); err != nil {
		return nil, err
	}

	return out, nil
}
