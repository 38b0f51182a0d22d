package typelib

import (
	"fmt"
	"math/big"
	"reflect"
	"sync"
	"time"
)

// Introspector supplies the raw declaration of a class. It is the seam to
// whatever discovers classes: Go source, a declaration file, or hand-built specs.
type Introspector interface {
	Introspect(id TypeID) (*ClassSpec, error)
}

// Universe is an in-memory Introspector. It starts with the predeclared
// classes (any, string, time and math/big scalars, containers).
type Universe struct {
	mu    sync.RWMutex
	specs map[TypeID]*ClassSpec
}

// NewUniverse creates a Universe holding only the predeclared classes.
func NewUniverse() *Universe {
	u := &Universe{specs: make(map[TypeID]*ClassSpec)}
	for _, spec := range builtins() {
		u.specs[spec.ID] = &spec
	}

	return u
}

func builtins() []ClassSpec {
	e, k, v := Var("E"), Var("K"), Var("V")
	one := []TypeParam{{Name: "E"}}
	two := []TypeParam{{Name: "K"}, {Name: "V"}}

	return []ClassSpec{
		{ID: TopID, Native: reflect.TypeOf((*any)(nil)).Elem()},
		{ID: StringID, Native: reflect.TypeOf("")},
		{ID: TimeID, Native: reflect.TypeOf(time.Time{})},
		{ID: DurationID, Native: reflect.TypeOf(time.Duration(0))},
		{ID: BigIntID, Native: reflect.TypeOf(new(big.Int))},
		{ID: BigFloatID, Native: reflect.TypeOf(new(big.Float))},
		{ID: ListID, Kind: ClassKindInterface, TypeParams: one},
		{ID: SetID, Kind: ClassKindInterface, TypeParams: one},
		{ID: SortedSetID, Kind: ClassKindInterface, TypeParams: one, Interfaces: []Expr{Inst(SetID, e)}},
		{ID: MapID, Kind: ClassKindInterface, TypeParams: two},
		{ID: SortedMapID, Kind: ClassKindInterface, TypeParams: two, Interfaces: []Expr{Inst(MapID, k, v)}},
	}
}

// Define adds class specs. Redefining a class is an error.
func (u *Universe) Define(specs ...ClassSpec) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i := range specs {
		spec := specs[i]
		if _, exists := u.specs[spec.ID]; exists {
			return fmt.Errorf("class %s already defined", spec.ID)
		}
		u.specs[spec.ID] = &spec
	}

	return nil
}

// MustDefine is like Define but panics on error. For fixtures and tests.
func (u *Universe) MustDefine(specs ...ClassSpec) *Universe {
	if err := u.Define(specs...); err != nil {
		panic(err)
	}

	return u
}

// Bind attaches the native Go type carrying values of class id.
func (u *Universe) Bind(id TypeID, native reflect.Type) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	spec, ok := u.specs[id]
	if !ok {
		return fmt.Errorf("class %s not defined", id)
	}
	spec.Native = native

	return nil
}

// Introspect implements Introspector. The returned spec is a copy.
func (u *Universe) Introspect(id TypeID) (*ClassSpec, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	spec, ok := u.specs[id]
	if !ok {
		return nil, &IntrospectionError{Class: id, Reason: "unknown class"}
	}

	cp := *spec
	return &cp, nil
}

// IDs returns the identities of all defined classes, sorted.
func (u *Universe) IDs() []TypeID {
	u.mu.RLock()
	defer u.mu.RUnlock()

	ids := make([]TypeID, 0, len(u.specs))
	for id := range u.specs {
		ids = append(ids, id)
	}
	SortIDs(ids)

	return ids
}
