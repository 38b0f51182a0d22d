package typelib

import (
	"strings"
	"sync"

	"typeconv/internal/common"
	"typeconv/primitive"
)

// DescriptorKind identifies the variant of a Descriptor.
type DescriptorKind int

const (
	KindPrimitive     DescriptorKind = iota // bool, integers, floats, void
	KindNamed                               // non-generic class or raw use of a generic one
	KindParameterized                       // generic class with ordered arguments
	KindArray                               // array of an element descriptor
	KindWildcard                            // transient: collapsed before results leave the evaluator
	KindTypeVar                             // transient: never part of a returned result
)

// String returns a human-readable representation of the DescriptorKind.
func (k DescriptorKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindNamed:
		return "named"
	case KindParameterized:
		return "parameterized"
	case KindArray:
		return "array"
	case KindWildcard:
		return "wildcard"
	case KindTypeVar:
		return "typevar"
	default:
		return common.UnknownStr
	}
}

// Descriptor is an immutable description of a resolved type.
//
// Descriptors are interned: constructing the same structure twice yields the
// same pointer, so == works, and Equal compares structural keys for values
// that came from elsewhere.
type Descriptor interface {
	// Kind returns the descriptor variant for type switching.
	Kind() DescriptorKind

	// Key returns the canonical structural key. Equal descriptors have equal keys.
	Key() string

	// String returns the same text as Key.
	String() string

	sealed()
}

// Primitive is a true primitive type.
type Primitive struct {
	PrimitiveKind primitive.KindEnum
}

// Named is a concrete non-generic class or a raw use of a generic one.
type Named struct {
	ID TypeID
}

// Parameterized is a generic class applied to closed arguments.
type Parameterized struct {
	Base TypeID
	Args []Descriptor
}

// ArrayOf is an array whose element is Element.
type ArrayOf struct {
	Element Descriptor
}

// Wildcard is an argument position with an upper and an optional lower bound.
type Wildcard struct {
	Upper Descriptor
	Lower Descriptor // nil when the wildcard has no lower bound
}

// TypeVar is a type variable whose binding is still being computed.
type TypeVar struct {
	Name  string
	Scope TypeID
}

func (*Primitive) Kind() DescriptorKind     { return KindPrimitive }
func (*Named) Kind() DescriptorKind         { return KindNamed }
func (*Parameterized) Kind() DescriptorKind { return KindParameterized }
func (*ArrayOf) Kind() DescriptorKind       { return KindArray }
func (*Wildcard) Kind() DescriptorKind      { return KindWildcard }
func (*TypeVar) Kind() DescriptorKind       { return KindTypeVar }

func (d *Primitive) Key() string { return d.PrimitiveKind.Name() }
func (d *Named) Key() string     { return d.ID.String() }

func (d *Parameterized) Key() string {
	var sb strings.Builder
	sb.WriteString(d.Base.String())
	sb.WriteByte('[')
	for i, a := range d.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Key())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (d *ArrayOf) Key() string { return "[]" + d.Element.Key() }

func (d *Wildcard) Key() string {
	key := "? extends " + d.Upper.Key()
	if d.Lower != nil {
		key += " super " + d.Lower.Key()
	}
	return key
}

func (d *TypeVar) Key() string { return "$" + d.Scope.String() + "." + d.Name }

func (d *Primitive) String() string     { return d.Key() }
func (d *Named) String() string         { return d.Key() }
func (d *Parameterized) String() string { return d.Key() }
func (d *ArrayOf) String() string       { return d.Key() }
func (d *Wildcard) String() string      { return d.Key() }
func (d *TypeVar) String() string       { return d.Key() }

func (*Primitive) sealed()     {}
func (*Named) sealed()         {}
func (*Parameterized) sealed() {}
func (*ArrayOf) sealed()       {}
func (*Wildcard) sealed()      {}
func (*TypeVar) sealed()       {}

type internKey struct {
	kind DescriptorKind
	key  string
}

var interned sync.Map // internKey -> Descriptor

func intern[D Descriptor](d D) D {
	actual, _ := interned.LoadOrStore(internKey{d.Kind(), d.Key()}, d)
	return actual.(D)
}

// NewPrimitive returns the descriptor of a primitive kind.
// It panics for kinds that are not primitives (strings and other scalars are classes).
func NewPrimitive(kind primitive.KindEnum) *Primitive {
	if !kind.IsPrimitive() {
		panic("typelib: not a primitive kind: " + kind.String())
	}

	return intern(&Primitive{PrimitiveKind: kind})
}

// NewNamed returns the descriptor of a class used without arguments.
func NewNamed(id TypeID) *Named {
	if id.IsZero() {
		panic("typelib: named descriptor needs an identity")
	}

	return intern(&Named{ID: id})
}

// NewParameterized returns the descriptor of base applied to args.
// It panics when args is empty or contains nil.
func NewParameterized(base TypeID, args ...Descriptor) *Parameterized {
	if base.IsZero() {
		panic("typelib: parameterized descriptor needs a base identity")
	}
	if len(args) == 0 {
		panic("typelib: parameterized descriptor needs at least one argument: " + base.String())
	}
	for _, a := range args {
		if a == nil {
			panic("typelib: nil argument for " + base.String())
		}
	}

	return intern(&Parameterized{Base: base, Args: append([]Descriptor(nil), args...)})
}

// NewArrayOf returns the descriptor of an array of element.
func NewArrayOf(element Descriptor) *ArrayOf {
	if element == nil {
		panic("typelib: array descriptor needs an element")
	}

	return intern(&ArrayOf{Element: element})
}

// NewWildcard returns a wildcard descriptor. lower may be nil.
func NewWildcard(upper, lower Descriptor) *Wildcard {
	if upper == nil {
		panic("typelib: wildcard descriptor needs an upper bound")
	}

	return intern(&Wildcard{Upper: upper, Lower: lower})
}

// NewTypeVar returns the descriptor of a variable declared by scope.
func NewTypeVar(name string, scope TypeID) *TypeVar {
	if name == "" {
		panic("typelib: type variable needs a name")
	}

	return intern(&TypeVar{Name: name, Scope: scope})
}

// Top returns the descriptor of the universal top type.
func Top() *Named { return NewNamed(TopID) }

// Equal reports whether a and b describe the same type.
func Equal(a, b Descriptor) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Kind() == b.Kind() && a.Key() == b.Key()
}

// IDOf returns the class identity of a Named or Parameterized descriptor.
func IDOf(d Descriptor) (TypeID, bool) {
	switch d := d.(type) {
	case *Named:
		return d.ID, true
	case *Parameterized:
		return d.Base, true
	default:
		return TypeID{}, false
	}
}

// ArgsOf returns the arguments of a Parameterized descriptor, nil otherwise.
func ArgsOf(d Descriptor) []Descriptor {
	if p, ok := d.(*Parameterized); ok {
		return p.Args
	}

	return nil
}

// IsClosed reports whether d contains no type variables and no wildcards.
func IsClosed(d Descriptor) bool {
	switch d := d.(type) {
	case *TypeVar, *Wildcard:
		return false
	case *Parameterized:
		for _, a := range d.Args {
			if !IsClosed(a) {
				return false
			}
		}
		return true
	case *ArrayOf:
		return IsClosed(d.Element)
	default:
		return true
	}
}
