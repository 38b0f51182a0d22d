package typelib

import (
	"fmt"
	"reflect"
	"slices"

	"typeconv/internal/common"
	"typeconv/primitive"
)

// ClassKind tells what sort of class-like entity a declaration describes.
type ClassKind int

const (
	ClassKindClass     ClassKind = iota // concrete or abstract record type
	ClassKindInterface                  // interface, only contributes members
	ClassKindEnum                       // fixed, ordered set of named constants
)

// String returns a human-readable representation of the ClassKind.
func (k ClassKind) String() string {
	switch k {
	case ClassKindClass:
		return "class"
	case ClassKindInterface:
		return "interface"
	case ClassKindEnum:
		return "enum"
	default:
		return common.UnknownStr
	}
}

// TypeParam is a declared type parameter. A nil Bound means the top type.
type TypeParam struct {
	Name  string
	Bound Expr
}

// MemberSpec is a declared member with its raw type.
type MemberSpec struct {
	Name  string
	Type  Expr
	Field bool // field rather than accessor method
}

// EnumConstant is one constant of an enumeration, with its native value.
type EnumConstant struct {
	Name  string
	Value any
}

// ClassSpec is what an Introspector reports about a class. Producers fill it
// in freely; Declarations freezes a validated copy.
type ClassSpec struct {
	ID         TypeID
	Kind       ClassKind
	TypeParams []TypeParam
	Super      Expr   // nil for roots
	Interfaces []Expr // implemented or extended interfaces, in declaration order
	Members    []MemberSpec
	Constants  []EnumConstant // only for ClassKindEnum
	Native     reflect.Type   // Go type carrying values of this class, if any
}

// ParamNames returns the names of the declared type parameters.
func (s *ClassSpec) ParamNames() []string {
	names := make([]string, len(s.TypeParams))
	for i, p := range s.TypeParams {
		names[i] = p.Name
	}

	return names
}

// validate checks the structural rules of a declaration.
func (s *ClassSpec) validate() string {
	if s.ID.Name == "" {
		return "empty class name"
	}
	if k, ok := primitive.FromName(s.ID.String()); ok && k.IsPrimitive() {
		return "class name shadows primitive " + k.Name()
	}

	seen := make(map[string]bool)
	for _, p := range s.TypeParams {
		if p.Name == "" {
			return "type parameter without a name"
		}
		if seen[p.Name] {
			return "duplicate type parameter " + p.Name
		}
		seen[p.Name] = true
	}

	for _, sup := range s.supertypes() {
		if _, ok := baseID(sup); !ok {
			return "supertype " + sup.String() + " is not a class reference"
		}
	}

	clear(seen)
	for _, m := range s.Members {
		if m.Name == "" || m.Type == nil {
			return "member without a name or a type"
		}
		if seen[m.Name] {
			return "duplicate member " + m.Name
		}
		seen[m.Name] = true
	}

	switch {
	case s.Kind == ClassKindEnum && len(s.Constants) == 0:
		return "enumeration without constants"
	case s.Kind != ClassKindEnum && len(s.Constants) > 0:
		return "constants declared on a " + s.Kind.String()
	}

	clear(seen)
	for _, c := range s.Constants {
		if seen[c.Name] {
			return "duplicate enum constant " + c.Name
		}
		seen[c.Name] = true
	}

	return ""
}

func (s *ClassSpec) supertypes() []Expr {
	var out []Expr
	if s.Super != nil {
		out = append(out, s.Super)
	}

	return append(out, s.Interfaces...)
}

// Declaration is the frozen, validated declaration of one class.
// It is safe for concurrent use and never changes after construction.
type Declaration struct {
	spec ClassSpec
}

func freeze(spec *ClassSpec) (*Declaration, error) {
	if reason := spec.validate(); reason != "" {
		return nil, &IntrospectionError{Class: spec.ID, Reason: reason}
	}

	frozen := *spec
	frozen.TypeParams = slices.Clone(spec.TypeParams)
	frozen.Interfaces = slices.Clone(spec.Interfaces)
	frozen.Members = slices.Clone(spec.Members)
	frozen.Constants = slices.Clone(spec.Constants)

	return &Declaration{spec: frozen}, nil
}

func (d *Declaration) ID() TypeID                { return d.spec.ID }
func (d *Declaration) Kind() ClassKind           { return d.spec.Kind }
func (d *Declaration) Native() reflect.Type      { return d.spec.Native }
func (d *Declaration) Super() Expr               { return d.spec.Super }
func (d *Declaration) IsGeneric() bool           { return len(d.spec.TypeParams) > 0 }
func (d *Declaration) NumTypeParams() int        { return len(d.spec.TypeParams) }
func (d *Declaration) TypeParam(i int) TypeParam { return d.spec.TypeParams[i] }

// TypeParams returns a copy of the declared type parameters.
func (d *Declaration) TypeParams() []TypeParam   { return slices.Clone(d.spec.TypeParams) }

// Interfaces returns a copy of the declared interfaces.
func (d *Declaration) Interfaces() []Expr { return slices.Clone(d.spec.Interfaces) }

// Supertypes returns the superclass (if any) followed by the interfaces.
func (d *Declaration) Supertypes() []Expr { return d.spec.supertypes() }

// Members returns a copy of the declared members.
func (d *Declaration) Members() []MemberSpec { return slices.Clone(d.spec.Members) }

// Constants returns a copy of the enumeration constants.
func (d *Declaration) Constants() []EnumConstant { return slices.Clone(d.spec.Constants) }

// ParamIndex returns the position of the type parameter called name.
func (d *Declaration) ParamIndex(name string) (int, bool) {
	for i, p := range d.spec.TypeParams {
		if p.Name == name {
			return i, true
		}
	}

	return -1, false
}

// Member returns the member declared directly by this class.
func (d *Declaration) Member(name string) (MemberSpec, bool) {
	for _, m := range d.spec.Members {
		if m.Name == name {
			return m, true
		}
	}

	return MemberSpec{}, false
}

// Constant returns the enumeration constant called name.
func (d *Declaration) Constant(name string) (EnumConstant, bool) {
	for _, c := range d.spec.Constants {
		if c.Name == name {
			return c, true
		}
	}

	return EnumConstant{}, false
}

func (d *Declaration) String() string {
	return fmt.Sprintf("%s %s", d.spec.Kind, d.spec.ID)
}
