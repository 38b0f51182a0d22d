package typelib

import (
	"fmt"
	"strings"

	"typeconv/primitive"
)

// Expr is a raw type expression as written in a declaration, before any
// substitution. It may mention the type variables of its declaring class.
type Expr interface {
	// String returns the canonical text of the expression. It is the
	// expression identity used in evaluation cache keys.
	String() string

	exprNode()
}

// PrimitiveExpr refers to a primitive kind.
type PrimitiveExpr struct {
	Kind primitive.KindEnum
}

// NamedExpr refers to a class without arguments. For a generic class this is raw usage.
type NamedExpr struct {
	ID TypeID
}

// ParamExpr applies a generic class to argument expressions.
type ParamExpr struct {
	Base TypeID
	Args []Expr
}

// ArrayExpr is an array of Elem.
type ArrayExpr struct {
	Elem Expr
}

// WildcardExpr is "?", "? extends Upper" or "? super Lower".
type WildcardExpr struct {
	Upper Expr
	Lower Expr
}

// VarExpr refers to a type parameter of the declaring class.
type VarExpr struct {
	Name string
}

func (e *PrimitiveExpr) String() string { return e.Kind.Name() }
func (e *NamedExpr) String() string     { return e.ID.String() }

func (e *ParamExpr) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return e.Base.String() + "[" + strings.Join(args, ", ") + "]"
}

func (e *ArrayExpr) String() string { return "[]" + e.Elem.String() }

func (e *WildcardExpr) String() string {
	switch {
	case e.Upper != nil && e.Lower != nil:
		return "? extends " + e.Upper.String() + " super " + e.Lower.String()
	case e.Upper != nil:
		return "? extends " + e.Upper.String()
	case e.Lower != nil:
		return "? super " + e.Lower.String()
	default:
		return "?"
	}
}

func (e *VarExpr) String() string { return e.Name }

// exprKey is the identity of e in cache keys. Unlike String it tells type
// variables, primitives and classes apart when they share a spelling.
func exprKey(e Expr) string {
	switch e := e.(type) {
	case *PrimitiveExpr:
		return "%" + e.Kind.Name()
	case *NamedExpr:
		return "@" + e.ID.String()
	case *ParamExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = exprKey(a)
		}
		return "@" + e.Base.String() + "[" + strings.Join(args, ",") + "]"
	case *ArrayExpr:
		return "[]" + exprKey(e.Elem)
	case *WildcardExpr:
		key := "?"
		if e.Upper != nil {
			key += "+" + exprKey(e.Upper)
		}
		if e.Lower != nil {
			key += "-" + exprKey(e.Lower)
		}
		return key
	case *VarExpr:
		return "$" + e.Name
	default:
		return fmt.Sprint(e)
	}
}

func (*PrimitiveExpr) exprNode() {}
func (*NamedExpr) exprNode()     {}
func (*ParamExpr) exprNode()     {}
func (*ArrayExpr) exprNode()     {}
func (*WildcardExpr) exprNode()  {}
func (*VarExpr) exprNode()       {}

// Prim returns an expression for a primitive kind.
func Prim(kind primitive.KindEnum) Expr { return &PrimitiveExpr{Kind: kind} }

// Ref returns an expression naming a class without arguments.
func Ref(id TypeID) Expr { return &NamedExpr{ID: id} }

// Inst returns an expression applying base to args.
func Inst(base TypeID, args ...Expr) Expr { return &ParamExpr{Base: base, Args: args} }

// Arr returns an expression for an array of elem.
func Arr(elem Expr) Expr { return &ArrayExpr{Elem: elem} }

// Var returns an expression naming a type parameter.
func Var(name string) Expr { return &VarExpr{Name: name} }

// Unbounded returns the "?" wildcard.
func Unbounded() Expr { return &WildcardExpr{} }

// Extends returns "? extends upper".
func Extends(upper Expr) Expr { return &WildcardExpr{Upper: upper} }

// Super returns "? super lower".
func Super(lower Expr) Expr { return &WildcardExpr{Lower: lower} }

// baseID returns the class identity a supertype expression refers to.
func baseID(e Expr) (TypeID, bool) {
	switch e := e.(type) {
	case *NamedExpr:
		return e.ID, true
	case *ParamExpr:
		return e.Base, true
	default:
		return TypeID{}, false
	}
}

// Qualify replaces references to classes without a package path by the
// identity local maps their name to. Other references are kept.
func Qualify(e Expr, local map[string]TypeID) Expr {
	switch e := e.(type) {
	case *NamedExpr:
		if id, ok := local[e.ID.Name]; ok && e.ID.PkgPath == "" {
			return Ref(id)
		}
		return e
	case *ParamExpr:
		base := e.Base
		if id, ok := local[base.Name]; ok && base.PkgPath == "" {
			base = id
		}
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = Qualify(a, local)
		}
		return Inst(base, args...)
	case *ArrayExpr:
		return Arr(Qualify(e.Elem, local))
	case *WildcardExpr:
		w := &WildcardExpr{}
		if e.Upper != nil {
			w.Upper = Qualify(e.Upper, local)
		}
		if e.Lower != nil {
			w.Lower = Qualify(e.Lower, local)
		}
		return w
	default:
		return e
	}
}

// DescriptorOf converts a closed expression, one without variables or
// wildcards, to its descriptor.
func DescriptorOf(e Expr) (Descriptor, error) {
	switch e := e.(type) {
	case *PrimitiveExpr:
		if !e.Kind.IsPrimitive() {
			return nil, fmt.Errorf("%w: %s is not a primitive", ErrSyntax, e)
		}
		return NewPrimitive(e.Kind), nil
	case *NamedExpr:
		return NewNamed(e.ID), nil
	case *ParamExpr:
		args := make([]Descriptor, len(e.Args))
		for i, a := range e.Args {
			d, err := DescriptorOf(a)
			if err != nil {
				return nil, err
			}
			args[i] = d
		}
		return NewParameterized(e.Base, args...), nil
	case *ArrayExpr:
		elem, err := DescriptorOf(e.Elem)
		if err != nil {
			return nil, err
		}
		return NewArrayOf(elem), nil
	default:
		return nil, fmt.Errorf("%w: %s is not a closed type", ErrSyntax, e)
	}
}
