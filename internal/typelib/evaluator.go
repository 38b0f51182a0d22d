package typelib

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Evaluator resolves raw type expressions to closed descriptors.
//
// Results are cached per (root, expression, scope) for the lifetime of the
// Evaluator. Failures are not cached; a failed key is evaluated from scratch
// on the next request.
type Evaluator struct {
	decls  *Declarations
	logger *slog.Logger
	cache  sync.Map // evaluation key -> Descriptor
	bounds sync.Map // "class#index" -> declared bound of a parameter position
	group  singleflight.Group
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for cache tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// NewEvaluator creates an Evaluator over decls.
func NewEvaluator(decls *Declarations, opts ...Option) *Evaluator {
	e := &Evaluator{decls: decls}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	return e
}

// Declarations returns the declaration cache the Evaluator reads from.
func (e *Evaluator) Declarations() *Declarations {
	return e.decls
}

// Evaluate resolves expr, declared by scope, as seen from root.
//
// root is a Named descriptor for raw use of a class or a Parameterized one
// whose arguments bind the root's type parameters. scope must be root's class
// or one of its ancestors. The result never contains type variables or wildcards.
func (e *Evaluator) Evaluate(root Descriptor, expr Expr, scope TypeID) (Descriptor, error) {
	if root == nil || expr == nil {
		return nil, &UnresolvableTypeError{Expr: fmt.Sprint(expr), Scope: scope, Reason: "missing root or expression"}
	}

	key := root.Key() + "|" + exprKey(expr) + "|" + scope.String()
	if cached, ok := e.cache.Load(key); ok {
		e.logger.Debug("evaluation cache hit", slog.String("key", key))
		return cached.(Descriptor), nil
	}
	e.logger.Debug("evaluation cache miss", slog.String("key", key))

	v, err, _ := e.group.Do(key, func() (any, error) {
		if cached, ok := e.cache.Load(key); ok {
			return cached, nil
		}

		d, err := e.newResolution().evaluate(root, expr, scope)
		if err != nil {
			return nil, err
		}

		actual, _ := e.cache.LoadOrStore(key, d)
		return actual, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(Descriptor), nil
}

// resolution is the state of one evaluation request.
type resolution struct {
	ev       *Evaluator
	bounding map[string]bool // parameter positions whose bound is being computed
}

func (e *Evaluator) newResolution() *resolution {
	return &resolution{ev: e, bounding: make(map[string]bool)}
}

func (r *resolution) evaluate(root Descriptor, expr Expr, scope TypeID) (Descriptor, error) {
	b, err := r.rootBindings(root)
	if err != nil {
		return nil, err
	}

	path, found, err := r.chain(b.decl, scope, map[TypeID]bool{b.decl.ID(): true})
	if err != nil {
		return nil, withRoot(err, root)
	}
	if !found {
		return nil, &ScopeMismatchError{Root: root, Scope: scope}
	}

	for _, sup := range path {
		if b, err = r.bindSuper(b, sup); err != nil {
			return nil, withRoot(err, root)
		}
	}

	d, err := r.substitute(expr, b)
	if err == nil {
		d, err = r.close(d, scope)
	}
	if err != nil {
		return nil, withRoot(err, root)
	}

	return d, nil
}

func withRoot(err error, root Descriptor) error {
	var ue *UnresolvableTypeError
	if errors.As(err, &ue) && ue.Root == nil {
		cp := *ue
		cp.Root = root
		return &cp
	}

	return err
}

func (r *resolution) rootBindings(root Descriptor) (*bindings, error) {
	id, ok := IDOf(root)
	if !ok {
		return nil, &IntrospectionError{Class: TypeID{Name: root.String()}, Reason: root.Kind().String() + " is not class-like"}
	}

	decl, err := r.ev.decls.Of(id)
	if err != nil {
		return nil, err
	}

	p, ok := root.(*Parameterized)
	if !ok {
		return r.rawBindings(decl), nil
	}

	if len(p.Args) != decl.NumTypeParams() {
		return nil, &UnresolvableTypeError{Root: root, Expr: root.String(), Scope: id,
			Reason: fmt.Sprintf("%d arguments for %d type parameters", len(p.Args), decl.NumTypeParams())}
	}
	for _, a := range p.Args {
		if !IsClosed(a) {
			return nil, &UnresolvableTypeError{Root: root, Expr: a.String(), Scope: id, Reason: "root argument is not closed"}
		}
	}

	return r.argBindings(decl, p.Args), nil
}

// chain finds the supertype expressions leading from decl to scope, depth
// first, superclass before interfaces.
func (r *resolution) chain(decl *Declaration, scope TypeID, onPath map[TypeID]bool) ([]Expr, bool, error) {
	if decl.ID() == scope {
		return nil, true, nil
	}

	for _, sup := range decl.Supertypes() {
		id, _ := baseID(sup)
		if onPath[id] {
			return nil, false, &UnresolvableTypeError{Expr: sup.String(), Scope: decl.ID(), Reason: "cyclic inheritance"}
		}

		anc, err := r.ev.decls.Of(id)
		if err != nil {
			return nil, false, err
		}

		onPath[id] = true
		rest, found, err := r.chain(anc, scope, onPath)
		delete(onPath, id)

		if err != nil {
			return nil, false, err
		}
		if found {
			return append([]Expr{sup}, rest...), true, nil
		}
	}

	return nil, false, nil
}

// bindSuper computes the bindings of the ancestor named by sup, a supertype
// expression of b's declaration.
func (r *resolution) bindSuper(b *bindings, sup Expr) (*bindings, error) {
	switch sup := sup.(type) {
	case *NamedExpr:
		decl, err := r.ev.decls.Of(sup.ID)
		if err != nil {
			return nil, err
		}
		if decl.IsGeneric() {
			// raw link: the ancestor's variables fall back to their bounds
			return r.rawBindings(decl), nil
		}
		return r.argBindings(decl, nil), nil

	case *ParamExpr:
		decl, err := r.arity(sup, b.decl.ID())
		if err != nil {
			return nil, err
		}

		args := make([]Descriptor, len(sup.Args))
		for i, a := range sup.Args {
			d, err := r.substitute(a, b)
			if err == nil {
				d, err = r.close(d, b.decl.ID())
			}
			if err != nil {
				return nil, err
			}
			args[i] = d
		}
		return r.argBindings(decl, args), nil

	default:
		return nil, &UnresolvableTypeError{Expr: sup.String(), Scope: b.decl.ID(), Reason: "supertype is not a class reference"}
	}
}

func (r *resolution) arity(e *ParamExpr, scope TypeID) (*Declaration, error) {
	decl, err := r.ev.decls.Of(e.Base)
	if err != nil {
		return nil, err
	}
	if len(e.Args) != decl.NumTypeParams() {
		return nil, &UnresolvableTypeError{Expr: e.String(), Scope: scope,
			Reason: fmt.Sprintf("%d arguments for %d type parameters", len(e.Args), decl.NumTypeParams())}
	}

	return decl, nil
}

// substitute replaces the variables of expr with their bindings in b.
// The result may still hold wildcards and pending variables.
func (r *resolution) substitute(expr Expr, b *bindings) (Descriptor, error) {
	switch e := expr.(type) {
	case *PrimitiveExpr:
		if !e.Kind.IsPrimitive() {
			return nil, b.unresolvable(e.String(), "not a primitive kind")
		}
		return NewPrimitive(e.Kind), nil

	case *NamedExpr:
		if _, err := r.ev.decls.Of(e.ID); err != nil {
			return nil, err
		}
		return NewNamed(e.ID), nil

	case *ParamExpr:
		decl, err := r.arity(e, b.decl.ID())
		if err != nil {
			return nil, err
		}

		args := make([]Descriptor, len(e.Args))
		for i, a := range e.Args {
			var d Descriptor
			if w, ok := a.(*WildcardExpr); ok {
				d, err = r.wildcard(w, b, decl, i)
			} else {
				d, err = r.substitute(a, b)
			}
			if err != nil {
				return nil, err
			}
			args[i] = d
		}
		return NewParameterized(e.Base, args...), nil

	case *ArrayExpr:
		elem, err := r.substitute(e.Elem, b)
		if err != nil {
			return nil, err
		}
		return NewArrayOf(elem), nil

	case *WildcardExpr:
		return r.wildcard(e, b, nil, 0)

	case *VarExpr:
		return b.lookup(e.Name)

	default:
		return nil, b.unresolvable(fmt.Sprint(expr), "unsupported expression")
	}
}

// wildcard substitutes a wildcard standing at argument position i of base.
// Without an explicit upper bound the declared bound of that position is used,
// also for "? super X": nothing narrower is known without a concrete witness.
func (r *resolution) wildcard(w *WildcardExpr, b *bindings, base *Declaration, i int) (Descriptor, error) {
	var upper, lower Descriptor
	var err error

	switch {
	case w.Upper != nil:
		upper, err = r.substitute(w.Upper, b)
	case base != nil:
		upper, err = r.positionBound(base, i)
	default:
		upper = Top()
	}
	if err != nil {
		return nil, err
	}

	if w.Lower != nil {
		if lower, err = r.substitute(w.Lower, b); err != nil {
			return nil, err
		}
	}

	return NewWildcard(upper, lower), nil
}

// positionBound returns the declared bound of type parameter i of decl,
// evaluated as for raw use of decl.
func (r *resolution) positionBound(decl *Declaration, i int) (Descriptor, error) {
	key := decl.ID().String() + "#" + strconv.Itoa(i)
	if cached, ok := r.ev.bounds.Load(key); ok {
		return cached.(Descriptor), nil
	}

	name := decl.TypeParam(i).Name
	if r.bounding[key] {
		return nil, &UnresolvableTypeError{Expr: name, Scope: decl.ID(), Reason: "cyclic type parameter bounds"}
	}
	r.bounding[key] = true
	defer delete(r.bounding, key)

	d, err := r.rawBindings(decl).lookup(name)
	if err != nil {
		return nil, err
	}

	actual, _ := r.ev.bounds.LoadOrStore(key, d)
	return actual.(Descriptor), nil
}

// close collapses wildcards to their upper bound and rejects leftover variables.
func (r *resolution) close(d Descriptor, scope TypeID) (Descriptor, error) {
	switch d := d.(type) {
	case *Wildcard:
		return r.close(d.Upper, scope)

	case *Parameterized:
		args := make([]Descriptor, len(d.Args))
		for i, a := range d.Args {
			c, err := r.close(a, scope)
			if err != nil {
				return nil, err
			}
			args[i] = c
		}
		return NewParameterized(d.Base, args...), nil

	case *ArrayOf:
		elem, err := r.close(d.Element, scope)
		if err != nil {
			return nil, err
		}
		return NewArrayOf(elem), nil

	case *TypeVar:
		return nil, &UnresolvableTypeError{Expr: d.Name, Scope: d.Scope, Reason: "type variable has no binding"}

	default:
		return d, nil
	}
}

// openVars replaces pending variables that stand as arguments of a generic
// class with the declared bound of their position. A pending variable anywhere
// else is a cycle with no finite answer.
func (r *resolution) openVars(d Descriptor, scope TypeID) (Descriptor, error) {
	switch d := d.(type) {
	case *TypeVar:
		return nil, fmt.Errorf("bound of %s depends on itself", d.Name)

	case *Parameterized:
		decl, err := r.ev.decls.Of(d.Base)
		if err != nil {
			return nil, err
		}

		args := make([]Descriptor, len(d.Args))
		for i, a := range d.Args {
			if _, ok := a.(*TypeVar); ok {
				args[i], err = r.positionBound(decl, i)
			} else {
				args[i], err = r.openVars(a, scope)
			}
			if err != nil {
				return nil, err
			}
		}
		return NewParameterized(d.Base, args...), nil

	case *ArrayOf:
		elem, err := r.openVars(d.Element, scope)
		if err != nil {
			return nil, err
		}
		return NewArrayOf(elem), nil

	case *Wildcard:
		upper, err := r.openVars(d.Upper, scope)
		if err != nil {
			return nil, err
		}
		lower := d.Lower
		if lower != nil && !IsClosed(lower) {
			lower = nil
		}
		return NewWildcard(upper, lower), nil

	default:
		return d, nil
	}
}
