package typelib

// bindings maps the type parameters of one declaration to descriptors.
//
// Arguments supplied by a parameterized use are set up front. For raw use the
// arguments start empty and each is filled, on first lookup, with the
// parameter's declared bound evaluated in the same bindings; pending marks the
// parameters whose bound is being evaluated so self references are detected
// instead of recursed into. Once a resolution step returns, its bindings are
// only read.
type bindings struct {
	res     *resolution
	decl    *Declaration
	args    []Descriptor
	pending []bool
}

func (r *resolution) rawBindings(decl *Declaration) *bindings {
	n := decl.NumTypeParams()
	return &bindings{
		res:     r,
		decl:    decl,
		args:    make([]Descriptor, n),
		pending: make([]bool, n),
	}
}

func (r *resolution) argBindings(decl *Declaration, args []Descriptor) *bindings {
	return &bindings{
		res:     r,
		decl:    decl,
		args:    args,
		pending: make([]bool, len(args)),
	}
}

// lookup returns the binding of the type parameter name. A parameter whose
// bound is still being evaluated yields its TypeVar.
func (b *bindings) lookup(name string) (Descriptor, error) {
	i, ok := b.decl.ParamIndex(name)
	if !ok {
		return nil, b.unresolvable(name, "type variable "+name+" is not declared by "+b.decl.ID().String())
	}

	if b.args[i] != nil {
		return b.args[i], nil
	}
	if b.pending[i] {
		return NewTypeVar(name, b.decl.ID()), nil
	}

	bound, err := b.boundOf(i)
	if err != nil {
		return nil, err
	}
	b.args[i] = bound

	return bound, nil
}

// boundOf evaluates the declared bound of parameter i.
func (b *bindings) boundOf(i int) (Descriptor, error) {
	param := b.decl.TypeParam(i)
	if param.Bound == nil {
		return Top(), nil
	}

	b.pending[i] = true
	d, err := b.res.substitute(param.Bound, b)
	b.pending[i] = false
	if err != nil {
		return nil, err
	}

	self := b.decl.ID()
	if mentionsInside(d, NewTypeVar(param.Name, self), self) {
		// T extends C[T]: the bound is the enclosing class itself.
		return NewNamed(self), nil
	}

	d, err = b.res.openVars(d, self)
	if err != nil {
		return nil, b.unresolvable(param.Name, err.Error())
	}

	return b.res.close(d, b.decl.ID())
}

// descriptor returns the descriptor of the declaration under these bindings:
// Named for non-generic classes, Parameterized with every argument forced otherwise.
func (b *bindings) descriptor() (Descriptor, error) {
	if !b.decl.IsGeneric() {
		return NewNamed(b.decl.ID()), nil
	}

	args := make([]Descriptor, b.decl.NumTypeParams())
	for i := range args {
		d, err := b.lookup(b.decl.TypeParam(i).Name)
		if err != nil {
			return nil, err
		}
		args[i] = d
	}

	return NewParameterized(b.decl.ID(), args...), nil
}

func (b *bindings) unresolvable(expr, reason string) error {
	return &UnresolvableTypeError{Expr: expr, Scope: b.decl.ID(), Reason: reason}
}

// mentionsInside reports whether v occurs in d below a Parameterized node whose base is scope.
func mentionsInside(d Descriptor, v *TypeVar, scope TypeID) bool {
	var walk func(d Descriptor, inside bool) bool
	walk = func(d Descriptor, inside bool) bool {
		switch d := d.(type) {
		case *TypeVar:
			return inside && d == v
		case *Parameterized:
			in := inside || d.Base == scope
			for _, a := range d.Args {
				if walk(a, in) {
					return true
				}
			}
		case *ArrayOf:
			return walk(d.Element, inside)
		case *Wildcard:
			if walk(d.Upper, inside) {
				return true
			}
			if d.Lower != nil {
				return walk(d.Lower, inside)
			}
		}
		return false
	}

	return walk(d, false)
}
