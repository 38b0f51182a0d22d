package typelib

import "fmt"

// EvaluatedMember is a member whose declared type has been resolved against a root.
type EvaluatedMember struct {
	Name  string
	Scope TypeID // declaring class
	Field bool
	Type  Descriptor
}

// EvaluatedClass is a class seen from a root descriptor with every visible member resolved.
type EvaluatedClass struct {
	Type    Descriptor
	Decl    *Declaration
	Members []EvaluatedMember
}

// Member returns the member called name.
func (c *EvaluatedClass) Member(name string) (EvaluatedMember, bool) {
	for _, m := range c.Members {
		if m.Name == name {
			return m, true
		}
	}

	return EvaluatedMember{}, false
}

// EvaluateClass resolves every member visible from root. Members are listed
// in declaration order, root first, then ancestors depth first. A member
// declared again by a nearer class hides the farther one.
func (e *Evaluator) EvaluateClass(root Descriptor) (*EvaluatedClass, error) {
	line, err := e.lineage(root)
	if err != nil {
		return nil, err
	}

	out := &EvaluatedClass{Type: root, Decl: line[0]}
	seen := make(map[string]bool)
	for _, decl := range line {
		for _, m := range decl.Members() {
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true

			t, err := e.Evaluate(root, m.Type, decl.ID())
			if err != nil {
				return nil, err
			}
			out.Members = append(out.Members, EvaluatedMember{Name: m.Name, Scope: decl.ID(), Field: m.Field, Type: t})
		}
	}

	return out, nil
}

// Member resolves the type of the nearest member called name visible from root.
func (e *Evaluator) Member(root Descriptor, name string) (EvaluatedMember, error) {
	line, err := e.lineage(root)
	if err != nil {
		return EvaluatedMember{}, err
	}

	for _, decl := range line {
		m, ok := decl.Member(name)
		if !ok {
			continue
		}

		t, err := e.Evaluate(root, m.Type, decl.ID())
		if err != nil {
			return EvaluatedMember{}, err
		}
		return EvaluatedMember{Name: m.Name, Scope: decl.ID(), Field: m.Field, Type: t}, nil
	}

	return EvaluatedMember{}, &UnresolvableTypeError{Root: root, Expr: name, Scope: line[0].ID(), Reason: "no such member"}
}

// Ancestors returns the closed descriptors of every ancestor of root, depth
// first, superclass before interfaces. Each class appears once.
func (e *Evaluator) Ancestors(root Descriptor) ([]Descriptor, error) {
	if root == nil {
		return nil, &UnresolvableTypeError{Expr: "<nil>", Reason: "missing root"}
	}

	r := e.newResolution()
	b, err := r.rootBindings(root)
	if err != nil {
		return nil, err
	}

	var out []Descriptor
	seen := map[TypeID]bool{b.decl.ID(): true}

	var walk func(b *bindings) error
	walk = func(b *bindings) error {
		for _, sup := range b.decl.Supertypes() {
			id, _ := baseID(sup)
			if seen[id] {
				continue
			}
			seen[id] = true

			sb, err := r.bindSuper(b, sup)
			if err != nil {
				return err
			}
			d, err := sb.descriptor()
			if err != nil {
				return err
			}
			out = append(out, d)

			if err := walk(sb); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(b); err != nil {
		return nil, withRoot(err, root)
	}

	return out, nil
}

// lineage returns the declaration of root followed by its ancestors, depth
// first, each once.
func (e *Evaluator) lineage(root Descriptor) ([]*Declaration, error) {
	if root == nil {
		return nil, &UnresolvableTypeError{Expr: "<nil>", Reason: "missing root"}
	}

	id, ok := IDOf(root)
	if !ok {
		return nil, &IntrospectionError{Class: TypeID{Name: root.String()}, Reason: fmt.Sprintf("%s is not class-like", root.Kind())}
	}

	return e.decls.Lineage(id)
}
