package declfile

import (
	"fmt"
	"strings"

	"typeconv/internal/diagnostic"
	"typeconv/internal/match"
	"typeconv/internal/typelib"
)

const extendsKeyword = " extends "

// Validate reports the semantic problems of f: duplicate names, malformed
// type expressions, bare references to classes the file does not declare,
// and misplaced enum constants.
func Validate(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError("file-is-nil", "declaration file is nil", "", "")
		return res
	}

	local := localIDs(f)
	seen := make(map[typelib.TypeID]bool, len(f.Classes))

	for i := range f.Classes {
		c := &f.Classes[i]
		id := f.classID(c.Name)

		if seen[id] {
			res.AddError(diagnostic.CodeDuplicateClass, fmt.Sprintf("class %s declared twice", id), c.Name, "")
			continue
		}
		seen[id] = true

		switch {
		case c.Kind == "enum" && c.Constants.IsEmpty():
			res.AddError(diagnostic.CodeEnumConstants, "enumeration without constants", c.Name, "")
		case c.Kind != "enum" && !c.Constants.IsEmpty():
			res.AddError(diagnostic.CodeEnumConstants, "constants declared on a "+c.Kind, c.Name, "")
		}

		p, err := c.parse()
		if err != nil {
			res.AddError(diagnostic.CodeInvalidExpr, err.Error(), c.Name, "")
			continue
		}

		for _, e := range p.all(c) {
			checkRefs(res, c.Name, e.member, e.expr, local)
		}

		members := make(map[string]bool, len(c.Members))
		for _, m := range c.Members {
			if members[m.Name] {
				res.AddError(diagnostic.CodeDuplicateMember, "member declared twice", c.Name, m.Name)
			}
			members[m.Name] = true
		}
	}

	return res
}

// ToSpecs validates f and converts it to class specs, in file order.
func ToSpecs(f *File) ([]typelib.ClassSpec, error) {
	if diags := Validate(f); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, diags.Error())
	}

	local := localIDs(f)
	specs := make([]typelib.ClassSpec, 0, len(f.Classes))

	for i := range f.Classes {
		c := &f.Classes[i]
		p, err := c.parse()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, c.Name, err)
		}

		spec := typelib.ClassSpec{ID: f.classID(c.Name), Kind: classKind(c.Kind)}

		for _, tp := range p.params {
			if tp.Bound != nil {
				tp.Bound = typelib.Qualify(tp.Bound, local)
			}
			spec.TypeParams = append(spec.TypeParams, tp)
		}
		if p.super != nil {
			spec.Super = typelib.Qualify(p.super, local)
		}
		for _, e := range p.interfaces {
			spec.Interfaces = append(spec.Interfaces, typelib.Qualify(e, local))
		}
		for i, m := range c.Members {
			spec.Members = append(spec.Members, typelib.MemberSpec{
				Name:  m.Name,
				Type:  typelib.Qualify(p.members[i], local),
				Field: !m.Method,
			})
		}
		for _, name := range c.Constants {
			spec.Constants = append(spec.Constants, typelib.EnumConstant{Name: name, Value: name})
		}

		specs = append(specs, spec)
	}

	return specs, nil
}

// FromSpecs builds a file declaring specs. Classes of pkg get bare names.
func FromSpecs(pkg string, specs []*typelib.ClassSpec) *File {
	f := &File{Version: "1", Package: pkg}

	for _, spec := range specs {
		c := Class{Name: spec.ID.String(), Kind: spec.Kind.String()}
		if spec.ID.PkgPath == pkg {
			c.Name = spec.ID.Name
		}

		for _, p := range spec.TypeParams {
			text := p.Name
			if p.Bound != nil {
				text += extendsKeyword + p.Bound.String()
			}
			c.Params = append(c.Params, text)
		}
		if spec.Super != nil {
			c.Extends = spec.Super.String()
		}
		for _, i := range spec.Interfaces {
			c.Implements = append(c.Implements, i.String())
		}
		for _, m := range spec.Members {
			c.Members = append(c.Members, Member{Name: m.Name, Type: m.Type.String(), Method: !m.Field})
		}
		for _, k := range spec.Constants {
			c.Constants = append(c.Constants, k.Name)
		}

		f.Classes = append(f.Classes, c)
	}

	return f
}

func (f *File) classID(name string) typelib.TypeID {
	if strings.Contains(name, ".") || f.Package == "" {
		return typelib.ParseTypeID(name)
	}

	return typelib.TypeID{PkgPath: f.Package, Name: name}
}

// localIDs maps the bare names of the file's classes to their identities.
func localIDs(f *File) map[string]typelib.TypeID {
	local := make(map[string]typelib.TypeID, len(f.Classes))
	for i := range f.Classes {
		name := f.Classes[i].Name
		if !strings.Contains(name, ".") {
			local[name] = f.classID(name)
		}
	}

	return local
}

func classKind(kind string) typelib.ClassKind {
	switch kind {
	case "interface":
		return typelib.ClassKindInterface
	case "enum":
		return typelib.ClassKindEnum
	default:
		return typelib.ClassKindClass
	}
}

type located struct {
	member string
	expr   typelib.Expr
}

// parsed holds the expressions of a class, read in the scope of its parameters.
type parsed struct {
	params     []typelib.TypeParam
	super      typelib.Expr
	interfaces []typelib.Expr
	members    []typelib.Expr
}

// all lists every expression with the member it belongs to, if any.
func (p *parsed) all(c *Class) []located {
	var out []located
	for _, tp := range p.params {
		if tp.Bound != nil {
			out = append(out, located{expr: tp.Bound})
		}
	}
	if p.super != nil {
		out = append(out, located{expr: p.super})
	}
	for _, e := range p.interfaces {
		out = append(out, located{expr: e})
	}
	for i, e := range p.members {
		out = append(out, located{member: c.Members[i].Name, expr: e})
	}

	return out
}

// parse reads the parameter list and every type expression of c.
func (c *Class) parse() (*parsed, error) {
	p := &parsed{params: make([]typelib.TypeParam, 0, len(c.Params))}

	names := make([]string, len(c.Params))
	for i, text := range c.Params {
		name, _, _ := strings.Cut(text, extendsKeyword)
		names[i] = strings.TrimSpace(name)
	}

	for i, text := range c.Params {
		tp := typelib.TypeParam{Name: names[i]}
		if _, bound, ok := strings.Cut(text, extendsKeyword); ok {
			e, err := typelib.ParseExprIn(bound, names)
			if err != nil {
				return nil, fmt.Errorf("bound of %s: %w", names[i], err)
			}
			tp.Bound = e
		}
		p.params = append(p.params, tp)
	}

	var err error
	if c.Extends != "" {
		if p.super, err = typelib.ParseExprIn(c.Extends, names); err != nil {
			return nil, fmt.Errorf("extends: %w", err)
		}
	}
	for _, text := range c.Implements {
		e, err := typelib.ParseExprIn(text, names)
		if err != nil {
			return nil, fmt.Errorf("implements: %w", err)
		}
		p.interfaces = append(p.interfaces, e)
	}
	for _, m := range c.Members {
		e, err := typelib.ParseExprIn(m.Type, names)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", m.Name, err)
		}
		p.members = append(p.members, e)
	}

	return p, nil
}

// checkRefs reports bare class names that are neither declared in the file
// nor predeclared, with the closest local name as a suggestion.
func checkRefs(res *diagnostic.Diagnostics, class, member string, e typelib.Expr, local map[string]typelib.TypeID) {
	var id typelib.TypeID
	switch e := e.(type) {
	case *typelib.NamedExpr:
		id = e.ID
	case *typelib.ParamExpr:
		id = e.Base
		for _, a := range e.Args {
			checkRefs(res, class, member, a, local)
		}
	case *typelib.ArrayExpr:
		checkRefs(res, class, member, e.Elem, local)
		return
	case *typelib.WildcardExpr:
		if e.Upper != nil {
			checkRefs(res, class, member, e.Upper, local)
		}
		if e.Lower != nil {
			checkRefs(res, class, member, e.Lower, local)
		}
		return
	default:
		return
	}

	if id.PkgPath != "" || typelib.IsPredeclared(id) {
		return
	}
	if _, ok := local[id.Name]; ok {
		return
	}

	d := diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticError,
		Code:     diagnostic.CodeUnknownClass,
		Message:  "unknown class " + id.Name,
		Type:     class,
		Member:   member,
	}
	names := make([]string, 0, len(local))
	for name := range local {
		names = append(names, name)
	}
	if s, ok := match.Suggest(id.Name, names, match.DefaultThreshold); ok {
		d.Suggestions = []string{s}
	}
	res.Add(d)
}
