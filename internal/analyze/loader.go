package analyze

import (
	"errors"
	"fmt"
	"go/constant"
	"go/types"
	"sort"

	"golang.org/x/tools/go/packages"

	"typeconv/internal/common"
	"typeconv/internal/typelib"
	"typeconv/primitive"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Analyzer loads Go packages and extracts their class declarations.
type Analyzer struct {
	graph *Graph
	enums map[*types.TypeName][]*types.Const // defined basic types with typed constants
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		graph: NewGraph(),
		enums: make(map[*types.TypeName][]*types.Const),
	}
}

// LoadPackages loads the packages matching patterns, resolved from dir
// (the current directory when empty), and extracts their declarations.
// Patterns are standard Go package patterns (e.g., "./...", "example.com/shop").
func (a *Analyzer) LoadPackages(dir string, patterns ...string) (*Graph, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	// Register packages first so references between them are not taken for external ones.
	for _, pkg := range pkgs {
		a.graph.Packages[pkg.PkgPath] = &PackageInfo{Path: pkg.PkgPath, Name: pkg.Name}
		a.collectEnums(pkg.Types)
	}

	for _, pkg := range pkgs {
		if err := a.processPackage(pkg); err != nil {
			return nil, fmt.Errorf("failed to process package %s: %w", pkg.PkgPath, err)
		}
	}

	return a.graph, nil
}

// Graph returns the current graph.
func (a *Analyzer) Graph() *Graph {
	return a.graph
}

// collectEnums finds the typed constants of every defined basic type of pkg,
// in declaration order.
func (a *Analyzer) collectEnums(pkg *types.Package) {
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok || !c.Exported() {
			continue
		}
		named, ok := c.Type().(*types.Named)
		if !ok || named.Obj().Pkg() != pkg {
			continue
		}
		if _, basic := named.Underlying().(*types.Basic); !basic {
			continue
		}
		a.enums[named.Obj()] = append(a.enums[named.Obj()], c)
	}

	for tn := range a.enums {
		consts := a.enums[tn]
		sort.Slice(consts, func(i, j int) bool { return consts[i].Pos() < consts[j].Pos() })
	}
}

// processPackage extracts the exported named types of a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) error {
	info := a.graph.Packages[pkg.PkgPath]

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		// Only process exported type names (not variables, constants, functions)
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !typeName.Exported() || typeName.IsAlias() {
			continue
		}

		named, ok := typeName.Type().(*types.Named)
		if !ok {
			continue
		}

		spec, err := a.classOf(named)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if spec == nil {
			continue
		}

		a.graph.Specs[spec.ID] = spec
		delete(a.graph.External, spec.ID)
		info.Classes = append(info.Classes, spec.ID)
	}

	return nil
}

func idOf(obj *types.TypeName) typelib.TypeID {
	if obj.Pkg() == nil {
		return typelib.TypeID{Name: obj.Name()}
	}

	return typelib.TypeID{PkgPath: obj.Pkg().Path(), Name: obj.Name()}
}

// classOf maps a declared named type to its class. Types that are not
// classes (plain defined basics, funcs, chans) give nil.
func (a *Analyzer) classOf(named *types.Named) (*typelib.ClassSpec, error) {
	obj := named.Obj()
	spec := &typelib.ClassSpec{ID: idOf(obj)}

	if typelib.IsPredeclared(spec.ID) {
		return nil, nil
	}

	for i := range named.TypeParams().Len() {
		tp := named.TypeParams().At(i)
		spec.TypeParams = append(spec.TypeParams, typelib.TypeParam{
			Name:  tp.Obj().Name(),
			Bound: a.boundOf(tp),
		})
	}

	switch ut := named.Underlying().(type) {
	case *types.Struct:
		a.structClass(ut, spec)

	case *types.Interface:
		spec.Kind = typelib.ClassKindInterface
		a.interfaceClass(ut, spec)

	case *types.Basic:
		consts, ok := a.enums[obj]
		if !ok {
			return nil, nil
		}
		spec.Kind = typelib.ClassKindEnum
		for _, c := range consts {
			spec.Constants = append(spec.Constants, typelib.EnumConstant{Name: c.Name(), Value: constValue(c.Val())})
		}

	case *types.Slice, *types.Array:
		// a defined list type, e.g. type Names []string
		spec.Interfaces = append(spec.Interfaces, typelib.Inst(typelib.ListID, a.exprOf(elemOf(ut))))

	case *types.Map:
		spec.Interfaces = append(spec.Interfaces, typelib.Inst(typelib.MapID, a.exprOf(ut.Key()), a.exprOf(ut.Elem())))

	case *types.Pointer:
		return nil, fmt.Errorf("defined pointer type %s is not supported", obj.Name())

	default:
		return nil, nil
	}

	return spec, nil
}

func (a *Analyzer) structClass(st *types.Struct, spec *typelib.ClassSpec) {
	var supers []typelib.Expr

	for i := range st.NumFields() {
		field := st.Field(i)

		if field.Embedded() {
			t := deref(field.Type())
			if _, ok := t.Underlying().(*types.Interface); ok {
				spec.Interfaces = append(spec.Interfaces, a.exprOf(t))
				continue
			}
			if _, ok := t.(*types.Named); ok {
				supers = append(supers, a.exprOf(t))
				continue
			}
		}

		if !field.Exported() {
			continue
		}
		spec.Members = append(spec.Members, typelib.MemberSpec{
			Name:  field.Name(),
			Type:  a.exprOf(field.Type()),
			Field: true,
		})
	}

	if first, ok := common.First(supers); ok {
		spec.Super = first
		spec.Interfaces = append(supers[1:], spec.Interfaces...)
	}
}

// interfaceClass records embedded interfaces and getters: exported methods
// without parameters returning exactly one value.
func (a *Analyzer) interfaceClass(it *types.Interface, spec *typelib.ClassSpec) {
	for i := range it.NumEmbeddeds() {
		if named, ok := types.Unalias(it.EmbeddedType(i)).(*types.Named); ok {
			spec.Interfaces = append(spec.Interfaces, a.exprOf(named))
		}
	}

	for i := range it.NumExplicitMethods() {
		m := it.ExplicitMethod(i)
		sig, ok := m.Type().(*types.Signature)
		if !ok || !m.Exported() || sig.Params().Len() != 0 || !common.IsSingle(tupleTypes(sig.Results())) {
			continue
		}
		spec.Members = append(spec.Members, typelib.MemberSpec{
			Name: m.Name(),
			Type: a.exprOf(sig.Results().At(0).Type()),
		})
	}
}

// boundOf maps a constraint to a bound. Only named constraints bound a
// parameter: any, comparable and inline type sets leave it unbounded.
func (a *Analyzer) boundOf(tp *types.TypeParam) typelib.Expr {
	named, ok := types.Unalias(tp.Constraint()).(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return nil
	}

	return a.exprOf(named)
}

// exprOf maps a Go type to a type expression.
func (a *Analyzer) exprOf(t types.Type) typelib.Expr {
	switch tt := types.Unalias(t).(type) {
	case *types.TypeParam:
		return typelib.Var(tt.Obj().Name())

	case *types.Basic:
		return basicExpr(tt)

	case *types.Pointer:
		return a.exprOf(tt.Elem())

	case *types.Slice, *types.Array:
		return typelib.Arr(a.exprOf(elemOf(tt)))

	case *types.Map:
		return typelib.Inst(typelib.MapID, a.exprOf(tt.Key()), a.exprOf(tt.Elem()))

	case *types.Named:
		return a.namedExpr(tt)

	default:
		// anonymous structs and interfaces, funcs, chans
		return typelib.Ref(typelib.TopID)
	}
}

func (a *Analyzer) namedExpr(named *types.Named) typelib.Expr {
	obj := named.Obj()
	if obj.Pkg() == nil {
		// the predeclared error interface
		return typelib.Ref(typelib.TopID)
	}

	id := idOf(obj)
	if typelib.IsPredeclared(id) {
		return typelib.Ref(id)
	}

	if basic, ok := named.Underlying().(*types.Basic); ok {
		if _, enum := a.enums[obj]; !enum {
			return basicExpr(basic)
		}
	}

	if _, loaded := a.graph.Packages[obj.Pkg().Path()]; !loaded {
		a.external(named.Origin())
	}

	args := named.TypeArgs()
	if args.Len() == 0 {
		return typelib.Ref(id)
	}

	exprs := make([]typelib.Expr, args.Len())
	for i := range args.Len() {
		exprs[i] = a.exprOf(args.At(i))
	}
	return typelib.Inst(id, exprs...)
}

// external records an opaque class for a named type outside the loaded packages.
func (a *Analyzer) external(origin *types.Named) {
	id := idOf(origin.Obj())
	if _, ok := a.graph.Specs[id]; ok {
		return
	}

	spec := &typelib.ClassSpec{ID: id}
	if _, ok := origin.Underlying().(*types.Interface); ok {
		spec.Kind = typelib.ClassKindInterface
	}
	for i := range origin.TypeParams().Len() {
		spec.TypeParams = append(spec.TypeParams, typelib.TypeParam{Name: origin.TypeParams().At(i).Obj().Name()})
	}

	a.graph.Specs[id] = spec
	a.graph.External[id] = true
}

func basicExpr(b *types.Basic) typelib.Expr {
	switch b.Kind() {
	case types.Bool, types.UntypedBool:
		return typelib.Prim(primitive.KindBool)
	case types.Int, types.UntypedInt:
		return typelib.Prim(primitive.KindInt)
	case types.Int8:
		return typelib.Prim(primitive.KindInt8)
	case types.Int16:
		return typelib.Prim(primitive.KindInt16)
	case types.Int32, types.UntypedRune:
		return typelib.Prim(primitive.KindInt32)
	case types.Int64:
		return typelib.Prim(primitive.KindInt64)
	case types.Uint, types.Uintptr:
		return typelib.Prim(primitive.KindUint)
	case types.Uint8:
		return typelib.Prim(primitive.KindUint8)
	case types.Uint16:
		return typelib.Prim(primitive.KindUint16)
	case types.Uint32:
		return typelib.Prim(primitive.KindUint32)
	case types.Uint64:
		return typelib.Prim(primitive.KindUint64)
	case types.Float32:
		return typelib.Prim(primitive.KindFloat32)
	case types.Float64, types.UntypedFloat:
		return typelib.Prim(primitive.KindFloat64)
	case types.String, types.UntypedString:
		return typelib.Ref(typelib.StringID)
	default:
		// complex numbers, unsafe.Pointer, untyped nil
		return typelib.Ref(typelib.TopID)
	}
}

func constValue(v constant.Value) any {
	switch v.Kind() {
	case constant.Bool:
		return constant.BoolVal(v)
	case constant.String:
		return constant.StringVal(v)
	case constant.Int:
		if i, exact := constant.Int64Val(v); exact {
			return i
		}
		if u, exact := constant.Uint64Val(v); exact {
			return u
		}
	case constant.Float:
		f, _ := constant.Float64Val(v)
		return f
	}

	return v.ExactString()
}

func deref(t types.Type) types.Type {
	if p, ok := types.Unalias(t).(*types.Pointer); ok {
		return p.Elem()
	}

	return types.Unalias(t)
}

func elemOf(t types.Type) types.Type {
	switch tt := t.(type) {
	case *types.Slice:
		return tt.Elem()
	case *types.Array:
		return tt.Elem()
	default:
		return t
	}
}

func tupleTypes(t *types.Tuple) []types.Type {
	out := make([]types.Type, t.Len())
	for i := range t.Len() {
		out[i] = t.At(i).Type()
	}

	return out
}
