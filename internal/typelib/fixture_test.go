package typelib_test

import (
	"strings"

	"typeconv/internal/typelib"
)

// splitTop splits s at commas that are not nested in brackets.
func splitTop(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, c := range s {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}

	if rest := strings.TrimSpace(s[start:]); rest != "" {
		parts = append(parts, rest)
	}

	return parts
}

// def builds a class from a header such as "Bound[T extends Number]".
// supers[0] is the superclass ("" for none), the rest are interfaces.
// Members are written "Name: expr".
func def(header string, supers []string, members ...string) typelib.ClassSpec {
	name, params := header, ""
	if i := strings.Index(header, "["); i >= 0 {
		name, params = header[:i], header[i+1:len(header)-1]
	}

	spec := typelib.ClassSpec{ID: typelib.ParseTypeID(name)}
	var names []string
	for _, p := range splitTop(params) {
		n, _, _ := strings.Cut(p, " extends ")
		names = append(names, n)
	}
	for _, p := range splitTop(params) {
		n, bound, ok := strings.Cut(p, " extends ")
		tp := typelib.TypeParam{Name: n}
		if ok {
			tp.Bound = typelib.MustParseExprIn(bound, names...)
		}
		spec.TypeParams = append(spec.TypeParams, tp)
	}

	for i, s := range supers {
		if s == "" {
			continue
		}
		e := typelib.MustParseExprIn(s, names...)
		if i == 0 {
			spec.Super = e
		} else {
			spec.Interfaces = append(spec.Interfaces, e)
		}
	}

	for _, m := range members {
		n, t, _ := strings.Cut(m, ":")
		spec.Members = append(spec.Members, typelib.MemberSpec{
			Name: strings.TrimSpace(n),
			Type: typelib.MustParseExprIn(strings.TrimSpace(t), names...),
		})
	}

	return spec
}

func iface(header string, extends []string, members ...string) typelib.ClassSpec {
	spec := def(header, append([]string{""}, extends...), members...)
	spec.Kind = typelib.ClassKindInterface

	return spec
}

func ext(super string, ifaces ...string) []string {
	return append([]string{super}, ifaces...)
}

// hierarchy is the generic class zoo shared by the evaluator tests.
func hierarchy() *typelib.Universe {
	return typelib.NewUniverse().MustDefine(
		def("Number", nil),
		def("Integer", ext("Number")),

		def("Super[T]", nil, "Thing: T"),
		def("Int", ext("Super[Integer]")),
		def("Mid[X]", ext("Super[X]")),
		def("Str", ext("Mid[string]")),
		def("ListInt", ext("Super[List[Integer]]")),
		def("ListU[U]", ext("Super[List[U]]")),
		def("ListUInt", ext("ListU[Integer]")),
		def("TwoParams[S, T]", ext("Super[S]")),
		def("TwoParamsSub[T]", ext("TwoParams[T, Integer]")),
		def("TwoParamsSubSub", ext("TwoParamsSub[string]")),

		iface("Intf[T]", nil, "Thing: T"),
		def("Impl", ext("", "Intf[string]")),
		def("Impl2", ext("Super[string]", "Intf[string]")),

		def("Bound[T extends Number]", ext("Super[T]")),
		def("BoundInt", ext("Bound[Integer]")),
		def("RawBound", ext("Bound")),
		def("RawBoundInt", ext("BoundInt")),
		def("Raw", ext("Super")),
		def("RawSub", ext("Raw")),

		def("SimpleArray", ext("Super[[]string]")),
		def("GenericArray", ext("Super[[]List[string]]")),
		def("GenericArrayT[T]", ext("Super[[]T]")),
		def("GenericArrayTSub", ext("GenericArrayT[[]string]")),

		def("Wildcard", ext("Super[List[?]]")),
		def("WildcardT[T]", ext("Super[List[? extends T]]")),
		def("WildcardTSub", ext("WildcardT[Integer]")),
		def("WildcardTSubSub[X]", ext("WildcardTSub")),
		def("RawWildcardTSubSub", ext("WildcardTSubSub")),
		def("WildcardTSuper[T]", ext("Super[List[? super T]]")),
		def("WildcardTSuperSub", ext("WildcardTSuper[Integer]")),

		def("SuperMap[K, V]", nil, "Thing: Map[K, V]"),
		def("SubMap", ext("SuperMap[string, Integer]")),
		def("ListListT[T]", ext("Super[List[List[T]]]")),
		def("ListListString", ext("ListListT[string]")),
		def("UExtendsT[T, U extends T]", ext("Super[U]")),
		def("UExtendsTSub", ext("UExtendsT[Number, Integer]")),

		def("SelfRef[T extends SelfRef[T]]", ext("Super[T]")),
		def("SelfRefSub", ext("SelfRef[SelfRefSub]")),
		def("SelfRefSubSub", ext("SelfRefSub")),
		def("SelfRefSubSubSub", ext("SelfRefSubSub")),

		iface("Comparable[T]", nil),
		def("Ordered[T extends Comparable[T]]", nil, "Thing: T"),
	)
}
