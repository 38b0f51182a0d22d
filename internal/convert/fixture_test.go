package convert_test

import (
	"math/big"
	"net/netip"
	"reflect"
	"time"

	"typeconv/internal/convert"
	"typeconv/internal/discover"
	"typeconv/internal/typelib"
)

const pkg = "example.com/shop"

func id(name string) typelib.TypeID { return typelib.TypeID{PkgPath: pkg, Name: name} }

type TestBase[T any] struct {
	List []T `description:"Description of the list attribute"`
}

type Data1 struct {
	TestBase[string]
	Value int32 `description:"Description of the value attribute"`
}

func (Data1) Description() string { return "Description of Data1 type" }

type Color int

const (
	Red Color = iota
	Green
	Blue
)

type DoubleIndex struct {
	Nested [][]string `managed:"1" description:"Attribute 1"`
	Grid   [][]string `managed:"2" description:"Attribute 2"`
	Cache  []byte
}

type Inventory struct {
	Stock   map[string]int64
	Tags    map[string]struct{}
	Expires time.Duration
	Paint   Color
}

type Node struct {
	Name string
	Next *Node
}

type Parcel struct {
	Code string
}

type Shipment struct {
	Label  string
	Parcel *Parcel
	Price  *big.Int
	Seal   *Opaque
}

type Opaque struct{ n int }

func (o Opaque) String() string { return "opaque" }

type Names []string

func must(src string, params ...string) typelib.Expr { return typelib.MustParseExprIn(src, params...) }

func members(pairs ...string) []typelib.MemberSpec {
	var out []typelib.MemberSpec
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, typelib.MemberSpec{Name: pairs[i], Type: must(pairs[i+1], "T"), Field: true})
	}
	return out
}

func universe() *typelib.Universe {
	return typelib.NewUniverse().MustDefine(
		typelib.ClassSpec{
			ID:         id("TestBase"),
			TypeParams: []typelib.TypeParam{{Name: "T"}},
			Members:    members("List", "[]T"),
		},
		typelib.ClassSpec{
			ID:      id("Data1"),
			Super:   typelib.Inst(id("TestBase"), typelib.Ref(typelib.StringID)),
			Members: members("Value", "int32"),
			Native:  reflect.TypeOf(Data1{}),
		},
		typelib.ClassSpec{
			ID:   id("Color"),
			Kind: typelib.ClassKindEnum,
			Constants: []typelib.EnumConstant{
				{Name: "RED", Value: Red},
				{Name: "GREEN", Value: Green},
				{Name: "BLUE", Value: Blue},
			},
			Native: reflect.TypeOf(Red),
		},
		typelib.ClassSpec{
			ID:      id("DoubleIndex"),
			Members: members("Nested", "List[List[string]]", "Grid", "[][]string", "Cache", "[]uint8"),
			Native:  reflect.TypeOf(DoubleIndex{}),
		},
		typelib.ClassSpec{
			ID: id("Inventory"),
			Members: members(
				"Stock", "SortedMap[string, int64]",
				"Tags", "Set[string]",
				"Expires", "time.Duration",
				"Paint", pkg+".Color",
			),
			Native: reflect.TypeOf(Inventory{}),
		},
		typelib.ClassSpec{
			ID:      id("Node"),
			Members: members("Name", "string", "Next", pkg+".Node"),
			Native:  reflect.TypeOf(&Node{}),
		},
		typelib.ClassSpec{
			ID:      id("Parcel"),
			Members: members("Code", "string"),
			Native:  reflect.TypeOf(Parcel{}),
		},
		typelib.ClassSpec{
			ID:      id("Shipment"),
			Members: members("Label", "string", "Parcel", pkg+".Parcel", "Price", "big.Int", "Seal", pkg+".Opaque"),
			Native:  reflect.TypeOf(Shipment{}),
		},
		typelib.ClassSpec{ID: id("Opaque"), Native: reflect.TypeOf(Opaque{})},
		typelib.ClassSpec{ID: id("Addr"), Native: reflect.TypeOf(netip.Addr{})},
		typelib.ClassSpec{
			ID:     id("Names"),
			Super:  typelib.Inst(typelib.SortedSetID, typelib.Ref(typelib.StringID)),
			Native: reflect.TypeOf(Names{}),
		},
	)
}

func newBuilder(opts ...convert.Option) *convert.Builder {
	decls := typelib.NewDeclarations(universe())
	eval := typelib.NewEvaluator(decls)

	return convert.NewBuilder(eval, append([]convert.Option{convert.WithDiscoverer(discover.New(decls))}, opts...)...)
}
