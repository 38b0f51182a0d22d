package typelib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typeconv/internal/typelib"
	"typeconv/primitive"
)

func TestParseExprIn(t *testing.T) {
	tests := []struct {
		text   string
		params []string
		want   string
	}{
		{"int32", nil, "int32"},
		{"string", nil, "string"},
		{" T ", []string{"T"}, "T"},
		{"[][]float64", nil, "[][]float64"},
		{"List[? extends T]", []string{"T"}, "List[? extends T]"},
		{"List[?]", nil, "List[?]"},
		{"Map[K,  List[? super V]]", []string{"K", "V"}, "Map[K, List[? super V]]"},
		{"example.com/shop/model.Order", nil, "example.com/shop/model.Order"},
		{"time.Time", nil, "time.Time"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			e, err := typelib.ParseExprIn(tt.text, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String())
		})
	}
}

func TestParseExprIn_Nodes(t *testing.T) {
	e := typelib.MustParseExprIn("Map[K, []int8]", "K")

	p, ok := e.(*typelib.ParamExpr)
	require.True(t, ok)
	assert.Equal(t, typelib.MapID, p.Base)
	require.Len(t, p.Args, 2)
	assert.Equal(t, &typelib.VarExpr{Name: "K"}, p.Args[0])
	assert.Equal(t, &typelib.ArrayExpr{Elem: &typelib.PrimitiveExpr{Kind: primitive.KindInt8}}, p.Args[1])

	e = typelib.MustParseExprIn("example.com/shop/model.Order")
	assert.Equal(t, &typelib.NamedExpr{ID: typelib.TypeID{PkgPath: "example.com/shop/model", Name: "Order"}}, e)

	e = typelib.MustParseExprIn("big.Int")
	assert.Equal(t, &typelib.NamedExpr{ID: typelib.BigIntID}, e)
}

func TestParseExprIn_Errors(t *testing.T) {
	tests := []struct {
		text   string
		params []string
	}{
		{"", nil},
		{"List[", nil},
		{"List[int32", nil},
		{"List[int32 string]", nil},
		{"List[]", nil},
		{"T[int32]", []string{"T"}},
		{"int32[string]", nil},
		{"Map[K, V] extra", nil},
		{"[]", nil},
		{"#", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := typelib.ParseExprIn(tt.text, tt.params)
			assert.ErrorIs(t, err, typelib.ErrSyntax)
		})
	}

	assert.Panics(t, func() { typelib.MustParseExprIn("List[") })
}

func TestParseTypeID(t *testing.T) {
	assert.Equal(t, typelib.TypeID{Name: "Local"}, typelib.ParseTypeID("Local"))
	assert.Equal(t, typelib.DurationID, typelib.ParseTypeID("time.Duration"))
	assert.Equal(t, typelib.TypeID{PkgPath: "a/b.c", Name: "D"}, typelib.ParseTypeID("a/b.c.D"))
	assert.True(t, typelib.TypeID{}.IsZero())
	assert.Equal(t, "math/big.Int", typelib.BigIntID.String())
}

func TestQualify(t *testing.T) {
	shop := typelib.TypeID{PkgPath: "example.com/shop", Name: "Super"}
	local := map[string]typelib.TypeID{"Super": shop}

	e := typelib.MustParseExprIn("Map[Super[T], []? extends Super]", "T")
	got := typelib.Qualify(e, local)
	assert.Equal(t, "Map[example.com/shop.Super[T], []? extends example.com/shop.Super]", got.String())

	other := typelib.MustParseExprIn("other.org/x.Super")
	assert.Same(t, other, typelib.Qualify(other, local))
}

func TestDescriptorOf(t *testing.T) {
	e := typelib.MustParseExprIn("Map[string, [][]int8]")
	d, err := typelib.DescriptorOf(e)
	require.NoError(t, err)

	want := typelib.NewParameterized(typelib.MapID,
		typelib.NewNamed(typelib.StringID),
		typelib.NewArrayOf(typelib.NewArrayOf(typelib.NewPrimitive(primitive.KindInt8))))
	assert.Same(t, want, d)

	for _, text := range []string{"List[?]", "List[T]"} {
		_, err := typelib.DescriptorOf(typelib.MustParseExprIn(text, "T"))
		assert.ErrorIs(t, err, typelib.ErrSyntax, text)
	}
}
