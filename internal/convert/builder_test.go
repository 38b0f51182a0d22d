package convert_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/big"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typeconv/internal/convert"
	"typeconv/internal/diagnostic"
	"typeconv/internal/typelib"
	"typeconv/primitive"
)

func named(i typelib.TypeID) typelib.Descriptor { return typelib.NewNamed(i) }

func TestBuilder_Composite(t *testing.T) {
	b := newBuilder()

	c, err := b.ConverterFor(named(id("Data1")), convert.MemberMetadata{})
	require.NoError(t, err)
	assert.False(t, c.IsIdentity())
	assert.False(t, c.Lossy())

	schema, ok := c.Schema().(*convert.CompositeSchema)
	require.True(t, ok, spew.Sdump(c.Schema()))
	assert.Equal(t, []string{"list", "value"}, schema.ItemNames())
	assert.Equal(t, "example.com/shop.Data1{list: []string, value: int32}", schema.String())
	assert.Equal(t, "Description of Data1 type", schema.Description)

	list, _ := schema.Item("list")
	assert.Equal(t, "Description of the list attribute", list.Description)
	assert.Equal(t, &convert.ArraySchema{Element: &convert.ScalarSchema{Scalar: primitive.KindString}, Dimension: 1}, list.Schema)

	data := Data1{TestBase: TestBase[string]{List: []string{"One", "Two", "Three"}}, Value: 21}

	sv, err := c.ToStructured(data)
	require.NoError(t, err)
	cv, ok := sv.(*convert.CompositeValue)
	require.True(t, ok)
	assert.Equal(t, []any{[]any{"One", "Two", "Three"}, int32(21)}, cv.Items())

	back, err := c.FromStructured(sv)
	require.NoError(t, err)
	if diff := cmp.Diff(data, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_CompositeNilMember(t *testing.T) {
	b := newBuilder()
	c, err := b.ConverterFor(named(id("Shipment")), convert.MemberMetadata{})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   Shipment
		want []any
	}{
		{"all nil", Shipment{Label: "x"}, []any{"x", nil, nil, nil}},
		{"set", Shipment{Label: "y", Parcel: &Parcel{Code: "P1"}, Price: big.NewInt(42)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sv, err := c.ToStructured(tt.in)
			require.NoError(t, err)
			if tt.want != nil {
				assert.Equal(t, tt.want, sv.(*convert.CompositeValue).Items())
			}

			back, err := c.FromStructured(sv)
			require.NoError(t, err, spew.Sdump(sv))
			if diff := cmp.Diff(tt.in, back, cmp.AllowUnexported(Opaque{}), cmp.Comparer(func(a, b *big.Int) bool {
				if a == nil || b == nil {
					return a == b
				}
				return a.Cmp(b) == 0
			})); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}

	parcel, err := b.ConverterFor(named(id("Parcel")), convert.MemberMetadata{})
	require.NoError(t, err)
	back, err := parcel.FromStructured(nil)
	require.NoError(t, err)
	assert.Nil(t, back)
}

func TestBuilder_CompositeFromGenericMap(t *testing.T) {
	b := newBuilder()
	c, err := b.ConverterFor(named(id("Data1")), convert.MemberMetadata{})
	require.NoError(t, err)

	// what a JSON decoder hands back
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"list": ["a"], "value": 7}`), &decoded))

	back, err := c.FromStructured(decoded)
	require.NoError(t, err)
	assert.Equal(t, Data1{TestBase: TestBase[string]{List: []string{"a"}}, Value: 7}, back)

	_, err = c.FromStructured(map[string]any{"list": []any{"a"}})
	assert.ErrorIs(t, err, convert.ErrConversion)

	_, err = c.FromStructured(map[string]any{"list": []any{"a"}, "value": 1.5})
	assert.ErrorIs(t, err, convert.ErrConversion)
}

func TestBuilder_Enum(t *testing.T) {
	b := newBuilder()

	c, err := b.ConverterFor(named(id("Color")), convert.MemberMetadata{})
	require.NoError(t, err)
	assert.Equal(t, &convert.EnumSchema{Type: id("Color"), Constants: []string{"RED", "GREEN", "BLUE"}}, c.Schema())
	assert.False(t, c.IsIdentity())

	sv, err := c.ToStructured(Red)
	require.NoError(t, err)
	assert.Equal(t, "RED", sv)

	back, err := c.FromStructured("RED")
	require.NoError(t, err)
	assert.Equal(t, Red, back)

	_, err = c.FromStructured("red")
	require.ErrorIs(t, err, convert.ErrConversion)
	var ce *convert.ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "RED", ce.Suggestion)

	_, err = c.ToStructured(Color(7))
	assert.ErrorIs(t, err, convert.ErrConversion)
	_, err = c.FromStructured(1)
	assert.ErrorIs(t, err, convert.ErrConversion)
}

func TestBuilder_DoubleIndex(t *testing.T) {
	b := newBuilder()
	c, err := b.ConverterFor(named(id("DoubleIndex")), convert.MemberMetadata{})
	require.NoError(t, err)

	schema := c.Schema().(*convert.CompositeSchema)
	assert.Equal(t, []string{"1", "2"}, schema.ItemNames())

	nested, _ := schema.Item("1")
	assert.Equal(t, "List[List[string]]", nested.Schema.String())
	grid, _ := schema.Item("2")
	assert.Equal(t, &convert.ArraySchema{Element: &convert.ScalarSchema{Scalar: primitive.KindString}, Dimension: 2}, grid.Schema)
	assert.Equal(t, "Attribute 2", grid.Description)

	data := [][]string{{"R", "G", "B"}, {"1", "2", "3", "4", "5"}}
	in := DoubleIndex{Nested: data, Grid: data}

	sv, err := c.ToStructured(in)
	require.NoError(t, err)
	want := []any{[]any{"R", "G", "B"}, []any{"1", "2", "3", "4", "5"}}
	assert.Equal(t, []any{want, want}, sv.(*convert.CompositeValue).Items())

	back, err := c.FromStructured(sv)
	require.NoError(t, err)
	assert.Equal(t, in, back)
}

func TestBuilder_Arrays(t *testing.T) {
	b := newBuilder()
	d := typelib.NewArrayOf(typelib.NewArrayOf(typelib.NewNamed(typelib.StringID)))

	c, err := b.ConverterFor(d, convert.MemberMetadata{})
	require.NoError(t, err)
	assert.Equal(t, "[][]string", c.Schema().String())
	assert.False(t, c.IsIdentity())

	in := [][]string{{"a", "b"}, {}, {"c"}}
	sv, err := c.ToStructured(in)
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{"a", "b"}, []any{}, []any{"c"}}, sv)

	back, err := c.FromStructured(sv)
	require.NoError(t, err)
	assert.Equal(t, in, back)

	_, err = c.ToStructured([]string{"flat"})
	assert.ErrorIs(t, err, convert.ErrConversion)

	fixed, err := c.ToStructured([2][1]string{{"x"}, {"y"}})
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{"x"}, []any{"y"}}, fixed)
}

func TestBuilder_IdentityFlags(t *testing.T) {
	b := newBuilder()

	tests := []struct {
		d        typelib.Descriptor
		identity bool
	}{
		{typelib.NewPrimitive(primitive.KindInt32), true},
		{typelib.NewPrimitive(primitive.KindBool), true},
		{typelib.NewPrimitive(primitive.KindVoid), true},
		{typelib.NewNamed(typelib.StringID), true},
		{typelib.NewNamed(typelib.TimeID), true},
		{typelib.NewNamed(typelib.DurationID), false},
		{typelib.NewNamed(typelib.BigIntID), false},
		{typelib.NewArrayOf(typelib.NewPrimitive(primitive.KindInt8)), false},
		{typelib.NewParameterized(typelib.ListID, typelib.NewNamed(typelib.StringID)), false},
		{named(id("Data1")), false},
		{named(id("Color")), false},
	}

	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			c, err := b.ConverterFor(tt.d, convert.MemberMetadata{})
			require.NoError(t, err)
			assert.Equal(t, tt.identity, c.IsIdentity())
			assert.Same(t, tt.d, c.Type())
		})
	}
}

func TestBuilder_Scalars(t *testing.T) {
	b := newBuilder()

	tests := []struct {
		d          typelib.Descriptor
		native     any
		structured any
	}{
		{typelib.NewPrimitive(primitive.KindInt64), int64(-3), int64(-3)},
		{typelib.NewPrimitive(primitive.KindFloat32), float32(1.5), float32(1.5)},
		{typelib.NewNamed(typelib.StringID), "hi", "hi"},
		{typelib.NewNamed(typelib.DurationID), 90 * time.Minute, "1h30m0s"},
		{typelib.NewNamed(typelib.BigIntID), big.NewInt(1 << 40), "1099511627776"},
	}

	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			c, err := b.ConverterFor(tt.d, convert.MemberMetadata{})
			require.NoError(t, err)

			sv, err := c.ToStructured(tt.native)
			require.NoError(t, err)
			assert.Equal(t, tt.structured, sv)

			back, err := c.FromStructured(sv)
			require.NoError(t, err)
			assert.Equal(t, tt.native, back)
		})
	}

	c, err := b.ConverterFor(typelib.NewPrimitive(primitive.KindInt8), convert.MemberMetadata{})
	require.NoError(t, err)
	v, err := c.FromStructured(float64(12))
	require.NoError(t, err)
	assert.Equal(t, int8(12), v)
	_, err = c.FromStructured(float64(1000))
	assert.ErrorIs(t, err, convert.ErrConversion)
}

func TestBuilder_Collections(t *testing.T) {
	b := newBuilder()
	c, err := b.ConverterFor(named(id("Inventory")), convert.MemberMetadata{})
	require.NoError(t, err)

	schema := c.Schema().(*convert.CompositeSchema)
	assert.Equal(t, []string{"expires", "paint", "stock", "tags"}, schema.ItemNames())

	stock, _ := schema.Item("stock")
	cs := stock.Schema.(*convert.CollectionSchema)
	assert.True(t, cs.Sorted)
	assert.True(t, cs.Element.(*convert.CompositeSchema).IsMapEntry())
	assert.Equal(t, "SortedMap[Entry{key: string, value: int64}]", cs.String())

	in := Inventory{
		Stock:   map[string]int64{"pear": 2, "apple": 5},
		Tags:    map[string]struct{}{"sale": {}, "fresh": {}},
		Expires: 36 * time.Hour,
		Paint:   Blue,
	}

	sv, err := c.ToStructured(in)
	require.NoError(t, err)
	cv := sv.(*convert.CompositeValue)

	tags, _ := cv.Get("tags")
	assert.Equal(t, []any{"fresh", "sale"}, tags)

	entries, _ := cv.Get("stock")
	require.Len(t, entries, 2)
	first := entries.([]any)[0].(*convert.CompositeValue)
	assert.Equal(t, "{key: apple, value: 5}", first.String())

	back, err := c.FromStructured(sv)
	require.NoError(t, err)
	assert.Equal(t, in, back)
}

func TestBuilder_ContainerThroughAncestor(t *testing.T) {
	b := newBuilder()
	c, err := b.ConverterFor(named(id("Names")), convert.MemberMetadata{})
	require.NoError(t, err)

	cs, ok := c.Schema().(*convert.CollectionSchema)
	require.True(t, ok)
	assert.Equal(t, typelib.SortedSetID, cs.Container)
	assert.True(t, cs.Sorted)

	sv, err := c.ToStructured(Names{"b", "c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, sv)

	back, err := c.FromStructured([]any{"z", "y"})
	require.NoError(t, err)
	assert.Equal(t, Names{"y", "z"}, back)
}

func TestBuilder_RawContainer(t *testing.T) {
	b := newBuilder()
	c, err := b.ConverterFor(named(typelib.ListID), convert.MemberMetadata{})
	require.NoError(t, err)

	cs := c.Schema().(*convert.CollectionSchema)
	assert.Equal(t, &convert.ScalarSchema{Scalar: primitive.KindString}, cs.Element)
	assert.True(t, b.Diagnostics().Len() > 0, "top type falls back to its textual form")
}

func TestBuilder_Fallback(t *testing.T) {
	b := newBuilder()

	c, err := b.ConverterFor(named(id("Opaque")), convert.MemberMetadata{Name: "blob"})
	require.NoError(t, err)
	assert.True(t, c.Lossy())
	assert.False(t, c.IsIdentity())

	sv, err := c.ToStructured(Opaque{n: 1})
	require.NoError(t, err)
	assert.Equal(t, "opaque", sv)

	_, err = c.FromStructured("opaque")
	assert.ErrorIs(t, err, convert.ErrUnsupportedOperation)

	diags := b.Diagnostics()
	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, diagnostic.CodeLossyFallback, diags.Warnings[0].Code)
	assert.Equal(t, "blob", diags.Warnings[0].Member)

	// cached: no second warning for an anonymous or already reported use
	_, err = b.ConverterFor(named(id("Opaque")), convert.MemberMetadata{})
	require.NoError(t, err)
	_, err = b.ConverterFor(named(id("Opaque")), convert.MemberMetadata{Name: "blob"})
	require.NoError(t, err)
	assert.Len(t, b.Diagnostics().Warnings, 1)

	// another member reaching the same type is reported too
	_, err = b.ConverterFor(named(id("Opaque")), convert.MemberMetadata{Name: "seal"})
	require.NoError(t, err)
	warnings := b.Diagnostics().Warnings
	require.Len(t, warnings, 2)
	assert.Equal(t, "seal", warnings[1].Member)

	addr, err := b.ConverterFor(named(id("Addr")), convert.MemberMetadata{})
	require.NoError(t, err)
	sv, err = addr.ToStructured(netip.MustParseAddr("10.0.0.1"))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", sv)
	back, err := addr.FromStructured(sv)
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("10.0.0.1"), back)
}

func TestBuilder_RecursiveComposite(t *testing.T) {
	b := newBuilder()

	_, err := b.ConverterFor(named(id("Node")), convert.MemberMetadata{})
	assert.ErrorIs(t, err, typelib.ErrUnresolvableType)

	// failures are not cached
	_, err = b.ConverterFor(named(id("Node")), convert.MemberMetadata{})
	assert.ErrorIs(t, err, typelib.ErrUnresolvableType)
}

func TestBuilder_WithoutDiscoverer(t *testing.T) {
	eval := typelib.NewEvaluator(typelib.NewDeclarations(universe()))
	b := convert.NewBuilder(eval)

	c, err := b.ConverterFor(named(id("Data1")), convert.MemberMetadata{})
	require.NoError(t, err)
	assert.True(t, c.Lossy())
}

func TestBuilder_NoConstructStrategy(t *testing.T) {
	eval := typelib.NewEvaluator(typelib.NewDeclarations(universe()))
	disc := convert.DiscovererFunc(func(d typelib.Descriptor, decl *typelib.Declaration) (*convert.Record, error) {
		if decl.ID() != id("Data1") {
			return nil, nil
		}
		return &convert.Record{Attributes: []convert.Attribute{{
			Name:  "value",
			Scope: id("Data1"),
			Type:  typelib.Prim(primitive.KindInt32),
			Get:   func(v any) (any, error) { return v.(Data1).Value, nil },
		}}}, nil
	})
	b := convert.NewBuilder(eval, convert.WithDiscoverer(disc))

	c, err := b.ConverterFor(named(id("Data1")), convert.MemberMetadata{})
	require.NoError(t, err)

	sv, err := c.ToStructured(Data1{Value: 3})
	require.NoError(t, err)
	_, err = c.FromStructured(sv)
	assert.ErrorIs(t, err, convert.ErrUnsupportedOperation)

	infos := b.Diagnostics().Infos
	require.Len(t, infos, 1)
	assert.Equal(t, diagnostic.CodeNoReconstruct, infos[0].Code)
}

func TestBuilder_ConverterForMember(t *testing.T) {
	b := newBuilder()

	c, err := b.ConverterForMember(named(id("Data1")), "List")
	require.NoError(t, err)
	assert.Equal(t, "[]string", c.Type().String())

	_, err = b.ConverterForMember(named(id("Data1")), "Lst")
	assert.ErrorIs(t, err, typelib.ErrUnresolvableType)

	warnings := b.Diagnostics().Warnings
	require.Len(t, warnings, 1)
	assert.Equal(t, diagnostic.CodeUnknownMember, warnings[0].Code)
	assert.Equal(t, []string{"List"}, warnings[0].Suggestions)
}

func TestBuilder_ConcurrentSameKey(t *testing.T) {
	b := newBuilder()
	d := named(id("Inventory"))

	got := make([]*convert.Converter, 16)
	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := b.ConverterFor(d, convert.MemberMetadata{})
			if err == nil {
				got[i] = c
			}
		}(i)
	}
	wg.Wait()

	for _, c := range got {
		require.NotNil(t, c)
		assert.Same(t, got[0], c)
	}
}

func TestBuilder_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	b := newBuilder(convert.WithLogger(logger))

	for range 2 {
		_, err := b.ConverterFor(typelib.NewNamed(typelib.StringID), convert.MemberMetadata{})
		require.NoError(t, err)
	}

	assert.Contains(t, buf.String(), "converter cache miss")
	assert.Contains(t, buf.String(), "converter cache hit")
}
