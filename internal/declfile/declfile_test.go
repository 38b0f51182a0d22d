package declfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typeconv/internal/diagnostic"
	"typeconv/internal/typelib"
	"typeconv/primitive"
)

const shop = "example.com/shop"

func shopID(name string) typelib.TypeID { return typelib.TypeID{PkgPath: shop, Name: name} }

func TestLoadFile(t *testing.T) {
	f, err := LoadFile("testdata/shop.yaml")
	require.NoError(t, err)

	assert.Equal(t, "1", f.Version)
	assert.Equal(t, shop, f.Package)
	require.Len(t, f.Classes, 10)

	super := f.Classes[2]
	assert.Equal(t, "Super", super.Name)
	assert.Equal(t, "class", super.Kind, "default kind")
	assert.Equal(t, StringOrArray{"T"}, super.Params)

	color := f.Classes[8]
	assert.Equal(t, "enum", color.Kind)
	assert.True(t, color.Constants.Contains("GREEN"))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read declaration file")
}

func TestParse_Structure(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing class name",
			yaml:    "classes:\n  - kind: class\n",
			wantErr: "classes[0].name: required",
		},
		{
			name:    "bad kind",
			yaml:    "classes:\n  - name: A\n    kind: struct\n",
			wantErr: "classes[0].kind: must be one of: class interface enum",
		},
		{
			name:    "member without type",
			yaml:    "classes:\n  - name: A\n    members:\n      - name: X\n",
			wantErr: "classes[0].members[0].type: required",
		},
		{
			name:    "unknown version",
			yaml:    "version: \"2\"\nclasses: []\n",
			wantErr: "version: must be one of: 1",
		},
		{
			name:    "no classes",
			yaml:    "version: \"1\"\n",
			wantErr: "classes: required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrInvalidFile)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	_, err := Parse([]byte("classes: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse declaration YAML")

	_, err = Parse([]byte("classes:\n  - name: A\n    params: {T: x}\n"))
	assert.ErrorContains(t, err, "expected string or array")
}

func TestValidate(t *testing.T) {
	f := &File{Version: "1", Package: shop, Classes: []Class{
		{Name: "Super", Kind: "class", Params: StringOrArray{"T"}, Members: []Member{{Name: "Thing", Type: "T"}, {Name: "Thing", Type: "int32"}}},
		{Name: "Int", Kind: "class", Extends: "Supr[int32]"},
		{Name: "Int", Kind: "class"},
		{Name: "Broken", Kind: "class", Members: []Member{{Name: "X", Type: "List[int32"}}},
		{Name: "Color", Kind: "enum"},
		{Name: "Plain", Kind: "class", Constants: StringOrArray{"A"}},
		{Name: "Ext", Kind: "class", Extends: "time.Time", Members: []Member{{Name: "Any", Type: "? extends Number"}}},
	}}

	diags := Validate(f)
	require.True(t, diags.HasErrors())

	codes := make(map[string][]diagnostic.Diagnostic)
	for _, d := range diags.Errors {
		codes[d.Code] = append(codes[d.Code], d)
	}

	require.Len(t, codes[diagnostic.CodeDuplicateMember], 1)
	assert.Equal(t, "Thing", codes[diagnostic.CodeDuplicateMember][0].Member)

	require.Len(t, codes[diagnostic.CodeUnknownClass], 2)
	supr := codes[diagnostic.CodeUnknownClass][0]
	assert.Equal(t, "Int", supr.Type)
	assert.Equal(t, []string{"Super"}, supr.Suggestions)
	assert.Equal(t, "Any", codes[diagnostic.CodeUnknownClass][1].Member)

	assert.Len(t, codes[diagnostic.CodeDuplicateClass], 1)
	assert.Len(t, codes[diagnostic.CodeInvalidExpr], 1)
	assert.Len(t, codes[diagnostic.CodeEnumConstants], 2)

	assert.True(t, Validate(nil).HasErrors())
}

func TestToSpecs(t *testing.T) {
	f, err := LoadFile("testdata/shop.yaml")
	require.NoError(t, err)

	specs, err := ToSpecs(f)
	require.NoError(t, err)
	require.Len(t, specs, 10)

	bound := specs[4]
	assert.Equal(t, shopID("Bound"), bound.ID)
	require.Len(t, bound.TypeParams, 1)
	assert.Equal(t, shop+".Number", bound.TypeParams[0].Bound.String())
	assert.Equal(t, shop+".Super[T]", bound.Super.String())

	comparable := specs[6]
	assert.Equal(t, typelib.ClassKindInterface, comparable.Kind)
	assert.False(t, comparable.Members[0].Field)

	color := specs[8]
	assert.Equal(t, typelib.ClassKindEnum, color.Kind)
	assert.Equal(t, []typelib.EnumConstant{{Name: "RED", Value: "RED"}, {Name: "GREEN", Value: "GREEN"}, {Name: "BLUE", Value: "BLUE"}}, color.Constants)

	_, err = ToSpecs(&File{Version: "1", Classes: []Class{{Name: "A", Kind: "class", Extends: "B"}}})
	assert.ErrorIs(t, err, ErrInvalidFile)
}

func TestToSpecs_Evaluate(t *testing.T) {
	f, err := LoadFile("testdata/shop.yaml")
	require.NoError(t, err)
	specs, err := ToSpecs(f)
	require.NoError(t, err)

	u := typelib.NewUniverse()
	require.NoError(t, u.Define(specs...))
	eval := typelib.NewEvaluator(typelib.NewDeclarations(u))

	tests := []struct {
		root string
		want typelib.Descriptor
	}{
		{"Int", typelib.NewPrimitive(primitive.KindInt32)},
		{"Bound", typelib.NewNamed(shopID("Number"))},
		{"BoundInt", typelib.NewNamed(shopID("Integer"))},
	}

	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			m, err := eval.Member(typelib.NewNamed(shopID(tt.root)), "Thing")
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Type)
			assert.Equal(t, shopID("Super"), m.Scope)
		})
	}

	max, err := eval.Member(typelib.NewNamed(shopID("Ordered")), "Max")
	require.NoError(t, err)
	assert.Equal(t, typelib.NewParameterized(shopID("Comparable"), typelib.Top()), max.Type)
}

func TestFromSpecs_RoundTrip(t *testing.T) {
	f, err := LoadFile("testdata/shop.yaml")
	require.NoError(t, err)
	specs, err := ToSpecs(f)
	require.NoError(t, err)

	ptrs := make([]*typelib.ClassSpec, len(specs))
	for i := range specs {
		ptrs[i] = &specs[i]
	}

	out := FromSpecs(shop, ptrs)
	assert.Equal(t, "Bound", out.Classes[4].Name)
	assert.Equal(t, StringOrArray{"T extends " + shop + ".Number"}, out.Classes[4].Params)

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, WriteFile(out, path))

	back, err := LoadFile(path)
	require.NoError(t, err)
	again, err := ToSpecs(back)
	require.NoError(t, err)

	require.Len(t, again, len(specs))
	for i := range specs {
		assert.Equal(t, specs[i].ID, again[i].ID)
		assert.Equal(t, specs[i].Kind, again[i].Kind)
		assert.Equal(t, specs[i].ParamNames(), again[i].ParamNames())
		for j, m := range specs[i].Members {
			assert.Equal(t, m.Type.String(), again[i].Members[j].Type.String())
			assert.Equal(t, m.Field, again[i].Members[j].Field)
		}
	}
}

func TestStringOrArray_MarshalYAML(t *testing.T) {
	v, err := StringOrArray{"T"}.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "T", v)

	v, err = StringOrArray{"K", "V"}.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, []string{"K", "V"}, v)
}
