package convert

import (
	"encoding/json"
	"strconv"
	"strings"

	"typeconv/internal/common"
	"typeconv/internal/typelib"
	"typeconv/primitive"
)

// SchemaKind tells which shape a schema node has.
type SchemaKind int

const (
	SchemaScalar SchemaKind = iota
	SchemaEnum
	SchemaArray
	SchemaCollection
	SchemaComposite
)

// String returns the name used in the "kind" field of exported schemas.
func (k SchemaKind) String() string {
	switch k {
	case SchemaScalar:
		return "scalar"
	case SchemaEnum:
		return "enum"
	case SchemaArray:
		return "array"
	case SchemaCollection:
		return "collection"
	case SchemaComposite:
		return "composite"
	default:
		return common.UnknownStr
	}
}

// Schema is the structural description of a structured value.
type Schema interface {
	Kind() SchemaKind
	String() string
	json.Marshaler
	schemaNode()
}

// ScalarSchema describes a single scalar value of a primitive or recognized
// scalar kind. Types without structure are carried as KindString.
type ScalarSchema struct {
	Scalar primitive.KindEnum
}

// EnumSchema describes an enumeration constant carried by its name.
type EnumSchema struct {
	Type      typelib.TypeID
	Constants []string // declaration order
}

// ArraySchema describes a rectangular-by-convention nest of Dimension arrays
// whose innermost elements follow Element. Element is never an ArraySchema.
type ArraySchema struct {
	Element   Schema
	Dimension int
}

// CollectionSchema describes a homogeneous container.
type CollectionSchema struct {
	Container typelib.TypeID // List, Set, SortedSet, Map or SortedMap
	Element   Schema         // for maps, the {key, value} entry composite
	Sorted    bool
}

// CompositeSchema describes a record as named, described items sorted by name.
type CompositeSchema struct {
	Type        typelib.TypeID
	Description string
	Items       []Item
}

// Item is one named member of a composite.
type Item struct {
	Name        string
	Description string
	Schema      Schema
}

func (*ScalarSchema) Kind() SchemaKind     { return SchemaScalar }
func (*EnumSchema) Kind() SchemaKind       { return SchemaEnum }
func (*ArraySchema) Kind() SchemaKind      { return SchemaArray }
func (*CollectionSchema) Kind() SchemaKind { return SchemaCollection }
func (*CompositeSchema) Kind() SchemaKind  { return SchemaComposite }

func (*ScalarSchema) schemaNode()     {}
func (*EnumSchema) schemaNode()       {}
func (*ArraySchema) schemaNode()      {}
func (*CollectionSchema) schemaNode() {}
func (*CompositeSchema) schemaNode()  {}

func (s *ScalarSchema) String() string { return s.Scalar.Name() }

func (s *EnumSchema) String() string {
	return "enum " + s.Type.String() + "{" + strings.Join(s.Constants, ", ") + "}"
}

func (s *ArraySchema) String() string {
	return strings.Repeat("[]", s.Dimension) + s.Element.String()
}

func (s *CollectionSchema) String() string {
	return s.Container.String() + "[" + s.Element.String() + "]"
}

func (s *CompositeSchema) String() string {
	parts := make([]string, len(s.Items))
	for i, it := range s.Items {
		parts[i] = it.Name + ": " + it.Schema.String()
	}
	return s.Type.String() + "{" + strings.Join(parts, ", ") + "}"
}

// Item returns the item called name.
func (s *CompositeSchema) Item(name string) (Item, bool) {
	for _, it := range s.Items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// ItemNames returns the item names in schema order.
func (s *CompositeSchema) ItemNames() []string {
	names := make([]string, len(s.Items))
	for i, it := range s.Items {
		names[i] = it.Name
	}
	return names
}

// IsMapEntry reports whether s is the {key, value} entry of a map-like collection.
func (s *CompositeSchema) IsMapEntry() bool {
	return s.Type == entryID
}

var entryID = typelib.TypeID{Name: "Entry"}

type scalarJSON struct {
	Kind   string `json:"kind"`
	Scalar string `json:"scalar"`
}

type enumJSON struct {
	Kind      string   `json:"kind"`
	Type      string   `json:"type"`
	Constants []string `json:"constants"`
}

type arrayJSON struct {
	Kind      string `json:"kind"`
	Dimension int    `json:"dimension"`
	Element   Schema `json:"element"`
}

type collectionJSON struct {
	Kind      string `json:"kind"`
	Container string `json:"container"`
	Sorted    bool   `json:"sorted,omitempty"`
	Element   Schema `json:"element"`
}

type itemJSON struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Schema      Schema `json:"schema"`
}

type compositeJSON struct {
	Kind        string     `json:"kind"`
	Type        string     `json:"type"`
	Description string     `json:"description,omitempty"`
	Items       []itemJSON `json:"items"`
}

// MarshalJSON implements json.Marshaler.
func (s *ScalarSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(scalarJSON{Kind: s.Kind().String(), Scalar: s.Scalar.Name()})
}

// MarshalJSON implements json.Marshaler.
func (s *EnumSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(enumJSON{Kind: s.Kind().String(), Type: s.Type.String(), Constants: s.Constants})
}

// MarshalJSON implements json.Marshaler.
func (s *ArraySchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(arrayJSON{Kind: s.Kind().String(), Dimension: s.Dimension, Element: s.Element})
}

// MarshalJSON implements json.Marshaler.
func (s *CollectionSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(collectionJSON{
		Kind:      s.Kind().String(),
		Container: s.Container.String(),
		Sorted:    s.Sorted,
		Element:   s.Element,
	})
}

// MarshalJSON implements json.Marshaler.
func (s *CompositeSchema) MarshalJSON() ([]byte, error) {
	items := make([]itemJSON, len(s.Items))
	for i, it := range s.Items {
		items[i] = itemJSON{Name: it.Name, Description: it.Description, Schema: it.Schema}
	}
	return json.Marshal(compositeJSON{Kind: s.Kind().String(), Type: s.Type.String(), Description: s.Description, Items: items})
}

// MarshalSchema renders s as indented JSON.
func MarshalSchema(s Schema) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// describeDimension is used in error messages about nested arrays.
func describeDimension(depth, total int) string {
	return "dimension " + strconv.Itoa(depth+1) + "/" + strconv.Itoa(total)
}
