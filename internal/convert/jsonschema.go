package convert

import (
	"github.com/google/jsonschema-go/jsonschema"

	"typeconv/primitive"
)

// JSONSchema describes the JSON encoding of structured values of s.
// Composite items are already in name order, the order JSON objects are
// encoded in.
func JSONSchema(s Schema) *jsonschema.Schema {
	switch s := s.(type) {
	case *ScalarSchema:
		return scalarJSONSchema(s.Scalar)

	case *EnumSchema:
		enum := make([]any, len(s.Constants))
		for i, c := range s.Constants {
			enum[i] = c
		}
		return &jsonschema.Schema{Type: "string", Title: s.Type.String(), Enum: enum}

	case *ArraySchema:
		out := JSONSchema(s.Element)
		for range s.Dimension {
			out = &jsonschema.Schema{Type: "array", Items: out}
		}
		return out

	case *CollectionSchema:
		out := &jsonschema.Schema{Type: "array", Title: s.Container.String(), Items: JSONSchema(s.Element)}
		if s.Container.Name == "Set" || s.Container.Name == "SortedSet" {
			out.UniqueItems = true
		}
		return out

	case *CompositeSchema:
		out := &jsonschema.Schema{
			Type:        "object",
			Title:       s.Type.String(),
			Description: s.Description,
			Properties:  make(map[string]*jsonschema.Schema, len(s.Items)),
			Required:    s.ItemNames(),
		}
		for _, it := range s.Items {
			prop := JSONSchema(it.Schema)
			prop.Description = it.Description
			out.Properties[it.Name] = prop
		}
		return out

	default:
		return &jsonschema.Schema{}
	}
}

func scalarJSONSchema(k primitive.KindEnum) *jsonschema.Schema {
	switch {
	case k == primitive.KindVoid:
		return &jsonschema.Schema{Type: "null"}
	case k == primitive.KindBool:
		return &jsonschema.Schema{Type: "boolean"}
	case k.IsInteger():
		return &jsonschema.Schema{Type: "integer", Format: k.Name()}
	case k.IsFloat():
		return &jsonschema.Schema{Type: "number", Format: k.Name()}
	case k == primitive.KindTime:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	default:
		return &jsonschema.Schema{Type: "string"}
	}
}
