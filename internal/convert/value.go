package convert

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// CompositeValue is the structured form of a record: the composite schema
// and one structured value per item.
type CompositeValue struct {
	Schema *CompositeSchema
	Values map[string]any
}

// NewCompositeValue creates an empty value of schema.
func NewCompositeValue(schema *CompositeSchema) *CompositeValue {
	return &CompositeValue{Schema: schema, Values: make(map[string]any, len(schema.Items))}
}

// Get returns the structured value of the item called name.
func (v *CompositeValue) Get(name string) (any, bool) {
	val, ok := v.Values[name]
	return val, ok
}

// Set stores the structured value of item name. Unknown names are an error.
func (v *CompositeValue) Set(name string, val any) error {
	if _, ok := v.Schema.Item(name); !ok {
		return fmt.Errorf("composite %s has no item %q", v.Schema.Type, name)
	}
	v.Values[name] = val
	return nil
}

// Items returns the values in schema order.
func (v *CompositeValue) Items() []any {
	out := make([]any, len(v.Schema.Items))
	for i, it := range v.Schema.Items {
		out[i] = v.Values[it.Name]
	}
	return out
}

// String renders the value as {name: value, ...} in schema order.
func (v *CompositeValue) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, it := range v.Schema.Items {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %v", it.Name, v.Values[it.Name])
	}
	buf.WriteByte('}')
	return buf.String()
}

// MarshalJSON renders the value as an object whose keys follow schema order.
func (v *CompositeValue) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, it := range v.Schema.Items {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(it.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.Values[it.Name])
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", it.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders the value as a mapping whose keys follow schema order.
func (v *CompositeValue) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, it := range v.Schema.Items {
		var val yaml.Node
		if err := val.Encode(v.Values[it.Name]); err != nil {
			return nil, fmt.Errorf("item %s: %w", it.Name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: it.Name},
			&val,
		)
	}
	return node, nil
}
