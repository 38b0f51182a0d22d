package declfile

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"typeconv/internal/common"
)

// File is the root of a declaration file.
type File struct {
	Version string  `json:"version" yaml:"version" validate:"required,oneof=1"`
	Package string  `json:"package,omitempty" yaml:"package,omitempty"`
	Classes []Class `json:"classes" yaml:"classes" validate:"required,dive"`
}

// Class declares one class, interface or enumeration.
type Class struct {
	Name       string        `json:"name" yaml:"name" validate:"required"`
	Kind       string        `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=class interface enum"`
	Params     StringOrArray `json:"params,omitempty" yaml:"params,omitempty"`
	Extends    string        `json:"extends,omitempty" yaml:"extends,omitempty"`
	Implements StringOrArray `json:"implements,omitempty" yaml:"implements,omitempty"`
	Members    []Member      `json:"members,omitempty" yaml:"members,omitempty" validate:"dive"`
	Constants  StringOrArray `json:"constants,omitempty" yaml:"constants,omitempty"`
}

// Member declares a field or an accessor method.
type Member struct {
	Name   string `json:"name" yaml:"name" validate:"required"`
	Type   string `json:"type" yaml:"type" validate:"required"`
	Method bool   `json:"method,omitempty" yaml:"method,omitempty"`
}

// StringOrArray accepts either a single string or a list of strings.
type StringOrArray []string

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("line %d: expected string or array, got %v", node.Line, node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if common.IsSingle(s) {
		return s[0], nil
	}

	return []string(s), nil
}

// IsEmpty returns true if the array is empty.
func (s StringOrArray) IsEmpty() bool {
	return common.IsEmpty(s)
}

// Contains returns true if the array contains the given string.
func (s StringOrArray) Contains(str string) bool {
	return slices.Contains(s, str)
}
