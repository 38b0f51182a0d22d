package convert

import "typeconv/internal/typelib"

// MemberMetadata describes where a descriptor is used. It only feeds
// diagnostics; converters are cached per descriptor.
type MemberMetadata struct {
	Owner       string // descriptor of the record declaring the member, if any
	Name        string
	Description string
}

// Discoverer decides which classes are records and which of their members are
// managed. It is consulted only for classes that are not scalars, enumerations
// or containers.
type Discoverer interface {
	// Discover returns the record view of d, or nil if d is not a record.
	Discover(d typelib.Descriptor, decl *typelib.Declaration) (*Record, error)
}

// Record is the managed view of a class.
type Record struct {
	Description string
	Attributes  []Attribute
	// Construct rebuilds a native value from native item values keyed by
	// attribute name. Nil when the class cannot be rebuilt.
	Construct func(values map[string]any) (any, error)
}

// Attribute is one managed member of a record.
type Attribute struct {
	Name        string // item name in the composite schema
	Description string
	Scope       typelib.TypeID // declaring class
	Type        typelib.Expr   // raw declared type, evaluated against the record
	Get         func(native any) (any, error)
}

// DiscovererFunc adapts a function to the Discoverer interface.
type DiscovererFunc func(d typelib.Descriptor, decl *typelib.Declaration) (*Record, error)

// Discover implements Discoverer.
func (f DiscovererFunc) Discover(d typelib.Descriptor, decl *typelib.Declaration) (*Record, error) {
	return f(d, decl)
}
