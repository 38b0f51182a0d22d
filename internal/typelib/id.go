package typelib

import (
	"sort"
	"strings"

	"typeconv/internal/common"
)

// TypeID uniquely identifies a class-like entity by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "time"
	Name    string // e.g., "Time"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Short qualifies the name with the package alias only, e.g. "shop.Order".
func (t TypeID) Short() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return common.PkgAlias(t.PkgPath) + "." + t.Name
}

// IsZero reports whether the TypeID is empty.
func (t TypeID) IsZero() bool {
	return t.PkgPath == "" && t.Name == ""
}

// ParseTypeID splits "pkg/path.Name" at the last dot.
// A name without a dot has an empty package path.
func ParseTypeID(s string) TypeID {
	if id, ok := builtinNames[s]; ok {
		return id
	}

	lastDot := strings.LastIndex(s, ".")
	if lastDot < 0 {
		return TypeID{Name: s}
	}

	return TypeID{PkgPath: s[:lastDot], Name: s[lastDot+1:]}
}

// Predeclared class identities.
var (
	TopID       = TypeID{Name: "any"}
	StringID    = TypeID{Name: "string"}
	TimeID      = TypeID{PkgPath: "time", Name: "Time"}
	DurationID  = TypeID{PkgPath: "time", Name: "Duration"}
	BigIntID    = TypeID{PkgPath: "math/big", Name: "Int"}
	BigFloatID  = TypeID{PkgPath: "math/big", Name: "Float"}
	ListID      = TypeID{Name: "List"}
	SetID       = TypeID{Name: "Set"}
	SortedSetID = TypeID{Name: "SortedSet"}
	MapID       = TypeID{Name: "Map"}
	SortedMapID = TypeID{Name: "SortedMap"}
)

var builtinNames = map[string]TypeID{
	"any":           TopID,
	"string":        StringID,
	"time.Time":     TimeID,
	"time.Duration": DurationID,
	"big.Int":       BigIntID,
	"big.Float":     BigFloatID,
	"List":          ListID,
	"Set":           SetID,
	"SortedSet":     SortedSetID,
	"Map":           MapID,
	"SortedMap":     SortedMapID,
}

// SortIDs orders ids by their string form.
func SortIDs(ids []TypeID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}

// IsPredeclared reports whether id names one of the classes every Universe starts with.
func IsPredeclared(id TypeID) bool {
	for _, b := range builtinNames {
		if b == id {
			return true
		}
	}

	return false
}
