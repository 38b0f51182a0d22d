package analyze

import (
	"fmt"

	"typeconv/internal/typelib"
)

// Graph holds the class declarations extracted from loaded packages.
type Graph struct {
	// Specs maps each class identity to its declaration.
	Specs map[typelib.TypeID]*typelib.ClassSpec
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
	// External lists classes referenced from, but not declared in, the loaded packages.
	External map[typelib.TypeID]bool
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		Specs:    make(map[typelib.TypeID]*typelib.ClassSpec),
		Packages: make(map[string]*PackageInfo),
		External: make(map[typelib.TypeID]bool),
	}
}

// Get returns the declaration of id, or nil if not found.
func (g *Graph) Get(id typelib.TypeID) *typelib.ClassSpec {
	return g.Specs[id]
}

// IDs returns the identities of all extracted classes in string order.
func (g *Graph) IDs() []typelib.TypeID {
	ids := make([]typelib.TypeID, 0, len(g.Specs))
	for id := range g.Specs {
		ids = append(ids, id)
	}
	typelib.SortIDs(ids)

	return ids
}

// Universe defines every extracted class on top of the predeclared ones.
func (g *Graph) Universe() (*typelib.Universe, error) {
	u := typelib.NewUniverse()
	for _, id := range g.IDs() {
		if err := u.Define(*g.Specs[id]); err != nil {
			return nil, fmt.Errorf("define %s: %w", id, err)
		}
	}

	return u, nil
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path    string           // Import path
	Name    string           // Package name
	Classes []typelib.TypeID // Classes declared in this package
}
