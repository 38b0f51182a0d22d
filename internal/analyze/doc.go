// Package analyze turns Go source into class declarations.
//
// It uses golang.org/x/tools/go/packages with go/types to read the named
// types of the loaded packages and maps each one to a typelib.ClassSpec:
//
//   - type parameters and their constraints become parameters and bounds
//   - embedded struct fields become supertypes, the first one the superclass
//   - embedded interfaces become implemented interfaces
//   - exported fields and interface getters become members
//   - typed constants of a defined basic type make that type an enumeration
//
// Named types from packages outside the loaded set are recorded as opaque
// classes without members.
package analyze
