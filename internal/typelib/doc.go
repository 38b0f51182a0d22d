// Package typelib resolves declared generic types to closed type descriptors.
//
// It walks an explicit, immutable declaration graph (classes, their type
// parameters, supertypes and members) and folds type-variable bindings along
// the ancestor chain from a root class to the class that declares a member.
//
// Key types:
//   - TypeID: identity of a class-like entity (package path + name)
//   - Descriptor: closed, interned, structurally comparable type description
//   - Expr: raw type expression as written in a declaration
//   - Declaration: frozen per-class declaration, built from a ClassSpec
//   - Declarations: read-through cache over an Introspector
//   - Evaluator: substitutes bindings and caches results per (root, expression, scope)
package typelib
