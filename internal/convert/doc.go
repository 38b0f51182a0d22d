// Package convert derives a structured schema for an evaluated type and a
// converter between native Go values and that structured form.
//
// Structured values are plain Go data: scalars as themselves, enumeration
// constants as their names, arrays and collections as []any, and records as
// *CompositeValue. They marshal to JSON and YAML without further help.
//
// Key types:
//   - Schema: Scalar, Enum, Array, Collection or Composite node
//   - Converter: schema plus both conversion directions for one descriptor
//   - Builder: classifies descriptors and caches converters
//   - Discoverer: collaborator that reports the managed attributes of a record
package convert
