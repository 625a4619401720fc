// Package keycase rewrites the object keys of JSON-like values from one
// naming convention ("case format") to another, while checking that the
// source keys follow the convention they are expected to.
//
// It is meant to sit between a wire payload and its internal
// representation, so the producer and the consumer of a JSON API may use
// different conventions without noticing.
//
// The package is made of three pieces:
//   - A CaseRegistry mapping each CaseFormat to a rewrite function and a
//     conformance predicate. The builtins are LOWER_CASE, CAMEL_CASE,
//     SNAKE_CASE, PASCAL_CASE and KEBAB_CASE.
//   - A FormatChain of Formatters applied to leaf values. The builtins turn
//     null into nil, pass primitives through and render dates as ISO-8601.
//     Custom formatters are tried after them.
//   - The Mapper, which walks a tree depth first, rewrites keys, validates
//     them and collects every anomaly as a MapperError with a dotted path
//     such as "$.user.first_name".
//
// To use the package, you may use the exported functions:
//   - Map(): map any Go value built from maps, slices and scalars
//   - MapJSON(): decode a document (keeping key order) and map it
//   - New(): build a reusable Mapper once and call Map() on it per value
//
// Mapping never fails on bad input. Keys that do not match the source
// format are still renamed and reported as MALFORMATTED_KEY; values that
// cannot be classified become nil and are reported as UNPARSEABLE_VALUE.
// Only an invalid configuration makes New return an error.
//
// Objects in mapped output are *Object values, which keep insertion order
// and encode to JSON and YAML in that order.
//
// The TransformBody middleware applies the mapper to net/http traffic. It
// converts JSON request bodies from the client case format to the internal
// one and converts JSON responses back. The client format is chosen per
// request by a CaseFormatResolver.
package keycase
