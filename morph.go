// Package morph is a declarative object-modeling layer. Classes are
// declared as schemas of typed field descriptors, registered on named
// class graphs, and instantiated as dynamic objects that move data
// through three pipelines: transforming coerces and assigns incoming
// keyed payloads, validating checks values against type rules and
// modifier chains, and serializing renders JSON-ready trees that stay
// bounded over circular reference graphs.
//
// The graph package holds class registration and compiled
// definitions, the schema/field package holds the fluent field
// builders, and the schema/mixin package holds reusable field groups.
package morph
