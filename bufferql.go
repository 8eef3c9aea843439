// Package bufferql is the public facade over BufferQL's schema compiler
// and writer pipeline (spec §6 "Public operations"): compile a schema
// once with ExtendSchema, then encode values against it with an Encoder.
//
// The hierarchical bitmask codec is exported as its own standalone
// package, github.com/bufferql/bufferql/bitmask, for callers that want
// the sparse index-set codec independent of a schema-driven encode.
package bufferql

import (
	"github.com/bufferql/bufferql/schema"
	"github.com/bufferql/bufferql/writer"
)

// Schema is a compiled type graph, ready to drive an Encoder.
type Schema = schema.Schema

// TypeDef, NamedField and BasePrimitiveDef describe the inputs to
// ExtendSchema: a type's expression/Tuple/Fields shape, one NamedTuple
// field, and a caller-supplied base Primitive, respectively.
type TypeDef = schema.TypeDef
type NamedField = schema.NamedField
type BasePrimitiveDef = schema.BasePrimitiveDef

// CheckFunc, TransformFunc and EncodeFunc are the function shapes a
// caller plugs into ExtendSchema to extend the base primitive/compound
// tables.
type CheckFunc = schema.CheckFunc
type TransformFunc = schema.TransformFunc
type EncodeFunc = schema.EncodeFunc

// ExtendSchema compiles basePrimitives, types, transforms and checks into
// a validated Schema, following the type-expression grammar of spec §4.4.
func ExtendSchema(basePrimitives map[string]BasePrimitiveDef, types map[string]TypeDef, transforms map[string]TransformFunc, checks map[string]CheckFunc) (Schema, error) {
	return schema.ExtendSchema(basePrimitives, types, transforms, checks)
}

// Encoder runs the five-pass writer pipeline of spec §4.3 against a
// compiled Schema.
type Encoder = writer.Encoder

// NewEncoder returns an Encoder bound to s.
func NewEncoder(s Schema) *Encoder {
	return writer.NewEncoder(s)
}

// Tuple, Fields, List and Map are the structural interfaces source values
// implement so the writer tree can walk them without reflection (spec
// §4.3 Pass 1); SliceTuple, MapFields, SliceList and OrderedMap are their
// ready-made concrete forms. Identified marks a value as a valid Ref
// target.
type Tuple = writer.Tuple
type SliceTuple = writer.SliceTuple
type Fields = writer.Fields
type MapFields = writer.MapFields
type List = writer.List
type SliceList = writer.SliceList
type Map = writer.Map
type OrderedMap = writer.OrderedMap
type Identified = writer.Identified

// NewOrderedMap returns an empty OrderedMap ready for Set calls.
func NewOrderedMap() *OrderedMap {
	return writer.NewOrderedMap()
}
