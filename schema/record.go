// Package schema implements BufferQL's schema compiler: it turns a textual
// type-expression grammar plus user type maps into a validated, canonical
// schema graph keyed by type label (spec §3, §4.4).
package schema

import "github.com/bufferql/bufferql/internal/tape"

// Kind discriminates the ten type-record tags of spec §3.
type Kind int

const (
	KindPrimitive Kind = iota
	KindArray
	KindMap
	KindOptional
	KindOneOf
	KindTuple
	KindNamedTuple
	KindRef
	KindLink
	KindAlias
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindOptional:
		return "Optional"
	case KindOneOf:
		return "OneOf"
	case KindTuple:
		return "Tuple"
	case KindNamedTuple:
		return "NamedTuple"
	case KindRef:
		return "Ref"
	case KindLink:
		return "Link"
	case KindAlias:
		return "Alias"
	default:
		return "Unknown"
	}
}

// Context carries the per-encode state a Primitive's EncodeFunc needs
// beyond the value itself: the currently selected offset width (n, spec
// §4.3 "Width selection") and the Data Tape shared by the whole encode,
// for variable-size primitives like String.
type Context struct {
	N    int
	Tape *tape.Tape

	// Key is the Data Tape dedup key for the element currently being
	// encoded. Only variable-size primitives (String) use it; the writer
	// assigns a key stable across the allocate and write passes so the
	// second Tape.Put is a dedup no-op and both passes agree on position.
	Key int64
}

// CheckFunc reports whether value is acceptable for a Primitive or a
// OneOf option.
type CheckFunc func(value interface{}) bool

// TransformFunc rewrites a source value before it is handed to a type's
// children during spawn (spec §4.3 Pass 1, "If a type has a declared
// transform, apply it to each source element").
type TransformFunc func(value interface{}) interface{}

// EncodeFunc writes a single Primitive value at offset in buf.
type EncodeFunc func(buf []byte, offset int, value interface{}, ctx *Context)

// Record is one entry of the compiled schema graph.
type Record struct {
	Name string
	Kind Kind

	// Primitive only. Size is the fixed byte width, or 0 for a
	// variable-size primitive (String) whose storage lives on the Data
	// Tape and whose column slot is an n-byte signed varint instead.
	Size   int
	Encode EncodeFunc
	Check  CheckFunc

	Transform TransformFunc

	Children []string

	// NamedTuple only.
	Keys    []string
	Indexes map[string]int

	// Ref set by markRefs on the record a Ref points at.
	Ref bool
}

// IsVariableSize reports whether a Primitive record stores its payload on
// the Data Tape rather than in a fixed-width column slot.
func (r *Record) IsVariableSize() bool {
	return r.Kind == KindPrimitive && r.Size == 0
}

// Schema is the compiled mapping from type label to Record.
type Schema map[string]*Record
