package writer

import (
	"encoding/binary"

	"github.com/dsnet/golib/errs"

	"github.com/bufferql/bufferql/internal/bitio"
	"github.com/bufferql/bufferql/schema"
	"github.com/bufferql/bufferql/bitmask"
)

// Node is what Pass 2 through Pass 5 need from a writer without caring
// which Kind it wraps: a label to group by, the fixed size that makes it
// a candidate for alignment (spec §4.3 Pass 4, "Primitive writers align to
// their own size"), and the allocator snapshot taken when it was grown.
// *Writer is the only implementation; the interface exists so
// allocate.go's Pass 3/4 helpers don't need to import schema.Kind.
type Node interface {
	groupLabel() string
	fixedPrimitiveSize() (int, bool)
	snapshot() allocSnapshot
}

// Writer is one node of the writer tree, spawned for a single type label
// against a column of source values (spec §4.3 Pass 1). Unlike the Python
// original, a Writer never represents more than one spawn site: when a
// composite type occurs multiple times at one spawn site (e.g. an Array
// nested inside another Array), each occurrence gets its own Writer
// spawned independently and registered separately in the encode order, so
// no separate grouping wrapper is needed — contiguity within a type label
// is what Pass 2's group-then-sort already guarantees.
type Writer struct {
	label  string
	rec    *schema.Record
	source []interface{}

	alloc  allocSnapshot
	offset int

	// Tuple, NamedTuple: one column writer per child, each holding every
	// row's value for that field.
	fields []*Writer

	// Array: one sub-writer per instance (each element of source is
	// itself a list; rows[i] holds that list's own elements).
	rows []*Writer

	// Map: parallel per-instance key/value sub-writers.
	keyRows []*Writer
	valRows []*Writer

	// Primitive (variable-size, i.e. String): one Data Tape key per
	// element.
	tapeKeys []int64

	// Optional: the flattened child writer over only the present
	// elements, plus the encoded presence bitmask and its Data Tape key.
	child      *Writer
	bitmask    []byte
	bitmaskKey int64
}

func (w *Writer) groupLabel() string { return w.label }

func (w *Writer) snapshot() allocSnapshot { return w.alloc }

func (w *Writer) fixedPrimitiveSize() (int, bool) {
	if w.rec.Kind == schema.KindPrimitive && !w.rec.IsVariableSize() {
		return w.rec.Size, true
	}
	return 0, false
}

// spawnCtx is the state threaded through one Encode call's spawn pass:
// the compiled schema, the flat list of every writer created (in
// first-seen order, becoming Pass 2's input), the reference table, and
// the Data Tape handle counter.
type spawnCtx struct {
	schema schema.Schema
	nodes  []Node
	refs   refTable
	handle int64
}

func (c *spawnCtx) nextHandle() int64 {
	c.handle++
	return c.handle
}

// spawn implements spec §4.3 Pass 1: given a type label and its source
// column, build the writer for it and recursively spawn whatever
// children that Kind requires, grounded 1:1 on
// original_source/python/buffer_ql/core/writer.py's Writer.spawn.
func spawn(ctx *spawnCtx, label string, source []interface{}) *Writer {
	rec, ok := ctx.schema[label]
	errs.Assert(ok, Error("unknown type "+label))

	if rec.Transform != nil {
		transformed := make([]interface{}, len(source))
		for i, v := range source {
			transformed[i] = rec.Transform(v)
		}
		source = transformed
	}

	w := &Writer{label: label, rec: rec, source: source, offset: -1}
	ctx.nodes = append(ctx.nodes, w)

	if rec.Ref {
		ctx.refs.register(w)
	}

	// A writer with no rows needs no children and claims no space; its
	// own allocate/write passes are no-ops (spec §4.3, "empty source").
	if len(source) == 0 {
		return w
	}

	switch rec.Kind {
	case schema.KindPrimitive:
		if rec.IsVariableSize() {
			w.tapeKeys = make([]int64, len(source))
			for i := range source {
				w.tapeKeys[i] = ctx.nextHandle()
			}
		}

	case schema.KindTuple:
		w.fields = make([]*Writer, len(rec.Children))
		for j, childLabel := range rec.Children {
			col := make([]interface{}, len(source))
			for i, v := range source {
				col[i] = asTuple(v).Field(j)
			}
			w.fields[j] = spawn(ctx, childLabel, col)
		}

	case schema.KindNamedTuple:
		w.fields = make([]*Writer, len(rec.Children))
		for j, childLabel := range rec.Children {
			key := rec.Keys[j]
			col := make([]interface{}, len(source))
			for i, v := range source {
				fv, _ := asFields(v).Field(key)
				col[i] = fv
			}
			w.fields[j] = spawn(ctx, childLabel, col)
		}

	case schema.KindArray:
		elemLabel := rec.Children[0]
		w.rows = make([]*Writer, len(source))
		for i, v := range source {
			lst := asList(v)
			elems := make([]interface{}, lst.Len())
			for k := 0; k < lst.Len(); k++ {
				elems[k] = lst.At(k)
			}
			w.rows[i] = spawn(ctx, elemLabel, elems)
		}

	case schema.KindMap:
		valLabel := rec.Children[0]
		w.keyRows = make([]*Writer, len(source))
		w.valRows = make([]*Writer, len(source))
		for i, v := range source {
			mp := asMap(v)
			keys := mp.Keys()
			keyVals := make([]interface{}, len(keys))
			valVals := make([]interface{}, len(keys))
			for k, key := range keys {
				keyVals[k] = key
				valVals[k] = mp.Get(key)
			}
			w.keyRows[i] = spawn(ctx, "String", keyVals)
			w.valRows[i] = spawn(ctx, valLabel, valVals)
		}

	case schema.KindOptional:
		childLabel := rec.Children[0]
		bits := make([]int, len(source))
		for i, v := range source {
			if v != nil {
				bits[i] = 1
			}
		}
		// bit_to_index turns the 0/1 presence sequence into its toggle
		// points, which is what the hierarchical bitmask is encoded
		// over; the actual present positions for the child's source are
		// a separate derivation, backward_map_indexes over that same
		// toggle-point stream (spec §4.3 Pass 1, "Optional").
		toggles := bitmask.Drain(bitmask.BitToIndex(bitmask.FromSlice(bits)))
		w.bitmask = bitmask.EncodeSlice(len(source), toggles)
		w.bitmaskKey = ctx.nextHandle()

		positions := bitmask.Drain(bitmask.BackwardMapIndexes(len(source), bitmask.FromSlice(toggles), 1))
		present := make([]interface{}, len(positions))
		for i, pos := range positions {
			present[i] = source[pos]
		}
		w.child = spawn(ctx, childLabel, present)

	case schema.KindOneOf:
		n := len(source)
		k := len(rec.Children)
		classes := make([]int, n)
		for i, v := range source {
			cls := classify(ctx.schema, rec.Children, v)
			errs.Assert(cls >= 0, Error("value does not match any OneOf option for "+label))
			classes[i] = cls
		}

		blobs := bitmask.EncodeOneOf(n, bitmask.FromSlice(classes), k)
		w.bitmask = combineBitmasks(blobs)
		w.bitmaskKey = ctx.nextHandle()

		rle := bitmask.Drain(bitmask.OneOfToIndex(bitmask.FromSlice(classes)))
		w.fields = make([]*Writer, k)
		for ci, childLabel := range rec.Children {
			positions := bitmask.Drain(bitmask.BackwardMapOneOf(bitmask.FromSlice(rle), ci))
			part := make([]interface{}, len(positions))
			for pi, pos := range positions {
				part[pi] = source[pos]
			}
			w.fields[ci] = spawn(ctx, childLabel, part)
		}

	case schema.KindRef, schema.KindLink:
		// Ref stores pointers resolved from the reference table at write
		// time; Link cells are a fixed sentinel. Neither spawns children.
	}

	return w
}

// classify returns the index of the first OneOf option whose Check
// accepts v, or -1 if none does.
func classify(s schema.Schema, options []string, v interface{}) int {
	for i, opt := range options {
		if s[opt].Check != nil && s[opt].Check(v) {
			return i
		}
	}
	return -1
}

// combineBitmasks packs K independently-encoded hierarchical bitmasks
// into a single Data Tape blob (length-prefixed, one after another), so a
// OneOf writer spends exactly one Data Tape slot — spec §4.3's "index_size
// += K+1" for OneOf counts one tape-offset slot plus K child-offset
// slots, not 2K+1.
func combineBitmasks(blobs [][]byte) []byte {
	var buf []byte
	var hdr [10]byte
	for _, b := range blobs {
		n := bitio.PutUvarint(hdr[:], 0, uint64(len(b)))
		buf = append(buf, hdr[:n]...)
		buf = append(buf, b...)
	}
	return buf
}

// grow implements spec §4.3 Pass 3 for a single writer: given the
// allocator's running state (already snapshotted into w.alloc by the
// caller), add this writer's own contribution. A writer with no source
// rows contributes nothing, mirroring Writer.is_null()'s early return in
// the original.
func (w *Writer) grow(a *Allocator) {
	if len(w.source) == 0 {
		return
	}
	count := len(w.source)
	a.observeCount(count)

	switch w.rec.Kind {
	case schema.KindPrimitive:
		if w.rec.IsVariableSize() {
			for i, v := range w.source {
				s, ok := v.(string)
				errs.Assert(ok, Error("String value must be a string"))
				a.Tape.Put(w.tapeKeys[i], []byte(s))
			}
			a.IndexSize += count
		} else {
			a.UnitSize += w.rec.Size * count
		}

	case schema.KindTuple, schema.KindNamedTuple:
		a.IndexSize += len(w.rec.Children)

	case schema.KindArray:
		a.IndexSize += count
		a.LengthSize += count

	case schema.KindMap:
		a.IndexSize += 2 * count
		a.LengthSize += count

	case schema.KindRef:
		// Both cells a Ref element writes (target writer offset, element
		// index within it) are n-byte signed varints, so this writer's
		// own footprint is 2*count index slots and no length slots, to
		// match the write pass's actual (n, n) cell layout.
		a.IndexSize += 2 * count

	case schema.KindLink:
		a.UnitSize += 8 * count

	case schema.KindOptional:
		a.Tape.Put(w.bitmaskKey, w.bitmask)
		a.IndexSize += 2

	case schema.KindOneOf:
		a.Tape.Put(w.bitmaskKey, w.bitmask)
		a.IndexSize += len(w.rec.Children) + 1
	}
}

// write implements spec §4.3 Pass 5 for a single writer, emitting its own
// cells into buf at the offset Pass 4 assigned. n and m are the widths
// chosen for the whole encode; refs resolves Ref targets.
func (w *Writer) write(buf []byte, n, m int, ctx *schema.Context, refs refTable) {
	if len(w.source) == 0 {
		return
	}

	switch w.rec.Kind {
	case schema.KindPrimitive:
		if w.rec.IsVariableSize() {
			for i, v := range w.source {
				ctx.Key = w.tapeKeys[i]
				w.rec.Encode(buf, w.offset+i*n, v, ctx)
			}
		} else {
			for i, v := range w.source {
				w.rec.Encode(buf, w.offset+i*w.rec.Size, v, ctx)
			}
		}

	case schema.KindTuple, schema.KindNamedTuple:
		for j, field := range w.fields {
			bitio.PutVarintFixed(buf, w.offset+j*n, int64(field.offset), n)
		}

	case schema.KindArray:
		stride := n + m
		for i, child := range w.rows {
			cell := w.offset + i*stride
			bitio.PutVarintFixed(buf, cell, int64(child.offset), n)
			bitio.PutUvarintFixed(buf, cell+n, uint64(len(child.source)), m)
		}

	case schema.KindMap:
		stride := 2*n + m
		for i := range w.keyRows {
			key, val := w.keyRows[i], w.valRows[i]
			cell := w.offset + i*stride
			bitio.PutVarintFixed(buf, cell, int64(key.offset), n)
			bitio.PutVarintFixed(buf, cell+n, int64(val.offset), n)
			bitio.PutUvarintFixed(buf, cell+2*n, uint64(len(val.source)), m)
		}

	case schema.KindOptional:
		pos := ctx.Tape.Get(w.bitmaskKey)
		bitio.PutVarintFixed(buf, w.offset, int64(pos), n)
		bitio.PutVarintFixed(buf, w.offset+n, int64(w.child.offset), n)

	case schema.KindOneOf:
		pos := ctx.Tape.Get(w.bitmaskKey)
		bitio.PutVarintFixed(buf, w.offset, int64(pos), n)
		for i, field := range w.fields {
			bitio.PutVarintFixed(buf, w.offset+n*(i+1), int64(field.offset), n)
		}

	case schema.KindRef:
		for i, v := range w.source {
			target, ok := refs.resolve(v)
			errs.Assert(ok, Error("reference object outside of scope"))
			cell := w.offset + i*2*n
			bitio.PutVarintFixed(buf, cell, int64(target.writer.offset), n)
			bitio.PutVarintFixed(buf, cell+n, int64(target.index), n)
		}

	case schema.KindLink:
		for i := range w.source {
			cell := w.offset + i*8
			binary.LittleEndian.PutUint32(buf[cell:], uint32(int32(-1)))
			binary.LittleEndian.PutUint32(buf[cell+4:], uint32(int32(-1)))
		}
	}
}
