package writer

import (
	"sort"

	"github.com/dsnet/golib/errs"

	"github.com/bufferql/bufferql/internal/tape"
	"github.com/bufferql/bufferql/schema"
)

// headerSize is the single header byte at buffer offset 0 encoding the
// chosen (n, m) widths (spec §4.3, "byte 0: header = n<<4 | m").
const headerSize = 1

// Encoder turns values into BufferQL buffers for a single compiled
// schema. It holds no per-call state; every field an Encode call needs is
// built fresh in spawnCtx/Allocator, matching spec §5's "cleared at
// entry, owned by that call" concurrency model — a single Encoder is
// safe to share across goroutines.
type Encoder struct {
	schema schema.Schema
}

// NewEncoder returns an Encoder bound to s.
func NewEncoder(s schema.Schema) *Encoder {
	return &Encoder{schema: s}
}

// Encode runs the five-pass writer pipeline of spec §4.3 against value,
// treated as a single row of rootType, and returns the finished buffer.
// Grounded on original_source/python/buffer_ql/core/writer.py's
// module-level encode function, and on the teacher's
// xflate/meta.Writer.encodeBlock for the recover/assert error idiom.
func (e *Encoder) Encode(value interface{}, rootType string) (out []byte, err error) {
	defer errs.Recover(&err)

	ctx := &spawnCtx{schema: e.schema, refs: refTable{}}
	spawn(ctx, rootType, []interface{}{value})

	order := groupAndSort(ctx.nodes)

	// The header byte is reserved up front as the first byte of UnitSize,
	// so every writer's snapshotted offset (and the Pass 4 alignment
	// check, which is defined purely in terms of these counters) already
	// accounts for it rather than needing a separate offset shift.
	a := &Allocator{Tape: tape.New(), UnitSize: headerSize}
	for _, node := range order {
		w := node.(*Writer)
		w.alloc = a.snapshot()
		w.grow(a)
	}

	n, m, err := widthFor(order, a)
	if err != nil {
		errs.Panic(err)
	}

	offsets, sumPadding := computeLayout(order, n, m)
	for i, node := range order {
		node.(*Writer).offset = offsets[i]
	}

	fixedSize := a.IndexSize*n + a.LengthSize*m + a.UnitSize + sumPadding
	buf := make([]byte, fixedSize+a.Tape.Len())
	buf[0] = byte(n<<4 | m)

	wctx := &schema.Context{N: n, Tape: a.Tape}
	for _, node := range order {
		node.(*Writer).write(buf[:fixedSize], n, m, wctx, ctx.refs)
	}

	a.Tape.Shift(fixedSize)
	copy(buf[fixedSize:], a.Tape.Export())

	return buf, nil
}

// groupAndSort implements spec §4.3 Pass 2: writers are first grouped by
// type label, preserving each group's first-seen position, then the
// groups themselves (not the individual writers) are stably sorted by
// ascending size key. Grouping before sorting, rather than sorting the
// flat list directly, is what keeps every label's writers contiguous
// even when two different labels share a size key (e.g. two distinct
// 4-byte Primitives) — a flat sort could otherwise interleave them.
func groupAndSort(nodes []Node) []Node {
	groups := make(map[string][]Node, len(nodes))
	labelOrder := make([]string, 0, len(nodes))

	for _, n := range nodes {
		label := n.groupLabel()
		if _, ok := groups[label]; !ok {
			labelOrder = append(labelOrder, label)
		}
		groups[label] = append(groups[label], n)
	}

	sort.SliceStable(labelOrder, func(i, j int) bool {
		return sizeKeyOf(groups[labelOrder[i]][0]) < sizeKeyOf(groups[labelOrder[j]][0])
	})

	order := make([]Node, 0, len(nodes))
	for _, label := range labelOrder {
		order = append(order, groups[label]...)
	}
	return order
}

// sizeKeyOf is Pass 2's sort key: a fixed-size Primitive's byte width, or
// 0 for every other Kind (including variable-size Primitives), per spec
// §4.3's resolved grouping rule.
func sizeKeyOf(n Node) int {
	if size, ok := n.fixedPrimitiveSize(); ok {
		return size
	}
	return 0
}
