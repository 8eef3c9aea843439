package writer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bufferql/bufferql/internal/tape"
)

// fakeNode is a minimal Node for exercising Pass 3/4's allocate.go logic
// directly, without routing a real value through the spawn/schema
// machinery — the same role xflate/meta's computeHuffLen tests play for
// its own capacity-search loop.
type fakeNode struct {
	label   string
	size    int
	hasSize bool
	snap    allocSnapshot
}

func (f *fakeNode) groupLabel() string          { return f.label }
func (f *fakeNode) fixedPrimitiveSize() (int, bool) { return f.size, f.hasSize }
func (f *fakeNode) snapshot() allocSnapshot     { return f.snap }

func TestWidthForPicksMinimalN(t *testing.T) {
	a := &Allocator{IndexSize: 3, MaxLength: 2, Tape: tape.New()}
	order := []Node{&fakeNode{label: "A"}}

	n, m, err := widthFor(order, a)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 1, m)
}

func TestWidthForOverflowIsError(t *testing.T) {
	a := &Allocator{UnitSize: 1 << 27, MaxLength: 1, Tape: tape.New()}
	order := []Node{&fakeNode{label: "A"}}

	_, _, err := widthFor(order, a)
	require.Error(t, err)
}

func TestComputeLayoutAlignsFixedPrimitiveGroup(t *testing.T) {
	a := &fakeNode{label: "pad", size: 0, hasSize: false, snap: allocSnapshot{unitSize: 3}}
	b := &fakeNode{label: "Int32", size: 4, hasSize: true, snap: allocSnapshot{unitSize: 3}}
	order := []Node{a, b}

	offsets, padding := computeLayout(order, 1, 1)
	require.Equal(t, 3, offsets[0])
	require.Zero(t, offsets[1]%4)
	require.Equal(t, 1, padding) // 3 -> 4 needs one byte of padding
}

func TestGroupAndSortKeepsLabelsContiguous(t *testing.T) {
	a1 := &fakeNode{label: "Int32", size: 4, hasSize: true}
	b := &fakeNode{label: "Float32", size: 4, hasSize: true}
	a2 := &fakeNode{label: "Int32", size: 4, hasSize: true}
	c := &fakeNode{label: "String"}

	order := groupAndSort([]Node{a1, b, a2, c})

	require.Len(t, order, 4)
	// String (size key 0) sorts before the two same-size-key groups, and
	// each of Int32/Float32's writers stay adjacent to each other.
	require.Equal(t, "String", order[0].groupLabel())
	labels := []string{order[1].groupLabel(), order[2].groupLabel(), order[3].groupLabel()}
	require.True(t, labels[0] == labels[1] || labels[1] == labels[2])
}
