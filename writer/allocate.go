package writer

import (
	"github.com/bufferql/bufferql/internal/bitio"
	"github.com/bufferql/bufferql/internal/tape"
)

// Allocator holds the running counters of spec §4.3 Pass 3: the number of
// n-byte offset slots (IndexSize), m-byte length slots (LengthSize), fixed
// bytes outside those slots (UnitSize), and the largest element count seen
// across any writer (MaxLength, used to size m).
type Allocator struct {
	IndexSize  int
	LengthSize int
	UnitSize   int
	MaxLength  int
	Tape       *tape.Tape
}

// snapshot captures the allocator's counters at the moment a writer is
// allocated, per spec §4.3 Pass 3 ("snapshot the current allocator into
// the writer's allocated").
type allocSnapshot struct {
	indexSize, lengthSize, unitSize int
}

func (a *Allocator) snapshot() allocSnapshot {
	return allocSnapshot{a.IndexSize, a.LengthSize, a.UnitSize}
}

func (a *Allocator) observeCount(n int) {
	if n > a.MaxLength {
		a.MaxLength = n
	}
}

// offsetFor computes the byte offset a snapshot resolves to once n, m and
// the running padding total are known (spec §4.3 Pass 4).
func (s allocSnapshot) offsetFor(n, m, sumPadding int) int {
	return s.indexSize*n + s.lengthSize*m + s.unitSize + sumPadding
}

// computeLayout runs spec §4.3 Pass 4 for a candidate (n, m): walk the
// group-ordered writer list, align each group whose type is a fixed-size
// Primitive, and return every writer's final offset plus the total
// padding spent. It is pure — callable repeatedly by widthFor's trial
// loop, and once more for the winning n to actually place writers.
func computeLayout(order []Node, n, m int) (offsets []int, sumPadding int) {
	offsets = make([]int, len(order))

	i := 0
	for i < len(order) {
		label := order[i].groupLabel()
		j := i
		for j < len(order) && order[j].groupLabel() == label {
			j++
		}

		if size, ok := order[i].fixedPrimitiveSize(); ok && size > 0 {
			start := order[i].snapshot().offsetFor(n, m, sumPadding)
			if rem := start % size; rem != 0 {
				sumPadding += size - rem
			}
		}
		for k := i; k < j; k++ {
			offsets[k] = order[k].snapshot().offsetFor(n, m, sumPadding)
		}
		i = j
	}
	return offsets, sumPadding
}

// widthFor implements spec §4.3's "Width selection": m is fixed from the
// largest element count seen by any writer; n is the smallest of {1,2,3,4}
// whose signed-varint size can hold the encoded buffer's total size
// (fixed region, including Pass 4 alignment padding, plus the Data Tape).
// Grounded structurally on xflate/meta.Writer.computeHuffLen: try
// increasing capacities, return the first that fits, signal failure if
// none do.
func widthFor(order []Node, a *Allocator) (n, m int, err error) {
	m = bitio.SizeUvarint(uint64(a.MaxLength))
	if m == 0 {
		m = 1
	}

	tapeSize := a.Tape.Len()
	for n = 1; n <= 4; n++ {
		_, sumPadding := computeLayout(order, n, m)
		total := a.IndexSize*n + a.LengthSize*m + a.UnitSize + sumPadding + tapeSize
		if bitio.SizeVarint(int64(total)) <= n {
			return n, m, nil
		}
	}
	return 0, 0, Error("index overflow, split data into smaller chunks")
}
