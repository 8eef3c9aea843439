// Package bitmask implements the hierarchical bitmask codec and its family
// of lazy forward/backward mapping operators (spec §4.2): a sparse index
// set S ⊆ [0,n) is encoded as a DFS over an implicit complete binary tree
// of depth ⌈log2(max(1,n))⌉, where each internal node costs a single bit
// whenever its entire subtree is empty. This is what makes the encoding
// compact for the sparse Optional/OneOf discriminators it backs.
package bitmask

import (
	"math/bits"

	"github.com/bufferql/bufferql/internal/bitio"
)

func depthFor(n int) int {
	m := n
	if m < 1 {
		m = 1
	}
	return bits.Len(uint(m - 1))
}

// Encode writes the hierarchical bitmask for the strictly increasing index
// stream next, over a domain of size n. next must be exhausted of values
// < n; values are not validated against strict ordering here (callers that
// need that guarantee should route through a checked source — see
// BitToIndex, which always produces one).
func Encode(n int, next Puller) []byte {
	w := bitio.NewWriter()
	stack := []int{depthFor(n)}
	currIndex := 0
	nextValue, hasNext := next()

	for len(stack) > 0 && currIndex < n {
		level := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		leafCount := 1 << uint(level)

		switch {
		case level == 0:
			if hasNext && nextValue == currIndex {
				w.WriteBit(1)
				nextValue, hasNext = next()
			} else {
				w.WriteBit(0)
			}
			currIndex++
		case hasNext && currIndex+leafCount > nextValue:
			w.WriteBit(1)
			stack = append(stack, level-1, level-1)
		default:
			w.WriteBit(0)
			currIndex += leafCount
		}
	}
	return w.Bytes()
}

// EncodeSlice is the common-case convenience wrapper around Encode for a
// materialized, strictly increasing index slice.
func EncodeSlice(n int, indexes []int) []byte {
	return Encode(n, FromSlice(indexes))
}

// Decode returns a Puller over the strictly increasing indexes encoded in
// encoded, for a domain of size n. It mirrors the DFS of Encode, driven by
// bits instead of by a target value: a 1 at an internal node pushes both
// children, a 0 skips the whole subtree, and a 1 at a leaf yields the
// current index.
func Decode(n int, encoded []byte) Puller {
	r := bitio.NewReader(encoded)
	stack := []int{depthFor(n)}
	currIndex := 0

	return func() (int, bool) {
		for len(stack) > 0 && currIndex < n {
			level := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			bit := r.ReadBit()
			if level == 0 {
				idx := currIndex
				currIndex++
				if bit == 1 {
					return idx, true
				}
				continue
			}

			if bit == 1 {
				stack = append(stack, level-1, level-1)
			} else {
				currIndex += 1 << uint(level)
			}
		}
		return 0, false
	}
}

// DecodeSlice drains Decode into a materialized slice. Useful for tests and
// for callers that want the whole set at once rather than a lazy stream.
func DecodeSlice(n int, encoded []byte) []int {
	return Drain(Decode(n, encoded))
}
