package bitmask

import "container/heap"

// This file implements the OneOf family of spec §4.2: a per-position class
// label sequence c over K classes is reduced to a canonical run-length
// stream [class_0, end_0, class_1, end_1, ..., class_last, n] (OneOfToIndex),
// partitioned per class into the positions where a run of that class starts
// (SplitOneOfIndexes) or, for routing actual values, the full expanded
// position lists per class (ForwardMapOneOf / BackwardMapOneOf). Each
// per-class run-start set is then an ordinary index set encodable with
// Encode. Grounded on
// original_source/python/buffer_ql/helpers/bitmask.py's one_of_to_index,
// split_one_of_indexes, merge_one_of_indexes, index_to_one_of,
// forward_map_one_of, backward_map_one_of, and their single-index variants.

// OneOfToIndex converts a per-position class label sequence into the
// canonical RLE stream.
func OneOfToIndex(classSeq Puller) Puller {
	index := 0
	curr := -1
	var pending []int
	finished := false

	return func() (int, bool) {
		for {
			if len(pending) > 0 {
				v := pending[0]
				pending = pending[1:]
				return v, true
			}
			if finished {
				return 0, false
			}
			k, ok := classSeq()
			if !ok {
				finished = true
				if index > 0 {
					pending = append(pending, index)
				}
				continue
			}
			if k != curr {
				if index > 0 {
					pending = append(pending, index)
				}
				pending = append(pending, k)
				curr = k
			}
			index++
		}
	}
}

// SplitOneOfIndexes returns the sorted set of positions where a run of
// class k begins, read off the RLE stream.
func SplitOneOfIndexes(rle Puller, k int) Puller {
	index := 0
	curr := -1

	return func() (int, bool) {
		for {
			i, ok := rle()
			if !ok {
				return 0, false
			}
			if curr < 0 {
				curr = i
				continue
			}
			start := index
			match := curr == k
			index = i
			curr = -1
			if match {
				return start, true
			}
		}
	}
}

// IndexToOneOf reconstructs the per-position class label sequence from the
// RLE stream — the inverse of OneOfToIndex.
func IndexToOneOf(rle Puller) Puller {
	index := 0
	curr := -1
	boundary := 0
	haveBoundary := false

	return func() (int, bool) {
		for {
			if haveBoundary && index < boundary {
				v := curr
				index++
				return v, true
			}
			if haveBoundary {
				haveBoundary = false
				curr = -1
			}
			i, ok := rle()
			if !ok {
				return 0, false
			}
			if curr < 0 {
				curr = i
				continue
			}
			boundary = i
			haveBoundary = true
		}
	}
}

// ForwardMapOneOf returns, for every position, its rank within class k's
// runs, or -1 if that position does not belong to class k.
func ForwardMapOneOf(rle Puller, k int) Puller {
	ones := 0
	index := 0
	boundary := 0
	curr := -1
	matching := false
	haveBoundary := false

	return func() (int, bool) {
		for {
			if haveBoundary && index < boundary {
				var v int
				if matching {
					v = ones
					ones++
				} else {
					v = -1
				}
				index++
				return v, true
			}
			i, ok := rle()
			if !ok {
				return 0, false
			}
			if curr < 0 {
				curr = i
				continue
			}
			boundary = i
			matching = curr == k
			haveBoundary = true
			curr = -1
		}
	}
}

// BackwardMapOneOf returns the positions belonging to class k, in order —
// the inverse of ForwardMapOneOf.
func BackwardMapOneOf(rle Puller, k int) Puller {
	index := 0
	boundary := 0
	curr := -1
	matching := false

	return func() (int, bool) {
		for {
			if matching && index < boundary {
				v := index
				index++
				return v, true
			}
			i, ok := rle()
			if !ok {
				return 0, false
			}
			if curr < 0 {
				curr = i
				continue
			}
			boundary = i
			matching = curr == k
			if !matching {
				index = i
			}
			curr = -1
		}
	}
}

// ForwardMapSingleOneOf is the single-index form of ForwardMapOneOf; it
// also returns the class that position belongs to.
func ForwardMapSingleOneOf(index int, rle []int, noOfClass int) (class int, rank int) {
	if index < 0 {
		return 0, -1
	}
	zeros := make([]int, noOfClass)
	ones := make([]int, noOfClass)
	curr := -1
	for _, i := range rle {
		if curr < 0 {
			curr = i
			continue
		}
		for k := 0; k < noOfClass; k++ {
			if curr == k {
				ones[k] = i - zeros[k]
			} else {
				zeros[k] = i - ones[k]
			}
		}
		if index < i {
			break
		}
		curr = -1
	}
	return curr, index - zeros[curr]
}

// BackwardMapSingleOneOf is the single-index form of BackwardMapOneOf.
func BackwardMapSingleOneOf(index int, rle []int, group int) int {
	zeros, ones := 0, 0
	curr := -1
	for _, i := range rle {
		if curr < 0 {
			curr = i
			continue
		}
		if curr == group {
			ones = i - zeros
			if index < ones {
				break
			}
		} else {
			zeros = i - ones
		}
		curr = -1
	}
	if curr == group {
		return index + zeros
	}
	return -1
}

type mergeItem struct {
	value int
	class int
}

type mergeHeap []mergeItem

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	return h[i].value < h[j].value || (h[i].value == h[j].value && h[i].class < h[j].class)
}
func (h mergeHeap) Swap(i, j int)           { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x interface{})     { *h = append(*h, x.(mergeItem)) }
func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// MergeOneOfIndexes merges K per-class run-start index streams back into
// the single RLE form, via a min-heap k-way merge.
func MergeOneOfIndexes(n int, streams []Puller) Puller {
	h := &mergeHeap{}
	heap.Init(h)
	for k, s := range streams {
		v, ok := s()
		if !ok {
			v = n
		}
		heap.Push(h, mergeItem{v, k})
	}

	first := heap.Pop(h).(mergeItem)
	curr := first.class
	v, ok := streams[curr]()
	if !ok {
		v = n
	}
	heap.Push(h, mergeItem{v, curr})

	var pending []int
	done := false

	return func() (int, bool) {
		for {
			if len(pending) > 0 {
				v := pending[0]
				pending = pending[1:]
				return v, true
			}
			if done {
				return 0, false
			}
			top := heap.Pop(h).(mergeItem)
			if top.value == n {
				pending = append(pending, curr, n)
				done = true
				continue
			}
			nv, ok := streams[top.class]()
			if !ok {
				nv = n
			}
			heap.Push(h, mergeItem{nv, top.class})
			pending = append(pending, curr, top.value)
			curr = top.class
		}
	}
}

// EncodeOneOf encodes a per-position class label sequence over noOfClass
// classes as K independent hierarchical bitmasks of run-start positions.
func EncodeOneOf(n int, classSeq Puller, noOfClass int) [][]byte {
	rle := Drain(OneOfToIndex(classSeq))
	out := make([][]byte, noOfClass)
	for k := 0; k < noOfClass; k++ {
		out[k] = EncodeSlice(n, Drain(SplitOneOfIndexes(FromSlice(rle), k)))
	}
	return out
}

// DecodeOneOf is the inverse of EncodeOneOf: it merges the K per-class
// bitmasks back into the RLE form and reconstructs the per-position class
// label sequence.
func DecodeOneOf(n int, encoded [][]byte, noOfClass int) Puller {
	streams := make([]Puller, noOfClass)
	for k := range encoded {
		streams[k] = Decode(n, encoded[k])
	}
	rle := MergeOneOfIndexes(n, streams)
	return IndexToOneOf(rle)
}
