package bitmask

// The operators in this file are the lazy forward/backward mapping family
// of spec §4.2: given a decoded bitmask (a Puller of strictly increasing
// indexes marking where the "selected" side of the mask toggles), they
// derive characteristic vectors, dense ranks, and their inverses without
// ever materializing the full domain [0,n). Each is grounded 1:1 on
// original_source/python/buffer_ql/helpers/bitmask.py's same-named
// generator.

// IndexToBit expands a decoded bitmask into its n-bit characteristic
// vector.
func IndexToBit(n int, decoded Puller) Puller {
	index := 0
	curr := 0
	nextIdx, hasNext := decoded()

	return func() (int, bool) {
		for {
			if hasNext {
				if index < nextIdx {
					v := curr
					index++
					return v, true
				}
				curr = 1 - curr
				nextIdx, hasNext = decoded()
				continue
			}
			if index < n {
				v := curr
				index++
				return v, true
			}
			return 0, false
		}
	}
}

// BitToIndex collapses a 0/1 characteristic sequence back into the sorted
// set of positions where it toggles — the inverse of IndexToBit and the
// operation the writer uses to turn an Optional's present/absent
// discriminator into a bitmask input (spec §4.3 Pass 1, "Optional").
func BitToIndex(bits Puller) Puller {
	index := 0
	curr := 0
	return func() (int, bool) {
		for {
			b, ok := bits()
			if !ok {
				return 0, false
			}
			i := index
			index++
			if b != curr {
				curr = b
				return i, true
			}
		}
	}
}

// ForwardMapIndexes returns, for every position in [0,n), its rank among
// the selected positions (equals side), or -1 if it is not selected.
func ForwardMapIndexes(n int, decoded Puller, equals int) Puller {
	ones := 0
	index := 0
	curr := 1 - equals
	nextIdx, hasNext := decoded()

	emit := func() int {
		var v int
		if curr == 1 {
			v = ones
			ones++
		} else {
			v = -1
		}
		index++
		return v
	}

	return func() (int, bool) {
		for {
			if hasNext {
				if index < nextIdx {
					return emit(), true
				}
				curr = 1 - curr
				nextIdx, hasNext = decoded()
				continue
			}
			if index < n {
				return emit(), true
			}
			return 0, false
		}
	}
}

// BackwardMapIndexes returns the selected positions in order — the inverse
// of ForwardMapIndexes.
func BackwardMapIndexes(n int, decoded Puller, equals int) Puller {
	index := 0
	curr := 1 - equals
	nextIdx, hasNext := decoded()

	return func() (int, bool) {
		for {
			if hasNext {
				if curr == 1 {
					if index < nextIdx {
						v := index
						index++
						return v, true
					}
				} else {
					index = nextIdx
				}
				curr = 1 - curr
				nextIdx, hasNext = decoded()
				continue
			}
			if curr == 1 && index < n {
				v := index
				index++
				return v, true
			}
			return 0, false
		}
	}
}

// ForwardMapSingleIndex is the single-element form of ForwardMapIndexes.
func ForwardMapSingleIndex(index int, decoded Puller, equals int) int {
	if index < 0 {
		return -1
	}
	zeros, ones := 0, 0
	curr := 1 - equals
	for {
		i, ok := decoded()
		if !ok {
			break
		}
		if curr == 1 {
			ones = i - zeros
		} else {
			zeros = i - ones
		}
		if index < i {
			break
		}
		curr = 1 - curr
	}
	if curr == 1 {
		return index - zeros
	}
	return -1
}

// BackwardMapSingleIndex is the single-element form of BackwardMapIndexes.
func BackwardMapSingleIndex(index int, decoded Puller, equals int) int {
	zeros, ones := 0, 0
	curr := 1 - equals
	for {
		i, ok := decoded()
		if !ok {
			break
		}
		if curr == 1 {
			ones = i - zeros
			if index < ones {
				break
			}
		} else {
			zeros = i - ones
		}
		curr = 1 - curr
	}
	if curr == 1 {
		return index + zeros
	}
	return -1
}

// ChainForwardIndexes composes two forward maps: for each element of a,
// emit -1 if it is -1, else the next value pulled from b.
func ChainForwardIndexes(a, b Puller) Puller {
	return func() (int, bool) {
		i, ok := a()
		if !ok {
			return 0, false
		}
		if i < 0 {
			return -1, true
		}
		v, ok2 := b()
		if !ok2 {
			return -1, true
		}
		return v, true
	}
}

// ChainBackwardIndexes composes two backward maps: for each i pulled from
// b, advance a until it reaches position i, then yield a's current value.
func ChainBackwardIndexes(a, b Puller) Puller {
	index := 0
	nextValue, hasValue := a()

	return func() (int, bool) {
		i, ok := b()
		if !ok {
			return 0, false
		}
		for index < i {
			nextValue, hasValue = a()
			index++
		}
		if !hasValue {
			return 0, false
		}
		return nextValue, true
	}
}

// DiffIndexes returns the symmetric difference of two sorted, strictly
// increasing index streams, itself sorted.
func DiffIndexes(p, q Puller) Puller {
	pv, pOk := p()
	qv, qOk := q()

	return func() (int, bool) {
		for {
			switch {
			case !pOk && !qOk:
				return 0, false
			case !pOk:
				v := qv
				qv, qOk = q()
				return v, true
			case !qOk:
				v := pv
				pv, pOk = p()
				return v, true
			case pv < qv:
				v := pv
				pv, pOk = p()
				return v, true
			case qv < pv:
				v := qv
				qv, qOk = q()
				return v, true
			default:
				pv, pOk = p()
				qv, qOk = q()
			}
		}
	}
}
