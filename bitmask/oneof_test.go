package bitmask

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var seedClassSeq = []int{
	0, 0, 0, 1, 1, 1, 0, 2, 2, 2, 1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 0, 0, 0, 0, 0, 0, 0, 2, 2, 2, 2,
}

func TestOneOfToIndexRoundtrip(t *testing.T) {
	rle := Drain(OneOfToIndex(FromSlice(seedClassSeq)))
	back := Drain(IndexToOneOf(FromSlice(rle)))
	require.Equal(t, seedClassSeq, back)
}

func TestEncodeDecodeOneOfRoundtrip(t *testing.T) {
	n := len(seedClassSeq)
	enc := EncodeOneOf(n, FromSlice(seedClassSeq), 3)
	require.Len(t, enc, 3)

	got := Drain(DecodeOneOf(n, enc, 3))
	require.Equal(t, seedClassSeq, got)
}

func TestSplitOneOfIndexesPartitionsRunStarts(t *testing.T) {
	rle := Drain(OneOfToIndex(FromSlice(seedClassSeq)))

	for k := 0; k < 3; k++ {
		starts := Drain(SplitOneOfIndexes(FromSlice(rle), k))
		for _, s := range starts {
			require.Equal(t, k, seedClassSeq[s])
			if s > 0 {
				require.NotEqual(t, k, seedClassSeq[s-1])
			}
		}
	}
}

func TestForwardBackwardMapOneOfAreInverses(t *testing.T) {
	rle := Drain(OneOfToIndex(FromSlice(seedClassSeq)))

	for k := 0; k < 3; k++ {
		backward := Drain(BackwardMapOneOf(FromSlice(rle), k))
		for _, pos := range backward {
			require.Equal(t, k, seedClassSeq[pos])
		}

		forward := Drain(ForwardMapOneOf(FromSlice(rle), k))
		require.Len(t, forward, len(seedClassSeq))
		rank := 0
		for i, v := range forward {
			if seedClassSeq[i] == k {
				require.Equal(t, rank, v)
				rank++
			} else {
				require.Equal(t, -1, v)
			}
		}
		require.Equal(t, rank, len(backward))
	}
}

func TestForwardBackwardSingleOneOfRoundtrip(t *testing.T) {
	rle := Drain(OneOfToIndex(FromSlice(seedClassSeq)))

	for i := range seedClassSeq {
		gotClass, gotRank := ForwardMapSingleOneOf(i, rle, 3)
		require.Equal(t, seedClassSeq[i], gotClass)

		back := BackwardMapSingleOneOf(gotRank, rle, gotClass)
		require.Equal(t, i, back)
	}
}

func TestMergeOneOfIndexesReconstructsRLE(t *testing.T) {
	n := len(seedClassSeq)
	rle := Drain(OneOfToIndex(FromSlice(seedClassSeq)))

	streams := make([]Puller, 3)
	for k := 0; k < 3; k++ {
		starts := Drain(SplitOneOfIndexes(FromSlice(rle), k))
		streams[k] = FromSlice(starts)
	}

	merged := Drain(MergeOneOfIndexes(n, streams))
	require.Equal(t, rle, merged)
}
