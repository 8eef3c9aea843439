package bitio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUvarintRoundtrip(t *testing.T) {
	vals := []uint64{0, 1, 127, 128, 129, 16383, 16384, 1 << 32, ^uint64(0)}
	for _, v := range vals {
		buf := make([]byte, 10)
		n := PutUvarint(buf, 0, v)
		require.Equal(t, SizeUvarint(v), n)

		got, m := Uvarint(buf, 0)
		require.Equal(t, n, m)
		require.Equal(t, v, got)
	}
}

func TestVarintRoundtrip(t *testing.T) {
	vals := []int64{0, 1, -1, 63, -64, 1000000, -1000000}
	for _, v := range vals {
		buf := make([]byte, 10)
		n := PutVarint(buf, 0, v)
		require.Equal(t, SizeVarint(v), n)

		got, m := Varint(buf, 0)
		require.Equal(t, n, m)
		require.Equal(t, v, got)
	}
}

func TestPutUvarintFixedWritesExactlyN(t *testing.T) {
	buf := make([]byte, 4)
	PutUvarintFixed(buf, 0, 5, 4)

	got, n := Uvarint(buf, 0)
	require.Equal(t, 4, n)
	require.Equal(t, uint64(5), got)
}

func TestPutVarintFixedNegative(t *testing.T) {
	buf := make([]byte, 3)
	PutVarintFixed(buf, 0, -12, 3)

	got, n := Varint(buf, 0)
	require.Equal(t, 3, n)
	require.Equal(t, int64(-12), got)
}
