// Package tape implements the Data Tape: an append-only side buffer for the
// variable-length blobs (encoded bitmasks, UTF-8 strings) that the writer
// pipeline stores off the fixed column region (spec §3, §4.1).
package tape

import "github.com/bufferql/bufferql/internal/bitio"

// Tape is an append-only byte buffer with caller-keyed deduplication. The
// source language's Put dedups on object identity; BufferQL instead takes
// an explicit int64 handle from the caller (spec §9 Design Notes on
// identity-keyed lookups), since Go values have no stable address to key
// on once they cross an interface boundary.
type Tape struct {
	buf         []byte
	positions   map[int64]int
	offsetDelta int
}

// New returns an empty Tape.
func New() *Tape {
	return &Tape{positions: make(map[int64]int)}
}

// Put appends length-prefixed bytes to the tape under key, unless key was
// already put, in which case it is a no-op. It returns the number of bytes
// actually added to the tape (0 on a dedup hit).
func (t *Tape) Put(key int64, data []byte) int {
	if _, ok := t.positions[key]; ok {
		return 0
	}
	start := len(t.buf)
	t.positions[key] = start

	var hdr [10]byte
	n := bitio.PutUvarint(hdr[:], 0, uint64(len(data)))
	t.buf = append(t.buf, hdr[:n]...)
	t.buf = append(t.buf, data...)

	return len(t.buf) - start
}

// Get returns the position of the blob stored under key, offset by the
// tape's current shift, or -1 if key was never put.
func (t *Tape) Get(key int64) int {
	pos, ok := t.positions[key]
	if !ok {
		return -1
	}
	return pos + t.offsetDelta
}

// Shift sets the offset added to every subsequent Get, once the tape's
// final position within the encoded buffer is known (spec §4.1, end of
// Pass 5: "Data Tape.shift(offset)").
func (t *Tape) Shift(to int) {
	t.offsetDelta = to
}

// Export returns the raw tape bytes.
func (t *Tape) Export() []byte {
	return t.buf
}

// Len reports the current tape size in bytes, before any Shift.
func (t *Tape) Len() int {
	return len(t.buf)
}
