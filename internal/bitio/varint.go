package bitio

// Unsigned LEB128: 7 payload bits per byte, continuation bit in the high
// bit, matching spec §4.1. Signed values are zig-zag wrapped before being
// LEB128-encoded.

// PutUvarint writes v as unsigned LEB128 into buf starting at offset and
// returns the number of bytes written.
func PutUvarint(buf []byte, offset int, v uint64) int {
	n := 0
	for v > 0x7f {
		buf[offset+n] = byte(v&0x7f) | 0x80
		v >>= 7
		n++
	}
	buf[offset+n] = byte(v)
	n++
	return n
}

// Uvarint reads an unsigned LEB128 value from buf starting at offset and
// returns the value and the number of bytes consumed.
func Uvarint(buf []byte, offset int) (uint64, int) {
	var v uint64
	var shift uint
	n := 0
	for {
		b := buf[offset+n]
		n++
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return v, n
}

// Zigzag maps a signed value onto the unsigned range so that small
// magnitudes (positive or negative) stay small: (v<<1) ^ (v>>63).
func Zigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// Unzigzag is the inverse of Zigzag.
func Unzigzag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// PutVarint writes v as a zig-zag-wrapped LEB128 value into buf starting at
// offset and returns the number of bytes written.
func PutVarint(buf []byte, offset int, v int64) int {
	return PutUvarint(buf, offset, Zigzag(v))
}

// Varint reads a zig-zag-wrapped LEB128 value from buf starting at offset.
func Varint(buf []byte, offset int) (int64, int) {
	u, n := Uvarint(buf, offset)
	return Unzigzag(u), n
}

// SizeUvarint returns the number of bytes PutUvarint would write for v,
// without emitting anything — used by the writer's width-selection pass
// (spec §4.3) to size column slots before any buffer exists.
func SizeUvarint(v uint64) int {
	n := 1
	for v > 0x7f {
		v >>= 7
		n++
	}
	return n
}

// SizeVarint is the signed counterpart of SizeUvarint.
func SizeVarint(v int64) int {
	return SizeUvarint(Zigzag(v))
}

// PutUvarintFixed writes v into exactly n pre-reserved bytes of buf
// starting at offset, following the LEB128 continuation-bit rule for every
// byte but the last. The caller guarantees v fits in n bytes; excess
// capacity is simply spent on continuation bytes that carry zero payload
// beyond what v needs (spec §4.1: "the caller guarantees the value fits").
func PutUvarintFixed(buf []byte, offset int, v uint64, n int) {
	for i := 0; i < n-1; i++ {
		buf[offset+i] = byte(v&0x7f) | 0x80
		v >>= 7
	}
	buf[offset+n-1] = byte(v & 0x7f)
}

// PutVarintFixed is the signed, fixed-width counterpart of PutUvarintFixed.
func PutVarintFixed(buf []byte, offset int, v int64, n int) {
	PutUvarintFixed(buf, offset, Zigzag(v), n)
}
