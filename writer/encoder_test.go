package writer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bufferql/bufferql/internal/bitio"
	"github.com/bufferql/bufferql/schema"
)

func mustSchema(t *testing.T, types map[string]schema.TypeDef) schema.Schema {
	t.Helper()
	s, err := schema.ExtendSchema(nil, types, nil, nil)
	require.NoError(t, err)
	return s
}

func TestEncodePrimitiveColumnAligned(t *testing.T) {
	s := mustSchema(t, map[string]schema.TypeDef{
		"Root": {Tuple: []string{"Uint8", "Int32"}},
	})
	enc := NewEncoder(s)

	buf, err := enc.Encode(SliceTuple{uint8(7), int32(-5)}, "Root")
	require.NoError(t, err)
	require.NotEmpty(t, buf)

	n := int(buf[0]>>4) & 0x0f
	require.GreaterOrEqual(t, n, 1)

	// Root's own Tuple cell stores each field's offset in declaration
	// order (Uint8 then Int32), but Pass 2 sorts groups ascending by
	// size, so the Int32 column is grown and positioned after Uint8's
	// and its start offset must be a multiple of 4 (Pass 4 alignment).
	int32Off, _ := bitio.Varint(buf, 1+n) // Root's own second field slot
	require.Zero(t, int(int32Off)%4)
}

func TestEncodeArraySingleAndMultipleInstances(t *testing.T) {
	s := mustSchema(t, map[string]schema.TypeDef{
		"Root": {Expr: "Array<Uint8>"},
	})
	enc := NewEncoder(s)

	buf, err := enc.Encode(SliceList{uint8(1), uint8(2), uint8(3)}, "Root")
	require.NoError(t, err)
	require.NotEmpty(t, buf)

	s2 := mustSchema(t, map[string]schema.TypeDef{
		"Root": {Tuple: []string{"Array<Uint8>", "Array<Uint8>"}},
	})
	enc2 := NewEncoder(s2)
	buf2, err := enc2.Encode(SliceTuple{
		SliceList{uint8(1), uint8(2)},
		SliceList{uint8(3)},
	}, "Root")
	require.NoError(t, err)
	require.NotEmpty(t, buf2)
}

func TestEncodeMapEntries(t *testing.T) {
	s := mustSchema(t, map[string]schema.TypeDef{
		"Root": {Expr: "Map<Int32>"},
	})
	enc := NewEncoder(s)

	m := NewOrderedMap().Set("a", int32(1)).Set("b", int32(2))
	buf, err := enc.Encode(m, "Root")
	require.NoError(t, err)
	require.NotEmpty(t, buf)
}

func TestEncodeOptionalPresentAndAbsent(t *testing.T) {
	s := mustSchema(t, map[string]schema.TypeDef{
		"Root": {Expr: "Array<Optional<Int32>>"},
	})
	enc := NewEncoder(s)

	buf, err := enc.Encode(SliceList{int32(9), nil, int32(11)}, "Root")
	require.NoError(t, err)
	require.NotEmpty(t, buf)
}

func TestEncodeOneOfMixedClasses(t *testing.T) {
	s := mustSchema(t, map[string]schema.TypeDef{
		"Root": {Expr: "Array<OneOf<Int32,String,Vector3>>"},
	})
	enc := NewEncoder(s)

	values := SliceList{
		int32(1), "two", []float64{1, 2, 3}, int32(4), "five",
	}
	buf, err := enc.Encode(values, "Root")
	require.NoError(t, err)
	require.NotEmpty(t, buf)
}

func TestEncodeOneOfNoMatchIsError(t *testing.T) {
	s := mustSchema(t, map[string]schema.TypeDef{
		"Root": {Expr: "Array<OneOf<Int32,String>>"},
	})
	enc := NewEncoder(s)

	_, err := enc.Encode(SliceList{3.14}, "Root")
	require.Error(t, err)
}

type entity struct {
	id int64
}

func (e entity) Identity() int64 { return e.id }

func (e entity) Field(key string) (interface{}, bool) {
	if key == "id" {
		return e.id, true
	}
	return nil, false
}

func TestEncodeRefResolvesToTarget(t *testing.T) {
	s := mustSchema(t, map[string]schema.TypeDef{
		"Entity":    {Fields: []schema.NamedField{{Key: "id", Expr: "Int32"}}},
		"Root":      {Tuple: []string{"Array<Entity>", "Ref<Entity>"}},
	})
	enc := NewEncoder(s)

	e := entity{id: 42}
	buf, err := enc.Encode(SliceTuple{
		SliceList{e},
		e,
	}, "Root")
	require.NoError(t, err)
	require.NotEmpty(t, buf)
}

func TestEncodeRefOutsideScopeIsError(t *testing.T) {
	s := mustSchema(t, map[string]schema.TypeDef{
		"Entity": {Fields: []schema.NamedField{{Key: "id", Expr: "Int32"}}},
		"Root":   {Tuple: []string{"Array<Entity>", "Ref<Entity>"}},
	})
	enc := NewEncoder(s)

	_, err := enc.Encode(SliceTuple{
		SliceList{entity{id: 1}},
		entity{id: 2},
	}, "Root")
	require.Error(t, err)
}

func TestEncodeLinkCellsAreSentinel(t *testing.T) {
	s := mustSchema(t, map[string]schema.TypeDef{
		"Root": {Expr: "Link<OtherSchema/OtherType>"},
	})
	enc := NewEncoder(s)

	buf, err := enc.Encode("unused", "Root")
	require.NoError(t, err)
	require.NotEmpty(t, buf)

	// Link cells are a fixed 8 bytes: two little-endian int32(-1)s.
	last := len(buf) - 8
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, buf[last:])
}

// The index-overflow error path itself (n cannot reach 4 bytes) is
// exercised directly against widthFor in allocate_test.go, since
// constructing a value large enough to overflow through a real Encode
// call would mean materializing a buffer over 128MB.
