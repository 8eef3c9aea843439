package schema

import (
	"encoding/binary"
	"math"

	"github.com/bufferql/bufferql/internal/bitio"
)

// The base primitive and compound tables below are grounded 1:1 on
// original_source/python/buffer_ql/schema/base.py's
// SCHEMA_BASE_PRIMITIVE_TYPES and SCHEMA_BASE_COMPOUND_TYPES. String is
// reclassified as variable-size (Size 0) here: the Python original gives
// it a hardcoded 4-byte slot because its writer always uses fixed int32
// offsets; this port generalizes that into the n/m variable-width scheme
// of spec §4.3, so String's column slot width depends on the chosen n.

func asInt64(value interface{}) int64 {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	}
	panic(Error("value is not an integer"))
}

func asFloat64(value interface{}) float64 {
	switch v := value.(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	panic(Error("value is not a float"))
}

func asFloatSlice(value interface{}) []float64 {
	switch v := value.(type) {
	case []float64:
		return v
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out
	case []interface{}:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = asFloat64(f)
		}
		return out
	}
	panic(Error("value is not a list of floats"))
}

func encodeUint8(buf []byte, offset int, value interface{}, _ *Context) {
	buf[offset] = byte(asInt64(value))
}

func encodeInt8(buf []byte, offset int, value interface{}, _ *Context) {
	buf[offset] = byte(int8(asInt64(value)))
}

func encodeUint16(buf []byte, offset int, value interface{}, _ *Context) {
	binary.LittleEndian.PutUint16(buf[offset:], uint16(asInt64(value)))
}

func encodeInt16(buf []byte, offset int, value interface{}, _ *Context) {
	binary.LittleEndian.PutUint16(buf[offset:], uint16(int16(asInt64(value))))
}

func encodeUint32(buf []byte, offset int, value interface{}, _ *Context) {
	binary.LittleEndian.PutUint32(buf[offset:], uint32(asInt64(value)))
}

func encodeInt32(buf []byte, offset int, value interface{}, _ *Context) {
	binary.LittleEndian.PutUint32(buf[offset:], uint32(int32(asInt64(value))))
}

func encodeFloat32(buf []byte, offset int, value interface{}, _ *Context) {
	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(float32(asFloat64(value))))
}

func encodeFloat64(buf []byte, offset int, value interface{}, _ *Context) {
	binary.LittleEndian.PutUint64(buf[offset:], math.Float64bits(asFloat64(value)))
}

func encodeString(buf []byte, offset int, value interface{}, ctx *Context) {
	s, ok := value.(string)
	if !ok {
		panic(Error("value is not a string"))
	}
	ctx.Tape.Put(ctx.Key, []byte(s))
	pos := ctx.Tape.Get(ctx.Key)
	bitio.PutVarintFixed(buf, offset, int64(pos), ctx.N)
}

func encodeVec(size int) EncodeFunc {
	return func(buf []byte, offset int, value interface{}, ctx *Context) {
		vals := asFloatSlice(value)
		for i := 0; i < size; i++ {
			encodeFloat32(buf, offset+4*i, vals[i], ctx)
		}
	}
}

func isInt(value interface{}) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func isFloat(value interface{}) bool {
	switch value.(type) {
	case float32, float64:
		return true
	}
	return false
}

func isString(value interface{}) bool {
	_, ok := value.(string)
	return ok
}

func isListOfFloats(multiplesOf int) CheckFunc {
	return func(value interface{}) bool {
		switch v := value.(type) {
		case []float64:
			return len(v)%multiplesOf == 0
		case []float32:
			return len(v)%multiplesOf == 0
		case []interface{}:
			if len(v)%multiplesOf != 0 {
				return false
			}
			for _, e := range v {
				if !isFloat(e) {
					return false
				}
			}
			return true
		}
		return false
	}
}

// Unflattened is an Array-of-flattened-vector view over a flat float
// slice, grounded on base.py's Unflattened helper (used as the transform
// for Vector2Array/Vector3Array/... so each array element is itself a
// fixed-size vector).
type Unflattened struct {
	Data []float64
	Size int
}

func (u Unflattened) At(index int) []float64 {
	return u.Data[index*u.Size : (index+1)*u.Size]
}

func (u Unflattened) Len() int {
	return len(u.Data) / u.Size
}

func unflatten(size int) TransformFunc {
	return func(value interface{}) interface{} {
		return Unflattened{Data: asFloatSlice(value), Size: size}
	}
}

func basePrimitiveRecords() []*Record {
	return []*Record{
		{Name: "Uint8", Kind: KindPrimitive, Size: 1, Encode: encodeUint8, Check: isInt},
		{Name: "Int8", Kind: KindPrimitive, Size: 1, Encode: encodeInt8, Check: isInt},
		{Name: "Uint16", Kind: KindPrimitive, Size: 2, Encode: encodeUint16, Check: isInt},
		{Name: "Int16", Kind: KindPrimitive, Size: 2, Encode: encodeInt16, Check: isInt},
		{Name: "Uint32", Kind: KindPrimitive, Size: 4, Encode: encodeUint32, Check: isInt},
		{Name: "Int32", Kind: KindPrimitive, Size: 4, Encode: encodeInt32, Check: isInt},
		{Name: "Float32", Kind: KindPrimitive, Size: 4, Encode: encodeFloat32, Check: isFloat},
		{Name: "Float64", Kind: KindPrimitive, Size: 8, Encode: encodeFloat64, Check: isFloat},
		{Name: "String", Kind: KindPrimitive, Size: 0, Encode: encodeString, Check: isString},
		{Name: "Vector2", Kind: KindPrimitive, Size: 8, Encode: encodeVec(2), Check: isListOfFloats(2)},
		{Name: "Vector3", Kind: KindPrimitive, Size: 12, Encode: encodeVec(3), Check: isListOfFloats(3)},
		{Name: "Vector4", Kind: KindPrimitive, Size: 16, Encode: encodeVec(4), Check: isListOfFloats(4)},
		{Name: "Matrix3", Kind: KindPrimitive, Size: 36, Encode: encodeVec(9), Check: isListOfFloats(9)},
		{Name: "Matrix4", Kind: KindPrimitive, Size: 64, Encode: encodeVec(16), Check: isListOfFloats(16)},
	}
}

func baseCompoundRecords() []*Record {
	return []*Record{
		{Name: "Vector2Array", Kind: KindArray, Children: []string{"Vector2"}, Transform: unflatten(2), Check: isListOfFloats(2)},
		{Name: "Vector3Array", Kind: KindArray, Children: []string{"Vector3"}, Transform: unflatten(3), Check: isListOfFloats(3)},
		{Name: "Vector4Array", Kind: KindArray, Children: []string{"Vector4"}, Transform: unflatten(4), Check: isListOfFloats(4)},
		{Name: "Matrix3Array", Kind: KindArray, Children: []string{"Matrix3"}, Transform: unflatten(9), Check: isListOfFloats(9)},
		{Name: "Matrix4Array", Kind: KindArray, Children: []string{"Matrix4"}, Transform: unflatten(16), Check: isListOfFloats(16)},
	}
}
