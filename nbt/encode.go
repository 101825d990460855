package nbt

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode serializes a named root compound as a big-endian NBT tree, the
// mirror image of Decode. It exists primarily to build fixtures for the
// test suite; the rendering pipeline only ever decodes.
func Encode(name string, body Compound) ([]byte, error) {
	e := &encoder{}
	e.writeByte(byte(IDCompound))
	e.writeName(name)
	if err := e.writeCompoundBody(body); err != nil {
		return nil, fmt.Errorf("nbt: encode root compound: %w", err)
	}
	return e.buf, nil
}

type encoder struct {
	buf []byte
}

func (e *encoder) writeByte(b byte) { e.buf = append(e.buf, b) }

func (e *encoder) writeU16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *encoder) writeI32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	e.buf = append(e.buf, b[:]...)
}

func (e *encoder) writeI64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	e.buf = append(e.buf, b[:]...)
}

func (e *encoder) writeName(name string) {
	e.writeU16(uint16(len(name)))
	e.buf = append(e.buf, name...)
}

func (e *encoder) writeCompoundBody(c Compound) error {
	for name, tag := range c {
		e.writeByte(byte(tag.ID))
		e.writeName(name)
		if err := e.writeTagBody(tag); err != nil {
			return fmt.Errorf("tag %q: %w", name, err)
		}
	}
	e.writeByte(byte(IDEnd))
	return nil
}

func (e *encoder) writeTagBody(t Tag) error {
	switch t.ID {
	case IDByte:
		e.writeByte(byte(t.Byte))
	case IDShort:
		e.writeU16(uint16(t.Short))
	case IDInt:
		e.writeI32(t.Int)
	case IDLong:
		e.writeI64(t.Long)
	case IDFloat:
		e.writeI32(int32(math.Float32bits(t.Float)))
	case IDDouble:
		e.writeI64(int64(math.Float64bits(t.Double)))
	case IDByteArray:
		e.writeI32(int32(len(t.Bytes)))
		e.buf = append(e.buf, t.Bytes...)
	case IDString:
		e.writeU16(uint16(len(t.Str)))
		e.buf = append(e.buf, t.Str...)
	case IDList:
		e.writeByte(byte(t.ListVal.ElemID))
		e.writeI32(int32(len(t.ListVal.Values)))
		for i, v := range t.ListVal.Values {
			if err := e.writeTagBody(v); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
	case IDCompound:
		return e.writeCompoundBody(t.Compound)
	case IDIntArray:
		e.writeI32(int32(len(t.Ints)))
		for _, v := range t.Ints {
			e.writeI32(v)
		}
	case IDLongArray:
		e.writeI32(int32(len(t.Longs)))
		for _, v := range t.Longs {
			e.writeI64(v)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownTag, t.ID)
	}
	return nil
}
