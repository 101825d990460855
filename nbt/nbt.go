// Package nbt decodes the Named Binary Tag format used to encode Minecraft
// chunk payloads: a big-endian, self-describing tree of typed tags.
package nbt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// TagID identifies the runtime type of a Tag.
type TagID byte

const (
	IDEnd TagID = iota
	IDByte
	IDShort
	IDInt
	IDLong
	IDFloat
	IDDouble
	IDByteArray
	IDString
	IDList
	IDCompound
	IDIntArray
	IDLongArray
)

var (
	// ErrUnknownTag is returned when the stream names a tag id outside 0..12.
	ErrUnknownTag = errors.New("nbt: unknown tag id")
	// ErrTruncated is returned when the stream ends before a tag body is fully read.
	ErrTruncated = errors.New("nbt: truncated stream")
)

// Compound is a named-tag mapping; iteration order is not meaningful.
type Compound map[string]Tag

// List is a homogeneous, unnamed sequence of tag bodies sharing ElemID.
type List struct {
	ElemID TagID
	Values []Tag
}

// Tag is the sum of the twelve NBT value kinds. Exactly one field is valid,
// selected by ID.
type Tag struct {
	ID       TagID
	Byte     int8
	Short    int16
	Int      int32
	Long     int64
	Float    float32
	Double   float64
	Bytes    []byte
	Str      string
	ListVal  List
	Compound Compound
	Ints     []int32
	Longs    []int64
}

// Decode parses a contiguous NBT byte buffer and returns the root compound.
// The root is always an unnamed (or single-named) compound tag; the returned
// value is that compound's body.
func Decode(data []byte) (Compound, error) {
	d := &decoder{r: newCursor(data)}

	id, err := d.readTagID()
	if err != nil {
		return nil, fmt.Errorf("nbt: read root tag id: %w", err)
	}
	if id != IDCompound {
		return nil, fmt.Errorf("nbt: root tag is not a compound (id=%d)", id)
	}
	if _, err := d.readName(); err != nil {
		return nil, fmt.Errorf("nbt: read root tag name: %w", err)
	}
	comp, err := d.readCompoundBody()
	if err != nil {
		return nil, fmt.Errorf("nbt: read root compound: %w", err)
	}
	return comp, nil
}

// cursor is a minimal bounds-checked byte-slice reader with typed,
// fixed-width reads for each NBT primitive.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor { return &cursor{buf: buf} }

func (c *cursor) readN(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, ErrTruncated
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) readByte() (byte, error) {
	b, err := c.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) readU16() (uint16, error) {
	b, err := c.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *cursor) readI32() (int32, error) {
	b, err := c.readN(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (c *cursor) readI64() (int64, error) {
	b, err := c.readN(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

type decoder struct {
	r *cursor
}

func (d *decoder) readTagID() (TagID, error) {
	b, err := d.r.readByte()
	if err != nil {
		return 0, err
	}
	return TagID(b), nil
}

func (d *decoder) readName() (string, error) {
	n, err := d.r.readU16()
	if err != nil {
		return "", err
	}
	b, err := d.r.readN(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readCompoundBody reads named tags until the IDEnd sentinel.
func (d *decoder) readCompoundBody() (Compound, error) {
	out := make(Compound)
	for {
		id, err := d.readTagID()
		if err != nil {
			return nil, fmt.Errorf("tag id: %w", err)
		}
		if id == IDEnd {
			return out, nil
		}
		name, err := d.readName()
		if err != nil {
			return nil, fmt.Errorf("tag name: %w", err)
		}
		tag, err := d.readBody(id)
		if err != nil {
			return nil, fmt.Errorf("tag %q body: %w", name, err)
		}
		out[name] = tag
	}
}

// readBody reads the body for a tag of the given id (the id and name, if
// any, have already been consumed by the caller).
func (d *decoder) readBody(id TagID) (Tag, error) {
	switch id {
	case IDByte:
		b, err := d.r.readByte()
		return Tag{ID: id, Byte: int8(b)}, err
	case IDShort:
		v, err := d.r.readN(2)
		if err != nil {
			return Tag{}, err
		}
		return Tag{ID: id, Short: int16(binary.BigEndian.Uint16(v))}, nil
	case IDInt:
		v, err := d.r.readI32()
		return Tag{ID: id, Int: v}, err
	case IDLong:
		v, err := d.r.readI64()
		return Tag{ID: id, Long: v}, err
	case IDFloat:
		v, err := d.r.readI32()
		if err != nil {
			return Tag{}, err
		}
		return Tag{ID: id, Float: math.Float32frombits(uint32(v))}, nil
	case IDDouble:
		v, err := d.r.readI64()
		if err != nil {
			return Tag{}, err
		}
		return Tag{ID: id, Double: math.Float64frombits(uint64(v))}, nil
	case IDByteArray:
		n, err := d.r.readI32()
		if err != nil {
			return Tag{}, err
		}
		b, err := d.r.readN(int(n))
		if err != nil {
			return Tag{}, err
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		return Tag{ID: id, Bytes: cp}, nil
	case IDString:
		n, err := d.r.readU16()
		if err != nil {
			return Tag{}, err
		}
		b, err := d.r.readN(int(n))
		if err != nil {
			return Tag{}, err
		}
		return Tag{ID: id, Str: string(b)}, nil
	case IDList:
		return d.readList()
	case IDCompound:
		comp, err := d.readCompoundBody()
		if err != nil {
			return Tag{}, err
		}
		return Tag{ID: id, Compound: comp}, nil
	case IDIntArray:
		n, err := d.r.readI32()
		if err != nil {
			return Tag{}, err
		}
		ints := make([]int32, n)
		for i := range ints {
			v, err := d.r.readI32()
			if err != nil {
				return Tag{}, fmt.Errorf("element %d: %w", i, err)
			}
			ints[i] = v
		}
		return Tag{ID: id, Ints: ints}, nil
	case IDLongArray:
		n, err := d.r.readI32()
		if err != nil {
			return Tag{}, err
		}
		longs := make([]int64, n)
		for i := range longs {
			v, err := d.r.readI64()
			if err != nil {
				return Tag{}, fmt.Errorf("element %d: %w", i, err)
			}
			longs[i] = v
		}
		return Tag{ID: id, Longs: longs}, nil
	default:
		return Tag{}, fmt.Errorf("%w: %d", ErrUnknownTag, id)
	}
}

func (d *decoder) readList() (Tag, error) {
	elemID, err := d.readTagID()
	if err != nil {
		return Tag{}, fmt.Errorf("element id: %w", err)
	}
	n, err := d.r.readI32()
	if err != nil {
		return Tag{}, fmt.Errorf("length: %w", err)
	}
	values := make([]Tag, n)
	for i := range values {
		v, err := d.readBody(elemID)
		if err != nil {
			return Tag{}, fmt.Errorf("element %d: %w", i, err)
		}
		values[i] = v
	}
	return Tag{ID: IDList, ListVal: List{ElemID: elemID, Values: values}}, nil
}
