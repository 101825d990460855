package anvil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

const (
	sectorSize    = 4096
	headerSize    = 2 * sectorSize
	locationSlots = 1024

	compressionGzip = 1
	compressionZlib = 2
)

// regionFile is a read-only view over an Anvil .mca file's sector layout.
// It is not safe for concurrent use by itself; callers read a region file
// from a single goroutine and only share the resulting Region.
type regionFile struct {
	f *os.File
}

// openRegionFile opens path and reads its location table.
func openRegionFile(path string) (*regionFile, [locationSlots]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, [locationSlots]uint32{}, fmt.Errorf("open region file: %w", err)
	}

	rf := &regionFile{f: f}
	locations, err := rf.readHeader()
	if err != nil {
		f.Close()
		return nil, [locationSlots]uint32{}, err
	}
	return rf, locations, nil
}

func (r *regionFile) Close() error {
	return r.f.Close()
}

// readHeader returns the 1024 location slots in reading order; slot i
// corresponds to the chunk at (i%32, i/32). Sector 1's timestamp table is
// not consumed: this renderer never needs to know when a chunk last changed.
func (r *regionFile) readHeader() ([locationSlots]uint32, error) {
	var locations [locationSlots]uint32

	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(io.NewSectionReader(r.f, 0, headerSize), buf); err != nil {
		return locations, fmt.Errorf("read region header: %w", err)
	}

	for i := 0; i < locationSlots; i++ {
		locations[i] = binary.BigEndian.Uint32(buf[i*4 : i*4+4])
	}
	return locations, nil
}

// readChunk decodes a location slot's (sector offset, sector count) pair
// and returns the decompressed NBT byte stream for that chunk.
func (r *regionFile) readChunk(location uint32) ([]byte, error) {
	offset := int64(location>>8) * sectorSize
	sectorCount := int(location & 0xFF)
	if offset < headerSize || sectorCount == 0 {
		return nil, fmt.Errorf("invalid chunk location")
	}

	header := make([]byte, 5)
	if _, err := io.ReadFull(io.NewSectionReader(r.f, offset, 5), header); err != nil {
		return nil, fmt.Errorf("read chunk header: %w", err)
	}

	length := binary.BigEndian.Uint32(header[0:4])
	compression := header[4]
	if length == 0 || int64(length) > int64(sectorCount)*sectorSize {
		return nil, fmt.Errorf("chunk length %d inconsistent with %d sectors", length, sectorCount)
	}

	compressed := make([]byte, length-1)
	if _, err := io.ReadFull(io.NewSectionReader(r.f, offset+5, int64(length-1)), compressed); err != nil {
		return nil, fmt.Errorf("read chunk payload: %w", err)
	}

	return decompress(compression, compressed)
}

func decompress(compression byte, data []byte) ([]byte, error) {
	switch compression {
	case compressionGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case compressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open zlib stream: %w", err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return nil, fmt.Errorf("unsupported compression type %d", compression)
	}
}
