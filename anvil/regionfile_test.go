package anvil

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/Piripant/mine-viewer/nbt"
	"github.com/Piripant/mine-viewer/resources"
)

// writeTestRegion assembles a minimal, valid .mca file with a single chunk
// at local (0,0), compressed with the given compression type byte.
func writeTestRegion(t *testing.T, path string, compression byte, level nbt.Compound) {
	t.Helper()

	payload, err := nbt.Encode("", nbt.Compound{"Level": {ID: nbt.IDCompound, Compound: level}})
	if err != nil {
		t.Fatalf("encode chunk nbt: %v", err)
	}

	var compressed bytes.Buffer
	switch compression {
	case compressionZlib:
		zw := zlib.NewWriter(&compressed)
		if _, err := zw.Write(payload); err != nil {
			t.Fatalf("zlib write: %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("zlib close: %v", err)
		}
	default:
		t.Fatalf("unsupported test compression %d", compression)
	}

	body := compressed.Bytes()
	chunkHeader := make([]byte, 5)
	binary.BigEndian.PutUint32(chunkHeader[0:4], uint32(len(body)+1))
	chunkHeader[4] = compression

	chunkBytes := append(chunkHeader, body...)
	sectors := (len(chunkBytes) + sectorSize - 1) / sectorSize
	padded := make([]byte, sectors*sectorSize)
	copy(padded, chunkBytes)

	header := make([]byte, headerSize)
	// slot (0,0) -> location = (sector offset << 8) | sector count; the
	// chunk starts right after the 2-sector header.
	binary.BigEndian.PutUint32(header[0:4], (2<<8)|uint32(sectors))

	file := append(header, padded...)
	if err := os.WriteFile(path, file, 0o644); err != nil {
		t.Fatalf("write region file: %v", err)
	}
}

func TestFromFileDecodesSingleChunk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "r.0.0.mca")

	palette := nbt.List{ElemID: nbt.IDCompound, Values: []nbt.Tag{
		{ID: nbt.IDCompound, Compound: nbt.Compound{"Name": strTag("minecraft:stone")}},
	}}
	level := nbt.Compound{
		"Sections": {ID: nbt.IDList, ListVal: nbt.List{ElemID: nbt.IDCompound, Values: []nbt.Tag{
			{ID: nbt.IDCompound, Compound: nbt.Compound{
				"Y":       {ID: nbt.IDByte, Byte: 4},
				"Palette": {ID: nbt.IDList, ListVal: palette},
			}},
		}}},
	}
	writeTestRegion(t, path, compressionZlib, level)

	props := resources.GraphicPropertyIndex{"minecraft:stone": map[string]int{}}
	region, err := FromFile(path, props)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}

	if got := region.BlockName(0, 64, 0); got != "minecraft:stone" {
		t.Errorf("BlockName(0,64,0) = %q, want minecraft:stone", got)
	}
	// Any column outside the decoded chunk should fall back to air.
	if got := region.BlockName(100, 64, 100); got != "minecraft:air" {
		t.Errorf("BlockName(100,64,100) = %q, want minecraft:air", got)
	}
}

func TestFromFileMissingFileIsError(t *testing.T) {
	_, err := FromFile("/nonexistent/path/r.0.0.mca", resources.GraphicPropertyIndex{})
	if err == nil {
		t.Fatal("FromFile on missing path: want error, got nil")
	}
}
