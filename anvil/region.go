package anvil

import (
	"fmt"

	"github.com/Piripant/mine-viewer/nbt"
	"github.com/Piripant/mine-viewer/resources"
)

const (
	// RegionChunks is the number of chunks along one side of a region (32x32).
	RegionChunks = 32
	// RegionBlocks is the number of blocks along one side of a region.
	RegionBlocks = RegionChunks * 16
	// WorldHeight is the number of blocks along the vertical axis.
	WorldHeight = 256
)

// Region is a 32x32 grid of optional chunks, addressed by block-local
// coordinates through BlockName/Properties/GraphicProperties.
type Region struct {
	Chunks [RegionChunks * RegionChunks]*Chunk
}

func chunkIndex(x, z int) int {
	return (z/16)*RegionChunks + (x / 16)
}

// BlockName returns the namespaced block name at block-local (x,y,z),
// x,z in [0,512) and y in [0,256); "minecraft:air" if no chunk/section is
// present there.
func (r *Region) BlockName(x, y, z int) string {
	return r.blockAt(x, y, z).Name
}

// Properties returns the full property string at block-local (x,y,z), or
// "" if no chunk/section is present there.
func (r *Region) Properties(x, y, z int) string {
	return r.blockAt(x, y, z).Properties
}

// GraphicProperties returns the canonical-order graphic-property string at
// block-local (x,y,z), or "" if no chunk/section is present there.
func (r *Region) GraphicProperties(x, y, z int) string {
	return r.blockAt(x, y, z).GraphicProperties
}

func (r *Region) blockAt(x, y, z int) PaletteEntry {
	chunk := r.Chunks[chunkIndex(x, z)]
	if chunk == nil {
		return airEntry
	}
	return chunk.blockAt(x%16, y, z%16)
}

// FromFile reads and decodes every present chunk in the region file at
// path, assembling a Region in slot order. A per-chunk decode failure
// leaves that chunk's slot nil rather than failing the whole region; an
// I/O failure opening or reading the file itself is returned.
func FromFile(path string, props resources.GraphicPropertyIndex) (*Region, error) {
	rf, locations, err := openRegionFile(path)
	if err != nil {
		return nil, err
	}
	defer rf.Close()

	region := &Region{}
	for i, loc := range locations {
		if loc == 0 {
			continue
		}

		data, err := rf.readChunk(loc)
		if err != nil {
			continue // a bad chunk leaves its slot absent, not the whole region
		}

		chunk, err := decodeChunkBytes(data, props)
		if err != nil {
			continue // a bad chunk leaves its slot absent, not the whole region
		}

		region.Chunks[i] = chunk
	}

	return region, nil
}

// decodeChunkBytes parses the NBT payload for one chunk and descends into
// its "Level" compound, the layout Anvil chunk payloads use.
func decodeChunkBytes(data []byte, props resources.GraphicPropertyIndex) (*Chunk, error) {
	root, err := nbt.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode nbt: %w", err)
	}

	level := root.Compound("Level")
	if level == nil {
		return nil, fmt.Errorf("chunk missing Level compound")
	}

	return decodeChunk(level, props)
}
