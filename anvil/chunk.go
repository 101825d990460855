package anvil

import (
	"fmt"

	"github.com/Piripant/mine-viewer/nbt"
	"github.com/Piripant/mine-viewer/resources"
)

// Chunk is a 16x16 block column, 16 sections tall. A nil entry at index i
// means that vertical section is absent: it was never populated, or was
// discarded while decoding (an out-of-range Y, or an empty palette).
type Chunk struct {
	Sections [16]*Section
}

// decodeChunk builds a Chunk from the chunk-root compound's "Level" body
// (the outer NBT wrapper and its DataVersion are not needed by the core).
func decodeChunk(level nbt.Compound, props resources.GraphicPropertyIndex) (*Chunk, error) {
	c := &Chunk{}

	sectionsList := level.List("Sections")
	for i, v := range sectionsList.Values {
		sec, y, ok, err := decodeSection(v.Compound, props)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		if !ok {
			continue
		}
		if y < 0 || y >= 16 {
			continue
		}
		c.Sections[y] = sec
	}

	return c, nil
}

// blockAt returns the palette entry at chunk-local (x,y,z), x,z in [0,16)
// and y in [0,256), or the sentinel "minecraft:air" entry if the owning
// section is absent.
func (c *Chunk) blockAt(x, y, z int) PaletteEntry {
	sec := c.Sections[y/16]
	if sec == nil {
		return airEntry
	}
	return sec.BlockAt(x, y%16, z)
}

var airEntry = PaletteEntry{Name: "minecraft:air"}
