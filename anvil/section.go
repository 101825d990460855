package anvil

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Piripant/mine-viewer/nbt"
	"github.com/Piripant/mine-viewer/resources"
)

// PaletteEntry is one distinct block descriptor within a section's
// palette: a block name plus two normalized property strings used as
// cache keys by different layers of the pipeline.
type PaletteEntry struct {
	Name              string
	Properties        string
	GraphicProperties string
}

// Section is a 16x16x16 cube of block state: an ordered palette plus a
// dense 4096-entry index array addressed y*256 + z*16 + x.
type Section struct {
	Palette []PaletteEntry
	Indices [4096]int
}

// BlockAt returns the palette entry selected by the index at local (x,y,z),
// each in [0,16).
func (s *Section) BlockAt(x, y, z int) PaletteEntry {
	idx := s.Indices[y*256+z*16+x]
	return s.Palette[idx]
}

// decodeSection builds a Section from a chunk-section NBT compound (the
// body found in a chunk's "Sections" list), or reports that the section
// should be discarded: section Y == -1 marks an out-of-range placeholder
// section, and an empty palette after decoding means there is no block
// data to render.
//
// The returned sectionY is only meaningful when ok is true.
func decodeSection(body nbt.Compound, props resources.GraphicPropertyIndex) (sec *Section, sectionY int8, ok bool, err error) {
	sectionY = body.Byte("Y")
	if sectionY == -1 {
		return nil, 0, false, nil
	}

	paletteList := body.List("Palette")
	if len(paletteList.Values) == 0 {
		return nil, 0, false, nil
	}

	palette := make([]PaletteEntry, len(paletteList.Values))
	for i, v := range paletteList.Values {
		entry, err := decodePaletteEntry(v.Compound, props)
		if err != nil {
			return nil, 0, false, fmt.Errorf("palette entry %d: %w", i, err)
		}
		palette[i] = entry
	}

	sec = &Section{Palette: palette}

	if longs := body.LongArray("BlockStates"); len(longs) > 0 {
		indices := unpackIndices(longs)
		maxIdx := 0
		for i, idx := range indices {
			sec.Indices[i] = idx
			if idx > maxIdx {
				maxIdx = idx
			}
		}
		if maxIdx != len(palette)-1 {
			return nil, 0, false, fmt.Errorf("%w: max index %d, palette length %d", ErrPaletteInvariant, maxIdx, len(palette))
		}
	}
	// A palette of length 1 with no BlockStates array (every block in the
	// section is the sole palette entry) leaves Indices zeroed, which
	// already selects that single entry everywhere.

	return sec, sectionY, true, nil
}

// decodePaletteEntry normalizes one "Name"/"Properties" palette compound
// into a full property string and a canonical-order graphic-property
// string used as the appearance cache key.
func decodePaletteEntry(body nbt.Compound, props resources.GraphicPropertyIndex) (PaletteEntry, error) {
	name := body.String("Name")

	propsCompound := body.Compound("Properties")
	properties := joinProperties(propsCompound)

	keyOrder, ok := props.Lookup(name)
	if !ok {
		return PaletteEntry{}, fmt.Errorf("%w: %s", ErrNoGraphicOrdering, name)
	}

	graphicProperties := buildGraphicProperties(propsCompound, keyOrder)

	return PaletteEntry{
		Name:              name,
		Properties:        properties,
		GraphicProperties: graphicProperties,
	}, nil
}

// joinProperties renders every key=value pair of a Properties compound in
// an arbitrary but stable order (map iteration order in Go is randomized
// per-process, so sort for determinism across repeated runs of the same
// input; callers only need this string to be identical when the
// underlying property set is identical, which sorting guarantees).
func joinProperties(c nbt.Compound) string {
	if len(c) == 0 {
		return ""
	}
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + c[k].Str
	}
	return strings.Join(parts, ",")
}

// buildGraphicProperties places each Properties entry whose key is in
// keyOrder at its canonical slot, leaving the rest empty, then joins every
// slot (including untouched empty ones) with commas. Two palette entries
// with the same set of graphic-affecting properties always produce the
// same string regardless of raw property order or unrelated properties,
// which is what lets them share one appearance-cache entry.
func buildGraphicProperties(c nbt.Compound, keyOrder map[string]int) string {
	if len(keyOrder) == 0 {
		return ""
	}
	slots := make([]string, len(keyOrder))
	for key, tag := range c {
		idx, ok := keyOrder[key]
		if !ok {
			continue
		}
		slots[idx] = key + "=" + tag.Str
	}
	return strings.Join(slots, ",")
}
