package anvil

import "errors"

var (
	// ErrPaletteInvariant is returned when the largest index in a decoded
	// section is not the last palette slot (len(palette)-1), whether it
	// points past the palette or leaves trailing palette entries unused.
	ErrPaletteInvariant = errors.New("anvil: max block index does not match palette length")
	// ErrNoGraphicOrdering is returned when a palette names a block the
	// GraphicPropertyIndex has never seen. This signals a mismatch between
	// the world and the resource tree it was built from. FromFile handles it
	// like any other chunk decode error: the chunk is left absent and
	// neither the region nor the run is aborted.
	ErrNoGraphicOrdering = errors.New("anvil: no graphic property ordering for block")
)
