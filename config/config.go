// Package config loads the renderer's externally supplied inputs: the
// ignore-blocks list and the biome-blocks tint table.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Piripant/mine-viewer/render"
)

// LoadIgnoreBlocks reads a JSON array of namespaced block names from path
// and returns it as the set the renderer's column traversal consults.
func LoadIgnoreBlocks(path string) (render.IgnoreSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ignore blocks: %w", err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parse ignore blocks: %w", err)
	}

	set := make(render.IgnoreSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set, nil
}

// Tints maps a namespaced block name to the signed RGB offset applied to
// its loaded texture, added to each pixel's R,G,B channels with saturating
// clamp to [0,255]; alpha is left untouched.
type Tints map[string][3]int16

// LoadBiomeBlocks reads a JSON object mapping namespaced block name to a
// [r,g,b] signed tint triple from path.
func LoadBiomeBlocks(path string) (Tints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read biome blocks: %w", err)
	}

	var tints Tints
	if err := json.Unmarshal(data, &tints); err != nil {
		return nil, fmt.Errorf("parse biome blocks: %w", err)
	}
	return tints, nil
}
