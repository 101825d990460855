// Package resources resolves block names into rendered appearance: the
// graphic-property canonicalization table and the appearance cache that
// turns (name, graphic-properties) into a loaded texture.
package resources

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GraphicPropertyIndex maps a namespaced block name to the canonical
// position of each property key that affects its visible top appearance,
// derived once from the blockstate tree.
type GraphicPropertyIndex map[string]map[string]int

// BuildGraphicPropertyIndex scans every blockstate JSON file in dir and
// derives the canonical key ordering for each block from its variants map.
func BuildGraphicPropertyIndex(dir string) (GraphicPropertyIndex, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read blockstates dir: %w", err)
	}

	index := make(GraphicPropertyIndex, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if stem == entry.Name() {
			continue // no recognizable extension
		}
		name := "minecraft:" + stem

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read blockstate %s: %w", entry.Name(), err)
		}

		var doc struct {
			Variants map[string]json.RawMessage `json:"variants"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse blockstate %s: %w", entry.Name(), err)
		}

		used := make(map[string]int)
		for variant := range doc.Variants {
			for i, propValue := range strings.Split(variant, ",") {
				key := propValue
				if eq := strings.IndexByte(propValue, '='); eq >= 0 {
					key = propValue[:eq]
				}
				if key != "" {
					used[key] = i
				}
			}
		}
		index[name] = used
	}

	return index, nil
}

// Lookup returns the canonical key ordering for name, and whether the
// block is known to the index at all.
func (g GraphicPropertyIndex) Lookup(name string) (map[string]int, bool) {
	keys, ok := g[name]
	return keys, ok
}
