package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadIgnoreBlocks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ignore_blocks.json")
	if err := os.WriteFile(path, []byte(`["minecraft:air", "minecraft:cave_air"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := LoadIgnoreBlocks(path)
	if err != nil {
		t.Fatalf("LoadIgnoreBlocks: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("len(set) = %d, want 2", len(set))
	}
	if _, ok := set["minecraft:air"]; !ok {
		t.Error("expected minecraft:air in ignore set")
	}
}

func TestLoadIgnoreBlocksMissingFile(t *testing.T) {
	if _, err := LoadIgnoreBlocks("/nonexistent/ignore_blocks.json"); err == nil {
		t.Fatal("expected error reading a missing ignore-blocks file")
	}
}

func TestLoadBiomeBlocks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "biome_blocks.json")
	if err := os.WriteFile(path, []byte(`{"minecraft:grass_block": [10, -5, 0]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tints, err := LoadBiomeBlocks(path)
	if err != nil {
		t.Fatalf("LoadBiomeBlocks: %v", err)
	}
	got, ok := tints["minecraft:grass_block"]
	if !ok {
		t.Fatal("expected minecraft:grass_block tint entry")
	}
	if got != [3]int16{10, -5, 0} {
		t.Errorf("tint = %v, want [10 -5 0]", got)
	}
}
