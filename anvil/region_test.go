package anvil

import "testing"

func TestChunkIndex(t *testing.T) {
	tests := []struct {
		x, z int
		want int
	}{
		{0, 0, 0},
		{15, 15, 0},
		{16, 0, 1},
		{0, 16, 32},
		{511, 511, 1023},
	}
	for _, tt := range tests {
		if got := chunkIndex(tt.x, tt.z); got != tt.want {
			t.Errorf("chunkIndex(%d,%d) = %d, want %d", tt.x, tt.z, got, tt.want)
		}
	}
}

func TestRegionBlockNameDefaultsToAir(t *testing.T) {
	r := &Region{}
	if got := r.BlockName(10, 64, 10); got != "minecraft:air" {
		t.Errorf("BlockName on empty region = %q, want minecraft:air", got)
	}
	if got := r.Properties(10, 64, 10); got != "" {
		t.Errorf("Properties on empty region = %q, want \"\"", got)
	}
}

func TestChunkBlockAtMissingSection(t *testing.T) {
	c := &Chunk{}
	if got := c.blockAt(0, 64, 0).Name; got != "minecraft:air" {
		t.Errorf("blockAt with no sections = %q, want minecraft:air", got)
	}
}
