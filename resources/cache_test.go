package resources

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func writeJSON(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func writeSolidPNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func newTestCache(t *testing.T, tints map[string][3]int16) (*AppearanceCache, string) {
	t.Helper()
	root := t.TempDir()
	blockstates := filepath.Join(root, "blockstates")
	models := filepath.Join(root, "models")
	textures := filepath.Join(root, "textures")
	for _, dir := range []string{blockstates, models, textures} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	writeJSON(t, filepath.Join(blockstates, "stone.json"), `{
		"variants": {"": {"model": "block/stone"}}
	}`)
	if err := os.MkdirAll(filepath.Join(models, "block"), 0o755); err != nil {
		t.Fatalf("mkdir models/block: %v", err)
	}
	writeJSON(t, filepath.Join(models, "block", "stone.json"), `{
		"textures": {"all": "block/stone"}
	}`)
	if err := os.MkdirAll(filepath.Join(textures, "block"), 0o755); err != nil {
		t.Fatalf("mkdir textures/block: %v", err)
	}
	writeSolidPNG(t, filepath.Join(textures, "block", "stone.png"), color.RGBA{R: 120, G: 120, B: 120, A: 255})

	return NewAppearanceCache(blockstates, models, textures, tints), root
}

func TestLoadResolvesAndMemoizes(t *testing.T) {
	cache, _ := newTestCache(t, nil)

	h1 := cache.Load("minecraft:stone", "")
	if h1 == NoHandle {
		t.Fatal("expected minecraft:stone to resolve")
	}
	tex := cache.Get(h1)
	if tex.Image.Bounds().Dx() != 16 || tex.Image.Bounds().Dy() != 16 {
		t.Errorf("texture size = %v, want 16x16", tex.Image.Bounds())
	}
	if tex.Transparent {
		t.Error("opaque texture reported as transparent")
	}

	h2 := cache.Load("minecraft:stone", "")
	if h2 != h1 {
		t.Errorf("second Load returned a different handle: %d vs %d", h2, h1)
	}
	if len(cache.textures) != 1 {
		t.Errorf("textures vector length = %d, want 1", len(cache.textures))
	}
}

func TestLoadUnknownBlockIsNegativelyCached(t *testing.T) {
	cache, _ := newTestCache(t, nil)

	h := cache.Load("minecraft:nonexistent", "")
	if h != NoHandle {
		t.Fatalf("expected NoHandle for unresolvable block, got %d", h)
	}

	got, ok := cache.Index("minecraft:nonexistent", "")
	if !ok {
		t.Fatal("expected negative cache entry to be present via Index")
	}
	if got != NoHandle {
		t.Errorf("cached value = %d, want NoHandle", got)
	}
}

func TestLoadAppliesTint(t *testing.T) {
	cache, _ := newTestCache(t, map[string][3]int16{"minecraft:stone": {10, -10, 0}})

	h := cache.Load("minecraft:stone", "")
	tex := cache.Get(h)
	px := tex.Image.RGBAAt(0, 0)
	if px.R != 130 || px.G != 110 || px.B != 120 {
		t.Errorf("tinted pixel = %+v, want {130 110 120 255}", px)
	}
}

func TestLoadConcurrentCallsAppendExactlyOnce(t *testing.T) {
	cache, _ := newTestCache(t, nil)

	const workers = 32
	handles := make([]Handle, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		i := i
		go func() {
			defer wg.Done()
			handles[i] = cache.Load("minecraft:stone", "")
		}()
	}
	wg.Wait()

	for i, h := range handles {
		if h != handles[0] {
			t.Errorf("handle %d = %d, want %d", i, h, handles[0])
		}
	}
	if len(cache.textures) != 1 {
		t.Errorf("textures vector length = %d, want 1 even under concurrent Load", len(cache.textures))
	}
}
