package resources

import (
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Handle is a stable index into an AppearanceCache's texture vector.
// NoHandle marks a negative-cache entry: a key that is known to be
// unresolvable, so repeated lookups for it skip straight past resolution.
type Handle int

const NoHandle Handle = -1

// Texture is the resolved appearance of one (block name, graphic
// properties) key: a 16x16 RGBA raster plus metadata the renderer needs
// without re-inspecting every pixel.
type Texture struct {
	Image        *image.RGBA
	Transparent  bool
	AverageColor color.RGBA
}

const shardCount = 16

// shard is one stripe of the lookup map, with its own readers-writer lock so
// that independent keys rarely contend with each other.
type shard struct {
	mu     sync.RWMutex
	lookup map[string]Handle
}

// AppearanceCache lazily resolves block appearances into loaded textures
// and memoizes the result, positive or negative, so that a key is ever
// resolved once no matter how many columns or goroutines ask for it.
type AppearanceCache struct {
	shards [shardCount]*shard

	texMu    sync.RWMutex
	textures []Texture

	tints map[string][3]int16

	blockstatesDir string
	modelsDir      string
	texturesDir    string
}

// NewAppearanceCache builds an empty cache resolving against the given
// resource roots. tints maps a namespaced block name to a signed RGB
// offset applied to its texture after loading.
func NewAppearanceCache(blockstatesDir, modelsDir, texturesDir string, tints map[string][3]int16) *AppearanceCache {
	c := &AppearanceCache{
		tints:          tints,
		blockstatesDir: blockstatesDir,
		modelsDir:      modelsDir,
		texturesDir:    texturesDir,
	}
	for i := range c.shards {
		c.shards[i] = &shard{lookup: make(map[string]Handle)}
	}
	return c
}

func cacheKey(name, graphicProperties string) string {
	return name + "\x00" + graphicProperties
}

func (c *AppearanceCache) shardFor(key string) *shard {
	return c.shards[xxhash.Sum64String(key)%shardCount]
}

// Index looks up (name, graphicProperties) without ever resolving or
// inserting; it is the read-only fast path Load falls back from, so a hot
// key that is already memoized never pays for the exclusive lock.
func (c *AppearanceCache) Index(name, graphicProperties string) (Handle, bool) {
	key := cacheKey(name, graphicProperties)
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.lookup[key]
	return h, ok
}

// Load resolves (name, graphicProperties) to a Handle, memoizing the
// result (including a negative result) so a second call is O(1). It never
// returns an error: any failure along the blockstate -> model -> texture
// chain collapses into NoHandle, so the caller's only decision is whether
// to skip the block, not how to react to a particular failure mode.
func (c *AppearanceCache) Load(name, graphicProperties string) Handle {
	if h, ok := c.Index(name, graphicProperties); ok {
		return h
	}

	key := cacheKey(name, graphicProperties)
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check: another task may have populated this key between the
	// shared-lock release above and this exclusive-lock acquisition.
	if h, ok := s.lookup[key]; ok {
		return h
	}

	handle := c.resolve(name, graphicProperties)
	s.lookup[key] = handle
	return handle
}

// Get returns the texture record for a previously returned handle. Handles
// are never invalidated or reordered, so this never fails for a handle
// this cache produced.
func (c *AppearanceCache) Get(h Handle) Texture {
	c.texMu.RLock()
	defer c.texMu.RUnlock()
	return c.textures[h]
}

// resolve performs the full blockstate -> model -> texture chain, folding
// every failure into NoHandle rather than propagating an error.
func (c *AppearanceCache) resolve(name, graphicProperties string) Handle {
	modelName, ok := c.resolveModel(name, graphicProperties)
	if !ok {
		return NoHandle
	}

	textureName, ok := c.resolveTexture(modelName)
	if !ok {
		return NoHandle
	}

	img, ok := c.loadTexture(textureName)
	if !ok {
		return NoHandle
	}

	if taint, ok := c.tints[name]; ok {
		applyTaint(img, taint)
	}

	tex := Texture{
		Image:        img,
		Transparent:  isTransparent(img),
		AverageColor: averageColor(img),
	}

	c.texMu.Lock()
	handle := Handle(len(c.textures))
	c.textures = append(c.textures, tex)
	c.texMu.Unlock()

	return handle
}

type blockstateDoc struct {
	Variants map[string]json.RawMessage `json:"variants"`
}

type variant struct {
	Model string `json:"model"`
}

// resolveModel reads the blockstate JSON for name, selects the variant
// matching graphicProperties, and picks the first choice when the variant
// is an array.
func (c *AppearanceCache) resolveModel(name, graphicProperties string) (string, bool) {
	stem := strings.TrimPrefix(name, "minecraft:")
	path := filepath.Join(c.blockstatesDir, stem+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	var doc blockstateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", false
	}

	raw, ok := doc.Variants[graphicProperties]
	if !ok {
		return "", false
	}

	// A variant value is either a single object or a non-empty array of
	// objects; deterministically pick index 0 for the array case rather
	// than the random weighted choice the game client makes, since a
	// static render has no notion of "which random variant this is".
	var choices []variant
	if err := json.Unmarshal(raw, &choices); err == nil && len(choices) > 0 {
		return choices[0].Model, true
	}

	var single variant
	if err := json.Unmarshal(raw, &single); err != nil || single.Model == "" {
		return "", false
	}
	return single.Model, true
}

type modelDoc struct {
	Textures struct {
		Top      string `json:"top"`
		All      string `json:"all"`
		Particle string `json:"particle"`
	} `json:"textures"`
}

// resolveTexture reads the model JSON and picks the first present texture
// reference among top, all, particle, in that preference order.
func (c *AppearanceCache) resolveTexture(modelName string) (string, bool) {
	path := filepath.Join(c.modelsDir, modelName+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	var doc modelDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", false
	}

	switch {
	case doc.Textures.Top != "":
		return doc.Textures.Top, true
	case doc.Textures.All != "":
		return doc.Textures.All, true
	case doc.Textures.Particle != "":
		return doc.Textures.Particle, true
	default:
		return "", false
	}
}

// loadTexture loads the PNG and crops to the top-left 16x16 subregion,
// stripping the extra frames of an animated texture strip.
func (c *AppearanceCache) loadTexture(textureName string) (*image.RGBA, bool) {
	path := filepath.Join(c.texturesDir, textureName+".png")
	img, err := imaging.Open(path)
	if err != nil {
		return nil, false
	}

	bounds := img.Bounds()
	if bounds.Dx() < 16 || bounds.Dy() < 16 {
		return nil, false
	}

	cropped := imaging.Crop(img, image.Rect(0, 0, 16, 16))
	rgba := image.NewRGBA(cropped.Bounds())
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			rgba.Set(x, y, cropped.At(x, y))
		}
	}
	return rgba, true
}

// applyTaint adds a signed RGB offset to every pixel's colour channels
// with saturating clamp to [0,255]; alpha is untouched.
func applyTaint(img *image.RGBA, taint [3]int16) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.RGBAAt(x, y).R, img.RGBAAt(x, y).G, img.RGBAAt(x, y).B, img.RGBAAt(x, y).A
			img.SetRGBA(x, y, color.RGBA{
				R: clampChannel(int16(r) + taint[0]),
				G: clampChannel(int16(g) + taint[1]),
				B: clampChannel(int16(b) + taint[2]),
				A: a,
			})
		}
	}
}

func clampChannel(v int16) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// isTransparent reports whether any pixel's alpha is not fully opaque,
// which tells the column traversal whether to keep looking below this
// block for something to paste underneath it.
func isTransparent(img *image.RGBA) bool {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.RGBAAt(x, y).A != 255 {
				return true
			}
		}
	}
	return false
}

// averageColor computes the mean of (R,G,B) over pixels whose alpha is
// non-zero: a plain arithmetic mean of the sRGB channel values, held as
// normalized floats in a colorful.Color and rounded back to 8 bits. Fully
// transparent pixels are excluded; no gamma linearization is applied.
func averageColor(img *image.RGBA) color.RGBA {
	bounds := img.Bounds()
	var sum colorful.Color
	var n float64

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := img.RGBAAt(x, y)
			if px.A == 0 {
				continue
			}
			sum.R += float64(px.R) / 255.0
			sum.G += float64(px.G) / 255.0
			sum.B += float64(px.B) / 255.0
			n++
		}
	}
	if n == 0 {
		return color.RGBA{}
	}

	avg := colorful.Color{R: sum.R / n, G: sum.G / n, B: sum.B / n}
	r, g, b := avg.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
