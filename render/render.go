// Package render drives the top-down column traversal that turns a
// decoded Region plus a shared AppearanceCache into a raster, in either of
// the two output modes.
package render

import (
	"image"
	"image/color"

	"github.com/Piripant/mine-viewer/anvil"
	"github.com/Piripant/mine-viewer/resources"
)

// IgnoreSet is the immutable set of namespaced block names the column
// traversal treats as see-through without ever consulting the cache. It is
// built once and shared read-only across every concurrently rendering
// region.
type IgnoreSet map[string]struct{}

func (s IgnoreSet) contains(name string) bool {
	_, ok := s[name]
	return ok
}

const (
	blocksPerAxis = anvil.RegionBlocks // 512
	texelsPerTile = 16
)

// Pixels renders a region in pixel mode: one pixel per column holding the
// average colour of the first resolved block, or black if the column
// yields nothing.
func Pixels(region *anvil.Region, ignore IgnoreSet, cache *resources.AppearanceCache) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, blocksPerAxis, blocksPerAxis))

	for x := 0; x < blocksPerAxis; x++ {
		for z := 0; z < blocksPerAxis; z++ {
			c := color.RGBA{A: 255}
			if tex, ok := resolveColumn(region, ignore, cache, x, z); ok {
				c = tex.AverageColor
				c.A = 255
			}
			img.SetRGBA(x, z, c)
		}
	}
	return img
}

// Textures renders a region in textured mode: each column pastes its
// resolved 16x16 texture tile(s) using the overlay rule, continuing
// downward through transparent blocks until an opaque block is found or
// the column bottoms out.
func Textures(region *anvil.Region, ignore IgnoreSet, cache *resources.AppearanceCache) *image.RGBA {
	side := blocksPerAxis * texelsPerTile
	img := image.NewRGBA(image.Rect(0, 0, side, side))

	for x := 0; x < blocksPerAxis; x++ {
		for z := 0; z < blocksPerAxis; z++ {
			paintColumn(region, ignore, cache, img, x, z)
		}
	}
	return img
}

// resolveColumn implements the shared column traversal: walk y from 255
// down to 0, skipping ignored names, and return the first block whose
// appearance resolves in the cache.
func resolveColumn(region *anvil.Region, ignore IgnoreSet, cache *resources.AppearanceCache, x, z int) (resources.Texture, bool) {
	for y := anvil.WorldHeight - 1; y >= 0; y-- {
		name := region.BlockName(x, y, z)
		if ignore.contains(name) {
			continue
		}
		properties := region.GraphicProperties(x, y, z)
		h := cache.Load(name, properties)
		if h == resources.NoHandle {
			continue
		}
		return cache.Get(h), true
	}
	return resources.Texture{}, false
}

// paintColumn walks a single column downward, pasting every resolved
// texture with the overlay rule until an opaque block terminates it.
func paintColumn(region *anvil.Region, ignore IgnoreSet, cache *resources.AppearanceCache, dst *image.RGBA, x, z int) {
	originX := x * texelsPerTile
	originZ := z * texelsPerTile

	for y := anvil.WorldHeight - 1; y >= 0; y-- {
		name := region.BlockName(x, y, z)
		if ignore.contains(name) {
			continue
		}
		properties := region.GraphicProperties(x, y, z)
		h := cache.Load(name, properties)
		if h == resources.NoHandle {
			continue
		}

		tex := cache.Get(h)
		overlay(dst, tex.Image, originX, originZ)
		if !tex.Transparent {
			return
		}
	}
}

// overlay copies each source texel onto dst at (originX, originZ) only
// where the destination texel is still fully transparent, so lower blocks
// only ever fill holes left by higher ones.
func overlay(dst *image.RGBA, src *image.RGBA, originX, originZ int) {
	bounds := src.Bounds()
	for dy := bounds.Min.Y; dy < bounds.Max.Y; dy++ {
		for dx := bounds.Min.X; dx < bounds.Max.X; dx++ {
			dstX, dstY := originX+dx, originZ+dy
			if dst.RGBAAt(dstX, dstY).A != 0 {
				continue
			}
			dst.SetRGBA(dstX, dstY, src.RGBAAt(dx, dy))
		}
	}
}
