// Package canvas composes the partially revealed map image. Reveal batches
// arrive from the reveal goroutine while the viewer reads pixels on the render
// loop, so every method locks.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"sanguigore/internal/grid"
	"sanguigore/internal/palette"
	"sanguigore/internal/snapshot"
)

// Hidden is the colour of cells the reveal has not reached yet.
var Hidden = color.RGBA{0, 0, 0, 255}

type Canvas struct {
	mu       sync.Mutex
	world    *snapshot.World
	layer    palette.Layer
	source   *image.RGBA
	img      *image.RGBA
	revealed *grid.Grid[bool]
	count    int
	dirty    bool
}

// New creates a canvas for w with every cell hidden.
func New(w *snapshot.World, layer palette.Layer) (*Canvas, error) {
	src, err := palette.Render(w, layer)
	if err != nil {
		return nil, err
	}
	revealed, err := grid.New[bool](w.Width, w.Height)
	if err != nil {
		return nil, err
	}
	c := &Canvas{
		world:    w,
		layer:    layer,
		source:   src,
		img:      image.NewRGBA(src.Bounds()),
		revealed: revealed,
		dirty:    true,
	}
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			c.img.SetRGBA(x, y, Hidden)
		}
	}
	return c, nil
}

func (c *Canvas) World() *snapshot.World { return c.world }

func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// Reveal uncovers the given cells. Out-of-range points are ignored.
func (c *Canvas) Reveal(points []grid.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range points {
		c.revealLocked(p.X, p.Y)
	}
}

// RevealAll uncovers the whole map, as when a saved game is loaded.
func (c *Canvas) RevealAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revealed.Each(func(x, y int, _ bool) {
		c.revealLocked(x, y)
	})
}

func (c *Canvas) revealLocked(x, y int) {
	if !c.revealed.InBounds(x, y) {
		return
	}
	if !c.revealed.At(x, y) {
		c.revealed.Set(x, y, true)
		c.count++
	}
	c.img.SetRGBA(x, y, c.source.RGBAAt(x, y))
	c.dirty = true
}

func (c *Canvas) Revealed(x, y int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revealed.InBounds(x, y) && c.revealed.At(x, y)
}

func (c *Canvas) RevealedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *Canvas) Layer() palette.Layer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layer
}

// SetLayer switches the rendered layer, keeping the revealed mask.
func (c *Canvas) SetLayer(l palette.Layer) error {
	src, err := palette.Render(c.world, l)
	if err != nil {
		return fmt.Errorf("set layer: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layer = l
	c.source = src
	c.revealed.Each(func(x, y int, shown bool) {
		if shown {
			c.img.SetRGBA(x, y, src.RGBAAt(x, y))
		}
	})
	c.dirty = true
	return nil
}

// Invalidate forces the next Flush to upload, e.g. into a fresh texture.
func (c *Canvas) Invalidate() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// Flush hands the pixel buffer to upload if anything changed since the last
// flush. upload runs under the canvas lock and must not retain pix.
func (c *Canvas) Flush(upload func(pix []byte)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return false
	}
	upload(c.img.Pix)
	c.dirty = false
	return true
}
