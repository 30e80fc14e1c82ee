// Package palette renders a world snapshot as one of several layer views.
package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/hsluv/hsluv-go"

	"sanguigore/internal/grid"
	"sanguigore/internal/mathutil"
	"sanguigore/internal/snapshot"
)

var ErrUnknownLayer = errors.New("palette: unknown layer")

type Layer int

const (
	Biome Layer = iota
	Height
	Moisture
	Temperature
)

var layerNames = [...]string{"biome", "height", "moisture", "temperature"}

func (l Layer) String() string {
	if l < 0 || int(l) >= len(layerNames) {
		return fmt.Sprintf("layer(%d)", int(l))
	}
	return layerNames[l]
}

// Next cycles through the layers in order.
func (l Layer) Next() Layer {
	return (l + 1) % Layer(len(layerNames))
}

// ParseLayer accepts a layer name, case-insensitively.
func ParseLayer(s string) (Layer, error) {
	for i, name := range layerNames {
		if strings.EqualFold(s, name) {
			return Layer(i), nil
		}
	}
	return Biome, fmt.Errorf("%w: %q", ErrUnknownLayer, s)
}

// Shade maps a scalar in [0, 1] to a colour for a scalar layer. Height runs
// dark to light at a constant earthy hue, moisture from pale to deep blue and
// temperature sweeps hue from blue to red. Biome has no scalar and shades grey.
func Shade(l Layer, v float64) color.RGBA {
	v = mathutil.Clamp01(v)
	switch l {
	case Height:
		return hsluvRGBA(40, 60, 10+80*v)
	case Moisture:
		return hsluvRGBA(250, 30+70*v, 90-60*v)
	case Temperature:
		return hsluvRGBA(260-250*v, 90, 55)
	default:
		return hsluvRGBA(0, 0, 100*v)
	}
}

func hsluvRGBA(h, s, l float64) color.RGBA {
	r, g, b := hsluv.HsluvToRGB(h, s, l)
	return color.RGBA{
		channel(r),
		channel(g),
		channel(b),
		0xff,
	}
}

func channel(v float64) uint8 {
	return uint8(mathutil.Clamp01(v) * 0xff)
}

// Render draws the chosen layer of w.
func Render(w *snapshot.World, l Layer) (*image.RGBA, error) {
	var scalars *grid.Grid[float64]
	switch l {
	case Biome:
		return w.Image(), nil
	case Height:
		scalars = w.Heights
	case Moisture:
		scalars = w.Moisture
	case Temperature:
		scalars = w.Temperature
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownLayer, int(l))
	}

	img := image.NewRGBA(image.Rect(0, 0, w.Width, w.Height))
	scalars.Each(func(x, y int, v float64) {
		img.SetRGBA(x, y, Shade(l, v))
	})
	return img, nil
}
