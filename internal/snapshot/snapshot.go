// Package snapshot holds the data produced by one synthesis pass and its
// persistence.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"sanguigore/internal/grid"
	"sanguigore/internal/mathutil"
)

// Segment is the origin and extent of a sub-region within a larger map.
// The zero value means the snapshot covers the whole map.
type Segment struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// World is the complete output of one synthesis pass.
type World struct {
	Seed        int64                  `json:"seed"`
	Width       int                    `json:"width"`
	Height      int                    `json:"height"`
	Heights     *grid.Grid[float64]    `json:"heights"`
	Moisture    *grid.Grid[float64]    `json:"moisture"`
	Temperature *grid.Grid[float64]    `json:"temperature"`
	Biomes      *grid.Grid[string]     `json:"biomes"`
	Colors      *grid.Grid[color.RGBA] `json:"colors"`
	Settlements []grid.Point           `json:"settlements,omitempty"`
	Segment     Segment                `json:"segment"`
}

// New allocates a World with empty grids.
func New(seed int64, width, height int) (*World, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", grid.ErrInvalidDimensions, width, height)
	}
	return &World{
		Seed:        seed,
		Width:       width,
		Height:      height,
		Heights:     grid.MustNew[float64](width, height),
		Moisture:    grid.MustNew[float64](width, height),
		Temperature: grid.MustNew[float64](width, height),
		Biomes:      grid.MustNew[string](width, height),
		Colors:      grid.MustNew[color.RGBA](width, height),
	}, nil
}

// Validate checks that every grid matches the declared dimensions.
func (w *World) Validate() error {
	check := func(name string, gw, gh int) error {
		if gw != w.Width || gh != w.Height {
			return fmt.Errorf("snapshot: %s grid is %dx%d, world is %dx%d", name, gw, gh, w.Width, w.Height)
		}
		return nil
	}
	if w.Heights == nil || w.Moisture == nil || w.Temperature == nil || w.Biomes == nil || w.Colors == nil {
		return fmt.Errorf("snapshot: missing grid")
	}
	for _, err := range []error{
		check("heights", w.Heights.Width(), w.Heights.Height()),
		check("moisture", w.Moisture.Width(), w.Moisture.Height()),
		check("temperature", w.Temperature.Width(), w.Temperature.Height()),
		check("biomes", w.Biomes.Width(), w.Biomes.Height()),
		check("colors", w.Colors.Width(), w.Colors.Height()),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// IsSegment reports whether the snapshot is a sub-region of a larger map.
func (w *World) IsSegment() bool {
	return w.Segment.Width > 0 && w.Segment.Height > 0
}

// SubRegion copies a width x height region whose top-left corner is (x, y). A
// region that would overflow the right or bottom edge is shifted back inside,
// and cells that still fall outside the map stay black.
func (w *World) SubRegion(x, y, width, height int) (*World, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", grid.ErrInvalidDimensions, width, height)
	}
	if x+width > w.Width {
		x = w.Width - width
	}
	if y+height > w.Height {
		y = w.Height - height
	}
	x = mathutil.IntMax(x, 0)
	y = mathutil.IntMax(y, 0)

	out := &World{
		Seed:    w.Seed,
		Width:   width,
		Height:  height,
		Segment: Segment{X: x, Y: y, Width: width, Height: height},
	}
	var err error
	if out.Heights, err = w.Heights.Sub(x, y, width, height, 0); err != nil {
		return nil, err
	}
	if out.Moisture, err = w.Moisture.Sub(x, y, width, height, 0); err != nil {
		return nil, err
	}
	if out.Temperature, err = w.Temperature.Sub(x, y, width, height, 0); err != nil {
		return nil, err
	}
	if out.Biomes, err = w.Biomes.Sub(x, y, width, height, ""); err != nil {
		return nil, err
	}
	if out.Colors, err = w.Colors.Sub(x, y, width, height, color.RGBA{A: 255}); err != nil {
		return nil, err
	}
	for _, p := range w.Settlements {
		if p.X >= x && p.X < x+width && p.Y >= y && p.Y < y+height {
			out.Settlements = append(out.Settlements, grid.Point{X: p.X - x, Y: p.Y - y})
		}
	}
	return out, nil
}

// Image renders the colour grid at one pixel per cell.
func (w *World) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w.Width, w.Height))
	w.Colors.Each(func(x, y int, c color.RGBA) {
		img.SetRGBA(x, y, c)
	})
	return img
}

// GameState is what the save button persists: the world plus the clocks and
// the tile scale it was displayed at.
type GameState struct {
	World       *World        `json:"world"`
	GameTime    time.Duration `json:"game_time"`
	ElapsedTime time.Duration `json:"elapsed_time"`
	TileSize    int           `json:"tile_size"`
}
