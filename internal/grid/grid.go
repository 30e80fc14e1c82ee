// Package grid holds the fixed-size 2D containers shared by the synthesis,
// settlement and reveal stages.
package grid

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidDimensions is returned when a grid is requested with a width or
// height that is not positive.
var ErrInvalidDimensions = errors.New("grid dimensions must be positive")

// Point is an integer cell coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Neighbors4 returns the up, down, left and right neighbours of p in that order.
func (p Point) Neighbors4() [4]Point {
	return [4]Point{
		{p.X, p.Y - 1},
		{p.X, p.Y + 1},
		{p.X - 1, p.Y},
		{p.X + 1, p.Y},
	}
}

// Grid is a row-major width x height array of T.
type Grid[T any] struct {
	width  int
	height int
	cells  []T
}

// New allocates a zeroed grid.
func New[T any](width, height int) (*Grid[T], error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Grid[T]{
		width:  width,
		height: height,
		cells:  make([]T, width*height),
	}, nil
}

// MustNew is New for dimensions known to be valid.
func MustNew[T any](width, height int) *Grid[T] {
	g, err := New[T](width, height)
	if err != nil {
		panic(err)
	}
	return g
}

func (g *Grid[T]) Width() int  { return g.width }
func (g *Grid[T]) Height() int { return g.height }

// Len returns the number of cells.
func (g *Grid[T]) Len() int { return len(g.cells) }

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid[T]) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Index converts (x, y) to the flat row-major index.
func (g *Grid[T]) Index(x, y int) int {
	return y*g.width + x
}

// At returns the value at (x, y). It panics when out of bounds.
func (g *Grid[T]) At(x, y int) T {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("grid: (%d,%d) outside %dx%d", x, y, g.width, g.height))
	}
	return g.cells[g.Index(x, y)]
}

// Set stores v at (x, y). It panics when out of bounds.
func (g *Grid[T]) Set(x, y int, v T) {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("grid: (%d,%d) outside %dx%d", x, y, g.width, g.height))
	}
	g.cells[g.Index(x, y)] = v
}

// Row returns the backing slice for row y. Writes go straight into the grid.
func (g *Grid[T]) Row(y int) []T {
	start := y * g.width
	return g.cells[start : start+g.width]
}

// Fill sets every cell to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.cells {
		g.cells[i] = v
	}
}

// Each calls fn for every cell in row-major order.
func (g *Grid[T]) Each(fn func(x, y int, v T)) {
	for y := 0; y < g.height; y++ {
		row := g.Row(y)
		for x, v := range row {
			fn(x, y, v)
		}
	}
}

// Sub copies the w x h region starting at (x0, y0). Cells outside the source
// keep fill.
func (g *Grid[T]) Sub(x0, y0, w, h int, fill T) (*Grid[T], error) {
	out, err := New[T](w, h)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := x0+x, y0+y
			if g.InBounds(sx, sy) {
				out.cells[out.Index(x, y)] = g.cells[g.Index(sx, sy)]
			} else {
				out.cells[out.Index(x, y)] = fill
			}
		}
	}
	return out, nil
}

type gridJSON[T any] struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Cells  []T `json:"cells"`
}

func (g *Grid[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(gridJSON[T]{Width: g.width, Height: g.height, Cells: g.cells})
}

func (g *Grid[T]) UnmarshalJSON(data []byte) error {
	var raw gridJSON[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Width <= 0 || raw.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, raw.Width, raw.Height)
	}
	if len(raw.Cells) != raw.Width*raw.Height {
		return fmt.Errorf("grid: %d cells for %dx%d", len(raw.Cells), raw.Width, raw.Height)
	}
	g.width, g.height, g.cells = raw.Width, raw.Height, raw.Cells
	return nil
}
