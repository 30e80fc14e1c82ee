package settlement

import (
	"image/color"
	"log/slog"
	"math/rand"

	"sanguigore/internal/grid"
	"sanguigore/internal/snapshot"
)

// Defaults for the habitable height band and the village marker.
const (
	DefaultHabitableMin = 0.35
	DefaultHabitableMax = 0.6
	DefaultCountMin     = 15
	DefaultCountMax     = 25
)

var DefaultColor = color.RGBA{180, 100, 50, 255}

// Site is an accepted settlement centre.
type Site struct {
	grid.Point
	Height float64
}

type Options struct {
	HabitableMin float64 // inclusive
	HabitableMax float64 // exclusive
	Color        color.RGBA
	Radius       int // footprint half-width; 1 gives a 3x3 stamp
	Logger       *slog.Logger
}

// Placer scatters settlements on habitable land.
type Placer struct {
	rng  *rand.Rand
	opts Options
	log  *slog.Logger
}

// NewPlacer seeds the placer's random source. Zero options take the defaults.
func NewPlacer(seed int64, opts Options) *Placer {
	if opts.HabitableMin == 0 && opts.HabitableMax == 0 {
		opts.HabitableMin = DefaultHabitableMin
		opts.HabitableMax = DefaultHabitableMax
	}
	if opts.Color == (color.RGBA{}) {
		opts.Color = DefaultColor
	}
	if opts.Radius <= 0 {
		opts.Radius = 1
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Placer{rng: rand.New(rand.NewSource(seed)), opts: opts, log: log}
}

// Count draws a settlement count from [lo, hi). An empty range yields lo.
func (p *Placer) Count(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + p.rng.Intn(hi-lo)
}

// Habitable reports whether h lies in the habitable band.
func (p *Placer) Habitable(h float64) bool {
	return h >= p.opts.HabitableMin && h < p.opts.HabitableMax
}

// Place draws exactly attempts interior candidates and keeps the habitable
// ones, stamping each footprint into colors. Candidates are not deduplicated
// and no spacing is enforced, so the result may hold fewer sites than
// attempts. Grids without an interior receive nothing.
func (p *Placer) Place(colors *grid.Grid[color.RGBA], heights *grid.Grid[float64], attempts int) []Site {
	w, h := heights.Width(), heights.Height()
	if w < 3 || h < 3 || attempts <= 0 {
		return nil
	}

	var sites []Site
	for i := 0; i < attempts; i++ {
		x := 1 + p.rng.Intn(w-2)
		y := 1 + p.rng.Intn(h-2)
		height := heights.At(x, y)
		if !p.Habitable(height) {
			continue
		}
		p.stamp(colors, x, y)
		sites = append(sites, Site{Point: grid.Point{X: x, Y: y}, Height: height})
	}

	p.log.Debug("settlements placed", "attempts", attempts, "placed", len(sites))
	return sites
}

func (p *Placer) stamp(colors *grid.Grid[color.RGBA], cx, cy int) {
	r := p.opts.Radius
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if colors.InBounds(cx+dx, cy+dy) {
				colors.Set(cx+dx, cy+dy, p.opts.Color)
			}
		}
	}
}

// PlaceOnWorld runs Place against a snapshot and appends the accepted centres
// to its settlement list.
func (p *Placer) PlaceOnWorld(w *snapshot.World, attempts int) []Site {
	sites := p.Place(w.Colors, w.Heights, attempts)
	for _, s := range sites {
		w.Settlements = append(w.Settlements, s.Point)
	}
	return sites
}
