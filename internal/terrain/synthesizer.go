package terrain

import (
	"context"
	"fmt"
	"log/slog"

	"sanguigore/internal/mathutil"
	"sanguigore/internal/noise"
	"sanguigore/internal/snapshot"
	"sanguigore/internal/threading/core"
)

// Default octave stacks, as (frequency, amplitude) pairs.
var (
	DefaultHeightLayers = []noise.Layer{
		{Frequency: 0.005, Amplitude: 0.6},
		{Frequency: 0.01, Amplitude: 0.3},
		{Frequency: 0.02, Amplitude: 0.2},
		{Frequency: 0.04, Amplitude: 0.1},
	}
	DefaultMoistureLayers = []noise.Layer{
		{Frequency: 0.02, Amplitude: 0.5},
		{Frequency: 0.04, Amplitude: 0.3},
		{Frequency: 0.08, Amplitude: 0.2},
	}
	DefaultTemperatureLayers = []noise.Layer{
		{Frequency: 0.01, Amplitude: 0.5},
		{Frequency: 0.02, Amplitude: 0.3},
		{Frequency: 0.05, Amplitude: 0.2},
	}
)

// Options configures a Synthesizer. Zero values fall back to the defaults.
type Options struct {
	HeightLayers      []noise.Layer
	MoistureLayers    []noise.Layer
	TemperatureLayers []noise.Layer
	Backend           noise.Backend
	Rules             []BiomeRule
	ForestTint        bool
	Workers           int // <= 0 uses the CPU count
	Logger            *slog.Logger
}

// Synthesizer turns a seed into height, moisture and temperature fields and
// a coloured biome map.
type Synthesizer struct {
	seed        int64
	height      *noise.Field
	moisture    *noise.Field
	temperature *noise.Field
	opts        Options
	classifier  *Classifier
	log         *slog.Logger
}

// NewSynthesizer builds the three noise fields for seed. Height samples seed,
// moisture seed+1 and temperature seed+2 so the channels are decorrelated.
func NewSynthesizer(seed int64, opts Options) (*Synthesizer, error) {
	if opts.HeightLayers == nil {
		opts.HeightLayers = DefaultHeightLayers
	}
	if opts.MoistureLayers == nil {
		opts.MoistureLayers = DefaultMoistureLayers
	}
	if opts.TemperatureLayers == nil {
		opts.TemperatureLayers = DefaultTemperatureLayers
	}
	for name, layers := range map[string][]noise.Layer{
		"height":      opts.HeightLayers,
		"moisture":    opts.MoistureLayers,
		"temperature": opts.TemperatureLayers,
	} {
		if err := noise.ValidateLayers(layers); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	classifier, err := NewClassifier(opts.Rules, opts.ForestTint)
	if err != nil {
		return nil, err
	}

	s := &Synthesizer{seed: seed, opts: opts, classifier: classifier, log: opts.Logger}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.height, err = noise.New(seed, opts.Backend); err != nil {
		return nil, err
	}
	if s.moisture, err = noise.New(seed+1, opts.Backend); err != nil {
		return nil, err
	}
	if s.temperature, err = noise.New(seed+2, opts.Backend); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Synthesizer) Seed() int64             { return s.seed }
func (s *Synthesizer) Classifier() *Classifier { return s.classifier }

// Cell computes the clamped scalars of one cell. It is a pure function of the
// coordinates, which is what lets rows be computed in any order.
func (s *Synthesizer) Cell(x, y int) (height, moisture, temperature float64) {
	height = mathutil.Clamp01(s.height.SampleOctaves(x, y, s.opts.HeightLayers))
	moisture = mathutil.Clamp01(s.moisture.SampleOctaves(x, y, s.opts.MoistureLayers))
	temperature = mathutil.Clamp01(s.temperature.SampleOctaves(x, y, s.opts.TemperatureLayers))
	return height, moisture, temperature
}

// Synthesize generates a width x height world. Rows are spread across a worker
// pool; each row writes only its own cells.
func (s *Synthesizer) Synthesize(ctx context.Context, width, height int) (*snapshot.World, error) {
	w, err := snapshot.New(s.seed, width, height)
	if err != nil {
		return nil, err
	}

	pool := core.StartWorkerPool(s.opts.Workers)
	defer pool.Stop()

	pool.ParallelForWithContext(ctx, 0, height, func(y int) {
		s.fillRow(w, y)
	})
	if err := ctx.Err(); err != nil {
		s.log.Warn("terrain synthesis cancelled", "seed", s.seed, "err", err)
		return nil, err
	}

	s.log.Debug("terrain synthesized",
		"seed", s.seed,
		"width", width,
		"height", height,
		"backend", s.height.Backend(),
		"workers", pool.GetNumWorkers(),
	)
	return w, nil
}

// SynthesizeSequential is the single-goroutine reference pass.
func (s *Synthesizer) SynthesizeSequential(width, height int) (*snapshot.World, error) {
	w, err := snapshot.New(s.seed, width, height)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		s.fillRow(w, y)
	}
	return w, nil
}

func (s *Synthesizer) fillRow(w *snapshot.World, y int) {
	heights := w.Heights.Row(y)
	moisture := w.Moisture.Row(y)
	temperature := w.Temperature.Row(y)
	biomes := w.Biomes.Row(y)
	colors := w.Colors.Row(y)
	for x := range heights {
		h, m, t := s.Cell(x, y)
		heights[x] = h
		moisture[x] = m
		temperature[x] = t
		biomes[x] = Label(h, m)
		colors[x] = s.classifier.Color(h, m, t)
	}
}
