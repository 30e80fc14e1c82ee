// Package noise provides the deterministic coherent-noise sampler used by the
// terrain synthesizer.
//
// A Field wraps a seeded 2D source whose output lies in [0, 1]. Sample evaluates
// one frequency; SampleOctaves sums a stack of frequency/amplitude layers and
// leaves clamping to the caller, so layer sets are tuned empirically rather than
// normalized.
package noise

import (
	"errors"
	"fmt"

	"sanguigore/internal/mathutil"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

var (
	ErrNoLayers       = errors.New("noise: octave stack has no layers")
	ErrUnknownBackend = errors.New("noise: unknown backend")
)

// Backend names a noise primitive.
type Backend string

const (
	BackendOpenSimplex Backend = "opensimplex"
	BackendPerlin      Backend = "perlin"
)

// Perlin parameters giving terrain-like output (alpha=2, beta=2, n=3).
const (
	perlinAlpha = 2.0
	perlinBeta  = 2.0
	perlinN     = 3
)

// Layer is one octave: a frequency and the weight it contributes.
type Layer struct {
	Frequency float64 `yaml:"frequency" json:"frequency"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
}

// Source is a 2D noise primitive normalized to [0, 1].
type Source interface {
	Eval2(x, y float64) float64
}

type perlinSource struct {
	p *perlin.Perlin
}

// Eval2 remaps perlin output from [-1, 1] to [0, 1].
func (s perlinSource) Eval2(x, y float64) float64 {
	return (s.p.Noise2D(x, y) + 1) / 2
}

// Field samples a seeded Source at integer coordinates.
type Field struct {
	seed    int64
	backend Backend
	src     Source
}

// New creates a Field for seed using the named backend. An empty backend selects
// opensimplex.
func New(seed int64, backend Backend) (*Field, error) {
	var src Source
	switch backend {
	case "", BackendOpenSimplex:
		backend = BackendOpenSimplex
		src = opensimplex.NewNormalized(seed)
	case BackendPerlin:
		src = perlinSource{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinN, seed)}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	return &Field{seed: seed, backend: backend, src: src}, nil
}

// NewWithSource wraps an arbitrary Source, mainly for tests.
func NewWithSource(seed int64, src Source) *Field {
	return &Field{seed: seed, backend: "custom", src: src}
}

func (f *Field) Seed() int64      { return f.seed }
func (f *Field) Backend() Backend { return f.backend }

// Sample returns the noise value at (x*frequency, y*frequency) in [0, 1].
func (f *Field) Sample(x, y int, frequency float64) float64 {
	return mathutil.Clamp01(f.src.Eval2(float64(x)*frequency, float64(y)*frequency))
}

// SampleOctaves accumulates Sample(x, y, f_i) * a_i over layers. The sum is not
// clamped.
func (f *Field) SampleOctaves(x, y int, layers []Layer) float64 {
	total := 0.0
	for _, l := range layers {
		total += f.Sample(x, y, l.Frequency) * l.Amplitude
	}
	return total
}

// ValidateLayers rejects an empty octave stack.
func ValidateLayers(layers []Layer) error {
	if len(layers) == 0 {
		return ErrNoLayers
	}
	return nil
}
