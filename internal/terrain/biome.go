package terrain

import (
	"errors"
	"fmt"
	"image/color"

	"sanguigore/internal/mathutil"
)

// ErrInvalidRules is returned for an empty, unordered or non-exhaustive table.
var ErrInvalidRules = errors.New("terrain: invalid biome rules")

// Anchor colours of the built-in table.
var (
	DeepWater    = color.RGBA{10, 30, 50, 255}
	ShallowWater = color.RGBA{20, 50, 70, 255}
	WetBeach     = color.RGBA{194, 178, 128, 255}
	DryBeach     = color.RGBA{210, 185, 140, 255}
	DryGrass     = color.RGBA{30, 70, 30, 255}
	LushGrass    = color.RGBA{50, 100, 30, 255}
	Forest       = color.RGBA{80, 120, 60, 255}
	RockLow      = color.RGBA{100, 100, 100, 255}
	RockHigh     = color.RGBA{160, 160, 160, 255}
	Snow         = color.RGBA{240, 240, 240, 255}
	DenseForest  = color.RGBA{30, 70, 30, 255}
	DrierForest  = color.RGBA{40, 70, 30, 255}
	MixedForest  = color.RGBA{60, 90, 40, 255}
)

const blendStrength = 10.0

// BiomeRule colours the heights in [previous rule's Max, Max). The colour is
// From blended toward To by clamp01((h-Origin)/Span*Strength); the strength is
// applied before the clamp, so steep rules saturate to their endpoints over
// most of the band. A rule with Span 0 or From == To is a constant band.
type BiomeRule struct {
	Name     string
	Max      float64
	From     color.RGBA
	To       color.RGBA
	Origin   float64
	Span     float64
	Strength float64
	// Forest marks constant forest bands that moisture may tint.
	Forest bool
}

// Factor returns the blend position of h inside the rule.
func (r BiomeRule) Factor(h float64) float64 {
	if r.Span == 0 {
		return 0
	}
	return mathutil.Clamp01((h - r.Origin) / r.Span * r.Strength)
}

// Color returns the rule's colour at height h.
func (r BiomeRule) Color(h float64) color.RGBA {
	if r.From == r.To {
		return r.From
	}
	return Interpolate(r.From, r.To, r.Factor(h))
}

// Interpolate blends two colours channel by channel, truncating like integer
// colour math does.
func Interpolate(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: mathutil.LerpChannel(a.R, b.R, t),
		G: mathutil.LerpChannel(a.G, b.G, t),
		B: mathutil.LerpChannel(a.B, b.B, t),
		A: 255,
	}
}

// DefaultRules returns the built-in height table: water, two beach constants,
// the vegetation ramps, then rock and snow.
func DefaultRules() []BiomeRule {
	return []BiomeRule{
		{Name: "water", Max: 0.35, From: DeepWater, To: ShallowWater, Origin: 0.25, Span: 0.10, Strength: 1},
		{Name: "wet_beach", Max: 0.38, From: WetBeach, To: WetBeach},
		{Name: "dry_beach", Max: 0.40, From: DryBeach, To: DryBeach},
		{Name: "dry_grass", Max: 0.55, From: DryGrass, To: LushGrass, Origin: 0.45, Span: 0.10, Strength: blendStrength},
		{Name: "lush_grass", Max: 0.65, From: LushGrass, To: Forest, Origin: 0.55, Span: 0.10, Strength: blendStrength},
		{Name: "forest", Max: 0.70, From: Forest, To: Forest, Forest: true},
		{Name: "forest_rock", Max: 0.85, From: Forest, To: RockLow, Origin: 0.70, Span: 0.15, Strength: blendStrength},
		{Name: "rock", Max: 0.95, From: RockLow, To: RockHigh, Origin: 0.85, Span: 0.10, Strength: blendStrength},
		{Name: "snow", Max: 1.0, From: RockHigh, To: Snow, Origin: 0.95, Span: 0.05, Strength: blendStrength},
	}
}

// ValidateRules checks the table is non-empty, strictly increasing and reaches 1.
func ValidateRules(rules []BiomeRule) error {
	if len(rules) == 0 {
		return fmt.Errorf("%w: empty table", ErrInvalidRules)
	}
	prev := 0.0
	for i, r := range rules {
		if r.Max <= prev {
			return fmt.Errorf("%w: rule %d (%s) max %.3f not above %.3f", ErrInvalidRules, i, r.Name, r.Max, prev)
		}
		if r.Span < 0 {
			return fmt.Errorf("%w: rule %d (%s) has negative span", ErrInvalidRules, i, r.Name)
		}
		prev = r.Max
	}
	if prev < 1 {
		return fmt.Errorf("%w: table ends at %.3f", ErrInvalidRules, prev)
	}
	return nil
}

// Classifier maps a cell's scalars to a colour and a label.
type Classifier struct {
	rules      []BiomeRule
	forestTint bool
}

// NewClassifier validates rules and builds a classifier. A nil table uses
// DefaultRules.
func NewClassifier(rules []BiomeRule, forestTint bool) (*Classifier, error) {
	if rules == nil {
		rules = DefaultRules()
	}
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	return &Classifier{rules: append([]BiomeRule(nil), rules...), forestTint: forestTint}, nil
}

// Rule returns the band that owns height h after clamping it to [0, 1]. Bands
// are half-open, so a height equal to a Max belongs to the next band; the last
// band also owns 1.
func (c *Classifier) Rule(h float64) BiomeRule {
	h = mathutil.Clamp01(h)
	last := len(c.rules) - 1
	for i, r := range c.rules {
		if h < r.Max || i == last {
			return r
		}
	}
	return c.rules[last]
}

// Color classifies one cell. Only height picks the band today; moisture tints
// constant forest bands when enabled and temperature is carried for future
// rules.
func (c *Classifier) Color(height, moisture, temperature float64) color.RGBA {
	_ = temperature
	r := c.Rule(height)
	if r.Forest && c.forestTint {
		return ForestColor(moisture)
	}
	return r.Color(mathutil.Clamp01(height))
}

// ForestColor picks a forest shade by moisture.
func ForestColor(moisture float64) color.RGBA {
	switch {
	case moisture > 0.65:
		return DenseForest
	case moisture < 0.4:
		return DrierForest
	default:
		return MixedForest
	}
}

// Label is the human-readable biome name for a cell.
func Label(height, moisture float64) string {
	switch {
	case height < 0.1:
		return "Deep Water"
	case height < 0.35:
		if moisture > 0.75 {
			return "Lush Plains"
		}
		return "Dry Plains"
	case height < 0.6:
		if moisture > 0.65 {
			return "Dense Forest"
		}
		return "Drier Forest"
	case height < 0.75:
		return "Hills"
	default:
		return "Mountains"
	}
}
