package world

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"sanguigore/internal/config"
	"sanguigore/internal/noise"
	"sanguigore/internal/settlement"
	"sanguigore/internal/snapshot"
	"sanguigore/internal/terrain"
	"sanguigore/internal/threading/monitoring"
)

// settlementSeedOffset keeps village placement independent of the three
// noise channels, which use seed, seed+1 and seed+2.
const settlementSeedOffset = 3

// Generator runs the full pipeline: terrain synthesis, then settlements.
type Generator struct {
	cfg     *config.Config
	log     *slog.Logger
	monitor *monitoring.GenerationMonitor
}

// NewGenerator creates a generator. A nil monitor gets a private one.
func NewGenerator(cfg *config.Config, log *slog.Logger, monitor *monitoring.GenerationMonitor) *Generator {
	if log == nil {
		log = slog.Default()
	}
	if monitor == nil {
		monitor = monitoring.NewGenerationMonitor()
	}
	return &Generator{cfg: cfg, log: log, monitor: monitor}
}

func (g *Generator) Monitor() *monitoring.GenerationMonitor { return g.monitor }

// ResolveSeed returns seed, or a fresh time-based seed when it is zero.
func ResolveSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	for {
		if s := rand.New(rand.NewSource(time.Now().UnixNano())).Int63(); s != 0 {
			return s
		}
	}
}

// Synthesizer builds the terrain synthesizer the config describes.
func (g *Generator) Synthesizer(seed int64) (*terrain.Synthesizer, error) {
	return terrain.NewSynthesizer(seed, terrain.Options{
		HeightLayers:      g.cfg.Noise.Height,
		MoistureLayers:    g.cfg.Noise.Moisture,
		TemperatureLayers: g.cfg.Noise.Temperature,
		Backend:           noise.Backend(g.cfg.World.NoiseBackend),
		Rules:             BiomeRules(g.cfg.Biomes),
		ForestTint:        g.cfg.Biomes.ForestTint,
		Workers:           g.cfg.World.Workers,
		Logger:            g.log,
	})
}

// Generate synthesizes a world for seed at the configured size and scatters
// settlements over it. Settlements are placed before the world is returned,
// so nothing else can observe the colour grid mid-mutation.
func (g *Generator) Generate(ctx context.Context, seed int64) (*snapshot.World, error) {
	synth, err := g.Synthesizer(seed)
	if err != nil {
		return nil, fmt.Errorf("generate world: %w", err)
	}

	width, height := g.cfg.GetMapWidth(), g.cfg.GetMapHeight()
	timer := g.monitor.StartSynthesis()
	w, err := synth.Synthesize(ctx, width, height)
	if err != nil {
		return nil, fmt.Errorf("generate world: %w", err)
	}
	took := timer.EndSynthesis(width * height)

	sc := g.cfg.Settlements
	placer := settlement.NewPlacer(seed+settlementSeedOffset, settlement.Options{
		HabitableMin: sc.HabitableMin,
		HabitableMax: sc.HabitableMax,
		Color:        g.cfg.GetSettlementColor(),
		Logger:       g.log,
	})
	attempts := placer.Count(sc.CountMin, sc.CountMax)
	sites := placer.PlaceOnWorld(w, attempts)
	g.monitor.RecordSettlements(attempts, len(sites))

	g.log.Info("world generated",
		"seed", seed,
		"width", width,
		"height", height,
		"backend", g.cfg.World.NoiseBackend,
		"settlements", len(sites),
		"attempts", attempts,
		"took", took,
	)
	return w, nil
}

// BiomeRules converts configured rules to the terrain table. An empty list
// returns nil, which selects the built-in table. Constant bands whose name
// starts with "forest" take the moisture tint.
func BiomeRules(bc config.BiomeConfig) []terrain.BiomeRule {
	if len(bc.Rules) == 0 {
		return nil
	}
	rules := make([]terrain.BiomeRule, 0, len(bc.Rules))
	for _, r := range bc.Rules {
		from, to := config.RGB(r.From), config.RGB(r.To)
		rules = append(rules, terrain.BiomeRule{
			Name:     r.Name,
			Max:      r.Max,
			From:     from,
			To:       to,
			Origin:   r.Origin,
			Span:     r.Span,
			Strength: r.Strength,
			Forest:   from == to && strings.HasPrefix(r.Name, "forest"),
		})
	}
	return rules
}
