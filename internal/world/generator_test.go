package world

import (
	"context"
	"image/color"
	"testing"

	"sanguigore/internal/config"
	"sanguigore/internal/reveal"
	"sanguigore/internal/settlement"
	"sanguigore/internal/terrain"
	"sanguigore/internal/threading/monitoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.World.Width = 48
	cfg.World.Height = 32
	cfg.World.Workers = 2
	cfg.Reveal.BatchSize = 64
	cfg.Reveal.PauseMs = 0
	cfg.Display.SectionSize = 10
	return cfg
}

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := testConfig()
	a, err := NewGenerator(cfg, nil, nil).Generate(context.Background(), 99)
	require.NoError(t, err)
	b, err := NewGenerator(cfg, nil, nil).Generate(context.Background(), 99)
	require.NoError(t, err)

	assert.Equal(t, 48, a.Width)
	assert.Equal(t, 32, a.Height)
	assert.Equal(t, a.Colors, b.Colors)
	assert.Equal(t, a.Settlements, b.Settlements)
}

func TestGenerateRecordsMetrics(t *testing.T) {
	mon := monitoring.NewGenerationMonitor()
	g := NewGenerator(testConfig(), nil, mon)

	w, err := g.Generate(context.Background(), 5)
	require.NoError(t, err)

	m := mon.GetCurrentMetrics()
	assert.Equal(t, uint64(1), m.WorldsGenerated)
	assert.Equal(t, uint64(48*32), m.CellsSynthesized)
	assert.GreaterOrEqual(t, m.SettlementAttempts, uint64(settlement.DefaultCountMin))
	assert.Less(t, m.SettlementAttempts, uint64(settlement.DefaultCountMax))
	assert.Equal(t, uint64(len(w.Settlements)), m.SettlementsPlaced)
	assert.LessOrEqual(t, m.SettlementsPlaced, m.SettlementAttempts)
}

func TestSettlementsStampedOnHabitableLand(t *testing.T) {
	cfg := testConfig()
	w, err := NewGenerator(cfg, nil, nil).Generate(context.Background(), 1234)
	require.NoError(t, err)

	for _, p := range w.Settlements {
		h := w.Heights.At(p.X, p.Y)
		assert.GreaterOrEqual(t, h, cfg.Settlements.HabitableMin)
		assert.Less(t, h, cfg.Settlements.HabitableMax)
		assert.Equal(t, cfg.GetSettlementColor(), w.Colors.At(p.X, p.Y))
	}
}

func TestGenerateHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGenerator(testConfig(), nil, nil).Generate(ctx, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBiomeRulesFromConfig(t *testing.T) {
	assert.Nil(t, BiomeRules(config.BiomeConfig{}))

	rules := BiomeRules(config.BiomeConfig{Rules: []config.BiomeRuleConfig{
		{Name: "sea", Max: 0.5, From: [3]int{0, 0, 90}, To: [3]int{0, 0, 200}, Origin: 0, Span: 0.5, Strength: 1},
		{Name: "forest", Max: 1, From: [3]int{0, 120, 0}, To: [3]int{0, 120, 0}},
	}})
	require.Len(t, rules, 2)
	assert.False(t, rules[0].Forest)
	assert.True(t, rules[1].Forest)
	require.NoError(t, terrain.ValidateRules(rules))

	cfg := testConfig()
	cfg.Biomes.Rules = []config.BiomeRuleConfig{
		{Name: "only", Max: 1, From: [3]int{9, 9, 9}, To: [3]int{9, 9, 9}},
	}
	w, err := NewGenerator(cfg, nil, nil).Generate(context.Background(), 8)
	require.NoError(t, err)
	only := color.RGBA{9, 9, 9, 255}
	w.Colors.Each(func(x, y int, c color.RGBA) {
		if c != cfg.GetSettlementColor() {
			assert.Equal(t, only, c, "cell (%d, %d)", x, y)
		}
	})
}

func TestResolveSeed(t *testing.T) {
	assert.Equal(t, int64(17), ResolveSeed(17))
	assert.NotZero(t, ResolveSeed(0))
}

func TestStartRevealCoversWorld(t *testing.T) {
	mon := monitoring.NewGenerationMonitor()
	g := NewGenerator(testConfig(), nil, mon)
	w, err := g.Generate(context.Background(), 21)
	require.NoError(t, err)

	var revealed int
	c, err := g.StartReveal(w, func(p reveal.Progress) { revealed += len(p.Batch) })
	require.NoError(t, err)
	assert.True(t, c.Visited(Center(w)))

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, reveal.Completed, c.State())
	assert.Equal(t, w.Width*w.Height, revealed)

	m := mon.GetCurrentMetrics()
	assert.Equal(t, uint64(w.Width*w.Height), m.CellsRevealed)
	assert.Equal(t, uint64(1), m.RevealsFinished)
	assert.Zero(t, m.RevealsCancelled)
}
