package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"sanguigore/internal/noise"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all generator and viewer configuration values
type Config struct {
	Display     DisplayConfig    `yaml:"display"`
	World       WorldConfig      `yaml:"world"`
	Noise       NoiseConfig      `yaml:"noise"`
	Biomes      BiomeConfig      `yaml:"biomes"`
	Settlements SettlementConfig `yaml:"settlements"`
	Reveal      RevealConfig     `yaml:"reveal"`
	Storage     StorageConfig    `yaml:"storage"`
	DayCycle    DayCycleConfig   `yaml:"day_cycle"`
}

type DisplayConfig struct {
	ScreenWidth  int    `yaml:"screen_width"`
	ScreenHeight int    `yaml:"screen_height"`
	WindowTitle  string `yaml:"window_title"`
	Resizable    bool   `yaml:"resizable"`
	TileSize     int    `yaml:"tile_size"`    // screen pixels per map cell
	SectionSize  int    `yaml:"section_size"` // cells per detailed-map section
}

type WorldConfig struct {
	Width        int    `yaml:"width"`  // 0 derives from screen_width / tile_size
	Height       int    `yaml:"height"` // 0 derives from screen_height / tile_size
	Seed         int64  `yaml:"seed"`   // 0 picks a random seed at startup
	Workers      int    `yaml:"workers"`
	NoiseBackend string `yaml:"noise_backend"` // "opensimplex" or "perlin"
}

type NoiseConfig struct {
	Height      []noise.Layer `yaml:"height"`
	Moisture    []noise.Layer `yaml:"moisture"`
	Temperature []noise.Layer `yaml:"temperature"`
}

type BiomeConfig struct {
	ForestTint bool              `yaml:"forest_tint"`
	Rules      []BiomeRuleConfig `yaml:"rules"` // empty keeps the built-in table
}

// BiomeRuleConfig describes one height band. Colors are [r, g, b].
type BiomeRuleConfig struct {
	Name     string  `yaml:"name"`
	Max      float64 `yaml:"max"`
	From     [3]int  `yaml:"from"`
	To       [3]int  `yaml:"to"`
	Origin   float64 `yaml:"origin"`
	Span     float64 `yaml:"span"`
	Strength float64 `yaml:"strength"`
}

type SettlementConfig struct {
	CountMin     int     `yaml:"count_min"`
	CountMax     int     `yaml:"count_max"` // exclusive
	HabitableMin float64 `yaml:"habitable_min"`
	HabitableMax float64 `yaml:"habitable_max"` // exclusive
	Color        [3]int  `yaml:"color"`
}

type RevealConfig struct {
	BatchSize int `yaml:"batch_size"`
	PauseMs   int `yaml:"pause_ms"`
}

type StorageConfig struct {
	SaveDir   string `yaml:"save_dir"`
	SaveFile  string `yaml:"save_file"`
	WorldFile string `yaml:"world_file"`
}

type DayCycleConfig struct {
	StartHour      float64 `yaml:"start_hour"`
	TimeMultiplier float64 `yaml:"time_multiplier"`
}

// DefaultConfig returns the stock generator settings
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			ScreenWidth:  1280,
			ScreenHeight: 720,
			WindowTitle:  "Sanguigore - Generated World",
			Resizable:    true,
			TileSize:     2,
			SectionSize:  25,
		},
		World: WorldConfig{
			NoiseBackend: string(noise.BackendOpenSimplex),
		},
		Noise: NoiseConfig{
			Height: []noise.Layer{
				{Frequency: 0.005, Amplitude: 0.6},
				{Frequency: 0.01, Amplitude: 0.3},
				{Frequency: 0.02, Amplitude: 0.2},
				{Frequency: 0.04, Amplitude: 0.1},
			},
			Moisture: []noise.Layer{
				{Frequency: 0.02, Amplitude: 0.5},
				{Frequency: 0.04, Amplitude: 0.3},
				{Frequency: 0.08, Amplitude: 0.2},
			},
			Temperature: []noise.Layer{
				{Frequency: 0.01, Amplitude: 0.5},
				{Frequency: 0.02, Amplitude: 0.3},
				{Frequency: 0.05, Amplitude: 0.2},
			},
		},
		Settlements: SettlementConfig{
			CountMin:     15,
			CountMax:     25,
			HabitableMin: 0.35,
			HabitableMax: 0.6,
			Color:        [3]int{180, 100, 50},
		},
		Reveal: RevealConfig{
			BatchSize: 200,
			PauseMs:   30,
		},
		Storage: StorageConfig{
			SaveDir:   "saves",
			SaveFile:  "saved_game.json",
			WorldFile: "world.json",
		},
		DayCycle: DayCycleConfig{
			StartHour:      12,
			TimeMultiplier: 1,
		},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates the result
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML bytes on top of DefaultConfig and validates the result
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadConfig loads the config or panics
func MustLoadConfig(filename string) *Config {
	cfg, err := LoadConfig(filename)
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return cfg
}

// Validate reports the first configuration error found
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if c.Display.TileSize <= 0 {
		return invalid("display.tile_size must be positive, got %d", c.Display.TileSize)
	}
	if c.Display.SectionSize <= 0 {
		return invalid("display.section_size must be positive, got %d", c.Display.SectionSize)
	}
	if c.World.Width < 0 || c.World.Height < 0 {
		return invalid("world size must not be negative, got %dx%d", c.World.Width, c.World.Height)
	}
	if w, h := c.GetMapWidth(), c.GetMapHeight(); w <= 0 || h <= 0 {
		return invalid("map size must be positive, got %dx%d", w, h)
	}
	if c.World.Workers < 0 {
		return invalid("world.workers must not be negative")
	}
	for name, layers := range map[string][]noise.Layer{
		"noise.height":      c.Noise.Height,
		"noise.moisture":    c.Noise.Moisture,
		"noise.temperature": c.Noise.Temperature,
	} {
		if err := noise.ValidateLayers(layers); err != nil {
			return invalid("%s: %v", name, err)
		}
	}

	prev := 0.0
	for i, r := range c.Biomes.Rules {
		if r.Max <= prev {
			return invalid("biomes.rules[%d] max %.3f does not increase", i, r.Max)
		}
		if r.Span < 0 {
			return invalid("biomes.rules[%d] span is negative", i)
		}
		prev = r.Max
	}
	if len(c.Biomes.Rules) > 0 && prev < 1 {
		return invalid("biomes.rules must cover heights up to 1, last max is %.3f", prev)
	}

	s := c.Settlements
	if s.CountMin < 0 || s.CountMax < s.CountMin {
		return invalid("settlements count range [%d, %d) is empty or negative", s.CountMin, s.CountMax)
	}
	if s.HabitableMax <= s.HabitableMin {
		return invalid("settlements habitable band [%.2f, %.2f) is empty", s.HabitableMin, s.HabitableMax)
	}

	if c.Reveal.BatchSize <= 0 {
		return invalid("reveal.batch_size must be positive, got %d", c.Reveal.BatchSize)
	}
	if c.Reveal.PauseMs < 0 {
		return invalid("reveal.pause_ms must not be negative")
	}
	if c.DayCycle.TimeMultiplier < 0 {
		return invalid("day_cycle.time_multiplier must not be negative")
	}
	return nil
}

func (c *Config) GetScreenWidth() int {
	return c.Display.ScreenWidth
}

func (c *Config) GetScreenHeight() int {
	return c.Display.ScreenHeight
}

func (c *Config) GetTileSize() int {
	return c.Display.TileSize
}

// GetMapWidth returns the map width in cells, derived from the screen when unset
func (c *Config) GetMapWidth() int {
	if c.World.Width > 0 {
		return c.World.Width
	}
	return c.Display.ScreenWidth / c.Display.TileSize
}

// GetMapHeight returns the map height in cells, derived from the screen when unset
func (c *Config) GetMapHeight() int {
	if c.World.Height > 0 {
		return c.World.Height
	}
	return c.Display.ScreenHeight / c.Display.TileSize
}

func (c *Config) GetSettlementColor() color.RGBA {
	return RGB(c.Settlements.Color)
}

// RGB converts a YAML [r, g, b] triple to an opaque color, clamping channels
func RGB(c [3]int) color.RGBA {
	ch := func(v int) uint8 {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint8(v)
	}
	return color.RGBA{R: ch(c[0]), G: ch(c[1]), B: ch(c[2]), A: 255}
}
