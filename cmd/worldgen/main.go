// Command worldgen generates a world without opening a window. It can write
// the world as JSON, export a layer as PNG, cut out a section and replay the
// reveal with progress logging.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"sanguigore/internal/config"
	"sanguigore/internal/palette"
	"sanguigore/internal/reveal"
	"sanguigore/internal/snapshot"
	"sanguigore/internal/world"

	"gopkg.in/src-d/go-billy.v4/osfs"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config")
	seed := flag.Int64("seed", 0, "world seed (0 uses the config seed, or a random one)")
	width := flag.Int("width", 0, "map width in cells (overrides config)")
	height := flag.Int("height", 0, "map height in cells (overrides config)")
	backend := flag.String("noise", "", "noise backend: opensimplex or perlin (overrides config)")
	save := flag.Bool("save", false, "write the world JSON into the configured save dir")
	pngPath := flag.String("png", "", "write the chosen layer as a PNG to this path")
	layerName := flag.String("layer", "biome", "layer for -png: biome, height, moisture or temperature")
	section := flag.String("section", "", "export only the section containing cell x,y")
	doReveal := flag.Bool("reveal", false, "replay the reveal from the centre and log progress")
	pause := flag.Duration("pause", 0, "pause between reveal batches (overrides config)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Printf("Warning: %v, using defaults", err)
		cfg = config.DefaultConfig()
	}
	if *width > 0 {
		cfg.World.Width = *width
	}
	if *height > 0 {
		cfg.World.Height = *height
	}
	if *backend != "" {
		cfg.World.NoiseBackend = *backend
	}
	if *pause > 0 {
		cfg.Reveal.PauseMs = int(pause.Milliseconds())
	} else {
		cfg.Reveal.PauseMs = 0
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	layer, err := palette.ParseLayer(*layerName)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gen := world.NewGenerator(cfg, logger, nil)
	s := *seed
	if s == 0 {
		s = cfg.World.Seed
	}
	w, err := gen.Generate(ctx, world.ResolveSeed(s))
	if err != nil {
		log.Fatal(err)
	}

	if *doReveal {
		if err := replayReveal(ctx, gen, w, logger); err != nil {
			log.Fatal(err)
		}
	}

	out := w
	if *section != "" {
		var x, y int
		if _, err := fmt.Sscanf(*section, "%d,%d", &x, &y); err != nil {
			log.Fatalf("bad -section %q: %v", *section, err)
		}
		size := cfg.Display.SectionSize
		if out, err = w.SubRegion(x/size*size, y/size*size, size, size); err != nil {
			log.Fatal(err)
		}
	}

	if *save {
		store := snapshot.NewStore(osfs.New(cfg.Storage.SaveDir), logger)
		if err := store.SaveWorld(cfg.Storage.WorldFile, out); err != nil {
			log.Fatal(err)
		}
	}

	if *pngPath != "" {
		img, err := palette.Render(out, layer)
		if err != nil {
			log.Fatal(err)
		}
		if err := writePNG(*pngPath, img); err != nil {
			log.Fatal(err)
		}
		logger.Info("wrote image", "path", *pngPath, "layer", layer, "width", out.Width, "height", out.Height)
	}

	for k, v := range gen.Monitor().GetDetailedStats() {
		logger.Debug("stat", "name", k, "value", v)
	}
}

func replayReveal(ctx context.Context, gen *world.Generator, w *snapshot.World, logger *slog.Logger) error {
	start := time.Now()
	c, err := gen.StartReveal(w, func(p reveal.Progress) {
		logger.Debug("reveal progress",
			"visited", p.Visited,
			"total", p.Total,
			"percent", fmt.Sprintf("%.1f", 100*float64(p.Visited)/float64(p.Total)),
		)
	})
	if err != nil {
		return err
	}
	if err := c.Run(ctx); err != nil {
		return err
	}
	logger.Info("reveal finished",
		"state", c.State(),
		"visited", c.VisitedCount(),
		"total", c.Total(),
		"took", time.Since(start),
	)
	return nil
}

func writePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
