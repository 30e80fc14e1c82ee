package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"sanguigore/internal/config"
	"sanguigore/internal/snapshot"
	"sanguigore/internal/viewer"
	"sanguigore/internal/world"

	"github.com/hajimehoshi/ebiten/v2"
	"gopkg.in/src-d/go-billy.v4/osfs"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config")
	seed := flag.Int64("seed", 0, "world seed (0 uses the config seed, or a random one)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	ensureRuntimeCWD(*configPath)

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := config.DefaultConfig()
	if _, err := os.Stat(*configPath); err == nil {
		cfg = config.MustLoadConfig(*configPath)
	} else {
		log.Printf("Warning: %s not found, using defaults", *configPath)
	}
	if *seed != 0 {
		cfg.World.Seed = *seed
	}

	store := snapshot.NewStore(osfs.New(cfg.Storage.SaveDir), logger)
	gen := world.NewGenerator(cfg, logger, nil)
	mgr := world.NewManager(cfg, gen, store, logger)

	ebiten.SetWindowSize(cfg.GetScreenWidth(), cfg.GetScreenHeight())
	ebiten.SetWindowTitle(cfg.Display.WindowTitle)
	if cfg.Display.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	v := viewer.New(cfg, mgr, gen, logger)
	if err := v.Start(context.Background()); err != nil {
		log.Fatal(err)
	}
	defer v.Close()

	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}

// ensureRuntimeCWD switches to the executable's directory when the config is
// not reachable from the current one, so double-clicked builds find it.
func ensureRuntimeCWD(configPath string) {
	if filepath.IsAbs(configPath) {
		return
	}
	if _, err := os.Stat(configPath); err == nil {
		return
	}
	exe, err := os.Executable()
	if err != nil {
		return
	}
	_ = os.Chdir(filepath.Dir(exe))
}
