// Package viewer is the ebiten front end: it shows the world filling in from
// the centre, the day/night overlay and a small HUD.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"sanguigore/internal/canvas"
	"sanguigore/internal/config"
	"sanguigore/internal/daycycle"
	"sanguigore/internal/palette"
	"sanguigore/internal/reveal"
	"sanguigore/internal/snapshot"
	"sanguigore/internal/threading/monitoring"
	"sanguigore/internal/world"
)

// Viewer implements ebiten.Game. Update and Draw run on the ebiten goroutine;
// generation, saving and the reveal run in background goroutines and hand
// results over under mu.
type Viewer struct {
	cfg     *config.Config
	mgr     *world.Manager
	gen     *world.Generator
	log     *slog.Logger
	monitor *monitoring.GenerationMonitor
	shader  *daycycle.Shader

	mu           sync.Mutex
	canvas       *canvas.Canvas
	reveal       *reveal.Controller
	cancelReveal context.CancelFunc
	revealDone   chan struct{}
	busy         bool
	status       string
	layer        palette.Layer // written on the ebiten goroutine under mu

	// ebiten goroutine only
	mapImg     *ebiten.Image
	section    *snapshot.World
	sectionImg *ebiten.Image
}

func New(cfg *config.Config, mgr *world.Manager, gen *world.Generator, log *slog.Logger) *Viewer {
	if log == nil {
		log = slog.Default()
	}
	return &Viewer{
		cfg:     cfg,
		mgr:     mgr,
		gen:     gen,
		log:     log,
		monitor: gen.Monitor(),
		shader:  daycycle.NewShader(mgr.Clock()),
		layer:   palette.Biome,
	}
}

// Start resumes the saved game if there is one, otherwise generates a world
// and begins revealing it.
func (v *Viewer) Start(ctx context.Context) error {
	w, loaded, err := v.mgr.LoadOrGenerate(ctx, v.cfg.World.Seed)
	if err != nil {
		return err
	}
	if loaded {
		v.setStatus("Resumed saved game")
		return v.show(w, true)
	}
	v.setStatus(fmt.Sprintf("Generated world, seed %d", w.Seed))
	return v.show(w, false)
}

// show replaces the displayed world. A full show uncovers everything at once;
// otherwise a reveal is started from the centre.
func (v *Viewer) show(w *snapshot.World, full bool) error {
	v.stopReveal()

	v.mu.Lock()
	layer := v.layer
	v.mu.Unlock()

	cv, err := canvas.New(w, layer)
	if err != nil {
		return err
	}
	if full {
		cv.RevealAll()
	}

	v.mu.Lock()
	v.canvas = cv
	v.mu.Unlock()

	if full {
		return nil
	}
	return v.startReveal(w, cv)
}

func (v *Viewer) startReveal(w *snapshot.World, cv *canvas.Canvas) error {
	c, err := v.gen.StartReveal(w, func(p reveal.Progress) {
		cv.Reveal(p.Batch)
		switch p.State {
		case reveal.Completed:
			v.setStatus("World generation complete")
		case reveal.Cancelled:
			v.setStatus(fmt.Sprintf("Generation cancelled at %d/%d", p.Visited, p.Total))
		}
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	v.mu.Lock()
	v.reveal = c
	v.cancelReveal = cancel
	v.revealDone = done
	v.mu.Unlock()

	go func() {
		defer close(done)
		if err := c.Run(ctx); err != nil {
			v.log.Error("reveal stopped", "err", err)
		}
	}()
	return nil
}

// stopReveal cancels the running reveal, if any, and waits for it to settle.
func (v *Viewer) stopReveal() {
	v.mu.Lock()
	cancel, done := v.cancelReveal, v.revealDone
	v.cancelReveal, v.revealDone = nil, nil
	v.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// requestCancel asks the running reveal to stop without waiting.
func (v *Viewer) requestCancel() {
	v.mu.Lock()
	c := v.reveal
	v.mu.Unlock()
	if c == nil {
		return
	}
	if err := c.Cancel(); err != nil {
		v.log.Debug("cancel ignored", "err", err)
		return
	}
	v.setStatus("Cancelling generation...")
}

// background runs job off the ebiten goroutine, one job at a time.
func (v *Viewer) background(name string, job func() error) {
	v.mu.Lock()
	if v.busy {
		v.mu.Unlock()
		return
	}
	v.busy = true
	v.mu.Unlock()

	go func() {
		err := job()
		v.mu.Lock()
		v.busy = false
		v.mu.Unlock()
		if err != nil {
			v.log.Error(name+" failed", "err", err)
			v.setStatus(fmt.Sprintf("%s failed: %v", name, err))
		}
	}()
}

func (v *Viewer) regenerate() {
	v.background("regenerate", func() error {
		v.stopReveal()
		v.setStatus("Generating...")
		w, err := v.mgr.Regenerate(context.Background(), 0)
		if err != nil {
			return err
		}
		v.setStatus(fmt.Sprintf("Generated world, seed %d", w.Seed))
		return v.show(w, false)
	})
}

func (v *Viewer) save() {
	v.background("save", func() error {
		if err := v.mgr.SaveGame(); err != nil {
			return err
		}
		v.setStatus("Game saved")
		return nil
	})
}

func (v *Viewer) load() {
	v.background("load", func() error {
		v.stopReveal()
		if err := v.mgr.LoadGame(); err != nil {
			return err
		}
		v.setStatus("Game loaded")
		return v.show(v.mgr.Current(), true)
	})
}

func (v *Viewer) export() {
	v.background("export", func() error {
		if err := v.mgr.ExportWorld(); err != nil {
			return err
		}
		v.setStatus("World exported")
		return nil
	})
}

func (v *Viewer) setStatus(s string) {
	v.mu.Lock()
	v.status = s
	v.mu.Unlock()
}

func (v *Viewer) currentCanvas() *canvas.Canvas {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.canvas
}

// Close stops any background reveal. Call it after ebiten.RunGame returns.
func (v *Viewer) Close() {
	v.stopReveal()
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return v.cfg.GetScreenWidth(), v.cfg.GetScreenHeight()
}
