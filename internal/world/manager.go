package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sanguigore/internal/config"
	"sanguigore/internal/daycycle"
	"sanguigore/internal/snapshot"
)

// ErrNoWorld is returned when an operation needs a world and none is loaded.
var ErrNoWorld = errors.New("no world loaded")

// Manager owns the current world, its clock and the save slot. It is safe for
// concurrent use; the viewer regenerates from a background goroutine.
type Manager struct {
	cfg   *config.Config
	gen   *Generator
	store *snapshot.Store
	clock *daycycle.Clock
	log   *slog.Logger

	mu      sync.RWMutex
	current *snapshot.World
}

func NewManager(cfg *config.Config, gen *Generator, store *snapshot.Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		cfg:   cfg,
		gen:   gen,
		store: store,
		clock: daycycle.NewClock(cfg.DayCycle.StartHour, cfg.DayCycle.TimeMultiplier),
		log:   log,
	}
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

func (m *Manager) Clock() *daycycle.Clock { return m.clock }

// Current returns the loaded world or nil.
func (m *Manager) Current() *snapshot.World {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) setCurrent(w *snapshot.World) {
	m.mu.Lock()
	m.current = w
	m.mu.Unlock()
}

// Regenerate replaces the current world with a fresh one for seed (zero picks
// a random seed) and restarts the clock.
func (m *Manager) Regenerate(ctx context.Context, seed int64) (*snapshot.World, error) {
	w, err := m.gen.Generate(ctx, ResolveSeed(seed))
	if err != nil {
		return nil, err
	}
	m.setCurrent(w)
	m.clock.Restore(hours(m.cfg.DayCycle.StartHour), 0)
	return w, nil
}

// LoadOrGenerate resumes the saved game when one exists and generates a new
// world otherwise. loaded reports which path was taken.
func (m *Manager) LoadOrGenerate(ctx context.Context, seed int64) (w *snapshot.World, loaded bool, err error) {
	if m.store != nil && m.store.Exists(m.cfg.Storage.SaveFile) {
		err := m.LoadGame()
		if err == nil {
			return m.Current(), true, nil
		}
		m.log.Warn("saved game unreadable, generating a new world", "file", m.cfg.Storage.SaveFile, "err", err)
	}
	w, err = m.Regenerate(ctx, seed)
	return w, false, err
}

// SaveGame writes the current world and clock to the save slot.
func (m *Manager) SaveGame() error {
	w := m.Current()
	if w == nil {
		return ErrNoWorld
	}
	return m.store.SaveGame(m.cfg.Storage.SaveFile, &snapshot.GameState{
		World:       w,
		GameTime:    m.clock.GameTime(),
		ElapsedTime: m.clock.Elapsed(),
		TileSize:    m.cfg.GetTileSize(),
	})
}

// LoadGame replaces the current world and clock with the save slot.
func (m *Manager) LoadGame() error {
	gs, err := m.store.LoadGame(m.cfg.Storage.SaveFile)
	if err != nil {
		return err
	}
	if gs.TileSize > 0 && gs.TileSize != m.cfg.GetTileSize() {
		m.log.Info("saved game used a different tile size", "saved", gs.TileSize, "current", m.cfg.GetTileSize())
	}
	m.setCurrent(gs.World)
	m.clock.Restore(gs.GameTime, gs.ElapsedTime)
	return nil
}

// ExportWorld writes the current world, without clocks, to the world file.
func (m *Manager) ExportWorld() error {
	w := m.Current()
	if w == nil {
		return ErrNoWorld
	}
	return m.store.SaveWorld(m.cfg.Storage.WorldFile, w)
}

// SectionAt returns the detailed-map section containing cell (x, y). Sections
// form a grid of section_size squares; one that would run past the map edge
// is shifted back inside.
func (m *Manager) SectionAt(x, y int) (*snapshot.World, error) {
	w := m.Current()
	if w == nil {
		return nil, ErrNoWorld
	}
	if x < 0 || y < 0 || x >= w.Width || y >= w.Height {
		return nil, fmt.Errorf("section at (%d, %d): outside %dx%d map", x, y, w.Width, w.Height)
	}
	size := m.cfg.Display.SectionSize
	return w.SubRegion(x/size*size, y/size*size, size, size)
}
