package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	billy "gopkg.in/src-d/go-billy.v4"
)

// ErrNotFound is returned when a save file does not exist.
var ErrNotFound = errors.New("save file not found")

// Store persists worlds and game states as JSON on a billy filesystem.
type Store struct {
	fs  billy.Filesystem
	log *slog.Logger
}

// NewStore creates a Store rooted at fs. A nil logger uses slog.Default().
func NewStore(fs billy.Filesystem, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{fs: fs, log: log}
}

// Exists reports whether name is present.
func (s *Store) Exists(name string) bool {
	_, err := s.fs.Stat(name)
	return err == nil
}

// SaveWorld writes w to name atomically.
func (s *Store) SaveWorld(name string, w *World) error {
	if err := w.Validate(); err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	if err := s.atomicWriteJSON(name, w); err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	s.log.Info("saved world", "file", name, "width", w.Width, "height", w.Height, "seed", w.Seed)
	return nil
}

// LoadWorld reads a world from name.
func (s *Store) LoadWorld(name string) (*World, error) {
	var w World
	if err := s.readJSON(name, &w); err != nil {
		return nil, fmt.Errorf("load world: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("load world %s: %w", name, err)
	}
	s.log.Info("loaded world", "file", name, "width", w.Width, "height", w.Height)
	return &w, nil
}

// SaveGame writes the game state to name atomically.
func (s *Store) SaveGame(name string, gs *GameState) error {
	if gs.World == nil {
		return fmt.Errorf("save game: no world")
	}
	if err := gs.World.Validate(); err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	if err := s.atomicWriteJSON(name, gs); err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	s.log.Info("saved game", "file", name, "game_time", gs.GameTime)
	return nil
}

// LoadGame reads a game state from name.
func (s *Store) LoadGame(name string) (*GameState, error) {
	var gs GameState
	if err := s.readJSON(name, &gs); err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	if gs.World == nil {
		return nil, fmt.Errorf("load game %s: no world", name)
	}
	if err := gs.World.Validate(); err != nil {
		return nil, fmt.Errorf("load game %s: %w", name, err)
	}
	s.log.Info("loaded game", "file", name, "game_time", gs.GameTime)
	return &gs, nil
}

func (s *Store) readJSON(name string, v any) error {
	f, err := s.fs.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// atomicWriteJSON marshals v to JSON and writes it using a temp file + rename.
func (s *Store) atomicWriteJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')

	tmp := name + ".tmp"
	f, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		s.fs.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, name); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
