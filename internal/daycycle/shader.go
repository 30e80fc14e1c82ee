package daycycle

import (
	"image/color"
	"time"
)

// Shader caches the overlay colour and recomputes it at most once per game
// minute.
type Shader struct {
	clock   *Clock
	last    time.Duration
	color   color.RGBA
	primed  bool
	updates int
}

func NewShader(clock *Clock) *Shader {
	return &Shader{clock: clock}
}

// Update refreshes the cached colour when a game minute has passed and
// reports whether it did.
func (s *Shader) Update() bool {
	now := s.clock.GameTime()
	diff := now - s.last
	if diff < 0 {
		diff = -diff
	}
	if s.primed && diff < time.Minute {
		return false
	}
	s.color = OverlayColor(now.Hours())
	s.last = now
	s.primed = true
	s.updates++
	return true
}

func (s *Shader) Color() color.RGBA { return s.color }

// Updates counts recomputations, mostly for the HUD.
func (s *Shader) Updates() int { return s.updates }
