// Package daycycle keeps the in-game clock and derives the night overlay from it.
package daycycle

import (
	"fmt"
	"image/color"
	"math"
	"sync"
	"time"
)

const (
	Day        = 24 * time.Hour
	MaxAlpha   = 180
	dawnStart  = 6.0
	duskStart  = 18.0
	fadeLength = 2.0
)

// NightColor is the overlay tint before alpha is applied.
var NightColor = color.RGBA{10, 10, 40, 0}

// Clock advances game time at a multiple of real time and wraps at midnight.
// It is safe for concurrent use.
type Clock struct {
	mu         sync.RWMutex
	gameTime   time.Duration
	elapsed    time.Duration
	multiplier float64
}

// NewClock starts at startHour (wrapped into [0, 24)). A negative multiplier
// freezes the clock.
func NewClock(startHour, multiplier float64) *Clock {
	c := &Clock{multiplier: math.Max(0, multiplier)}
	c.gameTime = wrap(time.Duration(startHour * float64(time.Hour)))
	return c
}

func wrap(d time.Duration) time.Duration {
	d %= Day
	if d < 0 {
		d += Day
	}
	return d
}

// Advance moves the clock forward by real wall time.
func (c *Clock) Advance(real time.Duration) {
	if real <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elapsed += real
	c.gameTime = wrap(c.gameTime + time.Duration(float64(real)*c.multiplier))
}

// GameTime is the time of day as an offset from midnight.
func (c *Clock) GameTime() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameTime
}

// Elapsed is the total real time fed to Advance.
func (c *Clock) Elapsed() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.elapsed
}

func (c *Clock) Hour() float64 {
	return c.GameTime().Hours()
}

func (c *Clock) Multiplier() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.multiplier
}

func (c *Clock) SetMultiplier(m float64) {
	c.mu.Lock()
	c.multiplier = math.Max(0, m)
	c.mu.Unlock()
}

// Restore resets the clock to saved values.
func (c *Clock) Restore(gameTime, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameTime = wrap(gameTime)
	c.elapsed = max(0, elapsed)
}

// String formats the time of day as HH:MM:SS.
func (c *Clock) String() string {
	t := c.GameTime()
	h := int(t / time.Hour)
	m := int(t % time.Hour / time.Minute)
	s := int(t % time.Minute / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// NightProgress returns how dark it is at hour, from 0 (day) to 1 (night).
// Darkness fades in over 18:00-20:00 and out over 06:00-08:00.
func NightProgress(hour float64) float64 {
	hour = math.Mod(hour, 24)
	if hour < 0 {
		hour += 24
	}
	if hour >= dawnStart && hour < duskStart {
		if hour < dawnStart+fadeLength {
			return 1 - math.Min((hour-dawnStart)/fadeLength, 1)
		}
		return 0
	}
	if hour >= duskStart {
		return math.Min((hour-duskStart)/fadeLength, 1)
	}
	return math.Min((hour+dawnStart)/fadeLength, 1)
}

// OverlayAlpha scales NightProgress to [0, MaxAlpha], truncating.
func OverlayAlpha(hour float64) uint8 {
	return uint8(NightProgress(hour) * MaxAlpha)
}

// OverlayColor is NightColor with the alpha for hour. The result is not
// premultiplied; callers drawing with ebiten scale it through ColorScale.
func OverlayColor(hour float64) color.RGBA {
	c := NightColor
	c.A = OverlayAlpha(hour)
	return c
}
