package daycycle

import (
	"math"
	"testing"
	"time"
)

func TestNightProgress(t *testing.T) {
	tests := []struct {
		hour float64
		want float64
	}{
		{0, 1},
		{5.9, 1},
		{6, 1},
		{7, 0.5},
		{8, 0},
		{12, 0},
		{17.99, 0},
		{18, 0},
		{19, 0.5},
		{20, 1},
		{23.5, 1},
		{24, 1},
		{-5, 0.5},
	}
	for _, tt := range tests {
		if got := NightProgress(tt.hour); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NightProgress(%v) = %v, want %v", tt.hour, got, tt.want)
		}
	}
}

func TestOverlayAlphaBounded(t *testing.T) {
	for m := 0; m < 24*60; m++ {
		a := OverlayAlpha(float64(m) / 60)
		if a > MaxAlpha {
			t.Fatalf("alpha %d at minute %d exceeds %d", a, m, MaxAlpha)
		}
	}
	if got := OverlayAlpha(19); got != 90 {
		t.Errorf("alpha at 19:00 = %d, want 90", got)
	}
	if got := OverlayColor(22); got.R != 10 || got.G != 10 || got.B != 40 || got.A != MaxAlpha {
		t.Errorf("overlay at 22:00 = %v", got)
	}
}

func TestClockAdvanceWraps(t *testing.T) {
	c := NewClock(23, 60)
	c.Advance(2 * time.Minute)

	if got := c.Hour(); math.Abs(got-1) > 1e-9 {
		t.Errorf("hour = %v, want 1", got)
	}
	if got := c.Elapsed(); got != 2*time.Minute {
		t.Errorf("elapsed = %v", got)
	}
	if got := c.String(); got != "01:00:00" {
		t.Errorf("String() = %q", got)
	}
}

func TestClockEdgeCases(t *testing.T) {
	t.Run("negative start wraps", func(t *testing.T) {
		if got := NewClock(-1, 1).String(); got != "23:00:00" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("zero multiplier freezes", func(t *testing.T) {
		c := NewClock(12, 0)
		c.Advance(time.Hour)
		if c.GameTime() != 12*time.Hour {
			t.Errorf("game time moved to %v", c.GameTime())
		}
		if c.Elapsed() != time.Hour {
			t.Errorf("elapsed should still advance, got %v", c.Elapsed())
		}
	})

	t.Run("restore", func(t *testing.T) {
		c := NewClock(0, 1)
		c.Restore(30*time.Hour, 5*time.Second)
		if c.GameTime() != 6*time.Hour || c.Elapsed() != 5*time.Second {
			t.Errorf("restored to %v / %v", c.GameTime(), c.Elapsed())
		}
	})
}

func TestShaderThrottlesToGameMinutes(t *testing.T) {
	c := NewClock(12, 1)
	s := NewShader(c)

	if !s.Update() {
		t.Fatal("first update should compute")
	}
	if s.Update() {
		t.Error("no time passed, update should be skipped")
	}
	c.Advance(30 * time.Second)
	if s.Update() {
		t.Error("half a minute should not recompute")
	}
	c.Advance(31 * time.Second)
	if !s.Update() {
		t.Error("a full minute should recompute")
	}
	if s.Updates() != 2 {
		t.Errorf("updates = %d, want 2", s.Updates())
	}
	if s.Color().A != 0 {
		t.Errorf("noon overlay alpha = %d", s.Color().A)
	}
}

func TestSetMultiplier(t *testing.T) {
	c := NewClock(0, 1)
	c.SetMultiplier(3600)
	c.Advance(time.Second)
	if c.GameTime() != time.Hour {
		t.Errorf("game time = %v, want 1h", c.GameTime())
	}
	c.SetMultiplier(-2)
	if c.Multiplier() != 0 {
		t.Errorf("negative multiplier should clamp to 0, got %v", c.Multiplier())
	}
}
