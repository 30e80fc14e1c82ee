package mathutil

import (
	"math"
	"testing"
)

func TestIntMax(t *testing.T) {
	if IntMax(3, -2) != 3 {
		t.Error("IntMax should return the larger value")
	}
	if IntMax(-7, 0) != 0 {
		t.Error("IntMax should return the larger value")
	}
}

func TestClamp01(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{7, 1},
		{math.NaN(), 0},
	}
	for _, c := range cases {
		if got := Clamp01(c.in); got != c.want {
			t.Errorf("Clamp01(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLerpChannel(t *testing.T) {
	if got := LerpChannel(10, 20, 0.5); got != 15 {
		t.Errorf("Expected 15, got %d", got)
	}
	// Truncation toward zero on a descending ramp.
	if got := LerpChannel(20, 10, 0.55); got != 14 {
		t.Errorf("Expected 14, got %d", got)
	}
	if got := LerpChannel(0, 255, 1); got != 255 {
		t.Errorf("Expected 255, got %d", got)
	}
}
