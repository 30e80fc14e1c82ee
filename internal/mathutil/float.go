package mathutil

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1]. NaN collapses to 0.
func Clamp01(v float64) float64 {
	if v != v {
		return 0
	}
	return Clamp(v, 0, 1)
}

// LerpChannel interpolates one 8-bit colour channel and truncates toward zero,
// matching integer colour math.
func LerpChannel(a, b uint8, t float64) uint8 {
	v := int(float64(a) + (float64(b)-float64(a))*t)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
