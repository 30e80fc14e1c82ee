package mathutil

// IntMax returns the larger of two ints.
func IntMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}
