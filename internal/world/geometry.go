package world

import "math"

// Point is a cell coordinate on a map.
type Point struct {
	X, Y int32
}

// Distance returns the grid (Chebyshev) distance between two cells.
func Distance(a, b Point) int32 {
	dx := abs32(a.X - b.X)
	dy := abs32(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// LineLength returns the Euclidean distance between two cells.
func LineLength(a, b Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func abs32(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}
