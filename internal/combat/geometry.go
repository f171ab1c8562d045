package combat

import (
	"math"

	"github.com/l1jgo/battlecore/internal/world"
)

// sectorHalfAngle 扇形技能的半角（90 度）。
const sectorHalfAngle = math.Pi / 2

// LinePoints walks from start toward end in max(|dx|,|dy|) equal steps and
// returns the rounded grid points: the origin plus one point per step, for
// distance steps. start == end yields nil.
func LinePoints(start, end world.Point, distance int32) []world.Point {
	if start == end {
		return nil
	}
	dx := float64(end.X - start.X)
	dy := float64(end.Y - start.Y)
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	incX, incY := dx/steps, dy/steps

	x, y := float64(start.X), float64(start.Y)
	points := make([]world.Point, 0, max(distance, 0)+1)
	points = append(points, start)
	for k := int32(0); k < distance; k++ {
		x += incX
		y += incY
		points = append(points, world.Point{
			X: int32(math.RoundToEven(x)),
			Y: int32(math.RoundToEven(y)),
		})
	}
	return points
}

// bearing returns the angle of from→to in [0, 2π).
func bearing(from, to world.Point) float64 {
	r := math.Atan2(float64(to.Y-from.Y), float64(to.X-from.X))
	if r < 0 {
		r += 2 * math.Pi
	}
	return r
}

// InArc reports whether target lies in the sector centred on from→end and
// strictly closer to from than rng.
func InArc(from, end, target world.Point, rng int32) bool {
	delta := math.Abs(bearing(from, end) - bearing(from, target))
	if delta > sectorHalfAngle && delta < 2*math.Pi-sectorHalfAngle {
		return false
	}
	return world.LineLength(from, target) < float64(rng)
}
