package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/l1jgo/battlecore/internal/world"
)

func pt(x, y int32) world.Point { return world.Point{X: x, Y: y} }

func TestLinePoints(t *testing.T) {
	got := LinePoints(pt(0, 0), pt(10, 0), 5)
	assert.Equal(t, []world.Point{pt(0, 0), pt(1, 0), pt(2, 0), pt(3, 0), pt(4, 0), pt(5, 0)}, got)

	assert.Nil(t, LinePoints(pt(3, 3), pt(3, 3), 5))

	diag := LinePoints(pt(0, 0), pt(-4, -4), 2)
	assert.Equal(t, []world.Point{pt(0, 0), pt(-1, -1), pt(-2, -2)}, diag)

	// 斜率 1/2：0.5 以偶數捨入
	shallow := LinePoints(pt(0, 0), pt(4, 2), 4)
	assert.Equal(t, []world.Point{pt(0, 0), pt(1, 0), pt(2, 1), pt(3, 2), pt(4, 2)}, shallow)
}

func TestLinePointsPastEnd(t *testing.T) {
	got := LinePoints(pt(0, 0), pt(2, 0), 4)
	assert.Len(t, got, 5)
	assert.Equal(t, pt(4, 0), got[4])
}

func TestInArc(t *testing.T) {
	from, end := pt(0, 0), pt(10, 0)
	tests := []struct {
		name   string
		target world.Point
		rng    int32
		want   bool
	}{
		{"ahead", pt(10, 5), 12, true},
		{"behind", pt(-10, 0), 12, false},
		{"beside", pt(0, 5), 12, true},
		{"range is strict", pt(5, 0), 5, false},
		{"just inside", pt(4, 0), 5, true},
		{"wraps below the axis", pt(3, -3), 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InArc(from, end, tt.target, tt.rng))
		})
	}
}
