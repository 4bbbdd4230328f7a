package geom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/game/geom"
)

func TestRect_Derived(t *testing.T) {
	r := geom.Rect{X: 10, Y: 20, W: 16, H: 8}
	assert.Equal(t, 26.0, r.Right())
	assert.Equal(t, 28.0, r.Bottom())
	assert.Equal(t, 18.0, r.CenterX())
	assert.Equal(t, 24.0, r.CenterY())
}

func TestRect_Overlaps(t *testing.T) {
	a := geom.Rect{X: 0, Y: 0, W: 16, H: 16}
	assert.True(t, a.Overlaps(geom.Rect{X: 8, Y: 8, W: 16, H: 16}))
	assert.False(t, a.Overlaps(geom.Rect{X: 16, Y: 0, W: 16, H: 16}), "touching edges do not overlap")
	assert.False(t, a.Overlaps(geom.Rect{X: 40, Y: 40, W: 4, H: 4}))
}

func TestRect_Within(t *testing.T) {
	caster := geom.Rect{X: 0, Y: 0, W: 16, H: 16}
	adjacent := geom.Rect{X: 16, Y: 0, W: 16, H: 16}
	far := geom.Rect{X: 40, Y: 0, W: 16, H: 16}

	assert.True(t, caster.Within(adjacent, 16))
	assert.False(t, caster.Within(far, 16))
	assert.True(t, caster.Within(far, 32))
	assert.False(t, caster.Within(adjacent, 0))
}

func TestRect_FacingToward(t *testing.T) {
	r := geom.Rect{X: 0, Y: 0, W: 10, H: 10}
	assert.Equal(t, geom.FacingRight, r.FacingToward(geom.Rect{X: 50, Y: 5, W: 10, H: 10}))
	assert.Equal(t, geom.FacingLeft, r.FacingToward(geom.Rect{X: -50, Y: 5, W: 10, H: 10}))
	assert.Equal(t, geom.FacingUp, r.FacingToward(geom.Rect{X: 0, Y: -50, W: 10, H: 10}))
	assert.Equal(t, geom.FacingDown, r.FacingToward(geom.Rect{X: 0, Y: 50, W: 10, H: 10}))
}

func TestRect_StepToward(t *testing.T) {
	r := geom.Rect{X: 0, Y: 0, W: 10, H: 10}
	dx, dy := r.StepToward(geom.Rect{X: 100, Y: 1, W: 10, H: 10}, 2)
	assert.Equal(t, 2.0, dx)
	assert.Equal(t, 1.0, dy, "step never overshoots the target axis")
}

func TestValidFacing(t *testing.T) {
	assert.True(t, geom.ValidFacing(geom.FacingUp))
	assert.False(t, geom.ValidFacing("diagonal"))
}

// Property: Within is symmetric for equal-sized boxes.
func TestProperty_WithinSymmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := geom.Rect{X: rapid.Float64Range(-500, 500).Draw(rt, "ax"), Y: rapid.Float64Range(-500, 500).Draw(rt, "ay"), W: 16, H: 16}
		b := geom.Rect{X: rapid.Float64Range(-500, 500).Draw(rt, "bx"), Y: rapid.Float64Range(-500, 500).Draw(rt, "by"), W: 16, H: 16}
		d := rapid.Float64Range(0, 128).Draw(rt, "d")
		if a.Within(b, d) != b.Within(a, d) {
			rt.Fatalf("Within not symmetric for %v %v d=%v", a, b, d)
		}
	})
}

// Property: StepToward never increases the center distance.
func TestProperty_StepTowardConverges(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := geom.Rect{X: rapid.Float64Range(-500, 500).Draw(rt, "ax"), Y: rapid.Float64Range(-500, 500).Draw(rt, "ay"), W: 16, H: 16}
		b := geom.Rect{X: rapid.Float64Range(-500, 500).Draw(rt, "bx"), Y: rapid.Float64Range(-500, 500).Draw(rt, "by"), W: 16, H: 16}
		dx, dy := a.StepToward(b, rapid.Float64Range(0.5, 8).Draw(rt, "speed"))
		if a.Translate(dx, dy).Distance(b) > a.Distance(b)+1e-9 {
			rt.Fatalf("step moved away from target")
		}
	})
}
