// Package geom provides the axis-aligned rectangle every unit occupies and
// the range, facing and movement queries built on it.
package geom

import "math"

// Facing is the cardinal direction a unit looks toward.
type Facing string

const (
	FacingUp    Facing = "up"
	FacingDown  Facing = "down"
	FacingLeft  Facing = "left"
	FacingRight Facing = "right"
)

// ValidFacing reports whether f is one of the four cardinal facings.
func ValidFacing(f Facing) bool {
	switch f {
	case FacingUp, FacingDown, FacingLeft, FacingRight:
		return true
	}
	return false
}

// Rect is a positioned rectangle in world units. X and Y are the top-left
// corner; Y grows downward.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// CenterX returns the horizontal midpoint.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical midpoint.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Overlaps reports whether r and o share interior area. Touching edges do not
// overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && r.Right() > o.X && r.Y < o.Bottom() && r.Bottom() > o.Y
}

// Expand grows r by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// Within reports whether o lies within distance of r, using the expanded
// box test: r grown by distance must overlap o.
func (r Rect) Within(o Rect, distance float64) bool {
	return r.Expand(distance).Overlaps(o)
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Distance returns the Euclidean distance between centers.
func (r Rect) Distance(o Rect) float64 {
	return math.Hypot(o.CenterX()-r.CenterX(), o.CenterY()-r.CenterY())
}

// FacingToward returns the cardinal facing from r toward o. Ties between the
// axes favour the horizontal facing.
func (r Rect) FacingToward(o Rect) Facing {
	dx := o.CenterX() - r.CenterX()
	dy := o.CenterY() - r.CenterY()
	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			return FacingLeft
		}
		return FacingRight
	}
	if dy < 0 {
		return FacingUp
	}
	return FacingDown
}

// StepToward returns the per-axis displacement that moves r's center toward
// o's center by at most speed on each axis, never overshooting.
func (r Rect) StepToward(o Rect, speed float64) (dx, dy float64) {
	return stepAxis(o.CenterX()-r.CenterX(), speed), stepAxis(o.CenterY()-r.CenterY(), speed)
}

func stepAxis(diff, speed float64) float64 {
	switch {
	case diff > speed:
		return speed
	case diff < -speed:
		return -speed
	default:
		return diff
	}
}
