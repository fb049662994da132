package core

import "math"

// Axis selects the direction an edge probe and scroll step operate on.
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

// ScrollStep decides whether a drag point is crossing the visible edge along
// one axis and, if so, returns a bounded scroll adjustment.
//
// resolve reports whether the widget can produce a content target at a
// point. The touch point is sampled one unit before and one unit after along
// the axis (unit is the line height vertically, the character width
// horizontally). When exactly one sample fails to resolve, the content past
// that edge is off-screen and the scroll offset steps one unit toward it,
// clamped to [0, extent]. When both or neither sample resolves, or the axis
// is already at its limit, no step occurs.
//
// The returned delta is a single discrete step; the drag sampler calls this
// once per tick, producing a repeated nudge while a finger rests at an edge.
func ScrollStep(resolve func(Point) bool, touch Point, axis Axis, unit, scroll, extent float64) float64 {
	if unit <= 0 {
		return 0
	}

	before := touch
	after := touch
	switch axis {
	case Vertical:
		before.Y -= unit
		after.Y += unit
	case Horizontal:
		before.X -= unit
		after.X += unit
	}

	beforeOK := resolve(before)
	afterOK := resolve(after)

	switch {
	case !beforeOK && afterOK && scroll > 0:
		// Content before the touch point is off-screen: step back,
		// never past the start.
		return -math.Min(unit, scroll)

	case beforeOK && !afterOK && scroll < extent:
		// Content after the touch point is off-screen: step forward,
		// never past the end.
		return math.Min(unit, extent-scroll)
	}

	return 0
}
