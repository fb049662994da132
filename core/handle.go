package core

import "time"

// HandleKind identifies which selection endpoint a handle owns.
type HandleKind int

const (
	StartHandle HandleKind = iota
	EndHandle
)

func (k HandleKind) String() string {
	if k == StartHandle {
		return "start"
	}
	return "end"
}

// Orientation is the rotation of a handle's lower indicator. Handles default
// to asymmetric orientations (start leans left, end leans right); a collapsed
// selection rotates both into the shared caret orientation so the two
// overlapping indicators read as a single caret marker.
type Orientation int

const (
	OrientLeft Orientation = iota
	OrientRight
	OrientCaret
)

// Handle is one of the two draggable markers bound to the ends of the
// current selection. Its offset and opacity are always derived from the
// widget's selection plus scroll offset; it is never a source of truth.
type Handle struct {
	Kind        HandleKind
	Offset      Point // anchor in overlay space (content coordinates)
	Size        Point // bounding box, derived from line height
	Opacity     float64
	Orientation Orientation

	// Word-select-by-tap bookkeeping on the inner caret sub-element.
	lastTap time.Time
}

// Bounds returns the handle's bounding box in overlay space.
func (h *Handle) Bounds() Rect {
	return Rect{Min: h.Offset, Size: h.Size}
}

func newHandle(kind HandleKind) *Handle {
	h := &Handle{Kind: kind, Orientation: OrientLeft}
	if kind == EndHandle {
		h.Orientation = OrientRight
	}
	return h
}

// resize derives the handle's touch target from the current line height.
func (h *Handle) resize(m Metrics) {
	h.Size = Point{X: m.LineHeight, Y: m.LineHeight}
}
