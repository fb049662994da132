package core

// TouchTarget identifies what a touch landed on. Hit testing is the host's
// job (in a browser it falls out of DOM event targets; terminal hosts test
// against the handle and menu boxes).
type TouchTarget int

const (
	TargetContent TouchTarget = iota
	TargetStartHandle
	TargetEndHandle
	TargetStartCaret // the start handle's inner caret sub-element
	TargetEndCaret   // the end handle's inner caret sub-element
	TargetMenu
)

// Touch is one touch point of an ongoing gesture.
type Touch struct {
	ID    int
	Point Point
}

// dragSession is the ephemeral state of one active handle drag. At most one
// session exists per handle; a touch-start on a handle that already has a
// live session is rejected.
type dragSession struct {
	handle        *Handle
	touchID       int
	last          Point // latest known touch coordinates
	initial       Range // selection as it stood at drag start
	initialEmpty  bool
	cancelSampler func()
}

// TouchStart begins a gesture. The first touch anywhere in the container
// shows the handles; a touch on a handle opens a drag session; a touch on a
// handle's caret sub-element runs the word-select-by-tap gesture.
func (c *Controller) TouchStart(target TouchTarget, t Touch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}

	c.showHandlesLocked()

	switch target {
	case TargetStartHandle:
		c.startDrag(c.start, t)
	case TargetEndHandle:
		c.startDrag(c.end, t)
	case TargetStartCaret:
		c.wordTap(c.start)
	case TargetEndCaret:
		c.wordTap(c.end)
	}
}

// TouchMove records the gesture's latest coordinates. Motion between sampler
// ticks is coalesced: only the newest point matters.
func (c *Controller) TouchMove(t Touch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.sessionByTouch(t.ID); s != nil {
		s.last = t.Point
	}
}

// TouchEnd finishes the gesture. The sampler is canceled before any other
// work so a stray tick cannot mutate the selection after release. When a
// non-empty selection remains, the menu opens anchored to the nearer handle.
func (c *Controller) TouchEnd(t Touch) {
	c.finishTouch(t)
}

// TouchCancel is the abort path of TouchEnd; it runs the same teardown.
func (c *Controller) TouchCancel(t Touch) {
	c.finishTouch(t)
}

func (c *Controller) finishTouch(t Touch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.sessionByTouch(t.ID)
	if s == nil {
		return
	}
	s.cancelSampler()
	delete(c.sessions, s.handle.Kind)

	if c.disposed {
		return
	}
	if sel := c.widget.Selection(); !sel.IsEmpty() {
		c.openMenuByTouch(t.Point)
	}
}

func (c *Controller) sessionByTouch(id int) *dragSession {
	for _, s := range c.sessions {
		if s.touchID == id {
			return s
		}
	}
	return nil
}

func (c *Controller) startDrag(h *Handle, t Touch) {
	if _, active := c.sessions[h.Kind]; active {
		// Overlapping touch sequences on one handle: the first session
		// keeps running, the new touch is ignored.
		return
	}

	sel := c.widget.Selection()
	s := &dragSession{
		handle:       h,
		touchID:      t.ID,
		last:         t.Point,
		initial:      sel,
		initialEmpty: sel.IsEmpty(),
	}
	c.sessions[h.Kind] = s
	s.cancelSampler = c.opts.Scheduler.Every(c.opts.SamplerInterval, func() {
		c.sampleDrag(h.Kind)
	})
}

// sampleDrag is one sampler tick of an active drag: nudge the scroll offset
// when the touch point sits at a viewport edge, then move the dragged
// selection endpoint to the position under the finger.
func (c *Controller) sampleDrag(kind HandleKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[kind]
	if !ok || c.disposed {
		return
	}

	c.autoScroll(s.last)

	// Aim half a line above the fingertip; the finger itself occludes the
	// target line.
	probe := Point{X: s.last.X, Y: s.last.Y - c.metrics.LineHeight/2}
	pos, ok := c.widget.PositionAt(probe)
	if !ok {
		return
	}

	var sel Range
	switch {
	case s.initialEmpty:
		sel = Range{Start: pos, End: pos}
	case s.handle.Kind == StartHandle:
		sel = NewRange(pos, s.initial.End)
	default:
		sel = NewRange(s.initial.Start, pos)
	}
	c.widget.SetSelection(sel)
}

// autoScroll applies one edge auto-scroll step on each axis.
func (c *Controller) autoScroll(touch Point) {
	resolve := func(p Point) bool {
		_, ok := c.widget.PositionAt(p)
		return ok
	}

	scroll := c.widget.ScrollOffset()
	extent := c.widget.ScrollExtent()

	dy := ScrollStep(resolve, touch, Vertical, c.metrics.LineHeight, scroll.Y, extent.Y)
	dx := ScrollStep(resolve, touch, Horizontal, c.metrics.CharWidth, scroll.X, extent.X)
	if dx == 0 && dy == 0 {
		return
	}
	c.widget.SetScrollOffset(Point{X: scroll.X + dx, Y: scroll.Y + dy})
}

// wordTap implements word-select-by-tap on a handle's caret sub-element:
// with a collapsed selection, a second tap within the tap window expands the
// selection to the word boundaries at the caret. A tap with no qualifying
// prior tap only records its timestamp.
func (c *Controller) wordTap(h *Handle) {
	now := c.opts.Clock()
	prev := h.lastTap
	h.lastTap = now

	sel := c.widget.Selection()
	if !sel.IsEmpty() {
		return
	}
	if prev.IsZero() || now.Sub(prev) > wordTapWindow {
		return
	}

	word, ok := c.widget.WordAt(sel.Start)
	if !ok {
		return
	}
	c.widget.SetSelection(word)
}
