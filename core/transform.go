package core

import "time"

// transformSync holds the debounce state of handle repositioning. It is
// per-attachment, shared by both handles: a burst of selection changes is
// coalesced into a single visible jump instead of visual jitter.
type transformSync struct {
	window      time.Duration
	lastApplied time.Time
	cancelTimer func()
}

// handleAnchor converts a selection endpoint to overlay space: the widget's
// coordinate conversion plus the current scroll offset, minus the gutter, so
// the result lives in the same coordinate space as the handles' positioned
// container.
func (c *Controller) handleAnchor(pos Position) (Point, bool) {
	pt, ok := c.widget.PointAt(pos)
	if !ok {
		return Point{}, false
	}
	scroll := c.widget.ScrollOffset()
	return Point{
		X: pt.X + scroll.X - c.metrics.GutterWidth,
		Y: pt.Y + scroll.Y,
	}, true
}

// applyTransform repositions both handles for sel and makes them fully
// visible. A collapsed selection rotates both lower indicators into the
// shared caret orientation; otherwise the handles keep their distinct
// default orientations.
//
// Endpoints the widget cannot currently resolve (mid-update, off-screen)
// leave the transform untouched; the next selection change retries.
func (c *Controller) applyTransform(sel Range) {
	startPt, okStart := c.handleAnchor(sel.Start)
	endPt, okEnd := c.handleAnchor(sel.End)
	if !okStart || !okEnd {
		return
	}

	c.start.Offset = startPt
	c.end.Offset = endPt
	c.start.Opacity = 1
	c.end.Opacity = 1

	if sel.IsEmpty() {
		c.start.Orientation = OrientCaret
		c.end.Orientation = OrientCaret
	} else {
		c.start.Orientation = OrientLeft
		c.end.Orientation = OrientRight
	}
}

// requestSync applies the transform for sel, debounced. A request arriving
// within the sync window of the last applied transform hides both handles
// and re-arms a single timer for the window remainder; the timer applies the
// widget's selection as it stands when it fires, so the latest of a burst
// wins. A request arriving after the window applies immediately and resets
// the window.
func (c *Controller) requestSync(sel Range) {
	if c.transform.cancelTimer != nil {
		c.transform.cancelTimer()
		c.transform.cancelTimer = nil
	}

	now := c.opts.Clock()
	elapsed := now.Sub(c.transform.lastApplied)
	if elapsed >= c.transform.window {
		c.transform.lastApplied = now
		c.applyTransform(sel)
		return
	}

	c.start.Opacity = 0
	c.end.Opacity = 0

	remaining := c.transform.window - elapsed
	c.transform.cancelTimer = c.opts.Scheduler.AfterFunc(remaining, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.disposed {
			return
		}
		c.transform.cancelTimer = nil
		c.transform.lastApplied = c.opts.Clock()
		c.applyTransform(c.widget.Selection())
	})
}
