package core

import (
	"testing"
	"time"
)

// touchAt builds a client-space touch point over the given grid cell,
// nudged a few units in so the half-line-up probe still lands on the row.
func touchAt(w *fakeWidget, row, col int) Point {
	return Point{
		X: w.metrics.GutterWidth + float64(col)*w.metrics.CharWidth + 2,
		Y: float64(row)*w.metrics.LineHeight + 7,
	}
}

func TestDragEndHandleMovesEndEndpoint(t *testing.T) {
	rig := newTestRig(Options{})
	initial := Range{Start: Position{Row: 0, Col: 0}, End: Position{Row: 1, Col: 0}}
	rig.widget.sel = initial

	rig.c.TouchStart(TargetEndHandle, Touch{ID: 7, Point: touchAt(rig.widget, 2, 3)})
	rig.sched.tick()

	want := Range{Start: Position{Row: 0, Col: 0}, End: Position{Row: 2, Col: 3}}
	if rig.widget.sel != want {
		t.Errorf("selection = %+v, want %+v", rig.widget.sel, want)
	}
}

func TestDragStartHandleMovesStartEndpoint(t *testing.T) {
	rig := newTestRig(Options{})
	initial := Range{Start: Position{Row: 0, Col: 2}, End: Position{Row: 3, Col: 4}}
	rig.widget.sel = initial

	rig.c.TouchStart(TargetStartHandle, Touch{ID: 1, Point: touchAt(rig.widget, 2, 1)})
	rig.sched.tick()

	want := Range{Start: Position{Row: 2, Col: 1}, End: Position{Row: 3, Col: 4}}
	if rig.widget.sel != want {
		t.Errorf("selection = %+v, want %+v", rig.widget.sel, want)
	}
}

func TestDragNormalizesWhenCrossingOtherEndpoint(t *testing.T) {
	rig := newTestRig(Options{})
	initial := Range{Start: Position{Row: 0, Col: 0}, End: Position{Row: 1, Col: 0}}
	rig.widget.sel = initial

	// Dragging the end handle above the fixed start endpoint flips the
	// range rather than producing an inverted one.
	rig.c.TouchStart(TargetEndHandle, Touch{ID: 2, Point: touchAt(rig.widget, 1, 0)})
	rig.c.TouchMove(Touch{ID: 2, Point: touchAt(rig.widget, 0, 0)})
	rig.sched.tick()

	sel := rig.widget.sel
	if sel.Start.Row > sel.End.Row {
		t.Errorf("selection not normalized: %+v", sel)
	}
}

func TestDragWithEmptyInitialSelectionMovesCaret(t *testing.T) {
	rig := newTestRig(Options{})
	caret := Position{Row: 0, Col: 1}
	rig.widget.sel = Range{Start: caret, End: caret}

	rig.c.TouchStart(TargetEndHandle, Touch{ID: 3, Point: touchAt(rig.widget, 3, 2)})
	rig.sched.tick()

	want := Range{Start: Position{Row: 3, Col: 2}, End: Position{Row: 3, Col: 2}}
	if rig.widget.sel != want {
		t.Errorf("selection = %+v, want caret %+v", rig.widget.sel, want)
	}
}

func TestTouchMoveCoalescesBetweenTicks(t *testing.T) {
	rig := newTestRig(Options{})
	rig.widget.sel = Range{Start: Position{Row: 0, Col: 0}, End: Position{Row: 1, Col: 0}}

	rig.c.TouchStart(TargetEndHandle, Touch{ID: 4, Point: touchAt(rig.widget, 1, 1)})
	rig.c.TouchMove(Touch{ID: 4, Point: touchAt(rig.widget, 2, 2)})
	rig.c.TouchMove(Touch{ID: 4, Point: touchAt(rig.widget, 3, 5)})
	rig.sched.tick()

	// Only the newest point matters.
	if want := (Position{Row: 3, Col: 5}); rig.widget.sel.End != want {
		t.Errorf("end = %+v, want %+v", rig.widget.sel.End, want)
	}
}

func TestTouchMoveWithUnknownIDIsIgnored(t *testing.T) {
	rig := newTestRig(Options{})
	rig.widget.sel = Range{Start: Position{Row: 0, Col: 0}, End: Position{Row: 1, Col: 0}}

	rig.c.TouchStart(TargetEndHandle, Touch{ID: 5, Point: touchAt(rig.widget, 2, 1)})
	rig.c.TouchMove(Touch{ID: 99, Point: touchAt(rig.widget, 4, 0)})
	rig.sched.tick()

	if want := (Position{Row: 2, Col: 1}); rig.widget.sel.End != want {
		t.Errorf("end = %+v, want %+v (stray touch id must not steer the drag)", rig.widget.sel.End, want)
	}
}

func TestOverlappingSessionOnSameHandleIsRejected(t *testing.T) {
	rig := newTestRig(Options{})
	rig.widget.sel = Range{Start: Position{Row: 0, Col: 0}, End: Position{Row: 1, Col: 0}}

	rig.c.TouchStart(TargetEndHandle, Touch{ID: 6, Point: touchAt(rig.widget, 1, 1)})
	rig.c.TouchStart(TargetEndHandle, Touch{ID: 7, Point: touchAt(rig.widget, 4, 0)})

	rig.c.mu.Lock()
	s := rig.c.sessions[EndHandle]
	rig.c.mu.Unlock()
	if s == nil {
		t.Fatal("no session after touch start")
	}
	if s.touchID != 6 {
		t.Errorf("session touch id = %d, want the first session's 6", s.touchID)
	}
}

func TestTouchEndStopsSampler(t *testing.T) {
	rig := newTestRig(Options{})
	rig.widget.sel = Range{Start: Position{Row: 0, Col: 0}, End: Position{Row: 1, Col: 0}}

	rig.c.TouchStart(TargetEndHandle, Touch{ID: 8, Point: touchAt(rig.widget, 2, 2)})
	rig.sched.tick()
	rig.c.TouchEnd(Touch{ID: 8, Point: touchAt(rig.widget, 2, 2)})

	selAfterEnd := rig.widget.sel
	writes := len(rig.widget.selectionLog)
	rig.sched.tick()

	if rig.widget.sel != selAfterEnd || len(rig.widget.selectionLog) != writes {
		t.Error("sampler tick after release mutated the selection")
	}
}

func TestTouchCancelStopsSampler(t *testing.T) {
	rig := newTestRig(Options{})
	rig.widget.sel = Range{Start: Position{Row: 0, Col: 0}, End: Position{Row: 1, Col: 0}}

	rig.c.TouchStart(TargetEndHandle, Touch{ID: 9, Point: touchAt(rig.widget, 2, 2)})
	rig.c.TouchCancel(Touch{ID: 9, Point: touchAt(rig.widget, 2, 2)})

	writes := len(rig.widget.selectionLog)
	rig.sched.tick()
	if len(rig.widget.selectionLog) != writes {
		t.Error("sampler tick after cancel mutated the selection")
	}
}

func TestReleaseOpensMenuNearNearerHandle(t *testing.T) {
	rig := newTestRig(Options{})
	sel := Range{Start: Position{Row: 0, Col: 0}, End: Position{Row: 4, Col: 0}}
	rig.widget.sel = sel
	rig.c.mu.Lock()
	rig.c.requestSync(sel)
	rig.c.mu.Unlock()

	rig.c.TouchStart(TargetEndHandle, Touch{ID: 10, Point: touchAt(rig.widget, 4, 0)})
	rig.c.TouchEnd(Touch{ID: 10, Point: touchAt(rig.widget, 4, 0)})

	menu := rig.c.MenuState()
	if !menu.Visible {
		t.Fatal("menu should open after releasing a non-empty selection")
	}
	rig.c.mu.Lock()
	anchor := rig.c.menuAnchor
	rig.c.mu.Unlock()
	if anchor != EndHandle {
		t.Errorf("menu anchored to %v, want the nearer end handle", anchor)
	}
}

func TestReleaseTieFavorsStartHandle(t *testing.T) {
	rig := newTestRig(Options{})
	// Both handles at the same spot: a collapsed-then-expanded selection
	// whose endpoints coincide geometrically.
	sel := Range{Start: Position{Row: 2, Col: 2}, End: Position{Row: 2, Col: 2}}
	rig.widget.sel = sel
	rig.c.mu.Lock()
	rig.c.requestSync(sel)
	rig.c.mu.Unlock()

	// Make the selection non-empty at release time without moving handles.
	rig.widget.sel = Range{Start: Position{Row: 2, Col: 2}, End: Position{Row: 2, Col: 3}}

	rig.c.TouchStart(TargetEndHandle, Touch{ID: 11, Point: touchAt(rig.widget, 2, 2)})
	rig.c.TouchEnd(Touch{ID: 11, Point: touchAt(rig.widget, 2, 2)})

	rig.c.mu.Lock()
	anchor := rig.c.menuAnchor
	rig.c.mu.Unlock()
	if anchor != StartHandle {
		t.Errorf("equidistant release anchored to %v, want start handle", anchor)
	}
}

func TestReleaseWithEmptySelectionDoesNotOpenMenu(t *testing.T) {
	rig := newTestRig(Options{})
	caret := Position{Row: 1, Col: 0}
	rig.widget.sel = Range{Start: caret, End: caret}

	rig.c.TouchStart(TargetEndHandle, Touch{ID: 12, Point: touchAt(rig.widget, 1, 0)})
	rig.c.TouchEnd(Touch{ID: 12, Point: touchAt(rig.widget, 1, 0)})

	if rig.c.MenuState().Visible {
		t.Error("menu opened for an empty selection")
	}
}

func TestDragAutoScrollsAtViewportEdge(t *testing.T) {
	rig := newTestRig(Options{})
	rig.widget.scroll = Point{X: 0, Y: 50}
	rig.widget.sel = Range{Start: Position{Row: 6, Col: 0}, End: Position{Row: 8, Col: 0}}

	// Finger resting near the top edge: the sample one line above falls
	// outside the viewport, so each tick nudges the scroll up one line.
	rig.c.TouchStart(TargetStartHandle, Touch{ID: 13, Point: Point{X: 100, Y: 5}})
	rig.sched.tick()

	if got := rig.widget.scroll.Y; got != 40 {
		t.Errorf("scroll.Y = %v, want 40 (one line up)", got)
	}
	rig.sched.tick()
	if got := rig.widget.scroll.Y; got != 30 {
		t.Errorf("scroll.Y after second tick = %v, want 30", got)
	}
}

func TestDragAutoScrollClampsAtTop(t *testing.T) {
	rig := newTestRig(Options{})
	rig.widget.scroll = Point{}
	rig.widget.sel = Range{Start: Position{Row: 0, Col: 0}, End: Position{Row: 2, Col: 0}}

	rig.c.TouchStart(TargetStartHandle, Touch{ID: 14, Point: Point{X: 100, Y: 5}})
	rig.sched.tick()

	if got := rig.widget.scroll.Y; got != 0 {
		t.Errorf("scroll.Y = %v, want 0 (already at minimum)", got)
	}
}

func TestWordTapExpandsToWord(t *testing.T) {
	rig := newTestRig(Options{})
	// Caret inside "main" on the first line: "package main".
	caret := Position{Row: 0, Col: 9}
	rig.widget.sel = Range{Start: caret, End: caret}

	rig.c.TouchStart(TargetStartCaret, Touch{ID: 15, Point: touchAt(rig.widget, 0, 9)})
	rig.clock.Advance(100 * time.Millisecond)
	rig.c.TouchStart(TargetStartCaret, Touch{ID: 16, Point: touchAt(rig.widget, 0, 9)})

	want := Range{Start: Position{Row: 0, Col: 8}, End: Position{Row: 0, Col: 12}}
	if rig.widget.sel != want {
		t.Errorf("selection = %+v, want word %+v", rig.widget.sel, want)
	}
}

func TestWordTapSingleTapLeavesSelection(t *testing.T) {
	rig := newTestRig(Options{})
	caret := Position{Row: 0, Col: 9}
	rig.widget.sel = Range{Start: caret, End: caret}

	rig.c.TouchStart(TargetStartCaret, Touch{ID: 17, Point: touchAt(rig.widget, 0, 9)})

	if want := (Range{Start: caret, End: caret}); rig.widget.sel != want {
		t.Errorf("isolated tap changed selection to %+v", rig.widget.sel)
	}
}

func TestWordTapOutsideWindowOnlyRecords(t *testing.T) {
	rig := newTestRig(Options{})
	caret := Position{Row: 0, Col: 9}
	rig.widget.sel = Range{Start: caret, End: caret}

	rig.c.TouchStart(TargetStartCaret, Touch{ID: 18, Point: touchAt(rig.widget, 0, 9)})
	rig.clock.Advance(300 * time.Millisecond)
	rig.c.TouchStart(TargetStartCaret, Touch{ID: 19, Point: touchAt(rig.widget, 0, 9)})

	if want := (Range{Start: caret, End: caret}); rig.widget.sel != want {
		t.Errorf("stale second tap changed selection to %+v", rig.widget.sel)
	}
}

func TestWordTapIgnoredForNonEmptySelection(t *testing.T) {
	rig := newTestRig(Options{})
	sel := Range{Start: Position{Row: 0, Col: 8}, End: Position{Row: 0, Col: 10}}
	rig.widget.sel = sel

	rig.c.TouchStart(TargetStartCaret, Touch{ID: 20, Point: touchAt(rig.widget, 0, 9)})
	rig.clock.Advance(50 * time.Millisecond)
	rig.c.TouchStart(TargetStartCaret, Touch{ID: 21, Point: touchAt(rig.widget, 0, 9)})

	if rig.widget.sel != sel {
		t.Errorf("word tap over a real selection changed it to %+v", rig.widget.sel)
	}
}
