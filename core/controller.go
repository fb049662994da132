package core

import (
	"fmt"
	"sync"
)

// Controller augments one text-editing widget with touch selection: two
// draggable handles bound to the selection endpoints, a floating action
// menu, and edge auto-scroll during drags.
//
// Each Attach call produces an independent controller with its own debounce
// and sampler state; multiple widgets on one host operate independently.
// The controller serializes its own handlers with a mutex, the Go rendition
// of the single-threaded cooperative model the interaction assumes.
type Controller struct {
	widget Widget
	opts   Options

	mu        sync.Mutex
	start     *Handle
	end       *Handle
	metrics   Metrics
	transform transformSync
	sessions  map[HandleKind]*dragSession

	tools      []Tool
	menuOpen   bool
	menuPos    Point
	menuSize   Point
	menuAnchor HandleKind

	handlesShown  bool
	overlayOffset Point // negative scroll offset, applied to the handle container

	cancelDeferred func()
	disposed       bool
	done           chan struct{}
}

// Attach wires a controller to widget. It fails synchronously, before any
// state is created, when the widget is missing or does not expose the text
// metrics and viewport the controller positions against; these are
// unrecoverable configuration errors, not retried.
func Attach(widget Widget, opts Options) (*Controller, error) {
	if widget == nil {
		return nil, ErrNilWidget
	}

	m := widget.Metrics()
	if m.LineHeight <= 0 || m.CharWidth <= 0 {
		return nil, fmt.Errorf("%w: line height %v, char width %v", ErrMissingOverlay, m.LineHeight, m.CharWidth)
	}
	vp := widget.ViewportSize()
	if vp.X <= 0 || vp.Y <= 0 {
		return nil, fmt.Errorf("%w: %vx%v", ErrMissingViewport, vp.X, vp.Y)
	}

	c := &Controller{
		widget:   widget,
		opts:     opts.withDefaults(),
		start:    newHandle(StartHandle),
		end:      newHandle(EndHandle),
		metrics:  m,
		sessions: make(map[HandleKind]*dragSession),
		done:     make(chan struct{}),
	}
	c.transform.window = c.opts.SelectionSyncTimeout
	c.start.resize(m)
	c.end.resize(m)

	// The tool list is fixed for the lifetime of one attachment; it is
	// not recomputed per menu open.
	c.tools = c.buildTools()
	c.menuSize = c.measureMenu(c.tools)

	go c.listen()
	return c, nil
}

func (c *Controller) listen() {
	for sig := range c.widget.Events() {
		if c.handleSignal(sig) {
			return
		}
	}
}

// handleSignal is the event table of the lifecycle orchestrator: one widget
// signal in, one short handler out. It returns true once the terminal
// disposal signal has been handled.
func (c *Controller) handleSignal(sig Signal) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return true
	}

	switch sig := sig.(type) {
	case SelectionChangedSignal:
		c.closeMenuLocked()
		// Deferred one tick so the widget's own scroll-into-view
		// settles before the handles are measured.
		c.deferLocked(func() {
			c.requestSync(c.widget.Selection())
		})

	case ScrolledSignal:
		c.overlayOffset = Point{X: -sig.Offset.X, Y: -sig.Offset.Y}

	case ConfigChangedSignal:
		m := c.widget.Metrics()
		if m.LineHeight != c.metrics.LineHeight || m.FontSize != c.metrics.FontSize {
			c.metrics = m
			c.start.resize(m)
			c.end.resize(m)
			c.menuSize = c.measureMenu(c.tools)
		}

	case ResizedSignal:
		c.hideHandlesLocked()
		c.closeMenuLocked()
		c.requestSync(c.widget.Selection())

	case BlurSignal:
		c.hideHandlesLocked()
		c.closeMenuLocked()

	case DisposedSignal:
		c.disposeLocked()
		return true
	}
	return false
}

// deferLocked schedules fn for the next tick, replacing any prior deferred
// work. fn runs under the controller lock.
func (c *Controller) deferLocked(fn func()) {
	if c.cancelDeferred != nil {
		c.cancelDeferred()
	}
	c.cancelDeferred = c.opts.Scheduler.AfterFunc(0, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.disposed {
			return
		}
		c.cancelDeferred = nil
		fn()
	})
}

// --- Visibility -----------------------------------------------------------

// ShowHandles makes both handles visible. Repeated calls are no-ops.
func (c *Controller) ShowHandles() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.disposed {
		c.showHandlesLocked()
	}
}

// HideHandles hides both handles. Repeated calls are no-ops.
func (c *Controller) HideHandles() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hideHandlesLocked()
}

func (c *Controller) showHandlesLocked() {
	if c.handlesShown {
		return
	}
	c.handlesShown = true
	c.requestSync(c.widget.Selection())
}

func (c *Controller) hideHandlesLocked() {
	c.handlesShown = false
}

// OpenMenu shows the menu anchored to the end handle. Repeated calls are
// no-ops. Drag release goes through the nearer-handle path instead.
func (c *Controller) OpenMenu() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || c.menuOpen {
		return
	}
	c.placeMenuLocked(EndHandle)
	c.menuOpen = true
}

// CloseMenu hides the menu; the selection is left untouched. Repeated calls
// are no-ops.
func (c *Controller) CloseMenu() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeMenuLocked()
}

func (c *Controller) closeMenuLocked() {
	c.menuOpen = false
}

// openMenuByTouch opens the menu anchored to whichever handle is nearer the
// release point (squared distance to the handle box centers; ties favor the
// start handle).
func (c *Controller) openMenuByTouch(release Point) {
	p := c.toOverlay(release)
	anchor := StartHandle
	if SquaredDistance(p, c.end.Bounds().Center()) < SquaredDistance(p, c.start.Bounds().Center()) {
		anchor = EndHandle
	}
	c.placeMenuLocked(anchor)
	c.menuOpen = true
}

// reopenMenu re-shows the menu after tools like undo/redo/selectAll, which
// change the selection and would otherwise leave it closed. Deferred one
// tick so the selection-change close settles first.
func (c *Controller) reopenMenu() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	anchor := c.menuAnchor
	c.deferLocked(func() {
		c.placeMenuLocked(anchor)
		c.menuOpen = true
	})
}

func (c *Controller) placeMenuLocked(anchor HandleKind) {
	h := c.start
	if anchor == EndHandle {
		h = c.end
	}
	c.menuAnchor = anchor

	var viewport *Rect
	if c.opts.ViewportBounds != nil {
		if r, ok := c.opts.ViewportBounds(); ok {
			o := c.clientRectToOverlay(r)
			viewport = &o
		}
	}
	c.menuPos = PlaceMenu(h.Bounds(), c.menuSize, c.containerBounds(), c.metrics.LineHeight, viewport)
}

func (c *Controller) measureMenu(tools []Tool) Point {
	if c.opts.MenuSize != nil {
		return c.opts.MenuSize(tools)
	}
	// Square icon buttons sized from the font.
	side := 2 * c.metrics.FontSize
	return Point{X: float64(len(tools)) * side, Y: side}
}

// --- Coordinate spaces ----------------------------------------------------

// toOverlay converts a client point into overlay space, the content-sized
// coordinate space the handles and menu are positioned in.
func (c *Controller) toOverlay(p Point) Point {
	scroll := c.widget.ScrollOffset()
	return Point{
		X: p.X + scroll.X - c.metrics.GutterWidth,
		Y: p.Y + scroll.Y,
	}
}

func (c *Controller) clientRectToOverlay(r Rect) Rect {
	return Rect{Min: c.toOverlay(r.Min), Size: r.Size}
}

// containerBounds is the widget container's box in overlay space.
func (c *Controller) containerBounds() Rect {
	return c.clientRectToOverlay(Rect{Size: c.widget.ViewportSize()})
}

// --- Render snapshots -----------------------------------------------------

// HandleState returns a render copy of one handle.
func (c *Controller) HandleState(kind HandleKind) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind == StartHandle {
		return *c.start
	}
	return *c.end
}

// HandlesShown reports the handle visibility flag.
func (c *Controller) HandlesShown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handlesShown
}

// MenuState returns a render snapshot of the floating menu.
func (c *Controller) MenuState() MenuState {
	c.mu.Lock()
	defer c.mu.Unlock()
	tools := make([]Tool, len(c.tools))
	copy(tools, c.tools)
	return MenuState{Visible: c.menuOpen, Pos: c.menuPos, Size: c.menuSize, Tools: tools}
}

// OverlayOffset is the translation the host applies to the handle-holding
// container: the negative scroll offset.
func (c *Controller) OverlayOffset() Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlayOffset
}

// Disposed reports whether the widget has been torn down.
func (c *Controller) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// --- Teardown -------------------------------------------------------------

func (c *Controller) disposeLocked() {
	if c.disposed {
		return
	}
	c.disposed = true

	for kind, s := range c.sessions {
		s.cancelSampler()
		delete(c.sessions, kind)
	}
	if c.transform.cancelTimer != nil {
		c.transform.cancelTimer()
		c.transform.cancelTimer = nil
	}
	if c.cancelDeferred != nil {
		c.cancelDeferred()
		c.cancelDeferred = nil
	}
	c.handlesShown = false
	c.menuOpen = false
	close(c.done)
}

// Done is closed once the controller has fully detached from the widget.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}
