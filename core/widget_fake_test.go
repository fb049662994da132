package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unicode"
)

// fakeWidget is a scripted Widget over a grid of text lines. Geometry is a
// uniform grid: every character cell is metrics.CharWidth wide and every
// line metrics.LineHeight tall, with a gutter on the left. Points resolve
// only inside the viewport and inside the buffer, which is what drives the
// edge auto-scroll probes.
type fakeWidget struct {
	lines    []string
	sel      Range
	scroll   Point
	extent   Point
	viewport Point
	metrics  Metrics

	events chan Signal

	edits        []fakeEdit
	selectionLog []Range
	undoErr      error
	redoErr      error
	undoCalls    int
	redoCalls    int
	focusCalls   int
}

type fakeEdit struct {
	r      Range
	text   string
	source string
}

func newFakeWidget() *fakeWidget {
	lines := []string{
		"package main",
		"",
		"func main() {",
		"\tprintln(\"hello world\")",
		"}",
	}
	for i := len(lines); i < 40; i++ {
		lines = append(lines, fmt.Sprintf("// filler %02d", i))
	}
	return &fakeWidget{
		lines: lines,
		viewport: Point{X: 400, Y: 200},
		extent:   Point{X: 100, Y: 300},
		metrics:  Metrics{LineHeight: 10, CharWidth: 5, FontSize: 10, GutterWidth: 40},
		events:   make(chan Signal, 16),
	}
}

func (w *fakeWidget) Selection() Range { return w.sel }

func (w *fakeWidget) SetSelection(r Range) {
	w.sel = r
	w.selectionLog = append(w.selectionLog, r)
}

func (w *fakeWidget) FullRange() Range {
	last := len(w.lines) - 1
	return Range{
		Start: Position{Row: 0, Col: 0},
		End:   Position{Row: last, Col: len([]rune(w.lines[last]))},
	}
}

func (w *fakeWidget) SelectedText() string {
	if w.sel.IsEmpty() {
		return ""
	}
	start, end := w.sel.Start, w.sel.End
	if start.Row == end.Row {
		line := []rune(w.lines[start.Row])
		return string(line[start.Col:end.Col])
	}
	var b strings.Builder
	b.WriteString(string([]rune(w.lines[start.Row])[start.Col:]))
	for row := start.Row + 1; row < end.Row; row++ {
		b.WriteRune('\n')
		b.WriteString(w.lines[row])
	}
	b.WriteRune('\n')
	b.WriteString(string([]rune(w.lines[end.Row])[:end.Col]))
	return b.String()
}

func (w *fakeWidget) WordAt(pos Position) (Range, bool) {
	if pos.Row < 0 || pos.Row >= len(w.lines) {
		return Range{}, false
	}
	line := []rune(w.lines[pos.Row])
	if pos.Col < 0 || pos.Col >= len(line) || !isWordRune(line[pos.Col]) {
		return Range{}, false
	}
	start := pos.Col
	for start > 0 && isWordRune(line[start-1]) {
		start--
	}
	end := pos.Col
	for end < len(line) && isWordRune(line[end]) {
		end++
	}
	return Range{
		Start: Position{Row: pos.Row, Col: start},
		End:   Position{Row: pos.Row, Col: end},
	}, true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (w *fakeWidget) PositionAt(p Point) (Position, bool) {
	if p.X < 0 || p.Y < 0 || p.X >= w.viewport.X || p.Y >= w.viewport.Y {
		return Position{}, false
	}
	row := int(math.Floor((p.Y + w.scroll.Y) / w.metrics.LineHeight))
	col := int(math.Floor((p.X - w.metrics.GutterWidth + w.scroll.X) / w.metrics.CharWidth))
	if row < 0 || row >= len(w.lines) {
		return Position{}, false
	}
	if col < 0 {
		col = 0
	}
	if max := len([]rune(w.lines[row])); col > max {
		col = max
	}
	return Position{Row: row, Col: col}, true
}

func (w *fakeWidget) PointAt(pos Position) (Point, bool) {
	p := Point{
		X: float64(pos.Col)*w.metrics.CharWidth + w.metrics.GutterWidth - w.scroll.X,
		Y: float64(pos.Row)*w.metrics.LineHeight - w.scroll.Y,
	}
	if p.X < 0 || p.Y < 0 || p.X >= w.viewport.X || p.Y >= w.viewport.Y {
		return Point{}, false
	}
	return p, true
}

func (w *fakeWidget) ScrollOffset() Point     { return w.scroll }
func (w *fakeWidget) SetScrollOffset(p Point) { w.scroll = p }
func (w *fakeWidget) ScrollExtent() Point     { return w.extent }
func (w *fakeWidget) ViewportSize() Point     { return w.viewport }
func (w *fakeWidget) Metrics() Metrics        { return w.metrics }

func (w *fakeWidget) ApplyEdit(r Range, text, source string) error {
	w.edits = append(w.edits, fakeEdit{r: r, text: text, source: source})
	return nil
}

func (w *fakeWidget) Undo() error {
	w.undoCalls++
	return w.undoErr
}

func (w *fakeWidget) Redo() error {
	w.redoCalls++
	return w.redoErr
}

func (w *fakeWidget) Focus() { w.focusCalls++ }

func (w *fakeWidget) Events() <-chan Signal { return w.events }

// fakeClipboard records writes and serves a scripted read.
type fakeClipboard struct {
	content  string
	writeErr error
	readErr  error
	writes   []string
}

func (c *fakeClipboard) Write(text string) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.writes = append(c.writes, text)
	c.content = text
	return nil
}

func (c *fakeClipboard) Read() (string, error) {
	if c.readErr != nil {
		return "", c.readErr
	}
	return c.content, nil
}

// fakeClock is a settable wall clock.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// manualScheduler collects timers without running them; tests fire them
// explicitly, which makes debounce and sampler behavior deterministic.
type manualScheduler struct {
	mu      sync.Mutex
	afters  []*manualTimer
	tickers []*manualTimer
}

type manualTimer struct {
	d        time.Duration
	fn       func()
	canceled bool
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{}
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{d: d, fn: fn}
	s.afters = append(s.afters, t)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		t.canceled = true
	}
}

func (s *manualScheduler) Every(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{d: d, fn: fn}
	s.tickers = append(s.tickers, t)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		t.canceled = true
	}
}

// runPending fires every armed one-shot timer once and clears the queue.
func (s *manualScheduler) runPending() {
	s.mu.Lock()
	pending := s.afters
	s.afters = nil
	s.mu.Unlock()
	for _, t := range pending {
		if !t.canceled {
			t.fn()
		}
	}
}

// tick fires every live repeating timer once.
func (s *manualScheduler) tick() {
	s.mu.Lock()
	live := make([]*manualTimer, 0, len(s.tickers))
	for _, t := range s.tickers {
		if !t.canceled {
			live = append(live, t)
		}
	}
	s.mu.Unlock()
	for _, t := range live {
		t.fn()
	}
}

// pendingCount reports armed, uncanceled one-shot timers.
func (s *manualScheduler) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.afters {
		if !t.canceled {
			n++
		}
	}
	return n
}

// errorRecorder captures tool action errors routed to the handler.
type errorRecorder struct {
	names []ToolName
	errs  []error
}

func (r *errorRecorder) handle(name ToolName, err error) {
	r.names = append(r.names, name)
	r.errs = append(r.errs, err)
}

func (r *errorRecorder) last() error {
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[len(r.errs)-1]
}

// testRig bundles a controller with its scripted collaborators.
type testRig struct {
	widget    *fakeWidget
	clipboard *fakeClipboard
	clock     *fakeClock
	sched     *manualScheduler
	errs      *errorRecorder
	c         *Controller
}

func newTestRig(opts Options) *testRig {
	r := &testRig{
		widget:    newFakeWidget(),
		clipboard: &fakeClipboard{},
		clock:     newFakeClock(),
		sched:     newManualScheduler(),
		errs:      &errorRecorder{},
	}
	if opts.Clipboard == nil {
		opts.Clipboard = r.clipboard
	}
	opts.Clock = r.clock.Now
	opts.Scheduler = r.sched
	if opts.ToolActionErrorHandler == nil {
		opts.ToolActionErrorHandler = r.errs.handle
	}

	c, err := Attach(r.widget, opts)
	if err != nil {
		panic("test rig attach failed: " + err.Error())
	}
	r.c = c
	return r
}

var errScripted = errors.New("scripted failure")
