package bubble_adapter

import (
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/ionut-t/touchselect/core"
)

const (
	defaultGutterWidth = 4
	maxHistory         = 1000
	eventBufferSize    = 16
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// snapshot is one undo history entry. Whole-buffer snapshots are simple and
// fine at the document sizes a touch surface handles.
type snapshot struct {
	content   string
	selection core.Range
}

// TextWidget is the reference core.Widget for terminal hosts. Geometry is the
// cell grid: LineHeight and CharWidth are both 1, columns count grapheme
// clusters, and client points are viewport-relative cells with the gutter on
// the left.
//
// All methods are safe for concurrent use.
type TextWidget struct {
	mu        sync.Mutex
	lines     []string
	selection core.Range
	scroll    core.Point
	viewport  core.Point
	gutter    int
	disposed  bool

	history    []snapshot
	historyPos int

	events chan core.Signal
}

// NewTextWidget builds a widget over content with the given viewport size in
// cells. The initial buffer state seeds the undo history.
func NewTextWidget(content string, width, height int) *TextWidget {
	w := &TextWidget{
		lines:      strings.Split(content, "\n"),
		viewport:   core.Point{X: float64(width), Y: float64(height)},
		gutter:     defaultGutterWidth,
		historyPos: -1,
		events:     make(chan core.Signal, eventBufferSize),
	}
	w.saveHistoryLocked()
	return w
}

func (w *TextWidget) Selection() core.Range {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection
}

func (w *TextWidget) SetSelection(r core.Range) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setSelectionLocked(core.NewRange(w.clampLocked(r.Start), w.clampLocked(r.End)))
}

func (w *TextWidget) setSelectionLocked(r core.Range) {
	if r == w.selection {
		return
	}
	w.selection = r
	w.dispatchLocked(core.SelectionChangedSignal{Selection: r})
}

// FullRange spans the whole buffer.
func (w *TextWidget) FullRange() core.Range {
	w.mu.Lock()
	defer w.mu.Unlock()
	last := len(w.lines) - 1
	return core.Range{
		Start: core.Position{Row: 0, Col: 0},
		End:   core.Position{Row: last, Col: lineWidth(w.lines[last])},
	}
}

func (w *TextWidget) SelectedText() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.textInLocked(w.selection)
}

func (w *TextWidget) textInLocked(r core.Range) string {
	if r.IsEmpty() {
		return ""
	}
	start := w.clampLocked(r.Start)
	end := w.clampLocked(r.End)
	if start.Row == end.Row {
		line := w.lines[start.Row]
		_, tail := cutLine(line, start.Col)
		head, _ := cutLine(tail, end.Col-start.Col)
		return head
	}

	var b strings.Builder
	_, first := cutLine(w.lines[start.Row], start.Col)
	b.WriteString(first)
	for row := start.Row + 1; row < end.Row; row++ {
		b.WriteByte('\n')
		b.WriteString(w.lines[row])
	}
	last, _ := cutLine(w.lines[end.Row], end.Col)
	b.WriteByte('\n')
	b.WriteString(last)
	return b.String()
}

// WordAt expands pos to the run of letters, digits and underscores around it.
// The ok result is false on whitespace and punctuation.
func (w *TextWidget) WordAt(pos core.Position) (core.Range, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pos = w.clampLocked(pos)
	clusters := uniseg.NewGraphemes(w.lines[pos.Row])
	var cells []string
	for clusters.Next() {
		cells = append(cells, clusters.Str())
	}
	col := pos.Col
	if col >= len(cells) {
		if col == 0 {
			return core.Range{}, false
		}
		col = len(cells) - 1
	}
	if !isWordCell(cells[col]) {
		return core.Range{}, false
	}

	start := col
	for start > 0 && isWordCell(cells[start-1]) {
		start--
	}
	end := col + 1
	for end < len(cells) && isWordCell(cells[end]) {
		end++
	}
	return core.Range{
		Start: core.Position{Row: pos.Row, Col: start},
		End:   core.Position{Row: pos.Row, Col: end},
	}, true
}

func isWordCell(cell string) bool {
	for _, r := range cell {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
	}
	return false
}

// PositionAt resolves a viewport-relative cell to a buffer position. Points
// in the gutter or past the last line resolve to nothing.
func (w *TextWidget) PositionAt(p core.Point) (core.Position, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p.X < 0 || p.Y < 0 || p.X >= w.viewport.X || p.Y >= w.viewport.Y {
		return core.Position{}, false
	}
	row := int(p.Y + w.scroll.Y)
	if row < 0 || row >= len(w.lines) {
		return core.Position{}, false
	}
	col := int(p.X + w.scroll.X - float64(w.gutter))
	if col < 0 {
		return core.Position{}, false
	}
	if width := lineWidth(w.lines[row]); col > width {
		col = width
	}
	return core.Position{Row: row, Col: col}, true
}

// PointAt is the inverse of PositionAt. The ok result is false when the
// position is scrolled out of the viewport.
func (w *TextWidget) PointAt(pos core.Position) (core.Point, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pos.Row < 0 || pos.Row >= len(w.lines) {
		return core.Point{}, false
	}
	p := core.Point{
		X: float64(w.gutter+pos.Col) - w.scroll.X,
		Y: float64(pos.Row) - w.scroll.Y,
	}
	if p.X < 0 || p.Y < 0 || p.X >= w.viewport.X || p.Y >= w.viewport.Y {
		return core.Point{}, false
	}
	return p, true
}

func (w *TextWidget) ScrollOffset() core.Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scroll
}

func (w *TextWidget) SetScrollOffset(p core.Point) {
	w.mu.Lock()
	defer w.mu.Unlock()

	extent := w.scrollExtentLocked()
	p.X = min(max(p.X, 0), extent.X)
	p.Y = min(max(p.Y, 0), extent.Y)
	if p == w.scroll {
		return
	}
	w.scroll = p
	w.dispatchLocked(core.ScrolledSignal{Offset: p})
}

func (w *TextWidget) ScrollExtent() core.Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scrollExtentLocked()
}

func (w *TextWidget) scrollExtentLocked() core.Point {
	widest := 0
	for _, line := range w.lines {
		if n := lineWidth(line); n > widest {
			widest = n
		}
	}
	return core.Point{
		X: max(float64(widest+w.gutter)-w.viewport.X, 0),
		Y: max(float64(len(w.lines))-w.viewport.Y, 0),
	}
}

func (w *TextWidget) ViewportSize() core.Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewport
}

func (w *TextWidget) Metrics() core.Metrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return core.Metrics{
		LineHeight:  1,
		CharWidth:   1,
		FontSize:    1,
		GutterWidth: float64(w.gutter),
	}
}

// ApplyEdit replaces r with text and leaves a caret after the insertion.
func (w *TextWidget) ApplyEdit(r core.Range, text string, source string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := w.clampLocked(r.Start)
	end := w.clampLocked(r.End)
	start, end = core.NormalizePositions(start, end)

	head, _ := cutLine(w.lines[start.Row], start.Col)
	_, tail := cutLine(w.lines[end.Row], end.Col)
	inserted := strings.Split(text, "\n")

	caret := core.Position{
		Row: start.Row + len(inserted) - 1,
		Col: lineWidth(inserted[len(inserted)-1]),
	}
	if len(inserted) == 1 {
		caret.Col += start.Col
	}

	inserted[0] = head + inserted[0]
	inserted[len(inserted)-1] += tail

	rebuilt := make([]string, 0, start.Row+len(inserted)+len(w.lines)-end.Row-1)
	rebuilt = append(rebuilt, w.lines[:start.Row]...)
	rebuilt = append(rebuilt, inserted...)
	rebuilt = append(rebuilt, w.lines[end.Row+1:]...)
	w.lines = rebuilt

	w.setSelectionLocked(core.Range{Start: caret, End: caret})
	w.saveHistoryLocked()
	return nil
}

func (w *TextWidget) Undo() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.historyPos <= 0 {
		return ErrNothingToUndo
	}
	w.historyPos--
	w.restoreLocked(w.history[w.historyPos])
	return nil
}

func (w *TextWidget) Redo() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.historyPos >= len(w.history)-1 {
		return ErrNothingToRedo
	}
	w.historyPos++
	w.restoreLocked(w.history[w.historyPos])
	return nil
}

func (w *TextWidget) restoreLocked(s snapshot) {
	w.lines = strings.Split(s.content, "\n")
	w.setSelectionLocked(s.selection)
}

// saveHistoryLocked records the current buffer as a new history entry,
// discarding any redo tail.
func (w *TextWidget) saveHistoryLocked() {
	entry := snapshot{content: strings.Join(w.lines, "\n"), selection: w.selection}
	w.history = append(w.history[:w.historyPos+1], entry)
	if len(w.history) > maxHistory {
		w.history = w.history[1:]
	}
	w.historyPos = len(w.history) - 1
}

func (w *TextWidget) Focus() {}

func (w *TextWidget) Events() <-chan core.Signal {
	return w.events
}

// Content returns the buffer as one string.
func (w *TextWidget) Content() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.Join(w.lines, "\n")
}

// Lines returns a copy of the buffer lines for rendering.
func (w *TextWidget) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.lines))
	copy(out, w.lines)
	return out
}

// GutterWidth returns the gutter width in cells.
func (w *TextWidget) GutterWidth() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gutter
}

// SetSize changes the viewport extent and notifies the controller.
func (w *TextWidget) SetSize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	size := core.Point{X: float64(width), Y: float64(height)}
	if size == w.viewport {
		return
	}
	w.viewport = size

	// Keep the scroll offset valid for the new extent.
	extent := w.scrollExtentLocked()
	w.scroll.X = min(w.scroll.X, extent.X)
	w.scroll.Y = min(w.scroll.Y, extent.Y)

	w.dispatchLocked(core.ResizedSignal{Size: size})
}

// Blur notifies the controller that the widget lost focus.
func (w *TextWidget) Blur() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dispatchLocked(core.BlurSignal{})
}

// Dispose emits DisposedSignal and closes the event channel. The widget
// accepts no further signals afterwards.
func (w *TextWidget) Dispose() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.disposed {
		return
	}
	w.dispatchLocked(core.DisposedSignal{})
	w.disposed = true
	close(w.events)
}

// dispatchLocked delivers a signal without blocking. A full channel drops
// the signal rather than stalling the caller.
func (w *TextWidget) dispatchLocked(s core.Signal) {
	if w.disposed {
		return
	}
	select {
	case w.events <- s:
	default:
	}
}

func (w *TextWidget) clampLocked(pos core.Position) core.Position {
	if pos.Row < 0 {
		return core.Position{}
	}
	if pos.Row >= len(w.lines) {
		last := len(w.lines) - 1
		return core.Position{Row: last, Col: lineWidth(w.lines[last])}
	}
	if pos.Col < 0 {
		pos.Col = 0
	}
	if width := lineWidth(w.lines[pos.Row]); pos.Col > width {
		pos.Col = width
	}
	return pos
}

// lineWidth counts grapheme clusters, so a combining sequence occupies one
// column.
func lineWidth(line string) int {
	return uniseg.GraphemeClusterCount(line)
}

// cutLine splits a line at a grapheme-cluster column.
func cutLine(line string, col int) (head, tail string) {
	if col <= 0 {
		return "", line
	}
	to := 0
	g := uniseg.NewGraphemes(line)
	for i := 0; i < col && g.Next(); i++ {
		_, to = g.Positions()
	}
	return line[:to], line[to:]
}
