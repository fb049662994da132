package core

// Position represents a specific location in the widget's text buffer
type Position struct {
	Row int // Zero-indexed row (line number)
	Col int // Zero-indexed column (character position in the line)
}

// Range is a directional text selection. Start is always the earlier
// endpoint; a Range whose endpoints coincide is a caret.
type Range struct {
	Start Position
	End   Position
}

// IsEmpty reports whether the range is a caret (no selected text).
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// NewRange builds a normalized range from two endpoints in any order.
func NewRange(p1, p2 Position) Range {
	start, end := NormalizePositions(p1, p2)
	return Range{Start: start, End: end}
}

// NormalizePositions ensures start is before end, row by row, then column by column.
func NormalizePositions(p1, p2 Position) (start, end Position) {
	if p1.Row < p2.Row || (p1.Row == p2.Row && p1.Col <= p2.Col) {
		return p1, p2
	}
	return p2, p1
}

// Point is a screen offset in widget client units (pixels for a browser-like
// host, cells for a terminal host).
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned box: top-left corner plus extent.
type Rect struct {
	Min  Point
	Size Point
}

// Center returns the geometric center of the box.
func (r Rect) Center() Point {
	return Point{X: r.Min.X + r.Size.X/2, Y: r.Min.Y + r.Size.Y/2}
}

// SquaredDistance returns the squared Euclidean distance between two points.
func SquaredDistance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// Metrics describes the widget's text geometry. The controller caches these
// and refreshes them on ConfigChangedSignal.
type Metrics struct {
	LineHeight  float64 // vertical extent of one text line
	CharWidth   float64 // horizontal extent of one character cell
	FontSize    float64 // base font size, used for menu sizing
	GutterWidth float64 // fixed side margin (line numbers etc.) left of the text
}

// EditSource tags content mutations applied through the widget's edit facility.
const (
	EditSourceCut   = "cut"
	EditSourcePaste = "paste"
)

// Widget is the text-editing widget the controller attaches to. The widget
// itself is an external collaborator: the controller only consumes this
// contract, it never renders or edits text on its own.
//
// Implementations deliver change notifications on the Events channel and must
// not block when the channel is full (drop instead, see DispatchSignal in the
// reference widget).
type Widget interface {
	// Selection management
	Selection() Range
	SetSelection(Range)
	FullRange() Range       // the whole document
	SelectedText() string   // empty when the selection is a caret
	WordAt(Position) (Range, bool)

	// Coordinate conversion between client points and text positions.
	// The ok result is false when the point resolves to no content target
	// (outside the viewport or past the buffer), or when the position is
	// not currently visible.
	PositionAt(Point) (Position, bool)
	PointAt(Position) (Point, bool)

	// Scrolling
	ScrollOffset() Point
	SetScrollOffset(Point)
	ScrollExtent() Point // maximum scroll offset per axis
	ViewportSize() Point

	Metrics() Metrics

	// ApplyEdit replaces r with text. The source tag identifies the edit
	// origin ("cut", "paste") for the widget's own bookkeeping.
	ApplyEdit(r Range, text string, source string) error

	Undo() error
	Redo() error
	Focus()

	// Events delivers widget change notifications. The channel is closed
	// after DisposedSignal.
	Events() <-chan Signal
}

type Clipboard interface {
	Write(text string) error
	Read() (string, error)
}
