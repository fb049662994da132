package core

type Signal any

// SelectionChangedSignal is emitted after the widget's selection moved,
// whether from user input, programmatic edits, or the controller itself.
type SelectionChangedSignal struct {
	Selection Range
}

// ScrolledSignal is emitted after the widget's scroll offset changed.
type ScrolledSignal struct {
	Offset Point
}

// ConfigChangedSignal is emitted after a widget configuration change that
// may affect text geometry (font size, line height).
type ConfigChangedSignal struct{}

// ResizedSignal is emitted after the widget's container was resized.
type ResizedSignal struct {
	Size Point
}

// BlurSignal is emitted when the widget loses focus.
type BlurSignal struct{}

// DisposedSignal is emitted once, when the widget is torn down. No further
// signals follow it.
type DisposedSignal struct{}
