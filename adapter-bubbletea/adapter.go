package bubble_adapter

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ionut-t/touchselect/adapter-bubbletea/highlighter"
	"github.com/ionut-t/touchselect/core"
)

type Theme struct {
	LineNumberStyle lipgloss.Style
	SelectionStyle  lipgloss.Style
	HandleStyle     lipgloss.Style
	CaretStyle      lipgloss.Style
	MenuStyle       lipgloss.Style
	MenuLabelStyle  lipgloss.Style
	StatusLineStyle lipgloss.Style
	ErrorStyle      lipgloss.Style
}

var DefaultTheme = Theme{
	LineNumberStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Align(lipgloss.Right),
	SelectionStyle:  lipgloss.NewStyle().Background(lipgloss.Color("237")),
	HandleStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
	CaretStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true).Blink(true),
	MenuStyle:       lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("255")),
	MenuLabelStyle:  lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("255")).Padding(0, 1),
	StatusLineStyle: lipgloss.NewStyle().Background(lipgloss.Color("235")).Foreground(lipgloss.Color("250")),
	ErrorStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
}

// mouseTouchID stands in for a touch identifier. A terminal mouse is a
// single pointer, so every gesture reuses the same ID.
const mouseTouchID = 1

// frameInterval paces redraws while controller timers (debounce, drag
// sampler) mutate state outside the bubbletea message loop.
const frameInterval = 50 * time.Millisecond

type frameMsg struct{}

type errMsg error

type atottoClipboard struct{}

func (c *atottoClipboard) Write(text string) error {
	return clipboard.WriteAll(text)
}

func (c *atottoClipboard) Read() (string, error) {
	return clipboard.ReadAll()
}

// Model wires a TextWidget, its selection controller and a bubbles viewport
// into a bubbletea component with mouse-driven touch selection.
type Model struct {
	widget     *TextWidget
	controller *core.Controller
	viewport   viewport.Model
	hl         *highlighter.Highlighter

	width           int
	height          int
	theme           Theme
	showLineNumbers bool
	showStatusLine  bool

	// dragging tracks whether a left-button gesture is in flight, so
	// motion events without a press are not forwarded as touch moves.
	dragging bool

	// lastContent detects buffer mutations (menu cut/paste, undo) that
	// require retokenizing for syntax highlighting.
	lastContent string

	err error
}

// New builds a model over content sized to width x height cells. The status
// line takes the bottom row.
func New(content string, width, height int) (Model, error) {
	widget := NewTextWidget(content, width, height-1)
	vp := viewport.New(width, height-1)

	m := Model{
		widget:          widget,
		viewport:        vp,
		hl:              highlighter.New("", ""),
		width:           width,
		height:          height,
		theme:           DefaultTheme,
		showLineNumbers: true,
		showStatusLine:  true,
	}
	m.hl.Tokenize(widget.Lines())
	m.lastContent = content

	controller, err := core.Attach(widget, core.Options{
		Clipboard: &atottoClipboard{},
		MenuSize:  measureMenu,
	})
	if err != nil {
		return Model{}, err
	}
	m.controller = controller
	m.viewport.SetContent(m.composeContent())
	return m, nil
}

// measureMenu sizes the menu bar: one row tall, labels padded by one cell
// on each side. Placement clamping uses the same measurement the renderer
// draws with.
func measureMenu(tools []core.Tool) core.Point {
	width := 0
	for _, t := range tools {
		width += lipgloss.Width(t.Title()) + 2
	}
	return core.Point{X: float64(width), Y: 1}
}

// WithTheme replaces the default styles.
func (m *Model) WithTheme(theme Theme) {
	m.theme = theme
}

// WithHighlighter switches syntax highlighting to the given language and
// chroma theme.
func (m *Model) WithHighlighter(language, chromaTheme string) {
	m.hl = highlighter.New(language, chromaTheme)
	m.hl.Tokenize(m.widget.Lines())
}

// HideLineNumbers controls the gutter.
func (m *Model) HideLineNumbers(hide bool) {
	m.showLineNumbers = !hide
}

// Widget exposes the underlying text widget.
func (m *Model) Widget() *TextWidget {
	return m.widget
}

// Controller exposes the selection controller.
func (m *Model) Controller() *core.Controller {
	return m.controller
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 1
	m.widget.SetSize(width, height-1)
}

func (m Model) Init() tea.Cmd {
	return m.frameTick()
}

func (m *Model) frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.widget.Dispose()
			return m, tea.Quit
		case "ctrl+z":
			if err := m.widget.Undo(); err != nil {
				m.err = err
			}
		case "ctrl+y":
			if err := m.widget.Redo(); err != nil {
				m.err = err
			}
		case "ctrl+a":
			m.controller.ShowHandles()
			m.widget.SetSelection(m.widget.FullRange())
		case "esc":
			m.controller.CloseMenu()
			m.controller.HideHandles()
		case "up":
			m.scrollBy(0, -1)
		case "down":
			m.scrollBy(0, 1)
		case "left":
			m.scrollBy(-1, 0)
		case "right":
			m.scrollBy(1, 0)
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)

	case tea.BlurMsg:
		m.widget.Blur()

	case errMsg:
		m.err = msg

	case frameMsg:
		cmds = append(cmds, m.frameTick())
	}

	if content := m.widget.Content(); content != m.lastContent {
		m.hl.Tokenize(m.widget.Lines())
		m.lastContent = content
	}
	m.viewport.SetContent(m.composeContent())
	m.viewport.YOffset = 0

	return m, tea.Batch(cmds...)
}

func (m *Model) scrollBy(dx, dy float64) {
	offset := m.widget.ScrollOffset()
	m.widget.SetScrollOffset(core.Point{X: offset.X + dx, Y: offset.Y + dy})
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := core.Point{X: float64(msg.X), Y: float64(msg.Y)}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scrollBy(0, -1)
		return
	case tea.MouseButtonWheelDown:
		m.scrollBy(0, 1)
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if name, ok := m.menuToolAt(p); ok {
			m.controller.ActivateTool(name)
			return
		}
		m.dragging = true
		m.controller.TouchStart(m.targetAt(p), core.Touch{ID: mouseTouchID, Point: p})

	case tea.MouseActionMotion:
		if !m.dragging {
			return
		}
		m.controller.TouchMove(core.Touch{ID: mouseTouchID, Point: p})

	case tea.MouseActionRelease:
		if !m.dragging {
			return
		}
		m.dragging = false
		m.controller.TouchEnd(core.Touch{ID: mouseTouchID, Point: p})
	}
}

// targetAt hit-tests a client point against the handle boxes. Collapsed
// handles expose their caret sub-element instead of the drag surface.
func (m *Model) targetAt(p core.Point) core.TouchTarget {
	if m.controller.HandlesShown() {
		for _, kind := range []core.HandleKind{core.StartHandle, core.EndHandle} {
			h := m.controller.HandleState(kind)
			if h.Opacity <= 0 {
				continue
			}
			if !m.screenRect(h.Bounds()).contains(p) {
				continue
			}
			switch {
			case h.Orientation == core.OrientCaret && kind == core.StartHandle:
				return core.TargetStartCaret
			case h.Orientation == core.OrientCaret:
				return core.TargetEndCaret
			case kind == core.StartHandle:
				return core.TargetStartHandle
			default:
				return core.TargetEndHandle
			}
		}
	}
	return core.TargetContent
}

// menuToolAt resolves a client point to the menu tool under it, walking the
// rendered label widths the same way composeContent lays them out.
func (m *Model) menuToolAt(p core.Point) (core.ToolName, bool) {
	menu := m.controller.MenuState()
	if !menu.Visible {
		return "", false
	}
	origin := m.screenPoint(menu.Pos)
	if p.Y != origin.Y || p.X < origin.X {
		return "", false
	}

	x := origin.X
	for _, t := range menu.Tools {
		w := float64(lipgloss.Width(t.Title()) + 2)
		if p.X < x+w {
			return t.Name, true
		}
		x += w
	}
	return "", false
}

type screenBox struct {
	min  core.Point
	size core.Point
}

func (b screenBox) contains(p core.Point) bool {
	return p.X >= b.min.X && p.X < b.min.X+b.size.X &&
		p.Y >= b.min.Y && p.Y < b.min.Y+b.size.Y
}

// screenPoint converts an overlay-space point to viewport-relative cells.
func (m *Model) screenPoint(p core.Point) core.Point {
	scroll := m.widget.ScrollOffset()
	gutter := float64(m.widget.GutterWidth())
	return core.Point{X: p.X + gutter - scroll.X, Y: p.Y - scroll.Y}
}

func (m *Model) screenRect(r core.Rect) screenBox {
	return screenBox{min: m.screenPoint(r.Min), size: r.Size}
}
