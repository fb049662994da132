package core

import "fmt"

// ToolName identifies a menu tool. Default tools are keyed by the fixed
// enumeration below; custom tools pick their own names.
type ToolName string

const (
	ToolCopy      ToolName = "copy"
	ToolCut       ToolName = "cut"
	ToolPaste     ToolName = "paste"
	ToolSelectAll ToolName = "selectAll"
	ToolUndo      ToolName = "undo"
	ToolRedo      ToolName = "redo"
	ToolClose     ToolName = "close"
)

// defaultToolOrder fixes the rendering order of the default tool set.
var defaultToolOrder = []ToolName{
	ToolCopy, ToolCut, ToolPaste, ToolSelectAll, ToolUndo, ToolRedo, ToolClose,
}

// Tool is one action exposed in the floating selection menu. Visual content
// is either a literal label or a zero-argument producer evaluated at render
// time; identity is the name.
type Tool struct {
	Name      ToolName
	Label     string
	LabelFunc func() string

	// Action runs when the tool is activated. Errors (and panics) are
	// routed to the controller's tool error handler, never propagated.
	Action func() error
}

// Title resolves the tool's visual content.
func (t Tool) Title() string {
	if t.LabelFunc != nil {
		return t.LabelFunc()
	}
	return t.Label
}

// MenuState is a render snapshot of the floating menu, in overlay space.
type MenuState struct {
	Visible bool
	Pos     Point
	Size    Point
	Tools   []Tool
}

// PlaceMenu computes the menu's top-left corner near an anchor handle.
// The candidate position is horizontally centered on the handle and sits
// just above it; when that overflows the container's top edge it flips to
// just below the handle plus one line height. The result is clamped into
// the container bounds, then re-clamped into the host viewport when one is
// given, so the menu never lands off-screen.
func PlaceMenu(anchor Rect, size Point, bounds Rect, lineHeight float64, viewport *Rect) Point {
	pos := Point{
		X: anchor.Center().X - size.X/2,
		Y: anchor.Min.Y - size.Y,
	}
	if pos.Y < bounds.Min.Y {
		pos.Y = anchor.Min.Y + anchor.Size.Y + lineHeight
	}

	pos = clampInto(pos, size, bounds)
	if viewport != nil {
		pos = clampInto(pos, size, *viewport)
	}
	return pos
}

func clampInto(pos, size Point, b Rect) Point {
	if pos.X+size.X > b.Min.X+b.Size.X {
		pos.X = b.Min.X + b.Size.X - size.X
	}
	if pos.Y+size.Y > b.Min.Y+b.Size.Y {
		pos.Y = b.Min.Y + b.Size.Y - size.Y
	}
	if pos.X < b.Min.X {
		pos.X = b.Min.X
	}
	if pos.Y < b.Min.Y {
		pos.Y = b.Min.Y
	}
	return pos
}

// buildTools constructs the tool registry, once per attachment. A caller
// supplied selector receives the defaults and may return a replacement
// sequence; nil or empty keeps the unmodified defaults.
func (c *Controller) buildTools() []Tool {
	defaults := c.defaultTools()

	ordered := make([]Tool, 0, len(defaultToolOrder))
	for _, name := range defaultToolOrder {
		ordered = append(ordered, defaults[name])
	}

	if c.opts.Tools == nil {
		return ordered
	}

	selected := c.opts.Tools(ToolContext{
		Widget:    c.widget,
		Defaults:  defaults,
		OpenMenu:  c.OpenMenu,
		CloseMenu: c.CloseMenu,
	})
	if len(selected) == 0 {
		return ordered
	}
	return selected
}

func (c *Controller) defaultTools() map[ToolName]Tool {
	return map[ToolName]Tool{
		ToolCopy:      {Name: ToolCopy, Label: "Copy", Action: c.copyAction},
		ToolCut:       {Name: ToolCut, Label: "Cut", Action: c.cutAction},
		ToolPaste:     {Name: ToolPaste, Label: "Paste", Action: c.pasteAction},
		ToolSelectAll: {Name: ToolSelectAll, Label: "Select all", Action: c.selectAllAction},
		ToolUndo:      {Name: ToolUndo, Label: "Undo", Action: c.undoAction},
		ToolRedo:      {Name: ToolRedo, Label: "Redo", Action: c.redoAction},
		ToolClose:     {Name: ToolClose, Label: "Close", Action: c.closeAction},
	}
}

func (c *Controller) copyAction() error {
	text := c.widget.SelectedText()
	if text == "" {
		// Nothing to copy; the menu stays open so the user can retry.
		return ErrNothingSelected
	}
	if c.opts.Clipboard == nil {
		return ErrNoClipboard
	}
	if err := c.opts.Clipboard.Write(text); err != nil {
		return err
	}
	c.CloseMenu()
	return nil
}

func (c *Controller) cutAction() error {
	text := c.widget.SelectedText()
	if text == "" {
		return ErrNothingSelected
	}
	if c.opts.Clipboard == nil {
		return ErrNoClipboard
	}
	if err := c.opts.Clipboard.Write(text); err != nil {
		return err
	}
	if err := c.widget.ApplyEdit(c.widget.Selection(), "", EditSourceCut); err != nil {
		return err
	}
	c.CloseMenu()
	return nil
}

func (c *Controller) pasteAction() error {
	if c.opts.Clipboard == nil {
		return ErrNoClipboard
	}
	text, err := c.opts.Clipboard.Read()
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	if err := c.widget.ApplyEdit(c.widget.Selection(), text, EditSourcePaste); err != nil {
		return err
	}
	c.CloseMenu()
	return nil
}

func (c *Controller) selectAllAction() error {
	c.widget.Focus()
	c.widget.SetSelection(c.widget.FullRange())
	c.reopenMenu()
	return nil
}

func (c *Controller) undoAction() error {
	if err := c.widget.Undo(); err != nil {
		return err
	}
	c.reopenMenu()
	return nil
}

func (c *Controller) redoAction() error {
	if err := c.widget.Redo(); err != nil {
		return err
	}
	c.reopenMenu()
	return nil
}

func (c *Controller) closeAction() error {
	c.CloseMenu()
	return nil
}

// ActivateTool runs the named tool's action. Action errors and panics are
// routed to the tool error handler; the menu's open state is left unchanged
// on failure.
func (c *Controller) ActivateTool(name ToolName) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	var tool *Tool
	for i := range c.tools {
		if c.tools[i].Name == name {
			tool = &c.tools[i]
			break
		}
	}
	c.mu.Unlock()

	if tool == nil || tool.Action == nil {
		c.opts.ToolActionErrorHandler(name, ErrUnknownTool)
		return
	}
	c.runTool(*tool)
}

func (c *Controller) runTool(t Tool) {
	defer func() {
		if r := recover(); r != nil {
			c.opts.ToolActionErrorHandler(t.Name, recoveredError(r))
		}
	}()
	if err := t.Action(); err != nil {
		c.opts.ToolActionErrorHandler(t.Name, err)
	}
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicError{value: r}
}

type panicError struct {
	value any
}

func (p *panicError) Error() string {
	return fmt.Sprintf("tool action panicked: %v", p.value)
}
