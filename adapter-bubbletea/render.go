package bubble_adapter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"

	"github.com/ionut-t/touchselect/adapter-bubbletea/highlighter"
	"github.com/ionut-t/touchselect/core"
)

// Handle glyphs. A collapsed selection swaps both markers for the caret
// glyph so the overlapping pair reads as a single caret.
const (
	glyphHandleLeft  = "❮"
	glyphHandleRight = "❯"
	glyphCaret       = "▎"
)

// cell is one screen cell of the composed frame. Runs of cells sharing a
// style pointer are rendered together.
type cell struct {
	ch    string
	style *lipgloss.Style
}

// composeContent renders the visible slice of the buffer with gutter,
// syntax highlighting, selection background, handle glyphs and the floating
// menu, as one string for the viewport.
func (m *Model) composeContent() string {
	scroll := m.widget.ScrollOffset()
	lines := m.widget.Lines()
	gutter := m.widget.GutterWidth()
	selection := m.widget.Selection()

	rows := make([][]cell, 0, m.viewport.Height)
	for y := 0; y < m.viewport.Height; y++ {
		bufRow := y + int(scroll.Y)
		if bufRow >= len(lines) {
			rows = append(rows, m.blankRow())
			continue
		}
		rows = append(rows, m.composeRow(bufRow, lines[bufRow], gutter, scroll, selection))
	}

	m.overlayHandles(rows)
	m.overlayMenu(rows)

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		renderRow(&b, row)
	}
	return b.String()
}

func (m *Model) blankRow() []cell {
	row := make([]cell, m.width)
	for x := range row {
		row[x] = cell{ch: " "}
	}
	if m.showLineNumbers && m.width > 0 {
		row[0] = cell{ch: "~", style: &m.theme.LineNumberStyle}
	}
	return row
}

func (m *Model) composeRow(bufRow int, line string, gutter int, scroll core.Point, selection core.Range) []cell {
	row := make([]cell, 0, m.width)

	if m.showLineNumbers {
		number := fmt.Sprintf("%*d ", gutter-1, bufRow+1)
		for _, ch := range number {
			row = append(row, cell{ch: string(ch), style: &m.theme.LineNumberStyle})
		}
	} else {
		for x := 0; x < gutter; x++ {
			row = append(row, cell{ch: " "})
		}
	}

	cells := lineCells(line)
	spans := m.hl.LineSpans(bufRow)
	for x := gutter; x < m.width; x++ {
		col := x - gutter + int(scroll.X)
		c := cell{ch: " "}
		if col < len(cells) {
			c.ch = cells[col]
			c.style = styleAt(spans, col)
		}
		if inSelection(selection, bufRow, col) {
			c.style = &m.theme.SelectionStyle
		}
		row = append(row, c)
	}
	return row
}

func styleAt(spans []highlighter.Span, col int) *lipgloss.Style {
	for i := range spans {
		if col >= spans[i].Start && col < spans[i].End {
			return &spans[i].Style
		}
	}
	return nil
}

// inSelection reports whether the cell at row/col falls inside the
// half-open selection range.
func inSelection(sel core.Range, row, col int) bool {
	if sel.IsEmpty() {
		return false
	}
	if row < sel.Start.Row || row > sel.End.Row {
		return false
	}
	if row == sel.Start.Row && col < sel.Start.Col {
		return false
	}
	if row == sel.End.Row && col >= sel.End.Col {
		return false
	}
	return true
}

func (m *Model) overlayHandles(rows [][]cell) {
	if !m.controller.HandlesShown() {
		return
	}
	for _, kind := range []core.HandleKind{core.StartHandle, core.EndHandle} {
		h := m.controller.HandleState(kind)
		if h.Opacity <= 0 {
			continue
		}
		p := m.screenPoint(h.Offset)
		glyph := glyphHandleLeft
		style := &m.theme.HandleStyle
		switch {
		case h.Orientation == core.OrientCaret:
			glyph = glyphCaret
			style = &m.theme.CaretStyle
		case h.Orientation == core.OrientRight:
			glyph = glyphHandleRight
		}
		putCell(rows, p, cell{ch: glyph, style: style})
	}
}

func (m *Model) overlayMenu(rows [][]cell) {
	menu := m.controller.MenuState()
	if !menu.Visible {
		return
	}
	p := m.screenPoint(menu.Pos)
	x := p.X
	for _, t := range menu.Tools {
		label := " " + t.Title() + " "
		g := uniseg.NewGraphemes(label)
		for g.Next() {
			putCell(rows, core.Point{X: x, Y: p.Y}, cell{ch: g.Str(), style: &m.theme.MenuStyle})
			x++
		}
	}
}

func putCell(rows [][]cell, p core.Point, c cell) {
	y, x := int(p.Y), int(p.X)
	if y < 0 || y >= len(rows) || x < 0 || x >= len(rows[y]) {
		return
	}
	rows[y][x] = c
}

// renderRow flushes runs of cells that share a style in one Render call.
func renderRow(b *strings.Builder, row []cell) {
	var run strings.Builder
	var current *lipgloss.Style
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if current != nil {
			b.WriteString(current.Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		run.Reset()
	}
	for _, c := range row {
		if c.style != current {
			flush()
			current = c.style
		}
		run.WriteString(c.ch)
	}
	flush()
}

func lineCells(line string) []string {
	var cells []string
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		cells = append(cells, g.Str())
	}
	return cells
}

func (m Model) View() string {
	content := m.viewport.View()
	if !m.showStatusLine {
		return content
	}
	return lipgloss.JoinVertical(lipgloss.Left, content, m.statusLine())
}

func (m *Model) statusLine() string {
	sel := m.widget.Selection()
	status := fmt.Sprintf(" %d:%d", sel.Start.Row+1, sel.Start.Col+1)
	if !sel.IsEmpty() {
		status = fmt.Sprintf(" %d:%d to %d:%d",
			sel.Start.Row+1, sel.Start.Col+1, sel.End.Row+1, sel.End.Col+1)
	}

	line := m.theme.StatusLineStyle.Render(status)
	if m.err != nil {
		line += " " + m.theme.ErrorStyle.Render(m.err.Error())
	}

	padding := m.width - lipgloss.Width(line)
	if padding > 0 {
		line += m.theme.StatusLineStyle.Render(strings.Repeat(" ", padding))
	}
	return line
}
