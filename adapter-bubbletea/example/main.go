package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	touchselect "github.com/ionut-t/touchselect/adapter-bubbletea"
)

func languageFor(file string) string {
	switch strings.TrimPrefix(filepath.Ext(file), ".") {
	case "go":
		return "go"
	case "md":
		return "markdown"
	case "sql":
		return "sql"
	case "json":
		return "json"
	default:
		return ""
	}
}

func main() {
	file := "example.md"
	if len(os.Args) > 1 {
		file = os.Args[1]
	}

	content := "# touchselect\n\nDrag the selection handles with the mouse.\nRelease to open the action menu."
	if data, err := os.ReadFile(file); err == nil {
		content = string(data)
	}

	m, err := touchselect.New(content, 80, 24)
	if err != nil {
		log.Fatal(err)
	}
	m.WithHighlighter(languageFor(file), "catppuccin-mocha")

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}
