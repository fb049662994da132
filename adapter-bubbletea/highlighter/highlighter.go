package highlighter

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// Span is one styled run of a line, in grapheme-cluster columns.
type Span struct {
	Start int
	End   int
	Style lipgloss.Style
}

// Highlighter tokenizes widget content with chroma and serves per-line
// styled spans. Tokens are cached per line; the cache must be invalidated
// whenever content changes.
type Highlighter struct {
	lexer      chroma.Lexer
	style      *chroma.Style
	cache      map[int][]Span
	styleCache map[chroma.TokenType]lipgloss.Style
	mu         sync.RWMutex
}

// New builds a highlighter for a language and chroma theme. Unknown
// languages fall back to plain text.
func New(language, theme string) *Highlighter {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	return &Highlighter{
		lexer:      lexer,
		style:      styles.Get(theme),
		cache:      make(map[int][]Span),
		styleCache: make(map[chroma.TokenType]lipgloss.Style),
	}
}

// Invalidate drops all cached tokens. Call after any content mutation.
func (h *Highlighter) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cache = make(map[int][]Span)
}

// Tokenize runs the lexer over the full content and rebuilds the line
// cache. Multi-line constructs (block comments, raw strings) need the whole
// document, so tokenization is not line-at-a-time.
func (h *Highlighter) Tokenize(lines []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cache = make(map[int][]Span)
	content := strings.Join(lines, "\n")
	if content == "" {
		return
	}

	iterator, err := h.lexer.Tokenise(nil, content)
	if err != nil {
		return
	}

	line := 0
	col := 0
	for _, token := range iterator.Tokens() {
		style := h.styleFor(token.Type)
		parts := strings.Split(token.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				line++
				col = 0
			}
			if part == "" {
				continue
			}
			n := len([]rune(part))
			h.cache[line] = append(h.cache[line], Span{Start: col, End: col + n, Style: style})
			col += n
		}
	}
}

// LineSpans returns the cached styled spans for one line, or nil when the
// line has none (plain rendering).
func (h *Highlighter) LineSpans(line int) []Span {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cache[line]
}

func (h *Highlighter) styleFor(t chroma.TokenType) lipgloss.Style {
	if s, ok := h.styleCache[t]; ok {
		return s
	}

	entry := h.style.Get(t)
	s := lipgloss.NewStyle()
	if entry.Colour.IsSet() {
		s = s.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		s = s.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		s = s.Italic(true)
	}
	h.styleCache[t] = s
	return s
}
