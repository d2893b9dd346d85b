package diffview

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"
)

type syntaxClass int

const (
	syntaxClassNone syntaxClass = iota
	syntaxClassKeyword
	syntaxClassString
	syntaxClassComment
	syntaxClassNumber
	syntaxClassFunction
)

// syntaxRange covers text[start:end] in bytes.
type syntaxRange struct {
	start, end int
	class      syntaxClass
}

var syntaxStyles = map[syntaxClass]lipgloss.Style{
	syntaxClassKeyword:  lipgloss.NewStyle().Foreground(lipgloss.Color("170")),
	syntaxClassString:   lipgloss.NewStyle().Foreground(lipgloss.Color("179")),
	syntaxClassComment:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
	syntaxClassNumber:   lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	syntaxClassFunction: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
}

// Highlighter colours single lines by the lexer chroma picks for a file
// name. Lexers are looked up once per extension.
type Highlighter struct {
	mu      sync.Mutex
	byExt   map[string]chroma.Lexer
	enabled bool
}

func NewHighlighter(enabled bool) *Highlighter {
	return &Highlighter{byExt: map[string]chroma.Lexer{}, enabled: enabled}
}

func (h *Highlighter) lexer(path string) chroma.Lexer {
	key := strings.ToLower(filepath.Ext(path))
	if key == "" {
		key = filepath.Base(path)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if l, ok := h.byExt[key]; ok {
		return l
	}
	l := lexerFor(path)
	h.byExt[key] = l
	return l
}

// Render returns text with syntax colours applied. A nil or disabled
// highlighter returns text unchanged.
func (h *Highlighter) Render(path, text string) string {
	if h == nil || !h.enabled || text == "" {
		return text
	}
	return applyRanges(text, syntaxRanges(h.lexer(path), text))
}

func lexerFor(path string) chroma.Lexer {
	l := lexers.Match(filepath.Base(path))
	if l == nil || l.Config().Name == "plaintext" {
		return nil
	}
	return chroma.Coalesce(l)
}

func syntaxRangesForPath(path, text string) []syntaxRange {
	return syntaxRanges(lexerFor(path), text)
}

func syntaxRanges(l chroma.Lexer, text string) []syntaxRange {
	if l == nil || text == "" {
		return nil
	}
	it, err := l.Tokenise(nil, text)
	if err != nil {
		return nil
	}
	var out []syntaxRange
	pos := 0
	for _, tok := range it.Tokens() {
		// Lexers may append a trailing newline the line never had.
		end := min(pos+len(tok.Value), len(text))
		if class := classify(tok.Type); class != syntaxClassNone && end > pos {
			out = append(out, syntaxRange{start: pos, end: end, class: class})
		}
		pos = end
		if pos >= len(text) {
			break
		}
	}
	return out
}

func classify(t chroma.TokenType) syntaxClass {
	switch {
	case t.InCategory(chroma.Keyword):
		return syntaxClassKeyword
	case t.InSubCategory(chroma.LiteralString):
		return syntaxClassString
	case t.InCategory(chroma.Comment):
		return syntaxClassComment
	case t.InSubCategory(chroma.LiteralNumber):
		return syntaxClassNumber
	case t == chroma.NameFunction:
		return syntaxClassFunction
	}
	return syntaxClassNone
}

func applyRanges(text string, ranges []syntaxRange) string {
	if len(ranges) == 0 {
		return text
	}
	var b strings.Builder
	pos := 0
	for _, r := range ranges {
		b.WriteString(text[pos:r.start])
		b.WriteString(syntaxStyles[r.class].Render(text[r.start:r.end]))
		pos = r.end
	}
	b.WriteString(text[pos:])
	return b.String()
}
