package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/computerscienceiscool/file-explorer/pkg/editor"
)

// Styles contains the style definitions used when printing a buffer
type Styles struct {
	Match      lipgloss.Style
	Current    lipgloss.Style
	LineNumber lipgloss.Style
	Status     lipgloss.Style
	Dirty      lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() Styles {
	return Styles{
		Match:      lipgloss.NewStyle().Background(lipgloss.Color("238")).TabWidth(lipgloss.NoTabConversion),
		Current:    lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true).TabWidth(lipgloss.NoTabConversion),
		LineNumber: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Status:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Dirty:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
	}
}

// Options controls what Render prints
type Options struct {
	LineNumbers  bool
	OnlyMatching bool
}

// Highlighter prints buffer text with the match index projected onto it
type Highlighter struct {
	styles Styles
}

// NewHighlighter creates a highlighter with the given styles
func NewHighlighter(styles Styles) *Highlighter {
	return &Highlighter{styles: styles}
}

const (
	markNone = iota
	markMatch
	markCurrent
)

// Render highlights every span in text and the span at index current.
// Spans are rune offsets. Overlapping spans are merged for display.
func (h *Highlighter) Render(text string, spans []editor.Span, current int, opts Options) string {
	runes := []rune(text)
	marks := make([]uint8, len(runes))
	for i, s := range spans {
		mark := uint8(markMatch)
		if i == current {
			mark = markCurrent
		}
		for p := max(s.Start, 0); p < s.End && p < len(runes); p++ {
			if marks[p] < mark {
				marks[p] = mark
			}
		}
	}

	lineCount := strings.Count(text, "\n") + 1
	width := len(fmt.Sprint(lineCount))

	var out []string
	start := 0
	for n := 1; n <= lineCount; n++ {
		end := start
		for end < len(runes) && runes[end] != '\n' {
			end++
		}

		if !opts.OnlyMatching || hasMark(marks[start:end]) {
			var b strings.Builder
			if opts.LineNumbers {
				b.WriteString(h.styles.LineNumber.Render(fmt.Sprintf("%*d", width, n)))
				b.WriteString(" ")
			}
			h.writeLine(&b, runes[start:end], marks[start:end])
			out = append(out, b.String())
		}
		start = end + 1
	}
	return strings.Join(out, "\n")
}

func (h *Highlighter) writeLine(b *strings.Builder, runes []rune, marks []uint8) {
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && marks[j] == marks[i] {
			j++
		}
		segment := string(runes[i:j])
		switch marks[i] {
		case markCurrent:
			b.WriteString(h.styles.Current.Render(segment))
		case markMatch:
			b.WriteString(h.styles.Match.Render(segment))
		default:
			b.WriteString(segment)
		}
		i = j
	}
}

func hasMark(marks []uint8) bool {
	for _, m := range marks {
		if m != markNone {
			return true
		}
	}
	return false
}

// StatusLine renders the counters shown under the editor
func (h *Highlighter) StatusLine(stats editor.Stats, findStatus string, dirty bool) string {
	parts := []string{
		fmt.Sprintf("Lines: %d", stats.Lines),
		fmt.Sprintf("Characters: %d", stats.Chars),
	}
	if findStatus != "" {
		parts = append(parts, findStatus)
	}
	line := h.styles.Status.Render(strings.Join(parts, " | "))
	if dirty {
		line += " " + h.styles.Dirty.Render("[modified]")
	}
	return line
}
