package editor

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/computerscienceiscool/file-explorer/pkg/errors"
)

// EscapeLiteral escapes the pattern metacharacters . * + ? ^ $ { } ( ) | [ ] \
// so s matches only itself.
func EscapeLiteral(s string) string {
	return regexp.QuoteMeta(s)
}

// CompileLiteral builds the replace-all matcher for q: the escaped pattern, anchored
// with \b on both sides for whole-word queries, case-insensitive unless CaseSensitive.
func CompileLiteral(q Query) (*regexp.Regexp, error) {
	if q.IsEmpty() {
		return nil, fmt.Errorf("%w: empty pattern", apperrors.ErrNoActiveMatch)
	}

	expr := EscapeLiteral(q.Pattern)
	if q.WholeWord {
		expr = `\b` + expr + `\b`
	}
	if !q.CaseSensitive {
		// RE2 simple folding, not unicode.ToLower: "İ" shows in the index for "i" but is not replaced
		expr = `(?i)` + expr
	}
	return regexp.Compile(expr)
}

// ReplaceCurrent replaces the match under the cursor with text.
// The index is rebuilt afterwards, which puts the cursor back on the first match.
func (f *Finder) ReplaceCurrent(text string) error {
	span, ok := f.Current()
	if !ok {
		return apperrors.ErrNoActiveMatch
	}
	if f.index.Stale(f.buf) {
		return apperrors.ErrStaleIndex
	}

	if _, err := f.buf.ReplaceRange(span.Start, span.End, text); err != nil {
		return err
	}
	f.Rebuild()
	return nil
}

// ReplaceAll replaces every non-overlapping literal occurrence of the query in one
// left-to-right pass and returns how many were replaced. The replacement is literal.
func (f *Finder) ReplaceAll(text string) (int, error) {
	if f.index.Len() == 0 {
		return 0, apperrors.ErrNoActiveMatch
	}

	re, err := CompileLiteral(f.query)
	if err != nil {
		return 0, err
	}

	content := f.buf.Text()
	locs := re.FindAllStringIndex(content, -1)
	if len(locs) > 0 {
		var sb strings.Builder
		sb.Grow(len(content))
		last := 0
		for _, loc := range locs {
			sb.WriteString(content[last:loc[0]])
			sb.WriteString(text)
			last = loc[1]
		}
		sb.WriteString(content[last:])
		f.buf.SetText(sb.String())
	}

	f.Rebuild()
	return len(locs), nil
}
