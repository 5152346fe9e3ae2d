package editor

import "unicode"

// MatchIndex is the ordered list of matches of one query against one buffer revision
type MatchIndex struct {
	query Query
	rev   uint64
	spans []Span
}

// BuildIndex scans buf for q.
//
// The scan is a literal search that restarts one rune after each candidate start,
// accepted or not, so overlapping matches are all reported: "aa" in "aaa" yields
// [0,2) and [1,3). With WholeWord set, a candidate is dropped when the rune on either
// side of it is a word character.
func BuildIndex(buf *Buffer, q Query) *MatchIndex {
	idx := &MatchIndex{query: q, rev: buf.Revision()}
	if q.IsEmpty() {
		return idx
	}

	content := buf.Runes()
	pattern := []rune(q.Pattern)
	haystack, needle := content, pattern
	if !q.CaseSensitive {
		haystack = foldRunes(content)
		needle = foldRunes(pattern)
	}

	pos := 0
	for {
		i := indexRunes(haystack, needle, pos)
		if i < 0 {
			break
		}
		end := i + len(pattern)
		if !q.WholeWord || (isBoundary(content, i-1) && isBoundary(content, end)) {
			idx.spans = append(idx.spans, Span{Start: i, End: end})
		}
		pos = i + 1
	}

	return idx
}

// Spans returns the matches, earliest start first
func (m *MatchIndex) Spans() []Span {
	return m.spans
}

// Len returns the number of matches
func (m *MatchIndex) Len() int {
	return len(m.spans)
}

// At returns the i-th match
func (m *MatchIndex) At(i int) Span {
	return m.spans[i]
}

// Query returns the query the index was built for
func (m *MatchIndex) Query() Query {
	return m.query
}

// Stale reports whether buf changed since the index was built
func (m *MatchIndex) Stale(buf *Buffer) bool {
	return m.rev != buf.Revision()
}

// indexRunes returns the first offset >= from where needle starts in haystack, or -1
func indexRunes(haystack, needle []rune, from int) int {
	last := len(haystack) - len(needle)
	for i := from; i <= last; i++ {
		j := 0
		for j < len(needle) && haystack[i+j] == needle[j] {
			j++
		}
		if j == len(needle) {
			return i
		}
	}
	return -1
}

// foldRunes lower-cases rune by rune so offsets in the result match the input
func foldRunes(in []rune) []rune {
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = unicode.ToLower(r)
	}
	return out
}

// isBoundary reports whether position i is outside content or holds a non-word rune
func isBoundary(content []rune, i int) bool {
	if i < 0 || i >= len(content) {
		return true
	}
	return !isWordRune(content[i])
}

// isWordRune matches the ASCII class [A-Za-z0-9_], the same class RE2 uses for \b
func isWordRune(r rune) bool {
	return r == '_' ||
		('a' <= r && r <= 'z') ||
		('A' <= r && r <= 'Z') ||
		('0' <= r && r <= '9')
}
