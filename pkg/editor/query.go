package editor

// Query is the immutable set of find parameters
type Query struct {
	Pattern       string
	CaseSensitive bool
	WholeWord     bool
}

// IsEmpty reports whether the query can never match
func (q Query) IsEmpty() bool {
	return q.Pattern == ""
}

// Span is a half-open [Start, End) rune range of one match
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the span length in runes
func (s Span) Len() int {
	return s.End - s.Start
}
