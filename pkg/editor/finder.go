package editor

// Finder keeps the find state of one buffer: the active query, its index and the cursor.
type Finder struct {
	buf    *Buffer
	query  Query
	index  *MatchIndex
	cursor Cursor
}

// NewFinder creates an empty finder over buf
func NewFinder(buf *Buffer) *Finder {
	f := &Finder{buf: buf}
	f.Clear()
	return f
}

// SetQuery replaces the query and rebuilds the index
func (f *Finder) SetQuery(q Query) {
	f.query = q
	f.Rebuild()
}

// Query returns the active query
func (f *Finder) Query() Query {
	return f.query
}

// Rebuild re-scans the buffer with the active query and resets the cursor to the first match
func (f *Finder) Rebuild() {
	f.index = BuildIndex(f.buf, f.query)
	f.cursor.Reset(f.index.Len())
}

// Clear drops the query and all match state
func (f *Finder) Clear() {
	f.query = Query{}
	f.index = BuildIndex(f.buf, f.query)
	f.cursor = NewCursor()
}

// Index returns the current match index
func (f *Finder) Index() *MatchIndex {
	return f.index
}

// Position returns the cursor position, or -1
func (f *Finder) Position() int {
	return f.cursor.Position()
}

// Next moves to the next match, wrapping around
func (f *Finder) Next() {
	f.cursor.Next()
}

// Previous moves to the previous match, wrapping around
func (f *Finder) Previous() {
	f.cursor.Previous()
}

// Current returns the match under the cursor
func (f *Finder) Current() (Span, bool) {
	pos := f.cursor.Position()
	if pos < 0 || pos >= f.index.Len() {
		return Span{}, false
	}
	return f.index.At(pos), true
}

// Status returns "" with no query, NotFoundStatus with no matches, or "pos / count"
func (f *Finder) Status() string {
	if f.query.IsEmpty() {
		return ""
	}
	return f.cursor.Status()
}
