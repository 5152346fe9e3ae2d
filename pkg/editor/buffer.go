package editor

import (
	apperrors "github.com/computerscienceiscool/file-explorer/pkg/errors"
)

// Buffer holds the editable text of one open file.
// Offsets are rune offsets; the content is always a complete string.
type Buffer struct {
	text []rune
	rev  uint64
}

// NewBuffer creates a buffer holding content
func NewBuffer(content string) *Buffer {
	return &Buffer{text: []rune(content)}
}

// Text returns the current content
func (b *Buffer) Text() string {
	return string(b.text)
}

// Runes returns the content as runes. Callers must not modify the slice.
func (b *Buffer) Runes() []rune {
	return b.text
}

// Len returns the content length in runes
func (b *Buffer) Len() int {
	return len(b.text)
}

// Revision increases on every mutation
func (b *Buffer) Revision() uint64 {
	return b.rev
}

// ReplaceRange replaces [start, end) with text and returns the new content.
// Invalid offsets leave the buffer untouched.
func (b *Buffer) ReplaceRange(start, end int, text string) (string, error) {
	if start < 0 || end > len(b.text) || start > end {
		return "", &apperrors.RangeError{Start: start, End: end, Len: len(b.text)}
	}

	insert := []rune(text)
	next := make([]rune, 0, len(b.text)-(end-start)+len(insert))
	next = append(next, b.text[:start]...)
	next = append(next, insert...)
	next = append(next, b.text[end:]...)

	b.text = next
	b.rev++
	return string(b.text), nil
}

// SetText replaces the whole content
func (b *Buffer) SetText(text string) {
	b.text = []rune(text)
	b.rev++
}
