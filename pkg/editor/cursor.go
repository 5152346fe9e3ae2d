package editor

import "fmt"

// NotFoundStatus is reported when a non-empty query has no matches
const NotFoundStatus = "not found"

// Cursor tracks the current match over an index of n matches.
// Position is -1 exactly when there are no matches.
type Cursor struct {
	position int
	count    int
}

// NewCursor returns a cursor over no matches
func NewCursor() Cursor {
	return Cursor{position: -1}
}

// Reset places the cursor on the first of n matches
func (c *Cursor) Reset(n int) {
	c.count = n
	if n > 0 {
		c.position = 0
	} else {
		c.position = -1
	}
}

// Next moves forward, wrapping to the first match
func (c *Cursor) Next() {
	if c.count == 0 {
		return
	}
	c.position = (c.position + 1) % c.count
}

// Previous moves backward, wrapping to the last match
func (c *Cursor) Previous() {
	if c.count == 0 {
		return
	}
	if c.position <= 0 {
		c.position = c.count - 1
	} else {
		c.position--
	}
}

// Position returns the current match index, or -1
func (c *Cursor) Position() int {
	return c.position
}

// Count returns the number of matches the cursor moves over
func (c *Cursor) Count() int {
	return c.count
}

// Status renders "pos / count", or NotFoundStatus when there are no matches
func (c *Cursor) Status() string {
	if c.count == 0 {
		return NotFoundStatus
	}
	return fmt.Sprintf("%d / %d", c.position+1, c.count)
}
