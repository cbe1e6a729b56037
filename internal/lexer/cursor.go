package lexer

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"

	"safec/internal/source"
)

// Cursor walks the bytes of one file. Reads past the end yield 0.
type Cursor struct {
	File *source.File
	Off  uint32
	src  []byte
	end  uint32
}

func NewCursor(f *source.File) Cursor {
	end, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("lexer: file %s too large: %w", f.Path, err))
	}
	return Cursor{File: f, src: f.Content, end: end}
}

func (c *Cursor) EOF() bool { return c.Off >= c.end }

func (c *Cursor) Peek() byte { return c.PeekAt(0) }

// PeekAt looks n bytes ahead without moving.
func (c *Cursor) PeekAt(n uint32) byte {
	if i := c.Off + n; i < c.end {
		return c.src[i]
	}
	return 0
}

// Rest is the unread input.
func (c *Cursor) Rest() []byte { return c.src[min(c.Off, c.end):] }

func (c *Cursor) HasPrefix(s string) bool {
	return bytes.HasPrefix(c.Rest(), []byte(s))
}

// Advance moves forward n bytes, stopping at EOF.
func (c *Cursor) Advance(n uint32) { c.Off = min(c.Off+n, c.end) }

// Bump consumes one byte and returns it.
func (c *Cursor) Bump() byte {
	b := c.Peek()
	c.Advance(1)
	return b
}

// Eat consumes b if it is next.
func (c *Cursor) Eat(b byte) bool {
	if c.EOF() || c.src[c.Off] != b {
		return false
	}
	c.Off++
	return true
}

// Mark is a saved offset; SpanFrom closes a span at the current offset.
type Mark uint32

func (c *Cursor) Mark() Mark { return Mark(c.Off) }

func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.File.ID, Start: uint32(m), End: c.Off}
}

// Rewind returns to m.
func (c *Cursor) Rewind(m Mark) { c.Off = uint32(m) }

// Drain consumes the rest of the input.
func (c *Cursor) Drain() { c.Off = c.end }
