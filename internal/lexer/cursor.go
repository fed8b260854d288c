package lexer

import (
	"fmt"

	"fortio.org/safecast"
)

// Cursor представляет собой позицию в исходнике
type Cursor struct {
	Src  []byte
	Off  uint32
	Line int
}

// NewCursor creates a cursor at the start of src.
func NewCursor(src []byte) Cursor {
	if _, err := safecast.Conv[uint32](len(src)); err != nil {
		panic(fmt.Errorf("len source overflow: %w", err))
	}
	return Cursor{Src: src, Line: 1}
}

// EOF проверяет, достигнут ли конец файла
func (c *Cursor) EOF() bool {
	return int(c.Off) >= len(c.Src)
}

// Peek читает текущий байт, если есть, иначе возвращает 0
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.Src[c.Off]
}

// Peek2 читает текущий и следующий байт
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if int(c.Off)+1 >= len(c.Src) {
		return 0, 0, false
	}
	return c.Src[c.Off], c.Src[c.Off+1], true
}

// Bump перемещает курсор на один байт вперед и возвращает прочитанный байт.
// Переводы строк увеличивают Line.
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.Src[c.Off]
	c.Off++
	if b == '\n' {
		c.Line++
	}
	return b
}

// Mark возвращает текущую позицию для последующего SliceFrom.
func (c *Cursor) Mark() uint32 { return c.Off }

// SliceFrom returns the source text between mark and the cursor.
func (c *Cursor) SliceFrom(mark uint32) string {
	return string(c.Src[mark:c.Off])
}
