package viz

import (
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBlank = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of Braille cells. Drawing coordinates are sub-pixels:
// the canvas is Width*2 by Height*4 of them.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// PixelSize is the canvas size in sub-pixels.
func (c *Canvas) PixelSize() (int, int) {
	return c.Width * 2, c.Height * 4
}

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

func (c *Canvas) Set(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	row, col, ok := c.cell(x, y)
	if !ok {
		return false
	}
	return c.Grid[row][col]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
