package scene

import (
	"math"
	"strings"
)

// Render draws the scene through the viewport into width x height cells.
// Guides go first, then labels, then boxes; active objects get '#'
// borders.
func (c *Canvas) Render(width, height int) []string {
	if height < 1 {
		height = 1
	}
	if width < 1 {
		width = 1
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for _, kind := range []Kind{KindGuide, KindText, KindBox} {
		for _, o := range c.objects {
			if o.Kind != kind {
				continue
			}
			x, y := c.screenPoint(o.X, o.Y)
			switch o.Kind {
			case KindGuide:
				w, h := c.screenSize(o.Width, o.Height)
				drawGuideAt(grid, x, y, w, h)
			case KindText:
				drawTextAt(grid, o.Lines, x, y)
			case KindBox:
				w, h := c.screenSize(o.Width, o.Height)
				drawBoxAt(grid, o.Lines, x, y, w, h, c.IsActive(o.ID))
			}
		}
	}

	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = string(row)
	}
	return lines
}

func (c *Canvas) screenPoint(x, y float64) (int, int) {
	sx, sy := c.viewport.TransformPoint(x, y)
	return int(math.Round(sx)), int(math.Round(sy))
}

func (c *Canvas) screenSize(w, h float64) (int, int) {
	return int(math.Round(w * c.viewport.XX)), int(math.Round(h * c.viewport.YY))
}

func inGrid(grid [][]rune, x, y int) bool {
	return y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y])
}

func drawBoxAt(grid [][]rune, lines []string, boxX, boxY, width, height int, selected bool) {
	corner, horizontal, vertical := '+', '-', '|'
	if selected {
		corner, horizontal, vertical = '#', '#', '#'
	}

	for y := boxY; y < boxY+height; y++ {
		for x := boxX; x < boxX+width; x++ {
			if !inGrid(grid, x, y) {
				continue
			}
			top := y == boxY || y == boxY+height-1
			side := x == boxX || x == boxX+width-1
			switch {
			case top && side:
				grid[y][x] = corner
			case top:
				grid[y][x] = horizontal
			case side:
				grid[y][x] = vertical
			default:
				grid[y][x] = ' '
			}
		}
	}

	maxWidth := width - 2
	for lineIdx, line := range lines {
		textY := boxY + 1 + lineIdx
		if textY >= boxY+height-1 {
			break
		}
		for i, char := range []rune(line) {
			if i >= maxWidth {
				break
			}
			if inGrid(grid, boxX+1+i, textY) {
				grid[textY][boxX+1+i] = char
			}
		}
	}
}

func drawTextAt(grid [][]rune, lines []string, textX, textY int) {
	for lineIdx, line := range lines {
		for i, char := range []rune(line) {
			if inGrid(grid, textX+i, textY+lineIdx) {
				grid[textY+lineIdx][textX+i] = char
			}
		}
	}
}

// drawGuideAt draws a dotted print-area outline.
func drawGuideAt(grid [][]rune, gx, gy, width, height int) {
	for y := gy; y < gy+height; y++ {
		for x := gx; x < gx+width; x++ {
			edge := y == gy || y == gy+height-1 || x == gx || x == gx+width-1
			if edge && inGrid(grid, x, y) {
				grid[y][x] = '·'
			}
		}
	}
}
