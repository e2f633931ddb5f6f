package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hapticedit/editor"
	"hapticedit/haptic"
	"hapticedit/theme"
)

type cell struct {
	r     rune
	color lipgloss.Color
}

// Canvas rasterises the draw primitives of one plot into terminal cells.
// The viewport it draws with must map plot space onto Width columns and
// Height+1 rows.
type Canvas struct {
	width, height int
	cells         []cell
	theme         *theme.Theme
}

func NewCanvas(width, height int, th *theme.Theme) *Canvas {
	width, height = max(1, width), max(1, height)
	c := &Canvas{width: width, height: height, theme: th, cells: make([]cell, width*height)}
	c.Clear()
	return c
}

// PlotViewport returns vp resized to the canvas
func (c *Canvas) PlotViewport(vp editor.Viewport) editor.Viewport {
	vp.Width = float64(c.width)
	vp.Height = float64(c.height - 1)
	return vp
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{r: ' '}
	}
}

func (c *Canvas) Set(col, row int, r rune, color lipgloss.Color) {
	if col < 0 || col >= c.width || row < 0 || row >= c.height {
		return
	}
	c.cells[row*c.width+col] = cell{r: r, color: color}
}

// At returns the rune drawn at a cell
func (c *Canvas) At(col, row int) rune {
	if col < 0 || col >= c.width || row < 0 || row >= c.height {
		return 0
	}
	return c.cells[row*c.width+col].r
}

func (c *Canvas) toCell(vp editor.Viewport, p haptic.Vec2) (int, int) {
	x, y := vp.ToPixel(p)
	return int(math.Round(x)), int(math.Round(y))
}

// DrawWave fills the area under values, one value per step seconds,
// behind everything else
func (c *Canvas) DrawWave(vp editor.Viewport, values []float64, step float64) {
	if step <= 0 || len(values) == 0 {
		return
	}
	vp = c.PlotViewport(vp)
	for col := 0; col < c.width; col++ {
		t := vp.ToPlot(float64(col), 0).X
		idx := int(t / step)
		if idx < 0 || idx >= len(values) {
			continue
		}
		_, top := c.toCell(vp, haptic.Vec2{X: t, Y: values[idx]})
		for row := c.height - 1; row >= top && row >= 0; row-- {
			c.Set(col, row, c.theme.Symbols.Wave, c.theme.Muted())
		}
	}
}

// Draw renders the primitives that belong to plot loc
func (c *Canvas) Draw(prims []editor.Primitive, loc haptic.PlotLocation, vp editor.Viewport) {
	vp = c.PlotViewport(vp)
	base := c.theme.Intensity()
	if loc == haptic.PlotSharpness {
		base = c.theme.Sharpness()
	}

	sym := c.theme.Symbols
	for _, p := range prims {
		if p.Loc != loc {
			continue
		}
		x0, y0 := c.toCell(vp, p.A)
		x1, y1 := c.toCell(vp, p.B)

		switch p.Kind {
		case editor.PrimLine:
			r, color := sym.Line, base
			if p.Style == editor.StylePreview {
				r, color = sym.Preview, c.theme.Hover()
			}
			c.line(x0, y0, x1, y1, r, color)
		case editor.PrimStem:
			c.line(x1, c.height-1, x1, y1, sym.Stem, base)
		case editor.PrimRect:
			c.rect(x0, y0, x1, y1, sym.Selection, c.theme.Selection())
		case editor.PrimPoint:
			r, color := c.pointGlyph(p.Style, base)
			c.Set(x0, y0, r, color)
		}
	}
}

func (c *Canvas) pointGlyph(style editor.Style, base lipgloss.Color) (rune, lipgloss.Color) {
	sym := c.theme.Symbols
	switch style {
	case editor.StyleTransient:
		return sym.Transient, base
	case editor.StyleHover:
		return sym.Hover, c.theme.Hover()
	case editor.StyleSelected:
		return sym.Selected, c.theme.Selection()
	case editor.StyleDragged:
		return sym.Dragged, c.theme.Hover()
	}
	return sym.Point, base
}

// line draws with Bresenham's algorithm
func (c *Canvas) line(x0, y0, x1, y1 int, r rune, color lipgloss.Color) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.Set(x0, y0, r, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) rect(x0, y0, x1, y1 int, r rune, color lipgloss.Color) {
	c.line(x0, y0, x1, y0, r, color)
	c.line(x1, y0, x1, y1, r, color)
	c.line(x1, y1, x0, y1, r, color)
	c.line(x0, y1, x0, y0, r, color)
}

// Render returns the canvas as styled lines
func (c *Canvas) Render() string {
	lines := make([]string, c.height)
	for row := range c.height {
		var b strings.Builder
		runStart := 0
		flush := func(end int) {
			if end <= runStart {
				return
			}
			cells := c.cells[row*c.width+runStart : row*c.width+end]
			runes := make([]rune, len(cells))
			for i, cl := range cells {
				runes[i] = cl.r
			}
			if cells[0].color == "" {
				b.WriteString(string(runes))
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(cells[0].color).Render(string(runes)))
			}
			runStart = end
		}
		for col := 1; col < c.width; col++ {
			if c.cells[row*c.width+col].color != c.cells[row*c.width+col-1].color {
				flush(col)
			}
		}
		flush(c.width)
		lines[row] = b.String()
	}
	return strings.Join(lines, "\n")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
