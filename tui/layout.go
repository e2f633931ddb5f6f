package tui

import (
	"hapticedit/editor"
	"hapticedit/haptic"
)

const (
	gutterWidth = 6 // "1.00 │"
	chromeRows  = 6 // header, two plot titles, axis, status, help
	minPlotRows = 3
	minPlotCols = 10
)

// layoutBounds holds cached layout info, in terminal cells
type layoutBounds struct {
	plotW, plotH  int
	intensityTop  int
	sharpnessTop  int
	width, height int
}

func (b *layoutBounds) resize(width, height int) {
	b.width, b.height = width, height
	b.plotW = max(minPlotCols, width-gutterWidth)
	b.plotH = max(minPlotRows, (height-chromeRows)/2)
	b.intensityTop = 2
	b.sharpnessTop = b.intensityTop + b.plotH + 1
}

func (b *layoutBounds) top(loc haptic.PlotLocation) int {
	if loc == haptic.PlotSharpness {
		return b.sharpnessTop
	}
	return b.intensityTop
}

// viewport sizes vp to one plot: the top row is value 1, the bottom row 0
func (b *layoutBounds) viewport(vp editor.Viewport) editor.Viewport {
	vp.Width = float64(b.plotW)
	vp.Height = float64(b.plotH - 1)
	return vp
}

// locate returns the plot under a cell
func (b *layoutBounds) locate(x, y int) haptic.PlotLocation {
	if x < gutterWidth || x >= gutterWidth+b.plotW {
		return haptic.PlotOutside
	}
	switch {
	case y >= b.intensityTop && y < b.intensityTop+b.plotH:
		return haptic.PlotIntensity
	case y >= b.sharpnessTop && y < b.sharpnessTop+b.plotH:
		return haptic.PlotSharpness
	}
	return haptic.PlotOutside
}

// inEditor reports whether a cell is inside the area tracked during a
// gesture: both plots and the title row between them
func (b *layoutBounds) inEditor(x, y int) bool {
	return x >= gutterWidth && x < gutterWidth+b.plotW &&
		y >= b.intensityTop && y < b.sharpnessTop+b.plotH
}

// toPlot converts a cell to plot space relative to the plot named by loc,
// even when the cell lies on the other plot
func (b *layoutBounds) toPlot(loc haptic.PlotLocation, x, y int, vp editor.Viewport) haptic.Vec2 {
	return b.viewport(vp).ToPlot(float64(x-gutterWidth), float64(y-b.top(loc)))
}
