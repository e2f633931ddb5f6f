package editor

import (
	"math"

	"hapticedit/haptic"
)

// Zoom limits in visible seconds
const (
	MinVisibleSeconds = 0.1
	MaxVisibleSeconds = 600.0
)

// Viewport maps between plot space and the pixels (or terminal cells) of
// one plot. Both plots share the same viewport.
type Viewport struct {
	Start    float64 // first visible second
	Duration float64 // visible seconds
	Width    float64 // plot width in pixels
	Height   float64 // plot height in pixels
}

// End returns the last visible second
func (v Viewport) End() float64 {
	return v.Start + v.Duration
}

// ToPlot converts a pixel position (origin top left) to plot space
func (v Viewport) ToPlot(px, py float64) haptic.Vec2 {
	if v.Width <= 0 || v.Height <= 0 {
		return haptic.Vec2{X: v.Start}
	}
	return haptic.Vec2{
		X: v.Start + px/v.Width*v.Duration,
		Y: 1 - py/v.Height,
	}
}

// ToPixel converts a plot-space position to pixels
func (v Viewport) ToPixel(p haptic.Vec2) (float64, float64) {
	if v.Duration <= 0 {
		return 0, 0
	}
	return (p.X - v.Start) / v.Duration * v.Width, (1 - p.Y) * v.Height
}

// Tolerance converts a distance in pixels to half-extents in plot space
func (v Viewport) Tolerance(px float64) haptic.Vec2 {
	if v.Width <= 0 || v.Height <= 0 {
		return haptic.Vec2{}
	}
	return haptic.Vec2{X: px * v.Duration / v.Width, Y: px / v.Height}
}

// Scroll moves the visible window by dt seconds, never before 0
func (v *Viewport) Scroll(dt float64) {
	v.Start = math.Max(0, v.Start+dt)
}

// Zoom scales the visible duration around the window's start
func (v *Viewport) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	v.Duration = math.Min(MaxVisibleSeconds, math.Max(MinVisibleSeconds, v.Duration*factor))
}

// Bounds is the rectangle a dragged point is kept in
type Bounds struct {
	TimeMin, TimeMax   float64
	ValueMin, ValueMax float64
}

// Clamp moves p inside the bounds
func (b Bounds) Clamp(p haptic.Vec2) haptic.Vec2 {
	return haptic.Vec2{
		X: clamp(p.X, b.TimeMin, b.TimeMax),
		Y: clamp(p.Y, b.ValueMin, b.ValueMax),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampValue(p haptic.Vec2) haptic.Vec2 {
	p.Y = clamp(p.Y, 0, 1)
	return p
}
