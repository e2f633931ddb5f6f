package editor

import "hapticedit/haptic"

// PrimitiveKind is the shape of a draw primitive
type PrimitiveKind int

const (
	PrimLine PrimitiveKind = iota
	PrimPoint
	PrimStem // vertical line from value 0 up to B
	PrimRect
)

// Style tells the renderer which role a primitive plays
type Style int

const (
	StyleCurve Style = iota
	StylePoint
	StyleTransient
	StyleHover
	StyleSelected
	StyleDragged
	StylePreview
	StyleSelection
)

// Primitive is one element of a plot, in plot space. The session produces
// them; rasterising is left to the front end.
type Primitive struct {
	Kind  PrimitiveKind
	Loc   haptic.PlotLocation
	A, B  haptic.Vec2
	Style Style
}

// Primitives returns the draw list of both plots
func (s *Session) Primitives() []Primitive {
	var out []Primitive
	for _, loc := range []haptic.PlotLocation{haptic.PlotIntensity, haptic.PlotSharpness} {
		out = append(out, s.plotPrimitives(loc)...)
	}

	if s.state == StateDragging && s.drag == nil {
		a, b := s.clickPos, s.current
		out = append(out, Primitive{Kind: PrimLine, Loc: s.clickLoc, A: a, B: b, Style: StylePreview})
	}
	if s.state == StateSelecting {
		out = append(out, Primitive{Kind: PrimRect, Loc: s.clickLoc, A: s.clickPos, B: s.current, Style: StyleSelection})
	}
	return out
}

func (s *Session) plotPrimitives(loc haptic.PlotLocation) []Primitive {
	var lines, points []Primitive
	for _, e := range s.Events.Events() {
		switch ev := e.(type) {
		case *haptic.Continuous:
			curve := ev.Curve(loc)
			for i := 1; i < len(curve); i++ {
				lines = append(lines, Primitive{Kind: PrimLine, Loc: loc, A: curve[i-1].Vec(), B: curve[i].Vec(), Style: StyleCurve})
			}
			for _, p := range curve {
				points = append(points, Primitive{Kind: PrimPoint, Loc: loc, A: p.Vec(), B: p.Vec(), Style: s.pointStyle(p, loc, StylePoint)})
			}
		case *haptic.Transient:
			p := ev.Point(loc)
			lines = append(lines, Primitive{Kind: PrimStem, Loc: loc, A: haptic.Vec2{X: p.Time}, B: p.Vec(), Style: StyleTransient})
			points = append(points, Primitive{Kind: PrimPoint, Loc: loc, A: p.Vec(), B: p.Vec(), Style: s.pointStyle(p, loc, StyleTransient)})
		}
	}
	// points are drawn over lines
	return append(lines, points...)
}

func (s *Session) pointStyle(p *haptic.EventPoint, loc haptic.PlotLocation, base Style) Style {
	switch {
	case s.drag != nil && s.drag.point == p:
		return StyleDragged
	case s.Hover == p && s.HoverLoc == loc:
		return StyleHover
	case s.Selection.Loc == loc && s.Selection.Contains(p):
		return StyleSelected
	}
	return base
}
