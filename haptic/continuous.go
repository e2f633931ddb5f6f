package haptic

import (
	"fmt"

	"hapticedit/debug"
)

// MaxControlPoints is the most control points one ParameterCurve may carry
const MaxControlPoints = 16

// Continuous is a haptic effect spanning a time range. Its intensity and
// sharpness curves each hold at least two points, are strictly increasing
// in time and share their first and last times.
type Continuous struct {
	id             EventID
	IntensityCurve []*EventPoint
	SharpnessCurve []*EventPoint
}

// NewContinuous creates a two-point continuous event from t0 to t1
func NewContinuous(t0, t1, intensity0, sharpness0, intensity1, sharpness1 float64) *Continuous {
	id := nextEventID()
	return &Continuous{
		id:             id,
		IntensityCurve: []*EventPoint{newPoint(t0, intensity0, id), newPoint(t1, intensity1, id)},
		SharpnessCurve: []*EventPoint{newPoint(t0, sharpness0, id), newPoint(t1, sharpness1, id)},
	}
}

// NewContinuousFromClicks creates an event between two clicks on plot loc.
// The clicked plot takes the clicked values, the other plot DefaultValue.
func NewContinuousFromClicks(a, b Vec2, loc PlotLocation) *Continuous {
	if b.X < a.X {
		a, b = b, a
	}
	if loc == PlotSharpness {
		return NewContinuous(a.X, b.X, DefaultValue, a.Y, DefaultValue, b.Y)
	}
	return NewContinuous(a.X, b.X, a.Y, DefaultValue, b.Y, DefaultValue)
}

// NewContinuousFromCurves builds an event from already ordered curves.
// Both curves need two points and matching first and last times.
func NewContinuousFromCurves(intensity, sharpness []Vec2) (*Continuous, error) {
	if len(intensity) < 2 || len(sharpness) < 2 {
		return nil, fmt.Errorf("%w: curves need at least 2 points (intensity=%d sharpness=%d)",
			ErrInvalidCurve, len(intensity), len(sharpness))
	}
	if err := checkIncreasing(intensity); err != nil {
		return nil, fmt.Errorf("intensity: %w", err)
	}
	if err := checkIncreasing(sharpness); err != nil {
		return nil, fmt.Errorf("sharpness: %w", err)
	}
	if !sameTime(intensity[0].X, sharpness[0].X) || !sameTime(intensity[len(intensity)-1].X, sharpness[len(sharpness)-1].X) {
		return nil, fmt.Errorf("%w: intensity and sharpness curves do not share start and end", ErrInvalidCurve)
	}

	id := nextEventID()
	c := &Continuous{id: id}
	for _, v := range intensity {
		c.IntensityCurve = append(c.IntensityCurve, newPoint(v.X, v.Y, id))
	}
	for _, v := range sharpness {
		c.SharpnessCurve = append(c.SharpnessCurve, newPoint(v.X, v.Y, id))
	}
	// exact equality after construction
	c.SharpnessCurve[0].Time = c.IntensityCurve[0].Time
	c.SharpnessCurve[len(c.SharpnessCurve)-1].Time = c.IntensityCurve[len(c.IntensityCurve)-1].Time
	return c, nil
}

func checkIncreasing(points []Vec2) error {
	for i := 1; i < len(points); i++ {
		if points[i].X <= points[i-1].X {
			return fmt.Errorf("%w: point %d at %.6f is not after %.6f", ErrInvalidCurve, i, points[i].X, points[i-1].X)
		}
	}
	return nil
}

func sameTime(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func (c *Continuous) isEvent()        {}
func (c *Continuous) ID() EventID     { return c.id }
func (c *Continuous) Kind() EventKind { return KindContinuous }
func (c *Continuous) Time() float64   { return c.IntensityCurve[0].Time }

func (c *Continuous) TimeMax() float64 {
	return c.IntensityCurve[len(c.IntensityCurve)-1].Time
}

// Contains reports whether t lies within [Time, TimeMax]
func (c *Continuous) Contains(t float64) bool {
	return t >= c.Time() && t <= c.TimeMax()
}

// Overlaps reports whether [t0, t1] intersects the event's span
func (c *Continuous) Overlaps(t0, t1 float64) bool {
	if t1 < t0 {
		t0, t1 = t1, t0
	}
	return t0 <= c.TimeMax() && t1 >= c.Time()
}

// Curve returns the curve drawn on plot loc, nil for PlotOutside
func (c *Continuous) Curve(loc PlotLocation) []*EventPoint {
	switch loc {
	case PlotIntensity:
		return c.IntensityCurve
	case PlotSharpness:
		return c.SharpnessCurve
	}
	return nil
}

func (c *Continuous) setCurve(loc PlotLocation, points []*EventPoint) {
	if loc == PlotSharpness {
		c.SharpnessCurve = points
	} else {
		c.IntensityCurve = points
	}
}

func (c *Continuous) Points(loc PlotLocation) []*EventPoint {
	return c.Curve(loc)
}

// IndexOf returns the position of p in the curve on plot loc, or -1
func (c *Continuous) IndexOf(p *EventPoint, loc PlotLocation) int {
	for i, q := range c.Curve(loc) {
		if q == p {
			return i
		}
	}
	return -1
}

// AddPointToCurve inserts a point into the curve on plot loc and keeps the
// curve sorted. The caller keeps the point clear of its neighbours.
func (c *Continuous) AddPointToCurve(pos Vec2, loc PlotLocation) (*EventPoint, error) {
	if loc == PlotOutside {
		debug.Log("gesture", "add point at %.3f: plot location is outside", pos.X)
		return nil, ErrOutsidePlot
	}
	curve := c.Curve(loc)
	if len(curve) < 2 {
		debug.Log("gesture", "add point to %s curve with %d points", loc, len(curve))
		return nil, fmt.Errorf("%w: %s curve has %d points", ErrInvalidGesture, loc, len(curve))
	}

	p := newPoint(pos.X, pos.Y, c.id)
	curve = append(curve, p)
	sortPoints(curve)
	c.setCurve(loc, curve)
	return p, nil
}

func (c *Continuous) IsOnPointInEvent(q, tol Vec2, loc PlotLocation) *EventPoint {
	for _, p := range c.Curve(loc) {
		if p.within(q, tol) {
			return p
		}
	}
	return nil
}

// ShouldRemoveEventAfterRemovingPoint refuses to remove an endpoint while
// interior points exist. Otherwise the point is removed and the result says
// whether the curve fell below two points.
func (c *Continuous) ShouldRemoveEventAfterRemovingPoint(p *EventPoint, loc PlotLocation) bool {
	curve := c.Curve(loc)
	idx := c.IndexOf(p, loc)
	if idx < 0 {
		return false
	}
	if (idx == 0 || idx == len(curve)-1) && len(curve) > 2 {
		return false
	}

	curve = append(curve[:idx:idx], curve[idx+1:]...)
	c.setCurve(loc, curve)
	return len(curve) < 2
}

// SetStartTime moves the first point of both curves
func (c *Continuous) SetStartTime(t float64) {
	c.IntensityCurve[0].Time = t
	c.SharpnessCurve[0].Time = t
}

// SetEndTime moves the last point of both curves
func (c *Continuous) SetEndTime(t float64) {
	c.IntensityCurve[len(c.IntensityCurve)-1].Time = t
	c.SharpnessCurve[len(c.SharpnessCurve)-1].Time = t
}

func (c *Continuous) ToSparsePatterns() []Pattern {
	start := c.Time()
	duration := c.TimeMax() - start

	patterns := []Pattern{{
		Event: &PatternEvent{
			Time:          start,
			EventType:     EventTypeContinuous,
			EventDuration: &duration,
			EventParameters: []EventParameter{
				{ParameterID: ParamIntensity, ParameterValue: 1},
				{ParameterID: ParamSharpness, ParameterValue: 0},
			},
		},
	}}
	patterns = append(patterns, chunkCurve(ParamIntensityControl, c.IntensityCurve)...)
	patterns = append(patterns, chunkCurve(ParamSharpnessControl, c.SharpnessCurve)...)
	return patterns
}

// chunkCurve splits points into ParameterCurves of at most MaxControlPoints.
// Each chunk after the first starts with the last point of the one before.
func chunkCurve(parameterID string, points []*EventPoint) []Pattern {
	var patterns []Pattern
	for start := 0; start < len(points); start += MaxControlPoints - 1 {
		end := min(start+MaxControlPoints, len(points))
		chunk := points[start:end]
		base := chunk[0].Time

		controls := make([]ControlPoint, len(chunk))
		for i, p := range chunk {
			controls[i] = ControlPoint{Time: p.Time - base, ParameterValue: p.Value}
		}
		patterns = append(patterns, Pattern{
			ParameterCurve: &ParameterCurve{
				ParameterID:   parameterID,
				Time:          base,
				ControlPoints: controls,
			},
		})
		if end == len(points) {
			break
		}
	}
	return patterns
}

func (c *Continuous) Clone() Event {
	id := nextEventID()
	out := &Continuous{id: id}
	for _, p := range c.IntensityCurve {
		out.IntensityCurve = append(out.IntensityCurve, newPoint(p.Time, p.Value, id))
	}
	for _, p := range c.SharpnessCurve {
		out.SharpnessCurve = append(out.SharpnessCurve, newPoint(p.Time, p.Value, id))
	}
	return out
}
