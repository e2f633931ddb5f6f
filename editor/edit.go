package editor

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"hapticedit/debug"
	"hapticedit/haptic"
)

const eps = haptic.MinPointOffset

func otherPlot(loc haptic.PlotLocation) haptic.PlotLocation {
	if loc == haptic.PlotSharpness {
		return haptic.PlotIntensity
	}
	return haptic.PlotSharpness
}

// startDrag fixes the bounds of the drag for the rest of the gesture
func (s *Session) startDrag(p *haptic.EventPoint, e haptic.Event, loc haptic.PlotLocation) {
	s.drag = &dragState{
		point:  p,
		event:  e,
		loc:    loc,
		origin: p.Vec(),
		bounds: s.DragBounds(p, e, loc),
	}
}

// DragBounds computes where point p of event e may be dragged: inside the
// visible window, clear of its curve neighbours and, for the ends of a
// continuous event, clear of the paired curve and of the neighbouring
// continuous events.
func (s *Session) DragBounds(p *haptic.EventPoint, e haptic.Event, loc haptic.PlotLocation) Bounds {
	b := Bounds{
		TimeMin:  math.Max(0, s.Viewport.Start),
		TimeMax:  s.Viewport.End(),
		ValueMin: 0,
		ValueMax: 1,
	}

	if c, ok := e.(*haptic.Continuous); ok {
		curve := c.Curve(loc)
		other := c.Curve(otherPlot(loc))
		idx := c.IndexOf(p, loc)
		last := len(curve) - 1

		if idx > 0 {
			b.TimeMin = math.Max(b.TimeMin, curve[idx-1].Time+eps)
		}
		if idx >= 0 && idx < last {
			b.TimeMax = math.Min(b.TimeMax, curve[idx+1].Time-eps)
		}
		if idx == 0 {
			b.TimeMax = math.Min(b.TimeMax, other[1].Time-eps)
			if prev := s.previousContinuous(c); prev != nil {
				b.TimeMin = math.Max(b.TimeMin, prev.TimeMax()+eps)
			}
		}
		if idx == last {
			b.TimeMin = math.Max(b.TimeMin, other[len(other)-2].Time+eps)
			if next := s.nextContinuous(c); next != nil {
				b.TimeMax = math.Min(b.TimeMax, next.Time()-eps)
			}
		}
	}

	// the starting position always stays reachable
	b.TimeMin = math.Min(b.TimeMin, p.Time)
	b.TimeMax = math.Max(b.TimeMax, p.Time)
	return b
}

func (s *Session) previousContinuous(c *haptic.Continuous) *haptic.Continuous {
	var prev *haptic.Continuous
	for _, o := range s.Events.Continuous() {
		if o.ID() != c.ID() && o.TimeMax() < c.Time() && (prev == nil || o.TimeMax() > prev.TimeMax()) {
			prev = o
		}
	}
	return prev
}

func (s *Session) nextContinuous(c *haptic.Continuous) *haptic.Continuous {
	var next *haptic.Continuous
	for _, o := range s.Events.Continuous() {
		if o.ID() != c.ID() && o.Time() > c.TimeMax() && (next == nil || o.Time() < next.Time()) {
			next = o
		}
	}
	return next
}

// applyDrag moves the dragged point by the pointer's offset from the click
func (s *Session) applyDrag(pos haptic.Vec2, mods Modifiers) {
	d := s.drag
	dx, dy := pos.X-s.clickPos.X, pos.Y-s.clickPos.Y
	if mods.LockTime {
		dx = 0
	}
	if mods.LockValue {
		dy = 0
	}
	target := d.bounds.Clamp(haptic.Vec2{X: d.origin.X + dx, Y: d.origin.Y + dy})

	d.point.Value = target.Y
	switch e := d.event.(type) {
	case *haptic.Transient:
		e.SetTime(target.X)
	case *haptic.Continuous:
		switch e.IndexOf(d.point, d.loc) {
		case 0:
			e.SetStartTime(target.X)
		case len(e.Curve(d.loc)) - 1:
			e.SetEndTime(target.X)
		default:
			d.point.Time = target.X
		}
	}
	s.Events.Sort()
}

// insert handles a click without drag on empty space
func (s *Session) insert(pos haptic.Vec2, loc haptic.PlotLocation) {
	pos = clampValue(pos)
	if c := s.Events.ContinuousAt(pos.X); c != nil {
		if _, err := s.InsertPoint(c, pos, loc); err != nil {
			debug.Log("gesture", "insert into continuous %d: %v", c.ID(), err)
		}
		return
	}
	t := haptic.NewTransientAt(pos, loc)
	s.Events.Add(t)
	debug.Log("gesture", "new transient at %.3f", t.Time())
}

// InsertPoint adds a point to the curve on plot loc of c, moving it clear of
// its neighbours first.
func (s *Session) InsertPoint(c *haptic.Continuous, pos haptic.Vec2, loc haptic.PlotLocation) (*haptic.EventPoint, error) {
	curve := c.Curve(loc)
	if loc == haptic.PlotOutside || len(curve) < 2 {
		return c.AddPointToCurve(pos, loc)
	}

	idx := sort.Search(len(curve), func(i int) bool { return curve[i].Time > pos.X })
	idx = max(1, min(idx, len(curve)-1))
	lo, hi := curve[idx-1].Time+eps, curve[idx].Time-eps
	if lo > hi {
		return nil, fmt.Errorf("%w: no room between %.4f and %.4f", haptic.ErrInvalidGesture, curve[idx-1].Time, curve[idx].Time)
	}
	pos.X = clamp(pos.X, lo, hi)
	return c.AddPointToCurve(clampValue(pos), loc)
}

// create adds a continuous event between two pointer positions unless it
// would overlap another continuous event.
func (s *Session) create(a, b haptic.Vec2, loc haptic.PlotLocation, mods Modifiers) {
	if mods.LockValue {
		b.Y = a.Y
	}
	a, b = clampValue(a), clampValue(b)
	b.X = clamp(b.X, math.Max(0, s.Viewport.Start), s.Viewport.End())

	if math.Abs(b.X-a.X) < eps {
		debug.Log("gesture", "discarding zero-length continuous at %.3f", a.X)
		return
	}
	if s.Events.OverlapsContinuous(math.Min(a.X, b.X), math.Max(a.X, b.X), nil) {
		debug.Log("gesture", "discarding continuous %.3f-%.3f: overlaps an existing one", a.X, b.X)
		return
	}
	c := haptic.NewContinuousFromClicks(a, b, loc)
	s.Events.Add(c)
	debug.Log("gesture", "new continuous %.3f-%.3f", c.Time(), c.TimeMax())
}

// removePoint deletes a point. The right button goes through the event's
// removal policy, the middle button deletes the whole event.
func (s *Session) removePoint(p *haptic.EventPoint, e haptic.Event, loc haptic.PlotLocation, button Button) {
	if button == ButtonMiddle || e.ShouldRemoveEventAfterRemovingPoint(p, loc) {
		s.Events.Remove(e)
		s.dropSelection(e.ID())
		debug.Log("gesture", "removed %s event %d", e.Kind(), e.ID())
		return
	}
	s.dropSelectedPoint(p)
}

// RemoveEvent deletes the event owning p
func (s *Session) RemoveEvent(p *haptic.EventPoint) error {
	e := s.Events.Owner(p)
	if e == nil {
		return errors.New("point has no owner in this document")
	}
	s.Events.Remove(e)
	s.dropSelection(e.ID())
	return nil
}

// selectRegion replaces the selection with the points on plot loc inside
// the rectangle spanned by a and b.
func (s *Session) selectRegion(a, b haptic.Vec2, loc haptic.PlotLocation) {
	minT, maxT := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minV, maxV := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)

	sel := Selection{Loc: loc}
	for _, e := range s.Events.Events() {
		for _, p := range e.Points(loc) {
			if p.Time >= minT && p.Time <= maxT && p.Value >= minV && p.Value <= maxV {
				sel.Points = append(sel.Points, p)
			}
		}
	}
	s.Selection = sel
	debug.Log("gesture", "selected %d points on %s", len(sel.Points), loc)
}

// DeleteSelection removes every selected point through the events' removal
// policy. Endpoints refused while interior points remain are retried after
// the interior points are gone. It returns the number of points that stay.
func (s *Session) DeleteSelection() int {
	pending := append([]*haptic.EventPoint(nil), s.Selection.Points...)
	loc := s.Selection.Loc

	for progress := true; progress && len(pending) > 0; {
		progress = false
		var refused []*haptic.EventPoint
		for _, p := range pending {
			e := s.Events.Owner(p)
			if e == nil || !ownsPoint(e, p, loc) {
				progress = true
				continue
			}
			before := len(e.Points(loc))
			if e.ShouldRemoveEventAfterRemovingPoint(p, loc) {
				s.Events.Remove(e)
				progress = true
				continue
			}
			if len(e.Points(loc)) < before {
				progress = true
				continue
			}
			refused = append(refused, p)
		}
		pending = refused
	}

	s.Selection = Selection{Loc: loc, Points: pending}
	return len(pending)
}

func ownsPoint(e haptic.Event, p *haptic.EventPoint, loc haptic.PlotLocation) bool {
	for _, q := range e.Points(loc) {
		if q == p {
			return true
		}
	}
	return false
}

func (s *Session) dropSelection(id haptic.EventID) {
	var keep []*haptic.EventPoint
	for _, p := range s.Selection.Points {
		if p.Owner != id {
			keep = append(keep, p)
		}
	}
	s.Selection.Points = keep
}

func (s *Session) dropSelectedPoint(p *haptic.EventPoint) {
	var keep []*haptic.EventPoint
	for _, q := range s.Selection.Points {
		if q != p {
			keep = append(keep, q)
		}
	}
	s.Selection.Points = keep
}
