package haptic

import (
	"fmt"
	"sort"

	"hapticedit/debug"
)

// EventList is the ordered event collection of one open document. Events
// are kept in non-decreasing Time order.
type EventList struct {
	events []Event
}

// NewEventList creates a list holding events, sorted
func NewEventList(events ...Event) *EventList {
	l := &EventList{}
	l.AddAll(events...)
	return l
}

// Events returns the underlying slice. Callers must not modify it.
func (l *EventList) Events() []Event {
	return l.events
}

func (l *EventList) Len() int {
	return len(l.events)
}

// Add appends e and restores ordering
func (l *EventList) Add(e Event) {
	l.events = append(l.events, e)
	l.Sort()
}

func (l *EventList) AddAll(events ...Event) {
	l.events = append(l.events, events...)
	l.Sort()
}

// Remove deletes e, reporting whether it was present
func (l *EventList) Remove(e Event) bool {
	return l.RemoveID(e.ID())
}

func (l *EventList) RemoveID(id EventID) bool {
	for i, e := range l.events {
		if e.ID() == id {
			l.events = append(l.events[:i], l.events[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the event with the given id, or nil
func (l *EventList) Find(id EventID) Event {
	for _, e := range l.events {
		if e.ID() == id {
			return e
		}
	}
	return nil
}

// Owner returns the event a point belongs to
func (l *EventList) Owner(p *EventPoint) Event {
	if p == nil {
		return nil
	}
	return l.Find(p.Owner)
}

// Sort restores Time order after an edit. Ties keep their order.
func (l *EventList) Sort() {
	sort.SliceStable(l.events, func(i, j int) bool {
		return l.events[i].Time() < l.events[j].Time()
	})
}

func (l *EventList) Clear() {
	l.events = nil
}

// Replace swaps the whole content of the list
func (l *EventList) Replace(events []Event) {
	l.events = append([]Event(nil), events...)
	l.Sort()
}

func (l *EventList) Transients() []*Transient {
	var out []*Transient
	for _, e := range l.events {
		if t, ok := e.(*Transient); ok {
			out = append(out, t)
		}
	}
	return out
}

func (l *EventList) Continuous() []*Continuous {
	var out []*Continuous
	for _, e := range l.events {
		if c, ok := e.(*Continuous); ok {
			out = append(out, c)
		}
	}
	return out
}

// ContinuousAt returns the continuous event whose span contains t, or nil
func (l *EventList) ContinuousAt(t float64) *Continuous {
	for _, c := range l.Continuous() {
		if c.Contains(t) {
			return c
		}
	}
	return nil
}

// OverlapsContinuous reports whether [t0, t1] intersects any continuous
// event other than skip.
func (l *EventList) OverlapsContinuous(t0, t1 float64, skip Event) bool {
	for _, c := range l.Continuous() {
		if skip != nil && c.ID() == skip.ID() {
			continue
		}
		if c.Overlaps(t0, t1) {
			return true
		}
	}
	return false
}

// Validate checks the ordering and pairing invariants of every event
func (l *EventList) Validate() error {
	for i := 1; i < len(l.events); i++ {
		if l.events[i].Time() < l.events[i-1].Time() {
			return fmt.Errorf("event %d at %.6f is before event %d at %.6f",
				i, l.events[i].Time(), i-1, l.events[i-1].Time())
		}
	}

	continuous := l.Continuous()
	for i, c := range continuous {
		if err := validateContinuous(c); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		prev := continuous[i-1]
		switch {
		case c.Time() < prev.TimeMax():
			return fmt.Errorf("continuous events at %.6f and %.6f overlap", prev.Time(), c.Time())
		case c.Time() == prev.TimeMax():
			debug.Log("import", "continuous events at %.6f and %.6f touch at %.6f", prev.Time(), c.Time(), c.Time())
		}
	}
	for _, t := range l.Transients() {
		if t.Intensity.Time != t.Sharpness.Time {
			return fmt.Errorf("transient %d: intensity at %.6f, sharpness at %.6f", t.ID(), t.Intensity.Time, t.Sharpness.Time)
		}
	}
	return nil
}

func validateContinuous(c *Continuous) error {
	for _, loc := range []PlotLocation{PlotIntensity, PlotSharpness} {
		curve := c.Curve(loc)
		if len(curve) < 2 {
			return fmt.Errorf("continuous %d: %s curve has %d points", c.ID(), loc, len(curve))
		}
		for i := 1; i < len(curve); i++ {
			if curve[i].Time <= curve[i-1].Time {
				return fmt.Errorf("continuous %d: %s point %d at %.6f is not after %.6f",
					c.ID(), loc, i, curve[i].Time, curve[i-1].Time)
			}
		}
		for _, p := range curve {
			if p.Owner != c.ID() {
				return fmt.Errorf("continuous %d: %s point owned by %d", c.ID(), loc, p.Owner)
			}
		}
	}
	in, sh := c.IntensityCurve, c.SharpnessCurve
	if in[0].Time != sh[0].Time || in[len(in)-1].Time != sh[len(sh)-1].Time {
		return fmt.Errorf("continuous %d: curves do not share start and end", c.ID())
	}
	return nil
}
