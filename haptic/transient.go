package haptic

// Transient is an instantaneous pulse. Its two points always share one time.
type Transient struct {
	id        EventID
	Intensity *EventPoint
	Sharpness *EventPoint
}

// NewTransient creates a transient at time with the given parameter values
func NewTransient(time, intensity, sharpness float64) *Transient {
	id := nextEventID()
	return &Transient{
		id:        id,
		Intensity: newPoint(time, intensity, id),
		Sharpness: newPoint(time, sharpness, id),
	}
}

// NewTransientAt creates a transient from a click on plot loc. The clicked
// parameter takes the click's value, the other one DefaultValue.
func NewTransientAt(pos Vec2, loc PlotLocation) *Transient {
	if loc == PlotSharpness {
		return NewTransient(pos.X, DefaultValue, pos.Y)
	}
	return NewTransient(pos.X, pos.Y, DefaultValue)
}

func (t *Transient) isEvent()         {}
func (t *Transient) ID() EventID      { return t.id }
func (t *Transient) Kind() EventKind  { return KindTransient }
func (t *Transient) Time() float64    { return t.Intensity.Time }
func (t *Transient) TimeMax() float64 { return t.Intensity.Time }

// SetTime moves both points
func (t *Transient) SetTime(time float64) {
	t.Intensity.Time = time
	t.Sharpness.Time = time
}

// Point returns the point drawn on plot loc
func (t *Transient) Point(loc PlotLocation) *EventPoint {
	switch loc {
	case PlotIntensity:
		return t.Intensity
	case PlotSharpness:
		return t.Sharpness
	}
	return nil
}

func (t *Transient) Points(loc PlotLocation) []*EventPoint {
	if p := t.Point(loc); p != nil {
		return []*EventPoint{p}
	}
	return nil
}

func (t *Transient) IsOnPointInEvent(q, tol Vec2, loc PlotLocation) *EventPoint {
	p := t.Point(loc)
	if p != nil && p.within(q, tol) {
		return p
	}
	return nil
}

// ShouldRemoveEventAfterRemovingPoint is always true: a transient cannot
// lose one of its two parameters.
func (t *Transient) ShouldRemoveEventAfterRemovingPoint(p *EventPoint, loc PlotLocation) bool {
	return true
}

func (t *Transient) ToSparsePatterns() []Pattern {
	return []Pattern{{
		Event: &PatternEvent{
			Time:      t.Time(),
			EventType: EventTypeTransient,
			EventParameters: []EventParameter{
				{ParameterID: ParamIntensity, ParameterValue: t.Intensity.Value},
				{ParameterID: ParamSharpness, ParameterValue: t.Sharpness.Value},
			},
		},
	}}
}

func (t *Transient) Clone() Event {
	return NewTransient(t.Time(), t.Intensity.Value, t.Sharpness.Value)
}
