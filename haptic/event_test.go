package haptic

import (
	"errors"
	"testing"
)

func TestNewTransientAt(t *testing.T) {
	tr := NewTransientAt(Vec2{X: 1.5, Y: 0.9}, PlotSharpness)
	if tr.Intensity.Value != DefaultValue || tr.Sharpness.Value != 0.9 {
		t.Fatalf("values = %v/%v, want %v/0.9", tr.Intensity.Value, tr.Sharpness.Value, DefaultValue)
	}
	if tr.Intensity.Time != 1.5 || tr.Sharpness.Time != 1.5 {
		t.Fatalf("times = %v/%v, want 1.5", tr.Intensity.Time, tr.Sharpness.Time)
	}
	if tr.Intensity.Owner != tr.ID() || tr.Sharpness.Owner != tr.ID() {
		t.Fatalf("points not owned by transient %d", tr.ID())
	}

	tr.SetTime(2)
	if tr.Intensity.Time != tr.Sharpness.Time {
		t.Fatalf("SetTime broke the time lock")
	}
}

func TestTransientHitTest(t *testing.T) {
	tr := NewTransient(1, 0.8, 0.3)
	tol := Vec2{X: 0.05, Y: 0.05}

	if p := tr.IsOnPointInEvent(Vec2{X: 1.04, Y: 0.76}, tol, PlotIntensity); p != tr.Intensity {
		t.Fatalf("hit = %v, want intensity point", p)
	}
	if p := tr.IsOnPointInEvent(Vec2{X: 1.04, Y: 0.76}, tol, PlotSharpness); p != nil {
		t.Fatalf("sharpness plot hit %v", p)
	}
	if p := tr.IsOnPointInEvent(Vec2{X: 1.1, Y: 0.8}, tol, PlotIntensity); p != nil {
		t.Fatalf("miss returned %v", p)
	}
	if p := tr.IsOnPointInEvent(Vec2{X: 1, Y: 0.8}, tol, PlotOutside); p != nil {
		t.Fatalf("outside returned %v", p)
	}
	if !tr.ShouldRemoveEventAfterRemovingPoint(tr.Sharpness, PlotSharpness) {
		t.Fatalf("transient survived point removal")
	}
}

func TestNewContinuousFromClicks(t *testing.T) {
	c := NewContinuousFromClicks(Vec2{X: 2, Y: 0.2}, Vec2{X: 1, Y: 0.7}, PlotIntensity)
	if c.Time() != 1 || c.TimeMax() != 2 {
		t.Fatalf("span = [%v, %v], want [1, 2]", c.Time(), c.TimeMax())
	}
	if c.IntensityCurve[0].Value != 0.7 || c.IntensityCurve[1].Value != 0.2 {
		t.Fatalf("intensity = %v, %v", c.IntensityCurve[0].Value, c.IntensityCurve[1].Value)
	}
	for _, p := range c.SharpnessCurve {
		if p.Value != DefaultValue {
			t.Fatalf("sharpness = %v, want %v", p.Value, DefaultValue)
		}
	}
}

func TestNewContinuousFromCurves(t *testing.T) {
	tests := []struct {
		name      string
		intensity []Vec2
		sharpness []Vec2
		ok        bool
	}{
		{"valid", []Vec2{{0, 0}, {0.5, 1}, {1, 0}}, []Vec2{{0, 0.5}, {1, 0.5}}, true},
		{"short", []Vec2{{0, 0}}, []Vec2{{0, 0.5}, {1, 0.5}}, false},
		{"unordered", []Vec2{{0, 0}, {0.5, 1}, {0.5, 0}, {1, 0}}, []Vec2{{0, 0.5}, {1, 0.5}}, false},
		{"bounds", []Vec2{{0, 0}, {1, 0}}, []Vec2{{0, 0.5}, {0.9, 0.5}}, false},
	}
	for _, tt := range tests {
		_, err := NewContinuousFromCurves(tt.intensity, tt.sharpness)
		if tt.ok && err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidCurve) {
			t.Fatalf("%s: err = %v, want ErrInvalidCurve", tt.name, err)
		}
	}
}

func TestAddPointToCurve(t *testing.T) {
	c := NewContinuous(0, 1, 0.5, 0.5, 0.5, 0.5)

	p, err := c.AddPointToCurve(Vec2{X: 0.4, Y: 0.9}, PlotIntensity)
	if err != nil {
		t.Fatalf("AddPointToCurve: %v", err)
	}
	if c.IntensityCurve[1] != p || len(c.IntensityCurve) != 3 {
		t.Fatalf("point not inserted in order")
	}
	if p.Owner != c.ID() {
		t.Fatalf("owner = %d, want %d", p.Owner, c.ID())
	}
	if len(c.SharpnessCurve) != 2 {
		t.Fatalf("sharpness curve changed")
	}

	if _, err := c.AddPointToCurve(Vec2{X: 0.5}, PlotOutside); !errors.Is(err, ErrOutsidePlot) || !errors.Is(err, ErrInvalidGesture) {
		t.Fatalf("outside err = %v", err)
	}

	broken := &Continuous{id: nextEventID(), IntensityCurve: []*EventPoint{{Time: 0}}}
	if _, err := broken.AddPointToCurve(Vec2{X: 0.5}, PlotIntensity); !errors.Is(err, ErrInvalidGesture) {
		t.Fatalf("short curve err = %v", err)
	}
	if len(broken.IntensityCurve) != 1 {
		t.Fatalf("short curve mutated")
	}
}

func TestContinuousHitTestFirstMatch(t *testing.T) {
	c := NewContinuous(0, 0.01, 0.5, 0.5, 0.5, 0.5)
	tol := Vec2{X: 0.1, Y: 0.1}
	if p := c.IsOnPointInEvent(Vec2{X: 0.005, Y: 0.5}, tol, PlotIntensity); p != c.IntensityCurve[0] {
		t.Fatalf("hit = %v, want first point", p)
	}
}

func TestContinuousPointRemoval(t *testing.T) {
	c := NewContinuous(0, 1, 0, 0, 0, 0)
	mid, _ := c.AddPointToCurve(Vec2{X: 0.5, Y: 1}, PlotIntensity)

	if c.ShouldRemoveEventAfterRemovingPoint(c.IntensityCurve[0], PlotIntensity) {
		t.Fatalf("endpoint removal of a 3-point curve deleted the event")
	}
	if len(c.IntensityCurve) != 3 {
		t.Fatalf("endpoint removed while interior points exist")
	}

	if c.ShouldRemoveEventAfterRemovingPoint(mid, PlotIntensity) {
		t.Fatalf("interior removal deleted the event")
	}
	if len(c.IntensityCurve) != 2 {
		t.Fatalf("points = %d, want 2", len(c.IntensityCurve))
	}

	if !c.ShouldRemoveEventAfterRemovingPoint(c.IntensityCurve[1], PlotIntensity) {
		t.Fatalf("removing from a 2-point curve kept the event")
	}

	if c.ShouldRemoveEventAfterRemovingPoint(&EventPoint{}, PlotSharpness) {
		t.Fatalf("foreign point removal deleted the event")
	}
}

func TestContinuousEndpointsMoveTogether(t *testing.T) {
	c := NewContinuous(0, 1, 0, 0, 0, 0)
	c.SetStartTime(0.2)
	c.SetEndTime(1.4)
	if c.SharpnessCurve[0].Time != 0.2 || c.SharpnessCurve[1].Time != 1.4 {
		t.Fatalf("sharpness span = [%v, %v]", c.SharpnessCurve[0].Time, c.SharpnessCurve[1].Time)
	}
	if err := NewEventList(c).Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestCloneGetsFreshOwner(t *testing.T) {
	c := NewContinuous(0, 1, 0.1, 0.2, 0.3, 0.4)
	clone := c.Clone().(*Continuous)
	if clone.ID() == c.ID() {
		t.Fatalf("clone shares id")
	}
	for _, p := range clone.IntensityCurve {
		if p.Owner != clone.ID() {
			t.Fatalf("clone point owned by %d", p.Owner)
		}
	}
	clone.IntensityCurve[0].Value = 1
	if c.IntensityCurve[0].Value != 0.1 {
		t.Fatalf("clone shares points")
	}
}

func TestEventListOrderingAndLookup(t *testing.T) {
	late := NewTransient(3, 1, 1)
	cont := NewContinuous(1, 2, 0, 0, 0, 0)
	early := NewTransient(0.5, 1, 1)
	l := NewEventList(late, cont, early)

	want := []Event{early, cont, late}
	for i, e := range l.Events() {
		if e != want[i] {
			t.Fatalf("event %d = %v, want %v", i, e, want[i])
		}
	}

	if l.Owner(cont.SharpnessCurve[1]) != cont {
		t.Fatalf("Owner did not find the continuous event")
	}
	if l.ContinuousAt(1.5) != cont || l.ContinuousAt(2.5) != nil {
		t.Fatalf("ContinuousAt wrong")
	}
	if !l.OverlapsContinuous(1.9, 2.5, nil) || l.OverlapsContinuous(1.9, 2.5, cont) {
		t.Fatalf("OverlapsContinuous wrong")
	}

	late.SetTime(0.1)
	l.Sort()
	if l.Events()[0] != late {
		t.Fatalf("Sort did not move the dragged transient first")
	}

	if !l.Remove(cont) || l.Remove(cont) {
		t.Fatalf("Remove should succeed once")
	}
	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2", l.Len())
	}
}

func TestValidateRejectsOverlap(t *testing.T) {
	l := NewEventList(NewContinuous(0, 1, 0, 0, 0, 0), NewContinuous(0.5, 2, 0, 0, 0, 0))
	if err := l.Validate(); err == nil {
		t.Fatalf("overlapping continuous events validated")
	}

	l = NewEventList(NewContinuous(0, 1, 0, 0, 0, 0), NewTransient(0.5, 1, 1), NewContinuous(1.5, 2, 0, 0, 0, 0))
	if err := l.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateAcceptsTouchingSpans(t *testing.T) {
	l := NewEventList(NewContinuous(0, 1, 0, 0, 0, 0), NewContinuous(1, 2, 0, 0, 0, 0))
	if err := l.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	l = NewEventList(NewContinuous(0, 1, 0, 0, 0, 0), NewContinuous(0.999, 2, 0, 0, 0, 0))
	if err := l.Validate(); err == nil {
		t.Fatalf("overlap by 1ms validated")
	}
}
