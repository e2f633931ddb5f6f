package haptic

import (
	"math"
	"sort"
	"sync/atomic"
)

// MinPointOffset is the smallest time distance allowed between two
// neighbouring points of one curve.
const MinPointOffset = 0.001

// DefaultValue is the value given to the parameter the user did not click on
const DefaultValue = 0.5

// EventID identifies an event. Points refer to their owner through it.
type EventID uint64

var lastEventID atomic.Uint64

func nextEventID() EventID {
	return EventID(lastEventID.Add(1))
}

// PlotLocation identifies which of the two plots a position belongs to
type PlotLocation int

const (
	PlotOutside PlotLocation = iota
	PlotIntensity
	PlotSharpness
)

func (l PlotLocation) String() string {
	switch l {
	case PlotIntensity:
		return "intensity"
	case PlotSharpness:
		return "sharpness"
	default:
		return "outside"
	}
}

// Vec2 is a position in plot space: X is time in seconds, Y is the value.
type Vec2 struct {
	X, Y float64
}

// EventPoint is a single (time, value) sample owned by exactly one event.
// Two points are the same point only if they are the same pointer.
type EventPoint struct {
	Time  float64
	Value float64
	Owner EventID
}

func newPoint(time, value float64, owner EventID) *EventPoint {
	return &EventPoint{Time: time, Value: value, Owner: owner}
}

// Vec returns the point as a plot-space position
func (p *EventPoint) Vec() Vec2 {
	return Vec2{X: p.Time, Y: p.Value}
}

// within reports whether q falls inside the tolerance rectangle centred on p
func (p *EventPoint) within(q, tol Vec2) bool {
	return math.Abs(q.X-p.Time) <= tol.X && math.Abs(q.Y-p.Value) <= tol.Y
}

// sortPoints orders a curve by time, keeping equal times in insertion order
func sortPoints(points []*EventPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Time < points[j].Time
	})
}

// EventKind tags the variants of Event
type EventKind int

const (
	KindTransient EventKind = iota
	KindContinuous
)

func (k EventKind) String() string {
	if k == KindContinuous {
		return "continuous"
	}
	return "transient"
}

// Event is a haptic event. The only implementations are *Transient and
// *Continuous; callers switch on Kind or on the concrete type.
type Event interface {
	ID() EventID
	Kind() EventKind

	// Time is the start time used for ordering, TimeMax the end of the span.
	Time() float64
	TimeMax() float64

	// IsOnPointInEvent returns the owned point on plot loc whose tolerance
	// rectangle contains q, or nil.
	IsOnPointInEvent(q, tol Vec2, loc PlotLocation) *EventPoint

	// ShouldRemoveEventAfterRemovingPoint removes p where the event allows it
	// and reports whether the whole event must now be deleted.
	ShouldRemoveEventAfterRemovingPoint(p *EventPoint, loc PlotLocation) bool

	ToSparsePatterns() []Pattern

	// Points returns the points shown on plot loc, in time order.
	Points(loc PlotLocation) []*EventPoint

	// Clone returns a deep copy with a fresh id.
	Clone() Event

	isEvent()
}
