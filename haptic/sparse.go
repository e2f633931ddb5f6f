package haptic

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"hapticedit/debug"
)

// Sparse format identifiers
const (
	SparseVersion = 1.0

	EventTypeTransient  = "HapticTransient"
	EventTypeContinuous = "HapticContinuous"

	ParamIntensity        = "HapticIntensity"
	ParamSharpness        = "HapticSharpness"
	ParamIntensityControl = "HapticIntensityControl"
	ParamSharpnessControl = "HapticSharpnessControl"
)

// chainTolerance is how close a chunk's start must be to the end of the
// previous chunk to be treated as its continuation.
const chainTolerance = 1e-6

// SparseFile is the event + parameter curve document
type SparseFile struct {
	Version  float64        `json:"Version"`
	Metadata SparseMetadata `json:"Metadata"`
	Pattern  []Pattern      `json:"Pattern"`
}

type SparseMetadata struct {
	Project        string `json:"Project,omitempty"`
	ProjectVersion string `json:"ProjectVersion,omitempty"`
	Created        string `json:"Created,omitempty"`
	Description    string `json:"Description,omitempty"`
}

// Pattern holds exactly one of Event or ParameterCurve
type Pattern struct {
	Event          *PatternEvent   `json:"Event,omitempty"`
	ParameterCurve *ParameterCurve `json:"ParameterCurve,omitempty"`
}

type PatternEvent struct {
	Time            float64          `json:"Time"`
	EventType       string           `json:"EventType"`
	EventDuration   *float64         `json:"EventDuration,omitempty"`
	EventParameters []EventParameter `json:"EventParameters"`
}

type EventParameter struct {
	ParameterID    string  `json:"ParameterID"`
	ParameterValue float64 `json:"ParameterValue"`
}

// ParameterCurve carries control points whose times are relative to Time
type ParameterCurve struct {
	ParameterID   string         `json:"ParameterID"`
	Time          float64        `json:"Time"`
	ControlPoints []ControlPoint `json:"ParameterCurveControlPoints"`
}

type ControlPoint struct {
	Time           float64 `json:"Time"`
	ParameterValue float64 `json:"ParameterValue"`
}

func (p Pattern) time() float64 {
	if p.Event != nil {
		return p.Event.Time
	}
	if p.ParameterCurve != nil {
		return p.ParameterCurve.Time
	}
	return 0
}

// rank orders patterns sharing a time: events, intensity curves, sharpness curves
func (p Pattern) rank() int {
	switch {
	case p.Event != nil:
		return 0
	case p.ParameterCurve == nil:
		return 3
	case p.ParameterCurve.ParameterID == ParamIntensityControl:
		return 1
	default:
		return 2
	}
}

// SortPatterns orders patterns for serialization
func SortPatterns(patterns []Pattern) {
	sort.SliceStable(patterns, func(i, j int) bool {
		ti, tj := patterns[i].time(), patterns[j].time()
		if ti != tj {
			return ti < tj
		}
		return patterns[i].rank() < patterns[j].rank()
	})
}

func encodeSparse(events []Event, meta Metadata) ([]byte, error) {
	var patterns []Pattern
	for _, e := range events {
		patterns = append(patterns, e.ToSparsePatterns()...)
	}
	SortPatterns(patterns)

	created := meta.Created
	if created == "" {
		created = time.Now().Format(time.RFC3339)
	}
	f := SparseFile{
		Version: SparseVersion,
		Metadata: SparseMetadata{
			Project:        meta.ProjectName,
			ProjectVersion: meta.ProjectVersion,
			Created:        created,
			Description:    meta.Description,
		},
		Pattern: patterns,
	}
	return json.MarshalIndent(f, "", "  ")
}

func decodeSparse(data []byte) ([]Event, Metadata, error) {
	var f SparseFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, Metadata{}, err
	}
	if f.Pattern == nil {
		return nil, Metadata{}, errors.New("missing Pattern")
	}

	events, err := f.Events()
	if err != nil {
		return nil, Metadata{}, err
	}
	meta := Metadata{
		ProjectName:    f.Metadata.Project,
		ProjectVersion: f.Metadata.ProjectVersion,
		Created:        f.Metadata.Created,
		Description:    f.Metadata.Description,
	}
	return events, meta, nil
}

// Events rebuilds the in-memory events described by the document
func (f *SparseFile) Events() ([]Event, error) {
	var curves []*ParameterCurve
	for _, p := range f.Pattern {
		if p.ParameterCurve != nil {
			curves = append(curves, p.ParameterCurve)
		}
	}

	// a chain never runs into the curves of the next continuous event
	var starts []float64
	for _, p := range f.Pattern {
		if p.Event != nil && p.Event.EventType == EventTypeContinuous {
			starts = append(starts, p.Event.Time)
		}
	}

	var events []Event
	for _, p := range f.Pattern {
		ev := p.Event
		if ev == nil {
			continue
		}
		switch ev.EventType {
		case EventTypeTransient:
			events = append(events, NewTransient(ev.Time,
				ev.parameter(ParamIntensity, 1), ev.parameter(ParamSharpness, 0)))

		case EventTypeContinuous:
			c, err := ev.continuous(curves, starts)
			if err != nil {
				return nil, fmt.Errorf("continuous event at %.6f: %w", ev.Time, err)
			}
			if c != nil {
				events = append(events, c)
			}

		default:
			debug.Log("import", "skipping event type %q at %.3f", ev.EventType, ev.Time)
		}
	}
	return events, nil
}

func (ev *PatternEvent) parameter(id string, def float64) float64 {
	for _, p := range ev.EventParameters {
		if p.ParameterID == id {
			return p.ParameterValue
		}
	}
	return def
}

func (ev *PatternEvent) continuous(curves []*ParameterCurve, starts []float64) (*Continuous, error) {
	duration := 0.0
	if ev.EventDuration != nil {
		duration = *ev.EventDuration
	}
	end := ev.Time + duration

	intensity := ev.axis(curves, starts, ParamIntensityControl, ev.parameter(ParamIntensity, 1), end)
	sharpness := ev.axis(curves, starts, ParamSharpnessControl, ev.parameter(ParamSharpness, 0), end)
	intensity, sharpness = reconcileBounds(dedupe(intensity), dedupe(sharpness))

	if len(intensity) < 2 || len(sharpness) < 2 {
		debug.Log("import", "skipping zero-length continuous event at %.3f", ev.Time)
		return nil, nil
	}
	return NewContinuousFromCurves(intensity, sharpness)
}

// axis returns the points of one parameter: the chained curves when present,
// a flat curve at value otherwise, padded to end.
func (ev *PatternEvent) axis(curves []*ParameterCurve, starts []float64, id string, value, end float64) []Vec2 {
	points := followChain(curves, id, ev.Time, end, starts)
	if len(points) == 0 {
		if end <= ev.Time {
			return []Vec2{{X: ev.Time, Y: value}}
		}
		return []Vec2{{X: ev.Time, Y: value}, {X: end, Y: value}}
	}
	last := points[len(points)-1]
	if last.X < end-chainTolerance {
		points = append(points, Vec2{X: end, Y: last.Y})
	}
	return points
}

// followChain concatenates the curves for id starting at start, following
// each curve to the one that begins where it ends. The chain stops at end
// (when end is after start) and at the start of another continuous event.
func followChain(curves []*ParameterCurve, id string, start, end float64, starts []float64) []Vec2 {
	var points []Vec2
	used := make(map[*ParameterCurve]bool)
	at := start
	for {
		curve := findCurve(curves, id, at, used)
		if curve == nil || len(curve.ControlPoints) == 0 {
			break
		}
		used[curve] = true

		for i, cp := range curve.ControlPoints {
			v := Vec2{X: curve.Time + cp.Time, Y: cp.ParameterValue}
			if i == 0 && len(points) > 0 && nearlyEqual(points[len(points)-1].X, v.X) {
				continue // repeated boundary point
			}
			points = append(points, v)
		}

		at = points[len(points)-1].X
		if end > start && at >= end-chainTolerance {
			break
		}
		if startsEvent(starts, at, start) {
			break
		}
	}
	return points
}

func startsEvent(starts []float64, at, own float64) bool {
	for _, s := range starts {
		if nearlyEqual(s, at) && !nearlyEqual(s, own) {
			return true
		}
	}
	return false
}

func findCurve(curves []*ParameterCurve, id string, at float64, used map[*ParameterCurve]bool) *ParameterCurve {
	for _, c := range curves {
		if c.ParameterID == id && !used[c] && math.Abs(c.Time-at) <= chainTolerance {
			return c
		}
	}
	return nil
}
