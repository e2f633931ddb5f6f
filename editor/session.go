package editor

import (
	"math"

	"hapticedit/debug"
	"hapticedit/haptic"
)

// GestureState is the pointer gesture state machine
type GestureState int

const (
	StateIdle GestureState = iota
	StateClicked
	StateDragging
	StateSelecting
)

func (s GestureState) String() string {
	switch s {
	case StateClicked:
		return "clicked"
	case StateDragging:
		return "dragging"
	case StateSelecting:
		return "selecting"
	default:
		return "idle"
	}
}

// Button identifies the pointer button of a gesture
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Modifiers are the keys held during a gesture
type Modifiers struct {
	LockTime  bool // zero the horizontal drag component
	LockValue bool // zero the vertical drag component
	Select    bool // region selection instead of editing
}

// Selection is a set of points on one plot
type Selection struct {
	Loc    haptic.PlotLocation
	Points []*haptic.EventPoint
}

// Contains reports whether p is selected
func (s Selection) Contains(p *haptic.EventPoint) bool {
	for _, q := range s.Points {
		if q == p {
			return true
		}
	}
	return false
}

type dragState struct {
	point  *haptic.EventPoint
	event  haptic.Event
	loc    haptic.PlotLocation
	origin haptic.Vec2 // point position at drag start
	bounds Bounds
}

// Session is the editing state of one open document. All gesture methods
// take positions already converted to plot space for the plot named by loc.
type Session struct {
	Events         *haptic.EventList
	Viewport       Viewport
	HitTolerancePx float64

	state GestureState

	// Hover is the point under the pointer while idle
	Hover    *haptic.EventPoint
	HoverLoc haptic.PlotLocation

	clickPos    haptic.Vec2
	clickLoc    haptic.PlotLocation
	clickButton Button
	current     haptic.Vec2

	drag *dragState

	Selection Selection
}

// NewSession creates a session editing list
func NewSession(list *haptic.EventList, vp Viewport, hitTolerancePx float64) *Session {
	if list == nil {
		list = haptic.NewEventList()
	}
	return &Session{
		Events:         list,
		Viewport:       vp,
		HitTolerancePx: hitTolerancePx,
	}
}

// State returns the current gesture state
func (s *Session) State() GestureState {
	return s.state
}

// New clears the document
func (s *Session) New() {
	s.Events.Clear()
	s.Selection = Selection{}
	s.Reset()
}

// Reset returns the gesture machine to idle without applying anything
func (s *Session) Reset() {
	s.state = StateIdle
	s.drag = nil
	s.Hover = nil
	s.HoverLoc = haptic.PlotOutside
}

// PointerLeave ends any gesture when the pointer leaves the tracked region
func (s *Session) PointerLeave() {
	if s.state != StateIdle {
		debug.Log("gesture", "pointer left during %s, resetting", s.state)
	}
	s.Reset()
}

// HitTest returns the first point, in event list order, whose tolerance
// rectangle contains pos.
func (s *Session) HitTest(pos haptic.Vec2, loc haptic.PlotLocation) (*haptic.EventPoint, haptic.Event) {
	if loc == haptic.PlotOutside {
		return nil, nil
	}
	tol := s.Viewport.Tolerance(s.HitTolerancePx)
	for _, e := range s.Events.Events() {
		if p := e.IsOnPointInEvent(pos, tol, loc); p != nil {
			return p, e
		}
	}
	return nil, nil
}

// UpdateHover recomputes the hover target
func (s *Session) UpdateHover(pos haptic.Vec2, loc haptic.PlotLocation) {
	s.Hover, _ = s.HitTest(pos, loc)
	s.HoverLoc = loc
	if s.Hover == nil {
		s.HoverLoc = haptic.PlotOutside
	}
}

// PointerDown starts a gesture
func (s *Session) PointerDown(pos haptic.Vec2, loc haptic.PlotLocation, button Button, mods Modifiers) {
	if s.state != StateIdle {
		s.Reset()
	}
	if loc == haptic.PlotOutside {
		return
	}

	s.clickPos = pos
	s.clickLoc = loc
	s.clickButton = button
	s.current = pos

	point, event := s.HitTest(pos, loc)
	switch {
	case button == ButtonLeft && mods.Select:
		s.state = StateSelecting
	case button == ButtonLeft && point != nil:
		s.startDrag(point, event, loc)
		s.state = StateDragging
	default:
		s.state = StateClicked
	}
	debug.Log("gesture", "down %s at (%.3f, %.3f) button=%d -> %s", loc, pos.X, pos.Y, button, s.state)
}

// PointerMove continues a gesture, or updates the hover target when idle
func (s *Session) PointerMove(pos haptic.Vec2, loc haptic.PlotLocation, mods Modifiers) {
	switch s.state {
	case StateIdle:
		s.UpdateHover(pos, loc)
		return
	case StateClicked:
		if s.clickButton != ButtonLeft || !s.movedPastTolerance(pos) {
			return
		}
		// no point under the click: dragging creates a continuous event
		s.state = StateDragging
	}

	s.current = pos
	if s.state == StateDragging && s.drag != nil {
		s.applyDrag(pos, mods)
	}
	debug.LogEvery(20, "gesture", "move %s (%.3f, %.3f)", s.state, pos.X, pos.Y)
}

// PointerUp finishes the gesture and applies it
func (s *Session) PointerUp(pos haptic.Vec2, loc haptic.PlotLocation, button Button, mods Modifiers) {
	defer s.Reset()

	switch s.state {
	case StateClicked:
		switch s.clickButton {
		case ButtonLeft:
			s.insert(s.clickPos, s.clickLoc)
		case ButtonRight, ButtonMiddle:
			if point, event := s.HitTest(pos, s.clickLoc); point != nil {
				s.removePoint(point, event, s.clickLoc, s.clickButton)
			}
		}

	case StateDragging:
		if s.drag != nil {
			s.applyDrag(pos, mods)
			return
		}
		s.create(s.clickPos, pos, s.clickLoc, mods)

	case StateSelecting:
		s.selectRegion(s.clickPos, pos, s.clickLoc)
	}
}

func (s *Session) movedPastTolerance(pos haptic.Vec2) bool {
	tol := s.Viewport.Tolerance(s.HitTolerancePx)
	return math.Abs(pos.X-s.clickPos.X) > tol.X || math.Abs(pos.Y-s.clickPos.Y) > tol.Y
}
