package playback

import (
	"math"
	"time"
)

// Vec is a point, offset or velocity on the touch surface, in points (or
// points per second for velocities).
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentAdvance
	IntentRetreat
	IntentPause
	IntentResume
	IntentClose
	IntentNextAuthor
	IntentPreviousAuthor
	IntentDragUpdate
	IntentSpringBack
)

var intentNames = map[IntentKind]string{
	IntentNone:           "none",
	IntentAdvance:        "advance",
	IntentRetreat:        "retreat",
	IntentPause:          "pause",
	IntentResume:         "resume",
	IntentClose:          "close",
	IntentNextAuthor:     "next_author",
	IntentPreviousAuthor: "previous_author",
	IntentDragUpdate:     "drag_update",
	IntentSpringBack:     "spring_back",
}

func (k IntentKind) String() string {
	if name, ok := intentNames[k]; ok {
		return name
	}
	return "unknown"
}

// Intent is a discrete playback request. Offset is only set for drag
// updates and carries the live drag position for the host's visual follow.
type Intent struct {
	Kind   IntentKind
	Offset Vec
}

type GesturePhase int

const (
	PhaseIdle GesturePhase = iota
	PhasePressed
	PhaseHeld
	PhaseDragging
)

type GestureConfig struct {
	HoldThreshold  time.Duration
	SlopRadius     float64
	CloseDistance  float64
	CloseVelocity  float64
	SwitchDistance float64
	SwitchVelocity float64
	// RetreatZone is the fraction of the surface width, from the left edge,
	// where a tap retreats. The rest of the surface advances.
	RetreatZone float64
}

func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		HoldThreshold:  100 * time.Millisecond,
		SlopRadius:     10,
		CloseDistance:  120,
		CloseVelocity:  800,
		SwitchDistance: 60,
		SwitchVelocity: 500,
		RetreatZone:    1.0 / 3.0,
	}
}

// GestureInterpreter classifies one touch sequence at a time:
// Idle -> Pressed -> {Tapped | Held | Dragging} -> Idle.
// Taps, holds, vertical and horizontal drags all observe the same input and
// are told apart only when the sequence is classified.
type GestureInterpreter struct {
	cfg       GestureConfig
	surface   Vec
	phase     GesturePhase
	origin    Vec
	pressedAt time.Time
	held      bool
	offset    Vec
}

func NewGestureInterpreter(cfg GestureConfig, surface Vec) *GestureInterpreter {
	return &GestureInterpreter{cfg: cfg, surface: surface}
}

func (g *GestureInterpreter) SetSurface(size Vec) {
	g.surface = size
}

func (g *GestureInterpreter) Phase() GesturePhase {
	return g.phase
}

// Press starts a new touch sequence. A sequence that was still held is
// abandoned and resumed first.
func (g *GestureInterpreter) Press(pos Vec, now time.Time) []Intent {
	var out []Intent
	if g.held {
		out = append(out, Intent{Kind: IntentResume})
	}
	g.phase = PhasePressed
	g.origin = pos
	g.pressedAt = now
	g.held = false
	g.offset = Vec{}
	return out
}

// Tick promotes a stationary press to a hold once the threshold has passed.
func (g *GestureInterpreter) Tick(now time.Time) []Intent {
	if g.phase != PhasePressed || now.Sub(g.pressedAt) < g.cfg.HoldThreshold {
		return nil
	}
	g.phase = PhaseHeld
	g.held = true
	return []Intent{{Kind: IntentPause}}
}

// Move feeds the live offset from the press origin. Movement within the
// slop radius only lets a hold mature; beyond it the sequence is a drag.
func (g *GestureInterpreter) Move(offset, _ Vec, now time.Time) []Intent {
	switch g.phase {
	case PhasePressed, PhaseHeld:
		if offset.Len() <= g.cfg.SlopRadius {
			return g.Tick(now)
		}
		g.phase = PhaseDragging
	case PhaseDragging:
	default:
		return nil
	}
	g.offset = offset
	return []Intent{{Kind: IntentDragUpdate, Offset: offset}}
}

// Release ends the sequence. Tapped and Held are decided solely by how long
// the press lasted, so a released hold never also counts as a tap. A release
// whose offset already left the slop radius is a pan even without a prior Move.
func (g *GestureInterpreter) Release(offset, velocity Vec, now time.Time) []Intent {
	var out []Intent
	if (g.phase == PhasePressed || g.phase == PhaseHeld) && offset.Len() > g.cfg.SlopRadius {
		g.phase = PhaseDragging
	}
	switch g.phase {
	case PhasePressed:
		if now.Sub(g.pressedAt) < g.cfg.HoldThreshold {
			out = append(out, g.ClassifyTap(g.origin))
		}
	case PhaseHeld:
		out = append(out, Intent{Kind: IntentResume})
	case PhaseDragging:
		if g.held {
			out = append(out, Intent{Kind: IntentResume})
		}
		out = append(out, g.ClassifyPanEnd(offset, velocity))
	}
	g.phase = PhaseIdle
	g.held = false
	g.offset = Vec{}
	return out
}

// ClassifyTap maps a tap position to retreat (left zone) or advance.
func (g *GestureInterpreter) ClassifyTap(pos Vec) Intent {
	if g.surface.X > 0 && pos.X < g.surface.X*g.cfg.RetreatZone {
		return Intent{Kind: IntentRetreat}
	}
	return Intent{Kind: IntentAdvance}
}

// ClassifyPanEnd decides a finished drag by thresholds on the dominant axis.
// A drag that crosses none of them springs back.
func (g *GestureInterpreter) ClassifyPanEnd(offset, velocity Vec) Intent {
	if math.Abs(offset.Y) >= math.Abs(offset.X) {
		if offset.Y > 0 && (offset.Y >= g.cfg.CloseDistance || velocity.Y >= g.cfg.CloseVelocity) {
			return Intent{Kind: IntentClose}
		}
		return Intent{Kind: IntentSpringBack}
	}
	if math.Abs(offset.X) >= g.cfg.SwitchDistance || math.Abs(velocity.X) >= g.cfg.SwitchVelocity {
		if offset.X > 0 {
			return Intent{Kind: IntentPreviousAuthor}
		}
		return Intent{Kind: IntentNextAuthor}
	}
	return Intent{Kind: IntentSpringBack}
}
