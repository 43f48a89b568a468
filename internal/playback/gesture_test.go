package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestInterpreter() *GestureInterpreter {
	return NewGestureInterpreter(DefaultGestureConfig(), Vec{X: 300, Y: 600})
}

func kinds(intents []Intent) []IntentKind {
	out := make([]IntentKind, 0, len(intents))
	for _, in := range intents {
		out = append(out, in.Kind)
	}
	return out
}

func TestGestureInterpreter_ClassifyTap(t *testing.T) {
	g := newTestInterpreter()

	assert.Equal(t, IntentRetreat, g.ClassifyTap(Vec{X: 50, Y: 300}).Kind)
	assert.Equal(t, IntentAdvance, g.ClassifyTap(Vec{X: 100, Y: 300}).Kind)
	assert.Equal(t, IntentAdvance, g.ClassifyTap(Vec{X: 280, Y: 10}).Kind)
}

func TestGestureInterpreter_TapWithoutSurfaceAdvances(t *testing.T) {
	g := NewGestureInterpreter(DefaultGestureConfig(), Vec{})

	assert.Equal(t, IntentAdvance, g.ClassifyTap(Vec{X: 1}).Kind)
}

func TestGestureInterpreter_ClassifyPanEnd(t *testing.T) {
	g := newTestInterpreter()

	tests := []struct {
		name     string
		offset   Vec
		velocity Vec
		want     IntentKind
	}{
		{"long downward drag closes", Vec{X: 10, Y: 150}, Vec{}, IntentClose},
		{"fast downward flick closes", Vec{X: 0, Y: 30}, Vec{Y: 900}, IntentClose},
		{"short downward drag springs back", Vec{X: 5, Y: 40}, Vec{Y: 100}, IntentSpringBack},
		{"upward drag springs back", Vec{X: 0, Y: -200}, Vec{Y: -1000}, IntentSpringBack},
		{"drag to the left goes to next author", Vec{X: -80, Y: 10}, Vec{}, IntentNextAuthor},
		{"drag to the right goes to previous author", Vec{X: 80, Y: 10}, Vec{}, IntentPreviousAuthor},
		{"fast flick left goes to next author", Vec{X: -20, Y: 0}, Vec{X: -700}, IntentNextAuthor},
		{"short horizontal drag springs back", Vec{X: 30, Y: 5}, Vec{X: 100}, IntentSpringBack},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.ClassifyPanEnd(tt.offset, tt.velocity).Kind)
		})
	}
}

func TestGestureInterpreter_QuickReleaseIsTap(t *testing.T) {
	g := newTestInterpreter()

	assert.Empty(t, g.Press(Vec{X: 250, Y: 300}, testEpoch))
	out := g.Release(Vec{}, Vec{}, testEpoch.Add(50*time.Millisecond))
	assert.Equal(t, []IntentKind{IntentAdvance}, kinds(out))
	assert.Equal(t, PhaseIdle, g.Phase())
}

func TestGestureInterpreter_HoldPausesAndReleaseResumes(t *testing.T) {
	g := newTestInterpreter()

	g.Press(Vec{X: 20, Y: 300}, testEpoch)
	assert.Empty(t, g.Tick(testEpoch.Add(50*time.Millisecond)))
	assert.Equal(t, []IntentKind{IntentPause}, kinds(g.Tick(testEpoch.Add(100*time.Millisecond))))
	assert.Equal(t, PhaseHeld, g.Phase())
	assert.Empty(t, g.Tick(testEpoch.Add(200*time.Millisecond)))

	out := g.Release(Vec{}, Vec{}, testEpoch.Add(2*time.Second))
	assert.Equal(t, []IntentKind{IntentResume}, kinds(out), "a released hold never also taps")
}

func TestGestureInterpreter_LongPressWithoutTickIsNotTap(t *testing.T) {
	g := newTestInterpreter()

	g.Press(Vec{X: 250, Y: 300}, testEpoch)
	assert.Empty(t, g.Release(Vec{}, Vec{}, testEpoch.Add(time.Second)))
}

func TestGestureInterpreter_MoveWithinSlopKeepsPress(t *testing.T) {
	g := newTestInterpreter()

	g.Press(Vec{X: 250, Y: 300}, testEpoch)
	assert.Empty(t, g.Move(Vec{X: 3, Y: 4}, Vec{}, testEpoch.Add(10*time.Millisecond)))
	assert.Equal(t, PhasePressed, g.Phase())

	out := g.Move(Vec{X: 3, Y: 4}, Vec{}, testEpoch.Add(150*time.Millisecond))
	assert.Equal(t, []IntentKind{IntentPause}, kinds(out))
}

func TestGestureInterpreter_DragFollowsAndClassifies(t *testing.T) {
	g := newTestInterpreter()

	g.Press(Vec{X: 150, Y: 100}, testEpoch)
	out := g.Move(Vec{X: 0, Y: 40}, Vec{}, testEpoch.Add(20*time.Millisecond))
	assert.Equal(t, []Intent{{Kind: IntentDragUpdate, Offset: Vec{X: 0, Y: 40}}}, out)
	assert.Equal(t, PhaseDragging, g.Phase())

	out = g.Move(Vec{X: 0, Y: 130}, Vec{}, testEpoch.Add(40*time.Millisecond))
	assert.Equal(t, Vec{X: 0, Y: 130}, out[0].Offset)

	out = g.Release(Vec{X: 0, Y: 130}, Vec{Y: 200}, testEpoch.Add(60*time.Millisecond))
	assert.Equal(t, []IntentKind{IntentClose}, kinds(out))
}

func TestGestureInterpreter_HeldDragResumesBeforeClassifying(t *testing.T) {
	g := newTestInterpreter()

	g.Press(Vec{X: 150, Y: 100}, testEpoch)
	g.Tick(testEpoch.Add(150 * time.Millisecond))
	g.Move(Vec{X: -90, Y: 0}, Vec{}, testEpoch.Add(200*time.Millisecond))

	out := g.Release(Vec{X: -90, Y: 0}, Vec{}, testEpoch.Add(250*time.Millisecond))
	assert.Equal(t, []IntentKind{IntentResume, IntentNextAuthor}, kinds(out))
}

func TestGestureInterpreter_FlickWithoutMoveIsPan(t *testing.T) {
	g := newTestInterpreter()

	g.Press(Vec{X: 250, Y: 300}, testEpoch)
	out := g.Release(Vec{X: -200, Y: 0}, Vec{X: -900, Y: 0}, testEpoch.Add(50*time.Millisecond))
	assert.Equal(t, []IntentKind{IntentNextAuthor}, kinds(out))
	assert.Equal(t, PhaseIdle, g.Phase())
}

func TestGestureInterpreter_HeldFlickWithoutMoveResumesThenPans(t *testing.T) {
	g := newTestInterpreter()

	g.Press(Vec{X: 150, Y: 100}, testEpoch)
	g.Tick(testEpoch.Add(150 * time.Millisecond))

	out := g.Release(Vec{X: 0, Y: 200}, Vec{}, testEpoch.Add(300*time.Millisecond))
	assert.Equal(t, []IntentKind{IntentResume, IntentClose}, kinds(out))
}

func TestGestureInterpreter_PressAbandonsPendingHold(t *testing.T) {
	g := newTestInterpreter()

	g.Press(Vec{X: 150, Y: 100}, testEpoch)
	g.Tick(testEpoch.Add(150 * time.Millisecond))

	out := g.Press(Vec{X: 150, Y: 100}, testEpoch.Add(time.Second))
	assert.Equal(t, []IntentKind{IntentResume}, kinds(out))
	assert.Equal(t, PhasePressed, g.Phase())
}

func TestIntentKind_String(t *testing.T) {
	assert.Equal(t, "previous_author", IntentPreviousAuthor.String())
	assert.Equal(t, "unknown", IntentKind(99).String())
}
