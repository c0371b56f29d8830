package mapcanvas

import (
	"math"
	"time"
)

// TouchPoint tracks one platform touch by identifier.
type TouchPoint struct {
	Start     Vec2
	Current   Vec2
	StartTime time.Time

	// inGesture marks a touch that participated in a multi-touch gesture;
	// consumed touches never resolve to taps on release.
	inGesture bool
}

// GestureState is the recognizer's observable state, reset on teardown.
type GestureState struct {
	TouchCount           int
	IsPinching           bool
	InitialPinchDistance float64
	CurrentPinchDistance float64
	PinchCenter          Vec2
	IsTwoFingerPan       bool
	IsLongPress          bool
}

// GestureCallbacks are the recognizer's typed outputs. Pinch and two-finger
// pan also drive the viewport directly; the callbacks are for hosts that
// want to observe them. Nil callbacks are skipped.
type GestureCallbacks struct {
	OnTap          func(screen Vec2)
	OnDoubleTap    func(screen Vec2)
	OnLongPress    func(screen Vec2)
	OnPinch        func(center Vec2, scale float64)
	OnTwoFingerPan func(delta Vec2)
}

// GestureRecognizer turns raw multi-touch tracking into pinch, two-finger
// pan, tap, double-tap and long-press. One touch may double as the primary
// pointer fed to InteractionService by the host; two or more touches belong
// exclusively to the recognizer.
type GestureRecognizer struct {
	viewport *Viewport
	cb       GestureCallbacks
	now      func() time.Time

	touches map[int]*TouchPoint
	state   GestureState

	// Long-press is a deadline checked from Tick, not a goroutine timer;
	// the whole engine is single-threaded and cooperative.
	longPressDeadline time.Time
	longPressID       int

	lastTapAt  time.Time
	lastTapPos Vec2

	lastPinchDist   float64
	lastPinchCenter Vec2
}

func NewGestureRecognizer(viewport *Viewport) *GestureRecognizer {
	return &GestureRecognizer{
		viewport: viewport,
		now:      time.Now,
		touches:  make(map[int]*TouchPoint),
	}
}

// SetCallbacks installs the output callbacks.
func (g *GestureRecognizer) SetCallbacks(cb GestureCallbacks) {
	g.cb = cb
}

// SetClock overrides the time source, for tests.
func (g *GestureRecognizer) SetClock(now func() time.Time) {
	g.now = now
}

// State returns the current gesture state.
func (g *GestureRecognizer) State() GestureState {
	g.state.TouchCount = len(g.touches)
	return g.state
}

// PinchScale returns the accumulated scale factor of the active pinch
// (current distance / initial distance), or 1 when no pinch is active.
func (g *GestureRecognizer) PinchScale() float64 {
	if g.state.InitialPinchDistance <= 0 {
		return 1
	}
	return g.state.CurrentPinchDistance / g.state.InitialPinchDistance
}

// TouchStart registers a new touch by platform identifier.
func (g *GestureRecognizer) TouchStart(id int, x, y float64) {
	p := Vec2{x, y}
	g.touches[id] = &TouchPoint{Start: p, Current: p, StartTime: g.now()}
	g.viewport.StopMomentum()

	switch len(g.touches) {
	case 1:
		g.longPressDeadline = g.now().Add(longPressDuration)
		g.longPressID = id
		g.state.IsLongPress = false
	case 2:
		g.cancelLongPress()
		g.consumeTouches()
		g.initTwoTouchBaseline()
	default:
		// Three or more touches cancel all active gesture tracking.
		g.cancelLongPress()
		g.consumeTouches()
		g.clearTwoTouchState()
	}
}

func (g *GestureRecognizer) consumeTouches() {
	for _, t := range g.touches {
		t.inGesture = true
	}
}

func (g *GestureRecognizer) initTwoTouchBaseline() {
	a, b, ok := g.twoTouches()
	if !ok {
		return
	}
	dist := a.Current.Dist(b.Current)
	center := a.Current.Add(b.Current).Scale(0.5)
	g.state.InitialPinchDistance = dist
	g.state.CurrentPinchDistance = dist
	g.state.PinchCenter = center
	g.state.IsPinching = false
	g.state.IsTwoFingerPan = false
	g.lastPinchDist = dist
	g.lastPinchCenter = center
}

func (g *GestureRecognizer) twoTouches() (a, b *TouchPoint, ok bool) {
	if len(g.touches) != 2 {
		return nil, nil, false
	}
	for _, t := range g.touches {
		if a == nil {
			a = t
		} else {
			b = t
		}
	}
	return a, b, true
}

// TouchMove updates a tracked touch. Unknown identifiers are ignored.
func (g *GestureRecognizer) TouchMove(id int, x, y float64) {
	t, ok := g.touches[id]
	if !ok {
		return
	}
	t.Current = Vec2{x, y}

	if len(g.touches) == 1 {
		// Moving past the tap tolerance cancels the pending long-press.
		if id == g.longPressID && !g.longPressDeadline.IsZero() &&
			t.Current.Dist(t.Start) > tapTolerancePx {
			g.cancelLongPress()
		}
		return
	}

	if len(g.touches) == 2 {
		g.updateTwoTouch()
	}
}

func (g *GestureRecognizer) updateTwoTouch() {
	a, b, ok := g.twoTouches()
	if !ok {
		return
	}
	dist := a.Current.Dist(b.Current)
	center := a.Current.Add(b.Current).Scale(0.5)
	g.state.CurrentPinchDistance = dist
	g.state.PinchCenter = center

	// Classification: distance delta past threshold means pinch; center
	// drift past threshold means two-finger pan, unless already pinching.
	if !g.state.IsPinching &&
		math.Abs(dist-g.state.InitialPinchDistance) > pinchThresholdPx {
		g.state.IsPinching = true
		g.state.IsTwoFingerPan = false
	}

	if g.state.IsPinching {
		if g.lastPinchDist > 0 && dist > 0 {
			factor := dist / g.lastPinchDist
			g.viewport.ZoomAt(center.X, center.Y, factor)
			if g.cb.OnPinch != nil {
				g.cb.OnPinch(center, g.PinchScale())
			}
		}
	} else {
		centerDelta := center.Sub(g.lastPinchCenter)
		if !g.state.IsTwoFingerPan && center.Dist(g.lastPinchCenter) > twoFingerPanPx {
			g.state.IsTwoFingerPan = true
		}
		if g.state.IsTwoFingerPan {
			g.viewport.Pan(centerDelta.X, centerDelta.Y)
			if g.cb.OnTwoFingerPan != nil {
				g.cb.OnTwoFingerPan(centerDelta)
			}
		}
	}

	g.lastPinchDist = dist
	g.lastPinchCenter = center
}

// TouchEnd removes a touch and resolves taps. Identifiers that were never
// tracked (or already removed) are tolerated.
func (g *GestureRecognizer) TouchEnd(id int, x, y float64) {
	t, ok := g.touches[id]
	if !ok {
		return
	}
	delete(g.touches, id)

	wasSingle := len(g.touches) == 0
	if wasSingle && id == g.longPressID && !t.inGesture {
		g.resolveTap(t, Vec2{x, y})
		g.cancelLongPress()
	}

	if len(g.touches) < 2 {
		g.clearTwoTouchState()
	} else if len(g.touches) == 2 {
		g.initTwoTouchBaseline()
	}
}

func (g *GestureRecognizer) resolveTap(t *TouchPoint, end Vec2) {
	if g.state.IsLongPress {
		return // already consumed by long-press
	}
	held := g.now().Sub(t.StartTime)
	if held >= longPressDuration || end.Dist(t.Start) > tapTolerancePx {
		return
	}
	now := g.now()
	if !g.lastTapAt.IsZero() &&
		now.Sub(g.lastTapAt) < doubleTapDelay &&
		end.Dist(g.lastTapPos) < doubleTapDistPx {
		g.lastTapAt = time.Time{}
		if g.cb.OnDoubleTap != nil {
			g.cb.OnDoubleTap(end)
		}
		return
	}
	g.lastTapAt = now
	g.lastTapPos = end
	if g.cb.OnTap != nil {
		g.cb.OnTap(end)
	}
}

// TouchCancel drops a touch without resolving a tap.
func (g *GestureRecognizer) TouchCancel(id int) {
	if _, ok := g.touches[id]; !ok {
		return
	}
	delete(g.touches, id)
	if id == g.longPressID {
		g.cancelLongPress()
	}
	if len(g.touches) < 2 {
		g.clearTwoTouchState()
	}
}

// Tick fires a due long-press. Called once per frame by the engine.
func (g *GestureRecognizer) Tick(now time.Time) {
	if g.longPressDeadline.IsZero() || now.Before(g.longPressDeadline) {
		return
	}
	g.longPressDeadline = time.Time{}
	t, ok := g.touches[g.longPressID]
	if !ok {
		return
	}
	g.state.IsLongPress = true
	if g.cb.OnLongPress != nil {
		g.cb.OnLongPress(t.Current)
	}
}

func (g *GestureRecognizer) cancelLongPress() {
	g.longPressDeadline = time.Time{}
}

func (g *GestureRecognizer) clearTwoTouchState() {
	g.state.IsPinching = false
	g.state.IsTwoFingerPan = false
	g.state.InitialPinchDistance = 0
	g.state.CurrentPinchDistance = 0
	g.lastPinchDist = 0
}

// Reset drops all touch bookkeeping, e.g. on touchcancel of the whole
// surface or engine teardown.
func (g *GestureRecognizer) Reset() {
	g.touches = make(map[int]*TouchPoint)
	g.state = GestureState{}
	g.cancelLongPress()
	g.lastTapAt = time.Time{}
	g.lastPinchDist = 0
	g.lastPinchCenter = Vec2{}
}
