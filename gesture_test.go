package mapcanvas

import (
	"testing"
	"time"
)

// fakeClock is a manually advanced time source shared by the gesture and
// interaction tests.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestPinchZoomsAndReportsScale(t *testing.T) {
	vp := NewViewport()
	g := NewGestureRecognizer(vp)

	g.TouchStart(1, 100, 200)
	g.TouchStart(2, 200, 200)

	// Spreading from 100px to 150px apart is a pinch with factor 1.5.
	g.TouchMove(2, 250, 200)

	if !g.State().IsPinching {
		t.Fatal("pinch not recognized")
	}
	if got := g.PinchScale(); got != 1.5 {
		t.Errorf("PinchScale = %v, want 1.5", got)
	}
	if vp.Scale != 1.5 {
		t.Errorf("viewport scale = %v, want 1.5", vp.Scale)
	}
}

func TestPinchBelowThresholdStaysUnclassified(t *testing.T) {
	vp := NewViewport()
	g := NewGestureRecognizer(vp)

	g.TouchStart(1, 100, 200)
	g.TouchStart(2, 200, 200)
	g.TouchMove(2, 205, 200) // 5px delta, under the classification threshold

	if g.State().IsPinching {
		t.Error("pinch classified too eagerly")
	}
	if vp.Scale != 1 {
		t.Errorf("viewport scale changed to %v before classification", vp.Scale)
	}
}

func TestTwoFingerPanMovesViewport(t *testing.T) {
	vp := NewViewport()
	g := NewGestureRecognizer(vp)
	var panDeltas []Vec2
	g.SetCallbacks(GestureCallbacks{
		OnTwoFingerPan: func(d Vec2) { panDeltas = append(panDeltas, d) },
	})

	g.TouchStart(1, 100, 200)
	g.TouchStart(2, 200, 200)

	// Both fingers translate downward: the distance stays near-constant
	// while the center drifts, one finger event at a time.
	g.TouchMove(1, 100, 220)
	g.TouchMove(2, 200, 220)

	if g.State().IsPinching {
		t.Fatal("parallel translation misclassified as pinch")
	}
	if !g.State().IsTwoFingerPan {
		t.Fatal("two-finger pan not recognized")
	}
	if vp.OffsetY != 20 {
		t.Errorf("OffsetY = %v, want 20", vp.OffsetY)
	}
	if len(panDeltas) == 0 {
		t.Error("OnTwoFingerPan never fired")
	}
}

func TestTapAndDoubleTap(t *testing.T) {
	clock := newFakeClock()
	g := NewGestureRecognizer(NewViewport())
	g.SetClock(clock.Now)

	var taps, doubles int
	g.SetCallbacks(GestureCallbacks{
		OnTap:       func(Vec2) { taps++ },
		OnDoubleTap: func(Vec2) { doubles++ },
	})

	g.TouchStart(1, 50, 50)
	clock.Advance(80 * time.Millisecond)
	g.TouchEnd(1, 52, 51)
	if taps != 1 || doubles != 0 {
		t.Fatalf("after first tap: taps=%d doubles=%d", taps, doubles)
	}

	clock.Advance(150 * time.Millisecond)
	g.TouchStart(1, 55, 50)
	clock.Advance(80 * time.Millisecond)
	g.TouchEnd(1, 55, 50)
	if doubles != 1 {
		t.Errorf("second quick tap: doubles=%d, want 1", doubles)
	}
	if taps != 1 {
		t.Errorf("double-tap also fired a plain tap: taps=%d", taps)
	}

	// A third tap after the window starts a fresh sequence.
	clock.Advance(time.Second)
	g.TouchStart(1, 55, 50)
	g.TouchEnd(1, 55, 50)
	if taps != 2 || doubles != 1 {
		t.Errorf("after stale window: taps=%d doubles=%d", taps, doubles)
	}
}

func TestTapRejectedWhenMovedTooFar(t *testing.T) {
	clock := newFakeClock()
	g := NewGestureRecognizer(NewViewport())
	g.SetClock(clock.Now)
	var taps int
	g.SetCallbacks(GestureCallbacks{OnTap: func(Vec2) { taps++ }})

	g.TouchStart(1, 50, 50)
	g.TouchEnd(1, 80, 50) // 30px from start
	if taps != 0 {
		t.Errorf("moved release still tapped: taps=%d", taps)
	}
}

func TestLongPressFiresFromTick(t *testing.T) {
	clock := newFakeClock()
	g := NewGestureRecognizer(NewViewport())
	g.SetClock(clock.Now)

	var pressed []Vec2
	var taps int
	g.SetCallbacks(GestureCallbacks{
		OnLongPress: func(p Vec2) { pressed = append(pressed, p) },
		OnTap:       func(Vec2) { taps++ },
	})

	g.TouchStart(1, 50, 50)
	clock.Advance(400 * time.Millisecond)
	g.Tick(clock.Now())
	if len(pressed) != 0 {
		t.Fatal("long-press fired before the deadline")
	}

	clock.Advance(200 * time.Millisecond)
	g.Tick(clock.Now())
	if len(pressed) != 1 {
		t.Fatalf("long-press fired %d times, want 1", len(pressed))
	}
	g.Tick(clock.Now())
	if len(pressed) != 1 {
		t.Fatal("long-press re-fired on a later tick")
	}

	// The eventual release is consumed; no tap.
	g.TouchEnd(1, 50, 50)
	if taps != 0 {
		t.Errorf("release after long-press tapped: taps=%d", taps)
	}
}

func TestLongPressCanceledByMovement(t *testing.T) {
	clock := newFakeClock()
	g := NewGestureRecognizer(NewViewport())
	g.SetClock(clock.Now)
	var pressed int
	g.SetCallbacks(GestureCallbacks{OnLongPress: func(Vec2) { pressed++ }})

	g.TouchStart(1, 50, 50)
	g.TouchMove(1, 80, 50) // past tap tolerance
	clock.Advance(time.Second)
	g.Tick(clock.Now())
	if pressed != 0 {
		t.Errorf("long-press fired after movement: %d", pressed)
	}
}

func TestSecondTouchCancelsLongPress(t *testing.T) {
	clock := newFakeClock()
	g := NewGestureRecognizer(NewViewport())
	g.SetClock(clock.Now)
	var pressed int
	g.SetCallbacks(GestureCallbacks{OnLongPress: func(Vec2) { pressed++ }})

	g.TouchStart(1, 50, 50)
	g.TouchStart(2, 150, 50)
	clock.Advance(time.Second)
	g.Tick(clock.Now())
	if pressed != 0 {
		t.Errorf("long-press fired during two-touch gesture: %d", pressed)
	}
}

func TestThreeTouchesCancelGestures(t *testing.T) {
	vp := NewViewport()
	g := NewGestureRecognizer(vp)

	g.TouchStart(1, 100, 200)
	g.TouchStart(2, 200, 200)
	g.TouchMove(2, 260, 200) // established pinch
	if !g.State().IsPinching {
		t.Fatal("setup: pinch not active")
	}

	g.TouchStart(3, 150, 300)
	if g.State().IsPinching || g.State().IsTwoFingerPan {
		t.Error("third touch did not cancel the active gesture")
	}
	if g.State().TouchCount != 3 {
		t.Errorf("TouchCount = %d, want 3", g.State().TouchCount)
	}
}

func TestPinchTouchesDoNotTapOnRelease(t *testing.T) {
	clock := newFakeClock()
	g := NewGestureRecognizer(NewViewport())
	g.SetClock(clock.Now)

	var taps, doubles int
	g.SetCallbacks(GestureCallbacks{
		OnTap:       func(Vec2) { taps++ },
		OnDoubleTap: func(Vec2) { doubles++ },
	})

	// Quick pinch: touch 1 stays put, touch 2 spreads past the pinch
	// threshold, then both lift inside the tap window.
	g.TouchStart(1, 100, 200)
	g.TouchStart(2, 200, 200)
	g.TouchMove(2, 250, 200)
	if !g.State().IsPinching {
		t.Fatal("setup: pinch not active")
	}
	clock.Advance(100 * time.Millisecond)
	g.TouchEnd(2, 250, 200)
	clock.Advance(50 * time.Millisecond)
	g.TouchEnd(1, 100, 200)

	if taps != 0 || doubles != 0 {
		t.Errorf("pinch release tapped: taps=%d doubles=%d", taps, doubles)
	}

	// A fresh single touch afterwards still taps normally.
	g.TouchStart(1, 100, 200)
	g.TouchEnd(1, 100, 200)
	if taps != 1 {
		t.Errorf("tap after pinch: taps=%d, want 1", taps)
	}
}

func TestTouchEndReBaselinesRemainingPair(t *testing.T) {
	vp := NewViewport()
	g := NewGestureRecognizer(vp)

	g.TouchStart(1, 0, 0)
	g.TouchStart(2, 100, 0)
	g.TouchStart(3, 0, 100)
	g.TouchEnd(3, 0, 100)

	// Dropping back to two touches re-baselines: no instant pinch jump.
	if g.State().IsPinching {
		t.Error("stale pinch state after re-baseline")
	}
	if g.State().InitialPinchDistance != 100 {
		t.Errorf("InitialPinchDistance = %v, want 100", g.State().InitialPinchDistance)
	}
}

func TestUnknownTouchIDsTolerated(t *testing.T) {
	g := NewGestureRecognizer(NewViewport())
	g.TouchMove(9, 1, 1)
	g.TouchEnd(9, 1, 1)
	g.TouchCancel(9)
	if g.State().TouchCount != 0 {
		t.Errorf("phantom touches tracked: %d", g.State().TouchCount)
	}
}

func TestTouchCancelDoesNotTap(t *testing.T) {
	g := NewGestureRecognizer(NewViewport())
	var taps int
	g.SetCallbacks(GestureCallbacks{OnTap: func(Vec2) { taps++ }})

	g.TouchStart(1, 50, 50)
	g.TouchCancel(1)
	if taps != 0 {
		t.Errorf("cancel produced a tap")
	}
}

func TestGestureReset(t *testing.T) {
	g := NewGestureRecognizer(NewViewport())
	g.TouchStart(1, 0, 0)
	g.TouchStart(2, 100, 0)
	g.Reset()

	st := g.State()
	if st.TouchCount != 0 || st.IsPinching || st.InitialPinchDistance != 0 {
		t.Errorf("state after Reset: %+v", st)
	}
	if g.PinchScale() != 1 {
		t.Errorf("PinchScale after Reset = %v, want 1", g.PinchScale())
	}
}
