package mapcanvas

import (
	"math"
	"time"
)

// PointerButton identifies which logical button drove a pointer event.
type PointerButton int

const (
	PointerLeft PointerButton = iota
	PointerMiddle
	PointerRight
)

// PointerState is the single logical pointer: the mouse or the primary touch.
type PointerState struct {
	ScreenPos Vec2
	WorldPos  Vec2
	Button    PointerButton
	IsDown    bool
	IsTouch   bool
}

// DragState describes one drag lifecycle. Target is the hit-test result
// captured at pointer-down and frozen for the drag's duration.
type DragState struct {
	IsDragging   bool
	StartWorld   Vec2
	CurrentWorld Vec2
	Target       *HitTestResult
	// Offset is pointer-down world position minus the target's world
	// position, so dragging keeps the grab point under the pointer.
	Offset Vec2
}

// InteractionCallbacks are the typed output channels of the service.
// Nil callbacks are skipped.
type InteractionCallbacks struct {
	OnClick       func(hit *HitTestResult, world Vec2)
	OnDoubleClick func(hit *HitTestResult, world Vec2)
	OnRightClick  func(hit *HitTestResult, screen, world Vec2)
	OnDragStart   func(drag DragState)
	OnDrag        func(drag DragState)
	OnDragEnd     func(drag DragState)
	OnDragCancel  func(drag DragState)
	OnHoverChange func(hit *HitTestResult)
}

// InteractionService runs the pointer state machine. Mouse and primary
// touch share this code path; multi-touch gestures live in
// GestureRecognizer. States: idle -> down -> (dragging | released).
type InteractionService struct {
	viewport *Viewport
	hit      *HitTester
	cb       InteractionCallbacks
	now      func() time.Time

	pointer PointerState
	drag    DragState

	isDown     bool
	downScreen Vec2
	downWorld  Vec2
	downHit    *HitTestResult

	// Pan mode: middle button, or space + left. Bypasses hit testing.
	panMode       bool
	spaceHeld     bool
	lastPanScreen Vec2
	lastPanAt     time.Time
	panVelocity   Vec2

	lastClickAt  time.Time
	lastClickPos Vec2

	hover *HitTestResult
}

func NewInteractionService(viewport *Viewport, hit *HitTester) *InteractionService {
	return &InteractionService{
		viewport: viewport,
		hit:      hit,
		now:      time.Now,
	}
}

// SetCallbacks installs the output callbacks.
func (s *InteractionService) SetCallbacks(cb InteractionCallbacks) {
	s.cb = cb
}

// SetClock overrides the time source, for tests.
func (s *InteractionService) SetClock(now func() time.Time) {
	s.now = now
}

// Pointer returns the current pointer state.
func (s *InteractionService) Pointer() PointerState { return s.pointer }

// Drag returns the current drag state.
func (s *InteractionService) Drag() DragState { return s.drag }

// IsPanning reports whether a pan-mode drag is in progress.
func (s *InteractionService) IsPanning() bool { return s.panMode }

// SetSpaceHeld toggles the space-pan modifier from the host's key events.
func (s *InteractionService) SetSpaceHeld(held bool) {
	s.spaceHeld = held
}

func (s *InteractionService) updatePointer(sx, sy float64, isTouch bool) {
	s.pointer.ScreenPos = Vec2{sx, sy}
	s.pointer.WorldPos = s.viewport.ScreenToWorld(sx, sy)
	s.pointer.IsTouch = isTouch
}

// PointerDown feeds a press. A second press while one is active is ignored:
// at most one drag target is ever live.
func (s *InteractionService) PointerDown(sx, sy float64, button PointerButton, isTouch bool) {
	if s.isDown || s.panMode {
		return
	}
	s.updatePointer(sx, sy, isTouch)
	s.pointer.Button = button
	s.pointer.IsDown = true
	s.viewport.StopMomentum()

	if button == PointerMiddle || (button == PointerLeft && s.spaceHeld) {
		s.panMode = true
		s.lastPanScreen = Vec2{sx, sy}
		s.lastPanAt = s.now()
		s.panVelocity = Vec2{}
		return
	}

	if button == PointerRight {
		// Right-click resolves on release; no drag from the right button.
		return
	}

	s.isDown = true
	s.downScreen = Vec2{sx, sy}
	s.downWorld = s.pointer.WorldPos
	s.downHit = s.hit.HitTest(s.downWorld.X, s.downWorld.Y)
}

// PointerMove feeds motion, driving pan, drag promotion, drag updates and
// hover tracking.
func (s *InteractionService) PointerMove(sx, sy float64) {
	prevScreen := s.pointer.ScreenPos
	s.updatePointer(sx, sy, s.pointer.IsTouch)

	if s.panMode {
		dx := sx - s.lastPanScreen.X
		dy := sy - s.lastPanScreen.Y
		s.viewport.Pan(dx, dy)

		now := s.now()
		if dt := now.Sub(s.lastPanAt).Seconds(); dt > 0 {
			s.panVelocity = Vec2{dx / dt, dy / dt}
		}
		s.lastPanScreen = Vec2{sx, sy}
		s.lastPanAt = now
		return
	}

	if s.isDown {
		if !s.drag.IsDragging {
			moved := math.Hypot(sx-s.downScreen.X, sy-s.downScreen.Y)
			if moved <= dragThresholdPx {
				return
			}
			s.drag = DragState{
				IsDragging:   true,
				StartWorld:   s.downWorld,
				CurrentWorld: s.pointer.WorldPos,
				Target:       s.downHit,
			}
			if s.downHit != nil {
				if pos, ok := targetWorldPos(s.downHit); ok {
					s.drag.Offset = s.downWorld.Sub(pos)
				}
			}
			if s.cb.OnDragStart != nil {
				s.cb.OnDragStart(s.drag)
			}
		}
		s.drag.CurrentWorld = s.pointer.WorldPos
		if s.cb.OnDrag != nil {
			s.cb.OnDrag(s.drag)
		}
		return
	}

	// Idle motion: hover fires only when the hit identity changes, not on
	// every pixel of movement.
	if prevScreen == s.pointer.ScreenPos {
		return
	}
	hit := s.hit.HitTest(s.pointer.WorldPos.X, s.pointer.WorldPos.Y)
	if !SameTarget(hit, s.hover) {
		s.hover = hit
		if s.cb.OnHoverChange != nil {
			s.cb.OnHoverChange(hit)
		}
	}
}

// PointerUp feeds a release, resolving pan end, drag end, right-click, or
// click vs double-click.
func (s *InteractionService) PointerUp(sx, sy float64) {
	s.updatePointer(sx, sy, s.pointer.IsTouch)
	s.pointer.IsDown = false

	if s.panMode {
		s.panMode = false
		// Holding still before releasing means no flick; the velocity
		// sampled at the last move is stale by then.
		if s.now().Sub(s.lastPanAt) > momentumStaleAfter {
			s.panVelocity = Vec2{}
		}
		s.viewport.SetMomentum(s.panVelocity.X, s.panVelocity.Y)
		s.panVelocity = Vec2{}
		return
	}

	if s.pointer.Button == PointerRight {
		hit := s.hit.HitTest(s.pointer.WorldPos.X, s.pointer.WorldPos.Y)
		if s.cb.OnRightClick != nil {
			s.cb.OnRightClick(hit, s.pointer.ScreenPos, s.pointer.WorldPos)
		}
		return
	}

	if !s.isDown {
		return
	}
	s.isDown = false

	if s.drag.IsDragging {
		s.drag.CurrentWorld = s.pointer.WorldPos
		if s.cb.OnDragEnd != nil {
			s.cb.OnDragEnd(s.drag)
		}
		s.drag = DragState{}
		s.downHit = nil
		return
	}

	// Click vs double-click by elapsed time and distance between releases.
	now := s.now()
	pos := s.pointer.ScreenPos
	isDouble := !s.lastClickAt.IsZero() &&
		now.Sub(s.lastClickAt) < doubleClickDelay &&
		pos.Dist(s.lastClickPos) < doubleClickDistPx
	if isDouble {
		s.lastClickAt = time.Time{}
		if s.cb.OnDoubleClick != nil {
			s.cb.OnDoubleClick(s.downHit, s.pointer.WorldPos)
		}
	} else {
		s.lastClickAt = now
		s.lastClickPos = pos
		if s.cb.OnClick != nil {
			s.cb.OnClick(s.downHit, s.pointer.WorldPos)
		}
	}
	s.downHit = nil
}

// PointerLeave feeds the pointer leaving the surface. An active drag is
// canceled, an active pan keeps no momentum.
func (s *InteractionService) PointerLeave() {
	s.pointer.IsDown = false
	s.panMode = false
	s.panVelocity = Vec2{}
	if s.hover != nil {
		s.hover = nil
		if s.cb.OnHoverChange != nil {
			s.cb.OnHoverChange(nil)
		}
	}
	s.Cancel()
}

// Wheel feeds a scroll-wheel zoom anchored at the cursor. delta follows the
// convention of positive = zoom in, one step per notch.
func (s *InteractionService) Wheel(sx, sy, delta float64) {
	factor := math.Pow(1.1, delta)
	s.viewport.ZoomAt(sx, sy, factor)
}

// Cancel aborts any in-progress drag without completing it (Escape).
func (s *InteractionService) Cancel() {
	if s.drag.IsDragging {
		if s.cb.OnDragCancel != nil {
			s.cb.OnDragCancel(s.drag)
		}
	}
	s.drag = DragState{}
	s.isDown = false
	s.downHit = nil
}

// Hover returns the current hover target, nil when over empty canvas.
func (s *InteractionService) Hover() *HitTestResult { return s.hover }

// Reset clears all interaction state on teardown.
func (s *InteractionService) Reset() {
	s.Cancel()
	s.panMode = false
	s.spaceHeld = false
	s.hover = nil
	s.pointer = PointerState{}
	s.lastClickAt = time.Time{}
}

// targetWorldPos extracts a draggable world position from a hit result.
func targetWorldPos(hit *HitTestResult) (Vec2, bool) {
	switch el := hit.Element.(type) {
	case *CustomNode:
		return el.Pos(), true
	case *AnimatedRobotState:
		return el.Pos(), true
	case *CustomZone:
		if hit.Type == HitZoneVertex && hit.VertexIndex >= 0 && hit.VertexIndex < len(el.Vertices) {
			return el.Vertices[hit.VertexIndex], true
		}
	}
	return Vec2{}, false
}
