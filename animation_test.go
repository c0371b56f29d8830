package mapcanvas

import "testing"

const animDT = 1.0 / 60

// settle steps the engine until every spring rests.
func settle(t *testing.T, e *AnimationEngine) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		if e.ActiveCount() == 0 {
			return
		}
		e.Update(animDT)
	}
	t.Fatal("animations never settled")
}

func TestHoverSetsAndClearsTargets(t *testing.T) {
	e := NewAnimationEngine()
	e.SetHovered("n1", true)

	s := e.Peek("n1")
	if s == nil {
		t.Fatal("no state created")
	}
	if s.Scale.Target != 1.1 || s.Glow.Target != 0.5 {
		t.Fatalf("hover targets: scale %v glow %v", s.Scale.Target, s.Glow.Target)
	}

	settle(t, e)
	if s.Scale.Current != 1.1 {
		t.Errorf("settled scale = %v, want 1.1", s.Scale.Current)
	}

	e.SetHovered("n1", false)
	settle(t, e)
	if s.Scale.Current != 1 || s.Glow.Current != 0 {
		t.Errorf("hover-out settled at scale %v glow %v", s.Scale.Current, s.Glow.Current)
	}
}

func TestSelectedOutglowsHover(t *testing.T) {
	e := NewAnimationEngine()
	e.SetHovered("n1", true)
	e.SetSelected("n1", true)

	s := e.Peek("n1")
	if s.Scale.Target != 1.15 || s.Glow.Target != 1 {
		t.Errorf("selected targets: scale %v glow %v", s.Scale.Target, s.Glow.Target)
	}
}

func TestAnimateAppearStartsFromZero(t *testing.T) {
	e := NewAnimationEngine()
	done := 0
	e.AnimateAppear("n1", func() { done++ })

	s := e.Peek("n1")
	if s.Scale.Current != 0 || s.Opacity.Current != 0 {
		t.Fatalf("appear starts at scale %v opacity %v, want 0", s.Scale.Current, s.Opacity.Current)
	}

	// The bouncy scale overshoots 1 on the way in.
	overshot := false
	for i := 0; i < 10000 && e.ActiveCount() > 0; i++ {
		e.Update(animDT)
		if s.Scale.Current > 1 {
			overshot = true
		}
	}
	if !overshot {
		t.Error("appear never overshot its resting scale")
	}
	if s.Scale.Current != 1 || s.Opacity.Current != 1 {
		t.Errorf("settled at scale %v opacity %v", s.Scale.Current, s.Opacity.Current)
	}
	if done != 1 {
		t.Errorf("completion fired %d times, want 1", done)
	}
}

func TestCompletionFiresExactlyOnce(t *testing.T) {
	e := NewAnimationEngine()
	done := 0
	e.AnimateDisappear("n1", func() { done++ })

	settle(t, e)
	// Extra idle updates must not re-fire.
	e.Update(animDT)
	e.Update(animDT)
	if done != 1 {
		t.Errorf("completion fired %d times, want 1", done)
	}
}

func TestRetargetingReArmsCompletion(t *testing.T) {
	e := NewAnimationEngine()
	done := 0
	e.AnimateDisappear("n1", func() { done++ })
	settle(t, e)

	e.AnimateAppear("n1", func() { done++ })
	settle(t, e)
	if done != 2 {
		t.Errorf("completions = %d, want 2", done)
	}
}

func TestTriggerStatusChangePulses(t *testing.T) {
	e := NewAnimationEngine()
	e.TriggerStatusChange("r1")

	s := e.Peek("r1")
	if s.Scale.Current != 1.3 {
		t.Fatalf("pulse start scale = %v, want instant 1.3", s.Scale.Current)
	}
	if s.Scale.Target != 1 {
		t.Fatalf("pulse target = %v, want 1", s.Scale.Target)
	}

	settle(t, e)
	if s.Scale.Current != 1 || s.Glow.Current != 0 {
		t.Errorf("pulse settled at scale %v glow %v", s.Scale.Current, s.Glow.Current)
	}
}

func TestFlashElementDecaysToPreviousTarget(t *testing.T) {
	e := NewAnimationEngine()
	e.SetSelected("n1", true)
	settle(t, e)

	e.FlashElement("n1")
	s := e.Peek("n1")
	if s.Glow.Current != 1.5 {
		t.Fatalf("flash glow = %v, want 1.5", s.Glow.Current)
	}

	settle(t, e)
	// Selection glow target survives the flash.
	if s.Glow.Current != 1 {
		t.Errorf("flash settled at glow %v, want selection's 1", s.Glow.Current)
	}
}

func TestPositionOffsetTrailsAndSnapsBack(t *testing.T) {
	e := NewAnimationEngine()
	e.SetPositionOffset("n1", Vec2{X: 30, Y: -10})

	s := e.Peek("n1")
	e.Update(animDT)
	cur := s.PositionOffset.Current()
	if cur.X <= 0 || cur.X >= 30 {
		t.Errorf("offset X = %v, want trailing between 0 and 30", cur.X)
	}

	e.ClearPositionOffset("n1")
	if got := s.PositionOffset.Current(); got != (Vec2{}) {
		t.Errorf("offset after clear = %v, want zero", got)
	}
	if !s.PositionOffset.AtRest() {
		t.Error("clear left the offset spring active")
	}
}

func TestRemoveDropsState(t *testing.T) {
	e := NewAnimationEngine()
	e.SetHovered("n1", true)
	e.Remove("n1")
	if e.Peek("n1") != nil {
		t.Error("state survived Remove")
	}

	e.SetHovered("a", true)
	e.SetHovered("b", true)
	if e.ActiveCount() != 2 {
		t.Errorf("ActiveCount = %d, want 2", e.ActiveCount())
	}
	e.Reset()
	if e.ActiveCount() != 0 || e.Peek("a") != nil {
		t.Error("Reset left state behind")
	}
}
