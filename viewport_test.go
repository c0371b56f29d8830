package mapcanvas

import (
	"math"
	"testing"
)

func TestViewportRoundTrip(t *testing.T) {
	vp := NewViewport()
	vp.Scale = 2.5
	vp.OffsetX = 100
	vp.OffsetY = -40

	w := vp.ScreenToWorld(333, 77)
	s := vp.WorldToScreen(w.X, w.Y)
	if math.Abs(s.X-333) > 1e-9 || math.Abs(s.Y-77) > 1e-9 {
		t.Errorf("round trip drifted: got (%v, %v)", s.X, s.Y)
	}
}

func TestZoomAtKeepsCursorPointFixed(t *testing.T) {
	tests := []struct {
		name           string
		sx, sy, factor float64
	}{
		{"zoom in center", 400, 300, 1.2},
		{"zoom out corner", 0, 0, 0.8},
		{"zoom in off-center", 123.4, 567.8, 1.5},
		{"repeated small steps", 250, 250, 1.0001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp := NewViewport()
			vp.Scale = 1.7
			vp.OffsetX = -55
			vp.OffsetY = 31

			before := vp.ScreenToWorld(tt.sx, tt.sy)
			vp.ZoomAt(tt.sx, tt.sy, tt.factor)
			after := vp.ScreenToWorld(tt.sx, tt.sy)

			if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
				t.Errorf("world point under cursor moved: %+v -> %+v", before, after)
			}
		})
	}
}

func TestZoomAtClampsScale(t *testing.T) {
	vp := NewViewport()
	vp.ZoomAt(0, 0, 1e6)
	if vp.Scale != vp.MaxScale {
		t.Errorf("Scale = %v, want clamped to %v", vp.Scale, vp.MaxScale)
	}
	vp.ZoomAt(0, 0, 1e-9)
	if vp.Scale != vp.MinScale {
		t.Errorf("Scale = %v, want clamped to %v", vp.Scale, vp.MinScale)
	}
}

func TestMomentumDecaysAndStops(t *testing.T) {
	vp := NewViewport()
	vp.SetMomentum(500, 0)

	const dt = 1.0 / 60
	var lastOffset float64
	for i := 0; i < 10000 && vp.Animating(); i++ {
		lastOffset = vp.OffsetX
		vp.Update(dt)
		if vp.OffsetX < lastOffset {
			t.Fatal("momentum reversed direction")
		}
	}
	if vp.Animating() {
		t.Fatal("momentum never stopped")
	}
	if vp.OffsetX <= 0 {
		t.Error("momentum produced no panning")
	}
}

func TestZoomToAnimatesToTarget(t *testing.T) {
	vp := NewViewport()
	vp.ZoomTo(3, 400, 300)

	const dt = 1.0 / 60
	for i := 0; i < 10000 && vp.Animating(); i++ {
		vp.Update(dt)
	}
	if math.Abs(vp.Scale-3) > 1e-9 {
		t.Errorf("Scale = %v, want 3", vp.Scale)
	}
}

func TestFitToBoundsCentersContent(t *testing.T) {
	vp := NewViewport()
	min := Vec2{X: 0, Y: 0}
	max := Vec2{X: 100, Y: 50}
	vp.FitToBounds(min, max, 800, 600)

	if vp.Scale < vp.MinScale || vp.Scale > vp.MaxScale {
		t.Fatalf("Scale %v outside [%v, %v]", vp.Scale, vp.MinScale, vp.MaxScale)
	}

	// The box center must land on the canvas center.
	center := vp.WorldToScreen(50, 25)
	if math.Abs(center.X-400) > 1e-9 || math.Abs(center.Y-300) > 1e-9 {
		t.Errorf("box center at (%v, %v), want (400, 300)", center.X, center.Y)
	}

	// The box plus padding must fit.
	tl := vp.WorldToScreen(0, 0)
	br := vp.WorldToScreen(100, 50)
	if tl.X < fitToBoundsPadding-1e-9 || br.X > 800-fitToBoundsPadding+1e-9 {
		t.Errorf("content exceeds horizontal padding: left %v right %v", tl.X, br.X)
	}
}

func TestFitToBoundsDegenerateBox(t *testing.T) {
	vp := NewViewport()
	// Zero-size box must not produce an invalid scale.
	vp.FitToBounds(Vec2{X: 5, Y: 5}, Vec2{X: 5, Y: 5}, 800, 600)
	if vp.Scale < vp.MinScale || vp.Scale > vp.MaxScale || math.IsNaN(vp.Scale) || math.IsInf(vp.Scale, 0) {
		t.Errorf("invalid scale %v for degenerate bounds", vp.Scale)
	}
}
