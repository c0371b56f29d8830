package mapcanvas

import "math"

// Viewport converts between screen and world space and owns pan/zoom state.
// screen = world*scale + offset. Scale always stays inside
// [minScale, maxScale].
type Viewport struct {
	Scale    float64
	OffsetX  float64
	OffsetY  float64
	MinScale float64
	MaxScale float64

	// Decaying pan velocity, px/s in screen space. Zero when idle.
	momentumVX float64
	momentumVY float64

	// Spring-eased zoom toward zoomTarget, anchored at zoomAnchor (screen).
	zoomAnim   *AnimatedValue
	zoomAnchor Vec2
}

func NewViewport() *Viewport {
	return &Viewport{
		Scale:    1,
		MinScale: defaultMinScale,
		MaxScale: defaultMaxScale,
	}
}

func (v *Viewport) clampScale(s float64) float64 {
	if s < v.MinScale {
		return v.MinScale
	}
	if s > v.MaxScale {
		return v.MaxScale
	}
	return s
}

// ScreenToWorld maps a screen point into world space.
func (v *Viewport) ScreenToWorld(sx, sy float64) Vec2 {
	return Vec2{(sx - v.OffsetX) / v.Scale, (sy - v.OffsetY) / v.Scale}
}

// WorldToScreen maps a world point into screen space.
func (v *Viewport) WorldToScreen(wx, wy float64) Vec2 {
	return Vec2{wx*v.Scale + v.OffsetX, wy*v.Scale + v.OffsetY}
}

// Pan shifts the viewport by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// ZoomAt rescales by delta keeping the world point under (screenX, screenY)
// visually fixed: capture the world point, rescale, then solve the offset
// that puts the same world point back under the cursor.
func (v *Viewport) ZoomAt(screenX, screenY, delta float64) {
	before := v.ScreenToWorld(screenX, screenY)
	v.Scale = v.clampScale(v.Scale * delta)
	v.OffsetX = screenX - before.X*v.Scale
	v.OffsetY = screenY - before.Y*v.Scale
}

// ZoomTo starts a spring-eased zoom toward targetScale, anchored at the
// given screen point. The animation advances in Update.
func (v *Viewport) ZoomTo(targetScale, screenX, screenY float64) {
	target := v.clampScale(targetScale)
	if v.zoomAnim == nil {
		v.zoomAnim = NewAnimatedValue(v.Scale, SpringGentle)
	} else {
		v.zoomAnim.Current = v.Scale
		v.zoomAnim.Velocity = 0
	}
	v.zoomAnim.SetTarget(target)
	v.zoomAnchor = Vec2{screenX, screenY}
}

// SetMomentum seeds the decaying pan velocity, px/s in screen space,
// typically from the pointer velocity at drag release.
func (v *Viewport) SetMomentum(vx, vy float64) {
	v.momentumVX = vx
	v.momentumVY = vy
}

// StopMomentum halts any in-flight momentum pan.
func (v *Viewport) StopMomentum() {
	v.momentumVX = 0
	v.momentumVY = 0
}

// Animating reports whether momentum or a zoom animation is in flight.
func (v *Viewport) Animating() bool {
	if v.momentumVX != 0 || v.momentumVY != 0 {
		return true
	}
	return v.zoomAnim != nil && !v.zoomAnim.AtRest()
}

// Update advances momentum and the zoom spring by dt seconds.
func (v *Viewport) Update(dt float64) {
	if v.momentumVX != 0 || v.momentumVY != 0 {
		v.OffsetX += v.momentumVX * dt
		v.OffsetY += v.momentumVY * dt
		v.momentumVX *= momentumFriction
		v.momentumVY *= momentumFriction
		if math.Hypot(v.momentumVX, v.momentumVY) < momentumMinSpeed {
			v.momentumVX = 0
			v.momentumVY = 0
		}
	}

	if v.zoomAnim != nil && !v.zoomAnim.AtRest() {
		v.zoomAnim.Step(dt)
		// Re-anchor each step so the zoom stays centered on the anchor.
		ratio := v.zoomAnim.Current / v.Scale
		v.ZoomAt(v.zoomAnchor.X, v.zoomAnchor.Y, ratio)
	}
}

// FitToBounds scales and centers the viewport so the world-space box
// (min, max) fits a canvas of the given logical size minus padding.
func (v *Viewport) FitToBounds(min, max Vec2, canvasW, canvasH float64) {
	w := max.X - min.X
	h := max.Y - min.Y
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	sx := (canvasW - 2*fitToBoundsPadding) / w
	sy := (canvasH - 2*fitToBoundsPadding) / h
	s := math.Min(sx, sy)
	if s <= 0 {
		s = v.MinScale
	}
	v.Scale = v.clampScale(s)

	// Center the box.
	cx := (min.X + max.X) / 2
	cy := (min.Y + max.Y) / 2
	v.OffsetX = canvasW/2 - cx*v.Scale
	v.OffsetY = canvasH/2 - cy*v.Scale
	v.StopMomentum()
	v.zoomAnim = nil
}

// Reset restores the identity transform and cancels animations.
func (v *Viewport) Reset() {
	v.Scale = v.clampScale(1)
	v.OffsetX = 0
	v.OffsetY = 0
	v.StopMomentum()
	v.zoomAnim = nil
}
