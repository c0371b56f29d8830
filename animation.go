package mapcanvas

// ElementAnimationState holds the four springs animating one interactive
// element. Created lazily on first use, destroyed when the element goes away.
type ElementAnimationState struct {
	Scale          *AnimatedValue
	Opacity        *AnimatedValue
	Glow           *AnimatedValue
	PositionOffset *AnimatedVec2

	onComplete func()
	fired      bool
}

func newElementAnimationState() *ElementAnimationState {
	return &ElementAnimationState{
		Scale:          NewAnimatedValue(1, SpringSnappy),
		Opacity:        NewAnimatedValue(1, SpringDefault),
		Glow:           NewAnimatedValue(0, SpringGentle),
		PositionOffset: NewAnimatedVec2(Vec2{}, SpringDrag),
	}
}

func (s *ElementAnimationState) atRest() bool {
	return s.Scale.AtRest() && s.Opacity.AtRest() && s.Glow.AtRest() && s.PositionOffset.AtRest()
}

// AnimationEngine keeps per-element animation state and steps every active
// spring once per frame. Intent-level operations only ever set spring
// targets; the spring step is the sole writer of current values.
type AnimationEngine struct {
	elements map[string]*ElementAnimationState
}

func NewAnimationEngine() *AnimationEngine {
	return &AnimationEngine{elements: make(map[string]*ElementAnimationState)}
}

// State returns the animation state for id, creating it at rest if missing.
func (e *AnimationEngine) State(id string) *ElementAnimationState {
	s, ok := e.elements[id]
	if !ok {
		s = newElementAnimationState()
		e.elements[id] = s
	}
	return s
}

// Peek returns the state for id without creating one.
func (e *AnimationEngine) Peek(id string) *ElementAnimationState {
	return e.elements[id]
}

// Remove drops all animation state for an element.
func (e *AnimationEngine) Remove(id string) {
	delete(e.elements, id)
}

// ActiveCount returns how many elements still have a spring in motion.
func (e *AnimationEngine) ActiveCount() int {
	n := 0
	for _, s := range e.elements {
		if !s.atRest() {
			n++
		}
	}
	return n
}

// SetHovered grows and glows an element on hover-in, settles it on hover-out.
func (e *AnimationEngine) SetHovered(id string, hovered bool) {
	s := e.State(id)
	if hovered {
		s.Scale.SetTarget(1.1)
		s.Glow.SetTarget(0.5)
	} else {
		s.Scale.SetTarget(1)
		s.Glow.SetTarget(0)
	}
	s.fired = false
}

// SetSelected marks an element selected with a stronger glow.
func (e *AnimationEngine) SetSelected(id string, selected bool) {
	s := e.State(id)
	if selected {
		s.Scale.SetTarget(1.15)
		s.Glow.SetTarget(1)
	} else {
		s.Scale.SetTarget(1)
		s.Glow.SetTarget(0)
	}
	s.fired = false
}

// AnimateAppear pops a new element in from zero scale and opacity.
// onComplete, if non-nil, fires exactly once when every spring rests.
func (e *AnimationEngine) AnimateAppear(id string, onComplete func()) {
	s := e.State(id)
	s.Scale.Set(0)
	s.Opacity.Set(0)
	s.Scale.Config = SpringBouncy
	s.Scale.SetTarget(1)
	s.Opacity.SetTarget(1)
	s.onComplete = onComplete
	s.fired = false
}

// AnimateDisappear shrinks an element out. The completion callback is where
// the host removes the element (and this state) once it is invisible.
func (e *AnimationEngine) AnimateDisappear(id string, onComplete func()) {
	s := e.State(id)
	s.Scale.SetTarget(0)
	s.Opacity.SetTarget(0)
	s.onComplete = onComplete
	s.fired = false
}

// SetPositionOffset retargets the element's spring-smoothed draw offset,
// used to trail the raw drag position.
func (e *AnimationEngine) SetPositionOffset(id string, offset Vec2) {
	s := e.State(id)
	s.PositionOffset.SetTarget(offset)
	s.fired = false
}

// ClearPositionOffset snaps the draw offset back to zero instantly,
// for drag end/cancel.
func (e *AnimationEngine) ClearPositionOffset(id string) {
	if s := e.Peek(id); s != nil {
		s.PositionOffset.Set(Vec2{})
	}
}

// FlashElement pulses the glow: the spring settles back to the previous
// target on its own.
func (e *AnimationEngine) FlashElement(id string) {
	s := e.State(id)
	s.Glow.Current = 1.5
	s.Glow.Velocity = 0
	s.fired = false
}

// TriggerStatusChange is the snap-and-settle pulse: scale jumps above
// baseline instantly, then springs back to the baseline target. No timer
// needed; the spring does the settling.
func (e *AnimationEngine) TriggerStatusChange(id string) {
	s := e.State(id)
	s.Scale.Current = 1.3
	s.Scale.Velocity = 0
	s.Scale.SetTarget(1)
	s.Glow.Current = 1
	s.Glow.SetTarget(0)
	s.fired = false
}

// Update steps every active spring once by dt seconds. An element's
// completion callback fires exactly once, on the tick where its last
// sub-spring comes to rest.
func (e *AnimationEngine) Update(dt float64) {
	for _, s := range e.elements {
		if s.atRest() {
			continue
		}
		rest := s.Scale.Step(dt)
		rest = s.Opacity.Step(dt) && rest
		rest = s.Glow.Step(dt) && rest
		rest = s.PositionOffset.Step(dt) && rest
		if rest && !s.fired {
			s.fired = true
			if s.onComplete != nil {
				cb := s.onComplete
				s.onComplete = nil
				cb()
			}
		}
	}
}

// Reset drops all element state on canvas teardown.
func (e *AnimationEngine) Reset() {
	e.elements = make(map[string]*ElementAnimationState)
}
