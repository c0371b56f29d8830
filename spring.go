package mapcanvas

import "math"

// SpringConfig tunes the damped oscillator driving an animated value.
type SpringConfig struct {
	Stiffness float64
	Damping   float64
	Mass      float64
}

// Spring presets, tuned per animation purpose.
var (
	SpringDefault = SpringConfig{Stiffness: 170, Damping: 26, Mass: 1}
	SpringSnappy  = SpringConfig{Stiffness: 300, Damping: 30, Mass: 1}
	SpringBouncy  = SpringConfig{Stiffness: 180, Damping: 12, Mass: 1}
	SpringGentle  = SpringConfig{Stiffness: 120, Damping: 22, Mass: 1}
	SpringDrag    = SpringConfig{Stiffness: 500, Damping: 40, Mass: 1}
)

// restThreshold is the absolute displacement/velocity bound under which a
// spring is considered at rest and snaps exactly to its target.
const restThreshold = 0.001

// SpringResult is the outcome of one integration step.
type SpringResult struct {
	Value    float64
	Velocity float64
	AtRest   bool
}

// SpringStep advances a damped oscillator by dt using semi-implicit Euler:
// a = (-k*(x-target) - c*v) / m, then v' = v + a*dt, x' = x + v'*dt.
// When both displacement and velocity fall under the rest threshold the
// value snaps exactly to target and velocity resets to zero, so iteration
// always terminates and downstream equality checks are exact.
func SpringStep(current, target, velocity float64, cfg SpringConfig, dt float64) SpringResult {
	mass := cfg.Mass
	if mass <= 0 {
		mass = 1
	}
	displacement := current - target
	accel := (-cfg.Stiffness*displacement - cfg.Damping*velocity) / mass
	velocity += accel * dt
	current += velocity * dt

	if math.Abs(current-target) < restThreshold && math.Abs(velocity) < restThreshold {
		return SpringResult{Value: target, Velocity: 0, AtRest: true}
	}
	return SpringResult{Value: current, Velocity: velocity, AtRest: false}
}

// AnimatedValue is a scalar driven toward a target by SpringStep.
// Only the spring step mutates Current.
type AnimatedValue struct {
	Current  float64
	Target   float64
	Velocity float64
	Config   SpringConfig
}

func NewAnimatedValue(initial float64, cfg SpringConfig) *AnimatedValue {
	return &AnimatedValue{Current: initial, Target: initial, Config: cfg}
}

// Set snaps the value instantly, clearing any motion.
func (a *AnimatedValue) Set(v float64) {
	a.Current = v
	a.Target = v
	a.Velocity = 0
}

// SetTarget retargets the spring without touching the current value.
func (a *AnimatedValue) SetTarget(t float64) {
	a.Target = t
}

// AtRest reports whether the value has settled exactly on its target.
func (a *AnimatedValue) AtRest() bool {
	return a.Current == a.Target && a.Velocity == 0
}

// Step advances the value by dt and reports whether it is now at rest.
func (a *AnimatedValue) Step(dt float64) bool {
	if a.AtRest() {
		return true
	}
	r := SpringStep(a.Current, a.Target, a.Velocity, a.Config, dt)
	a.Current = r.Value
	a.Velocity = r.Velocity
	return r.AtRest
}

// AnimatedVec2 is a 2D value animated per axis with a shared config.
type AnimatedVec2 struct {
	X AnimatedValue
	Y AnimatedValue
}

func NewAnimatedVec2(initial Vec2, cfg SpringConfig) *AnimatedVec2 {
	return &AnimatedVec2{
		X: AnimatedValue{Current: initial.X, Target: initial.X, Config: cfg},
		Y: AnimatedValue{Current: initial.Y, Target: initial.Y, Config: cfg},
	}
}

func (a *AnimatedVec2) Current() Vec2 {
	return Vec2{a.X.Current, a.Y.Current}
}

func (a *AnimatedVec2) Set(v Vec2) {
	a.X.Set(v.X)
	a.Y.Set(v.Y)
}

func (a *AnimatedVec2) SetTarget(t Vec2) {
	a.X.SetTarget(t.X)
	a.Y.SetTarget(t.Y)
}

func (a *AnimatedVec2) AtRest() bool {
	return a.X.AtRest() && a.Y.AtRest()
}

// Step advances both axes and reports whether both are at rest.
func (a *AnimatedVec2) Step(dt float64) bool {
	rx := a.X.Step(dt)
	ry := a.Y.Step(dt)
	return rx && ry
}
