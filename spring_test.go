package mapcanvas

import (
	"math"
	"testing"
)

func TestSpringStepConverges(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		target  float64
		cfg     SpringConfig
	}{
		{"default upward", 0, 1, SpringDefault},
		{"default downward", 1, 0, SpringDefault},
		{"snappy", -5, 5, SpringSnappy},
		{"bouncy underdamped", 0, 100, SpringBouncy},
		{"gentle", 3, 2.5, SpringGentle},
		{"drag stiff", 200, -200, SpringDrag},
		{"already at target", 7, 7, SpringDefault},
	}

	const dt = 1.0 / 60
	const maxIterations = 10000

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, velocity := tt.current, 0.0
			settled := false
			for i := 0; i < maxIterations; i++ {
				r := SpringStep(value, tt.target, velocity, tt.cfg, dt)
				value, velocity = r.Value, r.Velocity
				if r.AtRest {
					settled = true
					break
				}
			}
			if !settled {
				t.Fatalf("spring did not settle within %d iterations", maxIterations)
			}
			if value != tt.target {
				t.Errorf("value = %v, want exact target %v", value, tt.target)
			}
			if velocity != 0 {
				t.Errorf("velocity = %v, want exactly 0", velocity)
			}
		})
	}
}

func TestSpringStepSemiImplicitEuler(t *testing.T) {
	// One step by hand: a = (-k*dx - c*v)/m, v' = v + a*dt, x' = x + v'*dt.
	cfg := SpringConfig{Stiffness: 100, Damping: 10, Mass: 2}
	dt := 0.01
	current, target, velocity := 1.0, 0.0, 3.0

	a := (-cfg.Stiffness*(current-target) - cfg.Damping*velocity) / cfg.Mass
	wantV := velocity + a*dt
	wantX := current + wantV*dt

	r := SpringStep(current, target, velocity, cfg, dt)
	if math.Abs(r.Value-wantX) > 1e-12 || math.Abs(r.Velocity-wantV) > 1e-12 {
		t.Errorf("got (%v, %v), want (%v, %v)", r.Value, r.Velocity, wantX, wantV)
	}
	if r.AtRest {
		t.Error("spring far from target reported at rest")
	}
}

func TestSpringStepZeroMassDefaultsToOne(t *testing.T) {
	got := SpringStep(1, 0, 0, SpringConfig{Stiffness: 100, Damping: 10}, 0.01)
	want := SpringStep(1, 0, 0, SpringConfig{Stiffness: 100, Damping: 10, Mass: 1}, 0.01)
	if got != want {
		t.Errorf("zero mass: got %+v, want %+v", got, want)
	}
}

func TestAnimatedValueRestIsExact(t *testing.T) {
	v := NewAnimatedValue(0, SpringSnappy)
	v.SetTarget(42)

	const dt = 1.0 / 60
	for i := 0; i < 10000 && !v.AtRest(); i++ {
		v.Step(dt)
	}
	if !v.AtRest() {
		t.Fatal("value never settled")
	}
	if v.Current != 42 {
		t.Errorf("Current = %v, want exactly 42", v.Current)
	}
	if v.Velocity != 0 {
		t.Errorf("Velocity = %v, want exactly 0", v.Velocity)
	}
}

func TestAnimatedValueSetSnapsInstantly(t *testing.T) {
	v := NewAnimatedValue(0, SpringDefault)
	v.SetTarget(10)
	v.Step(1.0 / 60)
	v.Set(5)
	if !v.AtRest() || v.Current != 5 || v.Target != 5 || v.Velocity != 0 {
		t.Errorf("Set did not snap: %+v", v)
	}
}

func TestAnimatedVec2StepsBothAxes(t *testing.T) {
	v := NewAnimatedVec2(Vec2{}, SpringSnappy)
	v.SetTarget(Vec2{X: 10, Y: -20})

	const dt = 1.0 / 60
	for i := 0; i < 10000 && !v.AtRest(); i++ {
		v.Step(dt)
	}
	if got := v.Current(); got != (Vec2{X: 10, Y: -20}) {
		t.Errorf("Current = %+v, want {10 -20}", got)
	}
}
