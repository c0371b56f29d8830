package mapcanvas

import (
	"image/color"
	"time"
)

// Clock supplies the engine's notion of time, pluggable for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// FrameScheduler drives the engine, one tick per display refresh.
type FrameScheduler interface {
	Start(tick func(now time.Time))
	Stop()
}

// TickerScheduler ticks at a fixed rate on a background ticker, for hosts
// that do not own an event loop of their own.
type TickerScheduler struct {
	Interval time.Duration
	Clock    Clock

	done chan struct{}
}

func (s *TickerScheduler) Start(tick func(now time.Time)) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second / 60
	}
	clock := s.Clock
	if clock == nil {
		clock = systemClock{}
	}
	s.done = make(chan struct{})
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-t.C:
				tick(clock.Now())
			}
		}
	}()
}

func (s *TickerScheduler) Stop() {
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}

// ManualScheduler never ticks on its own; the owner calls the tick function
// directly (a host event loop, or a test stepping fixed dt).
type ManualScheduler struct {
	tick func(now time.Time)
}

func (s *ManualScheduler) Start(tick func(now time.Time)) { s.tick = tick }
func (s *ManualScheduler) Stop()                          { s.tick = nil }

// Tick advances one frame at the given instant. No-op while stopped.
func (s *ManualScheduler) Tick(now time.Time) {
	if s.tick != nil {
		s.tick(now)
	}
}

// RenderContext is handed to every render callback once per frame.
type RenderContext struct {
	Surface   Surface
	Viewport  *Viewport
	Width     float64
	Height    float64
	Timestamp time.Time
	DT        float64
}

// RenderCallback draws one layer of the frame in world coordinates; the
// viewport transform is already applied when it runs.
type RenderCallback func(*RenderContext)

type renderEntry struct {
	id uint64
	fn RenderCallback
}

// Engine owns the frame loop: per tick it integrates animations, advances
// viewport momentum and zoom, fires due long-presses, then clears and
// redraws through the registered render callbacks.
type Engine struct {
	surface    Surface
	viewport   *Viewport
	animations *AnimationEngine
	gestures   *GestureRecognizer
	scheduler  FrameScheduler

	callbacks  []renderEntry
	nextCBID   uint64
	background color.Color

	running   bool
	lastFrame time.Time

	frameDurs [fpsWindow]float64
	frameIdx  int
	frameN    int
}

// NewEngine wires the engine around a surface. The viewport, animation
// engine and gesture recognizer are created here and shared with the
// interaction services the host builds.
func NewEngine(surface Surface, scheduler FrameScheduler) *Engine {
	vp := NewViewport()
	return &Engine{
		surface:    surface,
		viewport:   vp,
		animations: NewAnimationEngine(),
		gestures:   NewGestureRecognizer(vp),
		scheduler:  scheduler,
		background: color.RGBA{R: 0x1e, G: 0x1e, B: 0x28, A: 0xff},
	}
}

func (e *Engine) Viewport() *Viewport          { return e.viewport }
func (e *Engine) Animations() *AnimationEngine { return e.animations }
func (e *Engine) Gestures() *GestureRecognizer { return e.gestures }
func (e *Engine) Surface() Surface             { return e.surface }

// SetBackground sets the frame clear color.
func (e *Engine) SetBackground(c color.Color) {
	e.background = c
}

// AddRenderCallback registers a draw function invoked once per frame, in
// registration order. The returned func unregisters it.
func (e *Engine) AddRenderCallback(fn RenderCallback) (remove func()) {
	e.nextCBID++
	id := e.nextCBID
	e.callbacks = append(e.callbacks, renderEntry{id: id, fn: fn})
	return func() {
		for i := range e.callbacks {
			if e.callbacks[i].id == id {
				e.callbacks = append(e.callbacks[:i], e.callbacks[i+1:]...)
				return
			}
		}
	}
}

// Resize propagates a host resize, in logical pixels plus DPR.
func (e *Engine) Resize(w, h, dpr float64) {
	e.surface.Resize(w, h, dpr)
}

// ScreenToWorld delegates to the current viewport state.
func (e *Engine) ScreenToWorld(sx, sy float64) Vec2 {
	return e.viewport.ScreenToWorld(sx, sy)
}

// WorldToScreen delegates to the current viewport state.
func (e *Engine) WorldToScreen(wx, wy float64) Vec2 {
	return e.viewport.WorldToScreen(wx, wy)
}

// Start begins scheduling frames. Idempotent.
func (e *Engine) Start() {
	if e.running || e.scheduler == nil {
		return
	}
	e.running = true
	e.lastFrame = time.Time{}
	logger().Debug("engine started")
	e.scheduler.Start(e.Step)
}

// Stop cancels the scheduled frames and clears all tracked animation state.
func (e *Engine) Stop() {
	if !e.running {
		return
	}
	e.running = false
	if e.scheduler != nil {
		e.scheduler.Stop()
	}
	e.animations.Reset()
	e.gestures.Reset()
	logger().Debug("engine stopped")
}

// Running reports whether the frame loop is active.
func (e *Engine) Running() bool { return e.running }

// Step runs one frame at the given instant. Render callbacks observe the
// animation state as of this frame's update; a panicking callback is
// recovered and logged and the frame continues.
func (e *Engine) Step(now time.Time) {
	dt := 0.0
	if !e.lastFrame.IsZero() {
		dt = now.Sub(e.lastFrame).Seconds()
	}
	// A stalled host (debugger, background tab) would otherwise produce a
	// giant integration step.
	if dt > 0.1 {
		dt = 0.1
	}
	e.lastFrame = now

	e.animations.Update(dt)
	e.viewport.Update(dt)
	e.gestures.Tick(now)

	w, h := e.surface.LogicalSize()
	e.surface.Clear(e.background)

	rc := &RenderContext{
		Surface:   e.surface,
		Viewport:  e.viewport,
		Width:     w,
		Height:    h,
		Timestamp: now,
		DT:        dt,
	}

	e.surface.Save()
	e.surface.Translate(e.viewport.OffsetX, e.viewport.OffsetY)
	e.surface.ScaleBy(e.viewport.Scale)
	for _, entry := range e.callbacks {
		e.runCallback(entry, rc)
	}
	e.surface.Restore()

	if dt > 0 {
		e.frameDurs[e.frameIdx] = dt
		e.frameIdx = (e.frameIdx + 1) % fpsWindow
		if e.frameN < fpsWindow {
			e.frameN++
		}
	}
}

func (e *Engine) runCallback(entry renderEntry, rc *RenderContext) {
	defer func() {
		if r := recover(); r != nil {
			logger().Error("render callback panicked", "id", entry.id, "panic", r)
		}
	}()
	entry.fn(rc)
}

// FPS returns the rolling frames-per-second estimate over recent frames.
func (e *Engine) FPS() float64 {
	if e.frameN == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < e.frameN; i++ {
		sum += e.frameDurs[i]
	}
	if sum == 0 {
		return 0
	}
	return float64(e.frameN) / sum
}
