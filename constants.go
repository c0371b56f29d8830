package mapcanvas

import "time"

// Interaction thresholds. Product-tuned in the host editor; keep them in one
// place and overridable through Config rather than scattering literals.
const (
	// dragThresholdPx is the screen-space movement required before a
	// pointer-down turns into a drag instead of a click.
	dragThresholdPx = 5.0

	// doubleClickDelay / doubleClickDistPx bound the window in which a
	// second release upgrades a click to a double-click.
	doubleClickDelay  = 300 * time.Millisecond
	doubleClickDistPx = 5.0

	// momentumStaleAfter is how long a pan may idle before its sampled
	// velocity no longer seeds momentum on release.
	momentumStaleAfter = 100 * time.Millisecond
)

// Touch gesture thresholds.
const (
	longPressDuration = 500 * time.Millisecond
	tapTolerancePx    = 10.0
	doubleTapDelay    = 300 * time.Millisecond
	doubleTapDistPx   = 30.0
	pinchThresholdPx  = 10.0
	twoFingerPanPx    = 5.0
)

// Viewport defaults.
const (
	defaultMinScale    = 0.1
	defaultMaxScale    = 10.0
	momentumFriction   = 0.92
	momentumMinSpeed   = 1.0 // px/s, below this momentum stops
	fitToBoundsPadding = 50.0
)

// Command history.
const (
	maxUndoDepth = 100
	mergeWindow  = 1000 * time.Millisecond
)

// Snap distances, in world units.
const (
	snapThreshold       = 10.0
	diagonalSnapMinDist = 20.0
)

// Hit-test tolerances, in world units.
const (
	lineHitTolerance = 5.0
	vertexHitRadius  = 8.0
	nodeHitRadius    = 15.0
	robotHitRadius   = 18.0
)

// fpsWindow is how many recent frame durations feed the rolling FPS estimate.
const fpsWindow = 30
