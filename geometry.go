package mapcanvas

import "math"

// Vec2 is an immutable 2D value, world or screen space depending on context.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec2) DistanceTo(o Vec2) Vec2 {
	return o.Sub(v)
}

func (v Vec2) Dist(o Vec2) float64 {
	return math.Hypot(o.X-v.X, o.Y-v.Y)
}

// pointToSegmentDistance returns the distance from p to the segment a-b.
// The projection parameter is clamped to [0,1], so points beyond either
// end measure against the nearest endpoint. A zero-length segment
// degenerates to point-to-point distance.
func pointToSegmentDistance(p, a, b Vec2) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Dist(Vec2{a.X + t*dx, a.Y + t*dy})
}

// pointInPolygon runs the standard ray-casting parity test.
// Polygons with fewer than 3 vertices never contain anything.
func pointInPolygon(p Vec2, poly []Vec2) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y
		if (yi > p.Y) != (yj > p.Y) &&
			p.X < (xj-xi)*(p.Y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Bounds returns the axis-aligned bounding box of a point set, e.g. to feed
// Viewport.FitToBounds. ok is false for an empty set.
func Bounds(points []Vec2) (min, max Vec2, ok bool) {
	if len(points) == 0 {
		return Vec2{}, Vec2{}, false
	}
	min, max = points[0], points[0]
	for _, p := range points[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max, true
}
