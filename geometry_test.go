package mapcanvas

import (
	"math"
	"testing"
)

func TestPointInPolygon(t *testing.T) {
	square := []Vec2{{0, 0}, {10, 0}, {10, 10}, {0, 10}}

	tests := []struct {
		name string
		p    Vec2
		poly []Vec2
		want bool
	}{
		{"inside square", Vec2{5, 5}, square, true},
		{"outside square right", Vec2{15, 5}, square, false},
		{"outside square above", Vec2{5, -5}, square, false},
		{"degenerate two points", Vec2{5, 5}, []Vec2{{0, 0}, {10, 10}}, false},
		{"degenerate single point", Vec2{0, 0}, []Vec2{{0, 0}}, false},
		{"empty polygon", Vec2{0, 0}, nil, false},
		{"concave notch outside", Vec2{5, 4}, []Vec2{{0, 0}, {10, 0}, {10, 10}, {5, 3}, {0, 10}}, false},
		{"concave arm inside", Vec2{1, 5}, []Vec2{{0, 0}, {10, 0}, {10, 10}, {5, 3}, {0, 10}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pointInPolygon(tt.p, tt.poly); got != tt.want {
				t.Errorf("pointInPolygon(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPointToSegmentDistance(t *testing.T) {
	tests := []struct {
		name    string
		p, a, b Vec2
		want    float64
	}{
		{"perpendicular foot on segment", Vec2{5, 3}, Vec2{0, 0}, Vec2{10, 0}, 3},
		{"beyond start clamps to endpoint", Vec2{-4, 3}, Vec2{0, 0}, Vec2{10, 0}, 5},
		{"beyond end clamps to endpoint", Vec2{13, 4}, Vec2{0, 0}, Vec2{10, 0}, 5},
		{"zero-length segment", Vec2{3, 4}, Vec2{0, 0}, Vec2{0, 0}, 5},
		{"point on segment", Vec2{5, 0}, Vec2{0, 0}, Vec2{10, 0}, 0},
		{"diagonal segment", Vec2{0, 10}, Vec2{0, 0}, Vec2{10, 10}, math.Sqrt(50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pointToSegmentDistance(tt.p, tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("distance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	min, max, ok := Bounds([]Vec2{{3, -1}, {-2, 8}, {5, 5}})
	if !ok {
		t.Fatal("Bounds reported empty for non-empty input")
	}
	if min != (Vec2{-2, -1}) || max != (Vec2{5, 8}) {
		t.Errorf("bounds = %v..%v, want {-2 -1}..{5 8}", min, max)
	}

	if _, _, ok := Bounds(nil); ok {
		t.Error("Bounds(nil) reported ok")
	}
}
