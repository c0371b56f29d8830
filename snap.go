package mapcanvas

import "math"

// SnapGuide is a visual alignment line shown during a node drag.
type SnapGuide struct {
	Vertical bool    // true: guide at X=Coord, false: guide at Y=Coord
	Coord    float64 // world coordinate the dragged node aligns with
	OtherID  string  // the node supplying the coordinate
}

// SnapResult carries the adjusted drag position and any active guides.
type SnapResult struct {
	Pos    Vec2
	Guides []SnapGuide
}

// SnapService computes alignment snapping for a node being dragged against
// the other nodes on the map.
type SnapService struct {
	threshold       float64
	diagonalMinDist float64
}

func NewSnapService() *SnapService {
	return &SnapService{threshold: snapThreshold, diagonalMinDist: diagonalSnapMinDist}
}

// SetThreshold overrides the per-axis snap distance, in world units.
func (s *SnapService) SetThreshold(t float64) {
	if t > 0 {
		s.threshold = t
	}
}

// Snap adjusts pos to align with other nodes. Each axis snaps independently
// to the nearest node coordinate within the threshold. A 45-degree diagonal
// snap relative to dragStart applies only when neither axis snapped and the
// drag offset is large enough on both axes.
func (s *SnapService) Snap(pos Vec2, dragStart Vec2, movingID string, nodes []*CustomNode) SnapResult {
	res := SnapResult{Pos: pos}

	bestX := s.threshold
	bestY := s.threshold
	var guideX, guideY *SnapGuide
	for _, n := range nodes {
		if n.ID == movingID {
			continue
		}
		if d := math.Abs(n.X - pos.X); d < bestX {
			bestX = d
			guideX = &SnapGuide{Vertical: true, Coord: n.X, OtherID: n.ID}
		}
		if d := math.Abs(n.Y - pos.Y); d < bestY {
			bestY = d
			guideY = &SnapGuide{Vertical: false, Coord: n.Y, OtherID: n.ID}
		}
	}

	if guideX != nil {
		res.Pos.X = guideX.Coord
		res.Guides = append(res.Guides, *guideX)
	}
	if guideY != nil {
		res.Pos.Y = guideY.Coord
		res.Guides = append(res.Guides, *guideY)
	}
	if guideX != nil || guideY != nil {
		return res
	}

	// Diagonal: snap the offset from the drag origin onto the exact 45°
	// line, keeping the drag direction.
	dx := pos.X - dragStart.X
	dy := pos.Y - dragStart.Y
	if math.Abs(dx) < s.diagonalMinDist || math.Abs(dy) < s.diagonalMinDist {
		return res
	}
	if math.Abs(math.Abs(dx)-math.Abs(dy)) > s.threshold {
		return res
	}
	d := math.Max(math.Abs(dx), math.Abs(dy))
	res.Pos.X = dragStart.X + math.Copysign(d, dx)
	res.Pos.Y = dragStart.Y + math.Copysign(d, dy)
	return res
}
