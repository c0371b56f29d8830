package mapcanvas

// HitType identifies what kind of element a hit test found.
type HitType string

const (
	HitNode       HitType = "node"
	HitZone       HitType = "zone"
	HitLine       HitType = "line"
	HitRobot      HitType = "robot"
	HitZoneVertex HitType = "zone-vertex"
	HitNodeEdge   HitType = "node-edge"
)

// HitTestResult names the topmost element covering a point. It never owns
// the element: ID is the lookup key, Element a convenience back-reference
// into the data snapshot.
type HitTestResult struct {
	Type        HitType
	ID          string
	Element     any
	VertexIndex int // zone-vertex hits only, -1 otherwise
	WorldPoint  Vec2
}

// HitTester answers geometric queries against a data snapshot. It is
// stateless apart from the snapshot installed by SetData.
type HitTester struct {
	data *MapData
}

func NewHitTester() *HitTester {
	return &HitTester{}
}

// SetData installs the snapshot queried by subsequent hit tests.
func (h *HitTester) SetData(data *MapData) {
	h.data = data
}

// HitTest returns the topmost element at the given world point, or nil.
// The z-order is fixed: robots, then nodes, then lines, then zone vertices,
// then zone fills. Small interactive targets win over large fill regions.
func (h *HitTester) HitTest(x, y float64) *HitTestResult {
	if h.data == nil {
		return nil
	}
	p := Vec2{x, y}

	if r := h.hitRobot(p); r != nil {
		return r
	}
	if r := h.hitNode(p); r != nil {
		return r
	}
	if r := h.hitLine(p); r != nil {
		return r
	}
	if r := h.hitZoneVertex(p); r != nil {
		return r
	}
	return h.hitZone(p)
}

func (h *HitTester) hitRobot(p Vec2) *HitTestResult {
	// Map iteration order is arbitrary; pick the closest robot in range so
	// overlapping robots resolve deterministically.
	var best *AnimatedRobotState
	bestDist := robotHitRadius
	for _, r := range h.data.Robots {
		if d := p.Dist(r.Pos()); d <= bestDist {
			best = r
			bestDist = d
		}
	}
	if best == nil {
		return nil
	}
	return &HitTestResult{Type: HitRobot, ID: best.ID, Element: best, VertexIndex: -1, WorldPoint: p}
}

func (h *HitTester) hitNode(p Vec2) *HitTestResult {
	// Later nodes draw on top, so scan back to front.
	for i := len(h.data.Nodes) - 1; i >= 0; i-- {
		n := h.data.Nodes[i]
		if p.Dist(n.Pos()) <= nodeHitRadius {
			return &HitTestResult{Type: HitNode, ID: n.ID, Element: n, VertexIndex: -1, WorldPoint: p}
		}
	}
	return nil
}

func (h *HitTester) hitLine(p Vec2) *HitTestResult {
	for i := len(h.data.Lines) - 1; i >= 0; i-- {
		l := h.data.Lines[i]
		from := h.data.NodeByID(l.FromNodeID)
		to := h.data.NodeByID(l.ToNodeID)
		if from == nil || to == nil {
			continue // dangling reference, not hittable
		}
		if pointToSegmentDistance(p, from.Pos(), to.Pos()) <= lineHitTolerance {
			return &HitTestResult{Type: HitLine, ID: l.ID, Element: l, VertexIndex: -1, WorldPoint: p}
		}
	}
	return nil
}

func (h *HitTester) hitZoneVertex(p Vec2) *HitTestResult {
	for i := len(h.data.Zones) - 1; i >= 0; i-- {
		z := h.data.Zones[i]
		for vi, v := range z.Vertices {
			if p.Dist(v) <= vertexHitRadius {
				return &HitTestResult{Type: HitZoneVertex, ID: z.ID, Element: z, VertexIndex: vi, WorldPoint: p}
			}
		}
	}
	return nil
}

func (h *HitTester) hitZone(p Vec2) *HitTestResult {
	for i := len(h.data.Zones) - 1; i >= 0; i-- {
		z := h.data.Zones[i]
		if pointInPolygon(p, z.Vertices) {
			return &HitTestResult{Type: HitZone, ID: z.ID, Element: z, VertexIndex: -1, WorldPoint: p}
		}
	}
	return nil
}

// SameTarget reports whether two results refer to the same element, by type
// and id. Either side may be nil.
func SameTarget(a, b *HitTestResult) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Type == b.Type && a.ID == b.ID
}
