package mapcanvas

// Domain records are owned by the host editor page. The engine reads them
// for rendering and hit-testing and mutates them only through Commands;
// robot state is never mutated here at all.

// CustomNode is a navigation point on the map.
type CustomNode struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Name     string  `json:"name"`
	NodeType string  `json:"nodeType,omitempty"`
}

func (n *CustomNode) Pos() Vec2 {
	return Vec2{n.X, n.Y}
}

// CustomZone is a closed polygon region.
type CustomZone struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Vertices []Vec2  `json:"vertices"`
	ZoneType string  `json:"zoneType,omitempty"`
	Color    string  `json:"color,omitempty"`
	Opacity  float64 `json:"opacity,omitempty"`
}

// CustomLine is a path segment between two nodes. Lines store node ids,
// never node pointers, so commands stay trivially undoable.
type CustomLine struct {
	ID         string `json:"id"`
	FromNodeID string `json:"fromNodeId"`
	ToNodeID   string `json:"toNodeId"`
	LineType   string `json:"lineType,omitempty"`
	Directed   bool   `json:"directed,omitempty"`
}

// RobotStatus mirrors the states the real-time subsystem reports.
type RobotStatus string

const (
	RobotIdle     RobotStatus = "idle"
	RobotMoving   RobotStatus = "moving"
	RobotCharging RobotStatus = "charging"
	RobotError    RobotStatus = "error"
)

// AnimatedRobotState is a read-only snapshot of one robot, supplied by the
// real-time subsystem.
type AnimatedRobotState struct {
	ID          string      `json:"id"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Orientation float64     `json:"orientation"` // radians
	Battery     float64     `json:"battery"`     // 0..1
	Status      RobotStatus `json:"status"`
	Connected   bool        `json:"connected"`
}

func (r *AnimatedRobotState) Pos() Vec2 {
	return Vec2{r.X, r.Y}
}

// MapData is the mutable collection set the host supplies. Nodes, zones and
// lines live in flat id-keyed order-preserving slices; commands look
// elements up by id.
type MapData struct {
	Nodes  []*CustomNode
	Zones  []*CustomZone
	Lines  []*CustomLine
	Robots map[string]*AnimatedRobotState
}

func NewMapData() *MapData {
	return &MapData{Robots: make(map[string]*AnimatedRobotState)}
}

func (d *MapData) NodeByID(id string) *CustomNode {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func (d *MapData) ZoneByID(id string) *CustomZone {
	for _, z := range d.Zones {
		if z.ID == id {
			return z
		}
	}
	return nil
}

func (d *MapData) LineByID(id string) *CustomLine {
	for _, l := range d.Lines {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (d *MapData) RemoveNode(id string) *CustomNode {
	for i, n := range d.Nodes {
		if n.ID == id {
			d.Nodes = append(d.Nodes[:i], d.Nodes[i+1:]...)
			return n
		}
	}
	return nil
}

func (d *MapData) RemoveZone(id string) *CustomZone {
	for i, z := range d.Zones {
		if z.ID == id {
			d.Zones = append(d.Zones[:i], d.Zones[i+1:]...)
			return z
		}
	}
	return nil
}

func (d *MapData) RemoveLine(id string) *CustomLine {
	for i, l := range d.Lines {
		if l.ID == id {
			d.Lines = append(d.Lines[:i], d.Lines[i+1:]...)
			return l
		}
	}
	return nil
}

// Insert helpers restore a deleted element to its previous slice position,
// so delete followed by undo keeps draw and hit-test order intact.
// Out-of-range indexes clamp to the end.

func (d *MapData) insertNodeAt(i int, n *CustomNode) {
	if i < 0 || i > len(d.Nodes) {
		i = len(d.Nodes)
	}
	d.Nodes = append(d.Nodes, nil)
	copy(d.Nodes[i+1:], d.Nodes[i:])
	d.Nodes[i] = n
}

func (d *MapData) insertZoneAt(i int, z *CustomZone) {
	if i < 0 || i > len(d.Zones) {
		i = len(d.Zones)
	}
	d.Zones = append(d.Zones, nil)
	copy(d.Zones[i+1:], d.Zones[i:])
	d.Zones[i] = z
}

func (d *MapData) insertLineAt(i int, l *CustomLine) {
	if i < 0 || i > len(d.Lines) {
		i = len(d.Lines)
	}
	d.Lines = append(d.Lines, nil)
	copy(d.Lines[i+1:], d.Lines[i:])
	d.Lines[i] = l
}

func (d *MapData) nodeIndex(id string) int {
	for i, n := range d.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (d *MapData) zoneIndex(id string) int {
	for i, z := range d.Zones {
		if z.ID == id {
			return i
		}
	}
	return -1
}

func (d *MapData) lineIndex(id string) int {
	for i, l := range d.Lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// LinesTouchingNode returns the lines referencing a node id from either end.
func (d *MapData) LinesTouchingNode(id string) []*CustomLine {
	var out []*CustomLine
	for _, l := range d.Lines {
		if l.FromNodeID == id || l.ToNodeID == id {
			out = append(out, l)
		}
	}
	return out
}
