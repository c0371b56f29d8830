package mapcanvas

import (
	"image/color"
	"math"
	"strconv"
	"strings"
)

// MapRenderer is the built-in render callback set for map data: zones under
// lines under nodes under robots, plus selection rings and snap guides.
// Hosts register mr.Render with the engine, or draw themselves.
type MapRenderer struct {
	Data       *MapData
	Animations *AnimationEngine
	Selection  *SelectionManager

	// Guides holds the alignment guides of the drag in progress; the host
	// updates this slice from its snap results and clears it on drag end.
	Guides []SnapGuide
}

func NewMapRenderer(data *MapData, anims *AnimationEngine, sel *SelectionManager) *MapRenderer {
	return &MapRenderer{Data: data, Animations: anims, Selection: sel}
}

// Render draws the whole map in z-order. Runs inside the viewport transform.
func (r *MapRenderer) Render(rc *RenderContext) {
	if r.Data == nil {
		return
	}
	r.drawZones(rc)
	r.drawLines(rc)
	r.drawGuides(rc)
	r.drawNodes(rc)
	r.drawRobots(rc)
}

func (r *MapRenderer) drawZones(rc *RenderContext) {
	for _, z := range r.Data.Zones {
		if len(z.Vertices) < 3 {
			continue
		}
		base := parseHexColor(z.Color, color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff})
		opacity := z.Opacity
		if opacity <= 0 || opacity > 1 {
			opacity = 0.25
		}
		opacity *= r.elementOpacity(z.ID)

		rc.Surface.SetColor(withAlpha(base, opacity))
		rc.Surface.FillPolygon(z.Vertices)
		rc.Surface.SetColor(withAlpha(base, math.Min(1, opacity*3)))
		rc.Surface.SetLineWidth(1.5 / rc.Viewport.Scale)
		rc.Surface.StrokePolygon(z.Vertices)

		if r.Selection != nil && r.Selection.IsSelected(HitZone, z.ID) {
			rc.Surface.SetColor(color.RGBA{R: 0xfb, G: 0xbf, B: 0x24, A: 0xff})
			for _, v := range z.Vertices {
				rc.Surface.FillCircle(v.X, v.Y, vertexHitRadius/2)
			}
		}
	}
}

func (r *MapRenderer) drawLines(rc *RenderContext) {
	for _, l := range r.Data.Lines {
		from := r.Data.NodeByID(l.FromNodeID)
		to := r.Data.NodeByID(l.ToNodeID)
		if from == nil || to == nil {
			continue
		}
		selected := r.Selection != nil && r.Selection.IsSelected(HitLine, l.ID)
		if selected {
			rc.Surface.SetColor(color.RGBA{R: 0xfb, G: 0xbf, B: 0x24, A: 0xff})
			rc.Surface.SetLineWidth(3 / rc.Viewport.Scale)
		} else {
			rc.Surface.SetColor(withAlpha(color.RGBA{R: 0x94, G: 0xa3, B: 0xb8, A: 0xff}, r.elementOpacity(l.ID)))
			rc.Surface.SetLineWidth(2 / rc.Viewport.Scale)
		}
		rc.Surface.Line(from.X, from.Y, to.X, to.Y)

		if l.Directed {
			r.drawArrowHead(rc, from.Pos(), to.Pos())
		}
	}
}

func (r *MapRenderer) drawArrowHead(rc *RenderContext, from, to Vec2) {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	size := 8 / rc.Viewport.Scale
	tip := to.Sub(Vec2{math.Cos(angle), math.Sin(angle)}.Scale(nodeHitRadius))
	left := tip.Sub(Vec2{math.Cos(angle - 0.5), math.Sin(angle - 0.5)}.Scale(size))
	right := tip.Sub(Vec2{math.Cos(angle + 0.5), math.Sin(angle + 0.5)}.Scale(size))
	rc.Surface.FillPolygon([]Vec2{tip, left, right})
}

func (r *MapRenderer) drawNodes(rc *RenderContext) {
	for _, n := range r.Data.Nodes {
		scale, opacity, glow, offset := r.elementAnimation(n.ID)
		x := n.X + offset.X
		y := n.Y + offset.Y
		radius := 10 * scale

		if glow > 0.01 {
			rc.Surface.SetColor(withAlpha(color.RGBA{R: 0x60, G: 0xa5, B: 0xfa, A: 0xff}, 0.3*glow*opacity))
			rc.Surface.FillCircle(x, y, radius+6*glow)
		}

		base := color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
		if n.NodeType == "charging" {
			base = color.RGBA{R: 0x22, G: 0xc5, B: 0x5e, A: 0xff}
		}
		rc.Surface.SetColor(withAlpha(base, opacity))
		rc.Surface.FillCircle(x, y, radius)

		if r.Selection != nil && r.Selection.IsSelected(HitNode, n.ID) {
			rc.Surface.SetColor(color.RGBA{R: 0xfb, G: 0xbf, B: 0x24, A: 0xff})
			rc.Surface.SetLineWidth(2 / rc.Viewport.Scale)
			rc.Surface.StrokeCircle(x, y, radius+3)
		}

		if n.Name != "" && rc.Viewport.Scale > 0.5 {
			rc.Surface.SetColor(withAlpha(color.RGBA{R: 0xe2, G: 0xe8, B: 0xf0, A: 0xff}, opacity))
			rc.Surface.Text(n.Name, x, y-radius-10)
		}
	}
}

func (r *MapRenderer) drawRobots(rc *RenderContext) {
	for _, robot := range r.Data.Robots {
		scale, opacity, glow, _ := r.elementAnimation(robot.ID)
		radius := 12 * scale

		body := robotStatusColor(robot)
		if glow > 0.01 {
			rc.Surface.SetColor(withAlpha(body, 0.35*glow*opacity))
			rc.Surface.FillCircle(robot.X, robot.Y, radius+7*glow)
		}
		rc.Surface.SetColor(withAlpha(body, opacity))
		rc.Surface.FillCircle(robot.X, robot.Y, radius)

		// Heading tick.
		hx := robot.X + math.Cos(robot.Orientation)*radius
		hy := robot.Y + math.Sin(robot.Orientation)*radius
		rc.Surface.SetColor(withAlpha(color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, opacity))
		rc.Surface.SetLineWidth(2 / rc.Viewport.Scale)
		rc.Surface.Line(robot.X, robot.Y, hx, hy)

		if r.Selection != nil && r.Selection.IsSelected(HitRobot, robot.ID) {
			rc.Surface.SetColor(color.RGBA{R: 0xfb, G: 0xbf, B: 0x24, A: 0xff})
			rc.Surface.StrokeCircle(robot.X, robot.Y, radius+3)
		}
	}
}

func (r *MapRenderer) drawGuides(rc *RenderContext) {
	if len(r.Guides) == 0 {
		return
	}
	rc.Surface.SetColor(color.RGBA{R: 0xf4, G: 0x72, B: 0xb6, A: 0xcc})
	rc.Surface.SetLineWidth(1 / rc.Viewport.Scale)
	// Extend guides across the visible world rect.
	tl := rc.Viewport.ScreenToWorld(0, 0)
	br := rc.Viewport.ScreenToWorld(rc.Width, rc.Height)
	for _, g := range r.Guides {
		if g.Vertical {
			rc.Surface.Line(g.Coord, tl.Y, g.Coord, br.Y)
		} else {
			rc.Surface.Line(tl.X, g.Coord, br.X, g.Coord)
		}
	}
}

func (r *MapRenderer) elementOpacity(id string) float64 {
	if r.Animations == nil {
		return 1
	}
	if s := r.Animations.Peek(id); s != nil {
		return clamp01(s.Opacity.Current)
	}
	return 1
}

func (r *MapRenderer) elementAnimation(id string) (scale, opacity, glow float64, offset Vec2) {
	scale, opacity = 1, 1
	if r.Animations == nil {
		return
	}
	s := r.Animations.Peek(id)
	if s == nil {
		return
	}
	return math.Max(0, s.Scale.Current), clamp01(s.Opacity.Current),
		math.Max(0, s.Glow.Current), s.PositionOffset.Current()
}

func robotStatusColor(r *AnimatedRobotState) color.RGBA {
	if !r.Connected {
		return color.RGBA{R: 0x64, G: 0x74, B: 0x8b, A: 0xff}
	}
	switch r.Status {
	case RobotMoving:
		return color.RGBA{R: 0x22, G: 0xc5, B: 0x5e, A: 0xff}
	case RobotCharging:
		return color.RGBA{R: 0xfb, G: 0xbf, B: 0x24, A: 0xff}
	case RobotError:
		return color.RGBA{R: 0xef, G: 0x44, B: 0x44, A: 0xff}
	default:
		return color.RGBA{R: 0x60, G: 0xa5, B: 0xfa, A: 0xff}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func withAlpha(c color.RGBA, a float64) color.Color {
	a = clamp01(a)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A) * a)}
}

// parseHexColor reads "#rgb" or "#rrggbb", falling back on bad input.
func parseHexColor(s string, fallback color.RGBA) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
