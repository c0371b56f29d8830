package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"mapcanvas"
)

// Terminal cells are not square; map one cell to a logical pixel box so the
// world stays proportioned in both the terminal view and the PNG export.
const (
	cellW = 10.0
	cellH = 20.0
)

func main() {
	p := tea.NewProgram(
		initialModel(),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

type frameMsg time.Time

type model struct {
	width  int
	height int

	config  *mapcanvas.Config
	data    *mapcanvas.MapData
	surface *mapcanvas.RasterSurface
	sched   *mapcanvas.ManualScheduler
	engine  *mapcanvas.Engine

	hit         *mapcanvas.HitTester
	interaction *mapcanvas.InteractionService
	selection   *mapcanvas.SelectionManager
	commands    *mapcanvas.CommandManager
	snap        *mapcanvas.SnapService
	renderer    *mapcanvas.MapRenderer

	// Live node/vertex drag bookkeeping: position updates apply directly
	// for preview, one merged command lands on drag end.
	dragNodeID  string
	dragZoneID  string
	dragVertex  int
	dragOrigPos mapcanvas.Vec2
	dragMoved   bool

	hoverID   string
	spaceHeld bool
	nextID    int

	// Status flash easing, stepped once per frame.
	flashSpring harmonica.Spring
	flashLevel  float64
	flashVel    float64
	statusMsg   string
}

func initialModel() model {
	config := mapcanvas.LoadConfig()

	data := sampleMap()
	surface := mapcanvas.NewRasterSurface(800, 600, 1)
	sched := &mapcanvas.ManualScheduler{}
	engine := mapcanvas.NewEngine(surface, sched)

	hit := mapcanvas.NewHitTester()
	hit.SetData(data)

	snap := mapcanvas.NewSnapService()
	config.Apply(engine.Viewport(), snap)

	m := model{
		config:      config,
		data:        data,
		surface:     surface,
		sched:       sched,
		engine:      engine,
		hit:         hit,
		interaction: mapcanvas.NewInteractionService(engine.Viewport(), hit),
		selection:   mapcanvas.NewSelectionManager(),
		commands:    mapcanvas.NewCommandManager(),
		snap:        snap,
		dragVertex:  -1,
		nextID:      100,
		flashSpring: harmonica.NewSpring(harmonica.FPS(config.FPS), 4.0, 0.8),
	}
	m.renderer = mapcanvas.NewMapRenderer(data, engine.Animations(), m.selection)
	engine.AddRenderCallback(m.renderer.Render)
	engine.Start()
	return m
}

func sampleMap() *mapcanvas.MapData {
	data := mapcanvas.NewMapData()
	data.Nodes = []*mapcanvas.CustomNode{
		{ID: "n1", X: 100, Y: 100, Name: "Inbound"},
		{ID: "n2", X: 300, Y: 100, Name: "Aisle A"},
		{ID: "n3", X: 300, Y: 260, Name: "Aisle B"},
		{ID: "n4", X: 520, Y: 180, Name: "Outbound"},
		{ID: "n5", X: 100, Y: 260, Name: "Charger", NodeType: "charging"},
	}
	data.Lines = []*mapcanvas.CustomLine{
		{ID: "l1", FromNodeID: "n1", ToNodeID: "n2", Directed: true},
		{ID: "l2", FromNodeID: "n2", ToNodeID: "n3"},
		{ID: "l3", FromNodeID: "n2", ToNodeID: "n4", Directed: true},
		{ID: "l4", FromNodeID: "n3", ToNodeID: "n4", Directed: true},
		{ID: "l5", FromNodeID: "n1", ToNodeID: "n5"},
	}
	data.Zones = []*mapcanvas.CustomZone{
		{
			ID: "z1", Name: "Storage", Color: "#3b82f6", Opacity: 0.2,
			Vertices: []mapcanvas.Vec2{{X: 240, Y: 60}, {X: 380, Y: 60}, {X: 380, Y: 300}, {X: 240, Y: 300}},
		},
		{
			ID: "z2", Name: "No-Go", ZoneType: "restricted", Color: "#ef4444", Opacity: 0.25,
			Vertices: []mapcanvas.Vec2{{X: 60, Y: 210}, {X: 160, Y: 210}, {X: 160, Y: 310}, {X: 60, Y: 310}},
		},
	}
	data.Robots["amr-7"] = &mapcanvas.AnimatedRobotState{
		ID: "amr-7", X: 200, Y: 100, Battery: 0.83,
		Status: mapcanvas.RobotMoving, Connected: true,
	}
	data.Robots["amr-9"] = &mapcanvas.AnimatedRobotState{
		ID: "amr-9", X: 100, Y: 250, Orientation: math.Pi / 2, Battery: 0.35,
		Status: mapcanvas.RobotCharging, Connected: true,
	}
	return data
}

func (m model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m model) tickCmd() tea.Cmd {
	fps := m.config.FPS
	if fps <= 0 {
		fps = 60
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *model) flash(msg string) {
	m.statusMsg = msg
	m.flashLevel = 1
	m.flashVel = 0
}

func (m *model) newID(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

// installCallbacks binds the interaction and selection outputs to editor
// behavior. Rebuilt on every Update because bubbletea copies the model.
func (m *model) installCallbacks() {
	m.interaction.SetCallbacks(mapcanvas.InteractionCallbacks{
		OnClick:       m.onClick,
		OnDoubleClick: m.onDoubleClick,
		OnRightClick:  m.onRightClick,
		OnDragStart:   m.onDragStart,
		OnDrag:        m.onDrag,
		OnDragEnd:     m.onDragEnd,
		OnDragCancel:  m.onDragCancel,
		OnHoverChange: m.onHoverChange,
	})
}

func (m *model) onClick(hit *mapcanvas.HitTestResult, world mapcanvas.Vec2) {
	m.selection.CloseContextMenu()
	if hit == nil {
		m.clearSelectionAnimations()
		m.selection.Clear()
		return
	}
	m.clearSelectionAnimations()
	m.selection.Select(hit.Type, hit.ID)
	m.engine.Animations().SetSelected(hit.ID, true)
}

func (m *model) onDoubleClick(hit *mapcanvas.HitTestResult, world mapcanvas.Vec2) {
	if hit != nil {
		m.engine.Animations().FlashElement(hit.ID)
		return
	}
	// Double-click on empty canvas drops a new node there.
	id := m.newID("n")
	node := &mapcanvas.CustomNode{ID: id, X: world.X, Y: world.Y, Name: "Node"}
	m.commands.Execute(mapcanvas.NewAddNodeCommand(m.data, node, time.Now()))
	m.engine.Animations().AnimateAppear(id, nil)
	m.flash("added " + id)
}

func (m *model) onRightClick(hit *mapcanvas.HitTestResult, screen, world mapcanvas.Vec2) {
	m.selection.OpenContextMenu(screen, hit)
}

func (m *model) onDragStart(drag mapcanvas.DragState) {
	m.dragNodeID = ""
	m.dragZoneID = ""
	m.dragVertex = -1
	m.dragMoved = false
	if drag.Target == nil {
		return
	}
	switch el := drag.Target.Element.(type) {
	case *mapcanvas.CustomNode:
		m.dragNodeID = el.ID
		m.dragOrigPos = el.Pos()
	case *mapcanvas.CustomZone:
		if drag.Target.Type == mapcanvas.HitZoneVertex {
			m.dragZoneID = el.ID
			m.dragVertex = drag.Target.VertexIndex
			m.dragOrigPos = el.Vertices[drag.Target.VertexIndex]
		}
	}
}

func (m *model) onDrag(drag mapcanvas.DragState) {
	desired := drag.CurrentWorld.Sub(drag.Offset)

	if m.dragNodeID != "" {
		node := m.data.NodeByID(m.dragNodeID)
		if node == nil {
			return
		}
		res := m.snap.Snap(desired, m.dragOrigPos, node.ID, m.data.Nodes)
		node.X, node.Y = res.Pos.X, res.Pos.Y
		m.renderer.Guides = res.Guides
		m.dragMoved = true
		return
	}

	if m.dragZoneID != "" {
		zone := m.data.ZoneByID(m.dragZoneID)
		if zone == nil || m.dragVertex < 0 || m.dragVertex >= len(zone.Vertices) {
			return
		}
		zone.Vertices[m.dragVertex] = desired
		m.dragMoved = true
	}
}

func (m *model) onDragEnd(drag mapcanvas.DragState) {
	defer m.resetDrag()
	if !m.dragMoved {
		return
	}
	now := time.Now()
	if m.dragNodeID != "" {
		if node := m.data.NodeByID(m.dragNodeID); node != nil {
			m.commands.Execute(mapcanvas.NewMoveNodeCommand(
				m.data, node.ID, m.dragOrigPos, node.Pos(), now))
		}
	}
	if m.dragZoneID != "" {
		if zone := m.data.ZoneByID(m.dragZoneID); zone != nil && m.dragVertex < len(zone.Vertices) {
			m.commands.Execute(mapcanvas.NewEditZoneVertexCommand(
				m.data, zone.ID, m.dragVertex, m.dragOrigPos, zone.Vertices[m.dragVertex], now))
		}
	}
}

func (m *model) onDragCancel(drag mapcanvas.DragState) {
	if m.dragMoved {
		if m.dragNodeID != "" {
			if node := m.data.NodeByID(m.dragNodeID); node != nil {
				node.X, node.Y = m.dragOrigPos.X, m.dragOrigPos.Y
			}
		}
		if m.dragZoneID != "" {
			if zone := m.data.ZoneByID(m.dragZoneID); zone != nil && m.dragVertex >= 0 && m.dragVertex < len(zone.Vertices) {
				zone.Vertices[m.dragVertex] = m.dragOrigPos
			}
		}
	}
	m.resetDrag()
}

func (m *model) resetDrag() {
	m.dragNodeID = ""
	m.dragZoneID = ""
	m.dragVertex = -1
	m.dragMoved = false
	m.renderer.Guides = nil
}

func (m *model) onHoverChange(hit *mapcanvas.HitTestResult) {
	anims := m.engine.Animations()
	if m.hoverID != "" && (hit == nil || hit.ID != m.hoverID) {
		anims.SetHovered(m.hoverID, false)
	}
	if hit != nil {
		anims.SetHovered(hit.ID, true)
		m.hoverID = hit.ID
	} else {
		m.hoverID = ""
	}
}

func (m *model) clearSelectionAnimations() {
	sel := m.selection.Selection()
	anims := m.engine.Animations()
	for _, set := range []map[string]bool{sel.Nodes, sel.Zones, sel.Lines, sel.Robots} {
		for id := range set {
			anims.SetSelected(id, false)
		}
	}
}

// clipboardPayload is the JSON shape shared through the system clipboard.
type clipboardPayload struct {
	Nodes []*mapcanvas.CustomNode `json:"nodes,omitempty"`
	Zones []*mapcanvas.CustomZone `json:"zones,omitempty"`
	Lines []*mapcanvas.CustomLine `json:"lines,omitempty"`
}

func (m *model) copySelection() {
	sel := m.selection.Selection()
	if sel.IsEmpty() {
		m.flash("nothing selected")
		return
	}
	var payload clipboardPayload
	for id := range sel.Nodes {
		if n := m.data.NodeByID(id); n != nil {
			payload.Nodes = append(payload.Nodes, n)
		}
	}
	for id := range sel.Zones {
		if z := m.data.ZoneByID(id); z != nil {
			payload.Zones = append(payload.Zones, z)
		}
	}
	for id := range sel.Lines {
		if l := m.data.LineByID(id); l != nil {
			payload.Lines = append(payload.Lines, l)
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		m.flash("copy failed: " + err.Error())
		return
	}
	if err := clipboard.WriteAll(string(raw)); err != nil {
		m.flash("clipboard unavailable: " + err.Error())
		return
	}
	m.flash(fmt.Sprintf("copied %d element(s)", sel.Count()))
}

// pasteClipboard re-ids the payload, offsets it slightly, and applies it as
// one undoable step.
func (m *model) pasteClipboard() {
	raw, err := clipboard.ReadAll()
	if err != nil {
		m.flash("clipboard unavailable: " + err.Error())
		return
	}
	var payload clipboardPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		m.flash("clipboard is not map data")
		return
	}
	if len(payload.Nodes) == 0 && len(payload.Zones) == 0 && len(payload.Lines) == 0 {
		m.flash("clipboard is empty")
		return
	}

	const pasteOffset = 30.0
	now := time.Now()
	idMap := map[string]string{}

	m.commands.BeginTransaction()
	for _, src := range payload.Nodes {
		n := *src
		idMap[src.ID] = m.newID("n")
		n.ID = idMap[src.ID]
		n.X += pasteOffset
		n.Y += pasteOffset
		m.commands.Execute(mapcanvas.NewAddNodeCommand(m.data, &n, now))
		m.engine.Animations().AnimateAppear(n.ID, nil)
	}
	for _, src := range payload.Zones {
		z := *src
		z.ID = m.newID("z")
		z.Vertices = make([]mapcanvas.Vec2, len(src.Vertices))
		for i, v := range src.Vertices {
			z.Vertices[i] = mapcanvas.Vec2{X: v.X + pasteOffset, Y: v.Y + pasteOffset}
		}
		m.commands.Execute(mapcanvas.NewAddZoneCommand(m.data, &z, now))
		m.engine.Animations().AnimateAppear(z.ID, nil)
	}
	for _, src := range payload.Lines {
		from, okFrom := idMap[src.FromNodeID]
		to, okTo := idMap[src.ToNodeID]
		if !okFrom || !okTo {
			continue // line endpoints were not part of the payload
		}
		l := *src
		l.ID = m.newID("l")
		l.FromNodeID = from
		l.ToNodeID = to
		m.commands.Execute(mapcanvas.NewAddLineCommand(m.data, &l, now))
	}
	m.commands.CommitTransaction("Paste", now)
	m.flash("pasted")
}

func (m *model) deleteSelection() {
	sel := m.selection.Selection()
	if sel.IsEmpty() {
		return
	}
	now := time.Now()
	anims := m.engine.Animations()

	m.commands.BeginTransaction()
	for id := range sel.Lines {
		m.commands.Execute(mapcanvas.NewDeleteLineCommand(m.data, id, now))
		anims.Remove(id)
	}
	for id := range sel.Nodes {
		m.commands.Execute(mapcanvas.NewDeleteNodeCommand(m.data, id, now))
		anims.Remove(id)
	}
	for id := range sel.Zones {
		m.commands.Execute(mapcanvas.NewDeleteZoneCommand(m.data, id, now))
		anims.Remove(id)
	}
	m.commands.CommitTransaction("Delete selection", now)
	m.selection.Clear()
	m.flash("deleted")
}

func (m *model) exportPNG() {
	// Render one fresh frame so the export reflects current state.
	m.engine.Step(time.Now())
	path := m.config.GetSavePath("map.png")
	if err := mapcanvas.ExportPNG(m.surface, path); err != nil {
		m.flash("export failed: " + err.Error())
		return
	}
	m.flash("exported " + path)
}

func (m *model) fitToContent() {
	var pts []mapcanvas.Vec2
	for _, n := range m.data.Nodes {
		pts = append(pts, n.Pos())
	}
	for _, z := range m.data.Zones {
		pts = append(pts, z.Vertices...)
	}
	for _, r := range m.data.Robots {
		pts = append(pts, r.Pos())
	}
	min, max, ok := mapcanvas.Bounds(pts)
	if !ok {
		return
	}
	w, h := m.surface.LogicalSize()
	m.engine.Viewport().FitToBounds(min, max, w, h)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.installCallbacks()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Reserve the bottom row for the status bar.
		canvasRows := msg.Height - 1
		if canvasRows < 1 {
			canvasRows = 1
		}
		m.engine.Resize(float64(msg.Width)*cellW, float64(canvasRows)*cellH, 1)
		return m, nil

	case frameMsg:
		m.sched.Tick(time.Time(msg))
		m.flashLevel, m.flashVel = m.flashSpring.Update(m.flashLevel, m.flashVel, 0)
		return m, m.tickCmd()

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	x := float64(msg.X) * cellW
	y := float64(msg.Y) * cellH

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.interaction.Wheel(x, y, 1)
		case tea.MouseButtonWheelDown:
			m.interaction.Wheel(x, y, -1)
		case tea.MouseButtonLeft:
			if msg.Shift {
				// Shift-click toggles membership without starting a drag.
				world := m.engine.ScreenToWorld(x, y)
				if hit := m.hit.HitTest(world.X, world.Y); hit != nil {
					m.selection.Toggle(hit.Type, hit.ID)
					m.engine.Animations().SetSelected(hit.ID, m.selection.IsSelected(hit.Type, hit.ID))
				}
				return
			}
			m.interaction.PointerDown(x, y, mapcanvas.PointerLeft, false)
		case tea.MouseButtonMiddle:
			m.interaction.PointerDown(x, y, mapcanvas.PointerMiddle, false)
		case tea.MouseButtonRight:
			m.interaction.PointerDown(x, y, mapcanvas.PointerRight, false)
		}
	case tea.MouseActionMotion:
		m.interaction.PointerMove(x, y)
	case tea.MouseActionRelease:
		m.interaction.PointerUp(x, y)
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.engine.Stop()
		return m, tea.Quit
	case "u":
		if m.commands.Undo() {
			m.flash("undo")
		}
	case "U", "ctrl+r":
		if m.commands.Redo() {
			m.flash("redo")
		}
	case "d", "delete", "backspace":
		m.deleteSelection()
	case "c":
		m.copySelection()
	case "p":
		m.pasteClipboard()
	case "S":
		m.exportPNG()
	case "f":
		m.fitToContent()
	case "0":
		m.engine.Viewport().Reset()
	case "+", "=":
		w, h := m.surface.LogicalSize()
		m.engine.Viewport().ZoomTo(m.engine.Viewport().Scale*1.5, w/2, h/2)
	case "-":
		w, h := m.surface.LogicalSize()
		m.engine.Viewport().ZoomTo(m.engine.Viewport().Scale/1.5, w/2, h/2)
	case " ":
		m.spaceHeld = !m.spaceHeld
		m.interaction.SetSpaceHeld(m.spaceHeld)
	case "r":
		// Simulate a robot status change pushed by the real-time feed.
		if robot, ok := m.data.Robots["amr-7"]; ok {
			if robot.Status == mapcanvas.RobotMoving {
				robot.Status = mapcanvas.RobotError
			} else {
				robot.Status = mapcanvas.RobotMoving
			}
			m.engine.Animations().TriggerStatusChange(robot.ID)
			m.flash(fmt.Sprintf("%s is now %s", robot.ID, robot.Status))
		}
	case "esc", "escape":
		m.interaction.Cancel()
		m.selection.CloseContextMenu()
		m.clearSelectionAnimations()
		m.selection.Clear()
	}
	return m, nil
}

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))
	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("219")).
			Background(lipgloss.Color("236")).
			Bold(true)
)

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	canvasRows := m.height - 1
	if canvasRows < 1 {
		canvasRows = 1
	}
	lines := m.renderCells(m.width, canvasRows)

	if menu := m.selection.ContextMenu(); menu.Visible {
		m.overlayMenu(lines, menu)
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(string(line))
		b.WriteString("\n")
	}
	b.WriteString(m.statusBar())
	return b.String()
}

// renderCells projects the world onto the terminal grid. The raster surface
// carries the full-fidelity frame; this is the terminal approximation.
func (m model) renderCells(cols, rows int) [][]rune {
	lines := make([][]rune, rows)
	for i := range lines {
		lines[i] = []rune(strings.Repeat(" ", cols))
	}

	put := func(wx, wy float64, r rune) (int, int, bool) {
		s := m.engine.WorldToScreen(wx, wy)
		cx := int(s.X / cellW)
		cy := int(s.Y / cellH)
		if cx < 0 || cy < 0 || cx >= cols || cy >= rows {
			return 0, 0, false
		}
		lines[cy][cx] = r
		return cx, cy, true
	}

	for _, z := range m.data.Zones {
		marker := '·'
		if z.ZoneType == "restricted" {
			marker = 'x'
		}
		for _, v := range z.Vertices {
			put(v.X, v.Y, marker)
		}
	}
	for _, n := range m.data.Nodes {
		r := '●'
		if m.selection.IsSelected(mapcanvas.HitNode, n.ID) {
			r = '◉'
		}
		if cx, cy, ok := put(n.X, n.Y, r); ok && n.Name != "" && cy > 0 {
			label := []rune(n.Name)
			for i, lr := range label {
				if cx+i >= cols {
					break
				}
				lines[cy-1][cx+i] = lr
			}
		}
	}
	for _, robot := range m.data.Robots {
		r := '▲'
		if !robot.Connected || robot.Status == mapcanvas.RobotError {
			r = '△'
		}
		put(robot.X, robot.Y, r)
	}
	return lines
}

func (m model) overlayMenu(lines [][]rune, menu mapcanvas.ContextMenuState) {
	entries := []string{" delete ", " copy ", " cancel "}
	if menu.Target == nil {
		entries = []string{" add node ", " paste ", " cancel "}
	}
	cx := int(menu.ScreenPos.X / cellW)
	cy := int(menu.ScreenPos.Y / cellH)
	for i, entry := range entries {
		row := cy + i
		if row < 0 || row >= len(lines) {
			continue
		}
		for j, r := range entry {
			col := cx + j
			if col < 0 || col >= len(lines[row]) {
				break
			}
			lines[row][col] = r
		}
	}
}

func (m model) statusBar() string {
	sel := m.selection.Selection()
	parts := []string{
		fmt.Sprintf("zoom %.0f%%", m.engine.Viewport().Scale*100),
		fmt.Sprintf("sel %d", sel.Count()),
		fmt.Sprintf("undo %d", m.commands.UndoDepth()),
		fmt.Sprintf("%.0f fps", m.engine.FPS()),
	}
	if m.spaceHeld {
		parts = append(parts, "PAN")
	}
	left := statusStyle.Render(" " + strings.Join(parts, " | ") + " ")

	right := ""
	if m.statusMsg != "" && m.flashLevel > 0.05 {
		right = flashStyle.Render(" " + m.statusMsg + " ")
	} else {
		right = statusStyle.Render(" u undo | d delete | c/p copy/paste | S png | f fit | q quit ")
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + statusStyle.Render(strings.Repeat(" ", gap)) + right
}
