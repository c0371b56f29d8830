package mapcanvas

import "time"

// Command is one executable, undoable unit of map mutation. Execute and
// Undo must stay safe to invoke repeatedly in sequence: redo after undo
// re-runs the same command object.
type Command interface {
	Execute()
	Undo()
	Description() string
	Timestamp() time.Time
}

// MergeableCommand absorbs a compatible later command so a rapid run of
// edits collapses into one undo step. Merge only ever adjusts the intended
// final value, never incremental deltas.
type MergeableCommand interface {
	Command
	CanMerge(other Command) bool
	Merge(other Command)
}

// withinMergeWindow applies the shared recency test.
func withinMergeWindow(a, b Command) bool {
	d := b.Timestamp().Sub(a.Timestamp())
	if d < 0 {
		d = -d
	}
	return d < mergeWindow
}

// --- Node commands ---

type AddNodeCommand struct {
	data *MapData
	node *CustomNode
	at   time.Time
}

func NewAddNodeCommand(data *MapData, node *CustomNode, at time.Time) *AddNodeCommand {
	return &AddNodeCommand{data: data, node: node, at: at}
}

func (c *AddNodeCommand) Execute() {
	if c.data.NodeByID(c.node.ID) == nil {
		c.data.Nodes = append(c.data.Nodes, c.node)
	}
}

func (c *AddNodeCommand) Undo() {
	c.data.RemoveNode(c.node.ID)
}

func (c *AddNodeCommand) Description() string  { return "Add node " + c.node.Name }
func (c *AddNodeCommand) Timestamp() time.Time { return c.at }

type MoveNodeCommand struct {
	data   *MapData
	nodeID string
	from   Vec2
	to     Vec2
	at     time.Time
}

func NewMoveNodeCommand(data *MapData, nodeID string, from, to Vec2, at time.Time) *MoveNodeCommand {
	return &MoveNodeCommand{data: data, nodeID: nodeID, from: from, to: to, at: at}
}

func (c *MoveNodeCommand) Execute() {
	if n := c.data.NodeByID(c.nodeID); n != nil {
		n.X, n.Y = c.to.X, c.to.Y
	}
}

func (c *MoveNodeCommand) Undo() {
	if n := c.data.NodeByID(c.nodeID); n != nil {
		n.X, n.Y = c.from.X, c.from.Y
	}
}

func (c *MoveNodeCommand) Description() string  { return "Move node" }
func (c *MoveNodeCommand) Timestamp() time.Time { return c.at }

// CanMerge accepts a later move of the same node inside the merge window.
func (c *MoveNodeCommand) CanMerge(other Command) bool {
	o, ok := other.(*MoveNodeCommand)
	return ok && o.nodeID == c.nodeID && withinMergeWindow(c, o)
}

// Merge keeps this command's original `from` and adopts the other's final
// position, so undo restores the position from before the first move.
func (c *MoveNodeCommand) Merge(other Command) {
	o := other.(*MoveNodeCommand)
	c.to = o.to
	c.at = o.at
}

// DeleteNodeCommand removes a node together with every line touching it,
// and restores all of them on undo. Slice positions are recorded at
// construction so undo preserves draw and hit-test order.
type DeleteNodeCommand struct {
	data    *MapData
	node    *CustomNode
	nodeIdx int
	lines   []*CustomLine
	lineIdx []int
	at      time.Time
}

func NewDeleteNodeCommand(data *MapData, nodeID string, at time.Time) *DeleteNodeCommand {
	c := &DeleteNodeCommand{
		data:    data,
		node:    data.NodeByID(nodeID),
		nodeIdx: data.nodeIndex(nodeID),
		at:      at,
	}
	for i, l := range data.Lines {
		if l.FromNodeID == nodeID || l.ToNodeID == nodeID {
			c.lines = append(c.lines, l)
			c.lineIdx = append(c.lineIdx, i)
		}
	}
	return c
}

func (c *DeleteNodeCommand) Execute() {
	if c.node == nil {
		return
	}
	for _, l := range c.lines {
		c.data.RemoveLine(l.ID)
	}
	c.data.RemoveNode(c.node.ID)
}

func (c *DeleteNodeCommand) Undo() {
	if c.node == nil {
		return
	}
	if c.data.NodeByID(c.node.ID) == nil {
		c.data.insertNodeAt(c.nodeIdx, c.node)
	}
	// Indexes ascend (captured in slice order), so reinserting in order
	// lands every line back at its original position.
	for i, l := range c.lines {
		if c.data.LineByID(l.ID) == nil {
			c.data.insertLineAt(c.lineIdx[i], l)
		}
	}
}

func (c *DeleteNodeCommand) Description() string  { return "Delete node" }
func (c *DeleteNodeCommand) Timestamp() time.Time { return c.at }

// --- Zone commands ---

type AddZoneCommand struct {
	data *MapData
	zone *CustomZone
	at   time.Time
}

func NewAddZoneCommand(data *MapData, zone *CustomZone, at time.Time) *AddZoneCommand {
	return &AddZoneCommand{data: data, zone: zone, at: at}
}

func (c *AddZoneCommand) Execute() {
	if c.data.ZoneByID(c.zone.ID) == nil {
		c.data.Zones = append(c.data.Zones, c.zone)
	}
}

func (c *AddZoneCommand) Undo() {
	c.data.RemoveZone(c.zone.ID)
}

func (c *AddZoneCommand) Description() string  { return "Add zone " + c.zone.Name }
func (c *AddZoneCommand) Timestamp() time.Time { return c.at }

type DeleteZoneCommand struct {
	data  *MapData
	zone  *CustomZone
	index int
	at    time.Time
}

func NewDeleteZoneCommand(data *MapData, zoneID string, at time.Time) *DeleteZoneCommand {
	return &DeleteZoneCommand{
		data:  data,
		zone:  data.ZoneByID(zoneID),
		index: data.zoneIndex(zoneID),
		at:    at,
	}
}

func (c *DeleteZoneCommand) Execute() {
	if c.zone != nil {
		c.data.RemoveZone(c.zone.ID)
	}
}

func (c *DeleteZoneCommand) Undo() {
	if c.zone != nil && c.data.ZoneByID(c.zone.ID) == nil {
		c.data.insertZoneAt(c.index, c.zone)
	}
}

func (c *DeleteZoneCommand) Description() string  { return "Delete zone" }
func (c *DeleteZoneCommand) Timestamp() time.Time { return c.at }

// EditZoneVertexCommand moves a single polygon vertex. Mergeable so a
// continuous vertex drag is one undo step.
type EditZoneVertexCommand struct {
	data   *MapData
	zoneID string
	index  int
	from   Vec2
	to     Vec2
	at     time.Time
}

func NewEditZoneVertexCommand(data *MapData, zoneID string, index int, from, to Vec2, at time.Time) *EditZoneVertexCommand {
	return &EditZoneVertexCommand{data: data, zoneID: zoneID, index: index, from: from, to: to, at: at}
}

func (c *EditZoneVertexCommand) setVertex(v Vec2) {
	z := c.data.ZoneByID(c.zoneID)
	if z == nil || c.index < 0 || c.index >= len(z.Vertices) {
		return
	}
	z.Vertices[c.index] = v
}

func (c *EditZoneVertexCommand) Execute() { c.setVertex(c.to) }
func (c *EditZoneVertexCommand) Undo()    { c.setVertex(c.from) }

func (c *EditZoneVertexCommand) Description() string  { return "Edit zone vertex" }
func (c *EditZoneVertexCommand) Timestamp() time.Time { return c.at }

func (c *EditZoneVertexCommand) CanMerge(other Command) bool {
	o, ok := other.(*EditZoneVertexCommand)
	return ok && o.zoneID == c.zoneID && o.index == c.index && withinMergeWindow(c, o)
}

func (c *EditZoneVertexCommand) Merge(other Command) {
	o := other.(*EditZoneVertexCommand)
	c.to = o.to
	c.at = o.at
}

// --- Line commands ---

type AddLineCommand struct {
	data *MapData
	line *CustomLine
	at   time.Time
}

func NewAddLineCommand(data *MapData, line *CustomLine, at time.Time) *AddLineCommand {
	return &AddLineCommand{data: data, line: line, at: at}
}

func (c *AddLineCommand) Execute() {
	if c.data.LineByID(c.line.ID) == nil {
		c.data.Lines = append(c.data.Lines, c.line)
	}
}

func (c *AddLineCommand) Undo() {
	c.data.RemoveLine(c.line.ID)
}

func (c *AddLineCommand) Description() string  { return "Add line" }
func (c *AddLineCommand) Timestamp() time.Time { return c.at }

type DeleteLineCommand struct {
	data  *MapData
	line  *CustomLine
	index int
	at    time.Time
}

func NewDeleteLineCommand(data *MapData, lineID string, at time.Time) *DeleteLineCommand {
	return &DeleteLineCommand{
		data:  data,
		line:  data.LineByID(lineID),
		index: data.lineIndex(lineID),
		at:    at,
	}
}

func (c *DeleteLineCommand) Execute() {
	if c.line != nil {
		c.data.RemoveLine(c.line.ID)
	}
}

func (c *DeleteLineCommand) Undo() {
	if c.line != nil && c.data.LineByID(c.line.ID) == nil {
		c.data.insertLineAt(c.index, c.line)
	}
}

func (c *DeleteLineCommand) Description() string  { return "Delete line" }
func (c *DeleteLineCommand) Timestamp() time.Time { return c.at }

// --- Composite ---

// CompositeCommand groups commands into one logical unit. Undo runs in
// reverse order.
type CompositeCommand struct {
	commands []Command
	desc     string
	at       time.Time
}

func NewCompositeCommand(desc string, at time.Time, commands ...Command) *CompositeCommand {
	return &CompositeCommand{commands: commands, desc: desc, at: at}
}

func (c *CompositeCommand) Execute() {
	for _, cmd := range c.commands {
		cmd.Execute()
	}
}

func (c *CompositeCommand) Undo() {
	for i := len(c.commands) - 1; i >= 0; i-- {
		c.commands[i].Undo()
	}
}

func (c *CompositeCommand) Description() string  { return c.desc }
func (c *CompositeCommand) Timestamp() time.Time { return c.at }
func (c *CompositeCommand) Len() int             { return len(c.commands) }

// --- Manager ---

// CommandManager owns the undo/redo stacks. The undo stack is bounded;
// the oldest entry is evicted silently once the cap is exceeded.
type CommandManager struct {
	undoStack []Command
	redoStack []Command
	maxDepth  int

	// Non-nil while a transaction is open; executed commands buffer here
	// instead of the undo stack.
	txn     []Command
	txnOpen bool

	onChange func()
}

func NewCommandManager() *CommandManager {
	return &CommandManager{maxDepth: maxUndoDepth}
}

// OnChange registers a callback fired after every stack mutation, so hosts
// can refresh undo/redo affordances.
func (m *CommandManager) OnChange(fn func()) {
	m.onChange = fn
}

func (m *CommandManager) notify() {
	if m.onChange != nil {
		m.onChange()
	}
}

// Execute runs cmd and records it. If the command on top of the undo stack
// can merge with cmd, it absorbs cmd and no new entry is pushed; cmd still
// executes either way. Any redo history is invalidated.
func (m *CommandManager) Execute(cmd Command) {
	if m.txnOpen {
		cmd.Execute()
		m.txn = append(m.txn, cmd)
		return
	}

	if top := m.top(); top != nil {
		if mergeable, ok := top.(MergeableCommand); ok && mergeable.CanMerge(cmd) {
			mergeable.Merge(cmd)
			cmd.Execute()
			m.redoStack = m.redoStack[:0]
			m.notify()
			return
		}
	}

	cmd.Execute()
	m.undoStack = append(m.undoStack, cmd)
	if len(m.undoStack) > m.maxDepth {
		logger().Debug("undo stack full, evicting oldest entry",
			"evicted", m.undoStack[0].Description())
		m.undoStack = m.undoStack[1:]
	}
	m.redoStack = m.redoStack[:0]
	m.notify()
}

func (m *CommandManager) top() Command {
	if len(m.undoStack) == 0 {
		return nil
	}
	return m.undoStack[len(m.undoStack)-1]
}

// CanUndo reports whether an undo step is available.
func (m *CommandManager) CanUndo() bool { return len(m.undoStack) > 0 && !m.txnOpen }

// CanRedo reports whether a redo step is available.
func (m *CommandManager) CanRedo() bool { return len(m.redoStack) > 0 && !m.txnOpen }

// UndoDepth returns the number of undoable steps.
func (m *CommandManager) UndoDepth() int { return len(m.undoStack) }

// Undo reverts the most recent command, moving it to the redo stack.
// Returns false when there is nothing to undo.
func (m *CommandManager) Undo() bool {
	if !m.CanUndo() {
		return false
	}
	last := len(m.undoStack) - 1
	cmd := m.undoStack[last]
	m.undoStack = m.undoStack[:last]
	cmd.Undo()
	m.redoStack = append(m.redoStack, cmd)
	m.notify()
	return true
}

// Redo re-executes the most recently undone command.
func (m *CommandManager) Redo() bool {
	if !m.CanRedo() {
		return false
	}
	last := len(m.redoStack) - 1
	cmd := m.redoStack[last]
	m.redoStack = m.redoStack[:last]
	cmd.Execute()
	m.undoStack = append(m.undoStack, cmd)
	m.notify()
	return true
}

// BeginTransaction opens a transaction: commands executed until Commit are
// grouped into one undo unit. Nested transactions are not supported.
func (m *CommandManager) BeginTransaction() {
	if m.txnOpen {
		return
	}
	m.txnOpen = true
	m.txn = m.txn[:0]
}

// CommitTransaction closes the transaction and pushes the buffered commands
// as a single composite entry. An empty transaction pushes nothing.
func (m *CommandManager) CommitTransaction(desc string, at time.Time) {
	if !m.txnOpen {
		return
	}
	m.txnOpen = false
	if len(m.txn) == 0 {
		return
	}
	composite := NewCompositeCommand(desc, at, append([]Command(nil), m.txn...)...)
	m.txn = m.txn[:0]
	// Already executed command-by-command; only the bookkeeping is pushed.
	m.undoStack = append(m.undoStack, composite)
	if len(m.undoStack) > m.maxDepth {
		m.undoStack = m.undoStack[1:]
	}
	m.redoStack = m.redoStack[:0]
	m.notify()
}

// RollbackTransaction undoes and discards everything since BeginTransaction.
func (m *CommandManager) RollbackTransaction() {
	if !m.txnOpen {
		return
	}
	m.txnOpen = false
	for i := len(m.txn) - 1; i >= 0; i-- {
		m.txn[i].Undo()
	}
	m.txn = m.txn[:0]
}

// Clear resets both stacks, e.g. when the host loads a new map.
func (m *CommandManager) Clear() {
	m.undoStack = m.undoStack[:0]
	m.redoStack = m.redoStack[:0]
	m.txn = m.txn[:0]
	m.txnOpen = false
	m.notify()
}
