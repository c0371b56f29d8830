package mapcanvas

// Selection holds the four disjoint id sets. An id lands in exactly one set
// because the element type decides which set receives it.
type Selection struct {
	Nodes  map[string]bool
	Zones  map[string]bool
	Lines  map[string]bool
	Robots map[string]bool
}

func newSelection() Selection {
	return Selection{
		Nodes:  make(map[string]bool),
		Zones:  make(map[string]bool),
		Lines:  make(map[string]bool),
		Robots: make(map[string]bool),
	}
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	return len(s.Nodes) == 0 && len(s.Zones) == 0 && len(s.Lines) == 0 && len(s.Robots) == 0
}

// Count returns the total number of selected elements.
func (s Selection) Count() int {
	return len(s.Nodes) + len(s.Zones) + len(s.Lines) + len(s.Robots)
}

func (s Selection) setFor(t HitType) map[string]bool {
	switch t {
	case HitNode, HitNodeEdge:
		return s.Nodes
	case HitZone, HitZoneVertex:
		return s.Zones
	case HitLine:
		return s.Lines
	case HitRobot:
		return s.Robots
	}
	return nil
}

// ContextMenuState tracks the right-click menu the host renders.
type ContextMenuState struct {
	Visible   bool
	ScreenPos Vec2
	Target    *HitTestResult // nil for empty-canvas menus
}

// SelectionManager owns the selection sets and the context-menu state for
// one canvas session. Change notification is an explicit callback, not
// framework reactivity.
type SelectionManager struct {
	selection   Selection
	contextMenu ContextMenuState
	onChange    func(Selection)
}

func NewSelectionManager() *SelectionManager {
	return &SelectionManager{selection: newSelection()}
}

// OnChange registers the single change listener. Passing nil unregisters.
func (m *SelectionManager) OnChange(fn func(Selection)) {
	m.onChange = fn
}

// Selection returns the live selection sets. Callers must not mutate them.
func (m *SelectionManager) Selection() Selection {
	return m.selection
}

// IsSelected reports whether the given element is selected.
func (m *SelectionManager) IsSelected(t HitType, id string) bool {
	set := m.selection.setFor(t)
	return set != nil && set[id]
}

// Select replaces the selection with a single element.
func (m *SelectionManager) Select(t HitType, id string) {
	m.selection = newSelection()
	if set := m.selection.setFor(t); set != nil {
		set[id] = true
	}
	m.notify()
}

// Toggle adds or removes one element without touching the rest, for
// shift/ctrl-click multi-select.
func (m *SelectionManager) Toggle(t HitType, id string) {
	set := m.selection.setFor(t)
	if set == nil {
		return
	}
	if set[id] {
		delete(set, id)
	} else {
		set[id] = true
	}
	m.notify()
}

// Clear empties the selection. No-op (and no notification) when already empty.
func (m *SelectionManager) Clear() {
	if m.selection.IsEmpty() {
		return
	}
	m.selection = newSelection()
	m.notify()
}

// Drop removes an element from the selection if present, for use after an
// element is deleted from the map.
func (m *SelectionManager) Drop(t HitType, id string) {
	set := m.selection.setFor(t)
	if set == nil || !set[id] {
		return
	}
	delete(set, id)
	m.notify()
}

func (m *SelectionManager) notify() {
	if m.onChange != nil {
		m.onChange(m.selection)
	}
}

// OpenContextMenu records a context menu at the given screen position.
func (m *SelectionManager) OpenContextMenu(screenPos Vec2, target *HitTestResult) {
	m.contextMenu = ContextMenuState{Visible: true, ScreenPos: screenPos, Target: target}
}

// CloseContextMenu hides any open context menu.
func (m *SelectionManager) CloseContextMenu() {
	m.contextMenu = ContextMenuState{}
}

// ContextMenu returns the current context-menu state.
func (m *SelectionManager) ContextMenu() ContextMenuState {
	return m.contextMenu
}

// Reset clears selection and menu state on canvas teardown.
func (m *SelectionManager) Reset() {
	m.selection = newSelection()
	m.contextMenu = ContextMenuState{}
}
