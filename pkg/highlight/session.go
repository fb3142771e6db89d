package highlight

import (
	"sync"

	"github.com/matzehuels/mavgraph/pkg/canon"
)

// State is the selection state of a Session.
type State int

const (
	Idle State = iota
	NodeFocused
	EdgeFocused
)

func (s State) String() string {
	switch s {
	case NodeFocused:
		return "node-focused"
	case EdgeFocused:
		return "edge-focused"
	}
	return "idle"
}

// Session holds the current selection over one canonical graph at a time.
// Selecting the focused element again returns to Idle; selecting another
// element replaces the focus. It is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	g        *canon.Graph
	state    State
	selected string
	result   Result
}

// NewSession starts an idle session over g.
func NewSession(g *canon.Graph) *Session {
	return &Session{g: g}
}

// SelectNode toggles the focus on node id. It returns false, leaving the
// session unchanged, when the graph has no such node.
func (s *Session) SelectNode(id string) (Result, bool) {
	return s.toggle(NodeFocused, id)
}

// SelectEdge toggles the focus on edge id.
func (s *Session) SelectEdge(id string) (Result, bool) {
	return s.toggle(EdgeFocused, id)
}

func (s *Session) toggle(target State, id string) (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == target && s.selected == id {
		s.reset()
		return Result{}, true
	}
	r, ok := associate(s.g, target, id)
	if !ok {
		return s.result, false
	}
	s.state, s.selected, s.result = target, id, r
	return r, true
}

// Clear returns the session to Idle.
func (s *Session) Clear() {
	s.mu.Lock()
	s.reset()
	s.mu.Unlock()
}

func (s *Session) reset() {
	s.state, s.selected, s.result = Idle, "", Result{}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Selected returns the focused id, or "" when idle.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Result returns the association of the current focus.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Graph returns the graph the session is bound to.
func (s *Session) Graph() *canon.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g
}

// Rebind switches the session to a rebuilt graph. The selection is kept and
// recomputed when its element still exists, and cleared otherwise. It
// reports whether the selection survived; an idle session reports true.
func (s *Session) Rebind(g *canon.Graph) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.g = g
	if s.state == Idle {
		return true
	}
	r, ok := associate(g, s.state, s.selected)
	if !ok {
		s.reset()
		return false
	}
	s.result = r
	return true
}

func associate(g *canon.Graph, state State, id string) (Result, bool) {
	if g == nil {
		return Result{}, false
	}
	if state == EdgeFocused {
		return Edge(g, id)
	}
	return Node(g, id)
}
