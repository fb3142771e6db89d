package highlight

import (
	"sync"
	"testing"

	"github.com/matzehuels/mavgraph/pkg/canon"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

func TestSessionTransitions(t *testing.T) {
	s := NewSession(bankGraph())

	steps := []struct {
		name     string
		act      func() bool
		state    State
		selected string
	}{
		{"select node", func() bool { _, ok := s.SelectNode("_21"); return ok }, NodeFocused, "_21"},
		{"select other node", func() bool { _, ok := s.SelectNode("_22"); return ok }, NodeFocused, "_22"},
		{"select edge", func() bool { _, ok := s.SelectEdge("_6->_30"); return ok }, EdgeFocused, "_6->_30"},
		{"reselect edge", func() bool { _, ok := s.SelectEdge("_6->_30"); return ok }, Idle, ""},
		{"select node again", func() bool { _, ok := s.SelectNode("_6"); return ok }, NodeFocused, "_6"},
		{"reselect node", func() bool { _, ok := s.SelectNode("_6"); return ok }, Idle, ""},
	}
	for _, st := range steps {
		if !st.act() {
			t.Fatalf("%s: action rejected", st.name)
		}
		if s.State() != st.state || s.Selected() != st.selected {
			t.Fatalf("%s: state = %v %q, want %v %q", st.name, s.State(), s.Selected(), st.state, st.selected)
		}
	}
}

func TestSessionRejectsUnknown(t *testing.T) {
	s := NewSession(bankGraph())
	s.SelectNode("_21")
	if _, ok := s.SelectNode("_404"); ok {
		t.Fatal("unknown node accepted")
	}
	if s.Selected() != "_21" {
		t.Errorf("selection changed to %q", s.Selected())
	}
	if s.SelectEdge("_21"); s.State() != NodeFocused {
		t.Error("node id accepted as edge")
	}
}

func TestSessionRebind(t *testing.T) {
	s := NewSession(bankGraph())
	s.SelectNode("_21")

	// Same report rebuilt: the selection survives and is recomputed.
	if !s.Rebind(bankGraph()) || s.Selected() != "_21" {
		t.Fatal("selection should survive an equivalent rebuild")
	}
	if len(s.Result().Nodes) != 3 {
		t.Errorf("recomputed result = %v", s.Result().Nodes)
	}

	// Different focus without the load: the selection is cleared.
	other := canon.Build(arbReport(), canon.Options{Focus: canon.BankFocus("k0", "M")})
	if s.Rebind(other) {
		t.Fatal("selection should be cleared")
	}
	if s.State() != Idle || s.Graph() != other {
		t.Errorf("state = %v", s.State())
	}
	if !s.Rebind(bankGraph()) {
		t.Error("idle rebind should report true")
	}
}

func TestSessionConcurrent(t *testing.T) {
	s := NewSession(bankGraph())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.SelectNode("_21")
			} else {
				s.Rebind(canon.Build(arbReport(mav.RawLink{From: 23, To: 7}), canon.Options{Focus: canon.BankFocus("k0", "M", "B0")}))
			}
		}(i)
	}
	wg.Wait()
	if st := s.State(); st != Idle && st != NodeFocused {
		t.Errorf("unexpected state %v", st)
	}
}
