package catalog

import (
	"github.com/matzehuels/mavgraph/pkg/diag"
	"github.com/matzehuels/mavgraph/pkg/errors"
	"github.com/matzehuels/mavgraph/pkg/mav"
)

// GlobalMemoryName is the container name that marks global memory systems.
const GlobalMemoryName = "Global Memory"

// Entry is one flattened node.
type Entry struct {
	ID       int
	Kind     mav.Kind
	Type     string // original type string, kept for unknown kinds
	Name     string
	Details  []mav.Record
	Debug    [][]mav.Location
	Copies   *mav.Copies
	Children []int

	ParentID  int // lookup key into the catalog; valid when HasParent
	HasParent bool
	Global    bool // memory system directly inside "Global Memory"
	Order     int  // depth-first traversal position
}

// Detail returns the node's detail record. Only the first record is
// meaningful; extra records are reported when the catalog is built.
func (e *Entry) Detail() (mav.Record, bool) {
	if len(e.Details) == 0 {
		return mav.Record{}, false
	}
	return e.Details[0], true
}

// DetailValue returns the textual value of key in the node's detail record.
func (e *Entry) DetailValue(key string) (string, bool) {
	r, ok := e.Detail()
	if !ok || !r.Has(key) {
		return "", false
	}
	return r.Value(key), true
}

// Location returns the node's best debug location: the first alternative
// of the first location list.
func (e *Entry) Location() (mav.Location, bool) {
	if len(e.Debug) == 0 || len(e.Debug[0]) == 0 {
		return mav.Location{}, false
	}
	return e.Debug[0][0], true
}

// Catalog is the id-indexed view of a report tree.
type Catalog struct {
	entries map[int]*Entry
	order   []int
	roots   []int
	memsys  []int
}

// Build walks nodes depth-first and returns the catalog. A duplicate id
// aborts the walk with an ErrCodeDuplicateID error.
func Build(nodes []mav.RawNode, c *diag.Collector) (*Catalog, error) {
	cat := &Catalog{entries: make(map[int]*Entry)}
	for i := range nodes {
		cat.roots = append(cat.roots, nodes[i].ID)
		if err := cat.add(&nodes[i], nil, c); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func (cat *Catalog) add(n *mav.RawNode, parent *Entry, c *diag.Collector) error {
	if _, dup := cat.entries[n.ID]; dup {
		return errors.New(errors.ErrCodeDuplicateID, "node id %d appears more than once", n.ID)
	}

	kind, known := mav.ParseKind(n.Type)
	if !known {
		c.Warnf(errors.ErrCodeUnknownNodeType, n.ID, "unknown node type %q, rendering as generic node", n.Type)
	}
	if len(n.Details) > 1 {
		c.Warnf(errors.ErrCodeInconsistentDetails, n.ID, "node has %d detail records, using the first", len(n.Details))
	}

	e := &Entry{
		ID:      n.ID,
		Kind:    kind,
		Type:    n.Type,
		Name:    n.Name,
		Details: n.Details,
		Debug:   n.Debug,
		Copies:  n.Copies,
		Order:   len(cat.order),
	}
	if parent != nil {
		e.ParentID = parent.ID
		e.HasParent = true
		parent.Children = append(parent.Children, n.ID)
	}
	if kind.IsMemorySystem() {
		cat.memsys = append(cat.memsys, n.ID)
		e.Global = parent != nil && parent.Name == GlobalMemoryName
	}

	cat.entries[n.ID] = e
	cat.order = append(cat.order, n.ID)

	for i := range n.Children {
		if err := cat.add(&n.Children[i], e, c); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the entry for id. The entry must not be modified.
func (cat *Catalog) Get(id int) (*Entry, bool) {
	e, ok := cat.entries[id]
	return e, ok
}

// Has reports whether id is in the catalog.
func (cat *Catalog) Has(id int) bool {
	_, ok := cat.entries[id]
	return ok
}

// Kind returns the kind of id, or KindUnknown if id is absent.
func (cat *Catalog) Kind(id int) mav.Kind {
	if e, ok := cat.entries[id]; ok {
		return e.Kind
	}
	return mav.KindUnknown
}

// Len returns the number of entries.
func (cat *Catalog) Len() int { return len(cat.order) }

// Order returns all ids in depth-first traversal order.
func (cat *Catalog) Order() []int { return append([]int(nil), cat.order...) }

// Roots returns the ids of the top-level nodes.
func (cat *Catalog) Roots() []int { return append([]int(nil), cat.roots...) }

// MemorySystems returns the ids of all memsys and romsys nodes in
// traversal order.
func (cat *Catalog) MemorySystems() []int { return append([]int(nil), cat.memsys...) }

// Parent returns the structural parent of id.
func (cat *Catalog) Parent(id int) (*Entry, bool) {
	e, ok := cat.entries[id]
	if !ok || !e.HasParent {
		return nil, false
	}
	return cat.Get(e.ParentID)
}

// Ancestor walks levels parents up from id.
func (cat *Catalog) Ancestor(id, levels int) (*Entry, bool) {
	e, ok := cat.entries[id]
	for i := 0; ok && i < levels; i++ {
		e, ok = cat.Parent(e.ID)
	}
	return e, ok
}

// IsAncestor reports whether anc is a strict ancestor of id.
func (cat *Catalog) IsAncestor(anc, id int) bool {
	for p, ok := cat.Parent(id); ok; p, ok = cat.Parent(p.ID) {
		if p.ID == anc {
			return true
		}
	}
	return false
}

// Subtree returns id and all its descendants in traversal order.
func (cat *Catalog) Subtree(id int) []int {
	e, ok := cat.entries[id]
	if !ok {
		return nil
	}
	out := []int{id}
	for _, ch := range e.Children {
		out = append(out, cat.Subtree(ch)...)
	}
	return out
}
