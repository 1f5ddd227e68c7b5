package morph

// An MGraph tracks the instances a traversal has already entered. It
// is shared by every context derived during one validate or transform
// call and bounds recursion over mutually-referencing instances: a
// visited instance is not entered again.
//
// One MGraph is default-constructed per top-level call unless
// explicitly threaded through, so distinct traversals never observe
// each other.
type MGraph struct {
	visited map[*Object]struct{}
}

// NewMGraph returns an empty instance tracker.
func NewMGraph() *MGraph {
	return &MGraph{visited: make(map[*Object]struct{})}
}

// Visit marks the instance as entered.
func (m *MGraph) Visit(o *Object) {
	m.visited[o] = struct{}{}
}

// Visited reports whether the instance was already entered during this
// traversal.
func (m *MGraph) Visited(o *Object) bool {
	_, ok := m.visited[o]
	return ok
}
