package graph

import "slices"

// Sequence is the execution plan for a workflow: the shortest path from
// the start node to the end node and the full edge list of the graph.
type Sequence struct {
	Path  []int64 `json:"path"`
	Edges []Edge  `json:"edges"`
}

// Resolve computes an unweighted shortest path from the entry vertex to the
// terminal vertex. When several shortest paths exist, the one whose
// vertices were discovered first wins; discovery follows adjacency
// insertion order, so the result is stable for a given node order.
//
// Resolve does not trust that Validate ran and returns ErrNoPathFound
// instead of panicking if the graph has no route.
func Resolve(g *Graph) (*Sequence, error) {
	entry, okEntry := g.Entry()
	terminal, okTerm := g.Terminal()
	if !okEntry || !okTerm {
		return nil, &Error{Kind: ErrNoPathFound, Detail: "start or end node not set"}
	}

	parent := g.bfs(entry)
	if _, ok := parent[terminal]; !ok {
		return nil, &Error{Kind: ErrNoPathFound, NodeID: terminal}
	}

	path := []int64{terminal}
	for cur := terminal; cur != entry; {
		cur = parent[cur]
		path = append(path, cur)
	}
	slices.Reverse(path)

	return &Sequence{Path: path, Edges: g.Edges()}, nil
}
