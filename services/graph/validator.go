package graph

// Validate checks that a built graph is executable. Checks run in a fixed
// order and the first failure is returned:
//
//  1. an end node exists (ErrMissingTerminal)
//  2. the end node is reachable from the start node, when there is one
//     (ErrUnreachableTerminal)
//  3. the graph has at least one edge (ErrEmptyGraph)
//  4. a start node was wired as the entry (ErrMissingEntry)
//
// Validate does not modify g.
func Validate(g *Graph) error {
	terminal, ok := g.Terminal()
	if !ok {
		return &Error{Kind: ErrMissingTerminal}
	}

	entry, hasEntry := g.Entry()
	if hasEntry {
		if _, reached := g.bfs(entry)[terminal]; !reached {
			return &Error{Kind: ErrUnreachableTerminal, NodeID: terminal}
		}
	}

	if len(g.edges) == 0 {
		return &Error{Kind: ErrEmptyGraph}
	}

	if !hasEntry {
		return &Error{Kind: ErrMissingEntry}
	}
	return nil
}
