package graph

import (
	"fmt"

	"workflow-sequence/api/services/storage"
)

// Build adds every node as a vertex, then wires each node's outgoing
// edges according to its type:
//
//   - start: one edge to its successor, which must not be a condition node.
//     The node becomes the entry vertex. A start node with no successor yet
//     adds no edge and is not recorded as the entry.
//   - message: one edge to its successor, which must not be a start node.
//   - condition: a "yes" edge and a "no" edge to two distinct nodes.
//   - end: no edges. The node becomes the terminal vertex.
//
// A workflow may hold at most one start and one end node. Adjacency
// violations are reported as ErrInvalidTopology and win over successor ids
// that point outside the node set, which are reported as
// ErrDanglingReference once the whole set has been checked.
func Build(nodes []storage.Node) (*Graph, error) {
	g := newGraph(len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if _, dup := g.nodes[n.ID]; dup {
			return nil, topologyError(n.ID, "duplicate node id")
		}
		g.addVertex(n)
	}

	b := &builder{g: g}
	for _, id := range g.vertices {
		if err := b.wire(g.nodes[id]); err != nil {
			return nil, err
		}
	}
	if b.dangling != nil {
		return nil, b.dangling
	}
	return g, nil
}

type builder struct {
	g        *Graph
	sawStart bool
	sawEnd   bool
	dangling error
}

func (b *builder) wire(n *storage.Node) error {
	switch n.Type {
	case storage.NodeTypeStart:
		return b.wireStart(n)
	case storage.NodeTypeMessage:
		return b.wireMessage(n)
	case storage.NodeTypeCondition:
		return b.wireCondition(n)
	case storage.NodeTypeEnd:
		if b.sawEnd {
			return topologyError(n.ID, "multiple end nodes")
		}
		b.sawEnd = true
		b.g.terminal, b.g.hasTerm = n.ID, true
		return nil
	default:
		return topologyError(n.ID, fmt.Sprintf("unknown node type %q", n.Type))
	}
}

func (b *builder) wireStart(n *storage.Node) error {
	if b.sawStart {
		return topologyError(n.ID, "multiple start nodes")
	}
	b.sawStart = true
	if n.NextNodeID == nil {
		return nil
	}

	next, ok := b.lookup(n.ID, *n.NextNodeID)
	if !ok {
		return nil
	}
	if next.Type == storage.NodeTypeCondition {
		return topologyError(n.ID, "condition node cannot directly follow start")
	}
	b.g.addEdge(n.ID, next.ID, "")
	b.g.entry, b.g.hasEntry = n.ID, true
	return nil
}

func (b *builder) wireMessage(n *storage.Node) error {
	if n.NextNodeID == nil {
		return topologyError(n.ID, "message node has no successor")
	}

	next, ok := b.lookup(n.ID, *n.NextNodeID)
	if !ok {
		return nil
	}
	if next.Type == storage.NodeTypeStart {
		return topologyError(n.ID, "start node cannot be a successor")
	}
	b.g.addEdge(n.ID, next.ID, "")
	return nil
}

func (b *builder) wireCondition(n *storage.Node) error {
	if n.YesNodeID == nil || n.NoNodeID == nil {
		return topologyError(n.ID, "condition node requires both yes and no successors")
	}
	if *n.YesNodeID == *n.NoNodeID {
		return topologyError(n.ID, "condition branches must lead to different nodes")
	}

	yes, okYes := b.lookup(n.ID, *n.YesNodeID)
	no, okNo := b.lookup(n.ID, *n.NoNodeID)
	if !okYes || !okNo {
		return nil
	}
	b.g.addEdge(n.ID, yes.ID, LabelYes)
	b.g.addEdge(n.ID, no.ID, LabelNo)
	return nil
}

// lookup resolves a successor id against the workflow's node set. A miss is
// remembered as the build's dangling-reference error (first one wins) and
// reported as not found so the caller skips wiring that edge.
func (b *builder) lookup(from, id int64) (*storage.Node, bool) {
	n, ok := b.g.nodes[id]
	if !ok && b.dangling == nil {
		b.dangling = &Error{
			Kind:   ErrDanglingReference,
			NodeID: from,
			Detail: fmt.Sprintf("successor %d does not exist in this workflow", id),
		}
	}
	return n, ok
}
