// Package graph turns a workflow's stored nodes into a directed graph,
// checks that the graph is executable, and derives the path from the
// start node to the end node.
//
// A Graph is built fresh for every request and never persisted. Vertices
// are node ids; the node records themselves live in a side index that
// only the builder consults when applying per-type wiring rules.
//
// Every traversal walks vertices and adjacency lists in insertion order,
// which is the order nodes were handed to Build. Callers that pass nodes
// in a stable order (the store sorts by id) get identical results on
// every run.
package graph

import "workflow-sequence/api/services/storage"

// Edge labels used for condition branches.
const (
	LabelYes = "yes"
	LabelNo  = "no"
)

// Edge is a directed "execution may proceed from Source to Target" link.
type Edge struct {
	Source int64  `json:"source"`
	Target int64  `json:"target"`
	Label  string `json:"label,omitempty"`
}

// Graph is a simple directed graph over node ids.
type Graph struct {
	vertices []int64
	nodes    map[int64]*storage.Node
	adj      map[int64][]int64
	edges    []Edge
	seen     map[[2]int64]struct{}

	entry    int64
	terminal int64
	hasEntry bool
	hasTerm  bool
}

func newGraph(size int) *Graph {
	return &Graph{
		vertices: make([]int64, 0, size),
		nodes:    make(map[int64]*storage.Node, size),
		adj:      make(map[int64][]int64, size),
		seen:     make(map[[2]int64]struct{}),
	}
}

func (g *Graph) addVertex(n *storage.Node) {
	g.vertices = append(g.vertices, n.ID)
	g.nodes[n.ID] = n
}

// addEdge records source -> target once; repeated pairs are ignored.
func (g *Graph) addEdge(source, target int64, label string) {
	key := [2]int64{source, target}
	if _, ok := g.seen[key]; ok {
		return
	}
	g.seen[key] = struct{}{}
	g.adj[source] = append(g.adj[source], target)
	g.edges = append(g.edges, Edge{Source: source, Target: target, Label: label})
}

// Vertices returns the node ids in insertion order.
func (g *Graph) Vertices() []int64 {
	out := make([]int64, len(g.vertices))
	copy(out, g.vertices)
	return out
}

// Edges returns every edge in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Successors returns the targets of id's outgoing edges in insertion order.
func (g *Graph) Successors(id int64) []int64 {
	out := make([]int64, len(g.adj[id]))
	copy(out, g.adj[id])
	return out
}

// Entry returns the start vertex and whether one was recorded.
func (g *Graph) Entry() (int64, bool) { return g.entry, g.hasEntry }

// Terminal returns the end vertex and whether one was recorded.
func (g *Graph) Terminal() (int64, bool) { return g.terminal, g.hasTerm }

// bfs walks forward from source and returns, for every reached vertex,
// the vertex it was first discovered from. The source maps to itself.
func (g *Graph) bfs(source int64) map[int64]int64 {
	parent := map[int64]int64{source: source}
	queue := []int64{source}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.adj[cur] {
			if _, ok := parent[next]; ok {
				continue
			}
			parent[next] = cur
			queue = append(queue, next)
		}
	}
	return parent
}
