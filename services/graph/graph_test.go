package graph_test

import (
	"errors"
	"reflect"
	"testing"

	"workflow-sequence/api/services/graph"
	"workflow-sequence/api/services/storage"
)

func idPtr(v int64) *int64 { return &v }

func start(id, next int64) storage.Node {
	return storage.Node{ID: id, WorkflowID: 1, Type: storage.NodeTypeStart, NextNodeID: idPtr(next)}
}

func message(id, next int64) storage.Node {
	status := storage.NodeStatusOpen
	text := "hello"
	return storage.Node{ID: id, WorkflowID: 1, Type: storage.NodeTypeMessage, Status: &status, Message: &text, NextNodeID: idPtr(next)}
}

func condition(id, yes, no int64) storage.Node {
	expr := "answer == yes"
	return storage.Node{ID: id, WorkflowID: 1, Type: storage.NodeTypeCondition, Condition: &expr, YesNodeID: idPtr(yes), NoNodeID: idPtr(no)}
}

func end(id int64) storage.Node {
	return storage.Node{ID: id, WorkflowID: 1, Type: storage.NodeTypeEnd}
}

func nodes(ns ...storage.Node) []storage.Node { return ns }

func TestBuild(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		nodes     []storage.Node
		wantErr   error
		wantEdges []graph.Edge
	}{
		{
			name:  "linear workflow",
			nodes: nodes(start(1, 2), message(2, 3), end(3)),
			wantEdges: []graph.Edge{
				{Source: 1, Target: 2},
				{Source: 2, Target: 3},
			},
		},
		{
			name:  "condition edges are labelled yes then no",
			nodes: nodes(start(1, 2), message(2, 4), condition(4, 5, 3), message(5, 3), end(3)),
			wantEdges: []graph.Edge{
				{Source: 1, Target: 2},
				{Source: 2, Target: 4},
				{Source: 4, Target: 5, Label: graph.LabelYes},
				{Source: 4, Target: 3, Label: graph.LabelNo},
				{Source: 5, Target: 3},
			},
		},
		{
			name:    "condition directly after start",
			nodes:   nodes(start(1, 2), condition(2, 3, 4)),
			wantErr: graph.ErrInvalidTopology,
		},
		{
			name:    "start as message successor",
			nodes:   nodes(start(1, 2), message(2, 1), end(3)),
			wantErr: graph.ErrInvalidTopology,
		},
		{
			name:    "two start nodes",
			nodes:   nodes(start(1, 3), start(2, 3), end(3)),
			wantErr: graph.ErrInvalidTopology,
		},
		{
			name:    "two end nodes",
			nodes:   nodes(start(1, 2), end(2), end(3)),
			wantErr: graph.ErrInvalidTopology,
		},
		{
			name:    "dangling condition branch",
			nodes:   nodes(start(1, 2), message(2, 4), condition(4, 5, 3), end(3)),
			wantErr: graph.ErrDanglingReference,
		},
		{
			name:    "dangling start successor",
			nodes:   nodes(start(1, 9), end(3)),
			wantErr: graph.ErrDanglingReference,
		},
		{
			name:    "topology violation wins over earlier dangling reference",
			nodes:   nodes(message(1, 42), start(2, 3), condition(3, 4, 5), end(4), end(5)),
			wantErr: graph.ErrInvalidTopology,
		},
		{
			name:    "duplicate node id",
			nodes:   nodes(start(1, 2), end(2), end(2)),
			wantErr: graph.ErrInvalidTopology,
		},
		{
			name:    "unknown node type",
			nodes:   nodes(start(1, 2), storage.Node{ID: 2, Type: "email"}),
			wantErr: graph.ErrInvalidTopology,
		},
		{
			name:    "message without successor",
			nodes:   nodes(start(1, 2), storage.Node{ID: 2, Type: storage.NodeTypeMessage}, end(3)),
			wantErr: graph.ErrInvalidTopology,
		},
		{
			name:    "condition missing a branch",
			nodes:   nodes(start(1, 2), message(2, 3), storage.Node{ID: 3, Type: storage.NodeTypeCondition, YesNodeID: idPtr(4)}, end(4)),
			wantErr: graph.ErrInvalidTopology,
		},
		{
			name:    "condition branches to the same node",
			nodes:   nodes(start(1, 2), message(2, 3), condition(3, 4, 4), end(4)),
			wantErr: graph.ErrInvalidTopology,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g, err := graph.Build(tt.nodes)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				var gerr *graph.Error
				if !errors.As(err, &gerr) {
					t.Fatalf("expected *graph.Error, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := g.Edges(); !reflect.DeepEqual(got, tt.wantEdges) {
				t.Errorf("edges:\n got  %v\n want %v", got, tt.wantEdges)
			}
		})
	}
}

func TestBuild_EntryAndTerminal(t *testing.T) {
	t.Parallel()
	g, err := graph.Build(nodes(end(9), message(4, 9), start(2, 4)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry, ok := g.Entry(); !ok || entry != 2 {
		t.Errorf("entry: got %d (%v), want 2", entry, ok)
	}
	if term, ok := g.Terminal(); !ok || term != 9 {
		t.Errorf("terminal: got %d (%v), want 9", term, ok)
	}
	if got, want := g.Vertices(), []int64{9, 4, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("vertices: got %v, want %v", got, want)
	}
	if got := g.Successors(4); !reflect.DeepEqual(got, []int64{9}) {
		t.Errorf("successors of 4: got %v", got)
	}
}

func TestBuild_StartWithoutSuccessorIsNotEntry(t *testing.T) {
	t.Parallel()
	g, err := graph.Build(nodes(storage.Node{ID: 1, Type: storage.NodeTypeStart}, end(2)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := g.Entry(); ok {
		t.Error("start node without successor should not be recorded as entry")
	}
	if len(g.Edges()) != 0 {
		t.Errorf("expected no edges, got %v", g.Edges())
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		nodes   []storage.Node
		wantErr error
	}{
		{
			name:  "valid",
			nodes: nodes(start(1, 2), message(2, 3), end(3)),
		},
		{
			name:    "no end node",
			nodes:   nodes(start(1, 2), message(2, 2)),
			wantErr: graph.ErrMissingTerminal,
		},
		{
			name:    "end unreachable from start",
			nodes:   nodes(start(1, 2), message(2, 2), end(3)),
			wantErr: graph.ErrUnreachableTerminal,
		},
		{
			name:    "end only reachable from a disconnected subgraph",
			nodes:   nodes(start(1, 2), message(2, 2), message(4, 3), end(3)),
			wantErr: graph.ErrUnreachableTerminal,
		},
		{
			name:    "lone start and lone end",
			nodes:   nodes(storage.Node{ID: 1, Type: storage.NodeTypeStart}, end(2)),
			wantErr: graph.ErrEmptyGraph,
		},
		{
			name:    "lone end",
			nodes:   nodes(end(1)),
			wantErr: graph.ErrEmptyGraph,
		},
		{
			name:    "edges but no start node",
			nodes:   nodes(message(1, 2), end(2)),
			wantErr: graph.ErrMissingEntry,
		},
		{
			name:    "empty workflow",
			nodes:   nil,
			wantErr: graph.ErrMissingTerminal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g, err := graph.Build(tt.nodes)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			err = graph.Validate(g)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		nodes    []storage.Node
		wantPath []int64
	}{
		{
			name:     "start straight to end",
			nodes:    nodes(start(1, 2), end(2)),
			wantPath: []int64{1, 2},
		},
		{
			name:     "shorter no branch wins",
			nodes:    nodes(start(1, 2), message(2, 4), condition(4, 5, 3), message(5, 3), end(3)),
			wantPath: []int64{1, 2, 4, 3},
		},
		{
			name:     "equal branches tie-break on yes",
			nodes:    nodes(start(1, 2), message(2, 3), condition(3, 4, 5), message(4, 6), message(5, 6), end(6)),
			wantPath: []int64{1, 2, 3, 4, 6},
		},
		{
			name:     "cycle does not trap the search",
			nodes:    nodes(start(1, 2), message(2, 3), condition(3, 2, 4), end(4)),
			wantPath: []int64{1, 2, 3, 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g, err := graph.Build(tt.nodes)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			if err := graph.Validate(g); err != nil {
				t.Fatalf("validate failed: %v", err)
			}
			seq, err := graph.Resolve(g)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(seq.Path, tt.wantPath) {
				t.Errorf("path: got %v, want %v", seq.Path, tt.wantPath)
			}
			if len(seq.Edges) != len(g.Edges()) {
				t.Errorf("expected all %d edges, got %d", len(g.Edges()), len(seq.Edges))
			}
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	t.Parallel()
	ns := nodes(start(1, 2), message(2, 3), condition(3, 4, 5), message(4, 6), message(5, 6), end(6))

	var first *graph.Sequence
	for i := 0; i < 5; i++ {
		g, err := graph.Build(ns)
		if err != nil {
			t.Fatalf("build failed: %v", err)
		}
		seq, err := graph.Resolve(g)
		if err != nil {
			t.Fatalf("resolve failed: %v", err)
		}
		if first == nil {
			first = seq
			continue
		}
		if !reflect.DeepEqual(first, seq) {
			t.Fatalf("run %d differs:\n got  %+v\n want %+v", i, seq, first)
		}
	}
}

func TestResolve_NoPathFound(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		nodes []storage.Node
	}{
		{name: "unreachable end", nodes: nodes(start(1, 2), message(2, 2), end(3))},
		{name: "no start", nodes: nodes(message(1, 2), end(2))},
		{name: "no end", nodes: nodes(start(1, 2), message(2, 2))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g, err := graph.Build(tt.nodes)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			if _, err := graph.Resolve(g); !errors.Is(err, graph.ErrNoPathFound) {
				t.Errorf("expected ErrNoPathFound, got %v", err)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	t.Parallel()
	_, err := graph.Build(nodes(start(1, 2), condition(2, 3, 4)))
	want := "invalid topology: node 1: condition node cannot directly follow start"
	if err == nil || err.Error() != want {
		t.Errorf("got %v, want %q", err, want)
	}
}
