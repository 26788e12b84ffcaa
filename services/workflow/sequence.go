package workflow

import (
	"context"
	"errors"
	"net/http"

	"workflow-sequence/api/services/graph"
	"workflow-sequence/api/services/storage"
)

// NodeLoader is the slice of storage.Storage that Run needs.
type NodeLoader interface {
	GetWorkflowNodes(ctx context.Context, workflowID int64) ([]storage.Node, error)
}

// Run loads the workflow's nodes, builds and validates the graph, and
// resolves the path from start to end. The store reports a missing
// workflow as storage.ErrNotFound before any graph work happens. Errors
// from the graph package are returned unchanged and nothing is kept
// between calls.
func Run(ctx context.Context, loader NodeLoader, workflowID int64) (*graph.Sequence, error) {
	nodes, err := loader.GetWorkflowNodes(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	g, err := graph.Build(nodes)
	if err != nil {
		return nil, err
	}
	if err := graph.Validate(g); err != nil {
		return nil, err
	}
	return graph.Resolve(g)
}

// graphErrorCodes maps structural failures to the error code returned to
// clients. They are the caller's fault, so they share 422.
var graphErrorCodes = []struct {
	kind error
	code string
}{
	{graph.ErrInvalidTopology, "INVALID_TOPOLOGY"},
	{graph.ErrDanglingReference, "DANGLING_REFERENCE"},
	{graph.ErrMissingTerminal, "MISSING_TERMINAL"},
	{graph.ErrMissingEntry, "MISSING_ENTRY"},
	{graph.ErrUnreachableTerminal, "UNREACHABLE_TERMINAL"},
	{graph.ErrEmptyGraph, "EMPTY_GRAPH"},
}

// classifyGraphError returns the response code and status for a graph
// error. ok is false for anything that is not a user-correctable
// structural problem, including ErrNoPathFound.
func classifyGraphError(err error) (code string, status int, ok bool) {
	for _, c := range graphErrorCodes {
		if errors.Is(err, c.kind) {
			return c.code, http.StatusUnprocessableEntity, true
		}
	}
	return "", 0, false
}
