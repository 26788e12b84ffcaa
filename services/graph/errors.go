package graph

import (
	"errors"
	"fmt"
)

// Error kinds. Compare with errors.Is; the concrete *Error carries the
// offending node and a human-readable detail.
var (
	ErrInvalidTopology     = errors.New("invalid topology")
	ErrDanglingReference   = errors.New("dangling reference")
	ErrMissingTerminal     = errors.New("workflow has no end node")
	ErrMissingEntry        = errors.New("workflow has no start node")
	ErrUnreachableTerminal = errors.New("end node is not reachable from start node")
	ErrEmptyGraph          = errors.New("workflow graph has no edges")

	// ErrNoPathFound means Resolve was handed a graph that Validate would
	// have rejected. It signals a programming error, not bad user input.
	ErrNoPathFound = errors.New("no path from start to end")
)

// Error is a structural failure found while building, validating or
// resolving a workflow graph.
type Error struct {
	Kind   error
	NodeID int64 // zero when the failure is not tied to one node
	Detail string
}

func (e *Error) Error() string {
	switch {
	case e.NodeID != 0 && e.Detail != "":
		return fmt.Sprintf("%s: node %d: %s", e.Kind, e.NodeID, e.Detail)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Unwrap() error { return e.Kind }

func topologyError(nodeID int64, detail string) error {
	return &Error{Kind: ErrInvalidTopology, NodeID: nodeID, Detail: detail}
}
