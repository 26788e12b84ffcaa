package nodes

import (
	"fmt"
	"net/http"

	"workflow-sequence/api/pkg/httpx"
	"workflow-sequence/api/services/storage"
)

// nodeRequest is implemented by the request body of each node type.
// toNode converts the validated body into a storage record of that type.
type nodeRequest interface {
	toNode() *storage.Node
}

// StartNodeRequest creates or updates a start node. NextNodeID may be
// left out while the rest of the workflow is still being drafted.
type StartNodeRequest struct {
	WorkflowID int64  `json:"workflowId" validate:"required,gt=0"`
	NextNodeID *int64 `json:"nextNodeId" validate:"omitempty,gt=0"`
}

func (r *StartNodeRequest) toNode() *storage.Node {
	return &storage.Node{
		WorkflowID: r.WorkflowID,
		Type:       storage.NodeTypeStart,
		NextNodeID: r.NextNodeID,
	}
}

type MessageNodeRequest struct {
	WorkflowID int64              `json:"workflowId" validate:"required,gt=0"`
	Message    *string            `json:"message" validate:"required"`
	Status     storage.NodeStatus `json:"status" validate:"required,oneof=Open Sent Pending"`
	NextNodeID *int64             `json:"nextNodeId" validate:"required,gt=0"`
}

func (r *MessageNodeRequest) toNode() *storage.Node {
	status := r.Status
	return &storage.Node{
		WorkflowID: r.WorkflowID,
		Type:       storage.NodeTypeMessage,
		Status:     &status,
		Message:    r.Message,
		NextNodeID: r.NextNodeID,
	}
}

// ConditionNodeRequest carries the predicate text and both branch
// targets. The predicate is stored as-is and never evaluated.
type ConditionNodeRequest struct {
	WorkflowID int64  `json:"workflowId" validate:"required,gt=0"`
	Condition  string `json:"condition" validate:"required"`
	YesNodeID  *int64 `json:"yesNodeId" validate:"required,gt=0"`
	NoNodeID   *int64 `json:"noNodeId" validate:"required,gt=0"`
}

func (r *ConditionNodeRequest) toNode() *storage.Node {
	condition := r.Condition
	return &storage.Node{
		WorkflowID: r.WorkflowID,
		Type:       storage.NodeTypeCondition,
		Condition:  &condition,
		YesNodeID:  r.YesNodeID,
		NoNodeID:   r.NoNodeID,
	}
}

type EndNodeRequest struct {
	WorkflowID int64 `json:"workflowId" validate:"required,gt=0"`
}

func (r *EndNodeRequest) toNode() *storage.Node {
	return &storage.Node{WorkflowID: r.WorkflowID, Type: storage.NodeTypeEnd}
}

// newRequest returns an empty request body for a valid node type.
// Adding a node type means adding a case here and a request struct above.
func newRequest(t storage.NodeType) nodeRequest {
	switch t {
	case storage.NodeTypeStart:
		return &StartNodeRequest{}
	case storage.NodeTypeMessage:
		return &MessageNodeRequest{}
	case storage.NodeTypeCondition:
		return &ConditionNodeRequest{}
	default:
		return &EndNodeRequest{}
	}
}

// decodeNode reads and validates the body for node type t. It writes the
// error response itself and returns false on failure.
func decodeNode(w http.ResponseWriter, r *http.Request, t storage.NodeType) (*storage.Node, bool) {
	if !t.Valid() {
		httpx.WriteError(w, "INVALID_NODE_TYPE", fmt.Sprintf("unknown node type: %s", t), http.StatusBadRequest)
		return nil, false
	}
	req := newRequest(t)
	if !httpx.DecodeAndValidate(w, r, req) {
		return nil, false
	}
	return req.toNode(), true
}
