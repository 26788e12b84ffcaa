package storage

import "time"

// NodeType tags the variant of a Node. The set is closed: the graph builder
// switches on it and rejects anything it does not recognise.
type NodeType string

const (
	NodeTypeStart     NodeType = "start"
	NodeTypeMessage   NodeType = "message"
	NodeTypeCondition NodeType = "condition"
	NodeTypeEnd       NodeType = "end"
)

// Valid reports whether t is one of the four known node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeStart, NodeTypeMessage, NodeTypeCondition, NodeTypeEnd:
		return true
	}
	return false
}

// NodeStatus is the delivery state of a message node.
type NodeStatus string

const (
	NodeStatusOpen    NodeStatus = "Open"
	NodeStatusSent    NodeStatus = "Sent"
	NodeStatusPending NodeStatus = "Pending"
)

// Workflow is the container that exclusively owns a set of nodes.
// Deleting a workflow deletes its nodes.
type Workflow struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	ModifiedAt time.Time `json:"modifiedAt" db:"modified_at"`
}

// Node is a persisted workflow step. Type selects which of the optional
// fields are meaningful:
//   - start:     NextNodeID
//   - message:   Status, Message, NextNodeID
//   - condition: Condition, YesNodeID, NoNodeID
//   - end:       none
//
// All variants share one table; fields that do not belong to the variant
// are stored as NULL.
type Node struct {
	ID         int64       `json:"id" db:"id"`
	WorkflowID int64       `json:"workflowId" db:"workflow_id"`
	Type       NodeType    `json:"type" db:"node_type"`
	NextNodeID *int64      `json:"nextNodeId,omitempty" db:"next_node_id"`
	Status     *NodeStatus `json:"status,omitempty" db:"status"`
	Message    *string     `json:"message,omitempty" db:"message"`
	Condition  *string     `json:"condition,omitempty" db:"condition"`
	YesNodeID  *int64      `json:"yesNodeId,omitempty" db:"yes_node_id"`
	NoNodeID   *int64      `json:"noNodeId,omitempty" db:"no_node_id"`
}
