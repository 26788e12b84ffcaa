package storagemock

import (
	"context"
	"time"

	"workflow-sequence/api/services/storage"
)

// StorageMock implements storage.Storage with overridable function fields.
// Unset fields fall back to a small canned workflow so handler tests only
// stub the calls they care about.
type StorageMock struct {
	CreateWorkflowMock   func(ctx context.Context, name string) (*storage.Workflow, error)
	GetWorkflowMock      func(ctx context.Context, id int64) (*storage.Workflow, error)
	ListWorkflowsMock    func(ctx context.Context) ([]storage.Workflow, error)
	UpdateWorkflowMock   func(ctx context.Context, id int64, name string) (*storage.Workflow, error)
	DeleteWorkflowMock   func(ctx context.Context, id int64) error
	CreateNodeMock       func(ctx context.Context, n *storage.Node) (*storage.Node, error)
	GetNodeMock          func(ctx context.Context, id int64) (*storage.Node, error)
	UpdateNodeMock       func(ctx context.Context, id int64, n *storage.Node) (*storage.Node, error)
	DeleteNodeMock       func(ctx context.Context, id int64) error
	GetWorkflowNodesMock func(ctx context.Context, workflowID int64) ([]storage.Node, error)
}

var _ storage.Storage = (*StorageMock)(nil)

func ptr[T any](v T) *T { return &v }

func (m *StorageMock) CreateWorkflow(ctx context.Context, name string) (*storage.Workflow, error) {
	if m != nil && m.CreateWorkflowMock != nil {
		return m.CreateWorkflowMock(ctx, name)
	}
	now := time.Now()
	return &storage.Workflow{ID: 1, Name: name, CreatedAt: now, ModifiedAt: now}, nil
}

func (m *StorageMock) GetWorkflow(ctx context.Context, id int64) (*storage.Workflow, error) {
	if m != nil && m.GetWorkflowMock != nil {
		return m.GetWorkflowMock(ctx, id)
	}
	return &storage.Workflow{ID: id, Name: "Greeting Flow"}, nil
}

func (m *StorageMock) ListWorkflows(ctx context.Context) ([]storage.Workflow, error) {
	if m != nil && m.ListWorkflowsMock != nil {
		return m.ListWorkflowsMock(ctx)
	}
	return []storage.Workflow{{ID: 1, Name: "Greeting Flow"}}, nil
}

func (m *StorageMock) UpdateWorkflow(ctx context.Context, id int64, name string) (*storage.Workflow, error) {
	if m != nil && m.UpdateWorkflowMock != nil {
		return m.UpdateWorkflowMock(ctx, id, name)
	}
	return &storage.Workflow{ID: id, Name: name}, nil
}

func (m *StorageMock) DeleteWorkflow(ctx context.Context, id int64) error {
	if m != nil && m.DeleteWorkflowMock != nil {
		return m.DeleteWorkflowMock(ctx, id)
	}
	return nil
}

func (m *StorageMock) CreateNode(ctx context.Context, n *storage.Node) (*storage.Node, error) {
	if m != nil && m.CreateNodeMock != nil {
		return m.CreateNodeMock(ctx, n)
	}
	created := *n
	created.ID = 1
	return &created, nil
}

func (m *StorageMock) GetNode(ctx context.Context, id int64) (*storage.Node, error) {
	if m != nil && m.GetNodeMock != nil {
		return m.GetNodeMock(ctx, id)
	}
	return &storage.Node{ID: id, WorkflowID: 1, Type: storage.NodeTypeEnd}, nil
}

func (m *StorageMock) UpdateNode(ctx context.Context, id int64, n *storage.Node) (*storage.Node, error) {
	if m != nil && m.UpdateNodeMock != nil {
		return m.UpdateNodeMock(ctx, id, n)
	}
	updated := *n
	updated.ID = id
	return &updated, nil
}

func (m *StorageMock) DeleteNode(ctx context.Context, id int64) error {
	if m != nil && m.DeleteNodeMock != nil {
		return m.DeleteNodeMock(ctx, id)
	}
	return nil
}

// GetWorkflowNodes defaults to a three-node start -> message -> end flow.
func (m *StorageMock) GetWorkflowNodes(ctx context.Context, workflowID int64) ([]storage.Node, error) {
	if m != nil && m.GetWorkflowNodesMock != nil {
		return m.GetWorkflowNodesMock(ctx, workflowID)
	}
	status := storage.NodeStatusOpen
	return []storage.Node{
		{ID: 1, WorkflowID: workflowID, Type: storage.NodeTypeStart, NextNodeID: ptr[int64](2)},
		{ID: 2, WorkflowID: workflowID, Type: storage.NodeTypeMessage, Status: &status, Message: ptr("hello"), NextNodeID: ptr[int64](3)},
		{ID: 3, WorkflowID: workflowID, Type: storage.NodeTypeEnd},
	}, nil
}
