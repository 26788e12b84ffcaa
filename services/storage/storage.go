package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queryTimeout bounds every storage call so a stuck connection cannot
// hold an HTTP handler open.
const queryTimeout = 5 * time.Second

// DB abstracts the database operations used by the storage layer.
// Satisfied by *pgxpool.Pool in production and pgxmock in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Storage defines the interface for workflow and node data access.
// The workflow and node services depend on it rather than on Postgres,
// which keeps handlers testable with storagemock.
type Storage interface {
	CreateWorkflow(ctx context.Context, name string) (*Workflow, error)
	GetWorkflow(ctx context.Context, id int64) (*Workflow, error)
	ListWorkflows(ctx context.Context) ([]Workflow, error)
	UpdateWorkflow(ctx context.Context, id int64, name string) (*Workflow, error)
	DeleteWorkflow(ctx context.Context, id int64) error

	CreateNode(ctx context.Context, n *Node) (*Node, error)
	GetNode(ctx context.Context, id int64) (*Node, error)
	UpdateNode(ctx context.Context, id int64, n *Node) (*Node, error)
	DeleteNode(ctx context.Context, id int64) error

	// GetWorkflowNodes returns every node owned by the workflow, ordered by
	// id, read from a single consistent snapshot. It returns ErrNotFound
	// when the workflow itself does not exist.
	GetWorkflowNodes(ctx context.Context, workflowID int64) ([]Node, error)
}

// PgStorage implements Storage using PostgreSQL.
type PgStorage struct {
	DB DB
}

// NewInstance creates a new PostgreSQL-backed Storage implementation.
func NewInstance(db *pgxpool.Pool) (Storage, error) {
	if db == nil {
		return nil, fmt.Errorf("repository: db connection cannot be nil")
	}
	return &PgStorage{DB: db}, nil
}

const nodeColumns = `id, workflow_id, node_type, next_node_id, status, message, condition, yes_node_id, no_node_id`

// rowScanner is the subset of pgx.Row and pgx.Rows used by scanNode.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*Node, error) {
	var (
		n         Node
		nodeType  string
		status    *string
		message   *string
		condition *string
	)
	if err := row.Scan(
		&n.ID,
		&n.WorkflowID,
		&nodeType,
		&n.NextNodeID,
		&status,
		&message,
		&condition,
		&n.YesNodeID,
		&n.NoNodeID,
	); err != nil {
		return nil, err
	}
	n.Type = NodeType(nodeType)
	if status != nil {
		s := NodeStatus(*status)
		n.Status = &s
	}
	n.Message = message
	n.Condition = condition
	return &n, nil
}

// nodeArgs flattens the variant fields of n into query arguments in the
// order workflow_id, node_type, next_node_id, status, message, condition,
// yes_node_id, no_node_id.
func nodeArgs(n *Node) []any {
	var status *string
	if n.Status != nil {
		s := string(*n.Status)
		status = &s
	}
	return []any{
		n.WorkflowID,
		string(n.Type),
		n.NextNodeID,
		status,
		n.Message,
		n.Condition,
		n.YesNodeID,
		n.NoNodeID,
	}
}

func (r *PgStorage) CreateWorkflow(ctx context.Context, name string) (*Workflow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	wf := &Workflow{Name: name}
	err := r.DB.QueryRow(ctx, `
        INSERT INTO workflows (name)
        VALUES ($1)
        RETURNING id, created_at, modified_at`,
		name).Scan(&wf.ID, &wf.CreatedAt, &wf.ModifiedAt)
	if err != nil {
		return nil, fmt.Errorf("insert workflow: %w", err)
	}
	return wf, nil
}

func (r *PgStorage) GetWorkflow(ctx context.Context, id int64) (*Workflow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return getWorkflow(ctx, r.DB, id)
}

// getWorkflow reads a workflow header through any querier, so it can run
// both on the pool and inside a transaction.
func getWorkflow(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, id int64) (*Workflow, error) {
	wf := &Workflow{ID: id}
	err := q.QueryRow(ctx, `
        SELECT name, created_at, modified_at
        FROM workflows
        WHERE id = $1`,
		id).Scan(&wf.Name, &wf.CreatedAt, &wf.ModifiedAt)
	if err != nil {
		return nil, translate(err)
	}
	return wf, nil
}

func (r *PgStorage) ListWorkflows(ctx context.Context) ([]Workflow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.DB.Query(ctx, `
        SELECT id, name, created_at, modified_at
        FROM workflows
        ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query workflows: %w", err)
	}
	defer rows.Close()

	workflows := []Workflow{}
	for rows.Next() {
		var wf Workflow
		if err := rows.Scan(&wf.ID, &wf.Name, &wf.CreatedAt, &wf.ModifiedAt); err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		workflows = append(workflows, wf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflows: %w", err)
	}
	return workflows, nil
}

func (r *PgStorage) UpdateWorkflow(ctx context.Context, id int64, name string) (*Workflow, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	wf := &Workflow{ID: id, Name: name}
	err := r.DB.QueryRow(ctx, `
        UPDATE workflows
        SET name = $2, modified_at = now()
        WHERE id = $1
        RETURNING created_at, modified_at`,
		id, name).Scan(&wf.CreatedAt, &wf.ModifiedAt)
	if err != nil {
		return nil, translate(err)
	}
	return wf, nil
}

// DeleteWorkflow removes the workflow; its nodes go with it through the
// ON DELETE CASCADE foreign key.
func (r *PgStorage) DeleteWorkflow(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.DB.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateNode inserts a node after checking that its workflow exists and,
// for start and end nodes, that the workflow does not already have one.
func (r *PgStorage) CreateNode(ctx context.Context, n *Node) (_ *Node, err error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = getWorkflow(ctx, tx, n.WorkflowID); err != nil {
		return nil, err
	}

	if n.Type == NodeTypeStart || n.Type == NodeTypeEnd {
		var exists bool
		err = tx.QueryRow(ctx, `
            SELECT EXISTS (
                SELECT 1 FROM nodes WHERE workflow_id = $1 AND node_type = $2
            )`,
			n.WorkflowID, string(n.Type)).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check existing %s node: %w", n.Type, err)
		}
		if exists {
			err = fmt.Errorf("%s node already exists for workflow %d: %w", n.Type, n.WorkflowID, ErrConflict)
			return nil, err
		}
	}

	created, err := scanNode(tx.QueryRow(ctx, `
        INSERT INTO nodes (workflow_id, node_type, next_node_id, status, message, condition, yes_node_id, no_node_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+nodeColumns,
		nodeArgs(n)...))
	if err != nil {
		err = translate(err)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

func (r *PgStorage) GetNode(ctx context.Context, id int64) (*Node, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	n, err := scanNode(r.DB.QueryRow(ctx, `
        SELECT `+nodeColumns+`
        FROM nodes
        WHERE id = $1`,
		id))
	if err != nil {
		return nil, translate(err)
	}
	return n, nil
}

// UpdateNode replaces every field of the stored node with n. The node
// type is fixed at creation; a payload of a different type is a conflict.
func (r *PgStorage) UpdateNode(ctx context.Context, id int64, n *Node) (_ *Node, err error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var storedType string
	err = tx.QueryRow(ctx, `SELECT node_type FROM nodes WHERE id = $1 FOR UPDATE`, id).Scan(&storedType)
	if err != nil {
		err = translate(err)
		return nil, err
	}
	if NodeType(storedType) != n.Type {
		err = fmt.Errorf("node %d is a %s node, not %s: %w", id, storedType, n.Type, ErrConflict)
		return nil, err
	}

	args := append([]any{id}, nodeArgs(n)...)
	updated, err := scanNode(tx.QueryRow(ctx, `
        UPDATE nodes
        SET workflow_id = $2, node_type = $3, next_node_id = $4, status = $5,
            message = $6, condition = $7, yes_node_id = $8, no_node_id = $9
        WHERE id = $1
        RETURNING `+nodeColumns,
		args...))
	if err != nil {
		err = translate(err)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

func (r *PgStorage) DeleteNode(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.DB.Exec(ctx, `DELETE FROM nodes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetWorkflowNodes reads the workflow header and its nodes inside one
// repeatable-read, read-only transaction, so a concurrent edit cannot
// produce a node set that never existed as a whole.
func (r *PgStorage) GetWorkflowNodes(ctx context.Context, workflowID int64) (_ []Node, err error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = getWorkflow(ctx, tx, workflowID); err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
        SELECT `+nodeColumns+`
        FROM nodes
        WHERE workflow_id = $1
        ORDER BY id`,
		workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := []Node{}
	for rows.Next() {
		var n *Node
		n, err = scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *n)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return nodes, nil
}
