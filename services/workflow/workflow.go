package workflow

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"workflow-sequence/api/pkg/httpx"
	"workflow-sequence/api/services/graph"
	"workflow-sequence/api/services/storage"
)

// workflowRequest is the body of create and update calls.
type workflowRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// parseID reads the {id} route variable. It writes the 400 itself and
// returns false when the value is not a positive integer.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		slog.Warn("invalid workflow id", "id", raw, "requestId", httpx.RequestID(r))
		httpx.WriteError(w, "INVALID_ID", "invalid workflow id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// writeStoreError maps storage errors onto responses. Unknown errors are
// logged and reported as 500 without leaking details.
func writeStoreError(w http.ResponseWriter, r *http.Request, id int64, op string, err error) {
	rid := httpx.RequestID(r)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		slog.Warn("workflow not found", "id", id, "op", op, "requestId", rid)
		httpx.WriteError(w, "NOT_FOUND", "workflow not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrConflict):
		slog.Warn("workflow conflict", "id", id, "op", op, "requestId", rid, "error", err)
		httpx.WriteError(w, "CONFLICT", err.Error(), http.StatusConflict)
	default:
		slog.Error("failed to "+op+" workflow", "id", id, "requestId", rid, "error", err)
		httpx.WriteError(w, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
	}
}

func (s *Service) HandleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req workflowRequest
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}

	wf, err := s.storage.CreateWorkflow(r.Context(), req.Name)
	if err != nil {
		writeStoreError(w, r, 0, "create", err)
		return
	}
	slog.Info("workflow created", "id", wf.ID, "requestId", httpx.RequestID(r))
	httpx.WriteJSON(w, r, http.StatusCreated, wf)
}

func (s *Service) HandleListWorkflows(w http.ResponseWriter, r *http.Request) {
	wfs, err := s.storage.ListWorkflows(r.Context())
	if err != nil {
		writeStoreError(w, r, 0, "list", err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, wfs)
}

// HandleGetWorkflow returns the workflow header (id, name, timestamps).
func (s *Service) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	slog.Debug("returning workflow", "id", id, "requestId", httpx.RequestID(r))

	wf, err := s.storage.GetWorkflow(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, id, "get", err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, wf)
}

func (s *Service) HandleUpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req workflowRequest
	if !httpx.DecodeAndValidate(w, r, &req) {
		return
	}

	wf, err := s.storage.UpdateWorkflow(r.Context(), id, req.Name)
	if err != nil {
		writeStoreError(w, r, id, "update", err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, wf)
}

// HandleDeleteWorkflow removes the workflow together with all its nodes.
func (s *Service) HandleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := s.storage.DeleteWorkflow(r.Context(), id); err != nil {
		writeStoreError(w, r, id, "delete", err)
		return
	}
	slog.Info("workflow deleted", "id", id, "requestId", httpx.RequestID(r))
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetSequence builds the workflow graph from its stored nodes and
// returns the start-to-end path along with every edge in the graph.
// Structural problems are the client's to fix and come back as 422 with
// a code naming the rule that failed.
func (s *Service) HandleGetSequence(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	rid := httpx.RequestID(r)
	slog.Debug("resolving workflow sequence", "id", id, "requestId", rid)

	seq, err := Run(r.Context(), s.storage, id)
	if err != nil {
		if code, status, ok := classifyGraphError(err); ok {
			slog.Warn("workflow graph rejected", "id", id, "requestId", rid, "code", code, "error", err)
			httpx.WriteError(w, code, err.Error(), status)
			return
		}
		if errors.Is(err, graph.ErrNoPathFound) {
			// Validate accepted a graph Resolve could not walk.
			slog.Error("validated workflow has no path", "id", id, "requestId", rid, "error", err)
			httpx.WriteError(w, "NO_PATH_FOUND", "internal server error", http.StatusInternalServerError)
			return
		}
		writeStoreError(w, r, id, "sequence", err)
		return
	}

	slog.Debug("workflow sequence resolved", "id", id, "requestId", rid, "pathLength", len(seq.Path), "edges", len(seq.Edges))
	httpx.WriteJSON(w, r, http.StatusOK, seq)
}
