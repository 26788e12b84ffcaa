package nodes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"workflow-sequence/api/pkg/httpx"
	"workflow-sequence/api/services/storage"
)

const typePattern = "{type:start|message|condition|end}"

// Service handles HTTP requests for creating, reading, updating and
// deleting typed workflow nodes.
type Service struct {
	storage storage.Storage
}

// NewService creates a node Service with the given storage backend.
func NewService(store storage.Storage) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("service: store cannot be nil")
	}
	return &Service{storage: store}, nil
}

func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	router := parentRouter.PathPrefix("/nodes").Subrouter()
	router.StrictSlash(false)
	router.Use(httpx.JSONMiddleware)

	router.HandleFunc("/"+typePattern, s.HandleCreateNode).Methods("POST")
	router.HandleFunc("/{id:[0-9]+}", s.HandleGetNode).Methods("GET")
	router.HandleFunc("/"+typePattern+"/{id:[0-9]+}", s.HandleUpdateNode).Methods("PUT")
	router.HandleFunc("/{id:[0-9]+}", s.HandleDeleteNode).Methods("DELETE")
}

func parseNodeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		slog.Warn("invalid node id", "id", raw, "requestId", httpx.RequestID(r))
		httpx.WriteError(w, "INVALID_ID", "invalid node id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, r *http.Request, id int64, op string, err error) {
	rid := httpx.RequestID(r)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		slog.Warn("node or workflow not found", "id", id, "op", op, "requestId", rid)
		httpx.WriteError(w, "NOT_FOUND", "node or workflow not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrConflict):
		slog.Warn("node conflict", "id", id, "op", op, "requestId", rid, "error", err)
		httpx.WriteError(w, "CONFLICT", err.Error(), http.StatusConflict)
	default:
		slog.Error("failed to "+op+" node", "id", id, "requestId", rid, "error", err)
		httpx.WriteError(w, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
	}
}

// HandleCreateNode stores a new node of the type named in the path.
// A workflow may hold only one start and one end node.
func (s *Service) HandleCreateNode(w http.ResponseWriter, r *http.Request) {
	t := storage.NodeType(mux.Vars(r)["type"])
	n, ok := decodeNode(w, r, t)
	if !ok {
		return
	}

	created, err := s.storage.CreateNode(r.Context(), n)
	if err != nil {
		writeStoreError(w, r, 0, "create", err)
		return
	}
	slog.Info("node created", "id", created.ID, "type", created.Type, "workflowId", created.WorkflowID, "requestId", httpx.RequestID(r))
	httpx.WriteJSON(w, r, http.StatusCreated, created)
}

func (s *Service) HandleGetNode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(w, r)
	if !ok {
		return
	}

	n, err := s.storage.GetNode(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, id, "get", err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, n)
}

// HandleUpdateNode replaces a node's fields. The type in the path must
// match the stored node's type.
func (s *Service) HandleUpdateNode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(w, r)
	if !ok {
		return
	}
	t := storage.NodeType(mux.Vars(r)["type"])
	n, ok := decodeNode(w, r, t)
	if !ok {
		return
	}

	updated, err := s.storage.UpdateNode(r.Context(), id, n)
	if err != nil {
		writeStoreError(w, r, id, "update", err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, updated)
}

func (s *Service) HandleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseNodeID(w, r)
	if !ok {
		return
	}

	if err := s.storage.DeleteNode(r.Context(), id); err != nil {
		writeStoreError(w, r, id, "delete", err)
		return
	}
	slog.Info("node deleted", "id", id, "requestId", httpx.RequestID(r))
	w.WriteHeader(http.StatusNoContent)
}
