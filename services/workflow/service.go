package workflow

import (
	"fmt"

	"github.com/gorilla/mux"

	"workflow-sequence/api/pkg/httpx"
	"workflow-sequence/api/services/storage"
)

// Service handles HTTP requests for workflow operations.
// It depends on the Storage interface rather than a concrete implementation,
// keeping the HTTP layer decoupled from persistence.
type Service struct {
	storage storage.Storage
}

// NewService creates a workflow Service with the given storage backend.
func NewService(store storage.Storage) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("service: store cannot be nil")
	}
	return &Service{storage: store}, nil
}

func (s *Service) LoadRoutes(parentRouter *mux.Router) {
	router := parentRouter.PathPrefix("/workflows").Subrouter()
	router.StrictSlash(false)
	router.Use(httpx.JSONMiddleware)

	router.HandleFunc("", s.HandleCreateWorkflow).Methods("POST")
	router.HandleFunc("", s.HandleListWorkflows).Methods("GET")
	router.HandleFunc("/{id}", s.HandleGetWorkflow).Methods("GET")
	router.HandleFunc("/{id}", s.HandleUpdateWorkflow).Methods("PUT")
	router.HandleFunc("/{id}", s.HandleDeleteWorkflow).Methods("DELETE")
	router.HandleFunc("/{id}/sequence", s.HandleGetSequence).Methods("GET")
}
