package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"

	"workflow-sequence/api/pkg/db"
)

func TestDefaultConfig(t *testing.T) {
	cfg := db.DefaultConfig("postgres://localhost/wf")
	if cfg.URI != "postgres://localhost/wf" {
		t.Errorf("expected URI to be kept, got %q", cfg.URI)
	}
	if cfg.MinConns > cfg.MaxConns {
		t.Errorf("min conns %d exceeds max conns %d", cfg.MinConns, cfg.MaxConns)
	}
}

func TestMigrate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		execErr error
		wantErr bool
	}{
		{name: "schema applied"},
		{name: "exec failure is wrapped", execErr: errors.New("permission denied"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create mock pool: %v", err)
			}
			defer mock.Close()

			exp := mock.ExpectExec("CREATE TABLE IF NOT EXISTS workflows")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("CREATE", 0))
			}

			err = db.Migrate(context.Background(), mock)
			if tt.wantErr {
				if !errors.Is(err, tt.execErr) {
					t.Errorf("expected wrapped %v, got %v", tt.execErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet mock expectations: %v", err)
			}
		})
	}
}
