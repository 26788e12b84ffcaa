package config_test

import (
	"log/slog"
	"reflect"
	"testing"

	"workflow-sequence/api/pkg/config"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnv(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg config.Config)
	}{
		{
			name:    "missing DATABASE_URL",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name: "defaults applied",
			env:  map[string]string{"DATABASE_URL": "postgres://localhost/wf"},
			check: func(t *testing.T, cfg config.Config) {
				t.Helper()
				if cfg.HTTPAddr != ":8080" {
					t.Errorf("expected :8080, got %q", cfg.HTTPAddr)
				}
				if cfg.LogLevel != slog.LevelDebug {
					t.Errorf("expected debug level, got %v", cfg.LogLevel)
				}
				if cfg.DBMaxConns != 0 {
					t.Errorf("expected no pool override, got %d", cfg.DBMaxConns)
				}
			},
		},
		{
			name: "overrides parsed",
			env: map[string]string{
				"DATABASE_URL":    "postgres://localhost/wf",
				"HTTP_ADDR":       ":9090",
				"ALLOWED_ORIGINS": "http://a.test, http://b.test,",
				"LOG_LEVEL":       "warn",
				"DB_MAX_CONNS":    "25",
			},
			check: func(t *testing.T, cfg config.Config) {
				t.Helper()
				if cfg.HTTPAddr != ":9090" {
					t.Errorf("expected :9090, got %q", cfg.HTTPAddr)
				}
				if want := []string{"http://a.test", "http://b.test"}; !reflect.DeepEqual(cfg.AllowedOrigins, want) {
					t.Errorf("origins: got %v, want %v", cfg.AllowedOrigins, want)
				}
				if cfg.LogLevel != slog.LevelWarn {
					t.Errorf("expected warn level, got %v", cfg.LogLevel)
				}
				if cfg.DBMaxConns != 25 {
					t.Errorf("expected 25, got %d", cfg.DBMaxConns)
				}
			},
		},
		{
			name:    "bad log level",
			env:     map[string]string{"DATABASE_URL": "x", "LOG_LEVEL": "loud"},
			wantErr: true,
		},
		{
			name:    "bad pool size",
			env:     map[string]string{"DATABASE_URL": "x", "DB_MAX_CONNS": "-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := config.FromEnv(envMap(tt.env))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}
