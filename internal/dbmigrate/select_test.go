package dbmigrate

import (
	"errors"
	"strings"
	"testing"

	"github.com/fdg312/careview/internal/config"
	"github.com/fdg312/careview/migrations"
)

func TestSelectTarget(t *testing.T) {
	all := &config.Config{
		DatabaseURLDirect: "postgres://direct",
		DatabaseURLRaw:    "postgres://url",
		DatabaseURLPooled: "postgres://pooled",
	}

	tests := []struct {
		name        string
		cfg         *config.Config
		directOnly  bool
		wantURL     string
		wantSource  string
		wantWarning bool
		wantErr     bool
	}{
		{name: "direct wins", cfg: all, wantURL: "postgres://direct", wantSource: "DATABASE_URL_DIRECT"},
		{name: "direct wins when required", cfg: all, directOnly: true, wantURL: "postgres://direct", wantSource: "DATABASE_URL_DIRECT"},
		{
			name:       "falls back to DATABASE_URL",
			cfg:        &config.Config{DatabaseURLRaw: "postgres://url", DatabaseURLPooled: "postgres://pooled"},
			wantURL:    "postgres://url",
			wantSource: "DATABASE_URL",
		},
		{
			name:        "pooled only warns",
			cfg:         &config.Config{DatabaseURLPooled: "postgres://pooled"},
			wantURL:     "postgres://pooled",
			wantSource:  "DATABASE_URL_POOLED",
			wantWarning: true,
		},
		{
			name:       "startup migrations need direct",
			cfg:        &config.Config{DatabaseURLRaw: "postgres://url", DatabaseURLPooled: "postgres://pooled"},
			directOnly: true,
			wantErr:    true,
		},
		{name: "nothing configured", cfg: &config.Config{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := SelectTarget(tt.cfg, tt.directOnly)
			if tt.wantErr {
				if !errors.Is(err, ErrNoDatabaseURL) {
					t.Fatalf("expected ErrNoDatabaseURL, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if target.URL != tt.wantURL || target.Source != tt.wantSource {
				t.Fatalf("got url=%q source=%q, want url=%q source=%q", target.URL, target.Source, tt.wantURL, tt.wantSource)
			}
			if (target.Warning != "") != tt.wantWarning {
				t.Fatalf("warning = %q, want warning=%v", target.Warning, tt.wantWarning)
			}
		})
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	var sqlFiles int
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") {
			sqlFiles++
		}
	}
	if sqlFiles == 0 {
		t.Fatal("expected at least one embedded .sql migration")
	}
}
