package main

import (
	"strings"
	"testing"

	"github.com/fdg312/careview/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestValidateProductionConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr []string
	}{
		{
			name: "local defaults",
			cfg:  config.Config{Env: "local", Blob: config.BlobConfig{Mode: config.BlobModeLocal}, JWTSecret: "change_me"},
		},
		{
			name:    "s3 incomplete",
			cfg:     config.Config{Env: "local", Blob: config.BlobConfig{Mode: config.BlobModeS3, S3: config.S3Config{Bucket: "b"}}},
			wantErr: []string{"S3_ENDPOINT", "S3_SECRET_ACCESS_KEY"},
		},
		{
			name: "production problems",
			cfg: config.Config{
				Env:       "production",
				AuthMode:  config.AuthModeDev,
				JWTSecret: "change_me",
				Upstream:  config.UpstreamConfig{BaseURL: "http://localhost:8000"},
			},
			wantErr: []string{"JWT_SECRET", "DATABASE_URL", "UPSTREAM_BASE_URL"},
		},
		{
			name: "production ok",
			cfg: config.Config{
				Env:         "production",
				AuthMode:    config.AuthModeNone,
				DatabaseURL: "postgres://db/careview",
				Upstream:    config.UpstreamConfig{BaseURL: "https://api.example.com"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateProductionConfig(&tt.cfg)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %s", err, want)
				}
			}
		})
	}
}

func TestStartupBannerHidesSecrets(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cfg := &config.Config{
		Env:         "local",
		JWTSecret:   "super-secret-value",
		DatabaseURL: "postgres://user:pw@db/careview",
		Blob: config.BlobConfig{
			Mode: config.BlobModeS3,
			S3:   config.S3Config{SecretAccessKey: "s3-secret"},
		},
	}

	printStartupBanner(zap.New(core), cfg)

	for _, e := range logs.All() {
		for k, v := range e.ContextMap() {
			s, _ := v.(string)
			if strings.Contains(s, "super-secret-value") || strings.Contains(s, "s3-secret") || strings.Contains(s, "pw@") {
				t.Errorf("secret leaked in %s.%s = %q", e.Message, k, s)
			}
		}
	}
	if logs.FilterMessage("blob").Len() != 1 {
		t.Error("expected blob banner entry")
	}
}

func TestSecretStatus(t *testing.T) {
	if got := secretStatus("", "change_me"); got != "not set" {
		t.Errorf("got %q", got)
	}
	if got := secretStatus("change_me", "change_me"); !strings.Contains(got, "DEFAULT") {
		t.Errorf("got %q", got)
	}
	if got := secretStatus("x", "change_me"); got != "set (custom)" {
		t.Errorf("got %q", got)
	}
}
