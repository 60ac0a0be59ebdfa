package config

import "testing"

func TestS3ConfigIsConfigured(t *testing.T) {
	t.Run("empty config is not configured", func(t *testing.T) {
		cfg := S3Config{}
		if cfg.IsConfigured() {
			t.Fatal("expected IsConfigured=false for empty config")
		}
	})

	t.Run("required fields set is configured", func(t *testing.T) {
		cfg := S3Config{
			Endpoint:        "https://storage.example.com",
			Region:          "ap-northeast-2",
			Bucket:          "careview-exports",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
		}
		if !cfg.IsConfigured() {
			t.Fatal("expected IsConfigured=true when all required fields are set")
		}
	})
}

func TestS3ConfigMissingRequired(t *testing.T) {
	cfg := S3Config{
		Endpoint: "https://storage.example.com",
		Bucket:   "careview-exports",
	}
	missing := cfg.MissingRequired()

	want := []string{"S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY"}
	if len(missing) != len(want) {
		t.Fatalf("expected %d missing fields, got %d (%v)", len(want), len(missing), missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("expected missing[%d]=%s, got %s", i, want[i], missing[i])
		}
	}
}

func TestS3ConfigDiagnostics(t *testing.T) {
	if level, code, _ := (S3Config{}).Diagnostics(); level != "INFO" || code != "s3_not_configured" {
		t.Fatalf("expected INFO/s3_not_configured, got %s/%s", level, code)
	}
	if level, code, _ := (S3Config{Bucket: "b"}).Diagnostics(); level != "WARN" || code != "s3_partial_config" {
		t.Fatalf("expected WARN/s3_partial_config, got %s/%s", level, code)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "ENV", "PORT", "LOG_LEVEL", "UPSTREAM_BASE_URL",
		"UPSTREAM_WEEKLY_RECORDS_PATH", "UPSTREAM_EXPECTED_EFFECT_PATH",
		"UPSTREAM_TIMEOUT_SECONDS", "AUTH_MODE", "AUTH_REQUIRED", "BLOB_MODE",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Env != "local" {
		t.Errorf("expected env=local, got %s", cfg.Env)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected port=8080, got %d", cfg.Port)
	}
	if cfg.Upstream.ExpectedEffectPath != "/api/expected-effect" {
		t.Errorf("unexpected expected-effect path %q", cfg.Upstream.ExpectedEffectPath)
	}
	if cfg.Upstream.TimeoutSeconds != 0 {
		t.Errorf("expected no upstream timeout by default, got %d", cfg.Upstream.TimeoutSeconds)
	}
	if cfg.AuthMode != AuthModeNone || cfg.AuthRequired {
		t.Errorf("expected auth none/not required, got %s/%t", cfg.AuthMode, cfg.AuthRequired)
	}
	if cfg.Blob.Mode != BlobModeLocal {
		t.Errorf("expected blob mode local, got %s", cfg.Blob.Mode)
	}
}

func TestLoadUpstreamOverrides(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "https://api.example.com/")
	t.Setenv("UPSTREAM_WEEKLY_RECORDS_PATH", "api/records/weekly")
	t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "-3")
	t.Setenv("AUTH_MODE", "bogus")

	cfg := Load()

	if cfg.Upstream.BaseURL != "https://api.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.WeeklyRecordsPath != "/api/records/weekly" {
		t.Errorf("expected leading slash added, got %s", cfg.Upstream.WeeklyRecordsPath)
	}
	if cfg.Upstream.TimeoutSeconds != 0 {
		t.Errorf("expected negative timeout clamped to 0, got %d", cfg.Upstream.TimeoutSeconds)
	}
	if cfg.AuthMode != AuthModeNone {
		t.Errorf("expected unknown auth mode to fall back to none, got %s", cfg.AuthMode)
	}
}
