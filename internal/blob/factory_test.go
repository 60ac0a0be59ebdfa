package blob

import (
	"context"
	"strings"
	"testing"

	appcfg "github.com/fdg312/careview/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func fullS3() appcfg.S3Config {
	return appcfg.S3Config{
		Endpoint:          "https://storage.example.com",
		Region:            "us-east-1",
		Bucket:            "careview-reports",
		AccessKeyID:       "AKIA",
		SecretAccessKey:   "secret",
		PresignTTLSeconds: 900,
	}
}

func TestNewBlobStoreLocalForced(t *testing.T) {
	logger, logs := observedLogger()

	store, mode, err := NewBlobStore(context.Background(), appcfg.BlobConfig{
		Mode: appcfg.BlobModeLocal,
		S3:   fullS3(),
	}, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal {
		t.Fatalf("expected mode=local, got %s", mode)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected memory store in local mode, got %T", store)
	}
	if logs.FilterField(zap.String("reason", "forced")).Len() != 1 {
		t.Fatalf("expected forced local mode log, got: %v", logs.All())
	}
}

func TestNewBlobStoreAutoEmptyS3FallsBackToLocal(t *testing.T) {
	logger, logs := observedLogger()

	store, mode, err := NewBlobStore(context.Background(), appcfg.BlobConfig{
		Mode: appcfg.BlobModeAuto,
	}, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal {
		t.Fatalf("expected mode=local fallback, got %s", mode)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected memory store on auto fallback, got %T", store)
	}
	if logs.FilterField(zap.String("code", "s3_not_configured")).Len() != 1 {
		t.Fatalf("expected s3_not_configured diagnostics, got: %v", logs.All())
	}
}

func TestNewBlobStoreAutoPartialS3Warns(t *testing.T) {
	logger, logs := observedLogger()

	_, mode, err := NewBlobStore(context.Background(), appcfg.BlobConfig{
		Mode: appcfg.BlobModeAuto,
		S3:   appcfg.S3Config{Endpoint: "https://storage.example.com"},
	}, logger)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeLocal {
		t.Fatalf("expected mode=local fallback, got %s", mode)
	}
	warns := logs.FilterLevelExact(zapcore.WarnLevel).FilterField(zap.String("code", "s3_partial_config"))
	if warns.Len() != 1 {
		t.Fatalf("expected partial config warning, got: %v", logs.All())
	}
}

func TestNewBlobStoreAutoConfiguredUsesS3(t *testing.T) {
	store, mode, err := NewBlobStore(context.Background(), appcfg.BlobConfig{
		Mode: appcfg.BlobModeAuto,
		S3:   fullS3(),
	}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if mode != appcfg.BlobModeS3 {
		t.Fatalf("expected mode=s3, got %s", mode)
	}
	if _, ok := store.(*S3Store); !ok {
		t.Fatalf("expected *S3Store, got %T", store)
	}
}

func TestNewBlobStoreS3MissingRequiredReturnsError(t *testing.T) {
	store, mode, err := NewBlobStore(context.Background(), appcfg.BlobConfig{
		Mode: appcfg.BlobModeS3,
		S3: appcfg.S3Config{
			Endpoint: "https://storage.example.com",
		},
	}, nil)
	if err == nil {
		t.Fatal("expected error when mode=s3 and required env are missing")
	}
	if store != nil || mode != "" {
		t.Fatalf("expected nil store and empty mode on error, got store=%v mode=%q", store, mode)
	}
	if !strings.Contains(err.Error(), "missing required config") {
		t.Fatalf("expected missing required config error, got: %v", err)
	}
}

func TestNewBlobStoreUnknownMode(t *testing.T) {
	if _, _, err := NewBlobStore(context.Background(), appcfg.BlobConfig{Mode: "ftp"}, nil); err == nil {
		t.Fatal("expected error for unsupported mode")
	}
}
