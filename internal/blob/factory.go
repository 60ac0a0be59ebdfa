package blob

import (
	"context"
	"fmt"
	"strings"

	appcfg "github.com/fdg312/careview/internal/config"
	"go.uber.org/zap"
)

// NewBlobStore builds a blob store using mode local|s3|auto.
// It returns the store and the effective mode.
func NewBlobStore(ctx context.Context, cfg appcfg.BlobConfig, logger *zap.Logger) (Store, string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("blob")

	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = appcfg.BlobModeLocal
	}

	switch mode {
	case appcfg.BlobModeLocal:
		logger.Info("blob store ready", zap.String("mode", "local"), zap.String("reason", "forced"))
		return NewMemoryStore(), appcfg.BlobModeLocal, nil

	case appcfg.BlobModeAuto:
		if !cfg.S3.IsConfigured() {
			level, code, msg := cfg.S3.Diagnostics()
			fields := []zap.Field{
				zap.String("code", code),
				zap.String("detail", msg),
				zap.String("s3", cfg.S3.DiagnosticsSummary()),
			}
			if level == "WARN" {
				logger.Warn("s3 not usable", fields...)
			} else {
				logger.Info("s3 not usable", fields...)
			}
			logger.Info("blob store ready", zap.String("mode", "local"), zap.String("reason", "auto, S3 not configured"))
			return NewMemoryStore(), appcfg.BlobModeLocal, nil
		}

		store, err := newS3FromConfig(ctx, cfg.S3, logger)
		if err != nil {
			logger.Warn("s3 init failed, fallback to local", zap.Error(err))
			return NewMemoryStore(), appcfg.BlobModeLocal, nil
		}

		logger.Info("blob store ready", zap.String("mode", "s3"), zap.String("reason", "auto, configured"))
		return store, appcfg.BlobModeS3, nil

	case appcfg.BlobModeS3:
		if !cfg.S3.IsConfigured() {
			missing := cfg.S3.MissingRequired()
			logger.Error("s3 config incomplete",
				zap.String("code", "s3_config_incomplete"),
				zap.Strings("missing", missing),
				zap.String("s3", cfg.S3.DiagnosticsSummary()),
			)
			return nil, "", fmt.Errorf("BLOB_MODE=s3 requested but missing required config: %s", strings.Join(missing, ", "))
		}

		store, err := newS3FromConfig(ctx, cfg.S3, logger)
		if err != nil {
			logger.Error("s3 init failed", zap.Error(err))
			return nil, "", fmt.Errorf("BLOB_MODE=s3 init failed: %w", err)
		}

		logger.Info("blob store ready", zap.String("mode", "s3"), zap.String("reason", "forced"))
		return store, appcfg.BlobModeS3, nil

	default:
		return nil, "", fmt.Errorf("unsupported blob mode: %s", mode)
	}
}

func newS3FromConfig(ctx context.Context, cfg appcfg.S3Config, logger *zap.Logger) (*S3Store, error) {
	logger.Info("s3 configured", zap.String("code", "s3_ready"), zap.String("s3", cfg.DiagnosticsSummary()))
	return NewS3Store(ctx, cfg.Endpoint, cfg.Region, cfg.Bucket, cfg.AccessKeyID, cfg.SecretAccessKey)
}
