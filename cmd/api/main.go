package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/fdg312/careview/internal/config"
	"github.com/fdg312/careview/internal/dbmigrate"
	"github.com/fdg312/careview/internal/httpserver"
	"github.com/fdg312/careview/internal/logging"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	printStartupBanner(logger, cfg)

	if err := validateProductionConfig(cfg); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if cfg.RunMigrationsOnStartup {
		target, err := dbmigrate.SelectTarget(cfg, true)
		if err != nil {
			logger.Fatal("startup migrations", zap.Error(err))
		}

		logger.Info("startup migrations", zap.String("command", "up"), zap.String("using", target.Source))
		if err := dbmigrate.Run("up", target.URL, ""); err != nil {
			logger.Fatal("startup migrations failed", zap.Error(err))
		}
		logger.Info("startup migrations completed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := httpserver.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("server init failed", zap.Error(err))
	}
	defer server.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}

// printStartupBanner logs a one-time summary of the resolved configuration.
// No secrets are ever printed, only masked indicators ("set" / "not set").
func printStartupBanner(logger *zap.Logger, cfg *config.Config) {
	logger.Info("Care View API",
		zap.String("env", cfg.Env),
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
	)

	logger.Info("database",
		zap.String("runtime_url", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled)),
		zap.String("pooled", config.SetOrNot(cfg.DatabaseURLPooled)),
		zap.String("direct", config.SetOrNot(cfg.DatabaseURLDirect)),
		zap.Bool("migrations_on_startup", cfg.RunMigrationsOnStartup),
	)

	logger.Info("upstream",
		zap.String("base_url", cfg.Upstream.BaseURL),
		zap.String("weekly_records_path", cfg.Upstream.WeeklyRecordsPath),
		zap.String("expected_effect_path", cfg.Upstream.ExpectedEffectPath),
		zap.Int("timeout_seconds", cfg.Upstream.TimeoutSeconds),
	)

	logger.Info("auth",
		zap.String("auth_mode", cfg.AuthMode),
		zap.Bool("auth_required", cfg.AuthRequired),
		zap.String("jwt_secret", secretStatus(cfg.JWTSecret, "change_me")),
		zap.String("jwt_issuer", cfg.JWTIssuer),
	)

	level, code, msg := cfg.Blob.S3.Diagnostics()
	fields := []zap.Field{
		zap.String("blob_mode", cfg.Blob.Mode),
		zap.String("s3_status", code),
		zap.String("s3", msg),
	}
	if cfg.Blob.Mode != config.BlobModeLocal {
		fields = append(fields, zap.String("s3_config", cfg.Blob.S3.DiagnosticsSummary()))
	}
	if level == "WARN" {
		logger.Warn("blob", fields...)
	} else {
		logger.Info("blob", fields...)
	}

	logger.Info("reports",
		zap.String("font_path", config.NonEmptyOrDash(cfg.ReportsFontPath)),
		zap.Int("list_limit", cfg.ReportsListLimit),
	)
}

// validateProductionConfig performs checks that stop startup.
func validateProductionConfig(cfg *config.Config) error {
	var errs []error

	// S3 hard-mode validation
	if cfg.Blob.Mode == config.BlobModeS3 {
		if missing := cfg.Blob.S3.MissingRequired(); len(missing) > 0 {
			errs = append(errs, fmt.Errorf("blob: BLOB_MODE is 's3' but S3 config is incomplete, missing: %s", strings.Join(missing, ", ")))
		}
	}

	if cfg.IsProduction() {
		// JWT_SECRET must not be default in production
		if cfg.AuthMode == config.AuthModeDev && cfg.JWTSecret == "change_me" {
			errs = append(errs, fmt.Errorf("auth: JWT_SECRET must not be 'change_me' in %s with AUTH_MODE=dev", cfg.Env))
		}
		// DATABASE_URL must be set in production
		if cfg.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("db: no DATABASE_URL configured in %s", cfg.Env))
		}
		if strings.HasPrefix(cfg.Upstream.BaseURL, "http://localhost") {
			errs = append(errs, fmt.Errorf("upstream: UPSTREAM_BASE_URL points to localhost in %s", cfg.Env))
		}
	}

	return errors.Join(errs...)
}

// ---- helpers (no secrets) ----

func secretStatus(v, insecureDefault string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "not set"
	}
	if v == insecureDefault {
		return fmt.Sprintf("set (DEFAULT, insecure '%s')", insecureDefault)
	}
	return "set (custom)"
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set (will use in-memory storage)"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}
