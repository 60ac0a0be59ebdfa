package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fdg312/careview/internal/auth"
	"github.com/fdg312/careview/internal/blob"
	"github.com/fdg312/careview/internal/config"
	"github.com/fdg312/careview/internal/dashboard"
	"github.com/fdg312/careview/internal/effect"
	"github.com/fdg312/careview/internal/reports"
	"github.com/fdg312/careview/internal/storage"
	"github.com/fdg312/careview/internal/storage/memory"
	"github.com/fdg312/careview/internal/storage/postgres"
	"github.com/fdg312/careview/internal/upstream"
	"go.uber.org/zap"
)

// Server представляет HTTP сервер
type Server struct {
	config         *config.Config
	logger         *zap.Logger
	mux            *http.ServeMux
	handler        http.Handler
	reportsStorage storage.ReportsStorage
	authMiddleware *auth.Middleware
	httpServer     *http.Server
}

// New создаёт новый HTTP сервер
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config: cfg,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.initStorage(ctx)

	blobStore, _, err := blob.NewBlobStore(ctx, cfg.Blob, logger)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("blob store: %w", err)
	}

	s.routes(blobStore)
	s.handler = s.middleware(s.mux)
	return s, nil
}

// initStorage инициализирует storage (Memory или Postgres)
func (s *Server) initStorage(ctx context.Context) {
	if s.config.DatabaseURL == "" {
		s.logger.Info("using in-memory report storage")
		s.reportsStorage = memory.New()
		return
	}

	s.logger.Info("connecting to PostgreSQL")
	pgStorage, err := postgres.New(ctx, s.config.DatabaseURL)
	if err != nil {
		s.logger.Warn("PostgreSQL unavailable, fallback to in-memory report storage", zap.Error(err))
		s.reportsStorage = memory.New()
		return
	}
	s.logger.Info("PostgreSQL connected")
	s.reportsStorage = pgStorage
}

// routes регистрирует маршруты
func (s *Server) routes(blobStore blob.Store) {
	// Health check (no auth required)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Auth API (no auth required)
	authService := auth.NewService(s.config)
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService, s.logger)

	// POST /v1/auth/dev - local dev token
	s.mux.HandleFunc("POST /v1/auth/dev", authHandler.HandleDevAuth)

	client := upstream.NewClient(s.config.Upstream, s.logger)

	// GET /v1/dashboard - weekly summary and metric cards
	dashboardService := dashboard.NewService(client, s.config.Upstream.WeeklyRecordsPath, s.logger)
	s.mux.HandleFunc("GET /v1/dashboard", dashboard.NewHandler(dashboardService).HandleGetDashboard)

	// GET /v1/effect - expected effect projection
	effectService := effect.NewService(client, s.config.Upstream.ExpectedEffectPath, s.logger)
	s.mux.HandleFunc("GET /v1/effect", effect.NewHandler(effectService).HandleGetEffect)

	// Reports API
	generator := reports.NewGenerator(dashboardService, effectService, s.config.ReportsFontPath, s.logger)
	reportsService := reports.NewService(
		s.reportsStorage,
		blobStore,
		generator,
		s.config.Blob.S3.PresignTTLSeconds,
		s.config.ReportsListLimit,
		s.logger,
	)
	reportsHandler := reports.NewHandlers(reportsService)

	s.mux.HandleFunc("POST /v1/reports", reportsHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/reports", reportsHandler.HandleList)
	s.mux.HandleFunc("GET /v1/reports/{id}/download", reportsHandler.HandleDownload)
	s.mux.HandleFunc("DELETE /v1/reports/{id}", reportsHandler.HandleDelete)
}

// middleware builds the chain (outermost first):
// Request ID → Access log → CORS → Rate Limit → Auth → Router
func (s *Server) middleware(next http.Handler) http.Handler {
	handler := s.authMiddleware.RequireAuth(next)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	handler = AccessLogMiddleware(s.logger, handler)
	handler = RequestIDMiddleware(handler)
	return handler
}

// Handler returns the full middleware chain
func (s *Server) Handler() http.Handler {
	return s.handler
}

// handleHealthz возвращает статус сервера
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Start запускает HTTP сервер и блокируется до Shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("server started",
		zap.String("addr", "http://localhost"+addr),
		zap.String("healthz", "http://localhost"+addr+"/healthz"),
		zap.String("dashboard", "http://localhost"+addr+"/v1/dashboard"),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown дожидается активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Close закрывает storage и освобождает ресурсы
func (s *Server) Close() error {
	if s.reportsStorage != nil {
		return s.reportsStorage.Close()
	}
	return nil
}
