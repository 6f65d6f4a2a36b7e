// Package server exposes the feasibility engine over HTTP. Serialization
// lives here; the engine itself never sees wire formats.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/proformatools/proforma/internal/config"
	"github.com/proformatools/proforma/internal/engine"
	"github.com/proformatools/proforma/pkg/constants"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type handler struct {
	logger        *zap.Logger
	engine        *engine.Engine
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the feasibility API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		engine:        engine.New(logger),
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/api/analyze", h.handleAnalyze)
	r.Get("/api/version", h.handleVersion)
	r.Get("/healthz", h.handleHealth)

	return r
}

// analyzeResponse is the JSON envelope returned by /api/analyze.
type analyzeResponse struct {
	Analysis *engine.Analysis `json:"analysis"`
	Warnings []string         `json:"warnings,omitempty"`
	Duration string           `json:"duration"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleAnalyze accepts a scenario configuration as YAML (the CLI file
// format) or JSON, runs the engine, and returns the analysis.
func (h *handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadSize))
	if err != nil {
		h.writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("request body too large or unreadable: %w", err))
		return
	}
	if len(body) == 0 {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("empty request body"))
		return
	}

	var conf config.Configuration
	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "application/json"):
		if err := json.Unmarshal(body, &conf); err != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON payload: %w", err))
			return
		}
	default:
		// YAML is the native scenario format.
		if err := yaml.Unmarshal(body, &conf); err != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid YAML payload: %w", err))
			return
		}
	}

	scenario, err := conf.Resolve()
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	warnings := conf.ValidateConfiguration()

	analysis, err := h.engine.Analyze(scenario, conf.EngineOptions())
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	h.logger.Info("analysis served",
		zap.String("op", "server.handleAnalyze"),
		zap.String("scenario", scenario.Name),
		zap.Duration("duration", time.Since(start)),
	)

	h.writeJSON(w, http.StatusOK, analyzeResponse{
		Analysis: analysis,
		Warnings: warnings,
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, err error) {
	h.logger.Warn("request failed",
		zap.String("op", "server.writeError"),
		zap.Int("status", status),
		zap.Error(err),
	)
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}
