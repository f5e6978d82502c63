package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger checks that a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the API root, the health probes and the JSON
// fallbacks for unknown routes.
type SystemHandler struct {
	db      Pinger
	version string
	logger  *slog.Logger
}

// NewSystemHandler creates a SystemHandler reporting version.
func NewSystemHandler(db Pinger, version string, logger *slog.Logger) *SystemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SystemHandler{db: db, version: version, logger: logger}
}

// readyTimeout bounds the database ping of the readiness probe.
const readyTimeout = 2 * time.Second

// Root describes the API.
// GET /
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "WebFusionLab API",
		"version": h.version,
		"docs":    "Documentação não disponível",
	})
}

// Healthz reports that the process is serving requests.
// GET /healthz
func (h *SystemHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// Readyz reports whether the database answers.
// GET /readyz
func (h *SystemHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.WarnContext(r.Context(), "readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":   "unavailable",
			"database": "unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "database": "ok"})
}

// NotFound is the fallback for unknown routes.
func (h *SystemHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeContactError(w, http.StatusNotFound, "Rota não encontrada")
}

// MethodNotAllowed answers known paths requested with an unsupported verb.
func (h *SystemHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeContactError(w, http.StatusMethodNotAllowed, "Método não permitido")
}
