package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/webfusionlab/webfusion/internal/model"
)

// ProjectLister lists every project regardless of owner.
type ProjectLister interface {
	ListAllProjects(ctx context.Context) ([]model.Project, error)
}

// PublicHandler serves the read-only /api/public routes.
type PublicHandler struct {
	projects ProjectLister
	logger   *slog.Logger
}

// NewPublicHandler creates a PublicHandler.
func NewPublicHandler(projects ProjectLister, logger *slog.Logger) *PublicHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublicHandler{projects: projects, logger: logger}
}

func (h *PublicHandler) Routes(r chi.Router) {
	r.Get("/projects", h.ListProjects)
}

// ListProjects returns the whole portfolio, newest first.
// GET /api/public/projects
func (h *PublicHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListAllProjects(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list public projects failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Erro ao buscar projetos")
		return
	}
	writeJSON(w, http.StatusOK, projects)
}
