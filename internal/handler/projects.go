package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/webfusionlab/webfusion/internal/model"
	"github.com/webfusionlab/webfusion/internal/server/middleware"
	"github.com/webfusionlab/webfusion/internal/store"
)

const msgProjectNotFound = "Projeto não encontrado"

// owner returns the authenticated admin's id, writing a 401 when the
// request carries no principal.
func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, "Token não fornecido")
		return "", false
	}
	return p.AdminID, true
}

// ListProjects returns the caller's projects, newest first.
// GET /api/admin/projects
func (h *AdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	projects, err := h.projects.ListProjectsByOwner(r.Context(), ownerID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list projects failed", "admin_id", ownerID, "error", err)
		writeError(w, http.StatusInternalServerError, "Erro ao buscar projetos")
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// CreateProject adds a project owned by the caller.
// POST /api/admin/projects
func (h *AdminHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var in model.ProjectInput
	if err := readJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, msgProjectRequired)
		return
	}
	in.Image = blankToNil(in.Image)
	in.Link = blankToNil(in.Link)

	if errs := fieldErrors(&in); errs != nil {
		writeError(w, http.StatusBadRequest, projectInputMessage(errs))
		return
	}

	project, err := h.projects.CreateProject(r.Context(), ownerID, in)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "create project failed", "admin_id", ownerID, "error", err)
		writeError(w, http.StatusInternalServerError, "Erro ao criar projeto")
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// GetProject returns one of the caller's projects. Projects owned by other
// admins are reported as not found.
// GET /api/admin/projects/{id}
func (h *AdminHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	project, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgProjectNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "get project failed", "admin_id", ownerID, "error", err)
		writeError(w, http.StatusInternalServerError, "Erro ao buscar projeto")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// UpdateProject applies a partial update to one of the caller's projects.
// Absent and empty fields are left unchanged.
// PUT /api/admin/projects/{id}
func (h *AdminHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var patch model.ProjectPatch
	if err := readJSON(w, r, &patch); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}
	if !validCategory(patch.Category) {
		writeError(w, http.StatusBadRequest, msgInvalidCategory)
		return
	}

	project, err := h.projects.UpdateProject(r.Context(), chi.URLParam(r, "id"), ownerID, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgProjectNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "update project failed", "admin_id", ownerID, "error", err)
		writeError(w, http.StatusInternalServerError, "Erro ao atualizar projeto")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// DeleteProject removes one of the caller's projects.
// DELETE /api/admin/projects/{id}
func (h *AdminHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	deleted, err := h.projects.DeleteProject(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "delete project failed", "admin_id", ownerID, "error", err)
		writeError(w, http.StatusInternalServerError, "Erro ao deletar projeto")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, msgProjectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Projeto deletado com sucesso"})
}
