package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/webfusionlab/webfusion/internal/model"
	"github.com/webfusionlab/webfusion/internal/password"
	"github.com/webfusionlab/webfusion/internal/server/middleware"
	"github.com/webfusionlab/webfusion/internal/service"
	"github.com/webfusionlab/webfusion/internal/store"
)

// SetupTokenHeader carries the registration token required in production.
const SetupTokenHeader = "X-Admin-Setup-Token"

const msgPasswordTooLong = "A senha deve ter no máximo 72 caracteres"

// ProjectStore is the owner-scoped project storage used by AdminHandler.
type ProjectStore interface {
	ListProjectsByOwner(ctx context.Context, ownerID string) ([]model.Project, error)
	GetProject(ctx context.Context, id, ownerID string) (*model.Project, error)
	CreateProject(ctx context.Context, ownerID string, in model.ProjectInput) (*model.Project, error)
	UpdateProject(ctx context.Context, id, ownerID string, patch model.ProjectPatch) (*model.Project, error)
	DeleteProject(ctx context.Context, id, ownerID string) (bool, error)
}

// AdminHandler serves the /api/admin routes: authentication, credential
// changes and the admin's own projects.
type AdminHandler struct {
	accounts *service.AccountService
	projects ProjectStore
	logger   *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(accounts *service.AccountService, projects ProjectStore, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{accounts: accounts, projects: projects, logger: logger}
}

// Routes mounts the public admin endpoints (login, register) on r. The
// callers wrap them in the auth rate-limit zone.
func (h *AdminHandler) Routes(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/register", h.Register)
}

// ProtectedRoutes mounts the endpoints that require an authenticated admin.
func (h *AdminHandler) ProtectedRoutes(r chi.Router) {
	r.Put("/profile", h.UpdateProfile)

	r.Get("/projects", h.ListProjects)
	r.Post("/projects", h.CreateProject)
	r.Get("/projects/{id}", h.GetProject)
	r.Put("/projects/{id}", h.UpdateProject)
	r.Delete("/projects/{id}", h.DeleteProject)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email and password for a bearer token.
// POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Email e senha são obrigatórios")
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Credenciais inválidas")
		return
	default:
		h.logger.ErrorContext(r.Context(), "admin login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Erro ao fazer login")
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{
		Token: res.Token,
		Admin: res.Admin.Summary(),
	})
}

// Register creates an admin account. Outside production registration is
// open; in production the X-Admin-Setup-Token header must match the
// configured registration token.
// POST /api/admin/register
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := readJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	admin, err := h.accounts.Register(r.Context(), req, r.Header.Get(SetupTokenHeader))
	switch {
	case err == nil:
	case errors.Is(err, service.ErrRegistrationDisabled):
		writeError(w, http.StatusForbidden, "Registro de admin desabilitado")
		return
	case errors.Is(err, service.ErrInvalidSetupToken):
		writeError(w, http.StatusForbidden, "Token de registro inválido")
		return
	case errors.Is(err, service.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Email, senha e nome são obrigatórios")
		return
	case errors.Is(err, store.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "Este email já está registrado")
		return
	case errors.Is(err, password.ErrTooLong):
		writeError(w, http.StatusBadRequest, msgPasswordTooLong)
		return
	default:
		h.logger.ErrorContext(r.Context(), "admin registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Erro ao registrar admin")
		return
	}

	h.logger.InfoContext(r.Context(), "admin registered", "admin_id", admin.ID)
	writeJSON(w, http.StatusCreated, model.AdminResponse{
		Message: "Admin criado com sucesso",
		Admin:   admin.Summary(),
	})
}

// UpdateProfile changes the caller's email and/or password.
// PUT /api/admin/profile
func (h *AdminHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipal(r.Context())
	if p == nil {
		writeError(w, http.StatusUnauthorized, "Token não fornecido")
		return
	}

	var req service.ProfileInput
	if err := readJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return
	}

	admin, err := h.accounts.UpdateProfile(r.Context(), p.AdminID, req)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrCurrentPasswordRequired):
		writeError(w, http.StatusBadRequest, "Senha atual é obrigatória para validação")
		return
	case errors.Is(err, service.ErrNoChanges):
		writeError(w, http.StatusBadRequest, "Forneça pelo menos um novo email ou nova senha")
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Admin não encontrado")
		return
	case errors.Is(err, service.ErrWrongPassword):
		writeError(w, http.StatusUnauthorized, "Senha atual incorreta")
		return
	case errors.Is(err, store.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "Este email já está em uso")
		return
	case errors.Is(err, password.ErrTooLong):
		writeError(w, http.StatusBadRequest, msgPasswordTooLong)
		return
	default:
		h.logger.ErrorContext(r.Context(), "admin profile update failed", "admin_id", p.AdminID, "error", err)
		writeError(w, http.StatusInternalServerError, "Erro ao atualizar perfil")
		return
	}

	writeJSON(w, http.StatusOK, model.AdminResponse{
		Message: "Credenciais atualizadas com sucesso",
		Admin:   admin.Summary(),
	})
}
