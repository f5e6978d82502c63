package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/webfusionlab/webfusion/internal/model"
	"github.com/webfusionlab/webfusion/internal/password"
	"github.com/webfusionlab/webfusion/internal/service"
)

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestRegisterDevelopment(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/api/admin/register", toJSON(t, map[string]string{
		"email":    "a@b.com",
		"password": "pw123456",
		"name":     "A",
	}))
	assertStatus(t, rr, http.StatusCreated)

	raw := rr.Body.String()
	if strings.Contains(raw, "password") || strings.Contains(raw, "pw123456") {
		t.Errorf("response leaks password: %s", raw)
	}

	var resp model.AdminResponse
	decodeJSON(t, rr, &resp)
	if resp.Admin.ID == "" {
		t.Error("expected admin id")
	}
	if resp.Admin.Email != "a@b.com" || resp.Admin.Name != "A" {
		t.Errorf("unexpected admin: %+v", resp.Admin)
	}
	if resp.Message != "Admin criado com sucesso" {
		t.Errorf("message = %q", resp.Message)
	}

	stored, err := env.store.FindAdminByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("FindAdminByEmail: %v", err)
	}
	if stored.PasswordHash == "pw123456" || !password.Verify("pw123456", stored.PasswordHash) {
		t.Error("stored password must be a hash of the submitted password")
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "taken@b.com")

	tests := []struct {
		name    string
		body    map[string]string
		status  int
		message string
	}{
		{"missing name", map[string]string{"email": "x@b.com", "password": "pw"}, 400, "Email, senha e nome são obrigatórios"},
		{"missing all", map[string]string{}, 400, "Email, senha e nome são obrigatórios"},
		{"duplicate", map[string]string{"email": "taken@b.com", "password": "pw", "name": "T"}, 400, "Este email já está registrado"},
		{"password too long", map[string]string{"email": "long@b.com", "password": strings.Repeat("p", 80), "name": "L"}, 400, "A senha deve ter no máximo 72 caracteres"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, "POST", "/api/admin/register", toJSON(t, tt.body))
			assertError(t, rr, tt.status, tt.message)
		})
	}
}

func TestRegisterProduction(t *testing.T) {
	body := map[string]string{"email": "p@b.com", "password": "pw123456", "name": "P"}

	t.Run("disabled without token", func(t *testing.T) {
		env := newTestEnvWith(t, service.AccountOptions{Production: true})
		rr := env.do(t, "POST", "/api/admin/register", toJSON(t, body))
		assertError(t, rr, http.StatusForbidden, "Registro de admin desabilitado")
	})

	env := newTestEnvWith(t, service.AccountOptions{Production: true, RegistrationToken: "setup-123"})

	t.Run("missing header", func(t *testing.T) {
		rr := env.do(t, "POST", "/api/admin/register", toJSON(t, body))
		assertError(t, rr, http.StatusForbidden, "Token de registro inválido")
	})

	t.Run("wrong header", func(t *testing.T) {
		req := toJSON(t, body)
		rr := env.doWithHeader(t, "POST", "/api/admin/register", SetupTokenHeader, "nope", req)
		assertError(t, rr, http.StatusForbidden, "Token de registro inválido")
	})

	t.Run("valid header", func(t *testing.T) {
		rr := env.doWithHeader(t, "POST", "/api/admin/register", "x-admin-setup-token", "setup-123", toJSON(t, body))
		assertStatus(t, rr, http.StatusCreated)
	})
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t, "a@b.com")

	rr := env.do(t, "POST", "/api/admin/login", toJSON(t, map[string]string{
		"email": "a@b.com", "password": testPassword,
	}))
	assertStatus(t, rr, http.StatusOK)

	var resp model.LoginResponse
	decodeJSON(t, rr, &resp)
	if resp.Token == "" {
		t.Fatal("expected token")
	}
	if resp.Admin.ID != admin.ID || resp.Admin.Email != "a@b.com" || resp.Admin.Name != "Test Admin" {
		t.Errorf("unexpected admin: %+v", resp.Admin)
	}

	p, err := env.tokens.Verify(resp.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if p.AdminID != admin.ID || p.Email != admin.Email {
		t.Errorf("principal = %+v", p)
	}

	// The token opens the protected routes.
	assertStatus(t, env.doAuth(t, "GET", "/api/admin/projects", resp.Token, nil), http.StatusOK)
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "a@b.com")

	tests := []struct {
		name    string
		body    map[string]string
		status  int
		message string
	}{
		{"wrong password", map[string]string{"email": "a@b.com", "password": "wrong"}, 401, "Credenciais inválidas"},
		{"unknown email", map[string]string{"email": "x@b.com", "password": testPassword}, 401, "Credenciais inválidas"},
		{"missing password", map[string]string{"email": "a@b.com"}, 400, "Email e senha são obrigatórios"},
		{"empty body", map[string]string{}, 400, "Email e senha são obrigatórios"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, "POST", "/api/admin/login", toJSON(t, tt.body))
			assertError(t, rr, tt.status, tt.message)
		})
	}
}

func TestLoginMalformedBody(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "POST", "/api/admin/login", strings.NewReader("{not json"))
	assertStatus(t, rr, http.StatusBadRequest)
}

// ---------------------------------------------------------------------------
// Profile
// ---------------------------------------------------------------------------

func TestUpdateProfileRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "PUT", "/api/admin/profile", toJSON(t, map[string]string{"currentPassword": "x"}))
	assertError(t, rr, http.StatusUnauthorized, "Token não fornecido")

	rr = env.doAuth(t, "PUT", "/api/admin/profile", "not-a-jwt", toJSON(t, map[string]string{"currentPassword": "x"}))
	assertError(t, rr, http.StatusUnauthorized, "Token inválido")
}

func TestUpdateProfileValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedAdmin(t, "a@b.com")
	env.seedAdmin(t, "other@b.com")

	tests := []struct {
		name    string
		body    map[string]string
		status  int
		message string
	}{
		{"no current password", map[string]string{"newEmail": "n@b.com"}, 400, "Senha atual é obrigatória para validação"},
		{"nothing to change", map[string]string{"currentPassword": testPassword}, 400, "Forneça pelo menos um novo email ou nova senha"},
		{"wrong current password", map[string]string{"currentPassword": "wrong", "newPassword": "x"}, 401, "Senha atual incorreta"},
		{"email in use", map[string]string{"currentPassword": testPassword, "newEmail": "other@b.com"}, 400, "Este email já está em uso"},
		{"new password too long", map[string]string{"currentPassword": testPassword, "newPassword": strings.Repeat("p", 80)}, 400, "A senha deve ter no máximo 72 caracteres"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.doAuth(t, "PUT", "/api/admin/profile", token, toJSON(t, tt.body))
			assertError(t, rr, tt.status, tt.message)
		})
	}
}

func TestUpdateProfileDeletedAdmin(t *testing.T) {
	env := newTestEnv(t)
	token, err := env.tokens.Issue("00000000-0000-0000-0000-000000000000", "ghost@b.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	rr := env.doAuth(t, "PUT", "/api/admin/profile", token, toJSON(t, map[string]string{
		"currentPassword": testPassword, "newPassword": "x",
	}))
	assertError(t, rr, http.StatusNotFound, "Admin não encontrado")
}

func TestUpdateProfileChangesCredentials(t *testing.T) {
	env := newTestEnv(t)
	admin, token := env.seedAdmin(t, "a@b.com")

	rr := env.doAuth(t, "PUT", "/api/admin/profile", token, toJSON(t, map[string]string{
		"currentPassword": testPassword,
		"newEmail":        "new@b.com",
		"newPassword":     "brand-new-pass",
	}))
	assertStatus(t, rr, http.StatusOK)

	var resp model.AdminResponse
	decodeJSON(t, rr, &resp)
	if resp.Message != "Credenciais atualizadas com sucesso" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Admin.ID != admin.ID || resp.Admin.Email != "new@b.com" {
		t.Errorf("unexpected admin: %+v", resp.Admin)
	}

	// Old credentials stop working, new ones log in.
	rr = env.do(t, "POST", "/api/admin/login", toJSON(t, map[string]string{"email": "a@b.com", "password": testPassword}))
	assertStatus(t, rr, http.StatusUnauthorized)
	rr = env.do(t, "POST", "/api/admin/login", toJSON(t, map[string]string{"email": "new@b.com", "password": "brand-new-pass"}))
	assertStatus(t, rr, http.StatusOK)
}
