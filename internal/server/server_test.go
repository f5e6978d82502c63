package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/webfusionlab/webfusion/internal/mailer"
	"github.com/webfusionlab/webfusion/internal/model"
	"github.com/webfusionlab/webfusion/internal/ratelimit"
	"github.com/webfusionlab/webfusion/internal/service"
	"github.com/webfusionlab/webfusion/internal/store"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

const (
	testJWTSecret = "test-secret-for-jwt-integration-tests"
	testPassword  = "supersecretpassword"
)

type nopSender struct {
	mu   sync.Mutex
	sent int
}

func (s *nopSender) Send(context.Context, *mailer.Envelope) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent++
	return "<test@webfusionlab.pt>", nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// testEnv holds all the shared state for integration tests.
type testEnv struct {
	server *Server
	store  *store.Store
	tokens *service.TokenService
	clock  *fakeClock
	sender *nopSender
}

// newTestEnv creates a fresh test environment with an in-memory store, the
// default rate-limit zones on a fake clock, and a fully wired Server.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("store.NewMemory: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := &fakeClock{t: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)}
	tokens := service.NewTokenService(service.TokenOptions{Secret: testJWTSecret})
	sender := &nopSender{}

	srv := New(DefaultConfig(), Deps{
		Store:    st,
		Tokens:   tokens,
		Accounts: service.NewAccountService(st, tokens, service.AccountOptions{}),
		Mailer: mailer.New(sender, mailer.Options{
			SenderName:  "WebFusionLab",
			SenderEmail: "no-reply@webfusionlab.pt",
			Logger:      logger,
		}),
		Limiter: ratelimit.New(clock.Now, ratelimit.DefaultZones()...),
	}, logger)

	return &testEnv{server: srv, store: st, tokens: tokens, clock: clock, sender: sender}
}

// do executes a request from the given remote address.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) doAuth(t *testing.T, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, method, path, body, map[string]string{"Authorization": "Bearer " + token})
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("jsonBody: %v", err)
	}
	return buf
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rr.Code, want, rr.Body.String())
	}
}

func assertContentType(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	if got := rr.Header().Get("Content-Type"); got != want {
		t.Errorf("Content-Type = %q, want %q", got, want)
	}
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decodeJSON: %v; body = %s", err, rr.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Probes and fallbacks
// ---------------------------------------------------------------------------

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", "/healthz", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	assertContentType(t, rr, "application/json")
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestReadyz(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", "/readyz", nil, nil)
	assertStatus(t, rr, http.StatusOK)

	env.store.Close()
	rr = env.do(t, "GET", "/readyz", nil, nil)
	assertStatus(t, rr, http.StatusServiceUnavailable)
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", "/", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	var body map[string]any
	decodeJSON(t, rr, &body)
	if body["message"] != "WebFusionLab API" || body["version"] != "dev" {
		t.Errorf("unexpected root body: %v", body)
	}
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/nope", "/api/nope", "/api/admin/nope"} {
		rr := env.do(t, "GET", path, nil, nil)
		assertStatus(t, rr, http.StatusNotFound)
		var body model.ContactResponse
		decodeJSON(t, rr, &body)
		if body.Success || body.Error != "Rota não encontrada" {
			t.Errorf("%s: unexpected body %+v", path, body)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", "/api/admin/login", nil, nil)
	assertStatus(t, rr, http.StatusMethodNotAllowed)
	assertContentType(t, rr, "application/json")
}

func TestCORSHeaders(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "OPTIONS", "/api/admin/login", nil, map[string]string{
		"Origin":                         "http://localhost:3000",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "Authorization,Content-Type",
	})
	if rr.Code < 200 || rr.Code >= 300 {
		t.Errorf("CORS preflight status = %d, want 2xx", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	rr = env.do(t, "OPTIONS", "/api/admin/login", nil, map[string]string{
		"Origin":                        "https://evil.example",
		"Access-Control-Request-Method": "POST",
	})
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin allowed: %q", got)
	}
}

// ---------------------------------------------------------------------------
// Rate limiting
// ---------------------------------------------------------------------------

func TestAuthZoneRateLimit(t *testing.T) {
	env := newTestEnv(t)
	creds := map[string]string{"email": "a@b.com", "password": "wrong"}

	for i := 0; i < 10; i++ {
		rr := env.do(t, "POST", "/api/admin/login", jsonBody(t, creds), nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i+1, rr.Code)
		}
	}

	rr := env.do(t, "POST", "/api/admin/login", jsonBody(t, creds), nil)
	assertStatus(t, rr, http.StatusTooManyRequests)
	var body map[string]any
	decodeJSON(t, rr, &body)
	if body["error"] != "Muitas tentativas de autenticação, tente novamente mais tarde." {
		t.Errorf("error = %v", body["error"])
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	// Registration shares the zone.
	rr = env.do(t, "POST", "/api/admin/register", jsonBody(t, creds), nil)
	assertStatus(t, rr, http.StatusTooManyRequests)

	// A client behind a proxy is keyed by its forwarded address.
	rr = env.do(t, "POST", "/api/admin/login", jsonBody(t, creds), map[string]string{"X-Forwarded-For": "203.0.113.9"})
	assertStatus(t, rr, http.StatusUnauthorized)

	// Public routes only count against the general zone.
	assertStatus(t, env.do(t, "GET", "/api/public/projects", nil, nil), http.StatusOK)

	env.clock.Advance(15 * time.Minute)
	rr = env.do(t, "POST", "/api/admin/login", jsonBody(t, creds), nil)
	assertStatus(t, rr, http.StatusUnauthorized)
}

func TestEmailZoneRateLimit(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]string{"email": "ana@example.com", "subject": "Re", "message": "Olá"}

	for i := 0; i < 25; i++ {
		rr := env.do(t, "POST", "/api/contact/reply", jsonBody(t, body), nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("reply %d: status = %d, want 200", i+1, rr.Code)
		}
	}

	rr := env.do(t, "POST", "/api/contact/send", jsonBody(t, body), nil)
	assertStatus(t, rr, http.StatusTooManyRequests)
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	if resp["success"] != false || resp["error"] != "Limite de envio de emails excedido. Tente novamente em uma hora." {
		t.Errorf("unexpected body: %v", resp)
	}
	if env.sender.sent != 25 {
		t.Errorf("sent = %d, want 25", env.sender.sent)
	}
}

func TestGeneralZoneRateLimit(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 100; i++ {
		if rr := env.do(t, "GET", "/api/public/projects", nil, nil); rr.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, rr.Code)
		}
	}
	rr := env.do(t, "GET", "/", nil, nil)
	assertStatus(t, rr, http.StatusTooManyRequests)

	// Probes stay reachable.
	assertStatus(t, env.do(t, "GET", "/healthz", nil, nil), http.StatusOK)
}

// ---------------------------------------------------------------------------
// Full workflow: register -> login -> create project -> public listing
// ---------------------------------------------------------------------------

func TestFullWorkflow(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, "POST", "/api/admin/register", jsonBody(t, map[string]string{
		"email": "a@b.com", "password": testPassword, "name": "A",
	}), nil)
	assertStatus(t, rr, http.StatusCreated)

	rr = env.do(t, "POST", "/api/admin/login", jsonBody(t, map[string]string{
		"email": "a@b.com", "password": testPassword,
	}), nil)
	assertStatus(t, rr, http.StatusOK)
	var login model.LoginResponse
	decodeJSON(t, rr, &login)

	rr = env.doAuth(t, "POST", "/api/admin/projects", jsonBody(t, map[string]any{
		"title":       "X",
		"description": "Y",
		"category":    "Web",
		"year":        "2024",
		"stack":       []string{"Next.js"},
	}), login.Token)
	assertStatus(t, rr, http.StatusCreated)
	var project model.Project
	decodeJSON(t, rr, &project)
	if project.AdminID != login.Admin.ID {
		t.Errorf("admin_id = %q, want %q", project.AdminID, login.Admin.ID)
	}

	rr = env.do(t, "GET", "/api/public/projects", nil, nil)
	assertStatus(t, rr, http.StatusOK)
	var public []model.Project
	decodeJSON(t, rr, &public)
	if len(public) != 1 || public[0].ID != project.ID {
		t.Errorf("public projects = %+v", public)
	}

	// A second admin cannot delete it.
	other, err := env.store.CreateAdmin(context.Background(), "o@b.com", testPassword, "O")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	otherToken, err := env.tokens.Issue(other.ID, other.Email)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	rr = env.doAuth(t, "DELETE", "/api/admin/projects/"+project.ID, nil, otherToken)
	assertStatus(t, rr, http.StatusNotFound)

	rr = env.doAuth(t, "GET", "/api/admin/projects/"+project.ID, nil, login.Token)
	assertStatus(t, rr, http.StatusOK)
}

func TestExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	admin, err := env.store.CreateAdmin(context.Background(), "a@b.com", testPassword, "A")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	past := service.NewTokenService(service.TokenOptions{
		Secret: testJWTSecret,
		Now:    func() time.Time { return time.Now().Add(-25 * time.Hour) },
	})
	token, err := past.Issue(admin.ID, admin.Email)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rr := env.doAuth(t, "GET", "/api/admin/projects", nil, token)
	assertStatus(t, rr, http.StatusUnauthorized)
}
