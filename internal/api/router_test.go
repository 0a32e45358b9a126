package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sessionguard/auth-api/internal/api/handler"
	"github.com/sessionguard/auth-api/internal/core/domain"
	"github.com/sessionguard/auth-api/internal/core/service"
	"github.com/sessionguard/auth-api/internal/infrastructure/db/memory"
	"github.com/sessionguard/auth-api/internal/infrastructure/i18n"
	"github.com/sessionguard/auth-api/internal/infrastructure/password"
	"github.com/sessionguard/auth-api/internal/infrastructure/token"
)

type testServer struct {
	e      *echo.Echo
	codec  *token.Codec
	store  *memory.CredentialStore
	hasher *password.BcryptHasher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	codec, err := token.NewCodec(base64.StdEncoding.EncodeToString([]byte(strings.Repeat("r", 32))))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	store := memory.NewCredentialStore()
	ledger := memory.NewLedger()
	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	catalog := i18n.NewCatalog("en")
	svc := service.NewAuthService(store, ledger, codec, hasher, catalog, zerolog.Nop())

	registry := prometheus.NewRegistry()
	e := NewRouter(Dependencies{
		AuthService: svc,
		Codec:       codec,
		Store:       store,
		Ledger:      ledger,
		Catalog:     catalog,
		Logger:      zerolog.Nop(),
		Registerer:  registry,
		Gatherer:    registry,
	})
	return &testServer{e: e, codec: codec, store: store, hasher: hasher}
}

func (s *testServer) do(t *testing.T, method, path, body, bearer string, headers ...string) (*httptest.ResponseRecorder, handler.Envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env handler.Envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (s *testServer) login(t *testing.T, email, pw string) string {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/auth/login", `{"email":"`+email+`","password":"`+pw+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data, _ := env.Data.(map[string]any)
	tok, _ := data["token"].(string)
	if tok == "" {
		t.Fatalf("login: no token in %s", rec.Body.String())
	}
	return tok
}

func (s *testServer) seed(t *testing.T, email, pw string, roles ...domain.Role) {
	t.Helper()
	digest, err := s.hasher.Hash(pw)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if _, err := s.store.Save(context.Background(), &domain.Principal{
		Email: email, PasswordHash: digest, Roles: roles, Status: domain.PrincipalActive,
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func expectCode(t *testing.T, rec *httptest.ResponseRecorder, env handler.Envelope, status, code int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	if env.Successful || env.Error == nil || env.Error.Code != code {
		t.Fatalf("expected error code %d, got %s", code, rec.Body.String())
	}
}

// ── Scenarios ─────────────────────────────────────────────────────────────────

func TestRouter_SecondLoginRevokesFirst(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"pw123456"}`, "")
	if rec.Code != http.StatusCreated || !env.Successful {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}

	t1 := s.login(t, "a@x.com", "pw123456")
	t2 := s.login(t, "a@x.com", "pw123456")
	if t1 == t2 {
		t.Fatalf("expected distinct tokens")
	}

	rec, env = s.do(t, http.MethodGet, "/test/user", "", t1)
	expectCode(t, rec, env, http.StatusUnauthorized, CodeUnauthenticated)

	rec, env = s.do(t, http.MethodGet, "/test/user", "", t2)
	if rec.Code != http.StatusOK || env.Data != "User endpoint reached." {
		t.Fatalf("expected access with t2, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_LogoutEndsSession(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "a@x.com", "pw123456", domain.RoleUser)
	tok := s.login(t, "a@x.com", "pw123456")

	for i := 0; i < 2; i++ {
		rec, env := s.do(t, http.MethodPost, "/auth/logout", "", tok)
		if rec.Code != http.StatusOK || !env.Successful {
			t.Fatalf("logout #%d: %d %s", i+1, rec.Code, rec.Body.String())
		}
	}

	rec, env := s.do(t, http.MethodGet, "/auth/me", "", tok)
	expectCode(t, rec, env, http.StatusUnauthorized, CodeUnauthenticated)
}

func TestRouter_LogoutWithoutTokenSucceeds(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/auth/logout", "", "")
	if rec.Code != http.StatusOK || !env.Successful {
		t.Fatalf("expected success, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_LogoutWithInvalidTokenSucceeds(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "a@x.com", "pw123456", domain.RoleUser)
	p, err := s.store.FindActiveByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("FindActiveByEmail: %v", err)
	}
	expired, err := s.codec.Issue(p.ID, p.Email, nil, time.Now().Add(-6*24*time.Hour))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for name, bearer := range map[string]string{"expired": expired, "garbage": "garbage"} {
		rec, env := s.do(t, http.MethodPost, "/auth/logout", "", bearer)
		if rec.Code != http.StatusOK || !env.Successful {
			t.Fatalf("%s token: expected success, got %d %s", name, rec.Code, rec.Body.String())
		}
	}
}

func TestRouter_RoleTable(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "admin@x.com", "pw123456", domain.RoleAdmin)
	s.seed(t, "manager@x.com", "pw123456", domain.RoleManager)
	s.seed(t, "user@x.com", "pw123456", domain.RoleUser)

	admin := s.login(t, "admin@x.com", "pw123456")
	manager := s.login(t, "manager@x.com", "pw123456")
	user := s.login(t, "user@x.com", "pw123456")

	cases := []struct {
		path  string
		token string
		want  int
	}{
		{"/test", "", http.StatusOK},
		{"/test/user", "", http.StatusUnauthorized},
		{"/test/user", user, http.StatusOK},
		{"/test/manager", user, http.StatusForbidden},
		{"/test/manager", manager, http.StatusOK},
		{"/test/manager", admin, http.StatusOK},
		{"/test/admin", manager, http.StatusForbidden},
		{"/test/admin", admin, http.StatusOK},
		{"/test/admin", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rec, env := s.do(t, http.MethodGet, tc.path, "", tc.token)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d: %s", tc.path, tc.want, rec.Code, rec.Body.String())
		}
		if tc.want == http.StatusForbidden && env.Error.Code != CodeInsufficientRole {
			t.Fatalf("%s: expected code %d, got %+v", tc.path, CodeInsufficientRole, env.Error)
		}
	}
}

func TestRouter_MalformedTokenIsRejected(t *testing.T) {
	s := newTestServer(t)

	// even public routes reject a token that does not decode
	rec, env := s.do(t, http.MethodGet, "/test", "", "garbage")
	expectCode(t, rec, env, http.StatusBadRequest, CodeTokenInvalid)
	if env.Error.Detail == "" {
		t.Fatalf("expected a detail for token failures")
	}
}

func TestRouter_RegisterFailures(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "a@x.com", "pw123456", domain.RoleUser)

	rec, env := s.do(t, http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"pw123456"}`, "")
	expectCode(t, rec, env, http.StatusBadRequest, CodePrincipalExists)

	rec, env = s.do(t, http.MethodPost, "/auth/register", `{"email":"bad","password":"x"}`, "")
	expectCode(t, rec, env, http.StatusBadRequest, CodeValidationFailed)
	if !strings.Contains(env.Error.Detail, "email must be a valid email") {
		t.Fatalf("expected field detail, got %q", env.Error.Detail)
	}
}

func TestRouter_LongPassword(t *testing.T) {
	s := newTestServer(t)
	pw := strings.Repeat("p", 100)

	rec, env := s.do(t, http.MethodPost, "/auth/register", `{"email":"a@x.com","password":"`+pw+`"}`, "")
	if rec.Code != http.StatusCreated || !env.Successful {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	s.login(t, "a@x.com", pw)

	rec, env = s.do(t, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"`+pw[:99]+`q"}`, "")
	expectCode(t, rec, env, http.StatusBadRequest, CodeBadCredentials)
}

func TestRouter_LoginFailures(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "a@x.com", "pw123456", domain.RoleUser)

	rec, env := s.do(t, http.MethodPost, "/auth/login", `{"email":"nobody@x.com","password":"pw123456"}`, "")
	expectCode(t, rec, env, http.StatusBadRequest, CodePrincipalNotFound)

	rec, env = s.do(t, http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"wrong-password"}`, "")
	expectCode(t, rec, env, http.StatusBadRequest, CodeBadCredentials)
}

func TestRouter_LocalizedMessages(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/test/admin", "", "", "Accept-Language", "tr-TR,tr;q=0.9")
	expectCode(t, rec, env, http.StatusUnauthorized, CodeUnauthenticated)
	if env.Error.Message != "Bu kaynağa erişmek için giriş yapmalısınız." {
		t.Fatalf("expected turkish message, got %q", env.Error.Message)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/nope", "", "")
	expectCode(t, rec, env, http.StatusNotFound, CodeBadRequest)
}

func TestRouter_PanicReturnsUnexpected(t *testing.T) {
	s := newTestServer(t)
	s.e.GET("/explode", func(echo.Context) error { panic("kaboom") })

	rec, env := s.do(t, http.MethodGet, "/explode", "", "")
	expectCode(t, rec, env, http.StatusInternalServerError, CodeUnexpected)
	if env.Error.Detail != "" {
		t.Fatalf("unexpected failures must not leak detail, got %q", env.Error.Detail)
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		rec, _ := s.do(t, http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
