package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/StormRens/Fake-Twitter/internal/logging"
	"github.com/StormRens/Fake-Twitter/internal/server/auth"
	"github.com/StormRens/Fake-Twitter/internal/server/config"
	"github.com/StormRens/Fake-Twitter/internal/server/notify"
	"github.com/StormRens/Fake-Twitter/internal/server/repositories/memory"
	"github.com/StormRens/Fake-Twitter/internal/server/services"
	"github.com/stretchr/testify/require"
)

const testFrontend = "http://app.local"

type mailbox struct {
	mu   sync.Mutex
	sent []notify.VerificationMessage
}

func (m *mailbox) SendVerification(_ context.Context, msg notify.VerificationMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mailbox) tokenFor(t *testing.T, email string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To == email {
			u, err := url.Parse(m.sent[i].Link)
			require.NoError(t, err)
			return u.Query().Get("token")
		}
	}
	t.Fatalf("no verification mail for %s", email)
	return ""
}

type testEnv struct {
	srv     *HTTPServer
	mail    *mailbox
	store   *memory.Store
	tokens  *auth.Tokens
	handler http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		EndpointAddrHTTP:                  "127.0.0.1:0",
		SecretKey:                         "test-secret",
		TokenValidityDuration:             time.Hour,
		VerificationTokenValidityDuration: time.Hour,
		FrontendURL:                       testFrontend,
		BackendURL:                        "http://api.local",
	}
}

func newTestEnv(t *testing.T, cfg *config.Config, health Pinger) *testEnv {
	t.Helper()
	store := memory.NewStore()
	mail := &mailbox{}
	tokens := auth.NewTokens(cfg.SecretKey, cfg.TokenValidityDuration)

	accounts := services.NewAccountService(store, store, tokens, mail, cfg, logging.Nop{})
	hasher := auth.NewArgon2()
	hasher.Memory = 1024
	accounts.SetHasher(hasher)

	srv := NewHTTPServer(cfg, logging.Nop{}, Services{
		Accounts: accounts,
		Graph:    services.NewGraphService(store, store, logging.Nop{}),
		Posts:    services.NewPostService(store, store, logging.Nop{}),
	}, tokens, health)

	return &testEnv{srv: srv, mail: mail, store: store, tokens: tokens, handler: srv.Handler()}
}

// do sends a request; token, when set, goes in the Authorization header.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// signup registers and verifies username through the API and returns a
// bearer token and the user id.
func (e *testEnv) signup(t *testing.T, username string) (token, id string) {
	t.Helper()
	email := username + "@example.com"
	rec := e.do(t, http.MethodPost, "/auth/register", map[string]string{
		"email": email, "username": username, "password": "pw-" + username,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/auth/verify", map[string]string{"token": e.mail.tokenFor(t, email)}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	decode(t, rec, &out)
	ident, err := e.tokens.Verify(out.Token)
	require.NoError(t, err)
	return out.Token, ident.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out errorResponse
	decode(t, rec, &out)
	return out.Error
}

func tokenCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	return nil
}
