package services

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/StormRens/Fake-Twitter/internal/logging"
	"github.com/StormRens/Fake-Twitter/internal/server/auth"
	"github.com/StormRens/Fake-Twitter/internal/server/config"
	"github.com/StormRens/Fake-Twitter/internal/server/notify"
	"github.com/StormRens/Fake-Twitter/internal/server/repositories/memory"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.VerificationMessage
	err  error
}

func (n *recordingNotifier) SendVerification(_ context.Context, msg notify.VerificationMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

// lastToken extracts the token from the most recent verification link.
func (n *recordingNotifier) lastToken(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent, "no verification mail sent")
	u, err := url.Parse(n.sent[len(n.sent)-1].Link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                         "test-secret",
		TokenValidityDuration:             time.Hour,
		VerificationTokenValidityDuration: time.Hour,
		BackendURL:                        "http://api.local",
	}
}

type fixture struct {
	store    *memory.Store
	notifier *recordingNotifier
	tokens   *auth.Tokens
	accounts *AccountService
	graph    *GraphService
	posts    *PostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	store := memory.NewStore()
	n := &recordingNotifier{}
	tokens := auth.NewTokens(cfg.SecretKey, cfg.TokenValidityDuration)

	accounts := NewAccountService(store, store, tokens, n, cfg, logging.Nop{})
	accounts.hasher.Memory = 1024

	return &fixture{
		store:    store,
		notifier: n,
		tokens:   tokens,
		accounts: accounts,
		graph:    NewGraphService(store, store, logging.Nop{}),
		posts:    NewPostService(store, store, logging.Nop{}),
	}
}

// verifiedUser registers and verifies username, returning its identity.
func (f *fixture) verifiedUser(t *testing.T, username string) auth.Identity {
	t.Helper()
	ctx := context.Background()
	_, err := f.accounts.Register(ctx, username+"@example.com", username, "pw-"+username)
	require.NoError(t, err)
	s, err := f.accounts.Verify(ctx, f.notifier.lastToken(t))
	require.NoError(t, err)
	return auth.Identity{ID: s.User.ID, Username: s.User.UserName}
}
