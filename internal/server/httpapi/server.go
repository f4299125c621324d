// Package httpapi exposes the Ducky services over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/StormRens/Fake-Twitter/internal/logging"
	"github.com/StormRens/Fake-Twitter/internal/server/auth"
	"github.com/StormRens/Fake-Twitter/internal/server/config"
	"github.com/StormRens/Fake-Twitter/internal/server/metrics"
	"github.com/StormRens/Fake-Twitter/internal/server/services"
	"github.com/gorilla/mux"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	limiterIdleTTL    = 10 * time.Minute
)

// Pinger reports whether the backing store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services groups the business services the handlers call into.
type Services struct {
	Accounts *services.AccountService
	Graph    *services.GraphService
	Posts    *services.PostService
}

type HTTPServer struct {
	address     string
	frontendURL string
	secure      bool
	accounts    *services.AccountService
	graph       *services.GraphService
	posts       *services.PostService
	tokens      *auth.Tokens
	health      Pinger
	limiter     *rateLimiter
	logger      logging.Logger
	handler     http.Handler
}

// NewHTTPServer wires the router. health may be nil, in which case
// /healthz always reports ok.
func NewHTTPServer(cfg *config.Config, l logging.Logger, svc Services, tokens *auth.Tokens, health Pinger) *HTTPServer {
	s := &HTTPServer{
		address:     cfg.EndpointAddrHTTP,
		frontendURL: cfg.FrontendURL,
		secure:      cfg.Production,
		accounts:    svc.Accounts,
		graph:       svc.Graph,
		posts:       svc.Posts,
		tokens:      tokens,
		health:      health,
		logger:      l.With("module", "http_server"),
	}
	s.limiter = newRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, s.logger)
	s.handler = s.corsMiddleware(s.routes())
	return s
}

// Handler returns the complete middleware chain and router.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

func (s *HTTPServer) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.accessLogMiddleware, metrics.InstrumentHandler)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	a := r.PathPrefix("/auth").Subrouter()
	a.Use(s.limiter.middleware)
	a.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	a.HandleFunc("/verify", s.handleVerifyRedirect).Methods(http.MethodGet)
	a.HandleFunc("/verify", s.handleVerifyToken).Methods(http.MethodPost)
	a.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	a.HandleFunc("/token", s.handleToken).Methods(http.MethodPost)
	a.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	a.Handle("/me", s.gate(s.handleMe)).Methods(http.MethodGet)

	p := r.PathPrefix("/post").Subrouter()
	p.Handle("", s.gate(s.handleListPosts)).Methods(http.MethodGet)
	p.Handle("/", s.gate(s.handleListPosts)).Methods(http.MethodGet)
	p.Handle("/create", s.gate(s.handleCreatePost)).Methods(http.MethodPost)
	p.Handle("/{userId}/following", s.gate(s.handleFollowingFeed)).Methods(http.MethodGet)
	p.Handle("/{userId}", s.gate(s.handleUserPosts)).Methods(http.MethodGet)
	p.Handle("/{id}", s.gate(s.handleEditPost)).Methods(http.MethodPut)
	p.Handle("/{id}", s.gate(s.handleDeletePost)).Methods(http.MethodDelete)

	u := r.PathPrefix("/user").Subrouter()
	u.HandleFunc("/all", s.handleListUsers).Methods(http.MethodGet)
	u.Handle("/{username}", s.gate(s.handleDeleteUser)).Methods(http.MethodDelete)
	u.Handle("/{username}/follow", s.gate(s.handleFollow)).Methods(http.MethodPost)
	u.Handle("/{username}/unfollow", s.gate(s.handleUnfollow)).Methods(http.MethodPost)
	u.Handle("/{username}/followers", s.gate(s.handleFollowers)).Methods(http.MethodGet)
	u.Handle("/{username}/following", s.gate(s.handleFollowing)).Methods(http.MethodGet)
	u.Handle("/{username}/profile", s.gate(s.handleProfile)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessageError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessageError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go s.limiter.pruneLoop(ctx, limiterIdleTTL)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
