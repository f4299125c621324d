package httpapi

import (
	"net/http"

	"github.com/StormRens/Fake-Twitter/internal/common"
	"github.com/StormRens/Fake-Twitter/internal/server/models"
)

type registerRequest struct {
	Email    string `json:"email"`
	UserName string `json:"username"`
	Password string `json:"password"`
}

type credentialsRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	Message string             `json:"message"`
	User    models.UserSummary `json:"user"`
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.accounts.Register(r.Context(), req.Email, req.UserName, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", user.UserName)
	writeJSON(w, http.StatusCreated, messageResponse{Message: "User registered. Check your email to verify the account."})
}

// handleVerifyRedirect serves the link from the verification mail: it
// sets the session cookie and sends the browser to the frontend.
func (s *HTTPServer) handleVerifyRedirect(w http.ResponseWriter, r *http.Request) {
	session, err := s.accounts.Verify(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setTokenCookie(w, session.Token)
	http.Redirect(w, r, s.frontendURL, http.StatusFound)
}

// handleVerifyToken is the non-browser variant returning the token as JSON.
func (s *HTTPServer) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.accounts.Verify(r.Context(), req.Token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: session.Token})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.accounts.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.setTokenCookie(w, session.Token)
	writeJSON(w, http.StatusOK, sessionResponse{Message: "Logged in", User: session.User})
}

func (s *HTTPServer) handleToken(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.accounts.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: session.Token})
}

// handleLogout only clears the cookie; issued tokens stay valid until
// they expire.
func (s *HTTPServer) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, s.cookie("", -1))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	writeJSON(w, http.StatusOK, models.UserSummary{ID: id.ID, UserName: id.Username})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.PingContext(r.Context()); err != nil {
			s.logger.Error(r.Context(), "health check failed", "error", err)
			writeMessageError(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, s.cookie(token, int(s.tokens.Validity().Seconds())))
}

func (s *HTTPServer) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     common.TokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
