package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/StormRens/Fake-Twitter/internal/common"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessageError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError translates a service error into a status code and a
// client-safe message. Anything unrecognised is logged and reported as 500.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeMessageError(w, status, msg)
}

func classify(err error) (int, string) {
	var reqErr *common.RequestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.Message
	case errors.Is(err, common.ErrorConflict):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, common.ErrorInvalidVerificationToken):
		return http.StatusBadRequest, "Invalid or expired token"
	case errors.Is(err, common.ErrorSelfFollow):
		return http.StatusBadRequest, "Cannot follow yourself"
	case errors.Is(err, common.ErrorBadRequest):
		return http.StatusBadRequest, "Bad request"
	case errors.Is(err, common.ErrorInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, common.ErrorNotVerified):
		return http.StatusForbidden, "Email not verified"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, common.ErrorUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, common.ErrorPostNotFound):
		return http.StatusNotFound, "Post not found"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, "Server error"
	}
}

// decodeJSON reads a JSON object from the request body. An empty body
// decodes to the zero value so missing fields are reported by the service.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return common.NewRequestError("Invalid JSON body")
	}
	return nil
}
