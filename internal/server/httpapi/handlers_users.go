package httpapi

import (
	"net/http"

	"github.com/StormRens/Fake-Twitter/internal/server/auth"
	"github.com/StormRens/Fake-Twitter/internal/server/models"
	"github.com/gorilla/mux"
)

type usersResponse struct {
	Users []models.UserSummary `json:"users"`
}

type followersResponse struct {
	Followers []models.UserSummary `json:"followers"`
}

type followingResponse struct {
	Following []models.UserSummary `json:"following"`
}

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.graph.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: list})
}

func (s *HTTPServer) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFrom(r.Context())
	if err := s.graph.DeleteAccount(r.Context(), caller, mux.Vars(r)["username"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "User deleted"})
}

func (s *HTTPServer) handleFollow(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFrom(r.Context())
	if err := s.graph.Follow(r.Context(), caller, mux.Vars(r)["username"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Followed"})
}

func (s *HTTPServer) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFrom(r.Context())
	if err := s.graph.Unfollow(r.Context(), caller, mux.Vars(r)["username"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Unfollowed"})
}

func (s *HTTPServer) handleFollowers(w http.ResponseWriter, r *http.Request) {
	list, err := s.graph.Followers(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, followersResponse{Followers: list})
}

func (s *HTTPServer) handleFollowing(w http.ResponseWriter, r *http.Request) {
	list, err := s.graph.Following(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, followingResponse{Following: list})
}

func (s *HTTPServer) handleProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFrom(r.Context())
	var viewer *auth.Identity
	if ok {
		viewer = &caller
	}

	profile, err := s.graph.Profile(r.Context(), viewer, mux.Vars(r)["username"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
