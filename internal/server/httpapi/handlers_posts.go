package httpapi

import (
	"net/http"

	"github.com/StormRens/Fake-Twitter/internal/server/models"
	"github.com/gorilla/mux"
)

type createPostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type editPostRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type postsResponse struct {
	Posts []*models.Post `json:"posts"`
}

type postResponse struct {
	Post *models.Post `json:"post"`
}

func (s *HTTPServer) handleListPosts(w http.ResponseWriter, r *http.Request) {
	list, err := s.posts.ListAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postsResponse{Posts: list})
}

func (s *HTTPServer) handleUserPosts(w http.ResponseWriter, r *http.Request) {
	list, err := s.posts.ListByUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postsResponse{Posts: list})
}

func (s *HTTPServer) handleFollowingFeed(w http.ResponseWriter, r *http.Request) {
	list, err := s.posts.ListByFollowing(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postsResponse{Posts: list})
}

func (s *HTTPServer) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	caller, _ := IdentityFrom(r.Context())
	post, err := s.posts.Create(r.Context(), caller, req.Title, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, postResponse{Post: post})
}

func (s *HTTPServer) handleEditPost(w http.ResponseWriter, r *http.Request) {
	var req editPostRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	caller, _ := IdentityFrom(r.Context())
	patch := models.PostPatch{Title: req.Title, Description: req.Description}
	post, err := s.posts.Edit(r.Context(), caller, mux.Vars(r)["id"], patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postResponse{Post: post})
}

func (s *HTTPServer) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	caller, _ := IdentityFrom(r.Context())
	if err := s.posts.Delete(r.Context(), caller, mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
