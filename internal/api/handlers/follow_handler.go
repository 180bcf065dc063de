package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"picstream/internal/auth"
	"picstream/internal/services"
)

// FollowHandler handles HTTP requests for the follow graph.
type FollowHandler struct {
	service services.FollowServiceProvider
}

// NewFollowHandler creates a new FollowHandler.
func NewFollowHandler(service services.FollowServiceProvider) *FollowHandler {
	return &FollowHandler{service: service}
}

// Follow makes the user in the URL follow the user named in the body. Only
// the account owner may create its own edges. Following someone already
// followed succeeds without creating a duplicate.
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}
	if id != callerID {
		http.Error(w, "Cannot follow as another user", http.StatusForbidden)
		return
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ID == "" {
		http.Error(w, "Missing target user id", http.StatusBadRequest)
		return
	}

	if err := h.service.Follow(callerID, payload.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Unfollow removes the edge to the user in the trailing URL segment.
// Unfollowing someone not followed is a no-op that still answers 200.
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}
	if id != callerID {
		http.Error(w, "Cannot unfollow as another user", http.StatusForbidden)
		return
	}

	if err := h.service.Unfollow(callerID, chi.URLParam(r, "follower")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Following lists the users the user in the URL follows.
func (h *FollowHandler) Following(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Following(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// Followers lists the users following the user in the URL.
func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Followers(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}
