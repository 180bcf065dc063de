package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"picstream/internal/services"
)

// FeedHandler handles HTTP requests for personalized feeds.
type FeedHandler struct {
	service services.FeedServiceProvider
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(service services.FeedServiceProvider) *FeedHandler {
	return &FeedHandler{service: service}
}

// Get returns the feed for the user in the URL: their own posts and those
// of everyone they follow, newest first.
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	offset, limit := pagination(r)

	pics, err := h.service.Feed(id, offset, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"pics": pics})
}
