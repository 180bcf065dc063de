package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"picstream/internal/auth"
	"picstream/internal/services"
	"picstream/internal/storage"
)

// PicHandler handles HTTP requests for posts and caption search.
type PicHandler struct {
	service  services.PicServiceProvider
	trending services.TrendingServiceProvider
	uploads  *storage.LocalStore
}

// NewPicHandler creates a new PicHandler.
func NewPicHandler(service services.PicServiceProvider, trending services.TrendingServiceProvider, uploads *storage.LocalStore) *PicHandler {
	return &PicHandler{service: service, trending: trending, uploads: uploads}
}

// Create handles a new post for the user in the URL. Only the account owner
// may post as itself; the caption comes from the "pic" form field and the
// optional image from the "image" file field.
func (h *PicHandler) Create(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}
	if id != callerID {
		http.Error(w, "Cannot post as another user", http.StatusForbidden)
		return
	}

	// The body may be multipart (with an image) or plain form data.
	r.ParseMultipartForm(32 << 20)

	locator := ""
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		locator, err = h.uploads.Save(callerID, header.Filename, file)
		if err != nil {
			log.Error().Err(err).Str("user_id", callerID).Msg("Failed to store upload")
			http.Error(w, "Failed to store image", http.StatusInternalServerError)
			return
		}
	}

	pic, err := h.service.Create(callerID, r.FormValue("pic"), locator)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"pic": pic})
}

// ListByUser returns a user's posts, newest first.
func (h *PicHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pics, err := h.service.ListByUser(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"pics": pics})
}

// Search matches the keywords query parameter against captions.
func (h *PicHandler) Search(w http.ResponseWriter, r *http.Request) {
	keywords := r.URL.Query().Get("keywords")
	if keywords == "" {
		http.Error(w, "Missing keywords", http.StatusBadRequest)
		return
	}

	offset, limit := pagination(r)
	pics, err := h.service.SearchKeywords(keywords, offset, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"pics": pics})
}

// Hashtag returns posts whose caption carries the tag from the URL.
func (h *PicHandler) Hashtag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "hashtag")
	offset, limit := pagination(r)

	pics, err := h.service.SearchHashtag(tag, offset, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"pics": pics})
}

// Trending serves the cached hashtag tally.
func (h *PicHandler) Trending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"tags": h.trending.Top()})
}
