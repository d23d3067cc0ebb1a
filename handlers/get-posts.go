package handlers

import (
	"net/http"
)

// HandleListPosts returns every post, newest first. Authentication is
// required but the listing is not scoped to the caller.
func (h *HTTPHandler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r); !ok {
		return
	}

	posts, err := h.Storage.ListPosts(r.Context())
	if err != nil {
		respondPostStorageError(w, "listing posts", err)
		return
	}
	writeJson(w, http.StatusOK, posts)
}
