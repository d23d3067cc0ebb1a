package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandleGetPost fetches a single post by id. Any authenticated caller may
// read any post. A malformed id and an absent id are both answered 404.
func (h *HTTPHandler) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r); !ok {
		return
	}

	postId := mux.Vars(r)["postId"]
	post, err := h.Storage.GetPost(r.Context(), postId)
	if err != nil {
		respondPostStorageError(w, "getting post", err)
		return
	}
	writeJson(w, http.StatusOK, post)
}
