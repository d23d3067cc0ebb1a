package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandleDeletePost removes a post owned by the caller. Existence is decided
// before ownership, so "no such post" answers 404 while "someone else's
// post" answers 403.
func (h *HTTPHandler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	postId := mux.Vars(r)["postId"]
	err := h.Storage.DeletePost(r.Context(), postId, identity.UserId)
	if err != nil {
		respondPostStorageError(w, "deleting post", err)
		return
	}
	writeJson(w, http.StatusOK, MessageResponse{Msg: "post removed"})
}
