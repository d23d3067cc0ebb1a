package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

type CreatePostRequestData struct {
	Text string `json:"text"`
}

func (h *HTTPHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var data CreatePostRequestData
	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		log.Printf("Failed to decode post data while creating post: %s", err.Error())
		writeTextValidationError(w)
		return
	}
	if strings.TrimSpace(data.Text) == "" {
		writeTextValidationError(w)
		return
	}

	// Snapshot the display name from the user record at creation time.
	user, err := h.Storage.GetUser(r.Context(), identity.UserId)
	if err != nil {
		log.Printf("Failed to find user %s while creating post: %s", identity.UserId, err.Error())
		writeJson(w, http.StatusInternalServerError, MessageResponse{Msg: INTERNAL_ERROR_MESSAGE})
		return
	}

	post, err := h.Storage.AddPost(r.Context(), identity.UserId, user.Name, data.Text)
	if err != nil {
		respondPostStorageError(w, "creating post", err)
		return
	}
	writeJson(w, http.StatusOK, post)
}
