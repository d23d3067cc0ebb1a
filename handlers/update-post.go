package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"postboard/storage/models"
)

type UpdatePostRequestData struct {
	Text string `json:"text"`
}

type UpdatePostResponse struct {
	Post *models.Post `json:"post"`
	Msg  string       `json:"msg"`
}

// HandleUpdatePost replaces the text of a post. No ownership check: any
// authenticated caller may edit any post, matching delete's counterpart
// policy only on the delete side.
func (h *HTTPHandler) HandleUpdatePost(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r); !ok {
		return
	}

	var data UpdatePostRequestData
	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		log.Printf("Failed to decode post data while updating post: %s", err.Error())
		writeTextValidationError(w)
		return
	}
	if strings.TrimSpace(data.Text) == "" {
		writeTextValidationError(w)
		return
	}

	postId := mux.Vars(r)["postId"]
	post, err := h.Storage.UpdatePostText(r.Context(), postId, data.Text)
	if err != nil {
		respondPostStorageError(w, "updating post", err)
		return
	}
	writeJson(w, http.StatusOK, UpdatePostResponse{Post: post, Msg: "Post Updated"})
}
