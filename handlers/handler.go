package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"postboard/auth"
	"postboard/storage"
)

var INTERNAL_ERROR_MESSAGE = "Server Error"

type HTTPHandler struct {
	Storage storage.Storage
	Gate    *auth.Gate
}

type MessageResponse struct {
	Msg string `json:"msg"`
}

type ValidationError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

type ValidationErrorResponse struct {
	Errors []ValidationError `json:"errors"`
}

func writeJson(w http.ResponseWriter, status int, body interface{}) {
	rawResponse, err := json.Marshal(body)
	if err != nil {
		log.Printf("Failed to dump response to json: %s", err.Error())
		http.Error(w, INTERNAL_ERROR_MESSAGE, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(rawResponse)
}

func writeTextValidationError(w http.ResponseWriter) {
	writeJson(w, http.StatusBadRequest, ValidationErrorResponse{
		Errors: []ValidationError{{Param: "text", Msg: "Post should not be empty"}},
	})
}

// authenticate resolves the caller identity or answers 401 and reports false.
// Handlers receive the identity as an explicit value; nothing is attached to
// the request context.
func (h *HTTPHandler) authenticate(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, err := h.Gate.Authenticate(r)
	if err != nil {
		log.Printf("Unauthenticated request: %s", err.Error())
		msg := "invalid token"
		if errors.Is(err, auth.ErrMissingToken) {
			msg = "missing token"
		} else if errors.Is(err, auth.ErrExpiredToken) {
			msg = "expired token"
		}
		writeJson(w, http.StatusUnauthorized, MessageResponse{Msg: msg})
		return auth.Identity{}, false
	}
	return identity, true
}

// respondPostStorageError maps storage sentinel errors for a post operation
// to their external status. Internal detail stays in the log.
func respondPostStorageError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, storage.Forbidden) {
		log.Printf("Forbidden error while %s: %s", op, err.Error())
		writeJson(w, http.StatusForbidden, MessageResponse{Msg: "User not authorized"})
		return
	}
	if errors.Is(err, storage.NotFoundError) {
		log.Printf("Not Found error while %s: %s", op, err.Error())
		writeJson(w, http.StatusNotFound, MessageResponse{Msg: "Post not found"})
		return
	}
	if errors.Is(err, storage.ClientError) {
		log.Printf("Client error while %s: %s", op, err.Error())
		writeJson(w, http.StatusBadRequest, MessageResponse{Msg: "Invalid request"})
		return
	}
	log.Printf("Internal error while %s: %s", op, err.Error())
	writeJson(w, http.StatusInternalServerError, MessageResponse{Msg: INTERNAL_ERROR_MESSAGE})
}
