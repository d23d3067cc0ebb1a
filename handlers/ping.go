package handlers

import (
	"net/http"
)

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, MessageResponse{Msg: "ok"})
}
