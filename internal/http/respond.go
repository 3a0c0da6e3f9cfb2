package http

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeValidationError(w http.ResponseWriter, err *ValidationError) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Details: err.Fields})
}
