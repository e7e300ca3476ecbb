// backend/src/utils/utils.go
package utils

import (
	"encoding/json"
	"net/http"

	"github.com/username/gasfluxo/backend/src/logger"
)

// JSONErrorResponse is the envelope used by every error reply of the API.
type JSONErrorResponse struct {
	Error string `json:"error"`
}

// SendJSONError writes a JSON error body with the given HTTP status.
func SendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(JSONErrorResponse{Error: message}); err != nil {
		logger.L.Error("Failed to encode JSON error response", "error", err)
	}
}

// SendJSON writes v as a JSON body with the given HTTP status.
func SendJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L.Error("Failed to encode JSON response", "error", err)
	}
}
