package response

import (
	"encoding/json"
	"net/http"

	"github.com/mrops-br/products-catalog-api/internal/domain"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// StatusFor maps an error to the HTTP status it is surfaced with.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error sends an error response. Domain errors keep their kind and message;
// anything else is reported as an internal error without leaking details.
func Error(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		JSON(w, status, ErrorResponse{
			Error:   "internal_server_error",
			Message: http.StatusText(status),
		})
		return
	}

	JSON(w, status, ErrorResponse{
		Error:   string(domain.KindOf(err)),
		Message: err.Error(),
	})
}
