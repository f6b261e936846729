package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anigawade45/grocery-market/internal/market"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusFromError maps the error taxonomy onto HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, market.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, market.ErrOwnership):
		return http.StatusForbidden
	case errors.Is(err, market.ErrValidation),
		errors.Is(err, market.ErrInvariant),
		errors.Is(err, market.ErrVerification):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := StatusFromError(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		// store internals stay out of responses
		msg = "internal error"
	}
	writeJSON(w, code, map[string]string{"error": msg})
}
