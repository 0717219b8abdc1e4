package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Limits for list endpoints that take ?limit=
const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message interface{}) {
	respondJSON(w, status, map[string]interface{}{
		"error": message,
	})
}

// parseLimit reads ?limit=, falling back to the default and capping at maxListLimit
func parseLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, true
}
