package server

import (
	"encoding/json"
	"io"
	"net/http"
)

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeEngineError maps the engine error taxonomy onto HTTP statuses.
// Anything unclassified is an infrastructure failure.
func writeEngineError(w http.ResponseWriter, err error) {
	kind, ok := KindOf(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	status := http.StatusBadRequest
	switch kind {
	case KindAuthorization:
		status = http.StatusForbidden
	case KindConflict:
		status = http.StatusConflict
	case KindNotFound:
		status = http.StatusNotFound
	}
	writeError(w, status, err.Error())
}
