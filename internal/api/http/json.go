package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	ierr "restaurant-reviews/internal/errors"

	"github.com/rs/zerolog/hlog"
)

const maxJSONBytes = 1 << 20

type errorEnvelope struct {
	Error string `json:"error"`
}

type successEnvelope struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, &errorEnvelope{Error: message})
}

func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	return json.NewDecoder(r.Body).Decode(data)
}

// serviceError maps the error taxonomy onto status codes. Internal details are
// only logged, the client gets internalMsg.
func serviceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string, internalMsg string) {
	switch {
	case errors.Is(err, ierr.InvalidArgument):
		writeJSONError(w, http.StatusBadRequest, publicMessage(err, ierr.InvalidArgument))
	case errors.Is(err, ierr.Unauthorized):
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ierr.Forbidden):
		writeJSONError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, ierr.NotFound):
		writeJSONError(w, http.StatusNotFound, notFoundMsg)
	default:
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg(internalMsg)
		writeJSONError(w, http.StatusInternalServerError, internalMsg)
	}
}

// publicMessage strips the sentinel prefix from "invalid argument: review id is required".
func publicMessage(err error, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
