package httpapi

import (
	"net/http"
	"time"
)

func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"message":         "Server is running",
		"firebaseEnabled": s.opts.FirebaseEnabled,
	})
}

func (s *Server) testHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"message":   "API is working correctly",
		"timestamp": time.Now().UTC(),
	})
}
