package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	claimerr "github.com/tkarpov/claimscope/internal/errors"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response failed", zap.Error(err))
	}
}

// respondError maps structured pipeline errors to their HTTP status; anything
// else becomes a 500 with the INTERNAL code.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	var appErr *claimerr.Error
	if !errors.As(err, &appErr) {
		appErr = claimerr.NewInternal(err)
	}
	s.respondJSON(w, appErr.Status, map[string]any{"error": appErr})
}
