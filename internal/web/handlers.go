package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/huangsam/sitpulse/core"
	"github.com/huangsam/sitpulse/core/country"
	"github.com/huangsam/sitpulse/schema"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleReport(kind schema.ReportKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := country.ParseFilter(r.URL.Query().Get("country"))
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		doc, err := core.BuildReport(s.pipeline, kind, filter, s.mgr)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, country.ErrUnknownCountry) {
				status = http.StatusBadRequest
			}
			s.writeJSON(w, status, errorResponse{Error: err.Error()})
			return
		}
		s.writeJSON(w, http.StatusOK, doc)
	}
}

func (s *Server) handleCountries(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, country.Options())
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}
