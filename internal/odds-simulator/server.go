package oddssim

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Server expõe o catálogo no mesmo formato do the-odds-api v4
type Server struct {
	log      *zap.Logger
	catalog  *Catalog
	apiKey   string
	requests *prometheus.CounterVec
}

// NewServer cria o servidor; com apiKey vazio qualquer chave é aceita
func NewServer(log *zap.Logger, c *Catalog, apiKey string, requests *prometheus.CounterVec) *Server {
	return &Server{log: log, catalog: c, apiKey: apiKey, requests: requests}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/v4", func(r chi.Router) {
		r.Use(s.checkKey)
		r.Get("/sports", s.count("sports", s.listSports))
		r.Get("/sports/{sport}/odds", s.count("odds", s.listOdds))
		r.Get("/sports/{sport}/events/{id}/odds", s.count("event_odds", s.eventOdds))
		r.Get("/sports/{sport}/scores", s.count("scores", s.listScores))
	})
	return r
}

func (s *Server) count(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.requests != nil {
			s.requests.WithLabelValues(route).Inc()
		}
		h(w, r)
	}
}

func (s *Server) checkKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.URL.Query().Get("apiKey") != s.apiKey {
			s.log.Warn("invalid api key", zap.String("path", r.URL.Path))
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "API key is not valid"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listSports(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Sports())
}

func (s *Server) listOdds(w http.ResponseWriter, r *http.Request) {
	sport := chi.URLParam(r, "sport")
	if !s.catalog.HasSport(sport) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Unknown sport"})
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.Events(sport))
}

func (s *Server) eventOdds(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.catalog.Event(chi.URLParam(r, "sport"), chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Event not found"})
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) listScores(w http.ResponseWriter, r *http.Request) {
	sport := chi.URLParam(r, "sport")
	if !s.catalog.HasSport(sport) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Unknown sport"})
		return
	}
	daysFrom := 1
	if v := r.URL.Query().Get("daysFrom"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 3 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "daysFrom must be between 1 and 3"})
			return
		}
		daysFrom = n
	}
	writeJSON(w, http.StatusOK, s.catalog.Scores(sport, daysFrom))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
