package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/sim-betting-service/internal/betting-service/bets"
	"github.com/radieske/sim-betting-service/internal/betting-service/dto"
	"github.com/radieske/sim-betting-service/internal/betting-service/ledger"
	"github.com/radieske/sim-betting-service/internal/betting-service/repo"
	"github.com/radieske/sim-betting-service/internal/betting-service/ws"
)

// HeaderUserID é preenchido pelo gateway de autenticação
const HeaderUserID = "X-User-ID"

// maxBodyBytes limita o corpo de POST /place
const maxBodyBytes = 4 << 10

// Listings são as consultas de odds repassadas ao cliente
type Listings interface {
	Sports(ctx context.Context) (json.RawMessage, error)
	Matches(ctx context.Context, sport string) (json.RawMessage, error)
	Scores(ctx context.Context, sport string, daysFrom int) (json.RawMessage, error)
}

type Server struct {
	log      *zap.Logger
	bets     *bets.Manager
	ledger   *ledger.Ledger
	listings Listings
	hub      *ws.Hub
}

func NewServer(log *zap.Logger, m *bets.Manager, l *ledger.Ledger, listings Listings, hub *ws.Hub) *Server {
	return &Server{log: log, bets: m, ledger: l, listings: listings, hub: hub}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/betting", func(r chi.Router) {
		r.Use(requireUser)
		r.Get("/balance", s.getBalance)
		r.Post("/place", s.placeBet)
		r.Post("/finish/{betId}", s.finishBet)
		r.Get("/history", s.history)
	})

	r.Route("/api/odds", func(r chi.Router) {
		r.Get("/sports", s.listSports)
		r.Get("/matches/{sport}", s.listMatches)
		r.Get("/scores/{sport}", s.listScores)
	})

	if s.hub != nil {
		r.With(requireUser).Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			s.hub.Serve(w, r, userID(r))
		})
	}
	return r
}

type ctxKey struct{}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderUserID)
		if id == "" {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "missing user identity"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	bal, err := s.ledger.Balance(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.BalanceResponse{Balance: bal.InexactFloat64()})
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid json body"})
		return
	}

	p, err := s.bets.PlaceBet(r.Context(), bets.PlaceBetInput{
		UserID:       userID(r),
		Sport:        req.Sport,
		MatchID:      req.MatchID,
		SelectedTeam: req.SelectedTeam,
		Amount:       req.Amount,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewPlaceBetResponse(p))
}

func (s *Server) finishBet(w http.ResponseWriter, r *http.Request) {
	st, err := s.bets.FinishBet(r.Context(), userID(r), chi.URLParam(r, "betId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewFinishBetResponse(st))
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"), bets.DefaultPage)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "page must be an integer"})
		return
	}
	limit, err := intParam(q.Get("limit"), bets.DefaultLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "limit must be an integer"})
		return
	}

	res, err := s.bets.ListBets(r.Context(), bets.HistoryQuery{
		UserID: userID(r),
		Status: repo.Status(q.Get("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewHistoryResponse(res))
}

func (s *Server) listSports(w http.ResponseWriter, r *http.Request) {
	b, err := s.listings.Sports(r.Context())
	s.writeListing(w, b, err, "failed to fetch sports")
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	b, err := s.listings.Matches(r.Context(), chi.URLParam(r, "sport"))
	s.writeListing(w, b, err, "failed to fetch matches")
}

func (s *Server) listScores(w http.ResponseWriter, r *http.Request) {
	daysFrom, err := intParam(r.URL.Query().Get("daysFrom"), 1)
	if err != nil || daysFrom < 1 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "daysFrom must be a positive integer"})
		return
	}
	b, err := s.listings.Scores(r.Context(), chi.URLParam(r, "sport"), daysFrom)
	s.writeListing(w, b, err, "failed to fetch scores")
}

func (s *Server) writeListing(w http.ResponseWriter, b json.RawMessage, err error, msg string) {
	if err != nil {
		s.log.Warn("odds listing failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: msg})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// writeError traduz os erros de domínio para status HTTP
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *bets.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: verr.Error()})
	case errors.Is(err, bets.ErrInsufficientFunds):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Insufficient balance"})
	case errors.Is(err, bets.ErrOddsUnavailable):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: bets.ErrOddsUnavailable.Error()})
	case errors.Is(err, bets.ErrMatchNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Match not found"})
	case errors.Is(err, bets.ErrBetNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Bet not found or already finished"})
	case errors.Is(err, bets.ErrUpstreamUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "odds provider unavailable"})
	default:
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
