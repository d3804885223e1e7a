package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/sim-betting-service/internal/betting-service/bets"
	"github.com/radieske/sim-betting-service/internal/betting-service/dto"
	"github.com/radieske/sim-betting-service/internal/betting-service/ledger"
	"github.com/radieske/sim-betting-service/internal/betting-service/odds"
	"github.com/radieske/sim-betting-service/internal/betting-service/repo"
)

type fakeOdds struct{}

func (fakeOdds) OutcomePrice(_ context.Context, sport, matchID, team string) (odds.Quote, error) {
	switch {
	case matchID == "missing":
		return odds.Quote{}, odds.ErrMatchNotFound
	case matchID == "slow":
		return odds.Quote{}, odds.ErrUnavailable
	case team != "Lakers":
		return odds.Quote{}, odds.ErrNoPrice
	}
	return odds.Quote{Price: decimal.RequireFromString("2.5"), HomeTeam: "Lakers", AwayTeam: "Celtics", SportKey: sport}, nil
}

type fakeListings struct{ fail bool }

func (f fakeListings) Sports(context.Context) (json.RawMessage, error) {
	if f.fail {
		return nil, odds.ErrUnavailable
	}
	return json.RawMessage(`[{"key":"basketball_nba"}]`), nil
}

func (f fakeListings) Matches(_ context.Context, sport string) (json.RawMessage, error) {
	return json.RawMessage(`[{"sport_key":"` + sport + `"}]`), nil
}

func (f fakeListings) Scores(_ context.Context, sport string, daysFrom int) (json.RawMessage, error) {
	return json.RawMessage(`{"days":` + strconv.Itoa(daysFrom) + `}`), nil
}

type alwaysWin struct{}

func (alwaysWin) Float64() float64 { return 0 }

func newTestServer(t *testing.T, listings Listings) *httptest.Server {
	t.Helper()
	store := repo.NewMemory()
	led := ledger.New(store.Accounts(), ledger.DefaultOpeningBalance)
	mgr := bets.NewManager(zap.NewNop(), store, led, fakeOdds{}, bets.WithRandomSource(alwaysWin{}))
	srv := httptest.NewServer(NewServer(zap.NewNop(), mgr, led, listings, nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, user, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if user != "" {
		req.Header.Set(HeaderUserID, user)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestServer_RequiresUser(t *testing.T) {
	srv := newTestServer(t, fakeListings{})

	resp, body := do(t, srv, http.MethodGet, "/api/betting/balance", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestServer_NoWebsocketWithoutHub(t *testing.T) {
	srv := newTestServer(t, fakeListings{})

	resp, _ := do(t, srv, http.MethodGet, "/ws", "u1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := do(t, srv, http.MethodPost, "/api/betting/place", "u1",
		`{"matchId":"m1","sport":"basketball_nba","selectedTeam":"Lakers","amount":10}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 990, body["newBalance"])
}

func TestServer_BalancePlaceFinishHistory(t *testing.T) {
	srv := newTestServer(t, fakeListings{})

	resp, body := do(t, srv, http.MethodGet, "/api/betting/balance", "u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1000, body["balance"])

	resp, body = do(t, srv, http.MethodPost, "/api/betting/place", "u1",
		`{"matchId":"m1","sport":"basketball_nba","selectedTeam":"Lakers","amount":100}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 900, body["newBalance"])
	bet := body["bet"].(map[string]any)
	assert.EqualValues(t, 250, bet["potentialWinnings"])
	assert.Equal(t, "pending", bet["status"])
	assert.Equal(t, "Lakers", bet["matchSnapshot"].(map[string]any)["homeTeam"])
	betID := bet["id"].(string)

	resp, body = do(t, srv, http.MethodPost, "/api/betting/finish/"+betID, "u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "won", body["status"])
	assert.EqualValues(t, 250, body["winnings"])
	assert.EqualValues(t, 1150, body["newBalance"])

	resp, body = do(t, srv, http.MethodPost, "/api/betting/finish/"+betID, "u1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Bet not found or already finished", body["error"])

	resp, body = do(t, srv, http.MethodGet, "/api/betting/history?status=won", "u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["bets"], 1)
	assert.Equal(t, map[string]any{"total": 1.0, "page": 1.0, "pages": 1.0}, body["pagination"])
}

func TestServer_PlaceErrors(t *testing.T) {
	srv := newTestServer(t, fakeListings{})
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"zero amount", `{"matchId":"m1","sport":"basketball_nba","selectedTeam":"Lakers","amount":0}`, http.StatusBadRequest},
		{"too many decimals", `{"matchId":"m1","sport":"basketball_nba","selectedTeam":"Lakers","amount":"1.001"}`, http.StatusBadRequest},
		{"unknown team", `{"matchId":"m1","sport":"basketball_nba","selectedTeam":"Knicks","amount":10}`, http.StatusBadRequest},
		{"insufficient funds", `{"matchId":"m1","sport":"basketball_nba","selectedTeam":"Lakers","amount":5000}`, http.StatusBadRequest},
		{"unknown match", `{"matchId":"missing","sport":"basketball_nba","selectedTeam":"Lakers","amount":10}`, http.StatusNotFound},
		{"upstream down", `{"matchId":"slow","sport":"basketball_nba","selectedTeam":"Lakers","amount":10}`, http.StatusServiceUnavailable},
		{"extreme exponent", `{"matchId":"m1","sport":"basketball_nba","selectedTeam":"Lakers","amount":1e-20000000}`, http.StatusBadRequest},
		{"oversized body", `{"matchId":"m1","sport":"basketball_nba","selectedTeam":"Lakers","amount":"` + strings.Repeat("9", maxBodyBytes) + `"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, srv, http.MethodPost, "/api/betting/place", "u1", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}

	_, body := do(t, srv, http.MethodGet, "/api/betting/balance", "u1", "")
	assert.EqualValues(t, 1000, body["balance"])
}

func TestServer_HistoryQueryValidation(t *testing.T) {
	srv := newTestServer(t, fakeListings{})

	for _, q := range []string{"?page=0", "?limit=101", "?limit=abc", "?status=void"} {
		resp, _ := do(t, srv, http.MethodGet, "/api/betting/history"+q, "u1", "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}

	resp, body := do(t, srv, http.MethodGet, "/api/betting/history", "u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{}, body["bets"])
	assert.Equal(t, map[string]any{"total": 0.0, "page": 1.0, "pages": 0.0}, body["pagination"])
}

func TestServer_OddsListings(t *testing.T) {
	srv := newTestServer(t, fakeListings{})

	resp, err := http.Get(srv.URL + "/api/odds/scores/basketball_nba?daysFrom=3")
	require.NoError(t, err)
	defer resp.Body.Close()
	var scores map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&scores))
	assert.Equal(t, 3, scores["days"])

	resp2, err := http.Get(srv.URL + "/api/odds/matches/basketball_nba")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	down := newTestServer(t, fakeListings{fail: true})
	resp3, err := http.Get(down.URL + "/api/odds/sports")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp3.StatusCode)
	var e dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp3.Body).Decode(&e))
	assert.Equal(t, "failed to fetch sports", e.Error)
}

func TestWriteError_InternalIsGeneric(t *testing.T) {
	s := &Server{log: zap.NewNop()}
	rec := httptest.NewRecorder()
	s.writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
