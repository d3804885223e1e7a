package bets

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/sim-betting-service/internal/betting-service/ledger"
	"github.com/radieske/sim-betting-service/internal/betting-service/odds"
	"github.com/radieske/sim-betting-service/internal/betting-service/repo"
	"github.com/radieske/sim-betting-service/pkg/contracts/events"
)

const (
	testSport = "soccer_brazil_campeonato"
	testMatch = "e912304de2b2ce35b473ce2ecd3d1502"
)

// stubOdds devolve price para qualquer time, exceto os casos especiais por matchID
type stubOdds struct {
	price decimal.Decimal
	err   error
	calls int
	mu    sync.Mutex
}

func (s *stubOdds) OutcomePrice(_ context.Context, sport, matchID, team string) (odds.Quote, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return odds.Quote{}, s.err
	}
	if team != "Flamengo" && team != "Palmeiras" {
		return odds.Quote{}, odds.ErrNoPrice
	}
	return odds.Quote{
		Price:     s.price,
		HomeTeam:  "Flamengo",
		AwayTeam:  "Palmeiras",
		StartTime: time.Date(2025, 3, 2, 19, 0, 0, 0, time.UTC),
		SportKey:  sport,
	}, nil
}

// seqRandom devolve os valores em sequência, repetindo o último
type seqRandom struct {
	mu     sync.Mutex
	values []float64
	i      int
}

func (r *seqRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.values[r.i]
	if r.i < len(r.values)-1 {
		r.i++
	}
	return v
}

type recordingPublisher struct {
	mu      sync.Mutex
	placed  []events.BetPlaced
	settled []events.BetSettled
	err     error
}

func (p *recordingPublisher) PublishBetPlaced(_ context.Context, ev events.BetPlaced) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, ev)
	return p.err
}

func (p *recordingPublisher) PublishBetSettled(_ context.Context, ev events.BetSettled) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settled = append(p.settled, ev)
	return p.err
}

// failingCreateStore falha ao gravar a aposta, depois do débito
type failingCreateStore struct{ repo.Store }

func (s failingCreateStore) Bets() repo.BetStore { return failingBets{s.Store.Bets()} }

func (s failingCreateStore) InTx(ctx context.Context, fn func(tx repo.Store) error) error {
	return s.Store.InTx(ctx, func(tx repo.Store) error { return fn(failingCreateStore{tx}) })
}

type failingBets struct{ repo.BetStore }

func (failingBets) Create(context.Context, *repo.Bet) error { return errors.New("disk full") }

// steppingClock avança um segundo a cada leitura
type steppingClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

type fixture struct {
	store  repo.Store
	ledger *ledger.Ledger
	odds   *stubOdds
	mgr    *Manager
}

func newFixture(opening int64, price string, opts ...Option) *fixture {
	store := repo.NewMemory()
	led := ledger.New(store.Accounts(), decimal.NewFromInt(opening))
	src := &stubOdds{price: decimal.RequireFromString(price)}
	return &fixture{
		store:  store,
		ledger: led,
		odds:   src,
		mgr:    NewManager(zap.NewNop(), store, led, src, opts...),
	}
}

func placeInput(user string, amount string) PlaceBetInput {
	return PlaceBetInput{
		UserID:       user,
		Sport:        testSport,
		MatchID:      testMatch,
		SelectedTeam: "Flamengo",
		Amount:       decimal.RequireFromString(amount),
	}
}
