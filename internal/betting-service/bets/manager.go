package bets

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/sim-betting-service/internal/betting-service/ledger"
	"github.com/radieske/sim-betting-service/internal/betting-service/odds"
	"github.com/radieske/sim-betting-service/internal/betting-service/repo"
	"github.com/radieske/sim-betting-service/pkg/contracts/events"
)

// OddsSource entrega a cotação vigente de um resultado
type OddsSource interface {
	OutcomePrice(ctx context.Context, sport, matchID, team string) (odds.Quote, error)
}

// Publisher recebe os eventos depois do commit. Falhas são só logadas.
type Publisher interface {
	PublishBetPlaced(ctx context.Context, ev events.BetPlaced) error
	PublishBetSettled(ctx context.Context, ev events.BetSettled) error
}

// Hooks são callbacks de métricas; qualquer um pode ficar nil
type Hooks struct {
	OnPlaced  func()
	OnSettled func(status string)
	OnError   func(stage string)
}

// Manager coordena apostas: registro, liquidação e histórico
type Manager struct {
	log    *zap.Logger
	store  repo.Store
	ledger *ledger.Ledger
	odds   OddsSource
	rnd    RandomSource
	publ   Publisher
	hooks  Hooks
	now    func() time.Time
	newID  func() string
}

type Option func(*Manager)

func WithPublisher(p Publisher) Option       { return func(m *Manager) { m.publ = p } }
func WithRandomSource(r RandomSource) Option { return func(m *Manager) { m.rnd = r } }
func WithHooks(h Hooks) Option               { return func(m *Manager) { m.hooks = h } }
func WithClock(now func() time.Time) Option  { return func(m *Manager) { m.now = now } }

func NewManager(log *zap.Logger, store repo.Store, l *ledger.Ledger, src OddsSource, opts ...Option) *Manager {
	m := &Manager{
		log:    log,
		store:  store,
		ledger: l,
		odds:   src,
		rnd:    NewRandomSource(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) failed(stage string, err error, fields ...zap.Field) {
	m.log.Error(stage+" failed", append(fields, zap.Error(err))...)
	if m.hooks.OnError != nil {
		m.hooks.OnError(stage)
	}
}
