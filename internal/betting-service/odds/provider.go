package odds

import (
	"context"
	"encoding/json"
	"time"
)

// Provider é a fonte de dados de odds (HTTP ou cache na frente dele).
// As listagens são repassadas como JSON cru para o cliente.
type Provider interface {
	Event(ctx context.Context, sport, matchID string) (*Event, error)
	Sports(ctx context.Context) (json.RawMessage, error)
	Matches(ctx context.Context, sport string) (json.RawMessage, error)
	Scores(ctx context.Context, sport string, daysFrom int) (json.RawMessage, error)
}

// Source resolve o preço de um resultado com prazo máximo por chamada
type Source struct {
	p       Provider
	timeout time.Duration
}

func NewSource(p Provider, timeout time.Duration) *Source {
	return &Source{p: p, timeout: timeout}
}

func (s *Source) OutcomePrice(ctx context.Context, sport, matchID, team string) (Quote, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ev, err := s.p.Event(ctx, sport, matchID)
	if err != nil {
		if ctx.Err() != nil {
			return Quote{}, ErrUnavailable
		}
		return Quote{}, err
	}
	return ev.Quote(team)
}
