package bets

import (
	"context"
	"fmt"

	"github.com/radieske/sim-betting-service/internal/betting-service/repo"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type HistoryQuery struct {
	UserID string
	Status repo.Status // vazio = todas
	Page   int
	Limit  int
}

type HistoryPage struct {
	Bets  []repo.Bet
	Total int
	Page  int
	Pages int
}

// ListBets devolve uma página do histórico, mais recentes primeiro
func (m *Manager) ListBets(ctx context.Context, q HistoryQuery) (*HistoryPage, error) {
	switch {
	case q.UserID == "":
		return nil, invalid("userId", "is required")
	case q.Status != "" && !q.Status.Valid():
		return nil, invalid("status", "must be one of pending, won, lost")
	case q.Page < 1:
		return nil, invalid("page", "must be >= 1")
	case q.Limit < 1 || q.Limit > MaxLimit:
		return nil, invalid("limit", fmt.Sprintf("must be between 1 and %d", MaxLimit))
	}

	list, total, err := m.store.Bets().List(ctx, repo.BetFilter{
		UserID: q.UserID,
		Status: q.Status,
		Offset: (q.Page - 1) * q.Limit,
		Limit:  q.Limit,
	})
	if err != nil {
		m.failed("history", err)
		return nil, fmt.Errorf("list bets: %w", err)
	}
	if list == nil {
		list = []repo.Bet{}
	}

	return &HistoryPage{
		Bets:  list,
		Total: total,
		Page:  q.Page,
		Pages: (total + q.Limit - 1) / q.Limit,
	}, nil
}
