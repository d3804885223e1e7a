package bets

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/sim-betting-service/internal/betting-service/repo"
	"github.com/radieske/sim-betting-service/pkg/contracts/events"
)

type Settlement struct {
	BetID      string
	Status     repo.Status
	Winnings   decimal.Decimal
	NewBalance decimal.Decimal
}

// FinishBet sorteia o resultado de uma aposta pendente com as odds gravadas nela.
// A troca pending -> won|lost é um compare-and-set; quem perde a corrida recebe ErrBetNotFound.
func (m *Manager) FinishBet(ctx context.Context, userID, betID string) (*Settlement, error) {
	if userID == "" {
		return nil, invalid("userId", "is required")
	}
	if betID == "" {
		return nil, invalid("betId", "is required")
	}

	bet, err := m.store.Bets().GetPending(ctx, userID, betID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrBetNotFound
	}
	if err != nil {
		m.failed("settle", err, zap.String("bet_id", betID))
		return nil, fmt.Errorf("get bet: %w", err)
	}

	status, winnings := repo.StatusLost, decimal.Zero
	if wins(m.rnd, bet.Odds) {
		status, winnings = repo.StatusWon, bet.PotentialWinnings
	}

	var newBalance decimal.Decimal
	err = m.store.InTx(ctx, func(tx repo.Store) error {
		if _, err := tx.Bets().Resolve(ctx, userID, betID, status, m.now().UTC()); err != nil {
			return err
		}
		led := m.ledger.Bind(tx.Accounts())
		if status == repo.StatusWon {
			bal, err := led.Credit(ctx, userID, winnings)
			if err != nil {
				return fmt.Errorf("credit winnings: %w", err)
			}
			newBalance = bal
			return nil
		}
		bal, err := led.Balance(ctx, userID)
		if err != nil {
			return fmt.Errorf("read balance: %w", err)
		}
		newBalance = bal
		return nil
	})
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrBetNotFound
	}
	if err != nil {
		m.failed("settle", err, zap.String("bet_id", betID))
		return nil, fmt.Errorf("finish bet: %w", err)
	}

	m.log.Info("bet settled",
		zap.String("bet_id", betID),
		zap.String("user_id", userID),
		zap.String("status", string(status)),
		zap.String("winnings", winnings.StringFixed(2)),
	)
	if m.hooks.OnSettled != nil {
		m.hooks.OnSettled(string(status))
	}
	if m.publ != nil {
		ev := events.BetSettled{
			BetID:      betID,
			UserID:     userID,
			Status:     string(status),
			Winnings:   winnings.StringFixed(2),
			NewBalance: newBalance.StringFixed(2),
			Ts:         m.now().UTC(),
		}
		if err := m.publ.PublishBetSettled(context.WithoutCancel(ctx), ev); err != nil {
			m.failed("publish", err, zap.String("bet_id", betID))
		}
	}

	return &Settlement{BetID: betID, Status: status, Winnings: winnings, NewBalance: newBalance}, nil
}
