package bets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/sim-betting-service/internal/betting-service/odds"
	"github.com/radieske/sim-betting-service/internal/betting-service/repo"
	"github.com/radieske/sim-betting-service/pkg/contracts/events"
)

// Limites de expoente aceitos antes de qualquer aritmética com o valor
const (
	minAmountExponent = -18
	maxAmountExponent = 18
)

type PlaceBetInput struct {
	UserID       string
	Sport        string
	MatchID      string
	SelectedTeam string
	Amount       decimal.Decimal
}

func (in *PlaceBetInput) validate() error {
	in.Sport = strings.TrimSpace(in.Sport)
	in.MatchID = strings.TrimSpace(in.MatchID)
	switch {
	case in.UserID == "":
		return invalid("userId", "is required")
	case in.Sport == "":
		return invalid("sport", "is required")
	case in.MatchID == "":
		return invalid("matchId", "is required")
	case in.SelectedTeam == "":
		return invalid("selectedTeam", "is required")
	case !in.Amount.IsPositive():
		return invalid("amount", "must be greater than zero")
	case in.Amount.Exponent() > maxAmountExponent:
		return invalid("amount", "is too large")
	case in.Amount.Exponent() < minAmountExponent:
		return invalid("amount", "must have at most 2 decimal places")
	case !in.Amount.Equal(in.Amount.Round(2)):
		return invalid("amount", "must have at most 2 decimal places")
	}
	return nil
}

type Placement struct {
	Bet        repo.Bet
	NewBalance decimal.Decimal
}

// PlaceBet cota o resultado, debita o valor e registra a aposta pendente.
// Débito e criação da aposta acontecem na mesma transação.
func (m *Manager) PlaceBet(ctx context.Context, in PlaceBetInput) (*Placement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	quote, err := m.odds.OutcomePrice(ctx, in.Sport, in.MatchID, in.SelectedTeam)
	if err != nil {
		return nil, m.oddsError(err, in)
	}

	bet := repo.Bet{
		ID:                m.newID(),
		UserID:            in.UserID,
		MatchID:           in.MatchID,
		Sport:             in.Sport,
		Amount:            in.Amount,
		Odds:              quote.Price,
		SelectedTeam:      in.SelectedTeam,
		Status:            repo.StatusPending,
		PotentialWinnings: in.Amount.Mul(quote.Price).Round(2),
		Match: repo.MatchSnapshot{
			HomeTeam:  quote.HomeTeam,
			AwayTeam:  quote.AwayTeam,
			StartTime: quote.StartTime,
			Sport:     quote.SportKey,
		},
		CreatedAt: m.now().UTC(),
	}

	var newBalance decimal.Decimal
	err = m.store.InTx(ctx, func(tx repo.Store) error {
		led := m.ledger.Bind(tx.Accounts())
		if _, err := led.GetOrCreateAccount(ctx, in.UserID); err != nil {
			return fmt.Errorf("get account: %w", err)
		}
		bal, err := led.Debit(ctx, in.UserID, in.Amount)
		if err != nil {
			return err
		}
		if err := tx.Bets().Create(ctx, &bet); err != nil {
			return fmt.Errorf("create bet: %w", err)
		}
		newBalance = bal
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		m.failed("place", err, zap.String("user_id", in.UserID), zap.String("match_id", in.MatchID))
		return nil, fmt.Errorf("place bet: %w", err)
	}

	m.log.Info("bet placed",
		zap.String("bet_id", bet.ID),
		zap.String("user_id", bet.UserID),
		zap.String("amount", bet.Amount.StringFixed(2)),
		zap.String("odds", bet.Odds.String()),
	)
	if m.hooks.OnPlaced != nil {
		m.hooks.OnPlaced()
	}
	if m.publ != nil {
		ev := events.BetPlaced{
			BetID:             bet.ID,
			UserID:            bet.UserID,
			MatchID:           bet.MatchID,
			Sport:             bet.Sport,
			SelectedTeam:      bet.SelectedTeam,
			Amount:            bet.Amount.StringFixed(2),
			Odds:              bet.Odds.String(),
			PotentialWinnings: bet.PotentialWinnings.StringFixed(2),
			NewBalance:        newBalance.StringFixed(2),
			TsUnixMs:          bet.CreatedAt.UnixMilli(),
		}
		if err := m.publ.PublishBetPlaced(context.WithoutCancel(ctx), ev); err != nil {
			m.failed("publish", err, zap.String("bet_id", bet.ID))
		}
	}

	return &Placement{Bet: bet, NewBalance: newBalance}, nil
}

func (m *Manager) oddsError(err error, in PlaceBetInput) error {
	switch {
	case errors.Is(err, odds.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, odds.ErrNoPrice):
		return ErrOddsUnavailable
	default:
		m.log.Warn("odds lookup failed",
			zap.String("sport", in.Sport),
			zap.String("match_id", in.MatchID),
			zap.Error(err),
		)
		if m.hooks.OnError != nil {
			m.hooks.OnError("odds")
		}
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
}
