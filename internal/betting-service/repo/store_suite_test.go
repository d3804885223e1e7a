package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite exercita qualquer implementação de Store com o mesmo contrato
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	opening := decimal.NewFromInt(1000)

	t.Run("get or create keeps existing balance", func(t *testing.T) {
		s := newStore(t)
		acc, err := s.Accounts().GetOrCreate(ctx, "u1", opening)
		require.NoError(t, err)
		assert.True(t, acc.Balance.Equal(opening))

		_, err = s.Accounts().Debit(ctx, "u1", decimal.NewFromInt(300))
		require.NoError(t, err)

		acc, err = s.Accounts().GetOrCreate(ctx, "u1", opening)
		require.NoError(t, err)
		assert.Equal(t, "700", acc.Balance.String())
	})

	t.Run("debit refuses overdraft", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Accounts().GetOrCreate(ctx, "u1", decimal.NewFromInt(50))
		require.NoError(t, err)

		_, err = s.Accounts().Debit(ctx, "u1", decimal.NewFromInt(100))
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		acc, err := s.Accounts().GetOrCreate(ctx, "u1", opening)
		require.NoError(t, err)
		assert.Equal(t, "50", acc.Balance.String())
	})

	t.Run("debit and credit unknown account", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Accounts().Debit(ctx, "ghost", decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.Accounts().Credit(ctx, "ghost", decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("concurrent debits never overdraft", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Accounts().GetOrCreate(ctx, "u1", decimal.NewFromInt(1000))
		require.NoError(t, err)

		var (
			wg sync.WaitGroup
			mu sync.Mutex
			ok int
		)
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Accounts().Debit(ctx, "u1", decimal.NewFromInt(100))
				if err == nil {
					mu.Lock()
					ok++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 10, ok)
		acc, err := s.Accounts().GetOrCreate(ctx, "u1", opening)
		require.NoError(t, err)
		assert.True(t, acc.Balance.IsZero())
	})

	t.Run("tx rolls back on error", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Accounts().GetOrCreate(ctx, "u1", opening)
		require.NoError(t, err)

		boom := errors.New("boom")
		err = s.InTx(ctx, func(tx Store) error {
			if _, err := tx.Accounts().Debit(ctx, "u1", decimal.NewFromInt(100)); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		acc, err := s.Accounts().GetOrCreate(ctx, "u1", opening)
		require.NoError(t, err)
		assert.True(t, acc.Balance.Equal(opening))
	})

	t.Run("resolve is compare and set", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Accounts().GetOrCreate(ctx, "u1", opening)
		require.NoError(t, err)
		bet := newTestBet("u1", time.Now().UTC())
		require.NoError(t, s.Bets().Create(ctx, &bet))

		got, err := s.Bets().GetPending(ctx, "u1", bet.ID)
		require.NoError(t, err)
		assert.Equal(t, "Flamengo", got.SelectedTeam)
		assert.Equal(t, "250", got.PotentialWinnings.String())

		_, err = s.Bets().GetPending(ctx, "u2", bet.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		resolved, err := s.Bets().Resolve(ctx, "u1", bet.ID, StatusWon, time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, StatusWon, resolved.Status)
		require.NotNil(t, resolved.SettledAt)

		_, err = s.Bets().Resolve(ctx, "u1", bet.ID, StatusLost, time.Now().UTC())
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.Bets().GetPending(ctx, "u1", bet.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("odds keep provider precision", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Accounts().GetOrCreate(ctx, "u1", opening)
		require.NoError(t, err)
		bet := newTestBet("u1", time.Now().UTC())
		bet.Odds = decimal.RequireFromString("1.83333")
		bet.PotentialWinnings = bet.Amount.Mul(bet.Odds).Round(2)
		require.NoError(t, s.Bets().Create(ctx, &bet))

		got, err := s.Bets().GetPending(ctx, "u1", bet.ID)
		require.NoError(t, err)
		assert.Equal(t, "1.83333", got.Odds.String())

		page, _, err := s.Bets().List(ctx, BetFilter{UserID: "u1", Limit: 10})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "1.83333", page[0].Odds.String())
		assert.Equal(t, "183.33", page[0].PotentialWinnings.String())
	})

	t.Run("unknown bet id", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Bets().GetPending(ctx, "u1", "not-a-uuid")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.Bets().Resolve(ctx, "u1", uuid.NewString(), StatusLost, time.Now())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list pages newest first", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Accounts().GetOrCreate(ctx, "u1", opening)
		require.NoError(t, err)
		_, err = s.Accounts().GetOrCreate(ctx, "u2", opening)
		require.NoError(t, err)

		base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		ids := make([]string, 0, 5)
		for i := 0; i < 5; i++ {
			b := newTestBet("u1", base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, s.Bets().Create(ctx, &b))
			ids = append(ids, b.ID)
		}
		other := newTestBet("u2", base)
		require.NoError(t, s.Bets().Create(ctx, &other))
		_, err = s.Bets().Resolve(ctx, "u1", ids[0], StatusLost, base.Add(time.Hour))
		require.NoError(t, err)

		page, total, err := s.Bets().List(ctx, BetFilter{UserID: "u1", Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, page, 2)
		assert.Equal(t, ids[4], page[0].ID)
		assert.Equal(t, ids[3], page[1].ID)

		page, _, err = s.Bets().List(ctx, BetFilter{UserID: "u1", Offset: 4, Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, ids[0], page[0].ID)

		page, total, err = s.Bets().List(ctx, BetFilter{UserID: "u1", Status: StatusLost, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, page, 1)
		assert.Equal(t, StatusLost, page[0].Status)

		page, total, err = s.Bets().List(ctx, BetFilter{UserID: "nobody", Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.NotNil(t, page)
		assert.Empty(t, page)
	})
}

func newTestBet(userID string, createdAt time.Time) Bet {
	return Bet{
		ID:                uuid.NewString(),
		UserID:            userID,
		MatchID:           "e912304de2b2ce35b473ce2ecd3d1502",
		Sport:             "soccer_brazil_campeonato",
		Amount:            decimal.NewFromInt(100),
		Odds:              decimal.RequireFromString("2.5"),
		SelectedTeam:      "Flamengo",
		Status:            StatusPending,
		PotentialWinnings: decimal.NewFromInt(250),
		Match: MatchSnapshot{
			HomeTeam:  "Flamengo",
			AwayTeam:  "Palmeiras",
			StartTime: time.Date(2025, 3, 2, 19, 0, 0, 0, time.UTC),
			Sport:     "soccer_brazil_campeonato",
		},
		CreatedAt: createdAt,
	}
}
