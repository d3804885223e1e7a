package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/radieske/sim-betting-service/internal/betting-service/repo"
)

var (
	DefaultOpeningBalance = decimal.NewFromInt(1000)

	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = repo.ErrInsufficientFunds
)

// Ledger mantém o saldo dos usuários. Toda mutação passa por aqui;
// o saldo nunca fica negativo.
type Ledger struct {
	accounts repo.AccountStore
	opening  decimal.Decimal
}

func New(accounts repo.AccountStore, opening decimal.Decimal) *Ledger {
	if opening.IsNegative() {
		opening = DefaultOpeningBalance
	}
	return &Ledger{accounts: accounts, opening: opening}
}

// Bind devolve um Ledger com a mesma configuração operando sobre outro store (ex.: uma transação)
func (l *Ledger) Bind(accounts repo.AccountStore) *Ledger {
	return &Ledger{accounts: accounts, opening: l.opening}
}

func (l *Ledger) OpeningBalance() decimal.Decimal { return l.opening }

// GetOrCreateAccount cria a conta com o saldo inicial no primeiro acesso
func (l *Ledger) GetOrCreateAccount(ctx context.Context, userID string) (repo.Account, error) {
	return l.accounts.GetOrCreate(ctx, userID, l.opening)
}

func (l *Ledger) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	acc, err := l.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

// Debit desconta amount (> 0) ou falha com ErrInsufficientFunds sem alterar o saldo
func (l *Ledger) Debit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return l.accounts.Debit(ctx, userID, amount)
}

// Credit soma amount (>= 0) ao saldo
func (l *Ledger) Credit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return l.accounts.Credit(ctx, userID, amount)
}
