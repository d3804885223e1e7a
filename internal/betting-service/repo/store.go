package repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type AccountStore interface {
	// GetOrCreate devolve a conta do usuário, criando com opening se ainda não existir
	GetOrCreate(ctx context.Context, userID string, opening decimal.Decimal) (Account, error)
	// Debit só desconta se balance >= amount, na mesma operação atômica.
	// Devolve ErrInsufficientFunds sem alterar nada caso contrário.
	Debit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error)
	Credit(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error)
}

type BetStore interface {
	Create(ctx context.Context, b *Bet) error
	// GetPending devolve ErrNotFound se a aposta não existe, é de outro usuário ou já foi liquidada
	GetPending(ctx context.Context, userID, betID string) (*Bet, error)
	// Resolve troca pending -> status uma única vez; chamadas concorrentes perdem com ErrNotFound
	Resolve(ctx context.Context, userID, betID string, status Status, at time.Time) (*Bet, error)
	// List ordena por created_at desc e devolve também o total sem paginação
	List(ctx context.Context, f BetFilter) ([]Bet, int, error)
}

// Store agrupa contas e apostas. InTx executa fn de forma atômica:
// qualquer erro retornado desfaz todas as escritas feitas através de tx.
type Store interface {
	Accounts() AccountStore
	Bets() BetStore
	InTx(ctx context.Context, fn func(tx Store) error) error
}
