package repo

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusWon, StatusLost:
		return true
	}
	return false
}

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// Account guarda o saldo de um usuário. Nunca fica negativo.
type Account struct {
	UserID    string
	Balance   decimal.Decimal
	CreatedAt time.Time
}

// MatchSnapshot é a cópia dos dados da partida no momento da aposta
type MatchSnapshot struct {
	HomeTeam  string
	AwayTeam  string
	StartTime time.Time // zero quando o provedor não informa
	Sport     string
}

// Bet é o modelo persistido. Amount, Odds e PotentialWinnings não mudam depois de criados.
type Bet struct {
	ID                string
	UserID            string
	MatchID           string
	Sport             string
	Amount            decimal.Decimal
	Odds              decimal.Decimal
	SelectedTeam      string
	Status            Status
	PotentialWinnings decimal.Decimal
	Match             MatchSnapshot
	CreatedAt         time.Time
	SettledAt         *time.Time
}

// BetFilter seleciona uma página do histórico de um usuário.
// Status vazio traz todas as apostas.
type BetFilter struct {
	UserID string
	Status Status
	Offset int
	Limit  int
}
