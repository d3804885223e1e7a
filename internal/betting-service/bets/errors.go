package bets

import (
	"errors"

	"github.com/radieske/sim-betting-service/internal/betting-service/repo"
)

var (
	ErrInsufficientFunds   = repo.ErrInsufficientFunds
	ErrMatchNotFound       = errors.New("match not found")
	ErrOddsUnavailable     = errors.New("invalid selected team or odds not available")
	ErrBetNotFound         = errors.New("bet not found or already finished")
	ErrUpstreamUnavailable = errors.New("odds provider unavailable")
)

// ValidationError indica entrada malformada; a mensagem vai direto para o cliente
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + " " + e.Reason
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
