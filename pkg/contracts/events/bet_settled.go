package events

import "time"

// Evento emitido pelo betting-service após liquidar uma aposta.
type BetSettled struct {
	BetID      string    `json:"bet_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"` // "won" | "lost"
	Winnings   string    `json:"winnings"`
	NewBalance string    `json:"new_balance"`
	Ts         time.Time `json:"ts"`
}
