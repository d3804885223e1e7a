package events

import "encoding/json"

// BetUpdate é o envelope publicado no Redis Pub/Sub e entregue ao websocket do usuário.
// Payload carrega o evento original (BetPlaced ou BetSettled) sem alteração.
type BetUpdate struct {
	UserID  string          `json:"userId"`
	Type    string          `json:"type"` // "bet_placed" | "bet_settled"
	Payload json.RawMessage `json:"payload"`
}
