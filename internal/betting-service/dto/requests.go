package dto

import "github.com/shopspring/decimal"

// PlaceBetRequest aceita amount como número ou string decimal
type PlaceBetRequest struct {
	MatchID      string          `json:"matchId"`
	Sport        string          `json:"sport"`
	SelectedTeam string          `json:"selectedTeam"`
	Amount       decimal.Decimal `json:"amount"`
}
