package dto

import (
	"time"

	"github.com/radieske/sim-betting-service/internal/betting-service/bets"
	"github.com/radieske/sim-betting-service/internal/betting-service/repo"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type BalanceResponse struct {
	Balance float64 `json:"balance"`
}

type MatchSnapshotResponse struct {
	HomeTeam  string     `json:"homeTeam"`
	AwayTeam  string     `json:"awayTeam"`
	StartTime *time.Time `json:"startTime,omitempty"`
	Sport     string     `json:"sport"`
}

type BetResponse struct {
	ID                string                `json:"id"`
	UserID            string                `json:"userId"`
	MatchID           string                `json:"matchId"`
	Sport             string                `json:"sport"`
	Amount            float64               `json:"amount"`
	Odds              float64               `json:"odds"`
	SelectedTeam      string                `json:"selectedTeam"`
	Status            string                `json:"status"`
	PotentialWinnings float64               `json:"potentialWinnings"`
	MatchSnapshot     MatchSnapshotResponse `json:"matchSnapshot"`
	CreatedAt         time.Time             `json:"createdAt"`
	SettledAt         *time.Time            `json:"settledAt,omitempty"`
}

type PlaceBetResponse struct {
	Bet        BetResponse `json:"bet"`
	NewBalance float64     `json:"newBalance"`
}

type FinishBetResponse struct {
	Status     string  `json:"status"`
	Winnings   float64 `json:"winnings"`
	NewBalance float64 `json:"newBalance"`
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

type HistoryResponse struct {
	Bets       []BetResponse `json:"bets"`
	Pagination Pagination    `json:"pagination"`
}

func NewBetResponse(b repo.Bet) BetResponse {
	out := BetResponse{
		ID:                b.ID,
		UserID:            b.UserID,
		MatchID:           b.MatchID,
		Sport:             b.Sport,
		Amount:            b.Amount.InexactFloat64(),
		Odds:              b.Odds.InexactFloat64(),
		SelectedTeam:      b.SelectedTeam,
		Status:            string(b.Status),
		PotentialWinnings: b.PotentialWinnings.InexactFloat64(),
		MatchSnapshot: MatchSnapshotResponse{
			HomeTeam: b.Match.HomeTeam,
			AwayTeam: b.Match.AwayTeam,
			Sport:    b.Match.Sport,
		},
		CreatedAt: b.CreatedAt,
		SettledAt: b.SettledAt,
	}
	if !b.Match.StartTime.IsZero() {
		st := b.Match.StartTime
		out.MatchSnapshot.StartTime = &st
	}
	return out
}

func NewPlaceBetResponse(p *bets.Placement) PlaceBetResponse {
	return PlaceBetResponse{Bet: NewBetResponse(p.Bet), NewBalance: p.NewBalance.InexactFloat64()}
}

func NewFinishBetResponse(s *bets.Settlement) FinishBetResponse {
	return FinishBetResponse{
		Status:     string(s.Status),
		Winnings:   s.Winnings.InexactFloat64(),
		NewBalance: s.NewBalance.InexactFloat64(),
	}
}

func NewHistoryResponse(p *bets.HistoryPage) HistoryResponse {
	out := HistoryResponse{
		Bets:       make([]BetResponse, 0, len(p.Bets)),
		Pagination: Pagination{Total: p.Total, Page: p.Page, Pages: p.Pages},
	}
	for _, b := range p.Bets {
		out.Bets = append(out.Bets, NewBetResponse(b))
	}
	return out
}
