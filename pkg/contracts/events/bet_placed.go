package events

// Evento publicado no tópico "bet_placed" após o commit de uma aposta.
// Valores monetários trafegam como string decimal (ex: "250.00").
type BetPlaced struct {
	BetID             string `json:"bet_id"`
	UserID            string `json:"user_id"`
	MatchID           string `json:"match_id"`
	Sport             string `json:"sport"`
	SelectedTeam      string `json:"selected_team"`
	Amount            string `json:"amount"`
	Odds              string `json:"odds"`
	PotentialWinnings string `json:"potential_winnings"`
	NewBalance        string `json:"new_balance"`
	TsUnixMs          int64  `json:"ts_unix_ms"`
}
