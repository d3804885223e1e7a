package odds

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const MarketH2H = "h2h"

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrNoPrice       = errors.New("no price for selected team")
	ErrUnavailable   = errors.New("odds provider unavailable")
)

// Event segue o formato de /sports/{sport}/events/{id}/odds do the-odds-api
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title,omitempty"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title,omitempty"`
	Markets []Market `json:"markets"`
}

type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

type Outcome struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Quote é a cotação usada para registrar uma aposta
type Quote struct {
	Price     decimal.Decimal
	HomeTeam  string
	AwayTeam  string
	StartTime time.Time
	SportKey  string
}

var minPrice = decimal.NewFromInt(1)

// Quote procura o preço de team no primeiro mercado h2h disponível.
// Preço abaixo de 1 é tratado como ausente.
func (e *Event) Quote(team string) (Quote, error) {
	for _, bm := range e.Bookmakers {
		for _, mk := range bm.Markets {
			if mk.Key != MarketH2H {
				continue
			}
			for _, o := range mk.Outcomes {
				if o.Name != team {
					continue
				}
				if o.Price.LessThan(minPrice) {
					return Quote{}, ErrNoPrice
				}
				return Quote{
					Price:     o.Price,
					HomeTeam:  e.HomeTeam,
					AwayTeam:  e.AwayTeam,
					StartTime: e.CommenceTime,
					SportKey:  e.SportKey,
				}, nil
			}
			return Quote{}, ErrNoPrice
		}
	}
	return Quote{}, ErrNoPrice
}
