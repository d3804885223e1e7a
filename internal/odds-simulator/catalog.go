package oddssim

import (
	"math"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

type Sport struct {
	Key          string `json:"key"`
	Group        string `json:"group"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Active       bool   `json:"active"`
	HasOutrights bool   `json:"has_outrights"`
}

type Outcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Market struct {
	Key        string    `json:"key"`
	LastUpdate time.Time `json:"last_update"`
	Outcomes   []Outcome `json:"outcomes"`
}

type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

type Score struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

type ScoreEvent struct {
	ID           string     `json:"id"`
	SportKey     string     `json:"sport_key"`
	SportTitle   string     `json:"sport_title"`
	CommenceTime time.Time  `json:"commence_time"`
	Completed    bool       `json:"completed"`
	HomeTeam     string     `json:"home_team"`
	AwayTeam     string     `json:"away_team"`
	Scores       []Score    `json:"scores"`
	LastUpdate   *time.Time `json:"last_update"`
}

type fixture struct {
	id       string
	sport    string
	home     string
	away     string
	draw     bool
	startsIn time.Duration
}

// Catálogo fixo de partidas simuladas para geração de odds
var fixtures = []fixture{
	{"e912304de2b2ce35b473ce2ecd3d1502", "soccer_brazil_campeonato", "Flamengo", "Palmeiras", true, 2 * time.Hour},
	{"a1b5c1f1d6e24c7f9a7c7ee2f1b0c3d4", "soccer_brazil_campeonato", "Grêmio", "Internacional", true, 26 * time.Hour},
	{"0c9f8e7d6c5b4a39281706f5e4d3c2b1", "soccer_brazil_campeonato", "Corinthians", "Santos", true, -3 * time.Hour},
	{"7d1c2b3a4f5e6d7c8b9a0f1e2d3c4b5a", "basketball_nba", "Los Angeles Lakers", "Boston Celtics", false, 5 * time.Hour},
	{"f0e1d2c3b4a5968778695a4b3c2d1e0f", "basketball_nba", "Golden State Warriors", "Miami Heat", false, -30 * time.Hour},
	{"3b2a1f0e9d8c7b6a5f4e3d2c1b0a9f8e", "americanfootball_nfl", "Kansas City Chiefs", "Buffalo Bills", false, 50 * time.Hour},
}

var sports = []Sport{
	{Key: "soccer_brazil_campeonato", Group: "Soccer", Title: "Brazil Série A", Description: "Brasileirão Série A", Active: true},
	{Key: "basketball_nba", Group: "Basketball", Title: "NBA", Description: "US Basketball", Active: true},
	{Key: "americanfootball_nfl", Group: "American Football", Title: "NFL", Description: "US Football", Active: true},
}

// Catalog guarda o estado das partidas e os preços vigentes
type Catalog struct {
	mu      sync.RWMutex
	rnd     *rand.Rand
	base    time.Time
	prices  map[string][]Outcome
	updated time.Time
}

func NewCatalog(rnd *rand.Rand, now time.Time) *Catalog {
	c := &Catalog{rnd: rnd, base: now.UTC().Truncate(time.Minute), prices: make(map[string][]Outcome)}
	c.Reprice(now)
	return c
}

// Reprice sorteia novos preços para todas as partidas
func (c *Catalog) Reprice(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range fixtures {
		out := []Outcome{
			{Name: f.home, Price: c.price(1.40, 3.50)},
			{Name: f.away, Price: c.price(2.00, 5.00)},
		}
		if f.draw {
			out = append(out, Outcome{Name: "Draw", Price: c.price(2.50, 4.50)})
		}
		c.prices[f.id] = out
	}
	c.updated = now.UTC()
}

func (c *Catalog) price(min, max float64) float64 {
	return math.Round((c.rnd.Float64()*(max-min)+min)*100) / 100
}

func (c *Catalog) Sports() []Sport { return sports }

func (c *Catalog) HasSport(key string) bool {
	for _, s := range sports {
		if s.Key == key {
			return true
		}
	}
	return false
}

func sportTitle(key string) string {
	for _, s := range sports {
		if s.Key == key {
			return s.Title
		}
	}
	return key
}

func (c *Catalog) event(f fixture) Event {
	outcomes := append([]Outcome(nil), c.prices[f.id]...)
	return Event{
		ID:           f.id,
		SportKey:     f.sport,
		SportTitle:   sportTitle(f.sport),
		CommenceTime: c.base.Add(f.startsIn),
		HomeTeam:     f.home,
		AwayTeam:     f.away,
		Bookmakers: []Bookmaker{{
			Key:        "simbook",
			Title:      "Sim Book",
			LastUpdate: c.updated,
			Markets:    []Market{{Key: "h2h", LastUpdate: c.updated, Outcomes: outcomes}},
		}},
	}
}

// Events lista as partidas ainda não iniciadas do esporte
func (c *Catalog) Events(sport string) []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []Event{}
	for _, f := range fixtures {
		if f.sport == sport && f.startsIn > 0 {
			out = append(out, c.event(f))
		}
	}
	return out
}

func (c *Catalog) Event(sport, id string) (Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, f := range fixtures {
		if f.sport == sport && f.id == id {
			return c.event(f), true
		}
	}
	return Event{}, false
}

// Scores devolve partidas das últimas daysFrom*24h e as próximas; já iniciadas vêm com placar
func (c *Catalog) Scores(sport string, daysFrom int) []ScoreEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	window := time.Duration(daysFrom) * 24 * time.Hour
	out := []ScoreEvent{}
	for i, f := range fixtures {
		if f.sport != sport || f.startsIn < -window {
			continue
		}
		se := ScoreEvent{
			ID:           f.id,
			SportKey:     f.sport,
			SportTitle:   sportTitle(f.sport),
			CommenceTime: c.base.Add(f.startsIn),
			HomeTeam:     f.home,
			AwayTeam:     f.away,
		}
		if f.startsIn <= 0 {
			upd := c.updated
			se.Completed = true
			se.LastUpdate = &upd
			se.Scores = []Score{
				{Name: f.home, Score: scoreFor(i, 0)},
				{Name: f.away, Score: scoreFor(i, 1)},
			}
		}
		out = append(out, se)
	}
	return out
}

// placar determinístico por partida, só para exibição
func scoreFor(i, side int) string {
	return strconv.Itoa((i*3 + side*5) % 4)
}
