package topics

const (
	// Bets
	BetPlaced  = "bet_placed"
	BetSettled = "bet_settled"

	// Canal Redis Pub/Sub usado pelo feed websocket
	BetUpdatesBroadcast = "bet_updates_broadcast"
)
