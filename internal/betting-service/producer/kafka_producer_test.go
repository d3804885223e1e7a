package producer

import (
	"context"
	"encoding/json"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/sim-betting-service/pkg/contracts/events"
)

type captureWriter struct{ msgs []kafkago.Message }

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafkaPublisher_RoutesByTopicAndKeysByUser(t *testing.T) {
	w := &captureWriter{}
	p := NewKafkaPublisher(w, "bet_placed", "bet_settled")
	ctx := context.Background()

	require.NoError(t, p.PublishBetPlaced(ctx, events.BetPlaced{BetID: "b1", UserID: "u1", Amount: "100.00"}))
	require.NoError(t, p.PublishBetSettled(ctx, events.BetSettled{BetID: "b1", UserID: "u1", Status: "won"}))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "bet_placed", w.msgs[0].Topic)
	assert.Equal(t, "bet_settled", w.msgs[1].Topic)
	assert.Equal(t, "u1", string(w.msgs[0].Key))

	var placed events.BetPlaced
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &placed))
	assert.NotZero(t, placed.TsUnixMs)
	assert.Equal(t, "100.00", placed.Amount)

	var settled events.BetSettled
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &settled))
	assert.False(t, settled.Ts.IsZero())
}
