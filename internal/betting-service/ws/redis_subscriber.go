package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/sim-betting-service/pkg/contracts/events"
)

// StartRedisSubscriber escuta o canal Redis Pub/Sub em uma goroutine
// e repassa cada BetUpdate para as conexões do usuário via Hub
func StartRedisSubscriber(ctx context.Context, r *redis.Client, channel string, hub *Hub, log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg == nil {
					continue
				}
				var upd events.BetUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil || upd.UserID == "" {
					log.Warn("ws subscriber invalid message", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				hub.Broadcast(upd)
			}
		}
	}()
}
