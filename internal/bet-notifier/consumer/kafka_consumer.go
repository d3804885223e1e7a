package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/sim-betting-service/pkg/contracts/events"
)

var errUnknownTopic = errors.New("unknown topic")

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Processor consome os eventos de aposta do Kafka e republica cada um
// no Redis Pub/Sub, endereçado ao dono da aposta.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Processor struct {
	Log          *zap.Logger
	Reader       MessageReader
	Broadcaster  Broadcaster
	Channel      string
	TopicPlaced  string
	TopicSettled string

	OnConsumed  func()       // métricas (counter++)
	OnPublished func()       // métricas
	OnError     func(string) // métricas por fase
}

// Run inicia o loop principal de consumo até o contexto ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.fail("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		if err := p.handle(ctx, m); err != nil {
			p.Log.Warn("bet event dropped",
				zap.String("topic", m.Topic),
				zap.Int64("offset", m.Offset),
				zap.Error(err),
			)
			continue
		}
		if p.OnPublished != nil {
			p.OnPublished()
		}
	}
}

func (p *Processor) handle(ctx context.Context, m kafka.Message) error {
	upd, err := p.decode(m)
	if err != nil {
		p.fail("decode")
		return err
	}

	b, err := json.Marshal(upd)
	if err != nil {
		p.fail("encode")
		return err
	}
	if err := p.Broadcaster.Publish(ctx, p.Channel, b); err != nil {
		p.fail("publish")
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (p *Processor) decode(m kafka.Message) (events.BetUpdate, error) {
	var userID, kind string
	switch m.Topic {
	case p.TopicPlaced:
		var ev events.BetPlaced
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			return events.BetUpdate{}, err
		}
		userID, kind = ev.UserID, "bet_placed"
	case p.TopicSettled:
		var ev events.BetSettled
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			return events.BetUpdate{}, err
		}
		userID, kind = ev.UserID, "bet_settled"
	default:
		return events.BetUpdate{}, fmt.Errorf("%w: %s", errUnknownTopic, m.Topic)
	}
	if userID == "" {
		return events.BetUpdate{}, errors.New("event without user_id")
	}
	return events.BetUpdate{UserID: userID, Type: kind, Payload: json.RawMessage(m.Value)}, nil
}

func (p *Processor) fail(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
