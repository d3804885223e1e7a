package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/radieske/sim-betting-service/internal/shared/kafka"
	"github.com/radieske/sim-betting-service/pkg/contracts/events"
)

// KafkaPublisher publica os eventos de aposta; o writer não pode ter Topic fixo
type KafkaPublisher struct {
	Writer       kafka.MessageWriter
	TopicPlaced  string
	TopicSettled string
}

func NewKafkaPublisher(w kafka.MessageWriter, topicPlaced, topicSettled string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, TopicPlaced: topicPlaced, TopicSettled: topicSettled}
}

func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	if e.TsUnixMs == 0 {
		e.TsUnixMs = time.Now().UnixMilli()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	// chave = userID mantém a ordem dos eventos de um mesmo usuário na partição
	return kafka.WriteJSON(ctx, p.Writer, p.TopicPlaced, e.UserID, b)
}

func (p *KafkaPublisher) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	if e.Ts.IsZero() {
		e.Ts = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return kafka.WriteJSON(ctx, p.Writer, p.TopicSettled, e.UserID, b)
}
