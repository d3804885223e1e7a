package odds

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const listingTTL = 30 * time.Second

// Cache guarda respostas do provedor no Redis. Falha do Redis nunca derruba a
// consulta: o erro é logado e a chamada segue para o provedor.
// Com r nil o cache fica desligado e toda chamada vai ao provedor.
type Cache struct {
	next Provider
	r    *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

func NewCache(next Provider, r *redis.Client, ttl time.Duration, log *zap.Logger) *Cache {
	return &Cache{next: next, r: r, ttl: ttl, log: log}
}

func keyEvent(sport, matchID string) string { return "odds:event:" + sport + ":" + matchID }
func keySports() string                     { return "odds:sports" }
func keyMatches(sport string) string        { return "odds:matches:" + sport }
func keyScores(sport string, daysFrom int) string {
	return "odds:scores:" + sport + ":" + strconv.Itoa(daysFrom)
}

func (c *Cache) Event(ctx context.Context, sport, matchID string) (*Event, error) {
	key := keyEvent(sport, matchID)
	if b, ok := c.get(ctx, key); ok {
		var ev Event
		if err := json.Unmarshal(b, &ev); err == nil {
			return &ev, nil
		}
	}

	ev, err := c.next.Event(ctx, sport, matchID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(ev); err == nil {
		c.set(ctx, key, b, c.ttl)
	}
	return ev, nil
}

func (c *Cache) Sports(ctx context.Context) (json.RawMessage, error) {
	return c.raw(ctx, keySports(), func() (json.RawMessage, error) { return c.next.Sports(ctx) })
}

func (c *Cache) Matches(ctx context.Context, sport string) (json.RawMessage, error) {
	return c.raw(ctx, keyMatches(sport), func() (json.RawMessage, error) { return c.next.Matches(ctx, sport) })
}

func (c *Cache) Scores(ctx context.Context, sport string, daysFrom int) (json.RawMessage, error) {
	return c.raw(ctx, keyScores(sport, daysFrom), func() (json.RawMessage, error) {
		return c.next.Scores(ctx, sport, daysFrom)
	})
}

func (c *Cache) raw(ctx context.Context, key string, load func() (json.RawMessage, error)) (json.RawMessage, error) {
	if b, ok := c.get(ctx, key); ok {
		return json.RawMessage(b), nil
	}
	b, err := load()
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, b, listingTTL)
	return b, nil
}

func (c *Cache) get(ctx context.Context, key string) ([]byte, bool) {
	if c.r == nil {
		return nil, false
	}
	b, err := c.r.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("odds cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return b, true
}

func (c *Cache) set(ctx context.Context, key string, b []byte, ttl time.Duration) {
	if c.r == nil || ttl <= 0 {
		return
	}
	if err := c.r.Set(ctx, key, b, ttl).Err(); err != nil {
		c.log.Warn("odds cache set failed", zap.String("key", key), zap.Error(err))
	}
}
