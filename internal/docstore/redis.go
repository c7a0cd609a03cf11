package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cooptrick/internal/domain"
	"cooptrick/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// how often an optimistic WATCH is retried before giving up; each retry
// re-reads the document, so the nonce check decides the outcome
const redisTxRetries = 5

var errRedisTxRetries = errors.New("redis transaction retries exhausted")

// Redis stores each game under key "game:<id>" and publishes every committed
// document on channel "game:<id>:changes". The WATCH/MULTI cycle is the
// atomic read-check-write.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Redis{client: client}, nil
}

func gameKey(id string) string     { return "game:" + id }
func gameChannel(id string) string { return "game:" + id + ":changes" }

func (s *Redis) Get(ctx context.Context, id string) (domain.Game, bool, error) {
	raw, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err == redis.Nil {
		return domain.Game{}, false, nil
	}
	if err != nil {
		return domain.Game{}, false, err
	}
	return decode(raw)
}

func (s *Redis) Subscribe(ctx context.Context, id string, fn func(domain.Game)) (Unsubscribe, error) {
	pubsub := s.client.Subscribe(ctx, gameChannel(id))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	go func() {
		// deliver the current document first, like a snapshot listener
		if cur, exists, err := s.Get(ctx, id); err == nil && exists {
			fn(cur)
		}
		for msg := range pubsub.Channel() {
			var g domain.Game
			if err := json.Unmarshal([]byte(msg.Payload), &g); err != nil {
				logger.Warn("dropping malformed change notification", "game", id, "error", err)
				continue
			}
			fn(g)
		}
	}()

	return func() { _ = pubsub.Close() }, nil
}

func (s *Redis) Transaction(ctx context.Context, id string, fn TxnFunc) error {
	key := gameKey(id)

	txn := func(tx *redis.Tx) error {
		var cur domain.Game
		exists := true

		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
			exists = false
		case err != nil:
			return err
		default:
			if cur, _, err = decode(raw); err != nil {
				return err
			}
		}

		next, write, err := fn(cur, exists)
		if err != nil {
			return err
		}
		if !write {
			return nil
		}

		buf, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, buf, 0)
			pipe.Publish(ctx, gameChannel(id), buf)
			return nil
		})
		return err
	}

	for i := 0; i < redisTxRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if err == redis.TxFailedErr {
			// key changed under us; re-run against the fresh document
			continue
		}
		return err
	}
	return errRedisTxRetries
}

func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Redis) Close() {
	_ = s.client.Close()
}
