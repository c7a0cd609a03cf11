package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cooptrick/internal/domain"
	"cooptrick/internal/logger"

	"github.com/nats-io/nats.go"
)

const (
	natsBucket    = "games"
	natsTxRetries = 5
)

var errNATSTxRetries = errors.New("nats transaction retries exhausted")

// NATS keeps games in a JetStream key-value bucket. The bucket's
// revision-checked Update is the atomic read-check-write, and Watch is the
// change feed.
type NATS struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

func NewNATS(url string) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name("cooptrick"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(5),
	)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, err
	}

	kv, err := js.KeyValue(natsBucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: natsBucket})
	}
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &NATS{conn: conn, kv: kv}, nil
}

func (s *NATS) Get(ctx context.Context, id string) (domain.Game, bool, error) {
	entry, err := s.kv.Get(id)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return domain.Game{}, false, nil
	}
	if err != nil {
		return domain.Game{}, false, err
	}
	return decode(entry.Value())
}

func (s *NATS) Subscribe(ctx context.Context, id string, fn func(domain.Game)) (Unsubscribe, error) {
	watcher, err := s.kv.Watch(id, nats.Context(ctx))
	if err != nil {
		return nil, err
	}

	go func() {
		for entry := range watcher.Updates() {
			// nil marks the end of the initial replay
			if entry == nil || entry.Operation() != nats.KeyValuePut {
				continue
			}
			var g domain.Game
			if err := json.Unmarshal(entry.Value(), &g); err != nil {
				logger.Warn("dropping malformed document", "game", id, "error", err)
				continue
			}
			fn(g)
		}
	}()

	return func() { _ = watcher.Stop() }, nil
}

func (s *NATS) Transaction(ctx context.Context, id string, fn TxnFunc) error {
	for i := 0; i < natsTxRetries; i++ {
		var (
			cur      domain.Game
			exists   = true
			revision uint64
		)

		entry, err := s.kv.Get(id)
		switch {
		case errors.Is(err, nats.ErrKeyNotFound):
			exists = false
		case err != nil:
			return err
		default:
			revision = entry.Revision()
			if cur, _, err = decode(entry.Value()); err != nil {
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

		if exists {
			_, err = s.kv.Update(id, buf, revision)
		} else {
			_, err = s.kv.Create(id, buf)
		}
		if err == nil {
			return nil
		}
		if !isRevisionConflict(err) {
			return err
		}
		// lost the revision race; re-run against the fresh document
	}
	return errNATSTxRetries
}

func isRevisionConflict(err error) bool {
	if errors.Is(err, nats.ErrKeyExists) {
		return true
	}
	var apiErr *nats.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == nats.JSErrCodeStreamWrongLastSequence
}

func (s *NATS) Ping(ctx context.Context) error {
	if !s.conn.IsConnected() {
		return nats.ErrConnectionClosed
	}
	return nil
}

func (s *NATS) Close() {
	s.conn.Close()
}
