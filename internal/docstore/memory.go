package docstore

import (
	"context"
	"encoding/json"
	"sync"

	"cooptrick/internal/domain"
)

// Memory is an in-process Store for tests and single-node runs. Documents
// are held serialized so reads hand out independent copies, the same way a
// remote store would.
type Memory struct {
	mu     sync.Mutex
	docs   map[string][]byte
	subs   map[string]map[int]chan domain.Game
	nextID int
}

func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string][]byte),
		subs: make(map[string]map[int]chan domain.Game),
	}
}

func (s *Memory) Get(ctx context.Context, id string) (domain.Game, bool, error) {
	s.mu.Lock()
	raw, ok := s.docs[id]
	s.mu.Unlock()
	if !ok {
		return domain.Game{}, false, nil
	}
	return decode(raw)
}

func (s *Memory) Subscribe(ctx context.Context, id string, fn func(domain.Game)) (Unsubscribe, error) {
	ch := make(chan domain.Game, 16)

	s.mu.Lock()
	if s.subs[id] == nil {
		s.subs[id] = make(map[int]chan domain.Game)
	}
	subID := s.nextID
	s.nextID++
	s.subs[id][subID] = ch
	raw, exists := s.docs[id]
	s.mu.Unlock()

	if exists {
		if cur, _, err := decode(raw); err == nil {
			ch <- cur
		}
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case g, ok := <-ch:
				if !ok {
					return
				}
				fn(g)
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[id], subID)
			s.mu.Unlock()
			close(done)
		})
	}, nil
}

func (s *Memory) Transaction(ctx context.Context, id string, fn TxnFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cur domain.Game
	raw, exists := s.docs[id]
	if exists {
		var err error
		cur, _, err = decode(raw)
		if err != nil {
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
	s.docs[id] = buf

	for _, ch := range s.subs[id] {
		if doc, _, err := decode(buf); err == nil {
			select {
			case ch <- doc:
			default: // slow subscriber drops intermediate states
			}
		}
	}
	return nil
}

func (s *Memory) Ping(ctx context.Context) error { return nil }

func (s *Memory) Close() {}

func decode(raw []byte) (domain.Game, bool, error) {
	var g domain.Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return domain.Game{}, false, err
	}
	return g, true, nil
}
