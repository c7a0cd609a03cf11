package docstore

import (
	"context"
	"testing"
	"time"

	"cooptrick/internal/domain"
)

func waitingDoc(nonce string, users ...domain.User) domain.Game {
	return domain.WrapWaiting(domain.WaitingGame{
		ID:      "g1",
		State:   domain.PhaseWaiting,
		Nonce:   nonce,
		Players: users,
	})
}

func TestMemoryGetMissing(t *testing.T) {
	s := NewMemory()
	_, exists, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if exists {
		t.Fatalf("unseen key reported as existing")
	}
}

func TestMemoryTransactionWriteAndSkip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	ann := domain.User{ID: "a", Name: "Ann", Icon: "A"}

	err := s.Transaction(ctx, "g1", func(cur domain.Game, exists bool) (domain.Game, bool, error) {
		if exists {
			t.Fatalf("fresh key reported as existing")
		}
		return waitingDoc("n1", ann), true, nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	g, exists, err := s.Get(ctx, "g1")
	if err != nil || !exists {
		t.Fatalf("get after write: exists=%v err=%v", exists, err)
	}
	if g.Nonce() != "n1" {
		t.Fatalf("nonce = %q, want n1", g.Nonce())
	}

	// write=false commits nothing
	err = s.Transaction(ctx, "g1", func(cur domain.Game, exists bool) (domain.Game, bool, error) {
		return waitingDoc("n2", ann), false, nil
	})
	if err != nil {
		t.Fatalf("skip transaction: %v", err)
	}
	g, _, _ = s.Get(ctx, "g1")
	if g.Nonce() != "n1" {
		t.Fatalf("skipped write still committed: nonce = %q", g.Nonce())
	}
}

func TestMemoryReadsAreCopies(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	ann := domain.User{ID: "a", Name: "Ann", Icon: "A"}

	if err := s.Transaction(ctx, "g1", func(domain.Game, bool) (domain.Game, bool, error) {
		return waitingDoc("n1", ann), true, nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}

	g1, _, _ := s.Get(ctx, "g1")
	g1.Waiting.Players[0].Name = "tampered"

	g2, _, _ := s.Get(ctx, "g1")
	if g2.Waiting.Players[0].Name != "Ann" {
		t.Fatalf("mutating a read changed the stored document")
	}
}

func TestMemorySubscribeDeliversWrites(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	ann := domain.User{ID: "a", Name: "Ann", Icon: "A"}
	ben := domain.User{ID: "b", Name: "Ben", Icon: "B"}

	if err := s.Transaction(ctx, "g1", func(domain.Game, bool) (domain.Game, bool, error) {
		return waitingDoc("n1", ann), true, nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got := make(chan domain.Game, 8)
	unsub, err := s.Subscribe(ctx, "g1", func(g domain.Game) { got <- g })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsub()

	// current document arrives first
	select {
	case g := <-got:
		if g.Nonce() != "n1" {
			t.Fatalf("initial nonce = %q, want n1", g.Nonce())
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for initial document")
	}

	if err := s.Transaction(ctx, "g1", func(domain.Game, bool) (domain.Game, bool, error) {
		return waitingDoc("n2", ann, ben), true, nil
	}); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case g := <-got:
		if g.Nonce() != "n2" || len(g.Waiting.Players) != 2 {
			t.Fatalf("unexpected update: %+v", g)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for update")
	}

	unsub()
	if err := s.Transaction(ctx, "g1", func(domain.Game, bool) (domain.Game, bool, error) {
		return waitingDoc("n3", ann), true, nil
	}); err != nil {
		t.Fatalf("write after unsubscribe: %v", err)
	}
	select {
	case g := <-got:
		if g.Nonce() == "n3" {
			t.Fatalf("update delivered after unsubscribe")
		}
	case <-time.After(100 * time.Millisecond):
	}
}
