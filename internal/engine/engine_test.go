package engine

import (
	"math/rand"
	"reflect"
	"sync"
	"testing"

	"cooptrick/internal/domain"
)

func lobbyWith(n int) domain.WaitingGame {
	users := []domain.User{
		{ID: "a", Name: "Ann", Icon: "A"},
		{ID: "b", Name: "Ben", Icon: "B"},
		{ID: "c", Name: "Cid", Icon: "C"},
		{ID: "d", Name: "Dot", Icon: "D"},
	}
	return domain.WaitingGame{
		ID:      "g1",
		State:   domain.PhaseWaiting,
		Nonce:   "n0",
		Players: users[:n],
	}
}

func startedGame(t *testing.T, seed int64) domain.PlayingGame {
	t.Helper()
	e := New(rand.New(rand.NewSource(seed)), DefaultMissionCount)
	p, err := e.Start(lobbyWith(4))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return p
}

func TestNewLobby(t *testing.T) {
	w := NewLobby("g1", domain.User{ID: "a", Name: "Ann", Icon: "A"})
	if w.ID != "g1" || len(w.Players) != 1 || w.Players[0].ID != "a" {
		t.Fatalf("unexpected lobby: %+v", w)
	}
}

func TestJoin(t *testing.T) {
	w := lobbyWith(2)

	next, err := Join(w, domain.User{ID: "c", Name: "Cid", Icon: "C"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(next.Players) != 3 || next.Players[2].ID != "c" {
		t.Fatalf("join order broken: %+v", next.Players)
	}
	if len(w.Players) != 2 {
		t.Fatalf("join mutated its input")
	}

	if _, err := Join(w, w.Players[0]); err != domain.ErrAlreadyJoined {
		t.Fatalf("rejoin err = %v, want ErrAlreadyJoined", err)
	}
	if _, err := Join(lobbyWith(4), domain.User{ID: "e"}); err != domain.ErrLobbyFull {
		t.Fatalf("full lobby err = %v, want ErrLobbyFull", err)
	}
}

func TestStartRequiresFourPlayers(t *testing.T) {
	e := New(rand.New(rand.NewSource(1)), DefaultMissionCount)
	for _, n := range []int{1, 2, 3} {
		if _, err := e.Start(lobbyWith(n)); err != domain.ErrInsufficientPlayers {
			t.Fatalf("start with %d players: err = %v, want ErrInsufficientPlayers", n, err)
		}
	}
}

func TestStartScenario(t *testing.T) {
	// 4 users join, start is called: full deal, leader on turn, 3 missions,
	// empty trick, every card exactly once.
	p := startedGame(t, 42)

	if len(p.Players) != domain.Seats {
		t.Fatalf("players = %d, want %d", len(p.Players), domain.Seats)
	}
	if p.Turn != 0 {
		t.Fatalf("turn = %d, want 0", p.Turn)
	}
	if len(p.Missions) != 3 {
		t.Fatalf("missions = %d, want 3", len(p.Missions))
	}
	if len(p.Trick) != 0 {
		t.Fatalf("trick = %v, want empty", p.Trick)
	}

	leads := false
	for _, d := range p.Players[0].Dealt {
		if d.Card.IsTrump4() {
			leads = true
		}
	}
	if !leads {
		t.Fatalf("seat 0 does not hold the trump 4")
	}

	seen := make(map[domain.Card]bool)
	for _, pl := range p.Players {
		for _, d := range pl.Dealt {
			if seen[d.Card] {
				t.Fatalf("card %+v dealt twice", d.Card)
			}
			seen[d.Card] = true
		}
	}
	if len(seen) != domain.DeckSize {
		t.Fatalf("cards dealt = %d, want %d", len(seen), domain.DeckSize)
	}
}

func TestStartConcurrent(t *testing.T) {
	// One engine serves every handler goroutine, so simultaneous starts
	// share its rng. Each deal must still be a full, duplicate-free deck.
	e := New(rand.New(rand.NewSource(7)), DefaultMissionCount)

	const workers = 8
	results := make(chan domain.PlayingGame, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := e.Start(lobbyWith(4))
			if err != nil {
				t.Errorf("start: %v", err)
				return
			}
			results <- p
		}()
	}
	wg.Wait()
	close(results)

	for p := range results {
		seen := make(map[domain.Card]bool)
		for _, pl := range p.Players {
			for _, d := range pl.Dealt {
				if seen[d.Card] {
					t.Fatalf("card %+v dealt twice", d.Card)
				}
				seen[d.Card] = true
			}
		}
		if len(seen) != domain.DeckSize {
			t.Fatalf("cards dealt = %d, want %d", len(seen), domain.DeckSize)
		}
	}
}

func TestAssignMissionAdvancesTurn(t *testing.T) {
	p := startedGame(t, 5)
	p.Turn = 2

	next, err := AssignMission(p, 1)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if next.Turn != 3 {
		t.Fatalf("turn = %d, want 3", next.Turn)
	}
	if len(next.Missions) != 2 {
		t.Fatalf("pool = %d, want 2", len(next.Missions))
	}
	if got := next.Players[2].Missions; len(got) != 1 || got[0] != p.Missions[1] {
		t.Fatalf("claimed missions = %+v, want [%+v]", got, p.Missions[1])
	}
	// remaining pool keeps its relative order
	if next.Missions[0] != p.Missions[0] || next.Missions[1] != p.Missions[2] {
		t.Fatalf("pool order broken: %+v", next.Missions)
	}
}

func TestAssignLastMissionResetsTurn(t *testing.T) {
	for _, turn := range []int{0, 1, 2, 3} {
		p := startedGame(t, 9)
		p.Missions = p.Missions[:1]
		p.Turn = turn

		next, err := AssignMission(p, 0)
		if err != nil {
			t.Fatalf("turn %d: assign: %v", turn, err)
		}
		if next.Turn != 0 {
			t.Fatalf("turn %d: next turn = %d, want 0", turn, next.Turn)
		}
		if len(next.Missions) != 0 {
			t.Fatalf("turn %d: pool not empty: %+v", turn, next.Missions)
		}
	}
}

func TestAssignMissionOutOfRange(t *testing.T) {
	p := startedGame(t, 9)
	for _, idx := range []int{-1, len(p.Missions), 99} {
		if _, err := AssignMission(p, idx); err != domain.ErrMissionIndexOutOfRange {
			t.Fatalf("idx %d: err = %v, want ErrMissionIndexOutOfRange", idx, err)
		}
	}
}

func TestPlayCardMarksInPlace(t *testing.T) {
	p := startedGame(t, 13)
	p.Turn = 1
	card := p.Players[1].Dealt[4].Card

	next, err := PlayCard(p, card)
	if err != nil {
		t.Fatalf("play: %v", err)
	}

	if next.Turn != 2 {
		t.Fatalf("turn = %d, want 2", next.Turn)
	}
	if len(next.Trick) != 1 || next.Trick[0] != card {
		t.Fatalf("trick = %+v, want [%+v]", next.Trick, card)
	}

	// only the played flag at the matching index changes
	hand := next.Players[1].Dealt
	if len(hand) != len(p.Players[1].Dealt) {
		t.Fatalf("hand length changed: %d", len(hand))
	}
	for i, d := range hand {
		if d.Card != p.Players[1].Dealt[i].Card {
			t.Fatalf("card identity changed at %d", i)
		}
		wantPlayed := i == 4
		if d.Played != wantPlayed {
			t.Fatalf("played flag at %d = %v, want %v", i, d.Played, wantPlayed)
		}
	}
	// input untouched
	if p.Players[1].Dealt[4].Played {
		t.Fatalf("play mutated its input")
	}
}

func TestPlayCardNotInHand(t *testing.T) {
	p := startedGame(t, 13)

	// a card the turn-holder does not hold
	held := make(map[domain.Card]bool)
	for _, d := range p.Players[p.Turn].Dealt {
		held[d.Card] = true
	}
	var missing domain.Card
	for _, suit := range domain.Suits() {
		for rank := 1; rank <= suit.MaxRank(); rank++ {
			c := domain.Card{Suit: suit, Rank: rank}
			if !held[c] {
				missing = c
			}
		}
	}
	if _, err := PlayCard(p, missing); err != domain.ErrCardNotInHand {
		t.Fatalf("missing card err = %v, want ErrCardNotInHand", err)
	}

	// an already played card cannot be played again
	card := p.Players[p.Turn].Dealt[0].Card
	p.Players[p.Turn].Dealt[0].Played = true
	if _, err := PlayCard(p, card); err != domain.ErrCardNotInHand {
		t.Fatalf("replay err = %v, want ErrCardNotInHand", err)
	}
}

func TestTransitionsDoNotShareMemory(t *testing.T) {
	p := startedGame(t, 21)
	next, err := AssignMission(p, 0)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	snapshot := clonePlaying(p)

	next.Players[0].Dealt[0].Played = true
	next.Missions = append(next.Missions, domain.CardMission(domain.Card{Suit: domain.SuitRed, Rank: 1}))
	next.Trick = append(next.Trick, domain.Card{Suit: domain.SuitRed, Rank: 1})

	if !reflect.DeepEqual(p, snapshot) {
		t.Fatalf("mutating the result leaked into the prior state")
	}
}
