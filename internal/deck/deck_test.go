package deck

import (
	"math/rand"
	"testing"

	"cooptrick/internal/domain"
)

func fourUsers() []domain.User {
	return []domain.User{
		{ID: "a", Name: "Ann", Icon: "A"},
		{ID: "b", Name: "Ben", Icon: "B"},
		{ID: "c", Name: "Cid", Icon: "C"},
		{ID: "d", Name: "Dot", Icon: "D"},
	}
}

func TestBuildDeckComplete(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cards := Build(rng)

	if len(cards) != domain.DeckSize {
		t.Fatalf("deck size = %d, want %d", len(cards), domain.DeckSize)
	}

	seen := make(map[domain.Card]int)
	for _, c := range cards {
		seen[c]++
	}
	for _, suit := range domain.Suits() {
		for rank := 1; rank <= suit.MaxRank(); rank++ {
			card := domain.Card{Suit: suit, Rank: rank}
			if seen[card] != 1 {
				t.Fatalf("card %+v appears %d times", card, seen[card])
			}
		}
	}
}

func TestDealConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	players, err := Deal(rng, fourUsers())
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	if len(players) != domain.Seats {
		t.Fatalf("players = %d, want %d", len(players), domain.Seats)
	}

	seen := make(map[domain.Card]int)
	for _, p := range players {
		if len(p.Dealt) != domain.DeckSize/domain.Seats {
			t.Fatalf("hand size = %d, want %d", len(p.Dealt), domain.DeckSize/domain.Seats)
		}
		for _, d := range p.Dealt {
			if d.Played {
				t.Fatalf("card %+v dealt already played", d.Card)
			}
			seen[d.Card]++
		}
	}
	if len(seen) != domain.DeckSize {
		t.Fatalf("distinct cards = %d, want %d", len(seen), domain.DeckSize)
	}
	for card, n := range seen {
		if n != 1 {
			t.Fatalf("card %+v dealt %d times", card, n)
		}
	}
}

func TestDealLeaderHoldsTrump4(t *testing.T) {
	// property over many shuffles
	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		players, err := Deal(rng, fourUsers())
		if err != nil {
			t.Fatalf("seed %d: deal: %v", seed, err)
		}

		holds := false
		for _, d := range players[0].Dealt {
			if d.Card.IsTrump4() {
				holds = true
				break
			}
		}
		if !holds {
			t.Fatalf("seed %d: seat 0 does not hold the trump 4", seed)
		}
	}
}

func TestDealPreservesSeatingOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	users := fourUsers()
	players, err := Deal(rng, users)
	if err != nil {
		t.Fatalf("deal: %v", err)
	}

	// find where the original first user landed; the cycle must continue
	// from there in the original order
	start := -1
	for i, p := range players {
		if p.User.ID == users[0].ID {
			start = i
			break
		}
	}
	if start == -1 {
		t.Fatalf("first user missing after deal")
	}
	for i, u := range users {
		got := players[(start+i)%domain.Seats].User.ID
		if got != u.ID {
			t.Fatalf("seating order broken: offset %d got %s, want %s", i, got, u.ID)
		}
	}
}

func TestDealRequiresFourUsers(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 3, 5} {
		users := make([]domain.User, n)
		if _, err := Deal(rng, users); err != domain.ErrInsufficientPlayers {
			t.Fatalf("deal with %d users: err = %v, want ErrInsufficientPlayers", n, err)
		}
	}
}

func TestDrawMissions(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	missions := DrawMissions(rng, 3)

	if len(missions) != 3 {
		t.Fatalf("missions = %d, want 3", len(missions))
	}
	for _, m := range missions {
		if m.Type != domain.MissionTypeCard {
			t.Fatalf("mission type = %q, want %q", m.Type, domain.MissionTypeCard)
		}
		if m.Card.Suit == domain.SuitTrump {
			t.Fatalf("mission card %+v is trump", m.Card)
		}
	}
}
