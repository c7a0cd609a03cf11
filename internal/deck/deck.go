// Package deck builds shuffled decks and deals them out: hands of ten for
// each of the four seats, with the trump-4 holder rotated into the lead,
// and mission cards drawn from an independent shuffle.
package deck

import (
	"math/rand"

	"cooptrick/internal/domain"
)

// Build returns the full 40-card deck in uniformly random order.
// Fisher-Yates over the injected rng so callers can seed for tests.
func Build(rng *rand.Rand) []domain.Card {
	cards := make([]domain.Card, 0, domain.DeckSize)
	for _, suit := range domain.Suits() {
		for rank := 1; rank <= suit.MaxRank(); rank++ {
			cards = append(cards, domain.Card{Suit: suit, Rank: rank})
		}
	}
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
	return cards
}

// Deal distributes a fresh shuffle round-robin to exactly four users, ten
// cards each, then rotates the seat order so the holder of the trump 4
// leads. The rotation is a cyclic shift: relative order of the other three
// seats is preserved.
func Deal(rng *rand.Rand, users []domain.User) ([]domain.Player, error) {
	if len(users) != domain.Seats {
		return nil, domain.ErrInsufficientPlayers
	}

	cards := Build(rng)
	hands := make([][]domain.DealtCard, domain.Seats)
	for i, card := range cards {
		seat := i % domain.Seats
		hands[seat] = append(hands[seat], domain.DealtCard{Card: card})
	}

	players := make([]domain.Player, domain.Seats)
	for i, user := range users {
		players[i] = domain.Player{
			User:     user,
			Dealt:    hands[i],
			Missions: []domain.Mission{},
		}
	}

	lead := leaderIndex(players)
	return append(players[lead:], players[:lead]...), nil
}

func leaderIndex(players []domain.Player) int {
	for i, p := range players {
		for _, d := range p.Dealt {
			if d.Card.IsTrump4() {
				return i
			}
		}
	}
	// unreachable: Build always produces the trump 4
	return 0
}

// DrawMissions shuffles a fresh deck, drops the trump suit and wraps the
// first count cards as missions. The shuffle is independent of any deal, so
// mission cards are not guaranteed disjoint from dealt hands.
func DrawMissions(rng *rand.Rand, count int) []domain.Mission {
	missions := make([]domain.Mission, 0, count)
	for _, card := range Build(rng) {
		if card.Suit == domain.SuitTrump {
			continue
		}
		missions = append(missions, domain.CardMission(card))
		if len(missions) == count {
			break
		}
	}
	return missions
}
