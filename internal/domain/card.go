package domain

import "sort"

// Suit - card suit
type Suit string

const (
	SuitRed    Suit = "red"
	SuitGreen  Suit = "green"
	SuitBlue   Suit = "blue"
	SuitYellow Suit = "yellow"
	SuitTrump  Suit = "trump"
)

// Suits returns every suit in display order.
func Suits() []Suit {
	return []Suit{SuitRed, SuitGreen, SuitBlue, SuitYellow, SuitTrump}
}

// MaxRank is the highest rank a suit carries: color suits run 1..9, trump 1..4.
func (s Suit) MaxRank() int {
	if s == SuitTrump {
		return 4
	}
	return 9
}

// Color returns the CSS color the client renders the suit with.
func (s Suit) Color() string {
	if s == SuitTrump {
		return "white"
	}
	return string(s)
}

func (s Suit) order() int {
	for i, suit := range Suits() {
		if suit == s {
			return i
		}
	}
	return len(Suits())
}

// DeckSize is 4 color suits of 9 plus 4 trumps.
const DeckSize = 40

// Card is compared structurally: two cards are the same card
// when suit and rank both match.
type Card struct {
	Suit Suit `json:"suit"`
	Rank int  `json:"rank"`
}

// IsTrump4 reports whether c is the trump 4, the card that marks the leader.
func (c Card) IsTrump4() bool {
	return c.Suit == SuitTrump && c.Rank == 4
}

// DealtCard is a card's residence in a hand. Played cards stay in the
// hand with the flag set so indices never shift mid-game.
type DealtCard struct {
	Card   Card `json:"card"`
	Played bool `json:"played"`
}

// SortDealt orders a hand by suit (display order), then rank.
func SortDealt(dealt []DealtCard) {
	sort.SliceStable(dealt, func(i, j int) bool {
		a, b := dealt[i].Card, dealt[j].Card
		if a.Suit != b.Suit {
			return a.Suit.order() < b.Suit.order()
		}
		return a.Rank < b.Rank
	})
}

// MissionTypeCard is the only mission type in play.
const MissionTypeCard = "card"

// Mission is a card-shaped objective. It sits in the shared pool until a
// player claims it, then belongs to that player.
type Mission struct {
	Type string `json:"type"`
	Card Card   `json:"card"`
}

// CardMission wraps a card as a mission.
func CardMission(c Card) Mission {
	return Mission{Type: MissionTypeCard, Card: c}
}
