package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Phase - lifecycle phase of a game document
type Phase string

const (
	PhaseWaiting Phase = "waiting"
	PhasePlaying Phase = "playing"
	PhaseOver    Phase = "over"
)

// WaitingGame is the lobby: 1-4 users joined, no cards dealt yet.
type WaitingGame struct {
	ID      string `json:"id"`
	State   Phase  `json:"state"`
	Nonce   string `json:"nonce"`
	Players []User `json:"players"`
}

// PlayingGame is a game in progress. Turn indexes Players; the seat at
// index 0 is the leader (holder of the trump 4 at deal time).
type PlayingGame struct {
	ID       string    `json:"id"`
	State    Phase     `json:"state"`
	Nonce    string    `json:"nonce"`
	Players  []Player  `json:"players"`
	Turn     int       `json:"turn"`
	Missions []Mission `json:"missions"`
	Trick    []Card    `json:"trick"`
}

// OverGame is terminal. It carries no nonce because nothing mutates it.
type OverGame struct {
	ID    string `json:"id"`
	State Phase  `json:"state"`
}

// Game is the persisted document: a tagged union over the three phases.
// Exactly one of the variant pointers is set.
type Game struct {
	Waiting *WaitingGame
	Playing *PlayingGame
	Over    *OverGame
}

// ErrEmptyDocument is returned when a Game has no variant set.
var ErrEmptyDocument = errors.New("empty game document")

// Wrap helpers build a union value around a single variant.

func WrapWaiting(w WaitingGame) Game { return Game{Waiting: &w} }
func WrapPlaying(p PlayingGame) Game { return Game{Playing: &p} }
func WrapOver(o OverGame) Game       { return Game{Over: &o} }

// Phase returns the discriminant of the set variant, or "" for a zero Game.
func (g Game) Phase() Phase {
	switch {
	case g.Waiting != nil:
		return PhaseWaiting
	case g.Playing != nil:
		return PhasePlaying
	case g.Over != nil:
		return PhaseOver
	}
	return ""
}

// ID returns the document id of the set variant.
func (g Game) ID() string {
	switch {
	case g.Waiting != nil:
		return g.Waiting.ID
	case g.Playing != nil:
		return g.Playing.ID
	case g.Over != nil:
		return g.Over.ID
	}
	return ""
}

// Nonce returns the version token, or "" for over documents (which never
// change again) and zero values.
func (g Game) Nonce() string {
	switch {
	case g.Waiting != nil:
		return g.Waiting.Nonce
	case g.Playing != nil:
		return g.Playing.Nonce
	}
	return ""
}

// WithNonce returns a copy of the document carrying the given version token.
// Over documents are returned unchanged.
func (g Game) WithNonce(nonce string) Game {
	switch {
	case g.Waiting != nil:
		w := *g.Waiting
		w.Nonce = nonce
		return Game{Waiting: &w}
	case g.Playing != nil:
		p := *g.Playing
		p.Nonce = nonce
		return Game{Playing: &p}
	}
	return g
}

// MarshalJSON writes the set variant as a flat record with its "state"
// discriminant. Field names are the wire contract and must not change.
func (g Game) MarshalJSON() ([]byte, error) {
	switch {
	case g.Waiting != nil:
		w := *g.Waiting
		w.State = PhaseWaiting
		return json.Marshal(w)
	case g.Playing != nil:
		p := *g.Playing
		p.State = PhasePlaying
		return json.Marshal(p)
	case g.Over != nil:
		o := *g.Over
		o.State = PhaseOver
		return json.Marshal(o)
	}
	return nil, ErrEmptyDocument
}

// UnmarshalJSON dispatches on the "state" discriminant.
func (g *Game) UnmarshalJSON(data []byte) error {
	var probe struct {
		State Phase `json:"state"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.State {
	case PhaseWaiting:
		var w WaitingGame
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		*g = Game{Waiting: &w}
	case PhasePlaying:
		var p PlayingGame
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		*g = Game{Playing: &p}
	case PhaseOver:
		var o OverGame
		if err := json.Unmarshal(data, &o); err != nil {
			return err
		}
		*g = Game{Over: &o}
	default:
		return fmt.Errorf("unknown game state %q", probe.State)
	}
	return nil
}
