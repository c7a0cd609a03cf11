// Package engine holds the pure game transitions. Every function takes the
// current document and returns a freshly built one; inputs are never
// mutated, so a transition can be replayed against any snapshot.
package engine

import (
	"math/rand"
	"sync"

	"cooptrick/internal/deck"
	"cooptrick/internal/domain"
)

// DefaultMissionCount is how many missions a fresh game draws.
const DefaultMissionCount = 3

// Engine carries the rng and mission count used when a game starts.
// Join, AssignMission and PlayCard need neither and are package functions.
// Start is called from handler and room goroutines concurrently, and
// rand.Rand is not safe for concurrent use, so draws go through mu.
type Engine struct {
	mu       sync.Mutex
	rng      *rand.Rand
	missions int
}

func New(rng *rand.Rand, missions int) *Engine {
	if missions <= 0 {
		missions = DefaultMissionCount
	}
	return &Engine{rng: rng, missions: missions}
}

// NewLobby builds the waiting document a first join creates.
func NewLobby(id string, u domain.User) domain.WaitingGame {
	return domain.WaitingGame{
		ID:      id,
		State:   domain.PhaseWaiting,
		Players: []domain.User{u},
	}
}

// Join seats a user in the lobby, preserving join order.
func Join(w domain.WaitingGame, u domain.User) (domain.WaitingGame, error) {
	for _, p := range w.Players {
		if p.ID == u.ID {
			return domain.WaitingGame{}, domain.ErrAlreadyJoined
		}
	}
	if len(w.Players) >= domain.Seats {
		return domain.WaitingGame{}, domain.ErrLobbyFull
	}

	next := w
	next.Players = append(append([]domain.User{}, w.Players...), u)
	return next, nil
}

// Start deals hands and missions and moves the lobby into play. The seat
// order of the result comes from the deal: the trump-4 holder leads, so
// turn 0 is the leader.
func (e *Engine) Start(w domain.WaitingGame) (domain.PlayingGame, error) {
	if len(w.Players) < domain.Seats {
		return domain.PlayingGame{}, domain.ErrInsufficientPlayers
	}

	e.mu.Lock()
	players, err := deck.Deal(e.rng, w.Players[:domain.Seats])
	if err != nil {
		e.mu.Unlock()
		return domain.PlayingGame{}, err
	}
	missions := deck.DrawMissions(e.rng, e.missions)
	e.mu.Unlock()

	return domain.PlayingGame{
		ID:       w.ID,
		State:    domain.PhasePlaying,
		Players:  players,
		Turn:     0,
		Missions: missions,
		Trick:    []domain.Card{},
	}, nil
}

// AssignMission moves the mission at idx from the shared pool to the current
// turn-holder. Claiming the last mission resets the turn to seat 0 so the
// hand begins with the leader; otherwise the turn advances one seat.
func AssignMission(p domain.PlayingGame, idx int) (domain.PlayingGame, error) {
	if idx < 0 || idx >= len(p.Missions) {
		return domain.PlayingGame{}, domain.ErrMissionIndexOutOfRange
	}

	next := clonePlaying(p)
	seat := &next.Players[p.Turn]
	seat.Missions = append(seat.Missions, p.Missions[idx])
	next.Missions = append(next.Missions[:idx], next.Missions[idx+1:]...)
	if len(p.Missions) == 1 {
		next.Turn = 0
	} else {
		next.Turn = (p.Turn + 1) % len(p.Players)
	}
	return next, nil
}

// PlayCard marks the matching unplayed card in the turn-holder's hand,
// appends it to the trick and advances the turn. The card stays in the hand
// so indices never shift.
func PlayCard(p domain.PlayingGame, card domain.Card) (domain.PlayingGame, error) {
	idx := -1
	for i, d := range p.Players[p.Turn].Dealt {
		if d.Card == card && !d.Played {
			idx = i
			break
		}
	}
	if idx == -1 {
		return domain.PlayingGame{}, domain.ErrCardNotInHand
	}

	next := clonePlaying(p)
	next.Players[p.Turn].Dealt[idx].Played = true
	next.Trick = append(next.Trick, card)
	next.Turn = (p.Turn + 1) % len(p.Players)
	return next, nil
}

// Finish ends the game. Whatever triggered it, the result is the terminal
// document; nothing transitions out of it.
func Finish(id string) domain.OverGame {
	return domain.OverGame{ID: id, State: domain.PhaseOver}
}

func clonePlaying(p domain.PlayingGame) domain.PlayingGame {
	next := p
	next.Players = make([]domain.Player, len(p.Players))
	for i, pl := range p.Players {
		next.Players[i] = domain.Player{
			User:     pl.User,
			Dealt:    append([]domain.DealtCard{}, pl.Dealt...),
			Missions: append([]domain.Mission{}, pl.Missions...),
		}
	}
	next.Missions = append([]domain.Mission{}, p.Missions...)
	next.Trick = append([]domain.Card{}, p.Trick...)
	return next
}
