package domain

import "errors"

// Game rule errors. All are local, recoverable conditions: the caller waits,
// retries against a fresher document, or treats them as a no-op.
var (
	// ErrInsufficientPlayers - start attempted before four users joined.
	ErrInsufficientPlayers = errors.New("need 4 players")

	// ErrAlreadyJoined - join attempted with a user id already seated.
	ErrAlreadyJoined = errors.New("user already joined")

	// ErrMissionIndexOutOfRange - mission index past the end of the pool.
	ErrMissionIndexOutOfRange = errors.New("mission index out of range")

	// ErrCardNotInHand - played card is not an unplayed card of the
	// current turn-holder.
	ErrCardNotInHand = errors.New("card not in hand")

	// ErrLobbyFull - join attempted with four users already seated.
	ErrLobbyFull = errors.New("lobby is full")

	// ErrWrongPhase - action applied to a document in a phase it does not
	// belong to (stale view or client bug).
	ErrWrongPhase = errors.New("game is not in the right phase")
)
