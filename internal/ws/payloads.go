package ws

import (
	"errors"

	"cooptrick/internal/domain"
	"cooptrick/internal/service"
)

// client - server. Nonce is the version of the document the client last saw;
// the fields beyond it depend on Type.
type ActionPayload struct {
	Type  string       `json:"type"`
	Nonce string       `json:"nonce"`
	Index int          `json:"index,omitempty"`
	Card  *domain.Card `json:"card,omitempty"`
}

// server - client
type GamePayload struct {
	Type string      `json:"type"`
	Game domain.Game `json:"game"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errCode maps an action error to the stable code clients dispatch on.
func errCode(err error) string {
	switch {
	case errors.Is(err, service.ErrConcurrentModification):
		return "concurrent_modification"
	case errors.Is(err, domain.ErrAlreadyJoined):
		return "already_joined"
	case errors.Is(err, domain.ErrInsufficientPlayers):
		return "insufficient_players"
	case errors.Is(err, domain.ErrMissionIndexOutOfRange):
		return "mission_index_out_of_range"
	case errors.Is(err, domain.ErrCardNotInHand):
		return "card_not_in_hand"
	case errors.Is(err, domain.ErrLobbyFull):
		return "lobby_full"
	case errors.Is(err, domain.ErrWrongPhase):
		return "wrong_phase"
	}
	return "internal"
}
