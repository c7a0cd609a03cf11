package ws

import (
	"errors"
	"fmt"
	"testing"

	"cooptrick/internal/domain"
	"cooptrick/internal/service"
)

func TestErrCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{service.ErrConcurrentModification, "concurrent_modification"},
		{fmt.Errorf("wrapped: %w", service.ErrConcurrentModification), "concurrent_modification"},
		{domain.ErrAlreadyJoined, "already_joined"},
		{domain.ErrInsufficientPlayers, "insufficient_players"},
		{domain.ErrMissionIndexOutOfRange, "mission_index_out_of_range"},
		{domain.ErrCardNotInHand, "card_not_in_hand"},
		{domain.ErrLobbyFull, "lobby_full"},
		{domain.ErrWrongPhase, "wrong_phase"},
		{errors.New("boom"), "internal"},
	}

	for _, tc := range cases {
		if got := errCode(tc.err); got != tc.want {
			t.Fatalf("errCode(%v) = %s; want %s", tc.err, got, tc.want)
		}
	}
}
