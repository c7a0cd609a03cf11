package service

import (
	"context"
	"errors"
	"fmt"

	"cooptrick/internal/docstore"
	"cooptrick/internal/domain"
	"cooptrick/internal/engine"
	"cooptrick/internal/logger"
	"cooptrick/internal/repository"

	"github.com/google/uuid"
)

// ErrConcurrentModification - the caller acted on a stale document: its
// nonce no longer matches the stored one. The subscription will deliver the
// fresher state; the caller resubmits against that.
var ErrConcurrentModification = errors.New("concurrent modification")

// GameService serializes every mutation through the store's per-key
// transaction. Each operation re-reads the document inside the transaction,
// compares the caller's nonce against the stored one, applies the pure
// transition and writes the result under a fresh nonce. Exactly one of any
// set of writers racing on the same nonce wins.
type GameService struct {
	store   docstore.Store
	engine  *engine.Engine
	history *repository.HistoryRepository // optional archive of finished games
}

func NewGameService(store docstore.Store, eng *engine.Engine) *GameService {
	return &GameService{store: store, engine: eng}
}

// WithHistory attaches the archive written when a game ends.
func (s *GameService) WithHistory(repo *repository.HistoryRepository) *GameService {
	s.history = repo
	return s
}

func newNonce() string {
	return uuid.NewString()
}

// Get reads the current document.
func (s *GameService) Get(ctx context.Context, gameID string) (domain.Game, bool, error) {
	return s.store.Get(ctx, gameID)
}

// Subscribe delivers every accepted document for the game.
func (s *GameService) Subscribe(ctx context.Context, gameID string, fn func(domain.Game)) (docstore.Unsubscribe, error) {
	return s.store.Subscribe(ctx, gameID, fn)
}

// Join seats the user, creating the lobby when the id is unseen. Unlike the
// other operations it carries no nonce precondition: the transaction itself
// serializes competing joins.
func (s *GameService) Join(ctx context.Context, gameID string, user domain.User) error {
	err := s.store.Transaction(ctx, gameID, func(cur domain.Game, exists bool) (domain.Game, bool, error) {
		if !exists {
			logger.Info("creating lobby", "game", gameID, "user", user.ID)
			lobby := engine.NewLobby(gameID, user)
			return domain.WrapWaiting(lobby).WithNonce(newNonce()), true, nil
		}
		if cur.Waiting == nil {
			return domain.Game{}, false, domain.ErrWrongPhase
		}
		next, err := engine.Join(*cur.Waiting, user)
		if err != nil {
			return domain.Game{}, false, err
		}
		return domain.WrapWaiting(next).WithNonce(newNonce()), true, nil
	})
	return s.observe(opJoin, err)
}

// Start deals the game. nonce is the version of the lobby the caller saw.
func (s *GameService) Start(ctx context.Context, gameID, nonce string) error {
	err := s.store.Transaction(ctx, gameID, func(cur domain.Game, exists bool) (domain.Game, bool, error) {
		if err := checkNonce(cur, exists, nonce); err != nil {
			return domain.Game{}, false, err
		}
		if cur.Waiting == nil {
			return domain.Game{}, false, domain.ErrWrongPhase
		}
		next, err := s.engine.Start(*cur.Waiting)
		if err != nil {
			return domain.Game{}, false, err
		}
		return domain.WrapPlaying(next).WithNonce(newNonce()), true, nil
	})
	return s.observe(opStart, err)
}

// AssignMission claims the mission at idx for the current turn-holder.
func (s *GameService) AssignMission(ctx context.Context, gameID, nonce string, idx int) error {
	err := s.store.Transaction(ctx, gameID, func(cur domain.Game, exists bool) (domain.Game, bool, error) {
		if err := checkNonce(cur, exists, nonce); err != nil {
			return domain.Game{}, false, err
		}
		if cur.Playing == nil {
			return domain.Game{}, false, domain.ErrWrongPhase
		}
		next, err := engine.AssignMission(*cur.Playing, idx)
		if err != nil {
			return domain.Game{}, false, err
		}
		return domain.WrapPlaying(next).WithNonce(newNonce()), true, nil
	})
	return s.observe(opAssignMission, err)
}

// PlayCard plays the card from the current turn-holder's hand.
func (s *GameService) PlayCard(ctx context.Context, gameID, nonce string, card domain.Card) error {
	err := s.store.Transaction(ctx, gameID, func(cur domain.Game, exists bool) (domain.Game, bool, error) {
		if err := checkNonce(cur, exists, nonce); err != nil {
			return domain.Game{}, false, err
		}
		if cur.Playing == nil {
			return domain.Game{}, false, domain.ErrWrongPhase
		}
		next, err := engine.PlayCard(*cur.Playing, card)
		if err != nil {
			return domain.Game{}, false, err
		}
		return domain.WrapPlaying(next).WithNonce(newNonce()), true, nil
	})
	return s.observe(opPlayCard, err)
}

// Finish moves the game to its terminal state. The trigger is external to
// the turn machinery; any non-over document can be finished.
func (s *GameService) Finish(ctx context.Context, gameID, nonce string) error {
	var finished *domain.PlayingGame
	err := s.store.Transaction(ctx, gameID, func(cur domain.Game, exists bool) (domain.Game, bool, error) {
		if err := checkNonce(cur, exists, nonce); err != nil {
			return domain.Game{}, false, err
		}
		if cur.Over != nil {
			return domain.Game{}, false, domain.ErrWrongPhase
		}
		finished = cur.Playing
		return domain.WrapOver(engine.Finish(gameID)), true, nil
	})
	if err == nil {
		s.archive(ctx, gameID, finished)
	}
	return s.observe(opFinish, err)
}

func (s *GameService) archive(ctx context.Context, gameID string, final *domain.PlayingGame) {
	if s.history == nil || final == nil {
		return
	}
	if err := s.history.Record(ctx, gameID, final.Players); err != nil {
		// best effort: the document store already holds the terminal state
		logger.Warn("failed to archive finished game", "game", gameID, "error", err)
	}
}

func (s *GameService) observe(op string, err error) error {
	switch {
	case err == nil:
		writesAccepted.WithLabelValues(op).Inc()
	case errors.Is(err, ErrConcurrentModification):
		writeConflicts.WithLabelValues(op).Inc()
	}
	return err
}

// checkNonce is the compare half of the compare-and-swap: a missing document
// or a stored nonce different from the caller's view means the view is stale.
func checkNonce(cur domain.Game, exists bool, nonce string) error {
	if !exists {
		return fmt.Errorf("%w: document is gone", ErrConcurrentModification)
	}
	if cur.Nonce() != nonce {
		return ErrConcurrentModification
	}
	return nil
}
