package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"cooptrick/internal/docstore"
	"cooptrick/internal/domain"
	"cooptrick/internal/logger"
	"cooptrick/internal/service"
)

const actionTimeout = 10 * time.Second

// Room fans one game's document out to its connected clients. The room holds
// the single store subscription; clients come and go underneath it.
type Room struct {
	GameID string

	hub   *Hub
	games *service.GameService

	Register   chan *Client
	Unregister chan *Client
	broadcast  chan domain.Game

	mu      sync.RWMutex
	clients map[*Client]struct{}

	// guarded by hub.mu: a room in the hub map is never closed, and a
	// register that won the closed check holds the room open via pending
	// until the run loop seats it
	closed  bool
	pending int

	unsub    docstore.Unsubscribe
	done     chan struct{}
	stopOnce sync.Once
}

func newRoom(hub *Hub, games *service.GameService, gameID string) *Room {
	return &Room{
		GameID:     gameID,
		hub:        hub,
		games:      games,
		Register:   make(chan *Client, 8),
		Unregister: make(chan *Client, 8),
		broadcast:  make(chan domain.Game, 16),
		clients:    make(map[*Client]struct{}),
		done:       make(chan struct{}),
	}
}

// register hands c to the run loop. It reports false when the room retired
// before the handoff; the caller fetches a fresh room from the hub.
func (r *Room) register(c *Client) bool {
	r.hub.mu.Lock()
	if r.closed {
		r.hub.mu.Unlock()
		return false
	}
	r.pending++
	r.hub.mu.Unlock()
	r.Register <- c
	return true
}

func (r *Room) Run() {
	for {
		select {
		case c := <-r.Register:
			r.hub.mu.Lock()
			r.pending--
			r.hub.mu.Unlock()

			r.mu.Lock()
			r.clients[c] = struct{}{}
			r.mu.Unlock()

			// seat the player the way a snapshot listener would: joining
			// is part of watching; rejoins and games in progress are fine
			ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
			err := r.games.Join(ctx, r.GameID, c.User)
			cancel()
			if err != nil {
				switch errCode(err) {
				case "already_joined", "wrong_phase", "lobby_full":
					// spectator or rejoin; the subscription still serves them
				default:
					r.sendError(c, err)
				}
			}
			// the current document, so the client renders before any write
			if g, exists, err := r.games.Get(context.Background(), r.GameID); err == nil && exists {
				r.sendGame(c, g)
			}

		case c := <-r.Unregister:
			r.mu.Lock()
			delete(r.clients, c)
			empty := len(r.clients) == 0
			r.mu.Unlock()
			close(c.Send)
			if empty && r.hub.retire(r) {
				return
			}

		case g := <-r.broadcast:
			data, err := json.Marshal(GamePayload{Type: MsgGame, Game: g})
			if err != nil {
				logger.Error("marshal game payload", "game", r.GameID, "error", err)
				continue
			}
			r.mu.RLock()
			for c := range r.clients {
				select {
				case c.Send <- data:
				default: // slow client; it will resync from the next update
				}
			}
			r.mu.RUnlock()

		case <-r.done:
			return
		}
	}
}

// HandleMessage dispatches one action frame from a client. Errors go back to
// that client only; accepted writes reach everyone through the subscription.
func (r *Room) HandleMessage(c *Client, msg []byte) {
	var action ActionPayload
	if err := json.Unmarshal(msg, &action); err != nil {
		r.sendErrorCode(c, "bad_payload", "malformed action")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	var err error
	switch action.Type {
	case MsgStart:
		err = r.games.Start(ctx, r.GameID, action.Nonce)
	case MsgMission:
		err = r.games.AssignMission(ctx, r.GameID, action.Nonce, action.Index)
	case MsgCard:
		if action.Card == nil {
			r.sendErrorCode(c, "bad_payload", "card action without a card")
			return
		}
		err = r.games.PlayCard(ctx, r.GameID, action.Nonce, *action.Card)
	case MsgFinish:
		err = r.games.Finish(ctx, r.GameID, action.Nonce)
	default:
		r.sendErrorCode(c, "bad_payload", "unknown action "+action.Type)
		return
	}

	if err != nil {
		logger.Debug("action rejected",
			"game", r.GameID, "user", c.User.ID, "action", action.Type, "error", err)
		r.sendError(c, err)
	}
}

func (r *Room) sendGame(c *Client, g domain.Game) {
	data, err := json.Marshal(GamePayload{Type: MsgGame, Game: g})
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (r *Room) sendError(c *Client, err error) {
	r.sendErrorCode(c, errCode(err), err.Error())
}

func (r *Room) sendErrorCode(c *Client, code, message string) {
	data, err := json.Marshal(ErrorPayload{Type: MsgError, Code: code, Message: message})
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (r *Room) stop() {
	r.stopOnce.Do(func() {
		if r.unsub != nil {
			r.unsub()
		}
		close(r.done)
	})
}
