package ws

import (
	"context"
	"sync"

	"cooptrick/internal/domain"
	"cooptrick/internal/logger"
	"cooptrick/internal/service"
)

// Hub hands out one room per game id. A room owns the single store
// subscription for its game, however many clients watch it.
type Hub struct {
	games *service.GameService

	mu    sync.Mutex
	rooms map[string]*Room
}

func NewHub(games *service.GameService) *Hub {
	return &Hub{
		games: games,
		rooms: make(map[string]*Room),
	}
}

// Room returns the running room for gameID, creating and subscribing it on
// first use.
func (h *Hub) Room(gameID string) (*Room, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[gameID]; ok {
		return room, nil
	}

	room := newRoom(h, h.games, gameID)
	unsub, err := h.games.Subscribe(context.Background(), gameID, func(g domain.Game) {
		select {
		case room.broadcast <- g:
		case <-room.done:
		}
	})
	if err != nil {
		return nil, err
	}
	room.unsub = unsub
	h.rooms[gameID] = room
	go room.Run()

	logger.Info("room opened", "game", gameID)
	return room, nil
}

// retire removes r from the hub unless a client is mid-handoff. When a
// register won the closed check first, retire reports false and the run
// loop keeps going to seat that client.
func (h *Hub) retire(r *Room) bool {
	h.mu.Lock()
	if r.pending > 0 {
		h.mu.Unlock()
		return false
	}
	r.closed = true
	delete(h.rooms, r.GameID)
	h.mu.Unlock()
	r.stop()
	logger.Info("room closed", "game", r.GameID)
	return true
}

// Stop closes every room. In-flight writes complete or no-op as usual.
func (h *Hub) Stop() {
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		r.closed = true
		rooms = append(rooms, r)
	}
	h.rooms = make(map[string]*Room)
	h.mu.Unlock()

	for _, r := range rooms {
		r.stop()
	}
}
