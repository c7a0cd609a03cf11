package handlers

import (
	"errors"
	"net/http"

	"cooptrick/internal/domain"
	"cooptrick/internal/service"

	"github.com/gin-gonic/gin"
)

type startRequest struct {
	Nonce string `json:"nonce" binding:"required"`
}

type missionRequest struct {
	Nonce string `json:"nonce" binding:"required"`
	Index *int   `json:"index" binding:"required"`
}

type cardRequest struct {
	Nonce string       `json:"nonce" binding:"required"`
	Card  *domain.Card `json:"card" binding:"required"`
}

// GetGame returns the current document.
func (h *Handler) GetGame(c *gin.Context) {
	g, exists, err := h.Games.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	c.JSON(http.StatusOK, g)
}

// Join seats the authenticated user, creating the lobby when the id is new.
func (h *Handler) Join(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	h.respond(c, h.Games.Join(c.Request.Context(), c.Param("id"), user))
}

// Start deals the lobby into play.
func (h *Handler) Start(c *gin.Context) {
	var req startRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	h.respond(c, h.Games.Start(c.Request.Context(), c.Param("id"), req.Nonce))
}

// AssignMission claims a mission for the current turn-holder.
func (h *Handler) AssignMission(c *gin.Context) {
	var req missionRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	h.respond(c, h.Games.AssignMission(c.Request.Context(), c.Param("id"), req.Nonce, *req.Index))
}

// PlayCard plays a card from the current turn-holder's hand.
func (h *Handler) PlayCard(c *gin.Context) {
	var req cardRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	h.respond(c, h.Games.PlayCard(c.Request.Context(), c.Param("id"), req.Nonce, *req.Card))
}

// Finish ends the game.
func (h *Handler) Finish(c *gin.Context) {
	var req startRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	h.respond(c, h.Games.Finish(c.Request.Context(), c.Param("id"), req.Nonce))
}

// RecentGames lists archived finished games.
func (h *Handler) RecentGames(c *gin.Context) {
	if h.History == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no archive configured"})
		return
	}
	entries, err := h.History.Recent(c.Request.Context(), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "archive unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": entries})
}

// respond finishes an action request: the new state reaches clients through
// their subscriptions, so success is just an ack.
func (h *Handler) respond(c *gin.Context, err error) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	c.JSON(actionStatus(err), gin.H{"error": err.Error(), "code": actionCode(err)})
}

func actionStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrConcurrentModification),
		errors.Is(err, domain.ErrAlreadyJoined),
		errors.Is(err, domain.ErrLobbyFull),
		errors.Is(err, domain.ErrWrongPhase):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientPlayers),
		errors.Is(err, domain.ErrMissionIndexOutOfRange),
		errors.Is(err, domain.ErrCardNotInHand):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func actionCode(err error) string {
	switch {
	case errors.Is(err, service.ErrConcurrentModification):
		return "concurrent_modification"
	case errors.Is(err, domain.ErrAlreadyJoined):
		return "already_joined"
	case errors.Is(err, domain.ErrLobbyFull):
		return "lobby_full"
	case errors.Is(err, domain.ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, domain.ErrInsufficientPlayers):
		return "insufficient_players"
	case errors.Is(err, domain.ErrMissionIndexOutOfRange):
		return "mission_index_out_of_range"
	case errors.Is(err, domain.ErrCardNotInHand):
		return "card_not_in_hand"
	}
	return "internal"
}
