package handlers

import (
	"net/http"

	"cooptrick/internal/domain"
	"cooptrick/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" binding:"required"`
	Icon string `json:"icon"`
}

// Auth exchanges a player profile for a token. There is no identity provider
// in front of the store; the id just has to stay stable for the game, so a
// first-time caller gets a generated one.
func (h *Handler) Auth(c *gin.Context) {
	var req AuthRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Icon == "" {
		req.Icon = string([]rune(req.Name)[0:1])
	}

	user := domain.User{ID: req.ID, Name: req.Name, Icon: req.Icon}
	token, err := service.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}
