package handlers

import (
	"cooptrick/internal/domain"
	"cooptrick/internal/repository"
	"cooptrick/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Games   *service.GameService
	History *repository.HistoryRepository // nil without an archive database
}

func NewHandler(games *service.GameService, history *repository.HistoryRepository) *Handler {
	return &Handler{Games: games, History: history}
}

// currentUser reads the user the JWT middleware stored.
func currentUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get("user")
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}
