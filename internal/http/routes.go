package http

import (
	"cooptrick/internal/docstore"
	"cooptrick/internal/http/handlers"
	"cooptrick/internal/http/middleware"
	"cooptrick/internal/repository"
	"cooptrick/internal/service"
	"cooptrick/internal/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the API. Every game mutation maps 1:1 to one
// controller operation; reads come from the store or the subscription.
func RegisterRoutes(r *gin.Engine, games *service.GameService, store docstore.Store, history *repository.HistoryRepository, version string) *ws.Hub {
	h := handlers.NewHandler(games, history)
	healthHandler := handlers.NewHealthHandler(store, version)

	// Health checks
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")

	v1.POST("/auth", h.Auth)

	v1.GET("/game/:id", h.GetGame)
	game := v1.Group("/game")
	game.Use(middleware.JWT())
	{
		game.POST("/:id/join", h.Join)
		game.POST("/:id/start", h.Start)
		game.POST("/:id/mission", h.AssignMission)
		game.POST("/:id/card", h.PlayCard)
		game.POST("/:id/finish", h.Finish)
	}

	v1.GET("/history", h.RecentGames)

	// WebSocket subscription feed
	hub := ws.NewHub(games)
	r.GET("/ws", ws.HandleWS(hub))

	return hub
}
