package ws

import (
	"net/http"
	"os"

	"cooptrick/internal/logger"
	"cooptrick/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades the connection and attaches the client to its game's
// room: `GET /ws?game=<id>&token=<jwt>`.
func HandleWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}
		user, err := service.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		gameID := c.Query("game")
		if gameID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "game required"})
			return
		}

		room, err := hub.Room(gameID)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
			return
		}

		allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		client := NewClient(user, conn, room)
		// the room can retire between Hub.Room and the handoff; refetch
		// until a live one seats the client
		for !client.room.register(client) {
			next, err := hub.Room(gameID)
			if err != nil {
				_ = conn.Close()
				return
			}
			client.room = next
		}
		go client.Run()
	}
}
