package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cooptrick/internal/config"
	"cooptrick/internal/db"
	"cooptrick/internal/docstore"
	"cooptrick/internal/engine"
	httpServer "cooptrick/internal/http"
	"cooptrick/internal/logger"
	"cooptrick/internal/repository"
	"cooptrick/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "0.3.0"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	ctx := context.Background()

	store, err := docstore.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open document store", "backend", cfg.StoreBackend, "error", err)
	}
	defer store.Close()
	logger.Info("document store ready", "backend", cfg.StoreBackend)

	eng := engine.New(rand.New(rand.NewSource(time.Now().UnixNano())), cfg.MissionCount)
	games := service.NewGameService(store, eng)

	// archive of finished games, only with a database configured
	var history *repository.HistoryRepository
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect archive database", "error", err)
		}
		defer pool.Close()

		history = repository.NewHistoryRepository(pool)
		if err := history.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare archive schema", "error", err)
		}
		games.WithHistory(history)
	}

	r := gin.Default()

	// CORS for browser clients on another origin
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	hub := httpServer.RegisterRoutes(r, games, store, history, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	hub.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
