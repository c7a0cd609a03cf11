// store_smoke drives a full game setup through whichever store backend the
// env selects: four users join, the game starts, and the resulting document
// is printed. Useful to verify a redis/postgres/nats deployment end to end.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"cooptrick/internal/config"
	"cooptrick/internal/docstore"
	"cooptrick/internal/domain"
	"cooptrick/internal/engine"
	"cooptrick/internal/logger"
	"cooptrick/internal/service"
)

func main() {
	// the smoke tool has no auth surface, so a secret is not required
	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET", "smoke")
	}
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := docstore.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("open store (%s): %v", cfg.StoreBackend, err)
	}
	defer store.Close()

	eng := engine.New(rand.New(rand.NewSource(time.Now().UnixNano())), cfg.MissionCount)
	games := service.NewGameService(store, eng)

	gameID := fmt.Sprintf("smoke-%d", time.Now().Unix())
	users := []domain.User{
		{ID: "smoke-a", Name: "Ann", Icon: "A"},
		{ID: "smoke-b", Name: "Ben", Icon: "B"},
		{ID: "smoke-c", Name: "Cid", Icon: "C"},
		{ID: "smoke-d", Name: "Dot", Icon: "D"},
	}

	updates := make(chan domain.Game, 16)
	unsub, err := games.Subscribe(ctx, gameID, func(g domain.Game) { updates <- g })
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	defer unsub()

	for _, u := range users {
		if err := games.Join(ctx, gameID, u); err != nil {
			log.Fatalf("join %s: %v", u.ID, err)
		}
	}

	lobby, exists, err := games.Get(ctx, gameID)
	if err != nil || !exists {
		log.Fatalf("read lobby: exists=%v err=%v", exists, err)
	}
	if err := games.Start(ctx, gameID, lobby.Nonce()); err != nil {
		log.Fatalf("start: %v", err)
	}

	// wait for the playing document to arrive over the subscription, the
	// same way a browser client learns about it
	var started domain.Game
	for {
		select {
		case g := <-updates:
			if g.Playing != nil {
				started = g
			}
		case <-ctx.Done():
			log.Fatalf("timed out waiting for the started game")
		}
		if started.Playing != nil {
			break
		}
	}

	fmt.Printf("game %s started, leader %s, %d missions\n",
		gameID, started.Playing.Players[0].User.Name, len(started.Playing.Missions))
	for _, p := range started.Playing.Players {
		hand := append([]domain.DealtCard{}, p.Dealt...)
		domain.SortDealt(hand)
		cards := make([]string, 0, len(hand))
		for _, d := range hand {
			cards = append(cards, fmt.Sprintf("%s%d", d.Card.Suit, d.Card.Rank))
		}
		fmt.Printf("  %-4s %v\n", p.User.Name, cards)
	}

	doc, err := json.MarshalIndent(started, "", "  ")
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	fmt.Println(string(doc))
}
