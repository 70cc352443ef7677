package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"flagstat/internal/api"
	"flagstat/internal/cache"
	"flagstat/internal/config"
	"flagstat/internal/session"
	"flagstat/internal/store"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[Config] no .env file found, using environment variables only")
	}

	appConfig := config.Load()

	// Postgres holds season aggregates, game history, and team rosters.
	// Without it the engine cannot reconcile at game end, so this is fatal.
	pg, err := store.NewClient(appConfig.Store.PostgresDSN)
	if err != nil {
		log.Fatalf("[Store] postgres connection failed: %v", err)
	}
	defer pg.Close()
	log.Println("[Store] postgres connected")

	// Redis scoreboard cache is optional. When disabled, overlays fall
	// back to polling the HTTP API or subscribing over WebSocket.
	var scoreboard *cache.ScoreboardWriter
	if appConfig.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appConfig.Redis.Addr,
			Password: appConfig.Redis.Password,
			DB:       appConfig.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Printf("[Cache] redis unavailable, scoreboard cache disabled: %v", err)
		} else {
			scoreboard = cache.NewScoreboardWriter(rdb)
			log.Printf("[Cache] redis scoreboard cache on %s", appConfig.Redis.Addr)
		}
		cancel()
	}

	manager := session.NewManager(pg, pg, session.Config{
		PeriodSeconds:   appConfig.Game.PeriodSeconds,
		TimeoutsPerSide: appConfig.Game.TimeoutsPerSide,
		UpsertTimeout:   appConfig.Game.UpsertTimeout,
	})
	defer manager.Stop()

	api.SetAllowedOrigins(appConfig.Server.CORSOrigins)

	server := api.NewServer(api.ServerConfig{
		Manager:     manager,
		Rosters:     pg,
		CORSOrigins: appConfig.Server.CORSOrigins,
	})
	defer server.Stop()

	// Every state change fans out to WebSocket subscribers and, when
	// available, the Redis scoreboard keys.
	hub := server.Hub()
	manager.SetOnChange(func(snap session.Snapshot) {
		hub.BroadcastSnapshot(snap)

		if scoreboard != nil {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := scoreboard.WriteScoreboard(ctx, snap); err != nil {
					log.Printf("[Cache] scoreboard write for session %s failed: %v", snap.ID, err)
					return
				}
				if snap.State == session.StateRunning {
					if err := scoreboard.WriteTeamLiveSession(ctx, snap.TeamID, snap.ID); err != nil {
						log.Printf("[Cache] live-session pointer for team %s failed: %v", snap.TeamID, err)
					}
				}
			}()
		}
	})

	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("[Debug] debug server disabled: %v", err)
		}
	}

	addr := ":" + strconv.Itoa(appConfig.Server.Port)
	go func() {
		if err := server.Start(addr); err != nil {
			log.Fatalf("[API] server failed: %v", err)
		}
	}()

	log.Printf("[API] live stats engine ready on http://localhost%s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[API] shutting down")
}
