// acid-rain game server: real-time multiplayer typing battles over a
// line protocol, served on raw TCP and over a websocket bridge.
package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/HONGMOEJI/acid-rain/internal/config"
	"github.com/HONGMOEJI/acid-rain/internal/game"
	"github.com/HONGMOEJI/acid-rain/internal/leaderboard"
	"github.com/HONGMOEJI/acid-rain/internal/server"
	"github.com/HONGMOEJI/acid-rain/internal/word"
)

func main() {
	// .env is a dev convenience; absence is fine.
	godotenv.Load()

	cfg := config.FromEnv()

	var log zerolog.Logger
	if cfg.Debug {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger().Level(zerolog.DebugLevel)
	} else {
		log = zerolog.New(os.Stdout).With().Timestamp().Logger().Level(zerolog.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	words, err := word.NewSource(
		filepath.Join(cfg.DataDir, "words"),
		rand.New(rand.NewSource(time.Now().UnixNano())),
		log,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("word source init failed")
	}

	boards, err := leaderboard.NewStore(filepath.Join(cfg.DataDir, "leaderboard"), log)
	if err != nil {
		log.Fatal().Err(err).Msg("leaderboard store init failed")
	}

	sched := game.NewScheduler(log)
	go sched.Run()
	defer sched.Close()

	hub := server.NewHub(log)
	registry := game.NewRegistry(hub, words, boards, sched, log)

	gateway := server.NewGateway(cfg.AllowedOrigins, cfg.WriteTimeout, hub, registry, boards, log)
	httpSrv := &http.Server{Addr: cfg.GatewayAddr, Handler: gateway}
	go func() {
		log.Info().Str("addr", cfg.GatewayAddr).Msg("gateway listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("gateway stopped")
		}
	}()

	listener := server.NewListener(
		cfg.Addr, cfg.ReadTimeout, cfg.WriteTimeout,
		hub, registry, boards, log,
	)
	go func() {
		// Failure to bind is the one fatal condition.
		if err := listener.Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("listener failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpSrv.Shutdown(shutdownCtx)
}
