package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/mediochat/mediochat/internal/adapters/http"
	"github.com/mediochat/mediochat/internal/adapters/identity"
	"github.com/mediochat/mediochat/internal/adapters/mail"
	"github.com/mediochat/mediochat/internal/adapters/memstore"
	"github.com/mediochat/mediochat/internal/adapters/redisstore"
	"github.com/mediochat/mediochat/internal/app"
	"github.com/mediochat/mediochat/internal/config"
	"github.com/mediochat/mediochat/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var rooms core.RoomStore
	var users core.UserStore
	switch cfg.Store {
	case "redis":
		rs := redisstore.New(cfg.RedisAddr)
		if err := rs.Ping(ctx); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable")
		}
		rooms, users = rs, rs
	default:
		ms := memstore.New()
		rooms, users = ms, ms
		log.Warn().Msg("using in-memory store, records are lost on restart")
	}

	var mailer core.Mailer = mail.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	}

	calls := &app.CallService{Rooms: rooms, Users: users, Mail: mailer}
	broker := app.NewBroker()
	handlers := &router.Handlers{
		Calls:    calls,
		Users:    users,
		Identity: identity.New(cfg.JWTSecret),
	}

	r := router.SetupRouter(ctx, cfg, handlers, broker)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Mediochat server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
