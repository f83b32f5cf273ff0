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

	router "github.com/web-changlu/liveroom/internal/adapters/http"
	"github.com/web-changlu/liveroom/internal/adapters/rtc"
	wsignal "github.com/web-changlu/liveroom/internal/adapters/signal"
	"github.com/web-changlu/liveroom/internal/app"
	"github.com/web-changlu/liveroom/internal/config"
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
		log.Error().Err(err).Msg("failed to load config")
	}

	// One owning context object per process: stores are constructed here and
	// passed explicitly, never reached through globals.
	identity := app.NewIdentityStore()
	room := app.NewRoomStore()
	session := app.NewSessionCoordinator(rtc.NewFactory(), cfg.JoinTimeout)
	hub := wsignal.NewHub()
	app.NewEventNormalizer(session, hub)

	stores := router.Stores{Identity: identity, Room: room, Session: session}
	r := router.SetupRouter(ctx, cfg, stores, hub)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("liveroom server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	// Tear the session down before the HTTP listener so the transport handle
	// never outlives the process surface.
	session.Destroy()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
