package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	statusrouter "github.com/voco-chat/bridge/internal/adapters/http"
	"github.com/voco-chat/bridge/internal/config"
	"github.com/voco-chat/bridge/internal/domain"
	"github.com/voco-chat/bridge/internal/router"
	"github.com/voco-chat/bridge/internal/service"
	"github.com/voco-chat/bridge/internal/session"
	"github.com/voco-chat/bridge/internal/storage/memory"
	"github.com/voco-chat/bridge/internal/transport"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	userID := domain.UserID(cfg.UserID)
	if userID == "" {
		userID = domain.UserID(uuid.NewString())
	}
	sessions := session.NewRegistry()
	conn := sessions.Bind(userID, domain.SessionID(uuid.NewString()))
	token, err := session.MintToken(cfg.Secret, conn.UserID, conn.SessionID, 24*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to mint session token")
	}

	reg := prometheus.NewRegistry()
	bus := router.New()
	bridge := transport.New(transport.Options{
		URL:               cfg.GatewayURL,
		Dialer:            transport.WSDialer{Token: token},
		RequestTimeout:    cfg.RequestTimeout,
		RequestRetries:    cfg.RequestRetries,
		HeartbeatInterval: cfg.HeartbeatInterval,
		HeartbeatTimeout:  cfg.HeartbeatTimeout,
		ReconnectDelay:    cfg.ReconnectDelay,
		ReconnectDelayMax: cfg.ReconnectDelayMax,
		Metrics:           transport.NewMetrics(reg),
	}, bus)

	replica := memory.NewStore()
	dispatcher := &service.Dispatcher{
		Deps:   service.Deps{DB: replica, Now: time.Now},
		Router: bus,
		Sender: bridge,
	}
	bridge.Start(ctx)
	defer bridge.Stop()

	r := statusrouter.SetupRouter(cfg, bridge, sessions, dispatcher, userID, reg)
	addr := fmt.Sprintf(":%d", cfg.StatusPort)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Str("gateway", cfg.GatewayURL).Msg("bridge started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("status server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	sessions.Unbind(conn.SocketID)
	log.Info().Msg("Bridge exited gracefully")
}
