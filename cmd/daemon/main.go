package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/reverie-player/reverie/internal/backend"
	"github.com/reverie-player/reverie/internal/config"
	"github.com/reverie-player/reverie/internal/domain"
	"github.com/reverie-player/reverie/internal/inhibit"
	"github.com/reverie-player/reverie/internal/player"
	"github.com/reverie-player/reverie/internal/session"
	"github.com/reverie-player/reverie/internal/surface"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// AppOptions wires the full daemon dependency graph. Exported so tests
// can validate the graph without starting the app.
var AppOptions = fx.Options(
	fx.Provide(
		newLogger,
		newConfig,
		newDBusClient,
		newInhibitor,
		newMpvPlayer,
		asPlayer,
		newSurface,
		newBackendManager,
		newSession,
	),
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		AppOptions,
	)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for interrupt signal
	<-ctx.Done()

	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates a new zap logger instance
func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

func newConfig(logger *zap.Logger) domain.Config {
	return config.NewAppConfig(logger)
}

func newDBusClient() (inhibit.DBusClient, error) {
	return inhibit.NewStdDBusClient()
}

func newInhibitor(logger *zap.Logger, conn inhibit.DBusClient, cfg domain.Config) domain.Inhibitor {
	return inhibit.NewSuspendInhibitor(logger, conn, cfg.AppName())
}

func newMpvPlayer(logger *zap.Logger, cfg domain.Config) *player.MpvPlayer {
	return player.NewMpvPlayer(logger, cfg.PlayerSocket())
}

func asPlayer(p *player.MpvPlayer) domain.Player {
	return p
}

func newSurface(logger *zap.Logger) domain.ControlSurface {
	return surface.NewLogSurface(logger)
}

// newBackendManager registers the catalog server client when one is
// configured; without it the session reports the backend as unavailable
func newBackendManager(logger *zap.Logger, cfg domain.Config) (*backend.Manager, error) {
	manager := backend.NewManager(logger)

	if cfg.BackendURL() == "" {
		logger.Warn("No backend URL configured, stream resolution disabled")
		return manager, nil
	}

	manager.Register("default", backend.NewHTTPClient(logger, cfg.BackendURL(), cfg.APIToken()))
	if err := manager.SetActive("default"); err != nil {
		return nil, err
	}
	return manager, nil
}

func newSession(
	logger *zap.Logger,
	p domain.Player,
	backends *backend.Manager,
	surf domain.ControlSurface,
	inh domain.Inhibitor,
) *session.PlaybackSession {
	return session.NewPlaybackSession(logger, nil, p, backends, surf, inh)
}

// registerHooks sets up application lifecycle hooks
func registerHooks(
	lc fx.Lifecycle,
	logger *zap.Logger,
	mpv *player.MpvPlayer,
	sess *session.PlaybackSession,
	conn inhibit.DBusClient,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := mpv.Start(ctx); err != nil {
				return err
			}
			logger.Info("Reverie Daemon Started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			if err := sess.Stop(ctx); err != nil {
				logger.Warn("Session shutdown incomplete", zap.Error(err))
			}
			if err := mpv.Close(ctx); err != nil {
				logger.Warn("Failed to close mpv connection", zap.Error(err))
			}
			if err := conn.Close(); err != nil {
				logger.Warn("Failed to close D-Bus connection", zap.Error(err))
			}
			return nil
		},
	})
}
