package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/VideoTube/internal/config"
	"github.com/GoArmGo/VideoTube/internal/core/ports"
	"github.com/GoArmGo/VideoTube/internal/database/client"
	"github.com/GoArmGo/VideoTube/internal/handler"
	"github.com/GoArmGo/VideoTube/internal/usecase"
)

// Режимы запуска приложения.
const (
	ModeServer = "server"
	ModeWorker = "worker"
)

type App struct {
	Config    *config.Config
	logger    *slog.Logger
	db        *client.Client
	handler   *handler.VideoTubeHandler
	recorder  *usecase.DirectViewRecorder
	publisher ports.ViewEventPublisher
	consumer  ports.ViewEventConsumer
}

// NewApp собирает приложение. db, publisher и consumer могут быть nil,
// если соответствующая инфраструктура не настроена.
func NewApp(
	cfg *config.Config,
	logger *slog.Logger,
	db *client.Client,
	h *handler.VideoTubeHandler,
	recorder *usecase.DirectViewRecorder,
	publisher ports.ViewEventPublisher,
	consumer ports.ViewEventConsumer,
) *App {
	return &App{
		Config:    cfg,
		logger:    logger,
		db:        db,
		handler:   h,
		recorder:  recorder,
		publisher: publisher,
		consumer:  consumer,
	}
}

// LoggerIns возвращает основной логгер приложения.
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run запускает приложение в выбранном режиме и блокируется до SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context, mode string) error {
	// канал для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = runServer(ctx, a.Config, a.handler, a.logger)
	case ModeWorker:
		err = runWorker(ctx, a.consumer, a.recorder, a.logger)
	default:
		err = fmt.Errorf("unknown mode %q (use %q or %q)", mode, ModeServer, ModeWorker)
	}

	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown failed", "error", closeErr)
	}
	return err
}

// Shutdown закрывает все ресурсы приложения
func (a *App) Shutdown() error {
	var errs []error
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	// publisher и consumer обычно один и тот же клиент RabbitMQ
	closed := map[any]bool{}
	for _, c := range []any{a.publisher, a.consumer} {
		closer, ok := c.(interface{ Close() error })
		if !ok || closed[c] {
			continue
		}
		closed[c] = true
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
