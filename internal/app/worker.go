package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/VideoTube/internal/core/ports"
	"github.com/GoArmGo/VideoTube/internal/usecase"
)

// runWorker потребляет события просмотра из RabbitMQ и применяет их к хранилищу.
func runWorker(ctx context.Context, consumer ports.ViewEventConsumer, recorder *usecase.DirectViewRecorder, logger *slog.Logger) error {
	if consumer == nil {
		return errors.New("worker mode requires RABBITMQ_URL")
	}

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := consumer.StartConsumingViewEvents(workerCtx, recorder.HandleViewEvent); err != nil {
		return fmt.Errorf("failed to start view event consumer: %w", err)
	}
	logger.Info("worker started, waiting for view events")

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping worker")
	return nil
}
