package di

import (
	"context"
	"log/slog"

	"github.com/GoArmGo/VideoTube/internal/adapter/storage/minio"
	"github.com/GoArmGo/VideoTube/internal/app"
	"github.com/GoArmGo/VideoTube/internal/config"
	"github.com/GoArmGo/VideoTube/internal/core/ports"
	"github.com/GoArmGo/VideoTube/internal/database/client"
	"github.com/GoArmGo/VideoTube/internal/database/postgres"
	"github.com/GoArmGo/VideoTube/internal/database/storage"
	"github.com/GoArmGo/VideoTube/internal/handler"
	"github.com/GoArmGo/VideoTube/internal/logger"
	"github.com/GoArmGo/VideoTube/internal/rabbitmq"
	"github.com/GoArmGo/VideoTube/internal/usecase"
)

// stores — набор портов хранилища выбранного драйвера.
type stores struct {
	entities ports.EntityStore
	edges    ports.EdgeStore
	activity ports.ActivityStore
	editor   ports.PlaylistEditor
	db       *client.Client
}

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp(ctx context.Context) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	// 2. Хранилище сущностей
	st, err := buildStores(ctx, cfg, slogger)
	if err != nil {
		return nil, err
	}

	// 3. Подпись ссылок на медиа (необязательно)
	var refs ports.RefResolver
	if cfg.MinioEndpoint != "" {
		mc, err := minio.NewMinioClient(ctx, cfg, slogger)
		if err != nil {
			return nil, err
		}
		refs = mc
	}

	// 4. RabbitMQ (необязательно): без него просмотры пишутся синхронно
	stats := &usecase.SideEffectStats{}
	direct := usecase.NewDirectViewRecorder(st.activity, cfg.SideEffectTimeout, stats, slogger)

	var (
		recorder  usecase.ViewRecorder = direct
		publisher ports.ViewEventPublisher
		consumer  ports.ViewEventConsumer
	)
	if cfg.RabbitMQ.RabbitMQURL != "" {
		rabbitMQClient, err := rabbitmq.NewClient(cfg, slogger)
		if err != nil {
			return nil, err
		}
		publisher, consumer = rabbitMQClient, rabbitMQClient
		recorder = usecase.NewQueueViewRecorder(rabbitMQClient, cfg.SideEffectTimeout, stats, slogger)
	}

	// 5. Бизнес-логика и HTTP
	h := handler.NewVideoTubeHandler(
		usecase.NewViewComposer(st.entities, recorder, refs, slogger),
		usecase.NewRelationshipToggler(st.entities, st.edges, slogger),
		usecase.NewPlaylistManager(st.entities, st.editor, slogger),
		stats,
		slogger,
	)

	application := app.NewApp(cfg, slogger, st.db, h, direct, publisher, consumer)

	slogger.Info("all dependencies initialized", "store_driver", cfg.StoreDriver)
	return application, nil
}

func buildStores(ctx context.Context, cfg *config.Config, slogger *slog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		ms := storage.NewMemoryStore(slogger)
		slogger.Warn("using in-memory store, data is not persisted")
		return &stores{entities: ms, edges: ms, activity: ms, editor: ms}, nil
	}

	if cfg.MigrationsEnabled {
		if err := postgres.ApplyMigrations(cfg.DatabaseURL, slogger); err != nil {
			return nil, err
		}
	}

	dbClient, err := client.NewClient(ctx, cfg, slogger)
	if err != nil {
		return nil, err
	}

	gormDB, err := postgres.NewGorm(dbClient.DB.DB)
	if err != nil {
		_ = dbClient.Close()
		return nil, err
	}

	ps := storage.NewPostgresStore(dbClient.DB, slogger)
	return &stores{
		entities: ps,
		edges:    ps,
		activity: ps,
		editor:   postgres.NewGormPlaylistEditor(gormDB, slogger),
		db:       dbClient,
	}, nil
}
