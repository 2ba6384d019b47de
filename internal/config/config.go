package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Драйверы хранилища сущностей.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`

	StoreDriver       string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL       string `env:"DATABASE_URL"`
	DBMaxOpenConns    int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int    `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MigrationsEnabled bool   `env:"MIGRATIONS_ENABLED" envDefault:"true"`

	// ViewerHeader — заголовок, в котором шлюз аутентификации передаёт id зрителя.
	ViewerHeader      string        `env:"VIEWER_HEADER" envDefault:"X-User-ID"`
	SideEffectTimeout time.Duration `env:"SIDE_EFFECT_TIMEOUT" envDefault:"5s"`

	// Настройки для MinIO; пустой endpoint отключает подпись ссылок на медиа
	MinioEndpoint        string        `env:"MINIO_ENDPOINT"`
	MinioAccessKeyID     string        `env:"MINIO_ACCESS_KEY_ID"`
	MinioSecretAccessKey string        `env:"MINIO_SECRET_ACCESS_KEY"`
	MinioUseSSL          bool          `env:"MINIO_USE_SSL"`
	MinioBucketName      string        `env:"MINIO_BUCKET_NAME" envDefault:"videotube"`
	MinioRegion          string        `env:"MINIO_REGION" envDefault:"us-east-1"`
	MediaURLTTL          time.Duration `env:"MEDIA_URL_TTL" envDefault:"15m"`

	// RabbitMQ; пустой URL — побочные записи просмотра выполняются синхронно в сервере
	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"video_view_events"`
	}
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет согласованность параметров.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.ViewerHeader == "" {
		return fmt.Errorf("VIEWER_HEADER must not be empty")
	}
	if c.SideEffectTimeout <= 0 {
		return fmt.Errorf("SIDE_EFFECT_TIMEOUT must be positive")
	}
	if c.MinioEndpoint != "" && (c.MinioAccessKeyID == "" || c.MinioSecretAccessKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY_ID and MINIO_SECRET_ACCESS_KEY are required when MINIO_ENDPOINT is set")
	}
	return nil
}
