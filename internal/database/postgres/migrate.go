package postgres

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ApplyMigrations применяет все доступные миграции к бд.
// Миграции встроены в бинарник, поэтому не зависят от рабочего каталога.
func ApplyMigrations(databaseURL string, logger *slog.Logger) error {
	start := time.Now()

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("не удалось открыть встроенные миграции: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("не удалось создать экземпляр мигратора: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("failed to close migrator", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("migrations are up to date", "duration_ms", time.Since(start).Milliseconds())
		return nil
	case err != nil:
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("migrations applied",
		"version", version,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
