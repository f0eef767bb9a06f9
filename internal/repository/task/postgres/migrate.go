package postgres

import (
	"errors"
	"fmt"
	"strings"

	"weddingTasks/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate накатывает миграции из internal/migrations через golang-migrate
func Migrate(connString, migrationsPath string) error {
	logger.Info("Repository: Применение миграций")

	m, err := newMigrator(connString, migrationsPath)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: Ошибка применения миграций", err)
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Repository: Миграции применены")
	return nil
}

func MigrateDown(connString, migrationsPath string) error {
	logger.Info("Repository: Откат миграций")

	m, err := newMigrator(connString, migrationsPath)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: Ошибка отката миграций", err)
		return fmt.Errorf("откат миграций: %w", err)
	}

	logger.Info("Repository: Миграции откачены")
	return nil
}

func newMigrator(connString, migrationsPath string) (*migrate.Migrate, error) {
	// драйвер golang-migrate для pgx/v5 регистрируется под схемой pgx5
	dbURL := connString
	if strings.HasPrefix(dbURL, "postgres://") {
		dbURL = "pgx5://" + strings.TrimPrefix(dbURL, "postgres://")
	}

	m, err := migrate.New("file://"+migrationsPath, dbURL)
	if err != nil {
		logger.Error("Repository: Ошибка инициализации мигратора", err)
		return nil, fmt.Errorf("инициализация мигратора: %w", err)
	}
	return m, nil
}
