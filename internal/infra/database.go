package infra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	_ "github.com/go-sql-driver/mysql" // Драйвер MySQL
	_ "github.com/jackc/pgx/v5/stdlib" // Драйвер Postgres
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Встраиваемый SQLite без cgo

	"github.com/xela07ax/storefront-console/internal/query"
)

// OpenDatabase открывает пул соединений под выбранный диалект и дожидается ответа базы.
// Ретраи только здесь, на старте: операции хранилища не повторяются.
func OpenDatabase(ctx context.Context, cfg DatabaseConfig, logger *zap.Logger) (*sql.DB, query.Dialect, error) {
	dialect, err := query.ParseDialect(cfg.Driver)
	if err != nil {
		return nil, "", err
	}
	if cfg.DSN == "" {
		return nil, "", fmt.Errorf("database.dsn is empty")
	}

	db, err := sql.Open(dialect.DriverName(), cfg.DSN)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", dialect, err)
	}

	// 1. Пул
	if dialect == query.SQLite {
		// SQLite сериализует запись; один writer избавляет от SQLITE_BUSY
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetMaxIdleConns(cfg.MinConns)
	}
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// 2. Ping с бэкоффом: база в docker-compose поднимается дольше приложения
	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}
	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.DelayType(retry.BackOffDelay),
	)
	var attempt uint
	if err := r.Do(func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			logger.Warn("database not ready", zap.Uint("attempt", attempt), zap.Error(err))
			return err
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("database unreachable: %w", err)
	}

	logger.Info("database connected", zap.String("driver", string(dialect)))
	return db, dialect, nil
}
