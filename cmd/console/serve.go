package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xela07ax/storefront-console/internal/actor"
	"github.com/xela07ax/storefront-console/internal/audit"
	"github.com/xela07ax/storefront-console/internal/console/handler"
	"github.com/xela07ax/storefront-console/internal/console/server"
	"github.com/xela07ax/storefront-console/internal/console/service"
	"github.com/xela07ax/storefront-console/internal/feed"
	"github.com/xela07ax/storefront-console/internal/infra"
	"github.com/xela07ax/storefront-console/internal/infra/auth"
	"github.com/xela07ax/storefront-console/internal/repository/sqlstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the console HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Контекст жизненного цикла: SIGINT/SIGTERM останавливают сервер и слушателей
	appCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// 2. Ключи RS256
	pub, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
	if err != nil {
		return fmt.Errorf("auth public key: %w", err)
	}
	priv, err := auth.ParseRSAPrivateKey(cfg.Auth.PrivateKey)
	if err != nil {
		return fmt.Errorf("auth private key: %w", err)
	}

	// 3. Хранилище
	db, dialect, err := infra.OpenDatabase(appCtx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := sqlstore.Bootstrap(appCtx, db, dialect); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewDBStatsCollector(db, string(dialect)))
	metrics := infra.NewMetrics(reg)

	store := sqlstore.New(db, dialect, logger, metrics, sqlstore.WithAuditTable(cfg.Audit.Table))

	// 4. Журнал и живая лента. Без Redis лента работает в пределах процесса.
	hub := feed.NewHub(64)
	var publisher audit.Publisher = hub
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		publisher = audit.NewRedisPublisher(rdb)
		go feed.ListenResilient(appCtx, rdb, logger.Named("feed"), infra.RedisChanNotifications, hub.Broadcast)
	}
	if !cfg.Audit.Publish {
		publisher = nil
	}
	store.SetAuditor(audit.NewNotifier(store, cfg.Audit, publisher, logger, metrics))

	// 5. Сервисы и обработчики
	signer := auth.NewSigner(priv, cfg.Auth.TokenTTL)
	resolver := actor.NewResolver(auth.NewBaseValidator(pub), cfg.Auth.CookieName, logger)
	handlers := server.Handlers{
		Auth:          handler.NewAuthHandler(service.NewAuthService(store, signer, cfg.Auth.BcryptCost, logger), logger),
		Categories:    handler.NewCategoryHandler(service.NewCategoryService(store), logger),
		Products:      handler.NewProductHandler(service.NewProductService(store), logger),
		Orders:        handler.NewOrderHandler(service.NewOrderService(store), logger),
		Contacts:      handler.NewContactHandler(service.NewContactService(store), logger),
		Notifications: handler.NewNotificationHandler(service.NewNotificationService(store, cfg.Audit.Table), hub, logger),
	}
	api := server.NewConsoleServer(cfg, logger, resolver, metrics, reg, handlers)

	// 6. HTTP Server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout, // 0: без таймаута, SSE держит соединение долго
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("console API started", zap.String("addr", srv.Addr), zap.String("dialect", string(dialect)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 7. Graceful Shutdown
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-appCtx.Done():
	}
	logger.Info("console API stopping...")

	// Даем 5 секунд на завершение запросов
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("console API exited properly")
	return nil
}
