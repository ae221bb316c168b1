package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	_ "modernc.org/sqlite"

	"github.com/xela07ax/storefront-console/internal/audit"
	"github.com/xela07ax/storefront-console/internal/domain"
	"github.com/xela07ax/storefront-console/internal/infra"
	"github.com/xela07ax/storefront-console/internal/query"
	"github.com/xela07ax/storefront-console/internal/repository/sqlstore"
)

var (
	ctx    = context.Background()
	super  = domain.ActorContext{ID: 1, DisplayName: "root", Role: domain.RoleSuperAdmin}
	admin  = domain.ActorContext{ID: 2, DisplayName: "olga", Role: domain.RoleAdmin}
	editor = domain.ActorContext{ID: 3, DisplayName: "ivan", Role: domain.RoleEditor}
	buyer  = domain.ActorContext{ID: 10, DisplayName: "anna", Role: domain.RoleUser}
	buyer2 = domain.ActorContext{ID: 11, DisplayName: "petr", Role: domain.RoleUser}
)

func newStore(t *testing.T) (*sqlstore.Store, *observer.ObservedLogs) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlstore.Bootstrap(ctx, db, query.SQLite))

	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	metrics := infra.NewMetrics(nil)

	store := sqlstore.New(db, query.SQLite, logger, metrics)
	store.SetAuditor(audit.NewNotifier(store, infra.AuditConfig{BreakerFailures: 100}, nil, logger, metrics))
	return store, logs
}

func count(t *testing.T, store *sqlstore.Store, table string, f query.Filter) int64 {
	t.Helper()
	n, err := store.Count(ctx, table, f)
	require.NoError(t, err)
	return n
}
