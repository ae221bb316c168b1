package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
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
	admin = domain.ActorContext{ID: 7, DisplayName: "olga", Role: domain.RoleAdmin}
	super = domain.ActorContext{ID: 1, DisplayName: "root", Role: domain.RoleSuperAdmin}
)

type fixture struct {
	db    *sql.DB
	store *sqlstore.Store
	logs  *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// :memory: живет в рамках одного соединения
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlstore.Bootstrap(context.Background(), db, query.SQLite))

	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	metrics := infra.NewMetrics(nil)

	store := sqlstore.New(db, query.SQLite, logger, metrics)
	store.SetAuditor(audit.NewNotifier(store, infra.AuditConfig{BreakerFailures: 100}, nil, logger, metrics))
	return &fixture{db: db, store: store, logs: logs}
}

func (f *fixture) count(t *testing.T, table string, filter query.Filter) int64 {
	t.Helper()
	n, err := f.store.Count(context.Background(), table, filter)
	require.NoError(t, err)
	return n
}

func TestCreateAndCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.store.Create(ctx, admin, domain.TableCategories, domain.Record{"name": "Dairy", "slug": "dairy"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)
	assert.Equal(t, int64(1), res.LastInsertID)

	assert.Equal(t, int64(1), f.count(t, domain.TableCategories, query.FromMap(map[string]any{"slug": "dairy"})))
	assert.Equal(t, int64(0), f.count(t, domain.TableCategories, query.Where(query.Eq("slug", "ice"))))
}

func TestCountEmptyFilterIsTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.store.Create(ctx, admin, domain.TableCategories, domain.Record{"name": "c", "slug": fmt.Sprintf("c-%d", i)})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), f.count(t, domain.TableCategories, nil))
}

func TestReadDecodesStructuredColumns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	img := "data:image/png;base64,iVBORw0KGgo="
	_, err := f.store.Create(ctx, admin, domain.TableProducts, domain.Record{
		"name":            "Ice",
		"slug":            "ice",
		"price":           3.5,
		"detailed_images": []string{img},
		"comments":        []map[string]any{{"userId": 3, "comment": "cold"}},
	})
	require.NoError(t, err)

	rows, err := f.store.Read(ctx, domain.TableProducts, query.Where(query.Eq("slug", "ice")))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "Ice", row["name"])
	assert.Equal(t, []any{img}, row["detailed_images"])
	assert.Equal(t, []any{map[string]any{"userId": float64(3), "comment": "cold"}}, row["comments"])
	price, ok := domain.Float64(row["price"])
	require.True(t, ok)
	assert.InDelta(t, 3.5, price, 0.001)
}

func TestReadWithPriceRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, p := range []float64{2, 6, 9, 12} {
		_, err := f.store.Create(ctx, admin, domain.TableProducts, domain.Record{
			"name": "p", "slug": fmt.Sprintf("p-%d", i), "price": p, "category": "x",
		})
		require.NoError(t, err)
	}

	rows, err := f.store.Read(ctx, domain.TableProducts, query.FromMap(map[string]any{"minPrice": 5, "maxPrice": 10, "category": "x"}))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestGuardsDoNotTouchBackend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// любое обращение к закрытой базе дало бы StorageError
	require.NoError(t, f.db.Close())

	_, err := f.store.Update(ctx, admin, domain.TableOrders, domain.Record{}, query.Where(query.Eq("id", 1)))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.store.Update(ctx, admin, domain.TableOrders, domain.Record{"status": "paid"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.store.Delete(ctx, admin, domain.TableOrders, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.store.Create(ctx, admin, domain.TableOrders, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.store.GetByIDs(ctx, domain.TableOrders, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.store.Read(ctx, "orders; DROP TABLE users", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	assert.False(t, errors.Is(err, domain.ErrStorage))
}

func TestAuditSideEffect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Create(ctx, admin, domain.TableCategories, domain.Record{"name": "Ice", "slug": "ice"})
	require.NoError(t, err)

	rows, err := f.store.Read(ctx, domain.TableNotifications, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rec := domain.AuditRecordFromRow(rows[0])
	assert.Equal(t, domain.AuditAdded, rec.Kind)
	assert.Equal(t, domain.TableCategories, rec.SourceTable)
	assert.Equal(t, `New "categories" added`, rec.Title)
	require.NotNil(t, rec.ActorID)
	assert.Equal(t, admin.ID, *rec.ActorID)
	require.NotNil(t, rec.ActorName)
	assert.Equal(t, "olga", *rec.ActorName)
	assert.JSONEq(t, `{"name":"Ice","slug":"ice"}`, rec.RawDetails)

	// запись в сам журнал не порождает новую запись журнала
	_, err = f.store.Create(ctx, admin, domain.TableNotifications, domain.Record{"title": "manual", "type": "added", "tableName": "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.count(t, domain.TableNotifications, nil))
}

func TestAuditAnonymousActorIsNotAttributed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Create(ctx, domain.Anonymous(), domain.TableContacts, domain.Record{"email": "a@b.c", "messages": []any{}})
	require.NoError(t, err)

	rows, err := f.store.Read(ctx, domain.TableNotifications, query.Where(query.Eq(domain.ColSourceTable, domain.TableContacts)))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0][domain.ColActorID])
	assert.Nil(t, rows[0][domain.ColActorName])
}

func TestUpdateAndDeleteAreAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.store.Create(ctx, admin, domain.TableOrders, domain.Record{"status": "new", "customerId": 3})
	require.NoError(t, err)
	byID := query.Where(query.Eq("id", created.LastInsertID))

	res, err := f.store.Update(ctx, admin, domain.TableOrders, domain.Record{"status": "paid"}, byID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	rows, err := f.store.Read(ctx, domain.TableOrders, byID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "paid", rows[0]["status"])

	res, err = f.store.Delete(ctx, admin, domain.TableOrders, byID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	kinds := map[string]int64{}
	for _, kind := range []domain.AuditKind{domain.AuditAdded, domain.AuditUpdated, domain.AuditDeleted} {
		kinds[string(kind)] = f.count(t, domain.TableNotifications, query.Where(query.Eq(domain.ColKind, string(kind))))
	}
	assert.Equal(t, map[string]int64{"added": 1, "updated": 1, "deleted": 1}, kinds)
}

func TestMissingRowIsStillAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	byID := query.Where(query.Eq("id", 42))

	res, err := f.store.Update(ctx, admin, domain.TableOrders, domain.Record{"status": "paid"}, byID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.RowsAffected)

	res, err = f.store.Delete(ctx, admin, domain.TableOrders, byID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.RowsAffected)

	assert.Equal(t, int64(1), f.count(t, domain.TableNotifications, query.Where(query.Eq(domain.ColKind, string(domain.AuditUpdated)))))
	assert.Equal(t, int64(1), f.count(t, domain.TableNotifications, query.Where(query.Eq(domain.ColKind, string(domain.AuditDeleted)))))

	rows, err := f.store.Read(ctx, domain.TableNotifications, query.Where(query.Eq(domain.ColKind, string(domain.AuditDeleted))))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.JSONEq(t, `{"id":42}`, domain.AuditRecordFromRow(rows[0]).RawDetails)
}

func TestAuditSnapshotKeepsImagePayload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	img := "data:image/png;base64,iVBORw0KGgo="

	_, err := f.store.Create(ctx, admin, domain.TableProducts, domain.Record{"name": "Ice", "slug": "ice", "image_url": img})
	require.NoError(t, err)

	rows, err := f.store.Read(ctx, domain.TableNotifications, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.JSONEq(t, `{"name":"Ice","slug":"ice","image_url":"`+img+`"}`, domain.AuditRecordFromRow(rows[0]).RawDetails)

	// сама колонка картинки по-прежнему отдается списком
	products, err := f.store.Read(ctx, domain.TableProducts, nil)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, []any{img}, products[0]["image_url"])
}

func TestAuditFailureDoesNotPropagate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.db.ExecContext(ctx, "DROP TABLE notifications")
	require.NoError(t, err)

	res, err := f.store.Create(ctx, admin, domain.TableCategories, domain.Record{"name": "Ice", "slug": "ice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	res, err = f.store.Update(ctx, admin, domain.TableCategories, domain.Record{"name": "Ice cream"}, query.Where(query.Eq("slug", "ice")))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	res, err = f.store.Delete(ctx, admin, domain.TableCategories, query.Where(query.Eq("slug", "ice")))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	assert.Equal(t, 3, f.logs.FilterMessage("audit write failed").Len())
}

func TestDeleteAllUnsafe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.DeleteAllUnsafe(ctx, admin, domain.TableOrders)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.store.DeleteAllUnsafe(ctx, domain.Anonymous(), domain.TableNotifications)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = f.store.DeleteAllUnsafe(ctx, super, domain.TableOrders)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	for i := 0; i < 2; i++ {
		_, err := f.store.Create(ctx, admin, domain.TableCategories, domain.Record{"name": "c", "slug": fmt.Sprintf("c-%d", i)})
		require.NoError(t, err)
	}
	res, err := f.store.DeleteAllUnsafe(ctx, super, domain.TableNotifications)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.RowsAffected)
	assert.Equal(t, int64(0), f.count(t, domain.TableNotifications, nil))
}

func TestDeleteAllUnsafeAllowListOption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := sqlstore.New(f.db, query.SQLite, zap.NewNop(), nil, sqlstore.WithBulkClearTables(domain.TableOrders))

	_, err := store.Create(ctx, admin, domain.TableOrders, domain.Record{"status": "new"})
	require.NoError(t, err)

	res, err := store.DeleteAllUnsafe(ctx, super, domain.TableOrders)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	_, err = store.DeleteAllUnsafe(ctx, super, domain.TableNotifications)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestPaginateIsContiguous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		_, err := f.store.Create(ctx, admin, domain.TableCategories, domain.Record{"name": "c", "slug": fmt.Sprintf("c-%02d", i)})
		require.NoError(t, err)
	}

	ids := func(rows []domain.Record) []int64 {
		out := make([]int64, len(rows))
		for i, r := range rows {
			out[i], _ = domain.Int64(r["id"])
		}
		return out
	}

	first, err := f.store.Paginate(ctx, domain.TableCategories, nil, sqlstore.Page{Limit: 10, Offset: 0, OrderBy: "id", Direction: "ASC"})
	require.NoError(t, err)
	second, err := f.store.Paginate(ctx, domain.TableCategories, nil, sqlstore.Page{Limit: 10, Offset: 10, OrderBy: "id", Direction: "ASC"})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ids(first))
	assert.Equal(t, []int64{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, ids(second))

	desc, err := f.store.Paginate(ctx, domain.TableCategories, nil, sqlstore.Page{Limit: 3, Direction: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []int64{25, 24, 23}, ids(desc))

	_, err = f.store.Paginate(ctx, domain.TableCategories, nil, sqlstore.Page{Limit: 3, Direction: "UP"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestGetByIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := f.store.Create(ctx, admin, domain.TableCategories, domain.Record{"name": "c", "slug": fmt.Sprintf("c-%d", i)})
		require.NoError(t, err)
	}

	rows, err := f.store.GetByIDs(ctx, domain.TableCategories, []int64{2, 4, 99})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestBackendErrorsAreStorageErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.Read(context.Background(), "missing_table", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)

	var se *domain.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "read", se.Op)
	assert.Equal(t, "missing_table", se.Table)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.store.Count(ctx, domain.TableCategories, nil)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, sqlstore.Bootstrap(context.Background(), f.db, query.SQLite))
	assert.Len(t, sqlstore.TableNames(), 6)
}
