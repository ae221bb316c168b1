// Package sqlstore: универсальное хранилище записей поверх database/sql.
//
// Таблица и колонки передаются вызывающим кодом, значения всегда уходят параметрами.
// Все мутации (кроме таблицы журнала) синхронно сообщают Auditor'у о факте изменения.
// Пул соединений берется на каждый вызов, курсоры закрываются до возврата.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/storefront-console/internal/domain"
	"github.com/xela07ax/storefront-console/internal/infra"
	"github.com/xela07ax/storefront-console/internal/query"
)

// Auditor фиксирует факт мутации. Никогда не возвращает ошибку: сбой журнала
// не должен отменять уже закоммиченную основную запись.
type Auditor interface {
	Record(ctx context.Context, table string, kind domain.AuditKind, details any, actor domain.ActorContext)
	RecordBulkClear(ctx context.Context, table string, actor domain.ActorContext)
}

// Page: параметры постраничной выборки.
type Page struct {
	Limit     int
	Offset    int
	OrderBy   string // по умолчанию id
	Direction string // ASC | DESC, по умолчанию ASC
}

type Store struct {
	db      *sql.DB
	dialect query.Dialect
	logger  *zap.Logger
	metrics *infra.Metrics

	auditor    Auditor
	auditTable string
	bulkClear  map[string]bool
}

type Option func(*Store)

// WithAuditTable меняет имя таблицы журнала (мутации в ней не аудируются).
func WithAuditTable(table string) Option {
	return func(s *Store) { s.auditTable = table }
}

// WithBulkClearTables задает allow-list для DeleteAllUnsafe. По умолчанию только журнал.
func WithBulkClearTables(tables ...string) Option {
	return func(s *Store) {
		s.bulkClear = make(map[string]bool, len(tables))
		for _, t := range tables {
			s.bulkClear[t] = true
		}
	}
}

// WithAuditor подключает журнал сразу при создании.
func WithAuditor(a Auditor) Option {
	return func(s *Store) { s.auditor = a }
}

func New(db *sql.DB, dialect query.Dialect, logger *zap.Logger, metrics *infra.Metrics, opts ...Option) *Store {
	if metrics == nil {
		metrics = infra.NewMetrics(nil)
	}
	s := &Store{
		db:         db,
		dialect:    dialect,
		logger:     logger.Named("sqlstore"),
		metrics:    metrics,
		auditTable: domain.TableNotifications,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bulkClear == nil {
		s.bulkClear = map[string]bool{s.auditTable: true}
	}
	return s
}

// SetAuditor подключает журнал после создания: Notifier сам пишет через Store.
func (s *Store) SetAuditor(a Auditor) { s.auditor = a }

// AuditTable: таблица журнала, в которую пишет Auditor.
func (s *Store) AuditTable() string { return s.auditTable }

// Dialect нужен сервисам, которые собирают собственные запросы (например, bootstrap).
func (s *Store) Dialect() query.Dialect { return s.dialect }

// Create вставляет одну запись и сообщает журналу о kind=added.
func (s *Store) Create(ctx context.Context, actor domain.ActorContext, table string, data domain.Record) (res domain.Result, err error) {
	const op = "create"
	start := time.Now()
	defer func() { s.observe(op, table, start, err) }()

	stmt, args, err := query.BuildInsert(table, data)
	if err != nil {
		return domain.Result{}, err
	}

	if s.dialect.ReturningID() {
		var id int64
		if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(stmt+" RETURNING id"), args...).Scan(&id); err != nil {
			return domain.Result{}, storageErr(op, table, err)
		}
		res = domain.Result{RowsAffected: 1, LastInsertID: id}
	} else {
		r, err := s.db.ExecContext(ctx, s.dialect.Rebind(stmt), args...)
		if err != nil {
			return domain.Result{}, storageErr(op, table, err)
		}
		res = execResult(r)
	}

	s.audit(ctx, table, domain.AuditAdded, data, actor)
	return res, nil
}

// Read возвращает все записи, подходящие под фильтр. Пустой фильтр означает всю таблицу.
func (s *Store) Read(ctx context.Context, table string, filter query.Filter) (rows []domain.Record, err error) {
	const op = "read"
	start := time.Now()
	defer func() { s.observe(op, table, start, err) }()

	if err := query.ValidIdent(table); err != nil {
		return nil, err
	}
	where, args, err := query.BuildWhere(filter)
	if err != nil {
		return nil, err
	}
	return s.selectRows(ctx, op, table, join("SELECT * FROM "+table, where), args)
}

// Paginate: Read с сортировкой и окном LIMIT/OFFSET.
func (s *Store) Paginate(ctx context.Context, table string, filter query.Filter, page Page) (rows []domain.Record, err error) {
	const op = "paginate"
	start := time.Now()
	defer func() { s.observe(op, table, start, err) }()

	if err := query.ValidIdent(table); err != nil {
		return nil, err
	}
	if page.OrderBy == "" {
		page.OrderBy = "id"
	}
	where, args, err := query.BuildWhere(filter)
	if err != nil {
		return nil, err
	}
	tail, tailArgs, err := query.BuildOrderLimit(page.OrderBy, page.Direction, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}

	stmt := join(join("SELECT * FROM "+table, where), tail)
	return s.selectRows(ctx, op, table, stmt, append(args, tailArgs...))
}

// Count: количество записей под фильтром.
func (s *Store) Count(ctx context.Context, table string, filter query.Filter) (total int64, err error) {
	const op = "count"
	start := time.Now()
	defer func() { s.observe(op, table, start, err) }()

	if err := query.ValidIdent(table); err != nil {
		return 0, err
	}
	where, args, err := query.BuildWhere(filter)
	if err != nil {
		return 0, err
	}

	stmt := join("SELECT COUNT(*) AS total FROM "+table, where)
	if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(stmt), args...).Scan(&total); err != nil {
		return 0, storageErr(op, table, err)
	}
	return total, nil
}

// GetByIDs: записи с id из списка. Пустой список дает ошибку, а не пустой результат.
func (s *Store) GetByIDs(ctx context.Context, table string, ids []int64) (rows []domain.Record, err error) {
	const op = "get_by_ids"
	start := time.Now()
	defer func() { s.observe(op, table, start, err) }()

	if err := query.ValidIdent(table); err != nil {
		return nil, err
	}
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	where, args, err := query.BuildIn("id", values)
	if err != nil {
		return nil, err
	}
	return s.selectRows(ctx, op, table, join("SELECT * FROM "+table, where), args)
}

// Update меняет колонки data у записей под фильтром. Пустой data или пустой фильтр
// отклоняются до обращения к базе.
func (s *Store) Update(ctx context.Context, actor domain.ActorContext, table string, data domain.Record, filter query.Filter) (res domain.Result, err error) {
	const op = "update"
	start := time.Now()
	defer func() { s.observe(op, table, start, err) }()

	if err := query.ValidIdent(table); err != nil {
		return domain.Result{}, err
	}
	if filter.IsEmpty() {
		return domain.Result{}, domain.InvalidArgument("refusing to update %s without a filter", table)
	}
	set, setArgs, err := query.BuildSet(data)
	if err != nil {
		return domain.Result{}, err
	}
	where, whereArgs, err := query.BuildWhere(filter)
	if err != nil {
		return domain.Result{}, err
	}

	stmt := fmt.Sprintf("UPDATE %s %s %s", table, set, where)
	r, err := s.db.ExecContext(ctx, s.dialect.Rebind(stmt), append(setArgs, whereArgs...)...)
	if err != nil {
		return domain.Result{}, storageErr(op, table, err)
	}
	res = execResult(r)

	// Журналируется само выполнение, даже если под фильтр ничего не попало
	s.audit(ctx, table, domain.AuditUpdated, filter.Map(), actor)
	return res, nil
}

// Delete удаляет записи под фильтром. Несуществующая запись дает RowsAffected=0, а не ошибку;
// запись журнала создается и в этом случае.
func (s *Store) Delete(ctx context.Context, actor domain.ActorContext, table string, filter query.Filter) (res domain.Result, err error) {
	const op = "delete"
	start := time.Now()
	defer func() { s.observe(op, table, start, err) }()

	if err := query.ValidIdent(table); err != nil {
		return domain.Result{}, err
	}
	if filter.IsEmpty() {
		return domain.Result{}, domain.InvalidArgument("where clause cannot be empty for delete")
	}
	where, args, err := query.BuildWhere(filter)
	if err != nil {
		return domain.Result{}, err
	}

	r, err := s.db.ExecContext(ctx, s.dialect.Rebind(join("DELETE FROM "+table, where)), args...)
	if err != nil {
		return domain.Result{}, storageErr(op, table, err)
	}
	res = execResult(r)

	// Журналируется само выполнение, даже если под фильтр ничего не попало
	s.audit(ctx, table, domain.AuditDeleted, filter.Map(), actor)
	return res, nil
}

// DeleteAllUnsafe очищает таблицу целиком. Только super_admin и только таблицы из allow-list.
func (s *Store) DeleteAllUnsafe(ctx context.Context, actor domain.ActorContext, table string) (res domain.Result, err error) {
	const op = "delete_all"
	start := time.Now()
	defer func() { s.observe(op, table, start, err) }()

	// 1. Права раньше allow-list: не-админ не узнает, какие таблицы разрешены
	if !actor.IsTopPrivileged() {
		return domain.Result{}, domain.Unauthorized("only super admin can clear %s", table)
	}
	// 2. Allow-list
	if !s.bulkClear[table] {
		return domain.Result{}, domain.InvalidArgument("table %s is not allowed for bulk delete", table)
	}
	if err := query.ValidIdent(table); err != nil {
		return domain.Result{}, err
	}

	r, err := s.db.ExecContext(ctx, "DELETE FROM "+table)
	if err != nil {
		return domain.Result{}, storageErr(op, table, err)
	}
	res = execResult(r)

	if table != s.auditTable && s.auditor != nil {
		s.auditor.RecordBulkClear(ctx, table, actor)
	}
	return res, nil
}

func (s *Store) selectRows(ctx context.Context, op, table, stmt string, args []any) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(stmt), args...)
	if err != nil {
		return nil, storageErr(op, table, err)
	}
	defer rows.Close()

	out, err := scanRecords(rows, s.dialect == query.Postgres)
	if err != nil {
		return nil, storageErr(op, table, err)
	}
	return out, nil
}

func (s *Store) audit(ctx context.Context, table string, kind domain.AuditKind, details any, actor domain.ActorContext) {
	// Запись в сам журнал не порождает новую запись журнала
	if table == s.auditTable || s.auditor == nil {
		return
	}
	s.auditor.Record(ctx, table, kind, details, actor)
}

func (s *Store) observe(op, table string, start time.Time, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidArgument):
		status = "invalid"
	case errors.Is(err, domain.ErrUnauthorized):
		status = "unauthorized"
	default:
		status = "error"
	}
	s.metrics.StoreOps.WithLabelValues(op, table, status).Inc()
	s.metrics.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil && status == "error" {
		s.logger.Error("store operation failed", zap.String("op", op), zap.String("table", table), zap.Error(err))
		return
	}
	if ce := s.logger.Check(zap.DebugLevel, "store operation"); ce != nil {
		ce.Write(zap.String("op", op), zap.String("table", table), zap.String("status", status),
			zap.Duration("took", time.Since(start)))
	}
}

func storageErr(op, table string, err error) error {
	return &domain.StorageError{Op: op, Table: table, Err: err}
}

func execResult(r sql.Result) domain.Result {
	var res domain.Result
	// Драйверы без поддержки просто возвращают ошибку, тогда оставляем ноль
	if n, err := r.RowsAffected(); err == nil {
		res.RowsAffected = n
	}
	if id, err := r.LastInsertId(); err == nil {
		res.LastInsertID = id
	}
	return res
}

func join(stmt, clause string) string {
	if clause == "" {
		return stmt
	}
	return stmt + " " + clause
}
