package audit

/*
Файл notifier.go реализует журнал мутаций витрины (таблица notifications).

Ключевые особенности:
- Best-effort: запись журнала выполняется синхронно после основной мутации, но ее сбой
  только логируется и считается в метриках. Основная операция уже закоммичена.
- Circuit Breaker: при серии отказов таблицы журнала запись временно пропускается,
  чтобы мертвый журнал не добавлял задержку к каждой мутации.
- Без рекурсии: запись идет через Store.Create в таблицу журнала, а хранилище
  не аудирует мутации самой таблицы журнала.
- Feed: успешно записанная запись публикуется в Redis для живой ленты админки.
*/

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/xela07ax/storefront-console/internal/domain"
	"github.com/xela07ax/storefront-console/internal/infra"
)

// Creator: то, чем журнал пишет свои записи (sqlstore.Store).
type Creator interface {
	Create(ctx context.Context, actor domain.ActorContext, table string, data domain.Record) (domain.Result, error)
}

// Publisher рассылает записанную запись подписчикам ленты.
type Publisher interface {
	Publish(ctx context.Context, rec domain.AuditRecord) error
}

type Notifier struct {
	store     Creator
	table     string
	cb        *gobreaker.CircuitBreaker
	publisher Publisher
	logger    *zap.Logger
	metrics   *infra.Metrics
}

// NewNotifier. publisher может быть nil, тогда лента не рассылается.
func NewNotifier(store Creator, cfg infra.AuditConfig, publisher Publisher, logger *zap.Logger, metrics *infra.Metrics) *Notifier {
	if metrics == nil {
		metrics = infra.NewMetrics(nil)
	}
	table := cfg.Table
	if table == "" {
		table = domain.TableNotifications
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	log := logger.Named("audit")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "audit-journal",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout, // 0: дефолт gobreaker (60s)
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("audit breaker state changed", zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Notifier{
		store:     store,
		table:     table,
		cb:        cb,
		publisher: publisher,
		logger:    log,
		metrics:   metrics,
	}
}

// Record пишет запись о мутации table. Ошибки не возвращаются.
func (n *Notifier) Record(ctx context.Context, table string, kind domain.AuditKind, details any, actor domain.ActorContext) {
	n.write(ctx, newRecord(table, kind, false, details, actor), actor)
}

// RecordBulkClear: запись об очистке таблицы целиком.
func (n *Notifier) RecordBulkClear(ctx context.Context, table string, actor domain.ActorContext) {
	n.write(ctx, newRecord(table, domain.AuditDeleted, true, map[string]any{"table": table}, actor), actor)
}

func (n *Notifier) write(ctx context.Context, rec domain.AuditRecord, actor domain.ActorContext) {
	// Основная запись уже закоммичена: обрыв клиента не должен терять журнал
	ctx = context.WithoutCancel(ctx)

	out, err := n.cb.Execute(func() (interface{}, error) {
		return n.store.Create(ctx, actor, n.table, rec.ToRecord())
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		n.metrics.AuditWrites.WithLabelValues("skipped").Inc()
		n.logger.Warn("audit write skipped, breaker open",
			zap.String("table", rec.SourceTable), zap.String("kind", string(rec.Kind)))
		return
	case err != nil:
		n.metrics.AuditWrites.WithLabelValues("failed").Inc()
		n.logger.Error("audit write failed",
			zap.String("table", rec.SourceTable), zap.String("kind", string(rec.Kind)), zap.Error(err))
		return
	}
	n.metrics.AuditWrites.WithLabelValues("ok").Inc()

	if n.publisher == nil {
		return
	}
	if res, ok := out.(domain.Result); ok {
		rec.ID = res.LastInsertID
	}
	rec.CreatedAt = time.Now().UTC()
	if err := n.publisher.Publish(ctx, rec); err != nil {
		n.logger.Warn("audit feed publish failed", zap.Int64("id", rec.ID), zap.Error(err))
	}
}

func newRecord(table string, kind domain.AuditKind, bulk bool, details any, actor domain.ActorContext) domain.AuditRecord {
	rec := domain.AuditRecord{
		Title:       domain.AuditTitle(kind, table, bulk),
		Kind:        kind,
		SourceTable: table,
		RawDetails:  rawDetails(details),
	}
	// Аноним не атрибутируется: userId/username остаются NULL
	if !actor.IsAnonymous() {
		id, name := actor.ID, actor.DisplayName
		rec.ActorID = &id
		rec.ActorName = &name
	}
	return rec
}

func rawDetails(details any) string {
	if details == nil {
		return ""
	}
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Sprint(details)
	}
	return string(data)
}
