package service

import (
	"context"
	"fmt"

	"github.com/xela07ax/storefront-console/internal/actor"
	"github.com/xela07ax/storefront-console/internal/domain"
	"github.com/xela07ax/storefront-console/internal/query"
)

// NotificationService: чтение и очистка журнала аудита.
// Мутации самого журнала не аудируются (это делает хранилище).
type NotificationService struct {
	store RecordStore
	table string
}

func NewNotificationService(store RecordStore, table string) *NotificationService {
	if table == "" {
		table = domain.TableNotifications
	}
	return &NotificationService{store: store, table: table}
}

// ForActor: собственные записи актора, новые первыми.
func (s *NotificationService) ForActor(ctx context.Context, a domain.ActorContext, pq PageQuery) (PageResult[domain.AuditRecord], error) {
	if err := requireUser(a); err != nil {
		return PageResult[domain.AuditRecord]{}, err
	}
	return s.list(ctx, query.Where(query.Eq(domain.ColActorID, a.ID)), pq)
}

func (s *NotificationService) All(ctx context.Context, a domain.ActorContext, pq PageQuery) (PageResult[domain.AuditRecord], error) {
	if err := requireSection(a, actor.SectionNotifications); err != nil {
		return PageResult[domain.AuditRecord]{}, err
	}
	return s.list(ctx, nil, pq)
}

// Remove удаляет одну запись. Без доступа к разделу, только свою.
func (s *NotificationService) Remove(ctx context.Context, a domain.ActorContext, id int64) (domain.Result, error) {
	if err := requireUser(a); err != nil {
		return domain.Result{}, err
	}
	f := query.Where(query.Eq("id", id))
	if !actor.CanAccess(a, actor.SectionNotifications) {
		f = f.And(query.Eq(domain.ColActorID, a.ID))
	}
	res, err := s.store.Delete(ctx, a, s.table, f)
	if err != nil {
		return res, err
	}
	return res, notFoundIfNone(res, fmt.Sprintf("notification %d", id))
}

func (s *NotificationService) ClearMine(ctx context.Context, a domain.ActorContext) (domain.Result, error) {
	if err := requireUser(a); err != nil {
		return domain.Result{}, err
	}
	return s.store.Delete(ctx, a, s.table, query.Where(query.Eq(domain.ColActorID, a.ID)))
}

// ClearAll: массовая очистка журнала, только super_admin.
func (s *NotificationService) ClearAll(ctx context.Context, a domain.ActorContext) (domain.Result, error) {
	return s.store.DeleteAllUnsafe(ctx, a, s.table)
}

func (s *NotificationService) list(ctx context.Context, f query.Filter, pq PageQuery) (PageResult[domain.AuditRecord], error) {
	page, err := listPage(ctx, s.store, s.table, f, pq, "id", query.Desc)
	if err != nil {
		return PageResult[domain.AuditRecord]{}, err
	}
	return mapPage(page, domain.AuditRecordFromRow), nil
}
