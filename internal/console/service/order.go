package service

import (
	"context"
	"fmt"
	"math"

	"github.com/xela07ax/storefront-console/internal/actor"
	"github.com/xela07ax/storefront-console/internal/domain"
	"github.com/xela07ax/storefront-console/internal/query"
)

type OrderService struct {
	store RecordStore
}

func NewOrderService(store RecordStore) *OrderService {
	return &OrderService{store: store}
}

// Place оформляет заказ текущего пользователя. Сумма считается по позициям,
// присланная клиентом не принимается.
func (s *OrderService) Place(ctx context.Context, a domain.ActorContext, in domain.OrderInput) (domain.Result, error) {
	if err := requireUser(a); err != nil {
		return domain.Result{}, err
	}
	if err := validateInput(in); err != nil {
		return domain.Result{}, err
	}

	var total float64
	for _, it := range in.Items {
		total += it.Price * float64(it.Quantity)
	}

	return s.store.Create(ctx, a, domain.TableOrders, domain.Record{
		"customerId":   a.ID,
		"customerName": in.CustomerName,
		"email":        in.Email,
		"status":       domain.OrderPending,
		"orderItems":   in.Items,
		"totalAmount":  math.Round(total*100) / 100,
		"trashed":      0,
		"finalTrashed": 0,
	})
}

// List: все заказы для раздела orders. trashed выбирает корзину.
func (s *OrderService) List(ctx context.Context, a domain.ActorContext, pq PageQuery, trashed bool) (PageResult[domain.Record], error) {
	if err := requireSection(a, actor.SectionOrders); err != nil {
		return PageResult[domain.Record]{}, err
	}
	f := query.Where(query.Eq("trashed", flag(trashed)))
	return listPage(ctx, s.store, domain.TableOrders, f, pq, "id", query.Desc)
}

// Mine: заказы актора, кроме окончательно удаленных.
func (s *OrderService) Mine(ctx context.Context, a domain.ActorContext, pq PageQuery) (PageResult[domain.Record], error) {
	if err := requireUser(a); err != nil {
		return PageResult[domain.Record]{}, err
	}
	f := query.Where(query.Eq("customerId", a.ID), query.Eq("finalTrashed", 0))
	return listPage(ctx, s.store, domain.TableOrders, f, pq, "id", query.Desc)
}

func (s *OrderService) SetStatus(ctx context.Context, a domain.ActorContext, id int64, in domain.OrderStatusInput) (domain.Result, error) {
	if err := requireSection(a, actor.SectionOrders); err != nil {
		return domain.Result{}, err
	}
	if err := validateInput(in); err != nil {
		return domain.Result{}, err
	}
	return s.update(ctx, a, id, query.Where(query.Eq("id", id)), domain.Record{"status": in.Status})
}

// Trash переносит заказ в корзину. Владелец может убрать только свой заказ.
func (s *OrderService) Trash(ctx context.Context, a domain.ActorContext, id int64) (domain.Result, error) {
	if err := requireUser(a); err != nil {
		return domain.Result{}, err
	}
	f := query.Where(query.Eq("id", id))
	if !actor.CanAccess(a, actor.SectionOrders) {
		f = f.And(query.Eq("customerId", a.ID), query.Eq("finalTrashed", 0))
	}
	return s.update(ctx, a, id, f, domain.Record{"trashed": 1})
}

func (s *OrderService) Restore(ctx context.Context, a domain.ActorContext, id int64) (domain.Result, error) {
	if err := requireSection(a, actor.SectionOrders); err != nil {
		return domain.Result{}, err
	}
	return s.update(ctx, a, id, query.Where(query.Eq("id", id)), domain.Record{"trashed": 0, "finalTrashed": 0})
}

// Purge удаляет заказ безвозвратно.
func (s *OrderService) Purge(ctx context.Context, a domain.ActorContext, id int64) (domain.Result, error) {
	if err := requireSection(a, actor.SectionOrders); err != nil {
		return domain.Result{}, err
	}
	res, err := s.store.Delete(ctx, a, domain.TableOrders, query.Where(query.Eq("id", id)))
	if err != nil {
		return res, err
	}
	return res, notFoundIfNone(res, fmt.Sprintf("order %d", id))
}

func (s *OrderService) update(ctx context.Context, a domain.ActorContext, id int64, f query.Filter, data domain.Record) (domain.Result, error) {
	res, err := s.store.Update(ctx, a, domain.TableOrders, data, f)
	if err != nil {
		return res, err
	}
	return res, notFoundIfNone(res, fmt.Sprintf("order %d", id))
}
