package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sourcegraph/conc/pool"

	"github.com/xela07ax/storefront-console/internal/actor"
	"github.com/xela07ax/storefront-console/internal/domain"
	"github.com/xela07ax/storefront-console/internal/query"
	"github.com/xela07ax/storefront-console/internal/repository/sqlstore"
)

// RecordStore описывает требования сервисов к хранилищу записей (sqlstore.Store).
type RecordStore interface {
	Create(ctx context.Context, a domain.ActorContext, table string, data domain.Record) (domain.Result, error)
	Read(ctx context.Context, table string, filter query.Filter) ([]domain.Record, error)
	Paginate(ctx context.Context, table string, filter query.Filter, page sqlstore.Page) ([]domain.Record, error)
	Count(ctx context.Context, table string, filter query.Filter) (int64, error)
	GetByIDs(ctx context.Context, table string, ids []int64) ([]domain.Record, error)
	Update(ctx context.Context, a domain.ActorContext, table string, data domain.Record, filter query.Filter) (domain.Result, error)
	Delete(ctx context.Context, a domain.ActorContext, table string, filter query.Filter) (domain.Result, error)
	DeleteAllUnsafe(ctx context.Context, a domain.ActorContext, table string) (domain.Result, error)
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PageResult: страница выдачи вместе с общим количеством.
type PageResult[T any] struct {
	Items        []T   `json:"items"`
	Page         int   `json:"page"`
	PageSize     int   `json:"pageSize"`
	TotalResults int64 `json:"totalResults"`
	TotalPages   int64 `json:"totalPages"`
}

// PageQuery: номер страницы с единицы.
type PageQuery struct {
	Page int
	Size int
}

func (p PageQuery) normalize() PageQuery {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// listPage выбирает страницу и считает total параллельно.
func listPage(ctx context.Context, store RecordStore, table string, filter query.Filter, pq PageQuery, orderBy, dir string) (PageResult[domain.Record], error) {
	pq = pq.normalize()

	var (
		rows  []domain.Record
		total int64
	)
	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		rows, err = store.Paginate(ctx, table, filter, sqlstore.Page{
			Limit: pq.Size, Offset: (pq.Page - 1) * pq.Size, OrderBy: orderBy, Direction: dir,
		})
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		total, err = store.Count(ctx, table, filter)
		return err
	})
	if err := p.Wait(); err != nil {
		return PageResult[domain.Record]{}, fmt.Errorf("list %s: %w", table, err)
	}

	return PageResult[domain.Record]{
		Items:        rows,
		Page:         pq.Page,
		PageSize:     pq.Size,
		TotalResults: total,
		TotalPages:   int64(math.Ceil(float64(total) / float64(pq.Size))),
	}, nil
}

func mapPage[T any](in PageResult[domain.Record], fn func(domain.Record) T) PageResult[T] {
	out := PageResult[T]{Page: in.Page, PageSize: in.PageSize, TotalResults: in.TotalResults, TotalPages: in.TotalPages}
	out.Items = make([]T, len(in.Items))
	for i, r := range in.Items {
		out.Items[i] = fn(r)
	}
	return out
}

// readOne: первая запись под фильтром или ErrNotFound.
func readOne(ctx context.Context, store RecordStore, table string, filter query.Filter) (domain.Record, error) {
	rows, err := store.Read(ctx, table, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", table, domain.ErrNotFound)
	}
	return rows[0], nil
}

// patch оставляет только разрешенные колонки.
func patch(in domain.Record, allowed ...string) (domain.Record, error) {
	out := make(domain.Record, len(in))
	for _, col := range allowed {
		if v, ok := in[col]; ok {
			out[col] = v
		}
	}
	for col := range in {
		if _, ok := out[col]; !ok {
			return nil, domain.InvalidArgument("column %q cannot be changed", col)
		}
	}
	if len(out) == 0 {
		return nil, domain.InvalidArgument("nothing to update")
	}
	return out, nil
}

func requireSection(a domain.ActorContext, s actor.Section) error {
	if !actor.CanAccess(a, s) {
		return domain.Unauthorized("no access to %s", s)
	}
	return nil
}

func requireUser(a domain.ActorContext) error {
	if a.IsAnonymous() {
		return domain.Unauthorized("login required")
	}
	return nil
}

func notFoundIfNone(res domain.Result, what string) error {
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput переводит ошибки валидатора в ErrInvalidArgument.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag())
		}
		return domain.InvalidArgument("invalid fields: %s", strings.Join(fields, ", "))
	}
	return domain.InvalidArgument("%v", err)
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
