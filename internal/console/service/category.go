package service

import (
	"context"
	"fmt"

	"github.com/xela07ax/storefront-console/internal/actor"
	"github.com/xela07ax/storefront-console/internal/domain"
	"github.com/xela07ax/storefront-console/internal/query"
)

// CategoryQuery: параметры выдачи категорий.
type CategoryQuery struct {
	PageQuery
	Slug   string
	Search string
}

type CategoryService struct {
	store RecordStore
}

func NewCategoryService(store RecordStore) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) List(ctx context.Context, q CategoryQuery) (PageResult[domain.Record], error) {
	var f query.Filter
	if q.Slug != "" {
		f = f.And(query.Eq("slug", q.Slug))
	}
	if q.Search != "" {
		f = f.And(query.Contains("name", q.Search))
	}
	return listPage(ctx, s.store, domain.TableCategories, f, q.PageQuery, "id", query.Asc)
}

func (s *CategoryService) BySlug(ctx context.Context, slug string) (domain.Record, error) {
	return readOne(ctx, s.store, domain.TableCategories, query.Where(query.Eq("slug", slug)))
}

func (s *CategoryService) ByID(ctx context.Context, id int64) (domain.Record, error) {
	return readOne(ctx, s.store, domain.TableCategories, query.Where(query.Eq("id", id)))
}

func (s *CategoryService) Create(ctx context.Context, a domain.ActorContext, in domain.CategoryInput) (domain.Result, error) {
	if err := requireSection(a, actor.SectionCategories); err != nil {
		return domain.Result{}, err
	}
	if err := validateInput(in); err != nil {
		return domain.Result{}, err
	}
	return s.store.Create(ctx, a, domain.TableCategories, in.ToRecord())
}

// Update применяет частичное изменение; неизвестные колонки отклоняются.
func (s *CategoryService) Update(ctx context.Context, a domain.ActorContext, id int64, changes domain.Record) (domain.Result, error) {
	if err := requireSection(a, actor.SectionCategories); err != nil {
		return domain.Result{}, err
	}
	data, err := patch(changes, "name", "slug", "description", "image_url")
	if err != nil {
		return domain.Result{}, err
	}
	res, err := s.store.Update(ctx, a, domain.TableCategories, data, query.Where(query.Eq("id", id)))
	if err != nil {
		return res, err
	}
	return res, notFoundIfNone(res, fmt.Sprintf("category %d", id))
}

func (s *CategoryService) Delete(ctx context.Context, a domain.ActorContext, id int64) (domain.Result, error) {
	if err := requireSection(a, actor.SectionCategories); err != nil {
		return domain.Result{}, err
	}
	res, err := s.store.Delete(ctx, a, domain.TableCategories, query.Where(query.Eq("id", id)))
	if err != nil {
		return res, err
	}
	return res, notFoundIfNone(res, fmt.Sprintf("category %d", id))
}
