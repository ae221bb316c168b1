package service

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/xela07ax/storefront-console/internal/actor"
	"github.com/xela07ax/storefront-console/internal/domain"
	"github.com/xela07ax/storefront-console/internal/query"
)

// ProductQuery: фильтры каталога. Нулевые значения не фильтруют.
type ProductQuery struct {
	PageQuery
	Category string
	MinPrice float64
	MaxPrice float64
	Search   string
}

func (q ProductQuery) filter() (query.Filter, error) {
	if q.MinPrice < 0 || q.MaxPrice < 0 {
		return nil, domain.InvalidArgument("price bounds must be non-negative")
	}
	if q.MaxPrice > 0 && q.MinPrice > q.MaxPrice {
		return nil, domain.InvalidArgument("minPrice %v exceeds maxPrice %v", q.MinPrice, q.MaxPrice)
	}
	var f query.Filter
	if q.MinPrice > 0 {
		f = f.And(query.PriceFloor(q.MinPrice))
	}
	if q.MaxPrice > 0 {
		f = f.And(query.PriceCeiling(q.MaxPrice))
	}
	if q.Category != "" {
		f = f.And(query.Eq("category", q.Category))
	}
	if q.Search != "" {
		f = f.And(query.Contains("name", q.Search))
	}
	return f, nil
}

var productColumns = []string{
	"name", "slug", "description", "price", "image_url", "stock", "category", "detailed_images",
}

type ProductService struct {
	store RecordStore
}

func NewProductService(store RecordStore) *ProductService {
	return &ProductService{store: store}
}

// List: каталог, новые товары первыми.
func (s *ProductService) List(ctx context.Context, q ProductQuery) (PageResult[domain.Record], error) {
	f, err := q.filter()
	if err != nil {
		return PageResult[domain.Record]{}, err
	}
	return listPage(ctx, s.store, domain.TableProducts, f, q.PageQuery, "id", query.Desc)
}

func (s *ProductService) BySlug(ctx context.Context, slug string) (domain.Record, error) {
	return readOne(ctx, s.store, domain.TableProducts, query.Where(query.Eq("slug", slug)))
}

func (s *ProductService) ByID(ctx context.Context, id int64) (domain.Record, error) {
	return readOne(ctx, s.store, domain.TableProducts, query.Where(query.Eq("id", id)))
}

func (s *ProductService) Create(ctx context.Context, a domain.ActorContext, in domain.ProductInput) (domain.Result, error) {
	if err := requireSection(a, actor.SectionProducts); err != nil {
		return domain.Result{}, err
	}
	if err := validateInput(in); err != nil {
		return domain.Result{}, err
	}
	rec := in.ToRecord()
	rec["rating_users"] = []int64{}
	rec["likes_users"] = []int64{}
	return s.store.Create(ctx, a, domain.TableProducts, rec)
}

func (s *ProductService) Update(ctx context.Context, a domain.ActorContext, id int64, changes domain.Record) (domain.Result, error) {
	if err := requireSection(a, actor.SectionProducts); err != nil {
		return domain.Result{}, err
	}
	data, err := patch(changes, productColumns...)
	if err != nil {
		return domain.Result{}, err
	}
	res, err := s.store.Update(ctx, a, domain.TableProducts, data, query.Where(query.Eq("id", id)))
	if err != nil {
		return res, err
	}
	return res, notFoundIfNone(res, fmt.Sprintf("product %d", id))
}

func (s *ProductService) Delete(ctx context.Context, a domain.ActorContext, id int64) (domain.Result, error) {
	if err := requireSection(a, actor.SectionProducts); err != nil {
		return domain.Result{}, err
	}
	res, err := s.store.Delete(ctx, a, domain.TableProducts, query.Where(query.Eq("id", id)))
	if err != nil {
		return res, err
	}
	return res, notFoundIfNone(res, fmt.Sprintf("product %d", id))
}

// Rate добавляет голос в скользящее среднее. Один голос на пользователя.
// Чтение и запись, разные запросы, одновременные голоса могут потеряться.
func (s *ProductService) Rate(ctx context.Context, a domain.ActorContext, productID int64, rating int) (domain.RatingResult, error) {
	if err := requireUser(a); err != nil {
		return domain.RatingResult{}, err
	}
	if rating < 1 || rating > 5 {
		return domain.RatingResult{}, domain.InvalidArgument("rating must be between 1 and 5, got %d", rating)
	}
	product, err := s.ByID(ctx, productID)
	if err != nil {
		return domain.RatingResult{}, err
	}

	users := domain.Int64List(product["rating_users"])
	if slices.Contains(users, a.ID) {
		return domain.RatingResult{}, domain.InvalidArgument("product %d already rated", productID)
	}
	count, _ := domain.Int64(product["rating_count"])
	avg, _ := domain.Float64(product["rating_number"])

	users = append(users, a.ID)
	count++
	avg = (avg*float64(count-1) + float64(rating)) / float64(count)
	avg = math.Round(avg*100) / 100

	_, err = s.store.Update(ctx, a, domain.TableProducts, domain.Record{
		"rating_count":  count,
		"rating_number": avg,
		"rating_users":  users,
	}, query.Where(query.Eq("id", productID)))
	if err != nil {
		return domain.RatingResult{}, err
	}
	return domain.RatingResult{RatingCount: count, RatingNumber: avg, IsRated: true}, nil
}

// ToggleLike ставит или снимает лайк текущего пользователя.
func (s *ProductService) ToggleLike(ctx context.Context, a domain.ActorContext, productID int64) (domain.LikeResult, error) {
	if err := requireUser(a); err != nil {
		return domain.LikeResult{}, err
	}
	product, err := s.ByID(ctx, productID)
	if err != nil {
		return domain.LikeResult{}, err
	}

	likes := domain.Int64List(product["likes_users"])
	n, _ := domain.Int64(product["likes_number"])
	liked := false
	if i := slices.Index(likes, a.ID); i >= 0 {
		likes = slices.Delete(likes, i, i+1)
		n--
	} else {
		likes = append(likes, a.ID)
		n++
		liked = true
	}
	if n < 0 {
		n = 0
	}

	_, err = s.store.Update(ctx, a, domain.TableProducts, domain.Record{
		"likes_users":  likes,
		"likes_number": n,
	}, query.Where(query.Eq("id", productID)))
	if err != nil {
		return domain.LikeResult{}, err
	}
	return domain.LikeResult{Liked: liked, LikesNumber: n}, nil
}
