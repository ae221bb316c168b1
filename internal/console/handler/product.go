package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xela07ax/storefront-console/internal/actor"
	"github.com/xela07ax/storefront-console/internal/console/service"
	"github.com/xela07ax/storefront-console/internal/domain"
)

type ProductHandler struct {
	service *service.ProductService
	logger  *zap.Logger
}

func NewProductHandler(s *service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{service: s, logger: logger.Named("product-handler")}
}

// List: GET /v1/products?category=&minPrice=&maxPrice=&q=&page=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	minPrice, err := floatQuery(r, "minPrice")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	maxPrice, err := floatQuery(r, "maxPrice")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	page, err := h.service.List(r.Context(), service.ProductQuery{
		PageQuery: pageQuery(r),
		Category:  r.URL.Query().Get("category"),
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		Search:    r.URL.Query().Get("q"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.BySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	res, err := h.service.Create(r.Context(), actor.FromContext(r.Context()), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var changes domain.Record
	if err := decodeJSON(r, &changes); err != nil {
		writeError(w, h.logger, err)
		return
	}
	res, err := h.service.Update(r.Context(), actor.FromContext(r.Context()), id, changes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if _, err := h.service.Delete(r.Context(), actor.FromContext(r.Context()), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rateRequest struct {
	Rating int `json:"rating"`
}

// Rate: POST /v1/products/{id}/rating
func (h *ProductHandler) Rate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	res, err := h.service.Rate(r.Context(), actor.FromContext(r.Context()), id, req.Rating)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Like: POST /v1/products/{id}/like (переключатель)
func (h *ProductHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	res, err := h.service.ToggleLike(r.Context(), actor.FromContext(r.Context()), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
