package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xela07ax/storefront-console/internal/actor"
	"github.com/xela07ax/storefront-console/internal/console/service"
	"github.com/xela07ax/storefront-console/internal/domain"
)

type CategoryHandler struct {
	service *service.CategoryService
	logger  *zap.Logger
}

func NewCategoryHandler(s *service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{service: s, logger: logger.Named("category-handler")}
}

// List: GET /v1/categories?page=&size=&slug=&q=
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), service.CategoryQuery{
		PageQuery: pageQuery(r),
		Slug:      r.URL.Query().Get("slug"),
		Search:    r.URL.Query().Get("q"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	cat, err := h.service.BySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.CategoryInput
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

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
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

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
