package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xela07ax/storefront-console/internal/actor"
	"github.com/xela07ax/storefront-console/internal/console/service"
	"github.com/xela07ax/storefront-console/internal/domain"
)

type OrderHandler struct {
	service *service.OrderService
	logger  *zap.Logger
}

func NewOrderHandler(s *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{service: s, logger: logger.Named("order-handler")}
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var in domain.OrderInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	res, err := h.service.Place(r.Context(), actor.FromContext(r.Context()), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *OrderHandler) Mine(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.Mine(r.Context(), actor.FromContext(r.Context()), pageQuery(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// List: GET /v1/orders?trashed=true
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	trashed := r.URL.Query().Get("trashed") == "true"
	page, err := h.service.List(r.Context(), actor.FromContext(r.Context()), pageQuery(r), trashed)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var in domain.OrderStatusInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	res, err := h.service.SetStatus(r.Context(), actor.FromContext(r.Context()), id, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *OrderHandler) Trash(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.Trash)
}

func (h *OrderHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.Restore)
}

func (h *OrderHandler) Purge(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.Purge)
}

func (h *OrderHandler) mutate(w http.ResponseWriter, r *http.Request, op func(context.Context, domain.ActorContext, int64) (domain.Result, error)) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	res, err := op(r.Context(), actor.FromContext(r.Context()), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
