package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xela07ax/storefront-console/internal/actor"
	"github.com/xela07ax/storefront-console/internal/console/service"
	"github.com/xela07ax/storefront-console/internal/domain"
)

type ContactHandler struct {
	service *service.ContactService
	logger  *zap.Logger
}

func NewContactHandler(s *service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{service: s, logger: logger.Named("contact-handler")}
}

// Submit: POST /v1/contacts, доступно и анониму.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in domain.ContactInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	msg, err := h.service.Submit(r.Context(), actor.FromContext(r.Context()), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ContactHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var in domain.ReplyInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	reply, err := h.service.Reply(r.Context(), actor.FromContext(r.Context()), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, reply)
}

func (h *ContactHandler) Mine(w http.ResponseWriter, r *http.Request) {
	threads, err := h.service.ForActor(r.Context(), actor.FromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, threads)
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), actor.FromContext(r.Context()), pageQuery(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
