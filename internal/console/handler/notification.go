package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/storefront-console/internal/actor"
	"github.com/xela07ax/storefront-console/internal/console/service"
	"github.com/xela07ax/storefront-console/internal/domain"
)

// FeedSubscriber: источник живой ленты (feed.Hub).
type FeedSubscriber interface {
	Subscribe() (<-chan domain.AuditRecord, func())
}

const streamHeartbeat = 25 * time.Second

type NotificationHandler struct {
	service *service.NotificationService
	feed    FeedSubscriber
	logger  *zap.Logger
}

func NewNotificationHandler(s *service.NotificationService, feed FeedSubscriber, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{service: s, feed: feed, logger: logger.Named("notification-handler")}
}

func (h *NotificationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ForActor(r.Context(), actor.FromContext(r.Context()), pageQuery(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *NotificationHandler) All(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.All(r.Context(), actor.FromContext(r.Context()), pageQuery(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *NotificationHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if _, err := h.service.Remove(r.Context(), actor.FromContext(r.Context()), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) ClearMine(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ClearMine(r.Context(), actor.FromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ClearAll: DELETE /v1/notifications (super_admin)
func (h *NotificationHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ClearAll(r.Context(), actor.FromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Stream: GET /v1/notifications/stream, Server-Sent Events.
// Каждая новая запись журнала уходит событием "notification".
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok || h.feed == nil {
		http.Error(w, "streaming unsupported", http.StatusNotImplemented)
		return
	}

	events, unsubscribe := h.feed.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case rec, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(rec)
			if err != nil {
				h.logger.Warn("failed to encode feed record", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "id: %d\nevent: notification\ndata: %s\n\n", rec.ID, data)
			flusher.Flush()
		}
	}
}
