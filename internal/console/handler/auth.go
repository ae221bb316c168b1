package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/xela07ax/storefront-console/internal/actor"
	"github.com/xela07ax/storefront-console/internal/console/service"
	"github.com/xela07ax/storefront-console/internal/domain"
)

type AuthHandler struct {
	service *service.AuthService
	logger  *zap.Logger
}

func NewAuthHandler(s *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: s, logger: logger.Named("auth-handler")}
}

// Register: POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login: POST /auth/token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if errors.Is(err, domain.ErrUnauthorized) {
		// не уточняем, что именно неверно (логин или пароль) для защиты от перебора
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me: GET /auth/me: профиль и доступные разделы админки.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	a := actor.FromContext(r.Context())
	user, err := h.service.Me(r.Context(), a)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		domain.User
		Sections []actor.Section `json:"sections"`
	}{user, actor.Sections(a)})
}
