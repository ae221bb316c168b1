// Package actor определяет, кто выполняет запрос, и передает это дальше явно.
//
// Resolver никогда не возвращает ошибку: отсутствие, порча или истечение токена
// означают анонимного актора. Хендлеры достают актора из контекста и передают его
// в хранилище параметром.
package actor

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xela07ax/storefront-console/internal/domain"
)

// DefaultCookieName: cookie с сессионным токеном.
const DefaultCookieName = "access_token"

// TokenValidator: проверка RS256 токена (infra/auth.BaseValidator).
type TokenValidator interface {
	VerifyToken(tokenStr string) (*domain.CustomClaims, error)
}

type Resolver struct {
	validator  TokenValidator
	cookieName string
	logger     *zap.Logger
}

func NewResolver(v TokenValidator, cookieName string, logger *zap.Logger) *Resolver {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Resolver{validator: v, cookieName: cookieName, logger: logger.Named("actor")}
}

// Resolve: сначала cookie сессии, затем заголовок Authorization.
func (r *Resolver) Resolve(req *http.Request) domain.ActorContext {
	raw := ""
	if c, err := req.Cookie(r.cookieName); err == nil && c.Value != "" {
		raw = c.Value
	} else if h := req.Header.Get("Authorization"); h != "" {
		raw = h
	}
	if raw == "" || r.validator == nil {
		return domain.Anonymous()
	}

	claims, err := r.validator.VerifyToken(raw)
	if err != nil {
		// причина остается в логах, наружу уходит только аноним
		r.logger.Warn("auth failure", zap.String("path", req.URL.Path), zap.Error(err))
		return domain.Anonymous()
	}
	return claims.Actor()
}
