package actor

import (
	"context"

	"github.com/xela07ax/storefront-console/internal/domain"
)

type ctxKey struct{}

// WithActor кладет актора в контекст запроса.
func WithActor(ctx context.Context, a domain.ActorContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext возвращает актора или анонима, если его не клали.
func FromContext(ctx context.Context) domain.ActorContext {
	if a, ok := ctx.Value(ctxKey{}).(domain.ActorContext); ok {
		return a
	}
	return domain.Anonymous()
}
