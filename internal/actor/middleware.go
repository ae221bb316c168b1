package actor

import (
	"net/http"
)

// Middleware резолвит актора один раз на запрос. Запрос не отклоняется никогда:
// решать, нужен ли вход, будут Require* ниже по цепочке.
func Middleware(r *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			a := r.Resolve(req)
			next.ServeHTTP(w, req.WithContext(WithActor(req.Context(), a)))
		})
	}
}

// RequireAuthenticated: любой вошедший пользователь.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if FromContext(req.Context()).IsAnonymous() {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// RequirePrivileged: любой админский доступ (role != user).
func RequirePrivileged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		a := FromContext(req.Context())
		switch {
		case a.IsAnonymous():
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		case !a.IsPrivileged():
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			next.ServeHTTP(w, req)
		}
	})
}

// RequireTopPrivileged: только super_admin.
func RequireTopPrivileged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		a := FromContext(req.Context())
		switch {
		case a.IsAnonymous():
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		case !a.IsTopPrivileged():
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			next.ServeHTTP(w, req)
		}
	})
}

// RequireSection: привилегированный актор с доступом к разделу админки.
func RequireSection(section Section) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			a := FromContext(req.Context())
			switch {
			case a.IsAnonymous():
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
			case !CanAccess(a, section):
				http.Error(w, "Forbidden", http.StatusForbidden)
			default:
				next.ServeHTTP(w, req)
			}
		})
	}
}
