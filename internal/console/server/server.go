package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xela07ax/storefront-console/internal/actor"
	"github.com/xela07ax/storefront-console/internal/console/handler"
	"github.com/xela07ax/storefront-console/internal/infra"
)

// Handlers: обработчики бизнес-доменов.
type Handlers struct {
	Auth          *handler.AuthHandler         // /auth
	Categories    *handler.CategoryHandler     // /v1/categories
	Products      *handler.ProductHandler      // /v1/products
	Orders        *handler.OrderHandler        // /v1/orders
	Contacts      *handler.ContactHandler      // /v1/contacts
	Notifications *handler.NotificationHandler // /v1/notifications (журнал + SSE)
}

type ConsoleServer struct {
	router   *chi.Mux
	logger   *zap.Logger
	cfg      *infra.Config
	resolver *actor.Resolver
	metrics  *infra.Metrics
	gatherer prometheus.Gatherer
	h        Handlers
}

// NewConsoleServer инициализирует API витрины и админки со всеми зависимостями.
// gatherer может быть nil, тогда /metrics не публикуется.
func NewConsoleServer(
	cfg *infra.Config,
	logger *zap.Logger,
	resolver *actor.Resolver,
	metrics *infra.Metrics,
	gatherer prometheus.Gatherer,
	h Handlers,
) *ConsoleServer {
	if metrics == nil {
		metrics = infra.NewMetrics(nil)
	}
	s := &ConsoleServer{
		router:   chi.NewRouter(),
		logger:   logger.Named("console-api"),
		cfg:      cfg,
		resolver: resolver,
		metrics:  metrics,
		gatherer: gatherer,
		h:        h,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RealIP)
	r.Use(TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware(s.metrics))
	// Актор определяется для каждого запроса; без токена, аноним.
	r.Use(actor.Middleware(s.resolver))

	limit := rate.Inf
	if s.cfg.Contact.RateLimit > 0 {
		limit = rate.Limit(s.cfg.Contact.RateLimit)
	}
	contactLimiter := rate.NewLimiter(limit, max(s.cfg.Contact.Burst, 1))

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ ---
	r.Group(func(r chi.Router) {
		r.Post("/auth/register", s.h.Auth.Register)
		r.Post("/auth/token", s.h.Auth.Login)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		if s.gatherer != nil {
			r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
		}

		r.Get("/v1/categories", s.h.Categories.List)
		r.Get("/v1/categories/{slug}", s.h.Categories.Get)
		r.Get("/v1/products", s.h.Products.List)
		r.Get("/v1/products/{slug}", s.h.Products.Get)

		// Форма обратной связи открыта анониму, поэтому с лимитом
		r.With(rateLimit(contactLimiter)).Post("/v1/contacts", s.h.Contacts.Submit)
	})

	// --- 3. ЛЮБОЙ ВОШЕДШИЙ ---
	r.Group(func(r chi.Router) {
		r.Use(actor.RequireAuthenticated)

		r.Get("/auth/me", s.h.Auth.Me)
		r.Post("/v1/products/{id}/rating", s.h.Products.Rate)
		r.Post("/v1/products/{id}/like", s.h.Products.Like)

		r.Post("/v1/orders", s.h.Orders.Place)
		r.Get("/v1/orders/mine", s.h.Orders.Mine)
		r.Post("/v1/orders/{id}/trash", s.h.Orders.Trash)

		r.Get("/v1/notifications/mine", s.h.Notifications.Mine)
		r.Delete("/v1/notifications/mine", s.h.Notifications.ClearMine)
		r.Delete("/v1/notifications/{id}", s.h.Notifications.Remove)

		r.Get("/v1/contacts/mine", s.h.Contacts.Mine)
	})

	// --- 4. АДМИНКА (разделы проверяются по роли/privileges) ---
	r.Group(func(r chi.Router) {
		r.Use(actor.RequirePrivileged)

		// Маршруты плоские: публичные GET по {slug} делят дерево с админскими {id}
		cats := r.With(actor.RequireSection(actor.SectionCategories))
		cats.Post("/v1/categories", s.h.Categories.Create)
		cats.Put("/v1/categories/{id}", s.h.Categories.Update)
		cats.Delete("/v1/categories/{id}", s.h.Categories.Delete)

		products := r.With(actor.RequireSection(actor.SectionProducts))
		products.Post("/v1/products", s.h.Products.Create)
		products.Put("/v1/products/{id}", s.h.Products.Update)
		products.Delete("/v1/products/{id}", s.h.Products.Delete)

		orders := r.With(actor.RequireSection(actor.SectionOrders))
		orders.Get("/v1/orders", s.h.Orders.List)
		orders.Patch("/v1/orders/{id}/status", s.h.Orders.SetStatus)
		orders.Post("/v1/orders/{id}/restore", s.h.Orders.Restore)
		orders.Delete("/v1/orders/{id}", s.h.Orders.Purge)

		feed := r.With(actor.RequireSection(actor.SectionNotifications))
		feed.Get("/v1/notifications", s.h.Notifications.All)
		feed.Get("/v1/notifications/stream", s.h.Notifications.Stream)
		// массовая очистка журнала, только super_admin
		r.With(actor.RequireTopPrivileged).Delete("/v1/notifications", s.h.Notifications.ClearAll)

		contacts := r.With(actor.RequireSection(actor.SectionContacts))
		contacts.Get("/v1/contacts", s.h.Contacts.List)
		contacts.Post("/v1/contacts/reply", s.h.Contacts.Reply)
		contacts.Delete("/v1/contacts/{id}", s.h.Contacts.Delete)
	})
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
