package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/storefront-api/internal/application/auth"
	"github.com/storefront-api/internal/application/cart"
	"github.com/storefront-api/internal/application/catalog"
	"github.com/storefront-api/internal/application/order"
	"github.com/storefront-api/internal/application/user"
	"github.com/storefront-api/internal/application/verification"
	"github.com/storefront-api/internal/config"
	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/transport/http/handler"
	appmiddleware "github.com/storefront-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if len(deps.TrustedProxies) > 0 {
		r.Use(appmiddleware.RealIP(deps.TrustedProxies))
	}
	r.Use(appmiddleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)
	adminOnly := appmiddleware.RequireRole(domain.RoleAdmin)

	// 5 requests/second, burst of 10, on the unauthenticated auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		JWTProvider: deps.JWTProvider,
		Google:      deps.Google,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:     deps.UserRepo,
		Proofs:       deps.JWTProvider,
		RequireProof: deps.RequireProof,
	})
	verifySvc := verification.NewService(verification.ServiceDeps{
		Store:    deps.VerificationStore,
		Users:    deps.UserRepo,
		Notifier: deps.Dispatcher,
		Proofs:   deps.JWTProvider,
		TokenTTL: deps.TokenTTL,
	})
	catalogSvc := catalog.NewService(catalog.ServiceDeps{
		ProductRepo: deps.ProductRepo,
		Images:      deps.Images,
	})
	cartSvc := cart.NewService(cart.ServiceDeps{
		CartRepo:    deps.CartRepo,
		ProductRepo: deps.ProductRepo,
	})
	orderSvc := order.NewService(order.ServiceDeps{
		OrderRepo:   deps.OrderRepo,
		CartRepo:    deps.CartRepo,
		ProductRepo: deps.ProductRepo,
		UserRepo:    deps.UserRepo,
		SMS:         deps.SMS,
		SiteName:    deps.SiteName,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(verifySvc, userSvc, authSvc)
	productH := handler.NewProductHandler(catalogSvc)
	cartH := handler.NewCartHandler(cartSvc)
	orderH := handler.NewOrderHandler(orderSvc)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthH.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(sensitiveRL.Limit)
				r.Post("/request-verification", authH.RequestVerification)
				r.Post("/check-email-verification", authH.CheckVerification)
				r.Post("/register", authH.Register)
				r.Post("/login", authH.Login)
				r.Post("/admin/login", authH.AdminLogin)
				r.Post("/google", authH.GoogleLogin)
			})
			r.With(authMw).Get("/me", authH.Me)
			r.With(authMw).Put("/profile", authH.UpdateProfile)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productH.List)
			r.Get("/{id}", productH.Get)

			r.Group(func(r chi.Router) {
				r.Use(authMw, adminOnly)
				r.Post("/", productH.Create)
				r.Put("/{id}", productH.Update)
				r.Delete("/{id}", productH.Delete)
				r.Post("/{id}/images", productH.UploadImage)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authMw)
			r.Get("/", cartH.Get)
			r.Post("/add", cartH.Add)
			r.Put("/{itemId}", cartH.UpdateItem)
			r.Delete("/{itemId}", cartH.RemoveItem)
			r.Delete("/", cartH.Clear)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authMw)
			r.Post("/", orderH.Create)
			r.Get("/", orderH.List)
			r.Get("/{id}", orderH.Get)
			r.Delete("/{id}/cancel", orderH.Cancel)
			r.With(adminOnly).Put("/{id}/status", orderH.UpdateStatus)
		})
	})

	return r
}
