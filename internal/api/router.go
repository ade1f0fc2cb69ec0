package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
)

const requestTimeout = 30 * time.Second

// RouterConfig holds every handler group the router mounts. RealTime may
// be nil when no listener endpoint is served.
type RouterConfig struct {
	Orders     *OrderHandlers
	Products   *ProductHandlers
	Categories *CategoryHandlers
	Reviews    *ReviewHandlers
	Settings   *SettingHandlers
	Payments   *PaymentHandlers
	Analytics  *AnalyticsHandlers
	Auth       *AuthHandlers
	Users      *UserHandlers
	JWTService *auth.JWTService
	RealTime   http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LoggingMiddleware)
	r.Use(chimw.Recoverer)

	requireAuth := middleware.AuthMiddleware(cfg.JWTService)
	optionalAuth := middleware.OptionalAuthMiddleware(cfg.JWTService)
	can := middleware.RequireAction

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.RealTime != nil {
		r.Handle("/ws", cfg.RealTime)
	}

	r.Route("/api", func(r chi.Router) {
		// The webhook is signed by the processor and must see the raw
		// body, so it sits outside the timeout and auth groups.
		r.Post("/payment/webhook", cfg.Payments.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(requestTimeout))

			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", cfg.Auth.Register)
				r.Post("/login", cfg.Auth.Login)
				r.Post("/logout", cfg.Auth.Logout)
				r.With(requireAuth).Get("/me", cfg.Auth.Me)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", cfg.Products.GetProducts)
				r.Get("/featured", cfg.Products.Featured)
				r.Get("/new-arrivals", cfg.Products.NewArrivals)
				r.Get("/search", cfg.Products.Search)
				r.Get("/filters", cfg.Products.Filters)
				r.Get("/{id}", cfg.Products.GetProduct)
				r.Get("/{id}/reviews", cfg.Reviews.ProductReviews)
				r.With(requireAuth, can(auth.ActionReviewWrite)).Post("/{id}/reviews", cfg.Reviews.CreateReview)

				r.Group(func(r chi.Router) {
					r.Use(requireAuth, can(auth.ActionCatalogManage))
					r.Post("/", cfg.Products.CreateProduct)
					r.Put("/{id}", cfg.Products.UpdateProduct)
					r.Delete("/{id}", cfg.Products.DeleteProduct)
				})
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", cfg.Categories.ListCategories)
				r.Get("/featured", cfg.Categories.Featured)
				r.Get("/slug/{slug}", cfg.Categories.GetCategoryBySlug)
				r.Get("/{id}", cfg.Categories.GetCategory)

				r.Group(func(r chi.Router) {
					r.Use(requireAuth, can(auth.ActionCatalogManage))
					r.Post("/", cfg.Categories.CreateCategory)
					r.Put("/{id}", cfg.Categories.UpdateCategory)
					r.Delete("/{id}", cfg.Categories.DeleteCategory)
				})
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Post("/{id}/helpful", cfg.Reviews.MarkHelpful)
				r.Group(func(r chi.Router) {
					r.Use(requireAuth, can(auth.ActionReviewWrite))
					r.Put("/{id}", cfg.Reviews.UpdateReview)
					r.Delete("/{id}", cfg.Reviews.DeleteReview)
				})
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(optionalAuth).Post("/", cfg.Orders.PlaceOrder)
				r.Group(func(r chi.Router) {
					r.Use(requireAuth)
					r.Get("/myorders", cfg.Orders.MyOrders)
					r.Get("/{id}", cfg.Orders.GetOrder)
					r.Patch("/{id}/cancel", cfg.Orders.CancelOrder)
					r.Delete("/{id}/user-delete", cfg.Orders.DeleteMyOrder)
				})
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", cfg.Settings.ListSettings)
				r.Get("/{key}", cfg.Settings.GetSetting)
				r.With(requireAuth, can(auth.ActionSettingsManage)).Put("/{key}", cfg.Settings.UpdateSetting)
			})

			r.Route("/payment", func(r chi.Router) {
				r.With(optionalAuth).Post("/create-payment-intent", cfg.Payments.CreatePaymentIntent)
				r.With(optionalAuth).Post("/confirm-payment", cfg.Payments.ConfirmPayment)
				r.Group(func(r chi.Router) {
					r.Use(requireAuth, can(auth.ActionPaymentUse))
					r.Post("/create-customer", cfg.Payments.CreateCustomer)
					r.Get("/payment-methods", cfg.Payments.PaymentMethods)
					r.Post("/save-payment-method", cfg.Payments.SavePaymentMethod)
				})
				r.With(requireAuth, can(auth.ActionPaymentRefund)).Post("/refund", cfg.Payments.Refund)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Use(optionalAuth)
				r.Post("/color", cfg.Analytics.TrackColor)
				r.Post("/size", cfg.Analytics.TrackSize)
				r.Post("/combination", cfg.Analytics.TrackCombination)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAuth)

				r.With(can(auth.ActionDashboardRead)).Get("/dashboard-stats", cfg.Orders.DashboardStats)

				r.Group(func(r chi.Router) {
					r.Use(can(auth.ActionOrderManage))
					r.Get("/orders", cfg.Orders.AllOrders)
					r.Put("/orders/{id}/status", cfg.Orders.UpdateStatus)
					r.Delete("/orders/{id}", cfg.Orders.AdminDeleteOrder)
				})

				r.Group(func(r chi.Router) {
					r.Use(can(auth.ActionCustomersManage))
					r.Get("/customers", cfg.Users.ListCustomers)
					r.Post("/customers", cfg.Users.CreateCustomer)
					r.Get("/customers/{id}", cfg.Users.GetCustomer)
					r.Delete("/customers/{id}", cfg.Users.DeleteCustomer)
				})

				r.Group(func(r chi.Router) {
					r.Use(can(auth.ActionAdminsManage))
					r.Get("/admins", cfg.Users.ListAdmins)
					r.Post("/admins", cfg.Users.CreateAdmin)
					r.Delete("/admins/{id}", cfg.Users.DeleteAdmin)
				})

				r.Group(func(r chi.Router) {
					r.Use(can(auth.ActionReviewModerate))
					r.Get("/reviews", cfg.Reviews.AdminReviews)
					r.Get("/reviews/stats/overview", cfg.Reviews.Overview)
					r.Get("/reviews/{id}", cfg.Reviews.AdminReview)
					r.Put("/reviews/{id}/status", cfg.Reviews.ModerateReview)
					r.Delete("/reviews/{id}", cfg.Reviews.AdminDeleteReview)
				})

				r.Route("/analytics", func(r chi.Router) {
					r.Use(can(auth.ActionAnalyticsRead))
					r.Get("/colors", cfg.Analytics.ColorReport)
					r.Get("/sizes", cfg.Analytics.SizeReport)
					r.Get("/combinations", cfg.Analytics.CombinationReport)
					r.Get("/products/{productId}/colors", cfg.Analytics.ColorReport)
					r.Get("/products/{productId}/sizes", cfg.Analytics.SizeReport)
					r.Get("/products/{productId}/combinations", cfg.Analytics.CombinationReport)
				})
			})
		})
	})

	return r
}
