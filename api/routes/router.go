package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pallab-BJIT/mid-term-project/api/controllers"
	"github.com/pallab-BJIT/mid-term-project/api/middleware"
	"github.com/pallab-BJIT/mid-term-project/internal/auth"
	"github.com/pallab-BJIT/mid-term-project/internal/books"
	"github.com/pallab-BJIT/mid-term-project/internal/cart"
	"github.com/pallab-BJIT/mid-term-project/internal/checkout"
	"github.com/pallab-BJIT/mid-term-project/internal/discounts"
	"github.com/pallab-BJIT/mid-term-project/internal/reviews"
	"github.com/pallab-BJIT/mid-term-project/internal/transactions"
	"github.com/pallab-BJIT/mid-term-project/internal/users"
	"github.com/pallab-BJIT/mid-term-project/pkg/auth/session"
	"github.com/pallab-BJIT/mid-term-project/pkg/config"
	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
	"github.com/pallab-BJIT/mid-term-project/pkg/logger"
	"github.com/pallab-BJIT/mid-term-project/pkg/redis"
)

// redisStore is the slice of the redis client the middleware chain needs.
type redisStore interface {
	redis.IdempotencyStore
	middleware.RateLimiter
	controllers.Pinger
}

// Services holds everything the HTTP surface dispatches to.
type Services struct {
	Auth         auth.Service
	Register     auth.RegisterService
	Users        users.Service
	Books        books.Service
	Reviews      reviews.Service
	Cart         cart.Service
	Checkout     checkout.Service
	Transactions transactions.Service
	Discounts    discounts.Service
}

// Infra holds the shared clients wired into middleware and health checks.
type Infra struct {
	DB       controllers.Pinger
	Redis    redisStore
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	var limiter middleware.RateLimiter
	var idempotency redis.IdempotencyStore
	if infra.Redis != nil {
		limiter = infra.Redis
		idempotency = infra.Redis
	}
	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.RateLimit.SignupWindow,
		cfg.RateLimit.SignupIPLimit,
		cfg.RateLimit.SignupEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    infra.DB,
			"redis": infra.Redis,
		}))
	})
	if infra.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	authenticated := middleware.Auth(cfg.JWT, infra.Sessions, logg)
	adminOnly := middleware.RequireRank(logg, enums.RankAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(signupPolicy, limiter, logg)).Post("/signup", controllers.AuthSignup(svc.Register, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(svc.Auth, logg))
			r.With(authenticated).Post("/logout", controllers.AuthLogout(svc.Auth, logg))
		})

		r.Get("/books", controllers.BooksList(svc.Books, logg))
		r.Get("/books/{bookId}", controllers.BookGet(svc.Books, logg))
		r.Get("/books/{bookId}/reviews", controllers.ReviewsList(svc.Reviews, logg))

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Use(middleware.Idempotency(idempotency, logg))

			r.Get("/users/me", controllers.UserProfile(svc.Users, logg))
			r.Post("/users/me/balance", controllers.UserAddBalance(svc.Users, logg))

			r.Get("/cart", controllers.CartGet(svc.Cart, logg))
			r.Post("/cart/items", controllers.CartAddItem(svc.Cart, logg))
			r.Patch("/cart/items", controllers.CartUpdateItem(svc.Cart, logg))

			r.Post("/checkout", controllers.Checkout(svc.Checkout, logg))
			r.Get("/transactions", controllers.TransactionsListMine(svc.Transactions, logg))

			r.Post("/books/{bookId}/reviews", controllers.ReviewAdd(svc.Reviews, logg))
			r.Patch("/books/{bookId}/reviews", controllers.ReviewUpdate(svc.Reviews, logg))
			r.Delete("/books/{bookId}/reviews", controllers.ReviewRemove(svc.Reviews, logg))

			r.Route("/admin", func(r chi.Router) {
				r.Use(adminOnly)

				r.Post("/books", controllers.BookCreate(svc.Books, logg))
				r.Patch("/books/{bookId}", controllers.BookUpdate(svc.Books, logg))
				r.Delete("/books/{bookId}", controllers.BookDelete(svc.Books, logg))

				r.Get("/discounts", controllers.DiscountsList(svc.Discounts, logg))
				r.Post("/discounts", controllers.DiscountCreate(svc.Discounts, logg))
				r.Get("/discounts/{discountId}", controllers.DiscountGet(svc.Discounts, logg))
				r.Patch("/discounts/{discountId}", controllers.DiscountUpdate(svc.Discounts, logg))
				r.Delete("/discounts/{discountId}", controllers.DiscountDelete(svc.Discounts, logg))

				r.Get("/transactions", controllers.TransactionsListAll(svc.Transactions, logg))
			})
		})
	})

	return r
}
