package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parfum/docs" //this is required to generate swagger docs
	"parfum/internal/auth"
	"parfum/internal/domain/storage"
	"parfum/internal/mailer"
	"parfum/internal/ratelimiter"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         *storage.Container
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	frontendURL string
	mail        mailConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
	admin adminConfig
}

type tokenConfig struct {
	secret string
	exp    time.Duration
	iss    string
}

type basicConfig struct {
	user string
	pass string
}

// adminConfig holds the single back-office account. The hash is a bcrypt
// digest loaded from the environment, never a plaintext password.
type adminConfig struct {
	email        string
	passwordHash string
}

type mailConfig struct {
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type dbConfig struct {
	addr        string
	maxConns    int
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Cart-Token"},
		ExposedHeaders:   []string{"Link", "X-Cart-Token"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public storefront
		r.Route("/products", func(r chi.Router) {
			r.Get("/", app.listProductsHandler)
			r.Get("/{slug}", app.getProductDetailHandler)
		})
		r.Get("/brands", app.listBrandsHandler)
		r.Get("/categories", app.listCategoriesHandler)
		r.Get("/shipping/quote", app.shippingQuoteHandler)

		// Guest cart, keyed by the X-Cart-Token header
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", app.getCartHandler)
			r.Post("/items", app.addCartItemHandler)
			r.Patch("/items", app.updateCartItemHandler)
			r.Delete("/items", app.removeCartItemHandler)
			r.Delete("/", app.clearCartHandler)
		})

		r.Post("/checkout", app.checkoutHandler)

		// Back-office authentication
		r.Post("/authentication/token", app.createTokenHandler)

		// Back office
		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AdminAuthMiddleware)

			r.Route("/brands", func(r chi.Router) {
				r.Get("/", app.adminListBrandsHandler)
				r.Post("/", app.createBrandHandler)
				r.Patch("/{brandID}", app.updateBrandHandler)
				r.Delete("/{brandID}", app.deleteBrandHandler)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", app.adminListCategoriesHandler)
				r.Post("/", app.createCategoryHandler)
				r.Patch("/{categoryID}", app.updateCategoryHandler)
				r.Delete("/{categoryID}", app.deleteCategoryHandler)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", app.adminListProductsHandler)
				r.Post("/", app.createProductHandler)
				r.Get("/export", app.exportProductsHandler)
				r.Post("/import", app.importProductsHandler)

				r.Route("/{productID}", func(r chi.Router) {
					r.Get("/", app.adminGetProductHandler)
					r.Patch("/", app.updateProductHandler)
					r.Delete("/", app.deleteProductHandler)
					r.Post("/images", app.uploadProductImageHandler)
					r.Delete("/images", app.deleteProductImageHandler)
					r.Get("/variants", app.listVariantsByProductHandler)
					r.Post("/variants", app.createVariantHandler)
				})
			})

			r.Route("/variants/{variantID}", func(r chi.Router) {
				r.Patch("/", app.updateVariantHandler)
				r.Delete("/", app.deleteVariantHandler)
			})

			r.Route("/shipping-zones", func(r chi.Router) {
				r.Get("/", app.listShippingZonesHandler)
				r.Post("/", app.createShippingZoneHandler)
				r.Patch("/{zoneID}", app.updateShippingZoneHandler)
				r.Delete("/{zoneID}", app.deleteShippingZoneHandler)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", app.adminListOrdersHandler)
				r.Route("/{orderID}", func(r chi.Router) {
					r.Get("/", app.adminGetOrderHandler)
					r.Patch("/status", app.adminUpdateOrderStatusHandler)
					r.Post("/accept", app.adminAcceptOrderHandler)
					r.Post("/cancel", app.adminCancelOrderHandler)
					r.Patch("/verify", app.adminVerifyOrderHandler)
					r.Get("/invoice", app.adminOrderInvoiceHandler)
					r.Delete("/", app.adminDeleteOrderHandler)
				})
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
	}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
