package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// NewRouter assembles the HTTP surface. The country lookup may be nil when no
// GeoIP database is configured.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
		middleware.I18N("en", lookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/providers", app.Providers)
	r.Get("/v1/dispatches", app.DispatchLog)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
		r.Post("/v1/images/generate", app.ImagesGenerate)
		r.Post("/v1/images/analyze", app.ImagesAnalyze)
	})

	r.Get("/static/*", app.ServeAsset)

	return r
}
