package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"donatello/internal/http/handlers"
	"donatello/internal/infra/geoip"
	"donatello/internal/middleware"
)

// Options carries the router-level configuration that does not belong on
// the handler container.
type Options struct {
	AllowedOrigins []string
	DefaultLocale  string
	AuthRatePerMin int
	StaticDir      string
}

// NewRouter builds the full route table with its middleware stack.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.Locale(opts.DefaultLocale, app.GeoCountry, geoip.SpanishSpeaking),
	)

	r.Get("/healthz", app.Health)

	r.Route("/auth", func(r chi.Router) {
		if opts.AuthRatePerMin > 0 {
			r.Use(middleware.RateLimit(opts.AuthRatePerMin, time.Minute))
		}
		r.Post("/register", app.Register)
		r.Post("/login", app.Login)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.JWTSecret))
		r.Get("/me", app.Me)
		r.Put("/me", app.UpdateMe)
	})

	r.Route("/listings", func(r chi.Router) {
		// Browsing is public; everything that mutates or reveals
		// applicants requires an authenticated actor.
		r.Get("/", app.ListingsList)
		r.Get("/{id}", app.ListingsGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(app.JWTSecret))
			r.Post("/", app.ListingsCreate)
			r.Put("/{id}", app.ListingsUpdate)
			r.Delete("/{id}", app.ListingsDelete)
			r.Get("/{id}/applicants", app.ListingsApplicants)
			r.Post("/{id}/match", app.ListingsMatch)
			r.Post("/{id}/photos", app.ListingsPhotoUpload)
		})
	})

	r.Route("/donations", func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.JWTSecret))
		r.Get("/", app.DonationsList)
		r.Patch("/{id}/accept", app.DonationsAccept)
		r.Patch("/{id}/deliver", app.DonationsDeliver)
		r.Delete("/{id}", app.DonationsWithdraw)
	})

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
