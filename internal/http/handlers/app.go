package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"donatello/internal/domain"
	"donatello/internal/match"
	"donatello/internal/middleware"
	"donatello/internal/storage"
)

// App bundles the dependencies shared by every handler.
type App struct {
	Users    domain.UserRepository
	Listings domain.ListingRepository
	Match    *match.Service

	Photos       *storage.PhotoStore
	PhotoBaseURL string

	// GeoCountry, when set, backs the location default for new listings
	// and the locale fallback. Nil disables both hints.
	GeoCountry middleware.CountryLookup

	Logger    zerolog.Logger
	JWTSecret string
	TokenTTL  time.Duration
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
