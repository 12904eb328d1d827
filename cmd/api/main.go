package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"donatello/internal/adapter/repo"
	"donatello/internal/http/handlers"
	"donatello/internal/http/httpapi"
	"donatello/internal/infra"
	"donatello/internal/infra/geoip"
	"donatello/internal/match"
	"donatello/internal/middleware"
	"donatello/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	photos, err := storage.NewPhotoStore(cfg.PhotoStorageDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init photo storage")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	listings := repo.NewListingRepository(dbpool)
	donations := repo.NewDonationRepository(dbpool)
	users := repo.NewUserRepository(dbpool)

	app := &handlers.App{
		Users:        users,
		Listings:     listings,
		Match:        match.New(listings, donations),
		Photos:       photos,
		PhotoBaseURL: cfg.PhotoBaseURL,
		GeoCountry:   lookup,
		Logger:       logger,
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
		AuthRatePerMin: cfg.AuthRatePerMin,
		StaticDir:      photos.BasePath(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
