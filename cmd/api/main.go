package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/matchpix/matchpix-api/internal/config"
	"github.com/matchpix/matchpix-api/internal/domain/blur"
	"github.com/matchpix/matchpix-api/internal/domain/photo"
	"github.com/matchpix/matchpix-api/internal/domain/relationships"
	"github.com/matchpix/matchpix-api/internal/middleware"
	"github.com/matchpix/matchpix-api/internal/pkg/database"
	"github.com/matchpix/matchpix-api/internal/pkg/imaging"
	"github.com/matchpix/matchpix-api/internal/pkg/jwt"
	"github.com/matchpix/matchpix-api/internal/pkg/logger"
	pkgresponse "github.com/matchpix/matchpix-api/internal/pkg/response"
	"github.com/matchpix/matchpix-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("storage", cfg.StorageBackend).
		Msg("Starting MatchPix API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	store, err := newStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage backend")
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	processor := imaging.NewProcessor(imaging.Config{Quality: cfg.JPEGQuality})
	blurEngine := blur.NewEngine(store, processor, cfg.BlurTimeout)
	blurQueue := blur.NewQueue(redis)

	// ---------- Repositories ----------
	photoRepo := photo.NewRepository(db)
	relationshipRepo := relationships.NewRepository(db)

	// ---------- Services ----------
	relationshipService := relationships.NewService(relationshipRepo)
	photoService := photo.NewService(photoRepo, store, blurEngine, relationshipService, blurQueue, photo.PolicyDefaults{
		BlurIntensity:    cfg.DefaultBlurIntensity,
		MaxBlurIntensity: cfg.MaxBlurIntensity,
	})

	// ---------- Handlers ----------
	photoHandler := photo.NewHandler(photoService)
	relationshipHandler := relationships.NewHandler(relationshipService)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	if cfg.StorageBackend == "local" {
		fileServer := http.StripPrefix("/files/", http.FileServer(http.Dir(cfg.LocalStoragePath)))
		r.Get("/files/*", fileServer.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/photos", photoHandler.Routes(authMiddleware))
		r.Mount("/matches", relationshipHandler.Routes(authMiddleware))
		r.Mount("/vip", relationshipHandler.VIPRoutes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case "s3":
		return storage.NewS3Storage(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		})
	case "r2":
		return storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
	default:
		return storage.NewLocalStorage(cfg.LocalStoragePath, cfg.LocalStorageURL)
	}
}
