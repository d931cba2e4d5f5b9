package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/matchpix/matchpix-api/internal/config"
	"github.com/matchpix/matchpix-api/internal/domain/blur"
	"github.com/matchpix/matchpix-api/internal/domain/photo"
	"github.com/matchpix/matchpix-api/internal/pkg/database"
	"github.com/matchpix/matchpix-api/internal/pkg/imaging"
	"github.com/matchpix/matchpix-api/internal/pkg/logger"
	"github.com/matchpix/matchpix-api/internal/pkg/storage"
)

const dequeueTimeout = 5 * time.Second

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().Msg("Starting blur-worker")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	if rdb == nil {
		log.Fatal().Msg("blur-worker requires Redis (set REDIS_URL)")
	}

	store, err := newStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage backend")
	}

	processor := imaging.NewProcessor(imaging.Config{Quality: cfg.JPEGQuality})
	engine := blur.NewEngine(store, processor, cfg.BlurTimeout)
	queue := blur.NewQueue(rdb)
	photoRepo := photo.NewRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	for {
		if ctx.Err() != nil {
			log.Info().Msg("blur-worker stopped")
			return
		}

		photoID, err := queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if errors.Is(err, blur.ErrQueueEmpty) || errors.Is(err, context.Canceled) {
				continue
			}
			log.Error().Err(err).Msg("Dequeue failed")
			time.Sleep(time.Second)
			continue
		}

		start := time.Now()
		if err := warmOne(ctx, photoRepo, engine, photoID); err != nil {
			log.Error().
				Err(err).
				Str("photo_id", photoID.String()).
				Msg("Pre-warm failed")
			continue
		}

		log.Info().
			Str("photo_id", photoID.String()).
			Dur("took", time.Since(start)).
			Msg("Blurred rendition pre-warmed")
	}
}

func warmOne(ctx context.Context, repo photo.Repository, engine *blur.Engine, photoID uuid.UUID) error {
	p, err := repo.GetByID(ctx, photoID)
	if err != nil {
		return err
	}
	if p == nil {
		// Deleted or never existed; nothing to warm
		log.Warn().Str("photo_id", photoID.String()).Msg("Queued photo not found, skipping")
		return nil
	}
	if !p.PrivacyLevel.Restricted() {
		// Policy changed to Public after enqueue
		return nil
	}

	rendition, err := engine.GetOrCreate(ctx, p.ID, p.Key, p.BlurIntensity)
	if err != nil {
		return err
	}

	return repo.SetBlurredKey(ctx, p.ID, rendition.Key)
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
