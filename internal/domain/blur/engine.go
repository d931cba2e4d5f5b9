package blur

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/matchpix/matchpix-api/internal/pkg/imaging"
	"github.com/matchpix/matchpix-api/internal/pkg/storage"
)

// Transformer applies a blur with the given sigma and returns the
// re-encoded bytes plus their content type
type Transformer interface {
	Blur(data []byte, sigma float64) ([]byte, string, error)
}

// Rendition is a derived blurred artifact
type Rendition struct {
	Key         string
	Bytes       []byte
	ContentType string
}

// Engine lazily derives and caches blurred renditions. Derived bytes
// live in object storage under a key deterministic in
// (photoID, intensity); concurrent derivations for the same key
// collapse into one.
type Engine struct {
	store       storage.Storage
	transformer Transformer
	timeout     time.Duration
	group       singleflight.Group
}

// NewEngine creates a blur derivation engine. timeout bounds a single
// derivation; zero means no bound.
func NewEngine(store storage.Storage, transformer Transformer, timeout time.Duration) *Engine {
	return &Engine{
		store:       store,
		transformer: transformer,
		timeout:     timeout,
	}
}

// Key returns the deterministic storage key for a derived rendition
func Key(photoID uuid.UUID, intensity float64) string {
	return fmt.Sprintf("derived/%s/blur_%s.jpg", photoID, strconv.FormatFloat(intensity, 'f', -1, 64))
}

// GetOrCreate returns the blurred rendition for (photoID, intensity),
// deriving it from the original at originalKey on first demand.
// Failures are never cached and never substitute the original bytes.
func (e *Engine) GetOrCreate(ctx context.Context, photoID uuid.UUID, originalKey string, intensity float64) (*Rendition, error) {
	key := Key(photoID, intensity)

	// Fast path: already materialized, reads are freely concurrent
	if rendition, err := e.read(ctx, key); err == nil {
		return rendition, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrDerivationFailed, err)
	}

	v, err, _ := e.group.Do(key, func() (interface{}, error) {
		// Another caller may have materialized it while we queued
		if rendition, err := e.read(ctx, key); err == nil {
			return rendition, nil
		}
		return e.derive(ctx, key, originalKey, intensity)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Rendition), nil
}

// Invalidate evicts the cached rendition for (photoID, intensity).
// Called when the policy's intensity or the original bytes change.
func (e *Engine) Invalidate(ctx context.Context, photoID uuid.UUID, intensity float64) error {
	key := Key(photoID, intensity)
	if err := e.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to evict blurred rendition %s: %w", key, err)
	}
	log.Debug().Str("key", key).Msg("Evicted blurred rendition")
	return nil
}

// Exists reports whether a rendition is already materialized
func (e *Engine) Exists(ctx context.Context, photoID uuid.UUID, intensity float64) (bool, error) {
	return e.store.Exists(ctx, Key(photoID, intensity))
}

func (e *Engine) read(ctx context.Context, key string) (*Rendition, error) {
	reader, err := e.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	return &Rendition{
		Key:         key,
		Bytes:       data,
		ContentType: imaging.BlurredContentType,
	}, nil
}

func (e *Engine) derive(ctx context.Context, key, originalKey string, intensity float64) (*Rendition, error) {
	// Detach from the winning caller's cancellation: the result is
	// shared by every waiter. The engine timeout still bounds the work.
	deriveCtx := context.WithoutCancel(ctx)
	if e.timeout > 0 {
		var cancel context.CancelFunc
		deriveCtx, cancel = context.WithTimeout(deriveCtx, e.timeout)
		defer cancel()
	}

	start := time.Now()

	reader, err := e.store.Get(deriveCtx, originalKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOriginalMissing, originalKey)
		}
		return nil, fmt.Errorf("%w: %v", ErrDerivationFailed, err)
	}
	original, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDerivationFailed, err)
	}

	blurred, contentType, err := e.transform(deriveCtx, original, intensity)
	if err != nil {
		return nil, err
	}

	if err := e.store.Put(deriveCtx, key, bytes.NewReader(blurred), contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDerivationFailed, err)
	}

	log.Info().
		Str("key", key).
		Float64("intensity", intensity).
		Int("bytes", len(blurred)).
		Dur("duration", time.Since(start)).
		Msg("Derived blurred rendition")

	return &Rendition{
		Key:         key,
		Bytes:       blurred,
		ContentType: contentType,
	}, nil
}

// transform runs the CPU-bound blur in its own goroutine so the
// derivation timeout also covers the transform, not just storage I/O
func (e *Engine) transform(ctx context.Context, original []byte, intensity float64) ([]byte, string, error) {
	type result struct {
		data        []byte
		contentType string
		err         error
	}

	done := make(chan result, 1)
	go func() {
		data, contentType, err := e.transformer.Blur(original, intensity)
		done <- result{data, contentType, err}
	}()

	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("%w after %s", ErrDerivationTimeout, e.timeout)
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, imaging.ErrUnsupportedImage) {
				return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, res.err)
			}
			return nil, "", fmt.Errorf("%w: %v", ErrDerivationFailed, res.err)
		}
		return res.data, res.contentType, nil
	}
}
