package blur

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matchpix/matchpix-api/internal/pkg/imaging"
	"github.com/matchpix/matchpix-api/internal/pkg/storage"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.puts++
	return nil
}

func (m *memStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memStore) GetURL(key string) string { return "https://cdn.test/" + key }

func (m *memStore) GetInfo(ctx context.Context, key string) (*storage.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.FileInfo{Key: key, Size: int64(len(data))}, nil
}

// countingTransformer wraps the real processor and counts Blur calls
type countingTransformer struct {
	inner Transformer
	calls int64
	block chan struct{} // when set, Blur waits until closed
}

func (c *countingTransformer) Blur(data []byte, sigma float64) ([]byte, string, error) {
	atomic.AddInt64(&c.calls, 1)
	if c.block != nil {
		<-c.block
	}
	return c.inner.Blur(data, sigma)
}

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func seedOriginal(t *testing.T, store *memStore) string {
	t.Helper()
	key := "photos/owner/original.png"
	if err := store.Put(context.Background(), key, bytes.NewReader(testImage(t)), "image/png"); err != nil {
		t.Fatalf("failed to seed original: %v", err)
	}
	return key
}

func TestKey_Deterministic(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	got := Key(id, 15)
	want := "derived/11111111-2222-3333-4444-555555555555/blur_15.jpg"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	// Fractional intensities keep their precision, no trailing zeros
	if got := Key(id, 2.5); got != "derived/11111111-2222-3333-4444-555555555555/blur_2.5.jpg" {
		t.Errorf("unexpected fractional key %s", got)
	}
	if Key(id, 15) != Key(id, 15.0) {
		t.Error("equal intensities must map to the same key")
	}
}

func TestGetOrCreate_DerivesOnceAndCaches(t *testing.T) {
	store := newMemStore()
	originalKey := seedOriginal(t, store)
	transformer := &countingTransformer{inner: imaging.NewProcessor(imaging.DefaultConfig())}
	engine := NewEngine(store, transformer, 10*time.Second)
	photoID := uuid.New()

	first, err := engine.GetOrCreate(context.Background(), photoID, originalKey, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ContentType != imaging.BlurredContentType {
		t.Errorf("expected %s, got %s", imaging.BlurredContentType, first.ContentType)
	}
	if len(first.Bytes) == 0 {
		t.Fatal("expected blurred bytes")
	}

	second, err := engine.GetOrCreate(context.Background(), photoID, originalKey, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if atomic.LoadInt64(&transformer.calls) != 1 {
		t.Errorf("expected exactly one transform, got %d", transformer.calls)
	}
	if !bytes.Equal(first.Bytes, second.Bytes) {
		t.Error("repeated reads must return byte-identical renditions")
	}

	exists, err := engine.Exists(context.Background(), photoID, 15)
	if err != nil || !exists {
		t.Errorf("rendition must be materialized, exists=%v err=%v", exists, err)
	}
}

func TestGetOrCreate_DistinctIntensitiesAreDistinctEntries(t *testing.T) {
	store := newMemStore()
	originalKey := seedOriginal(t, store)
	engine := NewEngine(store, imaging.NewProcessor(imaging.DefaultConfig()), 10*time.Second)
	photoID := uuid.New()

	light, err := engine.GetOrCreate(context.Background(), photoID, originalKey, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	heavy, err := engine.GetOrCreate(context.Background(), photoID, originalKey, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if light.Key == heavy.Key {
		t.Error("different intensities must use different keys")
	}
	if bytes.Equal(light.Bytes, heavy.Bytes) {
		t.Error("different intensities must produce different bytes")
	}
}

func TestGetOrCreate_ConcurrentCallersCollapse(t *testing.T) {
	store := newMemStore()
	originalKey := seedOriginal(t, store)
	transformer := &countingTransformer{
		inner: imaging.NewProcessor(imaging.DefaultConfig()),
		block: make(chan struct{}),
	}
	engine := NewEngine(store, transformer, 10*time.Second)
	photoID := uuid.New()

	const callers = 8
	results := make([]*Rendition, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.GetOrCreate(context.Background(), photoID, originalKey, 15)
		}(i)
	}

	// Let every caller reach the singleflight barrier, then release
	time.Sleep(50 * time.Millisecond)
	close(transformer.block)
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if !bytes.Equal(results[i].Bytes, results[0].Bytes) {
			t.Errorf("caller %d received different bytes", i)
		}
	}
	if got := atomic.LoadInt64(&transformer.calls); got != 1 {
		t.Errorf("expected one transform across %d callers, got %d", callers, got)
	}
}

func TestGetOrCreate_MissingOriginal(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, imaging.NewProcessor(imaging.DefaultConfig()), 10*time.Second)

	_, err := engine.GetOrCreate(context.Background(), uuid.New(), "photos/missing.png", 15)

	if !errors.Is(err, ErrOriginalMissing) {
		t.Fatalf("expected ErrOriginalMissing, got %v", err)
	}
	if !IsDerivationError(err) {
		t.Error("missing original must be a derivation error")
	}
}

func TestGetOrCreate_CorruptOriginalNotCached(t *testing.T) {
	store := newMemStore()
	key := "photos/owner/corrupt.png"
	if err := store.Put(context.Background(), key, bytes.NewReader([]byte("garbage")), "image/png"); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	engine := NewEngine(store, imaging.NewProcessor(imaging.DefaultConfig()), 10*time.Second)
	photoID := uuid.New()

	_, err := engine.GetOrCreate(context.Background(), photoID, key, 15)
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}

	// The failure must not be materialized
	exists, _ := engine.Exists(context.Background(), photoID, 15)
	if exists {
		t.Error("failed derivation must not leave a cache entry")
	}

	// And the next call fails again rather than serving stale state
	if _, err := engine.GetOrCreate(context.Background(), photoID, key, 15); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected repeat failure, got %v", err)
	}
}

func TestGetOrCreate_Timeout(t *testing.T) {
	store := newMemStore()
	originalKey := seedOriginal(t, store)
	transformer := &countingTransformer{
		inner: imaging.NewProcessor(imaging.DefaultConfig()),
		block: make(chan struct{}), // never closed before timeout
	}
	engine := NewEngine(store, transformer, 30*time.Millisecond)
	photoID := uuid.New()

	done := make(chan error, 1)
	go func() {
		_, err := engine.GetOrCreate(context.Background(), photoID, originalKey, 15)
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrDerivationTimeout) {
			t.Fatalf("expected ErrDerivationTimeout, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("derivation did not time out")
	}
	close(transformer.block)
}

func TestInvalidate_EvictsRendition(t *testing.T) {
	store := newMemStore()
	originalKey := seedOriginal(t, store)
	transformer := &countingTransformer{inner: imaging.NewProcessor(imaging.DefaultConfig())}
	engine := NewEngine(store, transformer, 10*time.Second)
	photoID := uuid.New()

	if _, err := engine.GetOrCreate(context.Background(), photoID, originalKey, 15); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := engine.Invalidate(context.Background(), photoID, 15); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exists, _ := engine.Exists(context.Background(), photoID, 15)
	if exists {
		t.Error("rendition must be gone after invalidation")
	}

	// Next read re-derives
	if _, err := engine.GetOrCreate(context.Background(), photoID, originalKey, 15); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt64(&transformer.calls); got != 2 {
		t.Errorf("expected re-derivation after invalidation, got %d transforms", got)
	}
}

func TestInvalidate_AbsentRenditionIsNoOp(t *testing.T) {
	engine := NewEngine(newMemStore(), imaging.NewProcessor(imaging.DefaultConfig()), time.Second)

	if err := engine.Invalidate(context.Background(), uuid.New(), 15); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
