package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedImage is returned when bytes cannot be decoded as an image
var ErrUnsupportedImage = errors.New("unsupported or corrupt image")

// BlurredContentType is the content type of every derived rendition.
// Blurred output is always normalized to JPEG so that a given
// (photo, intensity) pair produces a stable, cacheable artifact.
const BlurredContentType = "image/jpeg"

// Config for image processing
type Config struct {
	Quality int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		Quality: 85,
	}
}

// Processor applies blur transforms to photo bytes
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Blur decodes the original bytes, applies a Gaussian blur with the
// given sigma and re-encodes as JPEG. Deterministic: identical inputs
// produce identical output bytes.
func (p *Processor) Blur(data []byte, sigma float64) ([]byte, string, error) {
	if sigma <= 0 {
		return nil, "", fmt.Errorf("blur sigma must be positive, got %v", sigma)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	blurred := imaging.Blur(img, sigma)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, blurred, &jpeg.Options{Quality: p.config.Quality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode blurred image: %w", err)
	}

	return buf.Bytes(), BlurredContentType, nil
}

// Probe decodes image metadata without transforming. Used to validate
// uploads before they are stored.
func Probe(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// ValidateType checks if file has a valid image extension
func ValidateType(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	default:
		return false
	}
}

// MimeFromFormat maps an image format name to its content type
func MimeFromFormat(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
