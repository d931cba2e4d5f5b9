package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrInvalidMimeType = errors.New("file type not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// MaxPhotoSize is the upload size limit for photos (10 MB)
const MaxPhotoSize int64 = 10 * 1024 * 1024

// AllowedPhotoMimeTypes lists content types accepted for photo uploads
var AllowedPhotoMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
}

// ValidatePhoto validates photo bytes by size and sniffed MIME type.
// Returns the detected content type.
func ValidatePhoto(reader io.Reader, maxSize int64) ([]byte, string, error) {
	// Read into buffer (limited to maxSize + 1 to detect oversized files)
	limitedReader := io.LimitReader(reader, maxSize+1)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil, "", ErrEmptyFile
	}

	if int64(len(data)) > maxSize {
		return nil, "", ErrFileTooLarge
	}

	// Detect MIME type from content (magic bytes)
	mimeType := http.DetectContentType(data)
	// Clean up MIME type (e.g., "image/jpeg; charset=utf-8" -> "image/jpeg")
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}

	allowed := false
	for _, t := range AllowedPhotoMimeTypes {
		if t == mimeType {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, "", ErrInvalidMimeType
	}

	return data, mimeType, nil
}

// GetExtensionForMime returns the file extension for a MIME type
func GetExtensionForMime(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}
