package storage

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	return buf.Bytes()
}

func TestValidatePhoto_AcceptsPNG(t *testing.T) {
	data := pngBytes(t)

	got, mimeType, err := ValidatePhoto(bytes.NewReader(data), MaxPhotoSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mimeType != "image/png" {
		t.Errorf("expected image/png, got %s", mimeType)
	}
	if !bytes.Equal(got, data) {
		t.Error("returned bytes must match input")
	}
}

func TestValidatePhoto_RejectsEmpty(t *testing.T) {
	_, _, err := ValidatePhoto(bytes.NewReader(nil), MaxPhotoSize)

	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestValidatePhoto_RejectsOversized(t *testing.T) {
	data := pngBytes(t)

	_, _, err := ValidatePhoto(bytes.NewReader(data), int64(len(data)-1))

	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestValidatePhoto_RejectsNonImage(t *testing.T) {
	_, _, err := ValidatePhoto(bytes.NewReader([]byte("plain text payload")), MaxPhotoSize)

	if !errors.Is(err, ErrInvalidMimeType) {
		t.Fatalf("expected ErrInvalidMimeType, got %v", err)
	}
}

func TestGetExtensionForMime(t *testing.T) {
	cases := map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
		"text/plain": "",
	}
	for mime, want := range cases {
		if got := GetExtensionForMime(mime); got != want {
			t.Errorf("%s: got %q, want %q", mime, got, want)
		}
	}
}
