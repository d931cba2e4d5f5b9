package blur

import "errors"

var (
	ErrOriginalMissing   = errors.New("original photo bytes are missing")
	ErrUnsupportedImage  = errors.New("photo cannot be decoded for blurring")
	ErrDerivationTimeout = errors.New("blur derivation timed out")
	ErrDerivationFailed  = errors.New("blur derivation failed")
)

// IsDerivationError reports whether err belongs to the derivation
// failure family. Callers must surface these instead of falling back
// to the original bytes.
func IsDerivationError(err error) bool {
	return errors.Is(err, ErrOriginalMissing) ||
		errors.Is(err, ErrUnsupportedImage) ||
		errors.Is(err, ErrDerivationTimeout) ||
		errors.Is(err, ErrDerivationFailed)
}
