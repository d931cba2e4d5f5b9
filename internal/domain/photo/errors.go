package photo

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrPhotoNotFound    = errors.New("photo not found")
	ErrNotPhotoOwner    = errors.New("you can only manage your own photos")
	ErrNoBlurredVersion = errors.New("no blurred rendition exists for this photo")
	ErrPhotoRejected    = errors.New("photo removed by moderation")
)

// ValidationError carries field-level detail for malformed policy or
// upload input. The whole input is rejected; nothing is applied.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", k, e.Fields[k])
	}
	return b.String()
}
