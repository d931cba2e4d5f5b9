package photo

import "fmt"

// PrivacyLevel is the coarse privacy classification of a photo.
// Private and MatchOnly behave identically in the evaluator; the
// distinction is presentational (default seeding and messaging).
type PrivacyLevel string

const (
	PrivacyPublic    PrivacyLevel = "Public"
	PrivacyPrivate   PrivacyLevel = "Private"
	PrivacyMatchOnly PrivacyLevel = "MatchOnly"
)

// Valid reports whether the level is a known tier
func (l PrivacyLevel) Valid() bool {
	switch l {
	case PrivacyPublic, PrivacyPrivate, PrivacyMatchOnly:
		return true
	}
	return false
}

// Restricted reports whether the tier can ever serve a blurred
// rendition. Public photos never blur.
func (l PrivacyLevel) Restricted() bool {
	return l == PrivacyPrivate || l == PrivacyMatchOnly
}

// Policy is one photo's privacy configuration. It is replaced
// wholesale on update, never field by field.
type Policy struct {
	Level          PrivacyLevel `json:"privacyLevel"`
	BlurIntensity  float64      `json:"blurIntensity"`
	RequiresMatch  bool         `json:"requiresMatch"`
	AllowVIPAccess bool         `json:"allowVIPAccess"`
}

// PolicyInput is the loose request-shaped payload for upload and
// update. All fields are optional; omitted fields take the documented
// defaults. It is converted to a Policy once at the boundary and never
// passed around afterwards.
type PolicyInput struct {
	PrivacyLevel   *string  `json:"privacyLevel,omitempty" validate:"omitempty,privacy_level"`
	BlurIntensity  *float64 `json:"blurIntensity,omitempty"`
	RequiresMatch  *bool    `json:"requiresMatch,omitempty"`
	AllowVIPAccess *bool    `json:"allowVIPAccess,omitempty"`
}

// PolicyDefaults holds the injected defaults and bounds for policy
// construction. Loaded from config, not ambient state.
type PolicyDefaults struct {
	BlurIntensity    float64 // applied when blurIntensity is omitted
	MaxBlurIntensity float64 // upper bound for accepted intensities
}

// NewPolicy builds a Policy from request input.
// Defaults: Public tier, configured blur intensity, requiresMatch
// false, allowVIPAccess false. Returns a *ValidationError if any field
// fails validation; nothing is partially applied.
func NewPolicy(input PolicyInput, defaults PolicyDefaults) (Policy, error) {
	policy := Policy{
		Level:          PrivacyPublic,
		BlurIntensity:  defaults.BlurIntensity,
		RequiresMatch:  false,
		AllowVIPAccess: false,
	}

	if input.PrivacyLevel != nil && *input.PrivacyLevel != "" {
		policy.Level = PrivacyLevel(*input.PrivacyLevel)
	}
	if input.BlurIntensity != nil {
		policy.BlurIntensity = *input.BlurIntensity
	}
	if input.RequiresMatch != nil {
		policy.RequiresMatch = *input.RequiresMatch
	}
	if input.AllowVIPAccess != nil {
		policy.AllowVIPAccess = *input.AllowVIPAccess
	}

	if err := policy.Validate(defaults.MaxBlurIntensity); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

// Validate checks the full policy. requiresMatch and allowVIPAccess
// are orthogonal; any boolean combination is accepted.
func (p Policy) Validate(maxIntensity float64) error {
	fields := make(map[string]string)

	if !p.Level.Valid() {
		fields["privacyLevel"] = fmt.Sprintf("unknown privacy level %q", p.Level)
	}
	if p.BlurIntensity <= 0 {
		fields["blurIntensity"] = "blur intensity must be positive"
	} else if maxIntensity > 0 && p.BlurIntensity > maxIntensity {
		fields["blurIntensity"] = fmt.Sprintf("blur intensity must be at most %v", maxIntensity)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
