package photo

import (
	"errors"
	"testing"
)

var testDefaults = PolicyDefaults{BlurIntensity: 10, MaxBlurIntensity: 100}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool      { return &b }

func TestNewPolicy_Defaults(t *testing.T) {
	policy, err := NewPolicy(PolicyInput{}, testDefaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if policy.Level != PrivacyPublic {
		t.Errorf("expected default level Public, got %s", policy.Level)
	}
	if policy.BlurIntensity != 10 {
		t.Errorf("expected default intensity 10, got %v", policy.BlurIntensity)
	}
	if policy.RequiresMatch {
		t.Error("expected requiresMatch to default to false")
	}
	if policy.AllowVIPAccess {
		t.Error("expected allowVIPAccess to default to false")
	}
}

func TestNewPolicy_AllFieldsSet(t *testing.T) {
	policy, err := NewPolicy(PolicyInput{
		PrivacyLevel:   strPtr("MatchOnly"),
		BlurIntensity:  f64Ptr(25),
		RequiresMatch:  boolPtr(true),
		AllowVIPAccess: boolPtr(true),
	}, testDefaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if policy.Level != PrivacyMatchOnly {
		t.Errorf("expected MatchOnly, got %s", policy.Level)
	}
	if policy.BlurIntensity != 25 {
		t.Errorf("expected intensity 25, got %v", policy.BlurIntensity)
	}
	if !policy.RequiresMatch || !policy.AllowVIPAccess {
		t.Error("expected both booleans set")
	}
}

func TestNewPolicy_EmptyLevelTakesDefault(t *testing.T) {
	policy, err := NewPolicy(PolicyInput{PrivacyLevel: strPtr("")}, testDefaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if policy.Level != PrivacyPublic {
		t.Errorf("expected Public for empty level, got %s", policy.Level)
	}
}

func TestNewPolicy_UnknownLevel(t *testing.T) {
	_, err := NewPolicy(PolicyInput{PrivacyLevel: strPtr("Secret")}, testDefaults)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := validationErr.Fields["privacyLevel"]; !ok {
		t.Errorf("expected privacyLevel field error, got %v", validationErr.Fields)
	}
}

func TestNewPolicy_InvalidIntensity(t *testing.T) {
	cases := []struct {
		name      string
		intensity float64
	}{
		{"zero", 0},
		{"negative", -5},
		{"above max", 150},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPolicy(PolicyInput{BlurIntensity: f64Ptr(tc.intensity)}, testDefaults)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := validationErr.Fields["blurIntensity"]; !ok {
				t.Errorf("expected blurIntensity field error, got %v", validationErr.Fields)
			}
		})
	}
}

func TestNewPolicy_RejectsAtomically(t *testing.T) {
	// Both fields invalid; both must be reported and nothing applied
	_, err := NewPolicy(PolicyInput{
		PrivacyLevel:  strPtr("Hidden"),
		BlurIntensity: f64Ptr(-1),
	}, testDefaults)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validationErr.Fields) != 2 {
		t.Errorf("expected 2 field errors, got %v", validationErr.Fields)
	}
}

func TestPolicyValidate_OrthogonalBooleans(t *testing.T) {
	for _, requiresMatch := range []bool{false, true} {
		for _, allowVIP := range []bool{false, true} {
			policy := Policy{
				Level:          PrivacyPrivate,
				BlurIntensity:  15,
				RequiresMatch:  requiresMatch,
				AllowVIPAccess: allowVIP,
			}
			if err := policy.Validate(100); err != nil {
				t.Errorf("requiresMatch=%v allowVIPAccess=%v rejected: %v", requiresMatch, allowVIP, err)
			}
		}
	}
}

func TestPrivacyLevel_Restricted(t *testing.T) {
	if PrivacyPublic.Restricted() {
		t.Error("Public must not be restricted")
	}
	if !PrivacyPrivate.Restricted() || !PrivacyMatchOnly.Restricted() {
		t.Error("Private and MatchOnly must be restricted")
	}
}
