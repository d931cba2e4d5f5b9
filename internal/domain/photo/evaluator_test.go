package photo

import (
	"testing"

	"github.com/google/uuid"
)

func TestEvaluate_OwnerAlwaysSeesOriginal(t *testing.T) {
	owner := uuid.New()
	policy := Policy{Level: PrivacyMatchOnly, BlurIntensity: 25, RequiresMatch: true}

	decision := Evaluate(policy, ViewerContext{ViewerUserID: owner, IsOwner: true})

	if decision.Rendition != RenditionOriginal {
		t.Errorf("owner got %s, want original", decision.Rendition)
	}
	if !decision.CanViewOriginal {
		t.Error("owner must have canViewOriginal")
	}
}

func TestEvaluate_PublicServesOriginalToAnyone(t *testing.T) {
	// Even a hostile-looking policy cannot blur a Public photo
	policy := Policy{Level: PrivacyPublic, BlurIntensity: 50, RequiresMatch: true, AllowVIPAccess: false}

	decision := Evaluate(policy, ViewerContext{ViewerUserID: uuid.New()})

	if decision.Rendition != RenditionOriginal {
		t.Errorf("public photo got %s, want original", decision.Rendition)
	}
}

func TestEvaluate_NoMatchRequiredUnlocks(t *testing.T) {
	policy := Policy{Level: PrivacyPrivate, BlurIntensity: 15, RequiresMatch: false}

	// Regardless of match or VIP state
	for _, viewer := range []ViewerContext{
		{ViewerUserID: uuid.New()},
		{ViewerUserID: uuid.New(), HasMatch: true},
		{ViewerUserID: uuid.New(), IsVIP: true},
	} {
		decision := Evaluate(policy, viewer)
		if decision.Rendition != RenditionOriginal {
			t.Errorf("viewer %+v got %s, want original", viewer, decision.Rendition)
		}
	}
}

func TestEvaluate_MatchUnlocks(t *testing.T) {
	policy := Policy{Level: PrivacyPrivate, BlurIntensity: 15, RequiresMatch: true}

	decision := Evaluate(policy, ViewerContext{ViewerUserID: uuid.New(), HasMatch: true})

	if decision.Rendition != RenditionOriginal {
		t.Errorf("matched viewer got %s, want original", decision.Rendition)
	}
}

func TestEvaluate_VIPUnlocksOnlyWhenAllowed(t *testing.T) {
	vip := ViewerContext{ViewerUserID: uuid.New(), IsVIP: true}

	allowed := Policy{Level: PrivacyMatchOnly, BlurIntensity: 25, RequiresMatch: true, AllowVIPAccess: true}
	if d := Evaluate(allowed, vip); d.Rendition != RenditionOriginal {
		t.Errorf("VIP with allowVIPAccess got %s, want original", d.Rendition)
	}

	denied := Policy{Level: PrivacyMatchOnly, BlurIntensity: 25, RequiresMatch: true, AllowVIPAccess: false}
	if d := Evaluate(denied, vip); d.Rendition != RenditionBlurred {
		t.Errorf("VIP without allowVIPAccess got %s, want blurred", d.Rendition)
	}
}

func TestEvaluate_StrangerGetsBlurred(t *testing.T) {
	policy := Policy{Level: PrivacyPrivate, BlurIntensity: 15, RequiresMatch: true}

	decision := Evaluate(policy, ViewerContext{ViewerUserID: uuid.New()})

	if decision.Rendition != RenditionBlurred {
		t.Errorf("stranger got %s, want blurred", decision.Rendition)
	}
	if decision.CanViewOriginal {
		t.Error("blurred decision must not set canViewOriginal")
	}
	if decision.Message == "" {
		t.Error("blurred decision must carry a privacy message")
	}
}

// VIP status can only widen access: for any policy and viewer, turning
// IsVIP on never downgrades the rendition.
func TestEvaluate_VIPIsMonotonic(t *testing.T) {
	levels := []PrivacyLevel{PrivacyPublic, PrivacyPrivate, PrivacyMatchOnly}
	bools := []bool{false, true}

	for _, level := range levels {
		for _, requiresMatch := range bools {
			for _, allowVIP := range bools {
				for _, hasMatch := range bools {
					policy := Policy{Level: level, BlurIntensity: 15, RequiresMatch: requiresMatch, AllowVIPAccess: allowVIP}
					viewer := ViewerContext{ViewerUserID: uuid.New(), HasMatch: hasMatch}

					before := Evaluate(policy, viewer)
					viewer.IsVIP = true
					after := Evaluate(policy, viewer)

					if before.Rendition == RenditionOriginal && after.Rendition != RenditionOriginal {
						t.Errorf("VIP downgraded access for policy %+v hasMatch=%v", policy, hasMatch)
					}
				}
			}
		}
	}
}

func TestEvaluate_PrivateAndMatchOnlyBehaveIdentically(t *testing.T) {
	bools := []bool{false, true}

	for _, requiresMatch := range bools {
		for _, allowVIP := range bools {
			for _, hasMatch := range bools {
				for _, isVIP := range bools {
					viewer := ViewerContext{ViewerUserID: uuid.New(), HasMatch: hasMatch, IsVIP: isVIP}

					private := Evaluate(Policy{Level: PrivacyPrivate, BlurIntensity: 15, RequiresMatch: requiresMatch, AllowVIPAccess: allowVIP}, viewer)
					matchOnly := Evaluate(Policy{Level: PrivacyMatchOnly, BlurIntensity: 15, RequiresMatch: requiresMatch, AllowVIPAccess: allowVIP}, viewer)

					if private.Rendition != matchOnly.Rendition {
						t.Errorf("tiers diverged: requiresMatch=%v allowVIP=%v hasMatch=%v isVIP=%v: Private=%s MatchOnly=%s",
							requiresMatch, allowVIP, hasMatch, isVIP, private.Rendition, matchOnly.Rendition)
					}
				}
			}
		}
	}
}

func TestEvaluate_PrivateUploadScenario(t *testing.T) {
	policy := Policy{Level: PrivacyPrivate, BlurIntensity: 15, RequiresMatch: true, AllowVIPAccess: false}

	stranger := Evaluate(policy, ViewerContext{ViewerUserID: uuid.New()})
	if stranger.Rendition != RenditionBlurred {
		t.Errorf("unmatched viewer got %s, want blurred", stranger.Rendition)
	}

	matched := Evaluate(policy, ViewerContext{ViewerUserID: uuid.New(), HasMatch: true})
	if matched.Rendition != RenditionOriginal {
		t.Errorf("matched viewer got %s, want original", matched.Rendition)
	}
}

func TestEvaluate_UpdatedToVIPAccessibleScenario(t *testing.T) {
	policy := Policy{Level: PrivacyMatchOnly, BlurIntensity: 25, RequiresMatch: true, AllowVIPAccess: true}

	vip := Evaluate(policy, ViewerContext{ViewerUserID: uuid.New(), IsVIP: true})
	if vip.Rendition != RenditionOriginal {
		t.Errorf("VIP viewer got %s, want original after VIP access enabled", vip.Rendition)
	}

	stranger := Evaluate(policy, ViewerContext{ViewerUserID: uuid.New()})
	if stranger.Rendition != RenditionBlurred {
		t.Errorf("non-VIP stranger got %s, want blurred", stranger.Rendition)
	}
}
