package photo

import "github.com/google/uuid"

// Rendition names which version of a photo a viewer receives
type Rendition string

const (
	RenditionOriginal Rendition = "original"
	RenditionBlurred  Rendition = "blurred"
	// RenditionDenied is reserved for error paths (derivation failure,
	// missing photo); the decision table below never produces it.
	RenditionDenied Rendition = "denied"
)

// ViewerContext holds the per-request relationship facts about a
// viewer. It is built from the relationships collaborator and never
// persisted.
type ViewerContext struct {
	ViewerUserID uuid.UUID
	IsOwner      bool
	HasMatch     bool
	IsVIP        bool
}

// Decision is the evaluator's verdict for one (policy, viewer) pair
type Decision struct {
	Rendition       Rendition
	CanViewOriginal bool
	Message         string
}

// Evaluate decides which rendition a viewer receives. Rules are
// checked in precedence order; the first match wins:
//
//  1. owner always sees the original
//  2. Public tier always serves the original
//  3. a policy that does not require a match serves the original
//  4. a mutual match unlocks the original
//  5. VIP status unlocks the original when the policy allows it
//  6. otherwise the blurred rendition is served
//
// VIP is checked only after a genuine match fails: it can unlock, never
// block, and never stands in for a match.
func Evaluate(policy Policy, viewer ViewerContext) Decision {
	if viewer.IsOwner {
		return granted("Owner view")
	}
	if policy.Level == PrivacyPublic {
		return granted("This photo is public")
	}
	if !policy.RequiresMatch {
		return granted("No match required for this photo")
	}
	if viewer.HasMatch {
		return granted("Unlocked by match")
	}
	if policy.AllowVIPAccess && viewer.IsVIP {
		return granted("Unlocked by VIP status")
	}

	return Decision{
		Rendition:       RenditionBlurred,
		CanViewOriginal: false,
		Message:         blurredMessage(policy),
	}
}

func granted(message string) Decision {
	return Decision{
		Rendition:       RenditionOriginal,
		CanViewOriginal: true,
		Message:         message,
	}
}

func blurredMessage(policy Policy) string {
	if policy.Level == PrivacyMatchOnly {
		return "This photo is only visible to matches. Match with the owner to view the original."
	}
	return "This photo is private. Match with the owner to view the original."
}
