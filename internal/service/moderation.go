package service

import "poetryclub/internal/models"

// ReviewDecision is an admin's verdict on a pending poem.
type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "Approved"
	DecisionReject  ReviewDecision = "Rejected"
)

// NextStatusOnEdit returns the moderation status a poem should carry after an
// edit. Changing the content sends the poem back through review regardless of
// its current state; metadata-only edits keep the current verdict.
func NextStatusOnEdit(current models.PoemStatus, contentChanged bool) models.PoemStatus {
	if contentChanged {
		return models.PoemPending
	}
	return current
}

// ApplyReview applies an admin decision to the poem in place. The rejection
// reason is only ever persisted on rejected poems; approval clears it.
func ApplyReview(poem *models.Poem, decision ReviewDecision, reason string) error {
	switch decision {
	case DecisionApprove:
		poem.Status = models.PoemApproved
		poem.RejectionReason = nil
	case DecisionReject:
		if reason == "" {
			return models.NewValidationError("Rejection reason is required")
		}
		poem.Status = models.PoemRejected
		poem.RejectionReason = &reason
	default:
		return models.NewValidationError("Decision must be Approved or Rejected")
	}
	return nil
}
