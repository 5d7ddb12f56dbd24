package submission

import (
	"time"

	"github.com/google/uuid"

	"ecoQuestAPI/internal/badge"
	"ecoQuestAPI/internal/user"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ReviewableStatus reports whether a reviewer may set this status.
// Only approved and rejected are valid review outcomes; a submission
// cannot be pushed back to pending.
func (s Status) ReviewableStatus() bool {
	return s == StatusApproved || s == StatusRejected
}

type Submission struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	ChallengeID uuid.UUID  `json:"challengeId"`
	Status      Status     `json:"status"`
	ProofURL    string     `json:"proofUrl"`
	CreatedAt   time.Time  `json:"createdAt"`
	ReviewedAt  *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy  *uuid.UUID `json:"reviewedBy,omitempty"`
}

// WithDetails is the list shape reviewers see: the submission joined
// with the student and challenge names it references.
type WithDetails struct {
	Submission
	UserName       string `json:"userName"`
	ChallengeName  string `json:"challengeName"`
	ChallengeIcon  string `json:"challengeIcon"`
	ChallengePoint int    `json:"challengePoints"`
}

type CreateSubmissionRequest struct {
	ChallengeID string `json:"challengeId"`
	ProofURL    string `json:"proofUrl"`
}

type ReviewRequest struct {
	Status Status `json:"status"`
}

// ReviewResult is the review endpoint's response. User and
// NewlyAwardedBadges are present only when this call was the
// submission's first approval, i.e. when side effects actually ran.
type ReviewResult struct {
	Submission         *Submission   `json:"submission"`
	User               *user.Summary `json:"user,omitempty"`
	NewlyAwardedBadges []badge.Badge `json:"newlyAwardedBadges,omitempty"`
}
