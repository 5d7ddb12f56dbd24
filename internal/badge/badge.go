package badge

import (
	"time"

	"github.com/google/uuid"
)

type RequirementType string

const (
	RequirementPointsThreshold RequirementType = "points_threshold"
	RequirementChallengesCount RequirementType = "challenges_count"
)

type Badge struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Icon             string          `json:"icon"`
	RequirementType  RequirementType `json:"requirement_type"`
	RequirementValue int             `json:"requirement_value"`
	CreatedAt        time.Time       `json:"created_at"`
}

// UserBadge records that a user earned a badge. A (user, badge) pair
// exists at most once; the table carries a unique index on it.
type UserBadge struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	BadgeID  uuid.UUID `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

type BadgeWithStatus struct {
	Badge
	Unlocked bool       `json:"unlocked"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}
