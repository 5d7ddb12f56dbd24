package challenge

import (
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyOneTime Frequency = "one-time"
)

type Type string

const (
	TypeSolo       Type = "solo"
	TypeSchoolTask Type = "school_task"
)

// MinPoints is the lowest reward an admin may assign to a challenge.
const MinPoints = 5

// EcoImpact is the per-completion ecological footprint of a challenge.
// Challenges without impact metadata simply carry a nil bundle.
type EcoImpact struct {
	Co2SavedKg           float64 `json:"co2SavedKg"`
	Co2AbsorbedKgPerYear float64 `json:"co2AbsorbedKgPerYear"`
	WaterSavedLiters     float64 `json:"waterSavedLiters"`
	PlasticSavedGrams    float64 `json:"plasticSavedGrams"`
	EnergySavedKwh       float64 `json:"energySavedKwh"`
	TreesEquivalent      float64 `json:"treesEquivalent"`
}

type Challenge struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Points      int        `json:"points"`
	Icon        string     `json:"icon"`
	IsActive    bool       `json:"isActive"`
	Type        Type       `json:"challenge_type"`
	Frequency   Frequency  `json:"frequency"`
	EcoImpact   *EcoImpact `json:"ecoImpact,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type CreateChallengeRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Points      int        `json:"points"`
	Icon        string     `json:"icon"`
	Type        Type       `json:"challenge_type"`
	Frequency   Frequency  `json:"frequency"`
	EcoImpact   *EcoImpact `json:"ecoImpact"`
}

type UpdateChallengeRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Points      *int       `json:"points"`
	Icon        string     `json:"icon"`
	IsActive    *bool      `json:"isActive"`
	EcoImpact   *EcoImpact `json:"ecoImpact"`
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyOneTime:
		return true
	}
	return false
}

func (t Type) Valid() bool {
	return t == TypeSolo || t == TypeSchoolTask
}
