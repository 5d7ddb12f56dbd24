package dashboard

import (
	"ecoQuestAPI/internal/impact"
	"ecoQuestAPI/internal/leaderboard"
)

type Participation struct {
	TotalUsers               int `json:"totalUsers"`
	ActiveParticipants       int `json:"activeParticipants"`
	TotalSchools             int `json:"totalSchools"`
	TotalChallengesAvailable int `json:"totalChallengesAvailable"`
	TotalChallengesCompleted int `json:"totalChallengesCompleted"`
}

// Dashboard is the public landing page payload: platform-wide ecological
// impact, participation counts, and the top schools summary.
type Dashboard struct {
	EcoImpact     impact.Totals              `json:"ecoImpact"`
	Participation Participation              `json:"participation"`
	TopSchools    []leaderboard.RankedSchool `json:"topSchools"`
}
