package badge

import "github.com/google/uuid"

// Evaluate returns every catalog badge the user now qualifies for and does
// not already own. Badges are independent, so a single pass is enough and
// several can unlock at once. Evaluation is driven by ownership rather than
// by the edge that crossed the threshold: a badge missed in an earlier
// partial failure is picked up again on the next approval.
func Evaluate(points, approvedCount int, catalog []Badge, owned map[uuid.UUID]bool) []Badge {
	var unlocked []Badge
	for _, b := range catalog {
		if owned[b.ID] {
			continue
		}
		if qualifies(b, points, approvedCount) {
			unlocked = append(unlocked, b)
		}
	}
	return unlocked
}

func qualifies(b Badge, points, approvedCount int) bool {
	switch b.RequirementType {
	case RequirementPointsThreshold:
		return points >= b.RequirementValue
	case RequirementChallengesCount:
		return approvedCount >= b.RequirementValue
	}
	return false
}
