package leaderboard

import (
	"sort"

	"github.com/google/uuid"
)

const (
	// FullSize is the school leaderboard page length.
	FullSize = 100
	// TopSize is the dashboard's "top schools" summary length.
	TopSize = 5
)

// SchoolTotal is a school's aggregated score: the sum of its students'
// points, recomputed from the users table on every read, never stored.
type SchoolTotal struct {
	SchoolID     uuid.UUID `json:"schoolId"`
	Name         string    `json:"name"`
	City         string    `json:"city"`
	TotalPoints  int       `json:"totalPoints"`
	StudentCount int       `json:"studentCount"`
}

type RankedSchool struct {
	Rank              int       `json:"rank"`
	SchoolID          uuid.UUID `json:"schoolId"`
	Name              string    `json:"name"`
	City              string    `json:"city"`
	TotalPoints       int       `json:"totalPoints"`
	StudentCount      int       `json:"studentCount"`
	IsRequesterSchool bool      `json:"isRequesterSchool,omitempty"`
}

// Rank sorts school totals descending by points and returns the top limit
// entries with 1-based ranks. Ties keep their input order. If the requester's
// school exists in totals but missed the cut, it is appended with its true
// rank: one more than the number of schools strictly ahead of it, so tied
// schools share a rank number. A requester school with no aggregate row
// (no students yet) is omitted entirely.
func Rank(totals []SchoolTotal, limit int, requesterSchoolID *uuid.UUID) []RankedSchool {
	sorted := make([]SchoolTotal, len(totals))
	copy(sorted, totals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalPoints > sorted[j].TotalPoints
	})

	if limit > len(sorted) {
		limit = len(sorted)
	}

	ranked := make([]RankedSchool, 0, limit+1)
	requesterListed := false
	for i := 0; i < limit; i++ {
		entry := RankedSchool{
			Rank:         i + 1,
			SchoolID:     sorted[i].SchoolID,
			Name:         sorted[i].Name,
			City:         sorted[i].City,
			TotalPoints:  sorted[i].TotalPoints,
			StudentCount: sorted[i].StudentCount,
		}
		if requesterSchoolID != nil && entry.SchoolID == *requesterSchoolID {
			entry.IsRequesterSchool = true
			requesterListed = true
		}
		ranked = append(ranked, entry)
	}

	if requesterSchoolID == nil || requesterListed {
		return ranked
	}

	for _, t := range totals {
		if t.SchoolID != *requesterSchoolID {
			continue
		}
		ranked = append(ranked, RankedSchool{
			Rank:              trueRank(totals, t.TotalPoints),
			SchoolID:          t.SchoolID,
			Name:              t.Name,
			City:              t.City,
			TotalPoints:       t.TotalPoints,
			StudentCount:      t.StudentCount,
			IsRequesterSchool: true,
		})
		break
	}
	return ranked
}

// trueRank counts schools strictly ahead across the full set, not just the
// displayed page.
func trueRank(totals []SchoolTotal, points int) int {
	ahead := 0
	for _, t := range totals {
		if t.TotalPoints > points {
			ahead++
		}
	}
	return ahead + 1
}
