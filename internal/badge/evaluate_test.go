package badge

import (
	"testing"

	"github.com/google/uuid"
)

func TestEvaluate(t *testing.T) {
	points50 := Badge{ID: uuid.New(), Name: "Sprout", RequirementType: RequirementPointsThreshold, RequirementValue: 50}
	points100 := Badge{ID: uuid.New(), Name: "Sapling", RequirementType: RequirementPointsThreshold, RequirementValue: 100}
	challenges10 := Badge{ID: uuid.New(), Name: "Regular", RequirementType: RequirementChallengesCount, RequirementValue: 10}
	catalog := []Badge{points50, points100, challenges10}

	tests := []struct {
		name          string
		points        int
		approvedCount int
		owned         map[uuid.UUID]bool
		wantNames     []string
	}{
		{
			name:      "nothing qualifies",
			points:    30,
			wantNames: nil,
		},
		{
			name:      "exact threshold unlocks",
			points:    50,
			wantNames: []string{"Sprout"},
		},
		{
			name:      "already owned badges are skipped",
			points:    120,
			owned:     map[uuid.UUID]bool{points50.ID: true},
			wantNames: []string{"Sapling"},
		},
		{
			name:          "several badges unlock in one pass",
			points:        150,
			approvedCount: 12,
			wantNames:     []string{"Sprout", "Sapling", "Regular"},
		},
		{
			name:          "count requirement is independent of points",
			points:        10,
			approvedCount: 10,
			wantNames:     []string{"Regular"},
		},
		{
			name:      "missed badge recovered on a later pass",
			points:    60,
			owned:     map[uuid.UUID]bool{},
			wantNames: []string{"Sprout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.points, tt.approvedCount, catalog, tt.owned)

			if len(got) != len(tt.wantNames) {
				t.Fatalf("Evaluate() returned %d badges, want %d", len(got), len(tt.wantNames))
			}
			for i, b := range got {
				if b.Name != tt.wantNames[i] {
					t.Errorf("badge %d = %q, want %q", i, b.Name, tt.wantNames[i])
				}
			}
		})
	}
}

func TestEvaluateUnknownRequirementTypeNeverQualifies(t *testing.T) {
	catalog := []Badge{{ID: uuid.New(), Name: "Odd", RequirementType: "distance_walked", RequirementValue: 1}}

	if got := Evaluate(1000, 1000, catalog, nil); len(got) != 0 {
		t.Errorf("unknown requirement type unlocked %d badges, want 0", len(got))
	}
}
