package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"ecoQuestAPI/internal/challenge"
	"ecoQuestAPI/internal/dashboard"
	"ecoQuestAPI/internal/impact"
	"ecoQuestAPI/internal/leaderboard"
)

type DashboardService struct {
	db      *pgxpool.Pool
	schools *SchoolService
}

func NewDashboardService(db *pgxpool.Pool, schools *SchoolService) *DashboardService {
	return &DashboardService{db: db, schools: schools}
}

// PublicDashboard assembles the unauthenticated landing payload: summed
// eco impact of every approved submission, participation counts, and the
// top five schools.
func (s *DashboardService) PublicDashboard(ctx context.Context) (*dashboard.Dashboard, error) {
	bundles, completed, err := s.approvedImpacts(ctx)
	if err != nil {
		return nil, err
	}

	participation := dashboard.Participation{
		TotalChallengesCompleted: completed,
	}

	counts := `
	SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(DISTINCT user_id) FROM submissions WHERE status = 'approved'),
		(SELECT COUNT(*) FROM schools),
		(SELECT COUNT(*) FROM challenges WHERE is_active = true)
	`
	err = s.db.QueryRow(ctx, counts).Scan(
		&participation.TotalUsers,
		&participation.ActiveParticipants,
		&participation.TotalSchools,
		&participation.TotalChallengesAvailable,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participation counts: %w", err)
	}

	totals, err := s.schools.AggregateTotals(ctx)
	if err != nil {
		return nil, err
	}
	topSchools := leaderboard.Rank(totals, leaderboard.TopSize, nil)

	return &dashboard.Dashboard{
		EcoImpact:     impact.Sum(bundles),
		Participation: participation,
		TopSchools:    topSchools,
	}, nil
}

// approvedImpacts loads one impact bundle per approved submission whose
// challenge carries impact metadata, plus the total approved count.
func (s *DashboardService) approvedImpacts(ctx context.Context) ([]challenge.EcoImpact, int, error) {
	query := `
	SELECT c.co2_saved_kg, c.co2_absorbed_kg_per_year, c.water_saved_liters,
	       c.plastic_saved_grams, c.energy_saved_kwh, c.trees_equivalent
	FROM submissions s
	INNER JOIN challenges c ON c.id = s.challenge_id
	WHERE s.status = 'approved'
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch approved impacts: %w", err)
	}
	defer rows.Close()

	var bundles []challenge.EcoImpact
	completed := 0
	for rows.Next() {
		var imp pgImpact
		err := rows.Scan(&imp.co2Saved, &imp.co2Absorbed, &imp.water, &imp.plastic, &imp.energy, &imp.trees)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan impact: %w", err)
		}
		completed++
		if b := imp.bundle(); b != nil {
			bundles = append(bundles, *b)
		}
	}
	return bundles, completed, rows.Err()
}
