package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecoQuestAPI/internal/leaderboard"
	"ecoQuestAPI/internal/school"
	"ecoQuestAPI/internal/user"
)

type SchoolService struct {
	db *pgxpool.Pool
}

func NewSchoolService(db *pgxpool.Pool) *SchoolService {
	return &SchoolService{db: db}
}

func (s *SchoolService) List(ctx context.Context) ([]*school.School, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, city, created_at FROM schools ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schools: %w", err)
	}
	defer rows.Close()

	var schools []*school.School
	for rows.Next() {
		sc := &school.School{}
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.City, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan school: %w", err)
		}
		schools = append(schools, sc)
	}
	if schools == nil {
		schools = []*school.School{}
	}
	return schools, rows.Err()
}

func (s *SchoolService) Create(ctx context.Context, actorClerkID string, req *school.CreateSchoolRequest) (*school.School, error) {
	var role user.Role
	err := s.db.QueryRow(ctx, `SELECT role FROM users WHERE clerk_id = $1`, actorClerkID).Scan(&role)
	if err != nil {
		return nil, fmt.Errorf("%w: account not found", ErrForbidden)
	}
	if role != user.RoleAdmin {
		return nil, fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	if req.Name == "" || req.City == "" {
		return nil, fmt.Errorf("%w: name and city are required", ErrInvalidInput)
	}

	sc := &school.School{}
	err = s.db.QueryRow(ctx, `
	INSERT INTO schools (id, name, city, created_at)
	VALUES ($1, $2, $3, NOW())
	RETURNING id, name, city, created_at
	`, uuid.New(), req.Name, req.City).Scan(&sc.ID, &sc.Name, &sc.City, &sc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create school: %w", err)
	}

	log.Printf("Create: school %q created by %s", sc.Name, actorClerkID)
	return sc, nil
}

// AggregateTotals recomputes every school's total points by summing its
// students' points. The total is never stored; summing on read keeps the
// "total equals sum of members" invariant from drifting.
func (s *SchoolService) AggregateTotals(ctx context.Context) ([]leaderboard.SchoolTotal, error) {
	query := `
	SELECT sc.id, sc.name, sc.city, COALESCE(SUM(u.points), 0) AS total_points, COUNT(u.id) AS student_count
	FROM schools sc
	INNER JOIN users u ON u.school_id = sc.id
	GROUP BY sc.id, sc.name, sc.city
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate school totals: %w", err)
	}
	defer rows.Close()

	var totals []leaderboard.SchoolTotal
	for rows.Next() {
		var t leaderboard.SchoolTotal
		if err := rows.Scan(&t.SchoolID, &t.Name, &t.City, &t.TotalPoints, &t.StudentCount); err != nil {
			return nil, fmt.Errorf("failed to scan school total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// Leaderboard returns the ranked top schools and, when the caller belongs
// to a school that missed the cut, appends that school with its true rank.
// clerkID may be empty for anonymous callers.
func (s *SchoolService) Leaderboard(ctx context.Context, clerkID string) ([]leaderboard.RankedSchool, error) {
	var requesterSchoolID *uuid.UUID
	if clerkID != "" {
		var schoolID *uuid.UUID
		err := s.db.QueryRow(ctx, `SELECT school_id FROM users WHERE clerk_id = $1`, clerkID).Scan(&schoolID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to resolve requester school: %w", err)
		}
		requesterSchoolID = schoolID
	}

	totals, err := s.AggregateTotals(ctx)
	if err != nil {
		return nil, err
	}

	return leaderboard.Rank(totals, leaderboard.FullSize, requesterSchoolID), nil
}
