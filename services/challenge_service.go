package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecoQuestAPI/internal/challenge"
	"ecoQuestAPI/internal/user"
)

type ChallengeService struct {
	db *pgxpool.Pool
}

func NewChallengeService(db *pgxpool.Pool) *ChallengeService {
	return &ChallengeService{db: db}
}

const challengeColumns = `
	id, name, description, points, icon, is_active, challenge_type, frequency,
	co2_saved_kg, co2_absorbed_kg_per_year, water_saved_liters, plastic_saved_grams, energy_saved_kwh, trees_equivalent,
	created_at, updated_at`

// ListActive returns the challenges students can currently attempt.
func (s *ChallengeService) ListActive(ctx context.Context) ([]*challenge.Challenge, error) {
	rows, err := s.db.Query(ctx, `
	SELECT `+challengeColumns+`
	FROM challenges
	WHERE is_active = true
	ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch challenges: %w", err)
	}
	defer rows.Close()

	return scanChallenges(rows)
}

// Create inserts a new challenge. Admin only; the points floor and the
// frequency/type enums are validated here, before any write.
func (s *ChallengeService) Create(ctx context.Context, actorClerkID string, req *challenge.CreateChallengeRequest) (*challenge.Challenge, error) {
	if err := s.requireAdmin(ctx, actorClerkID); err != nil {
		return nil, err
	}
	if req.Name == "" || req.Description == "" {
		return nil, fmt.Errorf("%w: name and description are required", ErrInvalidInput)
	}
	if req.Points < challenge.MinPoints {
		return nil, fmt.Errorf("%w: challenge points must be at least %d", ErrInvalidInput, challenge.MinPoints)
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = challenge.FrequencyOneTime
	}
	if !frequency.Valid() {
		return nil, fmt.Errorf("%w: %q is not a valid frequency", ErrInvalidInput, req.Frequency)
	}

	challengeType := req.Type
	if challengeType == "" {
		challengeType = challenge.TypeSolo
	}
	if !challengeType.Valid() {
		return nil, fmt.Errorf("%w: %q is not a valid challenge type", ErrInvalidInput, req.Type)
	}

	icon := req.Icon
	if icon == "" {
		icon = "🌱"
	}

	var co2Saved, co2Absorbed, water, plastic, energy, trees *float64
	if imp := req.EcoImpact; imp != nil {
		co2Saved, co2Absorbed = &imp.Co2SavedKg, &imp.Co2AbsorbedKgPerYear
		water, plastic = &imp.WaterSavedLiters, &imp.PlasticSavedGrams
		energy, trees = &imp.EnergySavedKwh, &imp.TreesEquivalent
	}

	row := s.db.QueryRow(ctx, `
	INSERT INTO challenges (id, name, description, points, icon, is_active, challenge_type, frequency,
		co2_saved_kg, co2_absorbed_kg_per_year, water_saved_liters, plastic_saved_grams, energy_saved_kwh, trees_equivalent,
		created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, true, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	RETURNING `+challengeColumns,
		uuid.New(), req.Name, req.Description, req.Points, icon, challengeType, frequency,
		co2Saved, co2Absorbed, water, plastic, energy, trees,
	)

	ch, err := scanChallenge(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	log.Printf("Create: challenge %q created by %s", ch.Name, actorClerkID)
	return ch, nil
}

func (s *ChallengeService) Update(ctx context.Context, actorClerkID string, id uuid.UUID, req *challenge.UpdateChallengeRequest) (*challenge.Challenge, error) {
	if err := s.requireAdmin(ctx, actorClerkID); err != nil {
		return nil, err
	}
	if req.Points != nil && *req.Points < challenge.MinPoints {
		return nil, fmt.Errorf("%w: challenge points must be at least %d", ErrInvalidInput, challenge.MinPoints)
	}

	row := s.db.QueryRow(ctx, `
	UPDATE challenges
	SET
		name = COALESCE(NULLIF($2, ''), name),
		description = COALESCE(NULLIF($3, ''), description),
		points = COALESCE($4, points),
		icon = COALESCE(NULLIF($5, ''), icon),
		is_active = COALESCE($6, is_active),
		updated_at = NOW()
	WHERE id = $1
	RETURNING `+challengeColumns,
		id, req.Name, req.Description, req.Points, req.Icon, req.IsActive,
	)

	ch, err := scanChallenge(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update challenge: %w", err)
	}
	return ch, nil
}

func (s *ChallengeService) Delete(ctx context.Context, actorClerkID string, id uuid.UUID) error {
	if err := s.requireAdmin(ctx, actorClerkID); err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM challenges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ChallengeService) requireAdmin(ctx context.Context, clerkID string) error {
	var role user.Role
	err := s.db.QueryRow(ctx, `SELECT role FROM users WHERE clerk_id = $1`, clerkID).Scan(&role)
	if err != nil {
		return fmt.Errorf("%w: account not found", ErrForbidden)
	}
	if role != user.RoleAdmin {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return nil
}

type challengeRow interface {
	Scan(dest ...any) error
}

func scanChallenge(row challengeRow) (*challenge.Challenge, error) {
	ch := &challenge.Challenge{}
	var imp pgImpact
	err := row.Scan(
		&ch.ID,
		&ch.Name,
		&ch.Description,
		&ch.Points,
		&ch.Icon,
		&ch.IsActive,
		&ch.Type,
		&ch.Frequency,
		&imp.co2Saved,
		&imp.co2Absorbed,
		&imp.water,
		&imp.plastic,
		&imp.energy,
		&imp.trees,
		&ch.CreatedAt,
		&ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ch.EcoImpact = imp.bundle()
	return ch, nil
}

func scanChallenges(rows pgx.Rows) ([]*challenge.Challenge, error) {
	var challenges []*challenge.Challenge
	for rows.Next() {
		ch, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if challenges == nil {
		challenges = []*challenge.Challenge{}
	}
	return challenges, nil
}
