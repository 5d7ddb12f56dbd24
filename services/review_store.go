package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecoQuestAPI/internal/badge"
	"ecoQuestAPI/internal/challenge"
	"ecoQuestAPI/internal/submission"
	"ecoQuestAPI/internal/user"
)

// ReviewStore is the storage collaborator of the review workflow. InTx runs
// fn inside one unit of work: either every write fn issued commits, or none
// do. Implementations must serialize concurrent reviews of the same
// submission so that only one reviewer observes the pre-approval status.
type ReviewStore interface {
	InTx(ctx context.Context, fn func(tx ReviewTx) error) error
}

type ReviewTx interface {
	// UserByClerkID resolves the acting reviewer.
	UserByClerkID(ctx context.Context, clerkID string) (*user.User, error)
	// SubmissionForReview loads the submission with its owner and
	// challenge, locking the submission row for the rest of the
	// transaction.
	SubmissionForReview(ctx context.Context, id uuid.UUID) (*submission.Submission, *user.User, *challenge.Challenge, error)
	SaveSubmissionStatus(ctx context.Context, id uuid.UUID, status submission.Status, reviewerID uuid.UUID, at time.Time) (*submission.Submission, error)
	SaveUserProgress(ctx context.Context, userID uuid.UUID, points, currentStreak int, lastActivity time.Time) error
	CountApprovedSubmissions(ctx context.Context, userID uuid.UUID) (int, error)
	BadgeCatalog(ctx context.Context) ([]badge.Badge, error)
	UserBadgeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error)
	CreateBadgeAward(ctx context.Context, userID, badgeID uuid.UUID, at time.Time) error
}

// PgReviewStore implements ReviewStore on Postgres. The FOR UPDATE lock in
// SubmissionForReview is what makes two concurrent reviews of one submission
// serialize: the loser blocks until the winner commits, then reads the
// already-approved status and skips side effects.
type PgReviewStore struct {
	db *pgxpool.Pool
}

func NewPgReviewStore(db *pgxpool.Pool) *PgReviewStore {
	return &PgReviewStore{db: db}
}

func (s *PgReviewStore) InTx(ctx context.Context, fn func(tx ReviewTx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgReviewTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}
	return nil
}

type pgReviewTx struct {
	tx pgx.Tx
}

func (t *pgReviewTx) UserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	u := &user.User{}
	err := t.tx.QueryRow(ctx, `
	SELECT id, clerk_id, email, name, role, school_id, points, current_streak, last_activity_date, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`, clerkID).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.SchoolID,
		&u.Points,
		&u.CurrentStreak,
		&u.LastActivityDate,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (t *pgReviewTx) SubmissionForReview(ctx context.Context, id uuid.UUID) (*submission.Submission, *user.User, *challenge.Challenge, error) {
	sub := &submission.Submission{}
	err := t.tx.QueryRow(ctx, `
	SELECT id, user_id, challenge_id, status, proof_url, created_at, reviewed_at, reviewed_by
	FROM submissions
	WHERE id = $1
	FOR UPDATE
	`, id).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.ChallengeID,
		&sub.Status,
		&sub.ProofURL,
		&sub.CreatedAt,
		&sub.ReviewedAt,
		&sub.ReviewedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, ErrNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to get submission: %w", err)
	}

	// The owner row is locked too: the points/streak update below must not
	// interleave with another approval for the same user.
	owner := &user.User{}
	err = t.tx.QueryRow(ctx, `
	SELECT id, clerk_id, email, name, role, school_id, points, current_streak, last_activity_date, created_at, updated_at
	FROM users
	WHERE id = $1
	FOR UPDATE
	`, sub.UserID).Scan(
		&owner.ID,
		&owner.ClerkID,
		&owner.Email,
		&owner.Name,
		&owner.Role,
		&owner.SchoolID,
		&owner.Points,
		&owner.CurrentStreak,
		&owner.LastActivityDate,
		&owner.CreatedAt,
		&owner.UpdatedAt,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get submission owner: %w", err)
	}

	ch := &challenge.Challenge{}
	var impact pgImpact
	err = t.tx.QueryRow(ctx, `
	SELECT id, name, description, points, icon, is_active, challenge_type, frequency,
	       co2_saved_kg, co2_absorbed_kg_per_year, water_saved_liters, plastic_saved_grams, energy_saved_kwh, trees_equivalent,
	       created_at, updated_at
	FROM challenges
	WHERE id = $1
	`, sub.ChallengeID).Scan(
		&ch.ID,
		&ch.Name,
		&ch.Description,
		&ch.Points,
		&ch.Icon,
		&ch.IsActive,
		&ch.Type,
		&ch.Frequency,
		&impact.co2Saved,
		&impact.co2Absorbed,
		&impact.water,
		&impact.plastic,
		&impact.energy,
		&impact.trees,
		&ch.CreatedAt,
		&ch.UpdatedAt,
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get submission challenge: %w", err)
	}
	ch.EcoImpact = impact.bundle()

	return sub, owner, ch, nil
}

func (t *pgReviewTx) SaveSubmissionStatus(ctx context.Context, id uuid.UUID, status submission.Status, reviewerID uuid.UUID, at time.Time) (*submission.Submission, error) {
	sub := &submission.Submission{}
	err := t.tx.QueryRow(ctx, `
	UPDATE submissions
	SET status = $2, reviewed_at = $3, reviewed_by = $4
	WHERE id = $1
	RETURNING id, user_id, challenge_id, status, proof_url, created_at, reviewed_at, reviewed_by
	`, id, status, at, reviewerID).Scan(
		&sub.ID,
		&sub.UserID,
		&sub.ChallengeID,
		&sub.Status,
		&sub.ProofURL,
		&sub.CreatedAt,
		&sub.ReviewedAt,
		&sub.ReviewedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save submission status: %w", err)
	}
	return sub, nil
}

func (t *pgReviewTx) SaveUserProgress(ctx context.Context, userID uuid.UUID, points, currentStreak int, lastActivity time.Time) error {
	_, err := t.tx.Exec(ctx, `
	UPDATE users
	SET points = $2, current_streak = $3, last_activity_date = $4, updated_at = NOW()
	WHERE id = $1
	`, userID, points, currentStreak, lastActivity)
	if err != nil {
		return fmt.Errorf("failed to save user progress: %w", err)
	}
	return nil
}

func (t *pgReviewTx) CountApprovedSubmissions(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx, `
	SELECT COUNT(*) FROM submissions WHERE user_id = $1 AND status = 'approved'
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count approved submissions: %w", err)
	}
	return count, nil
}

func (t *pgReviewTx) BadgeCatalog(ctx context.Context) ([]badge.Badge, error) {
	rows, err := t.tx.Query(ctx, `
	SELECT id, name, icon, requirement_type, requirement_value, created_at
	FROM badges
	ORDER BY requirement_value ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch badge catalog: %w", err)
	}
	defer rows.Close()

	var catalog []badge.Badge
	for rows.Next() {
		var b badge.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Icon, &b.RequirementType, &b.RequirementValue, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		catalog = append(catalog, b)
	}
	return catalog, rows.Err()
}

func (t *pgReviewTx) UserBadgeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := t.tx.Query(ctx, `SELECT badge_id FROM user_badges WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user badges: %w", err)
	}
	defer rows.Close()

	owned := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan badge id: %w", err)
		}
		owned[id] = true
	}
	return owned, rows.Err()
}

func (t *pgReviewTx) CreateBadgeAward(ctx context.Context, userID, badgeID uuid.UUID, at time.Time) error {
	// ON CONFLICT DO NOTHING backs up the evaluator's not-yet-owned filter:
	// the unique (user_id, badge_id) index is the last line of defense
	// against a duplicate award.
	_, err := t.tx.Exec(ctx, `
	INSERT INTO user_badges (id, user_id, badge_id, earned_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, badge_id) DO NOTHING
	`, uuid.New(), userID, badgeID, at)
	if err != nil {
		return fmt.Errorf("failed to create badge award: %w", err)
	}
	return nil
}

// pgImpact scans the nullable impact columns; a challenge with all columns
// NULL has no impact bundle at all.
type pgImpact struct {
	co2Saved, co2Absorbed, water, plastic, energy, trees *float64
}

func (p pgImpact) bundle() *challenge.EcoImpact {
	if p.co2Saved == nil && p.co2Absorbed == nil && p.water == nil &&
		p.plastic == nil && p.energy == nil && p.trees == nil {
		return nil
	}
	return &challenge.EcoImpact{
		Co2SavedKg:           deref(p.co2Saved),
		Co2AbsorbedKgPerYear: deref(p.co2Absorbed),
		WaterSavedLiters:     deref(p.water),
		PlasticSavedGrams:    deref(p.plastic),
		EnergySavedKwh:       deref(p.energy),
		TreesEquivalent:      deref(p.trees),
	}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
