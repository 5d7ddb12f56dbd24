package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecoQuestAPI/internal/submission"
	"ecoQuestAPI/internal/user"
)

// SubmissionService handles submission creation and listing. The review
// transition itself lives in ReviewService.
type SubmissionService struct {
	db *pgxpool.Pool
}

func NewSubmissionService(db *pgxpool.Pool) *SubmissionService {
	return &SubmissionService{db: db}
}

// Create records a student's attempt at a challenge, pending review.
func (s *SubmissionService) Create(ctx context.Context, clerkID string, req *submission.CreateSubmissionRequest) (*submission.Submission, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user not found: %w", err)
	}

	challengeID, err := uuid.Parse(req.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid challengeId", ErrInvalidInput)
	}
	if req.ProofURL == "" {
		return nil, fmt.Errorf("%w: proofUrl is required", ErrInvalidInput)
	}

	var isActive bool
	err = s.db.QueryRow(ctx, `SELECT is_active FROM challenges WHERE id = $1`, challengeID).Scan(&isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: challenge", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to check challenge: %w", err)
	}
	if !isActive {
		return nil, fmt.Errorf("%w: challenge is no longer active", ErrInvalidInput)
	}

	sub := &submission.Submission{}
	err = s.db.QueryRow(ctx, `
	INSERT INTO submissions (id, user_id, challenge_id, status, proof_url, created_at)
	VALUES ($1, $2, $3, 'pending', $4, NOW())
	RETURNING id, user_id, challenge_id, status, proof_url, created_at, reviewed_at, reviewed_by
	`, uuid.New(), userID, challengeID, req.ProofURL).Scan(
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
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	log.Printf("Create: submission %s for challenge %s by %s", sub.ID, challengeID, clerkID)
	return sub, nil
}

// ListMine returns the caller's own submissions, newest first.
func (s *SubmissionService) ListMine(ctx context.Context, clerkID string) ([]*submission.WithDetails, error) {
	query := `
	SELECT s.id, s.user_id, s.challenge_id, s.status, s.proof_url, s.created_at, s.reviewed_at, s.reviewed_by,
	       u.name, c.name, c.icon, c.points
	FROM submissions s
	INNER JOIN users u ON u.id = s.user_id
	INNER JOIN challenges c ON c.id = s.challenge_id
	WHERE u.clerk_id = $1
	ORDER BY s.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}
	defer rows.Close()

	return scanSubmissionDetails(rows)
}

// ListPending returns the submissions awaiting the caller's review: all of
// them for admins, the caller's own school for teachers.
func (s *SubmissionService) ListPending(ctx context.Context, clerkID string) ([]*submission.WithDetails, error) {
	var role user.Role
	var schoolID *uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT role, school_id FROM users WHERE clerk_id = $1`, clerkID).Scan(&role, &schoolID)
	if err != nil {
		return nil, fmt.Errorf("%w: account not found", ErrForbidden)
	}

	const base = `
	SELECT s.id, s.user_id, s.challenge_id, s.status, s.proof_url, s.created_at, s.reviewed_at, s.reviewed_by,
	       u.name, c.name, c.icon, c.points
	FROM submissions s
	INNER JOIN users u ON u.id = s.user_id
	INNER JOIN challenges c ON c.id = s.challenge_id
	WHERE s.status = 'pending'`

	var rows pgx.Rows
	switch role {
	case user.RoleAdmin:
		rows, err = s.db.Query(ctx, base+` ORDER BY s.created_at ASC`)
	case user.RoleTeacher:
		if schoolID == nil {
			return nil, fmt.Errorf("%w: teacher has no school assigned", ErrForbidden)
		}
		rows, err = s.db.Query(ctx, base+` AND u.school_id = $1 ORDER BY s.created_at ASC`, *schoolID)
	default:
		return nil, fmt.Errorf("%w: only teachers and admins list pending submissions", ErrForbidden)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending submissions: %w", err)
	}
	defer rows.Close()

	return scanSubmissionDetails(rows)
}

func scanSubmissionDetails(rows pgx.Rows) ([]*submission.WithDetails, error) {
	var subs []*submission.WithDetails
	for rows.Next() {
		sub := &submission.WithDetails{}
		err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.ChallengeID,
			&sub.Status,
			&sub.ProofURL,
			&sub.CreatedAt,
			&sub.ReviewedAt,
			&sub.ReviewedBy,
			&sub.UserName,
			&sub.ChallengeName,
			&sub.ChallengeIcon,
			&sub.ChallengePoint,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []*submission.WithDetails{}
	}
	return subs, nil
}
