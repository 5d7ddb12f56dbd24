package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecoQuestAPI/internal/badge"
	"ecoQuestAPI/internal/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// CreateUser provisions a user from a Clerk webhook event. New accounts
// start as students with zero points and no streak.
func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Name:      req.Name,
		Role:      user.RoleStudent,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, name, role, points, current_streak, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $7)
	RETURNING id, clerk_id, email, name, role, school_id, points, current_streak, last_activity_date, created_at, updated_at
	`

	err := s.db.QueryRow(ctx, query,
		u.ID, u.ClerkID, u.Email, u.Name, u.Role, u.CreatedAt, u.UpdatedAt,
	).Scan(
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
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, name, role, school_id, points, current_streak, last_activity_date, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
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

// UpdateProfileByClerkID lets a user change their display name or join a
// school. Points, streak and role are never touched here; the review
// workflow owns the former two and admins manage roles directly.
func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	var schoolID *uuid.UUID
	if req.SchoolID != "" {
		id, err := uuid.Parse(req.SchoolID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid schoolId", ErrInvalidInput)
		}
		schoolID = &id
	}

	query := `
	UPDATE users
	SET
		name = COALESCE(NULLIF($2, ''), name),
		school_id = COALESCE($3, school_id),
		updated_at = NOW()
	WHERE clerk_id = $1
	RETURNING id, clerk_id, email, name, role, school_id, points, current_streak, last_activity_date, created_at, updated_at
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID, req.Name, schoolID).Scan(
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
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	log.Printf("DeleteUserByClerkID: deleted user for clerk_id %s", clerkID)
	return nil
}

// GetBadges returns the full badge catalog annotated with the user's
// unlocked status, unlocked first.
func (s *UserService) GetBadges(ctx context.Context, clerkID string) ([]*badge.BadgeWithStatus, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user not found: %w", err)
	}

	query := `
	SELECT
		b.id,
		b.name,
		b.icon,
		b.requirement_type,
		b.requirement_value,
		b.created_at,
		CASE WHEN ub.id IS NOT NULL THEN true ELSE false END as unlocked,
		ub.earned_at
	FROM badges b
	LEFT JOIN user_badges ub ON b.id = ub.badge_id AND ub.user_id = $1
	ORDER BY unlocked DESC, b.requirement_value ASC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch badges: %w", err)
	}
	defer rows.Close()

	var badges []*badge.BadgeWithStatus
	for rows.Next() {
		b := &badge.BadgeWithStatus{}
		err := rows.Scan(
			&b.ID,
			&b.Name,
			&b.Icon,
			&b.RequirementType,
			&b.RequirementValue,
			&b.CreatedAt,
			&b.Unlocked,
			&b.EarnedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, b)
	}

	return badges, rows.Err()
}
