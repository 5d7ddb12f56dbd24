package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecoQuestAPI/internal/notification"
	"ecoQuestAPI/internal/submission"
)

// PushProvider delivers a push message to a user's registered devices.
// The FCM service implements it; tests leave it nil.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

type NotificationService struct {
	db   *pgxpool.Pool
	push PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) SetPushProvider(p PushProvider) {
	s.push = p
}

// NotifyReviewOutcome records and pushes the notifications a finished
// review produces: the verdict itself, plus one per newly unlocked badge.
// Everything here is best effort; the review already committed.
func (s *NotificationService) NotifyReviewOutcome(ctx context.Context, result *submission.ReviewResult) {
	if result == nil || result.Submission == nil {
		return
	}

	userID := result.Submission.UserID
	switch result.Submission.Status {
	case submission.StatusApproved:
		s.create(ctx, userID, notification.TypeSubmissionApproved,
			"Challenge approved!",
			"Your submission was approved and your points have been added.",
			map[string]any{"submissionId": result.Submission.ID.String()})
	case submission.StatusRejected:
		s.create(ctx, userID, notification.TypeSubmissionRejected,
			"Submission rejected",
			"Your submission was not approved this time. You can try again.",
			map[string]any{"submissionId": result.Submission.ID.String()})
	}

	for _, b := range result.NewlyAwardedBadges {
		s.create(ctx, userID, notification.TypeBadgeUnlocked,
			"New badge unlocked!",
			fmt.Sprintf("You earned the %s badge.", b.Name),
			map[string]any{"badgeId": b.ID.String(), "badgeName": b.Name})
	}
}

func (s *NotificationService) create(ctx context.Context, userID uuid.UUID, typ notification.Type, title, message string, data map[string]any) {
	dataJSON, _ := json.Marshal(data)

	_, err := s.db.Exec(ctx, `
	INSERT INTO notifications (id, user_id, type, title, message, is_read, data, created_at)
	VALUES ($1, $2, $3, $4, $5, false, $6, NOW())
	`, uuid.New(), userID, typ, title, message, dataJSON)
	if err != nil {
		log.Printf("create: failed to store notification for %s: %v", userID, err)
		return
	}

	if s.push == nil {
		return
	}

	tokens, err := s.deviceTokens(ctx, userID)
	if err != nil {
		log.Printf("create: failed to load device tokens for %s: %v", userID, err)
		return
	}
	if err := s.push.SendPush(ctx, tokens, title, message, data); err != nil {
		log.Printf("create: push failed for %s: %v", userID, err)
	}
}

func (s *NotificationService) List(ctx context.Context, clerkID string) (*notification.ListResponse, error) {
	userID, err := s.userID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
	SELECT id, user_id, type, title, message, is_read, data, created_at
	FROM notifications
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT 50
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	resp := &notification.ListResponse{Notifications: []*notification.Notification{}}
	for rows.Next() {
		n := &notification.Notification{}
		var dataJSON []byte
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &dataJSON, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if len(dataJSON) > 0 {
			json.Unmarshal(dataJSON, &n.Data)
		}
		resp.Notifications = append(resp.Notifications, n)
		if !n.IsRead {
			resp.UnreadCount++
		}
	}
	return resp, rows.Err()
}

func (s *NotificationService) UnreadCount(ctx context.Context, clerkID string) (int, error) {
	userID, err := s.userID(ctx, clerkID)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRow(ctx, `
	SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, clerkID string, notificationID uuid.UUID) error {
	userID, err := s.userID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
	UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req notification.RegisterDeviceRequest) error {
	if req.Token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidInput)
	}

	userID, err := s.userID(ctx, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
	INSERT INTO device_tokens (user_id, token, platform, created_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (token) DO UPDATE SET user_id = $1, platform = $3
	`, userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *NotificationService) deviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT token, platform FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (s *NotificationService) userID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("user not found: %w", err)
	}
	return userID, nil
}
