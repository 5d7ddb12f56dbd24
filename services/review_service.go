package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ecoQuestAPI/internal/badge"
	"ecoQuestAPI/internal/streak"
	"ecoQuestAPI/internal/submission"
	"ecoQuestAPI/internal/user"
)

// ReviewService owns the submission review workflow: the pending →
// approved/rejected transition and the side effects a first approval
// triggers (points, streak, badge awards).
type ReviewService struct {
	store         ReviewStore
	notifications *NotificationService
	now           func() time.Time
}

func NewReviewService(store ReviewStore, notifications *NotificationService) *ReviewService {
	return &ReviewService{
		store:         store,
		notifications: notifications,
		now:           time.Now,
	}
}

// Review transitions a submission to the requested status on behalf of the
// actor identified by actorClerkID. Points, streak and badge side effects
// run exactly once per submission: only on the transition into approved,
// never on a re-approval. The whole sequence is one storage transaction
// with the status write last, so a partial failure leaves the submission in
// its prior status and the review safe to retry.
func (s *ReviewService) Review(ctx context.Context, actorClerkID string, submissionID uuid.UUID, requested submission.Status) (*submission.ReviewResult, error) {
	if !requested.ReviewableStatus() {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrInvalidInput)
	}

	now := s.now()
	result := &submission.ReviewResult{}

	err := s.store.InTx(ctx, func(tx ReviewTx) error {
		actor, err := tx.UserByClerkID(ctx, actorClerkID)
		if err != nil {
			return fmt.Errorf("%w: reviewer account", ErrForbidden)
		}

		sub, owner, ch, err := tx.SubmissionForReview(ctx, submissionID)
		if err != nil {
			return err
		}

		if err := authorizeReview(actor, owner); err != nil {
			return err
		}

		// Idempotency gate: captured before any mutation. A submission
		// re-patched with approved must not double-award.
		wasApproved := sub.Status == submission.StatusApproved
		firstApproval := requested == submission.StatusApproved && !wasApproved

		if firstApproval {
			newPoints := owner.Points + ch.Points
			newStreak := streak.Next(owner.LastActivityDate, owner.CurrentStreak, now)

			if err := tx.SaveUserProgress(ctx, owner.ID, newPoints, newStreak, now); err != nil {
				return err
			}

			// The status write has not happened yet, so this submission
			// is not in the count; it becomes the +1.
			approvedBefore, err := tx.CountApprovedSubmissions(ctx, owner.ID)
			if err != nil {
				return err
			}

			catalog, err := tx.BadgeCatalog(ctx)
			if err != nil {
				return err
			}
			owned, err := tx.UserBadgeIDs(ctx, owner.ID)
			if err != nil {
				return err
			}

			newBadges := badge.Evaluate(newPoints, approvedBefore+1, catalog, owned)
			for _, b := range newBadges {
				if err := tx.CreateBadgeAward(ctx, owner.ID, b.ID, now); err != nil {
					return err
				}
			}

			result.User = &user.Summary{
				Points:           newPoints,
				CurrentStreak:    newStreak,
				LastActivityDate: &now,
			}
			result.NewlyAwardedBadges = newBadges
		}

		// Status is committed last: if anything above failed we never get
		// here, the transaction rolls back, and the submission stays in
		// its previous state.
		updated, err := tx.SaveSubmissionStatus(ctx, submissionID, requested, actor.ID, now)
		if err != nil {
			return err
		}
		result.Submission = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Review: submission %s set to %s, side effects ran: %t", submissionID, requested, result.User != nil)

	if s.notifications != nil {
		// Best effort, never fails the review.
		go s.notifications.NotifyReviewOutcome(context.Background(), result)
	}

	return result, nil
}

// authorizeReview applies the role rules: admins review anything, teachers
// review only their own school's students.
func authorizeReview(actor, owner *user.User) error {
	switch actor.Role {
	case user.RoleAdmin:
		return nil
	case user.RoleTeacher:
		if actor.SchoolID != nil && owner.SchoolID != nil && *actor.SchoolID == *owner.SchoolID {
			return nil
		}
		return fmt.Errorf("%w: submission belongs to another school", ErrForbidden)
	default:
		return fmt.Errorf("%w: only teachers and admins review submissions", ErrForbidden)
	}
}
