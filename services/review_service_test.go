package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"ecoQuestAPI/internal/badge"
	"ecoQuestAPI/internal/challenge"
	"ecoQuestAPI/internal/submission"
	"ecoQuestAPI/internal/user"
)

// fakeReviewStore keeps the review workflow's state in maps. InTx snapshots
// everything before running fn and restores the snapshot on error, matching
// the rollback behavior the service relies on.
type fakeReviewStore struct {
	usersByClerkID  map[string]*user.User
	usersByID       map[uuid.UUID]*user.User
	submissions     map[uuid.UUID]*submission.Submission
	challenges      map[uuid.UUID]*challenge.Challenge
	catalog         []badge.Badge
	awards          map[uuid.UUID]map[uuid.UUID]bool
	failStatusWrite bool
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{
		usersByClerkID: make(map[string]*user.User),
		usersByID:      make(map[uuid.UUID]*user.User),
		submissions:    make(map[uuid.UUID]*submission.Submission),
		challenges:     make(map[uuid.UUID]*challenge.Challenge),
		awards:         make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (s *fakeReviewStore) addUser(u *user.User) *user.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.usersByClerkID[u.ClerkID] = u
	s.usersByID[u.ID] = u
	return u
}

func (s *fakeReviewStore) addChallenge(ch *challenge.Challenge) *challenge.Challenge {
	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	s.challenges[ch.ID] = ch
	return ch
}

func (s *fakeReviewStore) addSubmission(sub *submission.Submission) *submission.Submission {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	s.submissions[sub.ID] = sub
	return sub
}

type reviewSnapshot struct {
	users       map[uuid.UUID]user.User
	submissions map[uuid.UUID]submission.Submission
	awards      map[uuid.UUID]map[uuid.UUID]bool
}

func (s *fakeReviewStore) snapshot() reviewSnapshot {
	snap := reviewSnapshot{
		users:       make(map[uuid.UUID]user.User),
		submissions: make(map[uuid.UUID]submission.Submission),
		awards:      make(map[uuid.UUID]map[uuid.UUID]bool),
	}
	for id, u := range s.usersByID {
		snap.users[id] = *u
	}
	for id, sub := range s.submissions {
		snap.submissions[id] = *sub
	}
	for uid, owned := range s.awards {
		cp := make(map[uuid.UUID]bool, len(owned))
		for bid := range owned {
			cp[bid] = true
		}
		snap.awards[uid] = cp
	}
	return snap
}

func (s *fakeReviewStore) restore(snap reviewSnapshot) {
	for id, u := range snap.users {
		cp := u
		*s.usersByID[id] = cp
	}
	for id, sub := range snap.submissions {
		cp := sub
		*s.submissions[id] = cp
	}
	s.awards = snap.awards
}

func (s *fakeReviewStore) InTx(ctx context.Context, fn func(tx ReviewTx) error) error {
	snap := s.snapshot()
	if err := fn((*fakeReviewTx)(s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type fakeReviewTx fakeReviewStore

func (t *fakeReviewTx) UserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	u, ok := t.usersByClerkID[clerkID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (t *fakeReviewTx) SubmissionForReview(ctx context.Context, id uuid.UUID) (*submission.Submission, *user.User, *challenge.Challenge, error) {
	sub, ok := t.submissions[id]
	if !ok {
		return nil, nil, nil, ErrNotFound
	}
	owner := *t.usersByID[sub.UserID]
	ch := *t.challenges[sub.ChallengeID]
	subCp := *sub
	return &subCp, &owner, &ch, nil
}

func (t *fakeReviewTx) SaveSubmissionStatus(ctx context.Context, id uuid.UUID, status submission.Status, reviewerID uuid.UUID, at time.Time) (*submission.Submission, error) {
	if t.failStatusWrite {
		return nil, errors.New("write failed")
	}
	sub := t.submissions[id]
	sub.Status = status
	sub.ReviewedAt = &at
	sub.ReviewedBy = &reviewerID
	cp := *sub
	return &cp, nil
}

func (t *fakeReviewTx) SaveUserProgress(ctx context.Context, userID uuid.UUID, points, currentStreak int, lastActivity time.Time) error {
	u := t.usersByID[userID]
	u.Points = points
	u.CurrentStreak = currentStreak
	u.LastActivityDate = &lastActivity
	return nil
}

func (t *fakeReviewTx) CountApprovedSubmissions(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, sub := range t.submissions {
		if sub.UserID == userID && sub.Status == submission.StatusApproved {
			count++
		}
	}
	return count, nil
}

func (t *fakeReviewTx) BadgeCatalog(ctx context.Context) ([]badge.Badge, error) {
	return t.catalog, nil
}

func (t *fakeReviewTx) UserBadgeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	owned := make(map[uuid.UUID]bool)
	for id := range t.awards[userID] {
		owned[id] = true
	}
	return owned, nil
}

func (t *fakeReviewTx) CreateBadgeAward(ctx context.Context, userID, badgeID uuid.UUID, at time.Time) error {
	if t.awards[userID] == nil {
		t.awards[userID] = make(map[uuid.UUID]bool)
	}
	t.awards[userID][badgeID] = true
	return nil
}

// reviewFixture wires a store with an admin reviewer, a teacher, a student
// and one pending submission for a 10 point challenge.
type reviewFixture struct {
	store      *fakeReviewStore
	service    *ReviewService
	admin      *user.User
	teacher    *user.User
	student    *user.User
	challenge  *challenge.Challenge
	submission *submission.Submission
	now        time.Time
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	store := newFakeReviewStore()
	schoolID := uuid.New()
	otherSchoolID := uuid.New()

	f := &reviewFixture{
		store: store,
		now:   time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC),
	}
	f.admin = store.addUser(&user.User{ClerkID: "clerk_admin", Role: user.RoleAdmin})
	f.teacher = store.addUser(&user.User{ClerkID: "clerk_teacher", Role: user.RoleTeacher, SchoolID: &schoolID})
	store.addUser(&user.User{ClerkID: "clerk_other_teacher", Role: user.RoleTeacher, SchoolID: &otherSchoolID})
	store.addUser(&user.User{ClerkID: "clerk_student_peer", Role: user.RoleStudent, SchoolID: &schoolID})
	f.student = store.addUser(&user.User{ClerkID: "clerk_student", Role: user.RoleStudent, SchoolID: &schoolID})
	f.challenge = store.addChallenge(&challenge.Challenge{Name: "Bike to school", Points: 10, IsActive: true})
	f.submission = store.addSubmission(&submission.Submission{
		UserID:      f.student.ID,
		ChallengeID: f.challenge.ID,
		Status:      submission.StatusPending,
	})

	f.service = NewReviewService(store, nil)
	f.service.now = func() time.Time { return f.now }
	return f
}

func TestReviewFirstApprovalRunsSideEffects(t *testing.T) {
	f := newReviewFixture(t)
	f.student.Points = 40

	result, err := f.service.Review(context.Background(), "clerk_admin", f.submission.ID, submission.StatusApproved)
	if err != nil {
		t.Fatalf("Review() error: %v", err)
	}

	if result.Submission.Status != submission.StatusApproved {
		t.Errorf("status = %s, want approved", result.Submission.Status)
	}
	if result.Submission.ReviewedBy == nil || *result.Submission.ReviewedBy != f.admin.ID {
		t.Error("reviewedBy not set to the acting reviewer")
	}
	if result.User == nil {
		t.Fatal("result.User missing after first approval")
	}
	if result.User.Points != 50 {
		t.Errorf("points = %d, want 50", result.User.Points)
	}
	if result.User.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1 for first activity", result.User.CurrentStreak)
	}
	if f.student.Points != 50 {
		t.Errorf("stored points = %d, want 50", f.student.Points)
	}
}

func TestReviewReApprovalIsIdempotent(t *testing.T) {
	f := newReviewFixture(t)

	if _, err := f.service.Review(context.Background(), "clerk_admin", f.submission.ID, submission.StatusApproved); err != nil {
		t.Fatalf("first Review() error: %v", err)
	}
	pointsAfterFirst := f.student.Points

	result, err := f.service.Review(context.Background(), "clerk_admin", f.submission.ID, submission.StatusApproved)
	if err != nil {
		t.Fatalf("second Review() error: %v", err)
	}

	if result.User != nil {
		t.Error("result.User present on re-approval; side effects must not rerun")
	}
	if f.student.Points != pointsAfterFirst {
		t.Errorf("points changed on re-approval: %d -> %d", pointsAfterFirst, f.student.Points)
	}
}

func TestReviewRejectionNeverMutatesProgress(t *testing.T) {
	f := newReviewFixture(t)
	f.student.Points = 40

	result, err := f.service.Review(context.Background(), "clerk_admin", f.submission.ID, submission.StatusRejected)
	if err != nil {
		t.Fatalf("Review() error: %v", err)
	}

	if result.Submission.Status != submission.StatusRejected {
		t.Errorf("status = %s, want rejected", result.Submission.Status)
	}
	if result.User != nil {
		t.Error("result.User present on rejection")
	}
	if f.student.Points != 40 {
		t.Errorf("points = %d, want 40 untouched", f.student.Points)
	}
}

func TestReviewApprovingAfterRejectionStillAwardsOnce(t *testing.T) {
	f := newReviewFixture(t)

	if _, err := f.service.Review(context.Background(), "clerk_admin", f.submission.ID, submission.StatusRejected); err != nil {
		t.Fatalf("reject error: %v", err)
	}
	result, err := f.service.Review(context.Background(), "clerk_admin", f.submission.ID, submission.StatusApproved)
	if err != nil {
		t.Fatalf("approve error: %v", err)
	}

	if result.User == nil || result.User.Points != 10 {
		t.Errorf("rejected -> approved must award points exactly once, got %+v", result.User)
	}
}

func TestReviewExtendsStreakFromYesterday(t *testing.T) {
	f := newReviewFixture(t)
	yesterday := f.now.AddDate(0, 0, -1)
	f.student.CurrentStreak = 3
	f.student.LastActivityDate = &yesterday

	result, err := f.service.Review(context.Background(), "clerk_admin", f.submission.ID, submission.StatusApproved)
	if err != nil {
		t.Fatalf("Review() error: %v", err)
	}

	if result.User.CurrentStreak != 4 {
		t.Errorf("streak = %d, want 4", result.User.CurrentStreak)
	}
}

func TestReviewAwardsCrossedBadgeOnce(t *testing.T) {
	f := newReviewFixture(t)
	hundredBadge := badge.Badge{ID: uuid.New(), Name: "Century", RequirementType: badge.RequirementPointsThreshold, RequirementValue: 100}
	f.store.catalog = []badge.Badge{hundredBadge}
	f.student.Points = 95

	result, err := f.service.Review(context.Background(), "clerk_admin", f.submission.ID, submission.StatusApproved)
	if err != nil {
		t.Fatalf("Review() error: %v", err)
	}

	if len(result.NewlyAwardedBadges) != 1 || result.NewlyAwardedBadges[0].ID != hundredBadge.ID {
		t.Fatalf("newlyAwardedBadges = %+v, want the 100 point badge", result.NewlyAwardedBadges)
	}

	// A later approval finds the badge already owned.
	second := f.store.addSubmission(&submission.Submission{
		UserID:      f.student.ID,
		ChallengeID: f.challenge.ID,
		Status:      submission.StatusPending,
	})
	result, err = f.service.Review(context.Background(), "clerk_admin", second.ID, submission.StatusApproved)
	if err != nil {
		t.Fatalf("second Review() error: %v", err)
	}
	if len(result.NewlyAwardedBadges) != 0 {
		t.Errorf("badge re-awarded: %+v", result.NewlyAwardedBadges)
	}
}

func TestReviewCountsTheSubmissionBeingApproved(t *testing.T) {
	f := newReviewFixture(t)
	firstChallenge := badge.Badge{ID: uuid.New(), Name: "First Step", RequirementType: badge.RequirementChallengesCount, RequirementValue: 1}
	f.store.catalog = []badge.Badge{firstChallenge}

	result, err := f.service.Review(context.Background(), "clerk_admin", f.submission.ID, submission.StatusApproved)
	if err != nil {
		t.Fatalf("Review() error: %v", err)
	}

	if len(result.NewlyAwardedBadges) != 1 {
		t.Errorf("the approval in flight must count toward challenges_count, got %+v", result.NewlyAwardedBadges)
	}
}

func TestReviewAuthorization(t *testing.T) {
	tests := []struct {
		name    string
		clerkID string
		wantErr error
	}{
		{"admin reviews any school", "clerk_admin", nil},
		{"teacher reviews own school", "clerk_teacher", nil},
		{"teacher from another school", "clerk_other_teacher", ErrForbidden},
		{"student cannot review", "clerk_student_peer", ErrForbidden},
		{"unknown reviewer", "clerk_ghost", ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReviewFixture(t)
			_, err := f.service.Review(context.Background(), tt.clerkID, f.submission.ID, submission.StatusApproved)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Review() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Review() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestReviewRejectsInvalidTargetStatus(t *testing.T) {
	f := newReviewFixture(t)

	_, err := f.service.Review(context.Background(), "clerk_admin", f.submission.ID, submission.StatusPending)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Review(pending) error = %v, want ErrInvalidInput", err)
	}
}

func TestReviewUnknownSubmission(t *testing.T) {
	f := newReviewFixture(t)

	_, err := f.service.Review(context.Background(), "clerk_admin", uuid.New(), submission.StatusApproved)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Review() error = %v, want ErrNotFound", err)
	}
}

func TestReviewRollsBackSideEffectsWhenStatusWriteFails(t *testing.T) {
	f := newReviewFixture(t)
	f.student.Points = 40
	f.store.failStatusWrite = true

	_, err := f.service.Review(context.Background(), "clerk_admin", f.submission.ID, submission.StatusApproved)
	if err == nil {
		t.Fatal("Review() succeeded with a failing status write")
	}

	if f.student.Points != 40 {
		t.Errorf("points = %d after rollback, want 40", f.student.Points)
	}
	if f.submission.Status != submission.StatusPending {
		t.Errorf("status = %s after rollback, want pending", f.submission.Status)
	}
	if len(f.store.awards[f.student.ID]) != 0 {
		t.Error("badge awards survived the rollback")
	}

	// The review is safe to retry once the store recovers.
	f.store.failStatusWrite = false
	result, err := f.service.Review(context.Background(), "clerk_admin", f.submission.ID, submission.StatusApproved)
	if err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if result.User == nil || result.User.Points != 50 {
		t.Errorf("retry awarded %+v, want 50 points", result.User)
	}
}
