package streak

import (
	"testing"
	"time"
)

func TestNext(t *testing.T) {
	day := func(y int, m time.Month, d, hour int) time.Time {
		return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
	}

	yesterday := day(2026, 3, 14, 18)
	today := day(2026, 3, 15, 9)

	tests := []struct {
		name         string
		lastActivity *time.Time
		current      int
		now          time.Time
		want         int
	}{
		{
			name:         "first ever activity",
			lastActivity: nil,
			current:      0,
			now:          today,
			want:         1,
		},
		{
			name:         "consecutive day extends",
			lastActivity: &yesterday,
			current:      3,
			now:          today,
			want:         4,
		},
		{
			name:         "same day repeat keeps streak",
			lastActivity: &today,
			current:      4,
			now:          day(2026, 3, 15, 22),
			want:         4,
		},
		{
			name:         "two day gap resets",
			lastActivity: &yesterday,
			current:      9,
			now:          day(2026, 3, 17, 9),
			want:         1,
		},
		{
			name:         "midnight boundary still counts as consecutive",
			lastActivity: timePtr(day(2026, 3, 14, 23).Add(59 * time.Minute)),
			current:      2,
			now:          day(2026, 3, 15, 0).Add(1 * time.Minute),
			want:         3,
		},
		{
			name:         "future last activity resets",
			lastActivity: timePtr(day(2026, 3, 20, 12)),
			current:      5,
			now:          today,
			want:         1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Next(tt.lastActivity, tt.current, tt.now)
			if got != tt.want {
				t.Errorf("Next() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextComparesCalendarDaysNotElapsedHours(t *testing.T) {
	// 23:59 yesterday to 00:01 today is only two minutes apart but is
	// still a day transition; 00:01 to 23:59 on the same day is nearly
	// 24 hours but is not.
	lateYesterday := time.Date(2026, 5, 1, 23, 59, 0, 0, time.UTC)
	if got := Next(&lateYesterday, 1, time.Date(2026, 5, 2, 0, 1, 0, 0, time.UTC)); got != 2 {
		t.Errorf("two minutes over midnight: got %d, want 2", got)
	}

	earlyToday := time.Date(2026, 5, 2, 0, 1, 0, 0, time.UTC)
	if got := Next(&earlyToday, 2, time.Date(2026, 5, 2, 23, 59, 0, 0, time.UTC)); got != 2 {
		t.Errorf("same calendar day: got %d, want 2", got)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
