package streak

import "time"

// Next computes the streak value that results from an activity happening at
// now, given the user's previous activity day and streak. Days are compared
// as UTC calendar days, not elapsed hours, so approving at 23:59 and again
// at 00:01 still counts as consecutive days.
func Next(lastActivity *time.Time, current int, now time.Time) int {
	if lastActivity == nil {
		return 1
	}

	switch daysBetween(*lastActivity, now) {
	case 0:
		// Same-day repeat does not inflate the streak.
		return current
	case 1:
		return current + 1
	default:
		// Two or more days missed, or clock skew put the last
		// activity in the future. Either way the chain is broken.
		return 1
	}
}

func daysBetween(from, to time.Time) int {
	return int(startOfDay(to).Sub(startOfDay(from)).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
