package domain

import "time"

// CalendarDate truncates t to midnight UTC. All birth, create and
// attendance dates are stored in this form so date equality is exact.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
