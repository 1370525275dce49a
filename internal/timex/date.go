package timex

import "time"

// DateLayout is the calendar-date format used in CSV exports and the API.
const DateLayout = "2006-01-02"

// Date truncates t to midnight UTC of its own calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date according to now.
func Today(now func() time.Time) time.Time {
	return Date(now())
}
