package domain

import (
	"errors"
	"time"

	"timeclock/internal/clock"
)

// ErrRecordOpen is returned when a duration is requested for a record
// whose session has not ended yet.
var ErrRecordOpen = errors.New("record has no end time")

// TimeRecord is one work session for a user. A record with no end time is
// an open session; storage keeps the end nullable, but callers should go
// through Open/Closed instead of inspecting the pointer.
type TimeRecord struct {
	ID         int64
	UserID     int64
	Date       clock.Date
	Start      clock.TimeOfDay
	End        *clock.TimeOfDay
	Activities string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Open reports whether the session is still running.
func (r TimeRecord) Open() bool {
	return r.End == nil
}

// Closed reports whether both start and end are set, making the record
// eligible for duration and aggregate calculations.
func (r TimeRecord) Closed() bool {
	return r.End != nil
}

// Worked computes the elapsed time of a closed record.
func (r TimeRecord) Worked() (clock.HoursMinutes, error) {
	if r.End == nil {
		return clock.HoursMinutes{}, ErrRecordOpen
	}
	return clock.Duration(r.Start, *r.End)
}
