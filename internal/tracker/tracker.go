// Package tracker is the time accounting core: pure functions over a
// snapshot of one user's records. It performs no I/O and reads no clocks;
// "today" always arrives as an argument.
package tracker

import (
	"fmt"

	"timeclock/internal/clock"
	"timeclock/internal/domain"
)

// Status describes the session state derived from a record snapshot.
// Active is nil when no session is open today. When more than one open
// record exists for today (a data anomaly), the most recently created one
// wins and the rest are surfaced in Inconsistent.
type Status struct {
	Active       *domain.TimeRecord
	Inconsistent []domain.TimeRecord
}

// Resolve determines the active session from the full record set. The
// active flag is never stored; it is derived from the snapshot on every
// read so it cannot desync from storage.
func Resolve(records []domain.TimeRecord, today clock.Date) Status {
	var status Status
	for i := range records {
		r := records[i]
		if !r.Open() || r.Date != today {
			continue
		}
		if status.Active == nil {
			status.Active = &records[i]
			continue
		}
		if r.ID > status.Active.ID {
			status.Inconsistent = append(status.Inconsistent, *status.Active)
			status.Active = &records[i]
		} else {
			status.Inconsistent = append(status.Inconsistent, r)
		}
	}
	return status
}

// TodayTotal sums the closed records dated today.
func TodayTotal(records []domain.TimeRecord, today clock.Date) (clock.HoursMinutes, error) {
	return sumClosed(records, func(r domain.TimeRecord) bool {
		return r.Date == today
	})
}

// WeekTotal sums the closed records whose date falls within the
// Sunday-started week containing today.
func WeekTotal(records []domain.TimeRecord, today clock.Date) (clock.HoursMinutes, error) {
	return sumClosed(records, func(r domain.TimeRecord) bool {
		return r.Date.InWeekOf(today)
	})
}

func sumClosed(records []domain.TimeRecord, include func(domain.TimeRecord) bool) (clock.HoursMinutes, error) {
	var total clock.HoursMinutes
	for _, r := range records {
		if !r.Closed() || !include(r) {
			continue
		}
		worked, err := r.Worked()
		if err != nil {
			return clock.HoursMinutes{}, fmt.Errorf("record %d: %w", r.ID, err)
		}
		total = total.Add(worked)
	}
	return total, nil
}

// EditForm carries the raw field values of a record edit in their
// input-friendly formats (ISO date, 24-hour time).
type EditForm struct {
	Date       string
	Start      string
	End        string
	Activities string
}

// Patch is a validated, normalized edit ready for persistence.
type Patch struct {
	Date       clock.Date
	Start      clock.TimeOfDay
	End        *clock.TimeOfDay
	Activities string
}

// NormalizeEdit validates an edit form and converts it to internal value
// types. Date and start time are mandatory; end time and activities are
// optional. When an end time is present it must not precede the start.
func NormalizeEdit(form EditForm) (Patch, error) {
	if form.Date == "" {
		return Patch{}, missingField("date")
	}
	if form.Start == "" {
		return Patch{}, missingField("start_time")
	}

	date, err := clock.ParseISODate(form.Date)
	if err != nil {
		return Patch{}, malformedField("date", err)
	}
	start, err := clock.ParseISOTime(form.Start)
	if err != nil {
		return Patch{}, malformedField("start_time", err)
	}

	patch := Patch{Date: date, Start: start, Activities: form.Activities}
	if form.End != "" {
		end, err := clock.ParseISOTime(form.End)
		if err != nil {
			return Patch{}, malformedField("end_time", err)
		}
		if _, err := clock.Duration(start, end); err != nil {
			return Patch{}, err
		}
		patch.End = &end
	}
	return patch, nil
}

// FilterByDate narrows the record set to closed records matching the
// display-format target date. An empty target means no filter: all closed
// records are returned.
func FilterByDate(records []domain.TimeRecord, target string) ([]domain.TimeRecord, error) {
	var date clock.Date
	if target != "" {
		parsed, err := clock.ParseDisplayDate(target)
		if err != nil {
			return nil, malformedField("date", err)
		}
		date = parsed
	}

	filtered := make([]domain.TimeRecord, 0, len(records))
	for _, r := range records {
		if !r.Closed() {
			continue
		}
		if target != "" && r.Date != date {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}
