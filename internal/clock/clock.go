// Package clock holds the date and time-of-day value types exchanged with
// the UI. Internally everything is locale independent (calendar date plus
// minutes since midnight); the display formats exist only at parse/format
// time.
package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInterval indicates an end time that precedes its start time.
var ErrInvalidInterval = errors.New("end time precedes start time")

const (
	displayDateLayout = "02/01/2006"
	isoDateLayout     = "2006-01-02"

	markerAM = "a.m."
	markerPM = "p.m."
)

// Date is a calendar date without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDisplayDate parses the dd/mm/yyyy form shown in the UI.
func ParseDisplayDate(s string) (Date, error) {
	t, err := time.Parse(displayDateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse display date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// ParseISODate parses the yyyy-mm-dd form used by date inputs.
func ParseISODate(s string) (Date, error) {
	t, err := time.Parse(isoDateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse iso date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Display renders the date as dd/mm/yyyy.
func (d Date) Display() string {
	return d.Time().Format(displayDateLayout)
}

// ISO renders the date as yyyy-mm-dd.
func (d Date) ISO() string {
	return d.Time().Format(isoDateLayout)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// WeekStart returns the Sunday on or before d.
func (d Date) WeekStart() Date {
	return d.AddDays(-int(d.Time().Weekday()))
}

// Before reports whether d is chronologically before other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// InWeekOf reports whether d falls within the Sunday-started week
// containing ref.
func (d Date) InWeekOf(ref Date) bool {
	start := ref.WeekStart()
	return !d.Before(start) && d.Before(start.AddDays(7))
}

// TimeOfDay is a clock reading expressed as minutes since midnight.
type TimeOfDay int

// TimeOfDayOf truncates t to its minute of day.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// ParseDisplayTime parses the 12-hour form shown in the UI, e.g.
// "9:05 a.m." or "5:30 p.m.". The hour is unpadded, the minute padded,
// and the marker is lowercase with dots.
func ParseDisplayTime(s string) (TimeOfDay, error) {
	clockPart, marker, ok := strings.Cut(strings.TrimSpace(s), " ")
	if !ok || (marker != markerAM && marker != markerPM) {
		return 0, fmt.Errorf("invalid display time %q", s)
	}
	hourPart, minutePart, ok := strings.Cut(clockPart, ":")
	if !ok {
		return 0, fmt.Errorf("invalid display time %q", s)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 1 || hour > 12 {
		return 0, fmt.Errorf("invalid display time %q", s)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil || len(minutePart) != 2 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid display time %q", s)
	}

	hour %= 12
	if marker == markerPM {
		hour += 12
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ParseISOTime parses the 24-hour HH:MM form used by time inputs.
func ParseISOTime(s string) (TimeOfDay, error) {
	hourPart, minutePart, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil || len(minutePart) != 2 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// Display renders the 12-hour form, e.g. "9:05 a.m.". Midnight is
// "12:00 a.m.", noon "12:00 p.m.".
func (t TimeOfDay) Display() string {
	hour := int(t) / 60
	minute := int(t) % 60

	marker := markerAM
	if hour >= 12 {
		marker = markerPM
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, marker)
}

// ISO renders the 24-hour HH:MM form.
func (t TimeOfDay) ISO() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// HoursMinutes is an elapsed amount of worked time.
type HoursMinutes struct {
	Hours   int
	Minutes int
}

// FromMinutes reduces a minute count to hours plus remainder minutes.
func FromMinutes(total int) HoursMinutes {
	return HoursMinutes{Hours: total / 60, Minutes: total % 60}
}

// TotalMinutes returns the amount flattened back to minutes.
func (hm HoursMinutes) TotalMinutes() int {
	return hm.Hours*60 + hm.Minutes
}

// Add returns the sum of two amounts.
func (hm HoursMinutes) Add(other HoursMinutes) HoursMinutes {
	return FromMinutes(hm.TotalMinutes() + other.TotalMinutes())
}

// String renders the amount as shown in the UI, e.g. "8h 30m".
func (hm HoursMinutes) String() string {
	return fmt.Sprintf("%dh %dm", hm.Hours, hm.Minutes)
}

// Duration computes the elapsed time between two readings on the same day.
// An end before its start is rejected with ErrInvalidInterval rather than
// wrapped past midnight; a single record carries one calendar date, so an
// overnight interval cannot be stored anyway.
func Duration(start, end TimeOfDay) (HoursMinutes, error) {
	if end < start {
		return HoursMinutes{}, fmt.Errorf("%w: %s before %s", ErrInvalidInterval, end.Display(), start.Display())
	}
	return FromMinutes(int(end - start)), nil
}
