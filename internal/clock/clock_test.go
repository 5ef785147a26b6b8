package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayTimeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"12:00 a.m.",
		"12:01 a.m.",
		"1:05 a.m.",
		"9:05 a.m.",
		"11:59 a.m.",
		"12:00 p.m.",
		"12:30 p.m.",
		"5:30 p.m.",
		"11:59 p.m.",
	} {
		parsed, err := ParseDisplayTime(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, parsed.Display(), s)
	}
}

func TestISOTimeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"00:00", "00:59", "09:05", "12:00", "17:30", "23:59"} {
		parsed, err := ParseISOTime(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, parsed.ISO(), s)
	}
}

func TestParseDisplayTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "9:05 a.m.", want: 9*60 + 5},
		{in: "12:00 a.m.", want: 0},
		{in: "12:00 p.m.", want: 12 * 60},
		{in: "5:30 p.m.", want: 17*60 + 30},
		{in: "11:59 p.m.", want: 23*60 + 59},
		{in: "9:05", wantErr: true},
		{in: "9:05 am", wantErr: true},
		{in: "13:00 p.m.", wantErr: true},
		{in: "0:30 a.m.", wantErr: true},
		{in: "9:5 a.m.", wantErr: true},
		{in: "9:60 a.m.", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDisplayTime(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseISOTimeRejectsMalformed(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"24:00", "12:60", "12", "1:5", "a:bc", ""} {
		_, err := ParseISOTime(s)
		assert.Error(t, err, s)
	}
}

func TestDisplayDateRoundTrip(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"01/01/2024", "10/03/2024", "29/02/2024", "31/12/2025"} {
		parsed, err := ParseDisplayDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, parsed.Display(), s)
	}
}

func TestDateConversions(t *testing.T) {
	t.Parallel()

	date, err := ParseISODate("2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, "10/03/2024", date.Display())
	assert.Equal(t, "2024-03-10", date.ISO())

	_, err = ParseISODate("2024-02-30")
	assert.Error(t, err)
	_, err = ParseDisplayDate("32/01/2024")
	assert.Error(t, err)
}

func TestDuration(t *testing.T) {
	t.Parallel()

	start, err := ParseDisplayTime("9:00 a.m.")
	require.NoError(t, err)
	end, err := ParseDisplayTime("5:30 p.m.")
	require.NoError(t, err)

	worked, err := Duration(start, end)
	require.NoError(t, err)
	assert.Equal(t, HoursMinutes{Hours: 8, Minutes: 30}, worked)
	assert.Equal(t, "8h 30m", worked.String())
}

func TestDurationIdentity(t *testing.T) {
	t.Parallel()

	for _, pair := range [][2]TimeOfDay{
		{0, 0},
		{0, 1439},
		{9 * 60, 9 * 60},
		{9*60 + 5, 17*60 + 30},
		{765, 766},
	} {
		start, end := pair[0], pair[1]
		worked, err := Duration(start, end)
		require.NoError(t, err)
		assert.Equal(t, int(end-start), worked.TotalMinutes())
	}
}

func TestDurationRejectsEndBeforeStart(t *testing.T) {
	t.Parallel()

	_, err := Duration(17*60+30, 9*60)
	require.ErrorIs(t, err, ErrInvalidInterval)
}

func TestWeekStart(t *testing.T) {
	t.Parallel()

	// 2024-10-03 is a Thursday; its week starts on Sunday 2024-09-29.
	date, err := ParseISODate("2024-10-03")
	require.NoError(t, err)
	assert.Equal(t, "2024-09-29", date.WeekStart().ISO())

	sunday, err := ParseISODate("2024-09-29")
	require.NoError(t, err)
	assert.Equal(t, sunday, sunday.WeekStart())
}

func TestInWeekOf(t *testing.T) {
	t.Parallel()

	ref, err := ParseISODate("2024-10-03")
	require.NoError(t, err)

	tests := []struct {
		iso  string
		want bool
	}{
		{iso: "2024-09-29", want: true},  // week start
		{iso: "2024-10-05", want: true},  // saturday
		{iso: "2024-09-28", want: false}, // day before week start
		{iso: "2024-10-06", want: false}, // next sunday
	}
	for _, tt := range tests {
		date, err := ParseISODate(tt.iso)
		require.NoError(t, err)
		assert.Equal(t, tt.want, date.InWeekOf(ref), tt.iso)
	}
}

func TestTimeOfDayOf(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 10, 3, 17, 30, 59, 0, time.UTC)
	assert.Equal(t, TimeOfDay(17*60+30), TimeOfDayOf(ts))
	assert.Equal(t, Date{Year: 2024, Month: time.October, Day: 3}, DateOf(ts))
}

func TestHoursMinutesAdd(t *testing.T) {
	t.Parallel()

	total := HoursMinutes{Hours: 3, Minutes: 45}.Add(HoursMinutes{Hours: 4, Minutes: 45})
	assert.Equal(t, HoursMinutes{Hours: 8, Minutes: 30}, total)
}
