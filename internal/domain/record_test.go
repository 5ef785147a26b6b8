package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock/internal/clock"
)

func TestWorked(t *testing.T) {
	t.Parallel()

	start, err := clock.ParseISOTime("09:00")
	require.NoError(t, err)
	end, err := clock.ParseISOTime("17:30")
	require.NoError(t, err)

	record := TimeRecord{Start: start, End: &end}
	worked, err := record.Worked()
	require.NoError(t, err)
	assert.Equal(t, "8h 30m", worked.String())
}

func TestWorkedOpenRecord(t *testing.T) {
	t.Parallel()

	start, err := clock.ParseISOTime("09:00")
	require.NoError(t, err)

	record := TimeRecord{Start: start}
	_, err = record.Worked()
	require.ErrorIs(t, err, ErrRecordOpen)
	assert.NotErrorIs(t, err, clock.ErrInvalidInterval)
}
