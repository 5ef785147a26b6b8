package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeclock/internal/clock"
	"timeclock/internal/domain"
	"timeclock/internal/repository"
)

func setupRepos(t *testing.T) (repository.UserRepository, repository.RecordRepository) {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "timeclock.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := NewUserRepository(db)
	records := NewRecordRepository(db)
	require.NoError(t, users.Init(context.Background()))
	require.NoError(t, records.Init(context.Background()))
	return users, records
}

func seedUser(t *testing.T, users repository.UserRepository) int64 {
	t.Helper()
	id, err := users.Create(context.Background(), &domain.User{
		Username:     "mgarcia",
		PasswordHash: "x",
		Name:         "María García",
	})
	require.NoError(t, err)
	return id
}

func mustDate(t *testing.T, iso string) clock.Date {
	t.Helper()
	d, err := clock.ParseISODate(iso)
	require.NoError(t, err)
	return d
}

func TestRecordRoundTrip(t *testing.T) {
	users, records := setupRepos(t)
	userID := seedUser(t, users)

	end := clock.TimeOfDay(17*60 + 30)
	record := &domain.TimeRecord{
		UserID:     userID,
		Date:       mustDate(t, "2024-10-03"),
		Start:      clock.TimeOfDay(9 * 60),
		End:        &end,
		Activities: "release prep",
	}

	id, err := records.Create(context.Background(), record)
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	got, err := records.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "2024-10-03", got.Date.ISO())
	assert.Equal(t, "9:00 a.m.", got.Start.Display())
	require.NotNil(t, got.End)
	assert.Equal(t, "5:30 p.m.", got.End.Display())
	assert.Equal(t, "release prep", got.Activities)
}

func TestOpenRecordKeepsNullEnd(t *testing.T) {
	users, records := setupRepos(t)
	userID := seedUser(t, users)

	record := &domain.TimeRecord{
		UserID: userID,
		Date:   mustDate(t, "2024-10-03"),
		Start:  clock.TimeOfDay(9 * 60),
	}
	id, err := records.Create(context.Background(), record)
	require.NoError(t, err)

	got, err := records.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, got.Open())

	require.NoError(t, records.UpdateEnd(context.Background(), id, clock.TimeOfDay(17*60), "done"))

	got, err = records.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, got.Closed())
	assert.Equal(t, "done", got.Activities)
}

func TestListByUserOrdering(t *testing.T) {
	users, records := setupRepos(t)
	userID := seedUser(t, users)

	for _, fixture := range []struct {
		date  string
		start int
	}{
		{date: "2024-10-01", start: 9 * 60},
		{date: "2024-10-03", start: 9 * 60},
		{date: "2024-10-03", start: 14 * 60},
		{date: "2024-10-02", start: 9 * 60},
	} {
		end := clock.TimeOfDay(fixture.start + 60)
		_, err := records.Create(context.Background(), &domain.TimeRecord{
			UserID: userID,
			Date:   mustDate(t, fixture.date),
			Start:  clock.TimeOfDay(fixture.start),
			End:    &end,
		})
		require.NoError(t, err)
	}

	list, err := records.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 4)

	// newest date first, later start first within a date
	assert.Equal(t, "2024-10-03", list[0].Date.ISO())
	assert.Equal(t, clock.TimeOfDay(14*60), list[0].Start)
	assert.Equal(t, "2024-10-03", list[1].Date.ISO())
	assert.Equal(t, "2024-10-02", list[2].Date.ISO())
	assert.Equal(t, "2024-10-01", list[3].Date.ISO())
}

func TestListByUserAndDate(t *testing.T) {
	users, records := setupRepos(t)
	userID := seedUser(t, users)

	end := clock.TimeOfDay(17 * 60)
	_, err := records.Create(context.Background(), &domain.TimeRecord{
		UserID: userID, Date: mustDate(t, "2024-10-03"), Start: clock.TimeOfDay(9 * 60), End: &end,
	})
	require.NoError(t, err)
	_, err = records.Create(context.Background(), &domain.TimeRecord{
		UserID: userID, Date: mustDate(t, "2024-10-02"), Start: clock.TimeOfDay(9 * 60), End: &end,
	})
	require.NoError(t, err)

	list, err := records.ListByUserAndDate(context.Background(), userID, mustDate(t, "2024-10-03"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-10-03", list[0].Date.ISO())
}

func TestUpdateAndDeleteMissingRecord(t *testing.T) {
	_, records := setupRepos(t)

	err := records.Delete(context.Background(), 12345)
	require.ErrorIs(t, err, repository.ErrRecordNotFound)

	err = records.UpdateActivities(context.Background(), 12345, "x")
	require.ErrorIs(t, err, repository.ErrRecordNotFound)

	_, err = records.Get(context.Background(), 12345)
	require.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestUserUniqueness(t *testing.T) {
	users, _ := setupRepos(t)
	seedUser(t, users)

	_, err := users.Create(context.Background(), &domain.User{
		Username:     "mgarcia",
		PasswordHash: "y",
		Name:         "Other",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
