package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitlog/internal/domain"
)

// openTestDB connects to TEST_DATABASE_URL and clears every table. The
// tests are skipped when it is unset.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	driver := os.Getenv("TEST_DATABASE_DRIVER")
	if driver == "" {
		driver = DriverPGX
	}
	db, err := Open(driver, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.sql.Exec("TRUNCATE sessions, weight_entries, notes, exercise_logs, users RESTART IDENTITY")
	require.NoError(t, err)
	return db
}

func TestWeightEntries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.AddWeightEntry(ctx, 1, domain.WeightEntry{Date: "2024-01-01", Weight: "80", CreatedAt: time.Now()})
	require.NoError(t, err)

	e, err := db.GetWeightEntry(ctx, 1, id)
	require.NoError(t, err)
	require.NotNil(t, e)
	e.Weight = ""
	require.NoError(t, db.UpdateWeightEntry(ctx, 1, *e))
	assert.ErrorIs(t, db.UpdateWeightEntry(ctx, 2, *e), domain.ErrNotFound)

	require.NoError(t, db.ReplaceWeightEntries(ctx, 1, []domain.WeightEntry{{ID: "a", Date: "2024-02-01"}}))
	entries, err := db.ListWeightEntries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ID)
}

func TestNotesJSONColumns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.AddNote(ctx, 1, domain.Note{
		Title:      "t",
		Media:      []domain.Media{{Type: domain.MediaImage, DataURL: "data:image/png;base64,AA=="}},
		VideoLinks: []domain.LinkItem{{ID: "l1", URL: "https://youtu.be/x", Name: "Video 1"}},
	})
	require.NoError(t, err)

	n, err := db.GetNote(ctx, 1, id)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Len(t, n.Media, 1)
	assert.Equal(t, "Video 1", n.VideoLinks[0].Name)
}

func TestExerciseLogsKeepInsertionOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"Press", "Curl", "Remo"} {
		_, err := db.AddExerciseLog(ctx, 1, domain.BookSummary, domain.ExerciseLog{Date: "2024-01-01", ExerciseName: name})
		require.NoError(t, err)
	}
	logs, err := db.ListExerciseLogs(ctx, 1, domain.BookSummary)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "Remo", logs[2].ExerciseName)

	daily, err := db.ListExerciseLogs(ctx, 1, domain.BookDaily)
	require.NoError(t, err)
	assert.Empty(t, daily)
}

func TestSessions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u, err := db.Create(ctx, "ana", "hash")
	require.NoError(t, err)
	sessions := NewSessionRepo(db)
	require.NoError(t, sessions.Create(ctx, u.ID, "tok", "ua", "10.0.0.1", time.Now().Add(-time.Minute)))
	require.NoError(t, sessions.DeleteExpired(ctx))
	s, err := sessions.GetByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestReplaceKeepsIDsPerUser(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, uid := range []int64{1, 2} {
		require.NoError(t, db.ReplaceWeightEntries(ctx, uid, []domain.WeightEntry{{ID: "w1", Date: "2024-01-01"}}))
		require.NoError(t, db.ReplaceNotes(ctx, uid, []domain.Note{{ID: "n1", Title: "t"}}))
	}
	for _, uid := range []int64{1, 2} {
		entries, err := db.ListWeightEntries(ctx, uid)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		notes, err := db.ListNotes(ctx, uid)
		require.NoError(t, err)
		assert.Len(t, notes, 1)
	}
}

func TestInTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.AddWeightEntry(ctx, 1, domain.WeightEntry{Date: "2024-01-01", Weight: "80", CreatedAt: time.Now()})
	require.NoError(t, err)

	err = db.InTx(ctx, func(ctx context.Context) error {
		if err := db.ReplaceWeightEntries(ctx, 1, nil); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.EqualError(t, err, "boom")

	entries, err := db.ListWeightEntries(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
