package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scryfall/internal/etl"
	"scryfall/internal/storage"
)

func newStore(t *testing.T) *storage.SyncStore {
	db, err := storage.New(filepath.Join(t.TempDir(), "nested", "scryfall.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return storage.NewSyncStore(db)
}

func elvesJob(name string) *etl.SyncJob {
	return &etl.SyncJob{
		Name:          name,
		SourceType:    "search",
		SourceCfg:     etl.SourceConfig{"query": "t:elf", "include_extras": true},
		Transforms:    []etl.TransformConfig{{Type: "limit", Config: map[string]any{"count": 10.0}}},
		Target:        etl.Target{Driver: "sqlite", DSN: "/tmp/cards.db", Table: "elves"},
		SyncMode:      etl.SyncAppend,
		DedupeKey:     "id",
		TriggerType:   etl.TriggerSchedule,
		TriggerConfig: "@daily",
		Enabled:       true,
	}
}

func TestSyncStore_JobRoundTrip(t *testing.T) {
	s := newStore(t)
	job := elvesJob("elves")
	require.NoError(t, s.CreateJob(job))
	require.NotEmpty(t, job.ID)

	byID, err := s.GetJob(job.ID)
	require.NoError(t, err)
	byName, err := s.GetJob("elves")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, byName.ID)

	assert.Equal(t, "t:elf", byID.SourceCfg["query"])
	assert.Equal(t, true, byID.SourceCfg["include_extras"])
	assert.Equal(t, job.Target, byID.Target)
	assert.Equal(t, etl.SyncAppend, byID.SyncMode)
	assert.Equal(t, 10.0, byID.Transforms[0].Config["count"])
	assert.True(t, byID.Enabled)
	assert.True(t, byID.LastRunAt.IsZero())
	assert.WithinDuration(t, job.CreatedAt, byID.CreatedAt, time.Second)

	byID.Enabled = false
	byID.Target.Table = "elf_cards"
	require.NoError(t, s.UpdateJob(byID))
	got, err := s.GetJob(job.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.Equal(t, "elf_cards", got.Target.Table)

	require.NoError(t, s.UpdateJobStatus(job.ID, etl.StatusError, "boom"))
	got, err = s.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, etl.StatusError, got.LastStatus)
	assert.Equal(t, "boom", got.LastError)
	assert.False(t, got.LastRunAt.IsZero())
}

func TestSyncStore_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.GetJob("nope")
	assert.ErrorIs(t, err, storage.ErrJobNotFound)
	assert.ErrorIs(t, s.DeleteJob("nope"), storage.ErrJobNotFound)
	assert.ErrorIs(t, s.UpdateJob(&etl.SyncJob{ID: "nope"}), storage.ErrJobNotFound)
}

func TestSyncStore_DuplicateName(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.CreateJob(elvesJob("elves")))
	assert.Error(t, s.CreateJob(elvesJob("elves")))
}

func TestSyncStore_ListAndTriggered(t *testing.T) {
	s := newStore(t)
	scheduled := elvesJob("scheduled")
	manual := elvesJob("manual")
	manual.TriggerType = etl.TriggerManual
	disabled := elvesJob("disabled")
	disabled.Enabled = false
	for _, j := range []*etl.SyncJob{scheduled, manual, disabled} {
		require.NoError(t, s.CreateJob(j))
	}

	all, err := s.ListJobs()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	triggered, err := s.ListEnabledTriggeredJobs()
	require.NoError(t, err)
	require.Len(t, triggered, 1)
	assert.Equal(t, "scheduled", triggered[0].Name)
}

func TestSyncStore_RunLogs(t *testing.T) {
	s := newStore(t)
	job := elvesJob("elves")
	require.NoError(t, s.CreateJob(job))

	start := time.Now().UTC().Add(-time.Hour)
	for i := range 3 {
		require.NoError(t, s.CreateRunLog(&etl.SyncRunLog{
			JobID:       job.ID,
			StartedAt:   start.Add(time.Duration(i) * time.Minute),
			FinishedAt:  start.Add(time.Duration(i)*time.Minute + time.Second),
			Status:      etl.StatusSuccess,
			RowsRead:    i,
			RowsWritten: i,
		}))
	}

	logs, err := s.ListRunLogs(job.ID, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, 2, logs[0].RowsRead)
	assert.Equal(t, 1, logs[1].RowsRead)

	require.NoError(t, s.DeleteJob(job.ID))
	logs, err = s.ListRunLogs(job.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
