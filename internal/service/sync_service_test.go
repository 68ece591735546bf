package service_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scryfall/internal/client"
	"scryfall/internal/etl"
	_ "scryfall/internal/etl/sources"
	"scryfall/internal/record"
	"scryfall/internal/service"
	"scryfall/internal/storage"
)

const base = "https://api.test/"

const setsPage = `{"object":"list","has_more":false,"data":[
	{"object":"set","code":"khm","name":"Kaldheim","set_type":"expansion","released_at":"2021-02-05","card_count":285},
	{"object":"set","code":"m21","name":"Core Set 2021","set_type":"core","released_at":"2020-07-03","card_count":397}]}`

type cannedFetcher map[string]string

func (f cannedFetcher) Fetch(_ context.Context, locator string) (record.Record, error) {
	b, ok := f[locator]
	if !ok {
		return record.Empty(), fmt.Errorf("unexpected fetch %s", locator)
	}
	return record.Parse([]byte(b))
}

type fakeSink struct {
	mu      sync.Mutex
	rows    int
	closed  int
	release chan struct{}
	entered chan struct{}
}

func (s *fakeSink) Write(ctx context.Context, _ string, _ *etl.Schema, rows []etl.Row, _ etl.SyncMode) (int, error) {
	if s.release != nil {
		close(s.entered)
		select {
		case <-s.release:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows += len(rows)
	return len(rows), nil
}

func (s *fakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

type fixture struct {
	svc     *service.SyncService
	store   *storage.SyncStore
	sink    *fakeSink
	emitter *service.MockEmitter
}

func newFixture(t *testing.T) *fixture {
	db, err := storage.New(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	c, err := client.New(cannedFetcher{base + "sets": setsPage}, base)
	require.NoError(t, err)

	store := storage.NewSyncStore(db)
	emitter := &service.MockEmitter{}
	sink := &fakeSink{}
	svc := service.NewSyncService(store, c, emitter).
		WithSinkOpener(func(etl.Target) (etl.Sink, error) { return sink, nil })
	t.Cleanup(svc.Stop)
	return &fixture{svc: svc, store: store, sink: sink, emitter: emitter}
}

func setsInput(name string) service.JobInput {
	return service.JobInput{
		Name:         name,
		SourceType:   "sets",
		SourceConfig: map[string]any{"set_types": "core"},
		Target:       etl.Target{Driver: "sqlite", DSN: "/tmp/out.db", Table: "sets"},
		Enabled:      true,
	}
}

func TestSyncService_CreateJobValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		modify func(in *service.JobInput)
		errMsg string
	}{
		{"no name", func(in *service.JobInput) { in.Name = "" }, "name is required"},
		{"unknown source", func(in *service.JobInput) { in.SourceType = "decks" }, "unknown source type"},
		{"bad source config", func(in *service.JobInput) { in.SourceConfig = map[string]any{"colour": "red"} }, "source config"},
		{"bad transform", func(in *service.JobInput) {
			in.Transforms = []etl.TransformConfig{{Type: "explode"}}
		}, "unknown type"},
		{"bad mode", func(in *service.JobInput) { in.SyncMode = "merge" }, "merge"},
		{"bad driver", func(in *service.JobInput) { in.Target.Driver = "oracle" }, "unsupported driver"},
		{"no table", func(in *service.JobInput) { in.Target.Table = "" }, "table"},
		{"bad cron", func(in *service.JobInput) {
			in.TriggerType = etl.TriggerSchedule
			in.TriggerConfig = "every tuesday"
		}, "invalid cron"},
		{"watch without path", func(in *service.JobInput) { in.TriggerType = etl.TriggerFileWatch }, "needs a path"},
		{"unknown trigger", func(in *service.JobInput) { in.TriggerType = "webhook" }, "unknown trigger"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := setsInput("sets")
			tt.modify(&in)
			_, err := f.svc.CreateJob(ctx, in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	jobs, err := f.svc.ListJobs()
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Empty(t, f.emitter.Named(service.EventJobsChanged))
}

func TestSyncService_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job, err := f.svc.CreateJob(ctx, setsInput("core-sets"))
	require.NoError(t, err)
	assert.Equal(t, etl.TriggerManual, job.TriggerType)
	assert.Equal(t, etl.SyncReplace, job.SyncMode)

	in := setsInput("core-sets")
	in.TriggerType = etl.TriggerSchedule
	in.TriggerConfig = "0 6 * * *"
	updated, err := f.svc.UpdateJob(ctx, "core-sets", in)
	require.NoError(t, err)
	assert.Equal(t, job.ID, updated.ID)
	assert.Equal(t, "0 6 * * *", updated.TriggerConfig)

	require.NoError(t, f.svc.SetEnabled(ctx, job.ID, false))
	got, err := f.svc.GetJob(job.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	require.NoError(t, f.svc.DeleteJob(ctx, "core-sets"))
	_, err = f.svc.GetJob(job.ID)
	assert.ErrorIs(t, err, storage.ErrJobNotFound)

	assert.Len(t, f.emitter.Named(service.EventJobsChanged), 3)
}

func TestSyncService_RunJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job, err := f.svc.CreateJob(ctx, setsInput("core-sets"))
	require.NoError(t, err)

	res, err := f.svc.RunJob(ctx, "core-sets")
	require.NoError(t, err)
	assert.Equal(t, etl.StatusSuccess, res.Status)
	assert.Equal(t, 1, res.RowsRead)
	assert.Equal(t, 1, res.RowsWritten)
	assert.Equal(t, 1, f.sink.rows)
	assert.Equal(t, 1, f.sink.closed)

	got, err := f.svc.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, etl.StatusSuccess, got.LastStatus)
	assert.False(t, got.LastRunAt.IsZero())

	logs, err := f.svc.ListRunLogs("core-sets")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, etl.StatusSuccess, logs[0].Status)
	assert.Equal(t, 1, logs[0].RowsWritten)

	assert.Len(t, f.emitter.Named(service.EventJobStarted), 1)
	completed := f.emitter.Named(service.EventJobCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, res, completed[0].Data)
}

func TestSyncService_RunJobRecordsFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := setsInput("symbols")
	in.SourceType = "symbols"
	in.SourceConfig = nil
	job, err := f.svc.CreateJob(ctx, in)
	require.NoError(t, err)

	// The canned fetcher has no symbology page.
	res, err := f.svc.RunJob(ctx, job.ID)
	require.Error(t, err)
	assert.Equal(t, etl.StatusError, res.Status)

	got, err := f.svc.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, etl.StatusError, got.LastStatus)
	assert.Contains(t, got.LastError, "unexpected fetch")

	logs, err := f.svc.ListRunLogs(job.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, etl.StatusError, logs[0].Status)
	assert.Zero(t, f.sink.rows)
}

func TestSyncService_RunJobRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sink.release = make(chan struct{})
	f.sink.entered = make(chan struct{})

	job, err := f.svc.CreateJob(ctx, setsInput("core-sets"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.RunJob(ctx, job.ID)
		done <- err
	}()
	<-f.sink.entered
	assert.Equal(t, []string{job.ID}, f.svc.Running())

	_, err = f.svc.RunJob(ctx, "core-sets")
	assert.ErrorIs(t, err, service.ErrJobRunning)

	close(f.sink.release)
	require.NoError(t, <-done)

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	f.svc.WaitRunning(waitCtx)
	assert.Empty(t, f.svc.Running())
}

func TestSyncService_RunJobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := f.svc.CreateJob(ctx, setsInput(name))
		require.NoError(t, err)
	}

	results, err := f.svc.RunJobs(ctx, []string{"a", "b", "c", "missing"}, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrJobNotFound)
	require.Len(t, results, 4)
	for _, r := range results[:3] {
		require.NotNil(t, r)
		assert.Equal(t, etl.StatusSuccess, r.Status)
	}
	assert.Nil(t, results[3])
	assert.Equal(t, 3, f.sink.rows)
}

func TestSyncService_Preview(t *testing.T) {
	f := newFixture(t)

	rows, schema, err := f.svc.Preview(context.Background(), "sets", etl.SourceConfig{}, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "khm", rows[0].Data["code"])
	assert.Contains(t, schema.FieldNames(), "code")
	assert.Zero(t, f.sink.rows)
}

func TestSyncService_FileWatchTriggersRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	watched := filepath.Join(t.TempDir(), "decklist.txt")
	require.NoError(t, os.WriteFile(watched, []byte("1 Llanowar Elves\n"), 0o644))

	in := setsInput("on-change")
	in.TriggerType = etl.TriggerFileWatch
	in.TriggerConfig = watched
	job, err := f.svc.CreateJob(ctx, in)
	require.NoError(t, err)

	for range 3 {
		require.NoError(t, os.WriteFile(watched, []byte("4 Llanowar Elves\n"), 0o644))
	}

	assert.Eventually(t, func() bool {
		logs, err := f.store.ListRunLogs(job.ID, 10)
		return err == nil && len(logs) == 1
	}, 5*time.Second, 50*time.Millisecond)

	// Bursts of writes collapse into one run.
	time.Sleep(time.Second)
	logs, err := f.store.ListRunLogs(job.ID, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestSyncService_StopIdempotent(t *testing.T) {
	f := newFixture(t)
	f.svc.Stop()
	f.svc.Stop()
}
