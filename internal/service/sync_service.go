package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"scryfall/internal/client"
	"scryfall/internal/dbclient"
	"scryfall/internal/etl"
	"scryfall/internal/logging"
	"scryfall/internal/storage"
)

var logger = logging.Logger("service/sync")

// ErrJobRunning is returned when a job is started while a previous run
// of it is still in flight.
var ErrJobRunning = errors.New("job is already running")

const (
	defaultRunTimeout = 30 * time.Minute
	watchDebounce     = 500 * time.Millisecond
	runLogLimit       = 50
)

// SinkOpener opens the sink a job writes to.
type SinkOpener func(etl.Target) (etl.Sink, error)

// SyncService manages export jobs: CRUD, runs, the cron scheduler and
// the file watchers.
type SyncService struct {
	store       *storage.SyncStore
	client      *client.Client
	emitter     EventEmitter
	openSink    SinkOpener
	runningJobs runningJobsGuard

	// RunTimeout bounds a single run.
	RunTimeout time.Duration

	// watcher / cron lifecycle
	mu          sync.Mutex
	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
	cronSched   *cron.Cron
}

// NewSyncService creates a SyncService writing through dbclient sinks.
func NewSyncService(store *storage.SyncStore, c *client.Client, emitter EventEmitter) *SyncService {
	if emitter == nil {
		emitter = LogEmitter{}
	}
	return &SyncService{
		store:      store,
		client:     c,
		emitter:    emitter,
		openSink:   dbclient.NewSink,
		RunTimeout: defaultRunTimeout,
	}
}

// WithSinkOpener replaces how sinks are opened.
func (s *SyncService) WithSinkOpener(open SinkOpener) *SyncService {
	s.openSink = open
	return s
}

// ── Job CRUD ───────────────────────────────────────────────

type JobInput struct {
	Name          string                `json:"name"`
	SourceType    string                `json:"sourceType"`
	SourceConfig  map[string]any        `json:"sourceConfig"`
	Transforms    []etl.TransformConfig `json:"transforms"`
	Target        etl.Target            `json:"target"`
	SyncMode      string                `json:"syncMode"`
	DedupeKey     string                `json:"dedupeKey"`
	TriggerType   string                `json:"triggerType"`
	TriggerConfig string                `json:"triggerConfig"`
	Enabled       bool                  `json:"enabled"`
}

// apply validates in and copies it onto job.
func (in JobInput) apply(job *etl.SyncJob) error {
	if in.Name == "" {
		return errors.New("job name is required")
	}
	source, err := etl.GetSource(in.SourceType)
	if err != nil {
		return err
	}
	if _, err := source.Discover(in.SourceConfig); err != nil {
		return err
	}
	if _, err := etl.BuildTransformers(in.Transforms, in.DedupeKey); err != nil {
		return err
	}
	mode, err := etl.ParseSyncMode(in.SyncMode)
	if err != nil {
		return err
	}
	if !lo.Contains(dbclient.Drivers, in.Target.Driver) {
		return fmt.Errorf("unsupported driver: %q", in.Target.Driver)
	}
	if in.Target.DSN == "" || in.Target.Table == "" {
		return errors.New("target dsn and table are required")
	}

	trigger := in.TriggerType
	switch trigger {
	case "", etl.TriggerManual:
		trigger = etl.TriggerManual
	case etl.TriggerSchedule:
		if _, err := cron.ParseStandard(in.TriggerConfig); err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", in.TriggerConfig, err)
		}
	case etl.TriggerFileWatch:
		if in.TriggerConfig == "" {
			return errors.New("file_watch trigger needs a path")
		}
	default:
		return fmt.Errorf("unknown trigger type: %q", in.TriggerType)
	}

	job.Name = in.Name
	job.SourceType = in.SourceType
	job.SourceCfg = in.SourceConfig
	job.Transforms = in.Transforms
	job.Target = in.Target
	job.SyncMode = mode
	job.DedupeKey = in.DedupeKey
	job.TriggerType = trigger
	job.TriggerConfig = in.TriggerConfig
	job.Enabled = in.Enabled
	return nil
}

func (s *SyncService) CreateJob(ctx context.Context, input JobInput) (*etl.SyncJob, error) {
	job := &etl.SyncJob{}
	if err := input.apply(job); err != nil {
		return nil, err
	}
	if err := s.store.CreateJob(job); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, EventJobsChanged, job.ID)
	s.RestartWatchers(ctx)
	return job, nil
}

// GetJob looks a job up by id or name.
func (s *SyncService) GetJob(ref string) (*etl.SyncJob, error) {
	return s.store.GetJob(ref)
}

func (s *SyncService) ListJobs() ([]etl.SyncJob, error) {
	return s.store.ListJobs()
}

func (s *SyncService) UpdateJob(ctx context.Context, ref string, input JobInput) (*etl.SyncJob, error) {
	job, err := s.store.GetJob(ref)
	if err != nil {
		return nil, err
	}
	if err := input.apply(job); err != nil {
		return nil, err
	}
	if err := s.store.UpdateJob(job); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, EventJobsChanged, job.ID)
	s.RestartWatchers(ctx)
	return job, nil
}

// SetEnabled turns a job's trigger on or off.
func (s *SyncService) SetEnabled(ctx context.Context, ref string, enabled bool) error {
	job, err := s.store.GetJob(ref)
	if err != nil {
		return err
	}
	job.Enabled = enabled
	if err := s.store.UpdateJob(job); err != nil {
		return err
	}
	s.RestartWatchers(ctx)
	return nil
}

func (s *SyncService) DeleteJob(ctx context.Context, ref string) error {
	job, err := s.store.GetJob(ref)
	if err != nil {
		return err
	}
	if err := s.store.DeleteJob(job.ID); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventJobsChanged, job.ID)
	s.RestartWatchers(ctx)
	return nil
}

// ListSources returns the available source descriptors.
func (s *SyncService) ListSources() []etl.SourceSpec {
	return etl.ListSources()
}

// ListRunLogs returns the most recent runs of a job.
func (s *SyncService) ListRunLogs(ref string) ([]etl.SyncRunLog, error) {
	job, err := s.store.GetJob(ref)
	if err != nil {
		return nil, err
	}
	return s.store.ListRunLogs(job.ID, runLogLimit)
}

// Running returns the ids of the jobs running now.
func (s *SyncService) Running() []string {
	return s.runningJobs.Running()
}

// ── Run ────────────────────────────────────────────────────

// RunJob executes a job synchronously, records the run and emits
// EventJobCompleted.
func (s *SyncService) RunJob(ctx context.Context, ref string) (*etl.SyncResult, error) {
	job, err := s.store.GetJob(ref)
	if err != nil {
		return nil, err
	}
	if !s.runningJobs.TryLock(job.ID) {
		return nil, fmt.Errorf("%w: %s", ErrJobRunning, job.Name)
	}
	defer s.runningJobs.Unlock(job.ID)

	if err := s.store.UpdateJobStatus(job.ID, etl.StatusRunning, ""); err != nil {
		logger.Warn("status update failed", "job", job.ID, "err", err)
	}
	s.emitter.Emit(ctx, EventJobStarted, job.ID)

	runCtx, cancel := context.WithTimeout(ctx, s.RunTimeout)
	defer cancel()

	start := time.Now().UTC()
	result, runErr := s.run(runCtx, job)

	runLog := &etl.SyncRunLog{
		JobID:       job.ID,
		StartedAt:   start,
		FinishedAt:  time.Now().UTC(),
		Status:      result.Status,
		RowsRead:    result.RowsRead,
		RowsWritten: result.RowsWritten,
	}
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		runLog.Error = errMsg
	}
	if err := s.store.CreateRunLog(runLog); err != nil {
		logger.Warn("run log not saved", "job", job.ID, "err", err)
	}
	if err := s.store.UpdateJobStatus(job.ID, result.Status, errMsg); err != nil {
		logger.Warn("status update failed", "job", job.ID, "err", err)
	}

	s.emitter.Emit(ctx, EventJobCompleted, result)
	return result, runErr
}

func (s *SyncService) run(ctx context.Context, job *etl.SyncJob) (*etl.SyncResult, error) {
	sink, err := s.openSink(job.Target)
	if err != nil {
		return &etl.SyncResult{JobID: job.ID, Status: etl.StatusError, Error: err.Error()}, err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("sink close failed", "job", job.ID, "err", err)
		}
	}()

	engine := &etl.Engine{Client: s.client, Dest: sink}
	return engine.RunSync(ctx, job)
}

// RunJobs runs several jobs with at most parallel in flight. Every job
// is attempted; the first error is returned along with all results.
func (s *SyncService) RunJobs(ctx context.Context, refs []string, parallel int) ([]*etl.SyncResult, error) {
	results := make([]*etl.SyncResult, len(refs))
	var g errgroup.Group
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, ref := range refs {
		g.Go(func() error {
			res, err := s.RunJob(ctx, ref)
			results[i] = res
			if err != nil {
				return fmt.Errorf("%s: %w", ref, err)
			}
			return nil
		})
	}
	return results, g.Wait()
}

// Preview reads a few rows of a source without writing them.
func (s *SyncService) Preview(ctx context.Context, sourceType string, cfg etl.SourceConfig, maxRows int) ([]etl.Row, *etl.Schema, error) {
	engine := &etl.Engine{Client: s.client}
	previewCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	return engine.Preview(previewCtx, sourceType, cfg, maxRows)
}

// ── Watchers (cron + file_watch) ──────────────────────────

// RestartWatchers tears down the current watcher and cron scheduler and
// rebuilds them from the enabled jobs.
func (s *SyncService) RestartWatchers(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatchersLocked()

	jobs, err := s.store.ListEnabledTriggeredJobs()
	if err != nil {
		logger.Error("failed to list jobs", "err", err)
		return
	}

	scheduled := lo.Filter(jobs, func(j etl.SyncJob, _ int) bool {
		return j.TriggerType == etl.TriggerSchedule && j.TriggerConfig != ""
	})
	if len(scheduled) > 0 {
		c := cron.New()
		for _, j := range scheduled {
			jid := j.ID
			if _, err := c.AddFunc(j.TriggerConfig, func() { s.trigger(ctx, jid, "cron") }); err != nil {
				logger.Warn("invalid cron expression", "job", jid, "expr", j.TriggerConfig, "err", err)
			}
		}
		c.Start()
		s.cronSched = c
		logger.Info("cron started", "jobs", len(scheduled))
	}

	watched := lo.Filter(jobs, func(j etl.SyncJob, _ int) bool {
		return j.TriggerType == etl.TriggerFileWatch && j.TriggerConfig != ""
	})
	if len(watched) == 0 {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create watcher", "err", err)
		return
	}
	s.watcher = watcher

	// Directories are watched rather than files so editors that replace
	// the file on save keep triggering.
	pathToJobs := make(map[string][]string)
	watchedDirs := make(map[string]bool)
	for _, j := range watched {
		absPath, err := filepath.Abs(j.TriggerConfig)
		if err != nil {
			logger.Warn("bad watch path", "job", j.ID, "path", j.TriggerConfig, "err", err)
			continue
		}
		pathToJobs[absPath] = append(pathToJobs[absPath], j.ID)

		dir := filepath.Dir(absPath)
		if watchedDirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			logger.Warn("failed to watch dir", "dir", dir, "err", err)
			continue
		}
		watchedDirs[dir] = true
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	s.watchCancel = cancel
	go s.watch(ctx, watchCtx, watcher, pathToJobs)

	logger.Info("watching files", "files", len(pathToJobs))
}

func (s *SyncService) watch(ctx, watchCtx context.Context, watcher *fsnotify.Watcher, pathToJobs map[string][]string) {
	debounced := make(map[string]func(func()))
	for {
		select {
		case <-watchCtx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			for _, jid := range pathToJobs[absPath] {
				d, ok := debounced[jid]
				if !ok {
					d = debounce.New(watchDebounce)
					debounced[jid] = d
				}
				d(func() {
					if watchCtx.Err() != nil {
						return
					}
					s.trigger(ctx, jid, "file "+absPath)
				})
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}

func (s *SyncService) trigger(ctx context.Context, jobID, cause string) {
	logger.Info("running job", "job", jobID, "trigger", cause)
	if _, err := s.RunJob(ctx, jobID); err != nil {
		logger.Warn("triggered run failed", "job", jobID, "err", err)
	}
}

// WaitRunning blocks until all running jobs finish or ctx is done.
func (s *SyncService) WaitRunning(ctx context.Context) {
	s.runningJobs.WaitAll(ctx)
}

// Stop tears down all watchers and schedulers.
func (s *SyncService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatchersLocked()
}

func (s *SyncService) stopWatchersLocked() {
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
