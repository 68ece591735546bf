package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"scryfall/internal/etl"
)

// ErrJobNotFound is returned when no job has the requested id or name.
var ErrJobNotFound = errors.New("sync job not found")

// SyncStore implements persistence for sync jobs and run logs.
type SyncStore struct {
	db *DB
}

// NewSyncStore creates a new SyncStore.
func NewSyncStore(db *DB) *SyncStore {
	return &SyncStore{db: db}
}

// ── SyncJob CRUD ───────────────────────────────────────────

const jobColumns = `id, name, source_type, source_config, transforms,
	target_driver, target_dsn, target_table, sync_mode, dedupe_key,
	trigger_type, trigger_config, enabled,
	last_run_at, last_status, last_error, created_at, updated_at`

func (s *SyncStore) CreateJob(job *etl.SyncJob) error {
	now := time.Now().UTC()
	job.ID = uuid.New().String()
	job.CreatedAt = now
	job.UpdatedAt = now

	srcCfg, transforms, err := encodeJobConfig(job)
	if err != nil {
		return err
	}
	_, err = s.db.conn.Exec(
		`INSERT INTO sync_jobs (id, name, source_type, source_config, transforms,
		 target_driver, target_dsn, target_table, sync_mode, dedupe_key,
		 trigger_type, trigger_config, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Name, job.SourceType, srcCfg, transforms,
		job.Target.Driver, job.Target.DSN, job.Target.Table, job.SyncMode, job.DedupeKey,
		job.TriggerType, job.TriggerConfig, job.Enabled,
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create job %q: %w", job.Name, err)
	}
	return nil
}

// GetJob looks a job up by id, then by name.
func (s *SyncStore) GetJob(ref string) (*etl.SyncJob, error) {
	row := s.db.conn.QueryRow(
		`SELECT `+jobColumns+` FROM sync_jobs WHERE id = ? OR name = ?
		 ORDER BY id = ? DESC LIMIT 1`, ref, ref, ref)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, ref)
	}
	return job, err
}

func (s *SyncStore) UpdateJob(job *etl.SyncJob) error {
	job.UpdatedAt = time.Now().UTC()
	srcCfg, transforms, err := encodeJobConfig(job)
	if err != nil {
		return err
	}
	res, err := s.db.conn.Exec(
		`UPDATE sync_jobs SET name=?, source_type=?, source_config=?, transforms=?,
		 target_driver=?, target_dsn=?, target_table=?, sync_mode=?, dedupe_key=?,
		 trigger_type=?, trigger_config=?, enabled=?, updated_at=? WHERE id=?`,
		job.Name, job.SourceType, srcCfg, transforms,
		job.Target.Driver, job.Target.DSN, job.Target.Table, job.SyncMode, job.DedupeKey,
		job.TriggerType, job.TriggerConfig, job.Enabled,
		job.UpdatedAt, job.ID,
	)
	if err != nil {
		return err
	}
	return requireOne(res, job.ID)
}

func (s *SyncStore) UpdateJobStatus(id, status, errMsg string) error {
	now := time.Now().UTC()
	_, err := s.db.conn.Exec(
		`UPDATE sync_jobs SET last_run_at=?, last_status=?, last_error=?, updated_at=? WHERE id=?`,
		now, status, errMsg, now, id,
	)
	return err
}

func (s *SyncStore) DeleteJob(id string) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sync_run_logs WHERE job_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM sync_jobs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := requireOne(res, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SyncStore) ListJobs() ([]etl.SyncJob, error) {
	return s.queryJobs(`SELECT ` + jobColumns + ` FROM sync_jobs ORDER BY created_at ASC`)
}

// ListEnabledTriggeredJobs returns enabled jobs with a schedule or
// file_watch trigger.
func (s *SyncStore) ListEnabledTriggeredJobs() ([]etl.SyncJob, error) {
	return s.queryJobs(`SELECT `+jobColumns+` FROM sync_jobs
		 WHERE enabled = 1 AND trigger_type IN (?, ?)
		 ORDER BY created_at ASC`, etl.TriggerSchedule, etl.TriggerFileWatch)
}

func (s *SyncStore) queryJobs(query string, args ...any) ([]etl.SyncJob, error) {
	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []etl.SyncJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*etl.SyncJob, error) {
	job := &etl.SyncJob{}
	var srcCfg, transforms string
	var lastRun sql.NullTime
	err := row.Scan(
		&job.ID, &job.Name, &job.SourceType, &srcCfg, &transforms,
		&job.Target.Driver, &job.Target.DSN, &job.Target.Table, &job.SyncMode, &job.DedupeKey,
		&job.TriggerType, &job.TriggerConfig, &job.Enabled,
		&lastRun, &job.LastStatus, &job.LastError,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	job.LastRunAt = lastRun.Time
	if err := json.Unmarshal([]byte(srcCfg), &job.SourceCfg); err != nil {
		return nil, fmt.Errorf("job %s source config: %w", job.ID, err)
	}
	if err := json.Unmarshal([]byte(transforms), &job.Transforms); err != nil {
		return nil, fmt.Errorf("job %s transforms: %w", job.ID, err)
	}
	return job, nil
}

func encodeJobConfig(job *etl.SyncJob) (srcCfg, transforms string, err error) {
	cfg := job.SourceCfg
	if cfg == nil {
		cfg = etl.SourceConfig{}
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", "", fmt.Errorf("encode source config: %w", err)
	}
	ts := job.Transforms
	if ts == nil {
		ts = []etl.TransformConfig{}
	}
	t, err := json.Marshal(ts)
	if err != nil {
		return "", "", fmt.Errorf("encode transforms: %w", err)
	}
	return string(b), string(t), nil
}

func requireOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return nil
}

// ── Run Logs ───────────────────────────────────────────────

func (s *SyncStore) CreateRunLog(log *etl.SyncRunLog) error {
	log.ID = uuid.New().String()
	_, err := s.db.conn.Exec(
		`INSERT INTO sync_run_logs (id, job_id, started_at, finished_at, status, rows_read, rows_written, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.JobID, log.StartedAt, log.FinishedAt, log.Status, log.RowsRead, log.RowsWritten, log.Error,
	)
	return err
}

// ListRunLogs returns the most recent runs of a job, newest first.
func (s *SyncStore) ListRunLogs(jobID string, limit int) ([]etl.SyncRunLog, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, job_id, started_at, finished_at, status, rows_read, rows_written, error
		 FROM sync_run_logs WHERE job_id = ? ORDER BY started_at DESC LIMIT ?`,
		jobID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []etl.SyncRunLog
	for rows.Next() {
		var l etl.SyncRunLog
		if err := rows.Scan(&l.ID, &l.JobID, &l.StartedAt, &l.FinishedAt, &l.Status, &l.RowsRead, &l.RowsWritten, &l.Error); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
