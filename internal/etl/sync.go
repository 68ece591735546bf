package etl

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"scryfall/internal/client"
	"scryfall/internal/logging"
	"scryfall/internal/object"
)

var logger = logging.Logger("etl")

// ── SyncJob ────────────────────────────────────────────────
// Orchestrates: source.Read → transform chain → sink.Write.
//
// Pattern: Airbyte sync / Singer tap→target pipeline.

// Trigger types.
const (
	TriggerManual    = "manual"
	TriggerSchedule  = "schedule"   // TriggerConfig is a cron expression
	TriggerFileWatch = "file_watch" // TriggerConfig is a watched path
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusRunning = "running"
)

// SyncJob holds the configuration for a single export.
type SyncJob struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	SourceType    string            `json:"sourceType"`
	SourceCfg     SourceConfig      `json:"sourceConfig"`
	Transforms    []TransformConfig `json:"transforms,omitempty"`
	Target        Target            `json:"target"`
	SyncMode      SyncMode          `json:"syncMode"`
	DedupeKey     string            `json:"dedupeKey,omitempty"`
	TriggerType   string            `json:"triggerType"`
	TriggerConfig string            `json:"triggerConfig"`
	Enabled       bool              `json:"enabled"`
	LastRunAt     time.Time         `json:"lastRunAt"`
	LastStatus    string            `json:"lastStatus"` // "success" | "error" | "running" | ""
	LastError     string            `json:"lastError"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// SyncResult is the outcome of running a sync job.
type SyncResult struct {
	JobID       string        `json:"jobId"`
	Status      string        `json:"status"`
	PagesRead   int           `json:"pagesRead"`
	RowsRead    int           `json:"rowsRead"`
	RowsWritten int           `json:"rowsWritten"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
}

// SyncRunLog is a historical record of a sync run.
type SyncRunLog struct {
	ID          string    `json:"id"`
	JobID       string    `json:"jobId"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	Status      string    `json:"status"`
	RowsRead    int       `json:"rowsRead"`
	RowsWritten int       `json:"rowsWritten"`
	Error       string    `json:"error,omitempty"`
}

// ── Engine ─────────────────────────────────────────────────

// Engine runs sync jobs against the API through Client and writes the
// rows to Dest.
type Engine struct {
	Client *client.Client
	Dest   Sink
}

// RunSync executes a sync job end-to-end. Every page of the source
// listing is read before anything is written, so a listing that fails
// part way leaves the target untouched.
func (e *Engine) RunSync(ctx context.Context, job *SyncJob) (*SyncResult, error) {
	start := time.Now()
	result := &SyncResult{JobID: job.ID}
	fail := func(stage string, err error) (*SyncResult, error) {
		result.Status = StatusError
		result.Error = fmt.Sprintf("%s: %s", stage, err)
		result.Duration = time.Since(start)
		logger.Warn("sync failed", "job", job.ID, "stage", stage, "err", err)
		return result, err
	}

	source, err := GetSource(job.SourceType)
	if err != nil {
		return fail("source", err)
	}
	schema, err := source.Discover(job.SourceCfg)
	if err != nil {
		return fail("discover", err)
	}
	transformers, err := BuildTransformers(job.Transforms, job.DedupeKey)
	if err != nil {
		return fail("transforms", err)
	}

	chain := NewChain(transformers)
	rows, col, err := e.read(ctx, source, job.SourceCfg, chain, result)
	if col != nil {
		result.PagesRead = col.Pages()
		result.Warnings = col.Warnings()
	}
	if err != nil {
		return fail("read", err)
	}
	rows = chain.Finish(rows)

	written, err := e.Dest.Write(ctx, job.Target.Table, deriveSchema(rows, schema), rows, job.SyncMode)
	result.RowsWritten = written
	if err != nil {
		return fail("write", err)
	}

	result.Status = StatusSuccess
	result.Duration = time.Since(start)
	logger.Info("sync finished", "job", job.ID, "pages", result.PagesRead,
		"read", result.RowsRead, "written", written, "took", result.Duration)
	return result, nil
}

// read streams the source through the part of the chain before its
// first sort. It stops paging once that part can keep no further row.
func (e *Engine) read(ctx context.Context, source Source, cfg SourceConfig, chain *Chain, result *SyncResult) ([]Row, *object.Collection, error) {
	col, toRow, err := source.Read(ctx, e.Client, cfg)
	if err != nil {
		return nil, nil, err
	}
	var rows []Row
	for obj, err := range col.Contents(ctx) {
		if err != nil {
			return nil, col, err
		}
		row, ok := toRow(obj)
		if !ok {
			continue
		}
		result.RowsRead++
		if row, keep := chain.Apply(row); keep {
			rows = append(rows, row)
		}
		if chain.Saturated() {
			break
		}
	}
	return rows, col, nil
}

// Preview reads up to maxRows rows of a source without writing them.
// Only the pages needed to fill maxRows are fetched.
func (e *Engine) Preview(ctx context.Context, sourceType string, cfg SourceConfig, maxRows int) ([]Row, *Schema, error) {
	source, err := GetSource(sourceType)
	if err != nil {
		return nil, nil, err
	}
	schema, err := source.Discover(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("discover: %w", err)
	}
	if maxRows <= 0 {
		maxRows = 20
	}
	col, toRow, err := source.Read(ctx, e.Client, cfg)
	if err != nil {
		return nil, schema, err
	}

	var rows []Row
	for obj, err := range col.Contents(ctx) {
		if err != nil {
			return rows, schema, err
		}
		if row, ok := toRow(obj); ok {
			rows = append(rows, row)
		}
		if len(rows) >= maxRows {
			break
		}
	}
	return rows, schema, nil
}

// deriveSchema narrows the source schema to the fields present in the
// transformed rows, keeping the source order and type hints. Fields the
// source never declared are appended as text.
func deriveSchema(rows []Row, source *Schema) *Schema {
	if len(rows) == 0 {
		return source
	}
	present := map[string]bool{}
	for _, r := range rows {
		for k := range r.Data {
			present[k] = true
		}
	}
	out := &Schema{}
	for _, f := range source.Fields {
		if present[f.Name] {
			out.Fields = append(out.Fields, f)
			delete(present, f.Name)
		}
	}
	extra := lo.Keys(present)
	slices.Sort(extra)
	for _, k := range extra {
		out.Fields = append(out.Fields, Field{Name: k, Type: TypeText})
	}
	return out
}
