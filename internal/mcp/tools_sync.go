package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"

	"scryfall/internal/dbclient"
	"scryfall/internal/etl"
	"scryfall/internal/service"
)

func (s *Server) registerSyncTools() {
	s.mcp.AddTool(mcp.NewTool("list_sync_jobs",
		mcp.WithDescription("List export jobs with their target, trigger and last run status"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleListSyncJobs)

	s.mcp.AddTool(mcp.NewTool("list_sync_sources",
		mcp.WithDescription("List available export source types with their configuration fields"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleListSyncSources)

	s.mcp.AddTool(mcp.NewTool("preview_sync_source",
		mcp.WithDescription("Preview the rows a source would export without writing anything"),
		mcp.WithString("sourceType", mcp.Description("Source type (see list_sync_sources)"), mcp.Required()),
		mcp.WithString("sourceConfigJSON", mcp.Description(`Source configuration as JSON, e.g. {"query":"t:elf"}`)),
		mcp.WithNumber("maxRows", mcp.Description("Rows to preview (default 20)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handlePreviewSyncSource)

	s.mcp.AddTool(mcp.NewTool("create_sync_job",
		mcp.WithDescription("Create an export job that copies a card listing into a database table. Runs manually unless a trigger is set."),
		mcp.WithString("name", mcp.Description("Unique job name"), mcp.Required()),
		mcp.WithString("sourceType", mcp.Description("Source type (see list_sync_sources)"), mcp.Required()),
		mcp.WithString("sourceConfigJSON", mcp.Description("Source configuration as JSON")),
		mcp.WithString("driver", mcp.Description("Target driver"), mcp.Required(), mcp.Enum(dbclient.Drivers...)),
		mcp.WithString("dsn", mcp.Description("Target connection string (file path for sqlite)"), mcp.Required()),
		mcp.WithString("table", mcp.Description("Target table or collection"), mcp.Required()),
		mcp.WithString("syncMode", mcp.Description("replace (default) or append"), mcp.Enum(string(etl.SyncReplace), string(etl.SyncAppend))),
		mcp.WithString("transformsJSON", mcp.Description(`Optional JSON array of transforms applied in order. Each has {type, config}:
- filter: {field, op (eq|neq|gt|lt|contains), value}
- rename: {mapping: {old: new}}
- select: {fields: ["name","set"]}
- sort: {field, direction (asc|desc)}
- limit: {count}
- type_cast: {field, castType (number|string|bool)}`)),
		mcp.WithString("dedupeKey", mcp.Description("Column to deduplicate rows on")),
		mcp.WithString("schedule", mcp.Description(`Cron expression to run the job on, e.g. "0 6 * * *"`)),
	), s.handleCreateSyncJob)

	s.mcp.AddTool(mcp.NewTool("run_sync_job",
		mcp.WithDescription("Run an export job now. In replace mode the target table is dropped and rewritten."),
		mcp.WithString("job", mcp.Description("Job id or name"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRunSyncJob)
}

type jobSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SourceType string `json:"sourceType"`
	Target     string `json:"target"`
	SyncMode   string `json:"syncMode"`
	Trigger    string `json:"trigger"`
	Enabled    bool   `json:"enabled"`
	LastStatus string `json:"lastStatus,omitempty"`
	LastError  string `json:"lastError,omitempty"`
	LastRunAt  string `json:"lastRunAt,omitempty"`
}

func summarizeJob(j etl.SyncJob) jobSummary {
	out := jobSummary{
		ID:         j.ID,
		Name:       j.Name,
		SourceType: j.SourceType,
		Target:     j.Target.Driver + ":" + j.Target.Table,
		SyncMode:   string(j.SyncMode),
		Trigger:    j.TriggerType,
		Enabled:    j.Enabled,
		LastStatus: j.LastStatus,
		LastError:  j.LastError,
	}
	if j.TriggerConfig != "" {
		out.Trigger += " " + j.TriggerConfig
	}
	if !j.LastRunAt.IsZero() {
		out.LastRunAt = j.LastRunAt.Format(time.RFC3339)
	}
	return out
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleListSyncJobs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobs, err := s.sync.ListJobs()
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jsonResult(lo.Map(jobs, func(j etl.SyncJob, _ int) jobSummary { return summarizeJob(j) }))
}

func (s *Server) handleListSyncSources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.sync.ListSources())
}

func (s *Server) handlePreviewSyncSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceType := req.GetString("sourceType", "")
	if sourceType == "" {
		return nil, fmt.Errorf("sourceType is required")
	}
	cfg, err := jsonArg[etl.SourceConfig](req, "sourceConfigJSON")
	if err != nil {
		return nil, err
	}

	rows, schema, err := s.sync.Preview(ctx, sourceType, cfg, req.GetInt("maxRows", 20))
	if err != nil {
		return apiErrorResult(err)
	}
	return jsonResult(map[string]any{
		"columns": schema.FieldNames(),
		"rows":    lo.Map(rows, func(r etl.Row, _ int) map[string]any { return r.Data }),
	})
}

func (s *Server) handleCreateSyncJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := jsonArg[map[string]any](req, "sourceConfigJSON")
	if err != nil {
		return nil, err
	}
	transforms, err := jsonArg[[]etl.TransformConfig](req, "transformsJSON")
	if err != nil {
		return nil, err
	}

	input := service.JobInput{
		Name:         req.GetString("name", ""),
		SourceType:   req.GetString("sourceType", ""),
		SourceConfig: cfg,
		Transforms:   transforms,
		Target: etl.Target{
			Driver: req.GetString("driver", ""),
			DSN:    req.GetString("dsn", ""),
			Table:  req.GetString("table", ""),
		},
		SyncMode:  req.GetString("syncMode", ""),
		DedupeKey: req.GetString("dedupeKey", ""),
		Enabled:   true,
	}
	if schedule := req.GetString("schedule", ""); schedule != "" {
		input.TriggerType = etl.TriggerSchedule
		input.TriggerConfig = schedule
	}

	job, err := s.sync.CreateJob(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create sync job: %w", err)
	}
	return jsonResult(summarizeJob(*job))
}

func (s *Server) handleRunSyncJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref := req.GetString("job", "")
	if ref == "" {
		return nil, fmt.Errorf("job is required")
	}

	result, err := s.sync.RunJob(ctx, ref)
	if result == nil {
		return nil, fmt.Errorf("run sync job: %w", err)
	}
	// A failed run still has a result worth reporting.
	return jsonResult(result)
}

// jsonArg decodes an optional argument that may arrive either as a JSON
// string or as an already structured value.
func jsonArg[T any](req mcp.CallToolRequest, key string) (T, error) {
	var out T
	var data []byte
	switch v := req.GetArguments()[key].(type) {
	case nil:
		return out, nil
	case string:
		if v == "" {
			return out, nil
		}
		data = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return out, fmt.Errorf("%s: %w", key, err)
		}
		data = b
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}
