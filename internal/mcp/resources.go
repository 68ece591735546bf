package mcpserver

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"

	"scryfall/internal/etl"
)

const (
	jobsURI       = "scryfall://sync/jobs"
	jobRunsPrefix = "scryfall://sync/jobs/"
)

func (s *Server) registerResources() {
	// ── scryfall://sync/jobs ───────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		jobsURI,
		"Export Jobs",
		mcp.WithMIMEType("application/json"),
	), s.handleJobsResource)

	// ── scryfall://sync/jobs/{job}/runs ────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			jobRunsPrefix+"{job}/runs",
			"Recent Runs of an Export Job",
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleJobRunsResource,
	)
}

func (s *Server) handleJobsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jobs, err := s.sync.ListJobs()
	if err != nil {
		return nil, err
	}
	return jsonResource(jobsURI, lo.Map(jobs, func(j etl.SyncJob, _ int) jobSummary { return summarizeJob(j) }))
}

func (s *Server) handleJobRunsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	ref := strings.TrimSuffix(strings.TrimPrefix(uri, jobRunsPrefix), "/runs")
	logs, err := s.sync.ListRunLogs(ref)
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, logs)
}
