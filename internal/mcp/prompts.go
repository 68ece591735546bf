package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("build_deck",
		mcp.WithPromptDescription("Guide through assembling a deck list from card searches"),
		mcp.WithArgument("format",
			mcp.ArgumentDescription("Constructed format, e.g. modern or commander"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("theme",
			mcp.ArgumentDescription("Deck theme or archetype"),
			mcp.RequiredArgument(),
		),
	), s.handleBuildDeckPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("export_pipeline",
		mcp.WithPromptDescription("Set up a search → database export job"),
		mcp.WithArgument("query",
			mcp.ArgumentDescription("Card search query to export"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("dsn",
			mcp.ArgumentDescription("SQLite file to export into"),
			mcp.RequiredArgument(),
		),
	), s.handleExportPipelinePrompt)
}

func (s *Server) handleBuildDeckPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	format := req.Params.Arguments["format"]
	theme := req.Params.Arguments["theme"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Build a %s deck: %s", format, theme),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a %s deck around "%s". Follow these steps:

1. Use get_catalog (creature-types, keyword-abilities) to find the exact terms for the theme
2. Use search_cards with "f:%s" plus the theme terms to find candidates, ordered by edhrec
3. Use get_card with rulings=true for any card whose interaction with the theme is unclear
4. Fill out the curve with search_cards using cmc filters, e.g. "cmc<=2"

Present the final list grouped by card type with counts, and note any card that is not legal in %s.`, format, theme, format, format),
				},
			},
		},
	}, nil
}

func (s *Server) handleExportPipelinePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	query := req.Params.Arguments["query"]
	dsn := req.Params.Arguments["dsn"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Export %q into %s", query, dsn),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Set up an export of the cards matching "%s" into the SQLite file %s. Follow these steps:

1. Use preview_sync_source with sourceType "search" and {"query": "%s"} to check the rows
2. Decide which columns matter and add select or rename transforms
3. Create the job with create_sync_job (driver "sqlite", dsn "%s")
4. Run it with run_sync_job and report the rows written

If the preview returns no rows, refine the query with search_cards before creating the job.`, query, dsn, query, dsn),
				},
			},
		},
	}, nil
}
