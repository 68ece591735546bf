package cli

import (
	"github.com/spf13/cobra"

	mcpserver "scryfall/internal/mcp"
)

var mcpCommand = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the card tools to an MCP client over stdio",
	Long: `Serve card search, lookups and export jobs to an MCP client over
stdin/stdout. Scheduled and file-watch jobs run while the server is up.

Register it with a client as:

	{"command": "scryfall", "args": ["mcp"]}
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := getEnv(cmd)
		if err != nil {
			return err
		}
		svc, err := e.syncService()
		if err != nil {
			return err
		}
		svc.RestartWatchers(cmd.Context())

		srv := mcpserver.New(mcpserver.Deps{Client: e.client, Sync: svc}, Version)
		return srv.ServeStdio()
	},
}
