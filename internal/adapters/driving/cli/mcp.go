package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clause/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Expose the answering pipeline to MCP clients as the ask, ask_batch and
list_documents tools.

The server speaks JSON-RPC over stdio by default. Use --port to serve the
streamable HTTP transport instead.

Examples:
  clause mcp serve
  clause mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "clause": {
        "command": "/path/to/clause",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(servicesCommand(mcpServeCmd))
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Answer:   answerService,
		History:  historyService,
		Document: documentService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	// stdout carries the protocol; keep diagnostics on stderr.
	return server.Run(cmd.Context())
}
