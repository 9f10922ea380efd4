package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	inframcp "github.com/felixgeelhaar/riskgate/internal/infrastructure/mcp"
	"github.com/felixgeelhaar/riskgate/internal/infrastructure/wiring"
	"github.com/spf13/cobra"
)

var (
	mcpTransport string
	mcpAddr      string
	mcpNoWatch   bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the riskgate MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("RISKGATE_SKIP_MCP_START") == "true" {
			return nil
		}
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		server, err := inframcp.NewServer(ctx, root, wiring.Options{})
		if err != nil {
			return err
		}
		defer func() { _ = server.Close() }()

		if !mcpNoWatch {
			go func() {
				if err := server.WatchPatterns(ctx); err != nil && !errors.Is(err, context.Canceled) {
					slog.Warn("pattern hot reload stopped", "error", err)
				}
			}()
		}

		switch strings.ToLower(mcpTransport) {
		case "stdio", "":
			err = server.ServeStdio(ctx)
		case "http":
			err = server.ServeHTTP(ctx, mcpAddr)
		default:
			err = NewCLIError(fmt.Sprintf("unsupported transport: %s", mcpTransport), "Use --transport stdio or --transport http", nil)
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use (stdio, http)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8080", "Address for the http transport")
	mcpCmd.Flags().BoolVar(&mcpNoWatch, "no-watch", false, "Do not reload the pattern library when its files change")
	RootCmd.AddCommand(mcpCmd)
}
