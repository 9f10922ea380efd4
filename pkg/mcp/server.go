// Package mcp exposes the riskgate MCP server for embedding in other programs.
package mcp

import (
	"context"

	infra "github.com/felixgeelhaar/riskgate/internal/infrastructure/mcp"
	"github.com/felixgeelhaar/riskgate/internal/infrastructure/wiring"
)

// Server exposes the MCP server implementation from the infrastructure layer.
type Server = infra.Server

// NewServer constructs an MCP server rooted at the provided path, using the
// workspace configuration found there.
func NewServer(ctx context.Context, root string) (*Server, error) {
	return infra.NewServer(ctx, root, wiring.Options{})
}
