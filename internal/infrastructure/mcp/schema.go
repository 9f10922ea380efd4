package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

// SchemaVersion is the current MCP tool schema version (semver).
const SchemaVersion = "1.0.0"

type schemaResponse struct {
	SchemaVersion string          `json:"schema_version"`
	ServerVersion string          `json:"server_version"`
	Decisions     []risk.Decision `json:"decisions"`
	Blocking      []risk.Decision `json:"blocking_decisions"`
}

func schemaInfo() schemaResponse {
	resp := schemaResponse{
		SchemaVersion: SchemaVersion,
		ServerVersion: Version,
		Decisions:     risk.Decisions(),
	}
	for _, d := range resp.Decisions {
		if d.Blocks() {
			resp.Blocking = append(resp.Blocking, d)
		}
	}
	return resp
}

func (s *Server) registerSchemaResource() {
	s.mcpServer.Resource("riskgate://schema").
		Name("riskgate://schema").
		Description("MCP tool schema version and the decisions an assessment can carry").
		MimeType("application/json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			data, err := json.Marshal(schemaInfo())
			if err != nil {
				return nil, err
			}
			return &mcplib.ResourceContent{
				URI:      "riskgate://schema",
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})
}
