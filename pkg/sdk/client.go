package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/mcp-go/client"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

const schemaURI = "riskgate://schema"

// ErrNoContent is returned when a tool result contains no content items.
var ErrNoContent = errors.New("riskgate: empty tool result")

// ToolError is a failure reported by the server for one tool call, such as
// a document that is too short to analyze.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("riskgate: tool %s: %s", e.Tool, e.Message)
}

// Client is a typed Go client for the riskgate MCP server.
type Client struct {
	mcp      *client.Client
	retryCfg retry.Config
	timeout  time.Duration
}

// NewClient creates a new SDK client wrapping the given MCP transport.
func NewClient(transport client.Transport, opts ...Option) *Client {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Client{
		mcp:     client.New(transport, client.WithTimeout(o.timeout)),
		timeout: o.timeout,
		retryCfg: retry.Config{
			MaxAttempts:   o.maxAttempts,
			InitialDelay:  o.initialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Initialize performs the MCP initialize handshake.
func (c *Client) Initialize(ctx context.Context) (*client.ServerInfo, error) {
	return c.mcp.Initialize(ctx)
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.mcp.Close()
}

// call invokes a tool with retry. Tool errors are not retried.
func (c *Client) call(ctx context.Context, tool string, args map[string]any) (*client.ToolResult, error) {
	r := retry.New[*client.ToolResult](c.retryCfg)
	result, err := r.Do(ctx, func(ctx context.Context) (*client.ToolResult, error) {
		return c.mcp.CallTool(ctx, tool, args)
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", tool, err)
	}
	if result.IsError {
		msg := ""
		if len(result.Content) > 0 {
			msg = result.Content[0].Text
		}
		return nil, &ToolError{Tool: tool, Message: msg}
	}
	return result, nil
}

// unmarshalText extracts Content[0].Text from a tool result and unmarshals it as JSON.
func unmarshalText[T any](result *client.ToolResult) (*T, error) {
	text, err := textResult(result)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &v, nil
}

func textResult(result *client.ToolResult) (string, error) {
	if len(result.Content) == 0 {
		return "", ErrNoContent
	}
	return result.Content[0].Text, nil
}

// GetSchema reads the riskgate://schema resource from the server.
func (c *Client) GetSchema(ctx context.Context) (*SchemaInfo, error) {
	rc, err := c.mcp.ReadResource(ctx, schemaURI)
	if err != nil {
		return nil, fmt.Errorf("read schema resource: %w", err)
	}
	var info SchemaInfo
	if err := json.Unmarshal([]byte(rc.Text), &info); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	return &info, nil
}

// Compatible returns nil when the server's schema major version matches
// SupportedSchemaMajor.
func (c *Client) Compatible(ctx context.Context) error {
	info, err := c.GetSchema(ctx)
	if err != nil {
		return fmt.Errorf("check compatibility: %w", err)
	}
	serverMajor, _, _ := strings.Cut(info.SchemaVersion, ".")
	if serverMajor != SupportedSchemaMajor {
		return fmt.Errorf("incompatible schema: server=%s (major %s), sdk supports major %s",
			info.SchemaVersion, serverMajor, SupportedSchemaMajor)
	}
	return nil
}

// AnalyzeRequest holds the parameters of the riskgate_analyze tool.
type AnalyzeRequest struct {
	Text string
	// SkipHistory keeps the assessment out of the server's workspace history.
	SkipHistory bool
}

// Analyze runs a risk analysis on the server.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*risk.Assessment, error) {
	args := map[string]any{"text": req.Text}
	if req.SkipHistory {
		args["record"] = false
	}
	res, err := c.call(ctx, "riskgate_analyze", args)
	if err != nil {
		return nil, err
	}
	return unmarshalText[risk.Assessment](res)
}

// Patterns describes the active pattern library.
func (c *Client) Patterns(ctx context.Context) (*PatternsInfo, error) {
	res, err := c.call(ctx, "riskgate_patterns", nil)
	if err != nil {
		return nil, err
	}
	return unmarshalText[PatternsInfo](res)
}

// History lists recent assessments. A limit of zero uses the server default.
func (c *Client) History(ctx context.Context, limit int) (*History, error) {
	var args map[string]any
	if limit > 0 {
		args = map[string]any{"limit": limit}
	}
	res, err := c.call(ctx, "riskgate_history", args)
	if err != nil {
		return nil, err
	}
	return unmarshalText[History](res)
}

// ReloadPatterns asks the server to re-read its workspace pattern library.
func (c *Client) ReloadPatterns(ctx context.Context) (string, error) {
	res, err := c.call(ctx, "riskgate_reload_patterns", nil)
	if err != nil {
		return "", err
	}
	return textResult(res)
}
