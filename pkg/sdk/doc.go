// Package sdk provides a typed Go client for the riskgate MCP server.
//
// The client wraps mcp-go/client.CallTool with one method per MCP tool and
// retries transient failures via fortify.
//
// Usage:
//
//	transport, _ := client.NewStdioTransport("riskgate", "mcp")
//	c := sdk.NewClient(transport)
//	defer c.Close()
//
//	_, _ = c.Initialize(ctx)
//	a, _ := c.Analyze(ctx, sdk.AnalyzeRequest{Text: proposal})
//	fmt.Println(a.Decision)
package sdk
