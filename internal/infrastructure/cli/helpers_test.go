package cli

import (
	"bytes"
	"strings"
	"testing"
)

const skeletalProposal = `Proposal for the Acme engagement.

We will do some work for the client and deliver something useful, probably within a few months. Costs to be determined later.
`

func resetFlags() {
	projectPath = ""
	verbose = false
	analyzeJSONOutput = false
	analyzeNoRemediation = false
	analyzeNoHistory = false
	analyzeFailOnBlock = false
	patternsJSONOutput = false
	historyLimit = 20
	historyJSONOutput = false
	auditJSONOutput = false
	mcpTransport = "stdio"
	mcpAddr = ":8080"
	mcpNoWatch = false
}

// run executes the root command with args and returns what it wrote to stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out, errOut bytes.Buffer
	RootCmd.SetArgs(args)
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetIn(strings.NewReader(stdin))
	t.Cleanup(func() {
		RootCmd.SetArgs(nil)
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetIn(nil)
	})

	err := RootCmd.Execute()
	return out.String(), err
}

func initWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if _, err := run(t, "", "init", "--project", dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	return dir
}
