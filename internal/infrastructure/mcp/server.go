package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/riskgate/internal/infrastructure/watch"
	"github.com/felixgeelhaar/riskgate/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/riskgate/pkg/application"
	"github.com/felixgeelhaar/riskgate/pkg/domain"
	"github.com/felixgeelhaar/riskgate/pkg/domain/patterns"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
	"github.com/felixgeelhaar/riskgate/pkg/storage"
)

const defaultHistoryLimit = 20

type Server struct {
	mcpServer *mcp.Server
	services  *wiring.AppServices
	logger    *slog.Logger
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

// NewServer builds the services for root and registers the tools.
func NewServer(ctx context.Context, root string, opts wiring.Options) (*Server, error) {
	services, err := wiring.BuildAppServices(ctx, root, opts)
	if services == nil {
		return nil, fmt.Errorf("build services: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err != nil {
		logger.Warn("using fallback AI provider", "error", err)
	}
	return NewServerWithServices(services, logger), nil
}

func NewServerWithServices(services *wiring.AppServices, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	info := mcp.ServerInfo{
		Name:    "riskgate",
		Version: Version,
	}
	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Riskgate MCP Server"),
			mcp.WithDescription("Riskgate scores proposals and contracts for risk and decides whether they may be released."),
			mcp.WithWebsiteURL("https://github.com/felixgeelhaar/riskgate"),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Call riskgate_analyze with the full document text before sending a proposal. A blocking decision means the document must not be released."),
		),
		services: services,
		logger:   logger,
	}

	s.registerTools()
	s.registerSchemaResource()
	return s
}

type AnalyzeArgs struct {
	Text   string `json:"text" jsonschema:"description=Full text of the proposal or contract,required"`
	Record *bool  `json:"record,omitempty" jsonschema:"description=Store the assessment in the workspace history (default true)"`
}

type HistoryArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Maximum number of assessments to return (default 20)"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("riskgate_analyze").
		Description("Analyze a document and return findings, scores and the release decision").
		Handler(s.handleAnalyze)

	s.mcpServer.Tool("riskgate_patterns").
		Description("Describe the active pattern library and template corpus").
		Handler(s.handlePatterns)

	s.mcpServer.Tool("riskgate_history").
		Description("List recent assessments, newest first, with decision counts").
		Handler(s.handleHistory)

	s.mcpServer.Tool("riskgate_reload_patterns").
		Description("Re-read the workspace pattern library and template corpus").
		Handler(s.handleReload)
}

func (s *Server) handleAnalyze(ctx context.Context, args AnalyzeArgs) (any, error) {
	a, err := s.services.Analysis.Analyze(ctx, args.Text)
	if err != nil {
		var ve *risk.ValidationError
		if errors.As(err, &ve) {
			return nil, mcpErr(ve.Error())
		}
		return nil, mcpErr("Analysis could not run.")
	}

	record := args.Record == nil || *args.Record
	if record && s.services.Workspace.Repo.IsInitialized() {
		if err := s.services.History.Record(a, domain.ActorAI); err != nil {
			s.logger.Warn("failed to record assessment", "assessment", a.ID, "error", err)
		}
	}
	return a, nil
}

type patternsResponse struct {
	Library       patterns.Stats `json:"library"`
	CorpusVersion string         `json:"corpus_version"`
	Clauses       int            `json:"reference_clauses"`
	Documents     int            `json:"template_documents"`
	Similarity    string         `json:"similarity_backend"`
}

func (s *Server) handlePatterns(ctx context.Context, args struct{}) (any, error) {
	snap := s.services.Patterns.Registry().Current()
	resp := patternsResponse{
		Library:       snap.Library.Stats(),
		CorpusVersion: snap.Corpus.Version,
		Clauses:       len(snap.Corpus.Clauses),
		Documents:     len(snap.Corpus.Documents),
	}
	if s.services.Searchers != nil {
		resp.Similarity = s.services.Searchers.Backend
	}
	return resp, nil
}

type historyResponse struct {
	Summary     *application.Summary `json:"summary"`
	Assessments []historyEntry       `json:"assessments"`
}

type historyEntry struct {
	ID         string        `json:"id"`
	Decision   risk.Decision `json:"decision"`
	Score      float64       `json:"score"`
	Compound   float64       `json:"compound_score"`
	HighRisk   bool          `json:"high_risk"`
	Findings   int           `json:"findings"`
	CreatedAt  string        `json:"created_at"`
	Failure    string        `json:"failure,omitempty"`
	DocumentID string        `json:"document_hash"`
}

func (s *Server) handleHistory(ctx context.Context, args HistoryArgs) (any, error) {
	if !s.services.Workspace.Repo.IsInitialized() {
		return nil, mcpErr("No history yet. Initialize a workspace with 'riskgate init'.")
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	recent, err := s.services.History.Recent(limit)
	if err != nil {
		return nil, mcpErr("Failed to read assessment history.")
	}
	summary, err := s.services.History.Summarize()
	if err != nil {
		return nil, mcpErr("Failed to read assessment history.")
	}

	resp := historyResponse{Summary: summary, Assessments: make([]historyEntry, 0, len(recent))}
	for _, a := range recent {
		resp.Assessments = append(resp.Assessments, historyEntry{
			ID:         a.ID,
			Decision:   a.Decision,
			Score:      a.Score.Compound,
			Compound:   a.Compound.Score,
			HighRisk:   a.Compound.IsHigh,
			Findings:   len(a.Findings),
			CreatedAt:  a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Failure:    a.Failure,
			DocumentID: a.DocumentHash,
		})
	}
	return resp, nil
}

func (s *Server) handleReload(ctx context.Context, args struct{}) (string, error) {
	if err := s.services.Patterns.Reload(); err != nil {
		return "", mcpErr(fmt.Sprintf("Reload rejected, previous library kept: %v", err))
	}
	stats := s.services.Patterns.Stats()
	return fmt.Sprintf("Pattern library %s active (%d patterns).", stats.Version, stats.Patterns), nil
}

// WatchPatterns reloads the library whenever the workspace files change.
// It blocks until ctx is cancelled.
func (s *Server) WatchPatterns(ctx context.Context) error {
	repo := s.services.Workspace.Repo
	if !repo.IsInitialized() {
		return nil
	}
	w, err := watch.NewLibraryWatcher(repo.Dir(),
		[]string{storage.PatternsFile, storage.TemplatesFile},
		s.services.Patterns.Reload,
		watch.WithLogger(s.logger),
	)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}

// Close releases the services' connections.
func (s *Server) Close() error {
	return s.services.Close()
}
