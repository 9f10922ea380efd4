package application

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/felixgeelhaar/riskgate/pkg/domain/ai"
	"github.com/felixgeelhaar/riskgate/pkg/domain/analysis"
	"github.com/felixgeelhaar/riskgate/pkg/domain/document"
	"github.com/felixgeelhaar/riskgate/pkg/domain/patterns"
	"github.com/felixgeelhaar/riskgate/pkg/domain/review"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
	"github.com/felixgeelhaar/riskgate/pkg/domain/scoring"
	"github.com/felixgeelhaar/riskgate/pkg/domain/similarity"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const instrumentationName = "github.com/felixgeelhaar/riskgate"

// AnalysisService runs the four analyzers over a document, scores the
// result and decides whether it may be released.
type AnalysisService struct {
	registry         *patterns.Registry
	clauseSearcher   similarity.Searcher
	semanticSearcher similarity.Searcher
	remediator       ai.Remediator
	limits           document.Limits
	searchTimeout    time.Duration
	scorer           *scoring.Scorer
	detector         *scoring.CompoundDetector
	logger           *slog.Logger
	tracer           trace.Tracer
	meter            metric.Meter
	scores           metric.Float64Histogram
	decisions        metric.Int64Counter
	now              func() time.Time
	newID            func() string

	// test hook: replaces the analyzers built from the active snapshot
	analyzers func(*patterns.Snapshot) []analysis.Analyzer
}

// AnalysisOption configures an AnalysisService.
type AnalysisOption func(*AnalysisService)

func WithLogger(l *slog.Logger) AnalysisOption {
	return func(s *AnalysisService) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithTracerProvider(tp trace.TracerProvider) AnalysisOption {
	return func(s *AnalysisService) { s.tracer = tp.Tracer(instrumentationName) }
}

func WithMeterProvider(mp metric.MeterProvider) AnalysisOption {
	return func(s *AnalysisService) { s.meter = mp.Meter(instrumentationName) }
}

// WithClauseSearcher adds nearest-template lookups to clause comparison.
func WithClauseSearcher(ss similarity.Searcher) AnalysisOption {
	return func(s *AnalysisService) { s.clauseSearcher = ss }
}

// WithSemanticSearcher enables template comparison in the semantic analyzer.
func WithSemanticSearcher(ss similarity.Searcher) AnalysisOption {
	return func(s *AnalysisService) { s.semanticSearcher = ss }
}

// WithRemediator sets the collaborator asked for fixes on high-risk documents.
func WithRemediator(r ai.Remediator) AnalysisOption {
	return func(s *AnalysisService) { s.remediator = r }
}

func WithLimits(l document.Limits) AnalysisOption {
	return func(s *AnalysisService) { s.limits = l }
}

func WithSearchTimeout(d time.Duration) AnalysisOption {
	return func(s *AnalysisService) { s.searchTimeout = d }
}

// WithClock replaces time.Now and the assessment ID generator.
func WithClock(now func() time.Time, newID func() string) AnalysisOption {
	return func(s *AnalysisService) {
		if now != nil {
			s.now = now
		}
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewAnalysisService(registry *patterns.Registry, opts ...AnalysisOption) (*AnalysisService, error) {
	if registry == nil || registry.Current() == nil {
		return nil, fmt.Errorf("%w: no pattern library loaded", risk.ErrPatternLibrary)
	}
	s := &AnalysisService{
		registry: registry,
		limits:   document.DefaultLimits(),
		scorer:   scoring.NewScorer(),
		detector: scoring.NewCompoundDetector(),
		logger:   slog.Default(),
		tracer:   otel.Tracer(instrumentationName),
		meter:    otel.Meter(instrumentationName),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.analyzers = s.buildAnalyzers

	var err error
	s.scores, err = s.meter.Float64Histogram(
		"riskgate.compound_score",
		metric.WithDescription("Compound risk score on the 0..10 scale"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create score histogram: %w", err)
	}
	s.decisions, err = s.meter.Int64Counter(
		"riskgate.decisions",
		metric.WithDescription("Release decisions by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create decision counter: %w", err)
	}
	return s, nil
}

func (s *AnalysisService) buildAnalyzers(snap *patterns.Snapshot) []analysis.Analyzer {
	return []analysis.Analyzer{
		analysis.NewStructuralAnalyzer(snap.Library),
		analysis.NewClauseAnalyzer(snap, analysis.WithClauseSearcher(s.clauseSearcher)),
		analysis.NewWeaknessAnalyzer(snap.Library),
		analysis.NewSemanticAnalyzer(snap.Library,
			analysis.WithSemanticSearcher(s.semanticSearcher),
			analysis.WithSearchTimeout(s.searchTimeout),
		),
	}
}

// Limits returns the input limits applied before analysis.
func (s *AnalysisService) Limits() document.Limits {
	return s.limits
}

// Analyze assesses text. Input that fails validation is rejected with a
// *risk.ValidationError before any analysis runs. Every other failure is
// folded into a blocking assessment, so the returned error is nil whenever
// an assessment is returned.
func (s *AnalysisService) Analyze(ctx context.Context, text string) (*risk.Assessment, error) {
	if err := s.limits.Validate(text); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "riskgate.analyze")
	defer span.End()

	snap := s.registry.Current()
	doc := document.New(text)
	a := &risk.Assessment{
		ID:           s.newID(),
		DocumentHash: doc.Hash(),
		Words:        doc.WordCount(),
		Library:      snap.Library.Version,
		CreatedAt:    s.now().UTC(),
	}
	span.SetAttributes(
		attribute.String("riskgate.assessment_id", a.ID),
		attribute.Int("riskgate.words", a.Words),
	)

	machine, err := review.NewMachine(a.ID, func() bool { return a.Compound.IsHigh })
	if err != nil {
		return s.failSafe(ctx, span, a, nil, err), nil
	}
	s.step(machine, review.EventStart)

	components, err := s.runAnalyzers(ctx, snap, doc)
	if err != nil {
		return s.failSafe(ctx, span, a, machine, err), nil
	}
	a.Components = components
	semanticDegraded := false
	for _, c := range components {
		a.Findings = append(a.Findings, c.Findings...)
		a.Degraded = a.Degraded || c.Degraded
		if c.Component == risk.KindSemantic && c.Degraded {
			semanticDegraded = true
		}
	}
	if a.Findings == nil {
		a.Findings = []risk.Finding{}
	}

	a.Score, err = s.scorer.Score(components)
	if err != nil {
		return s.failSafe(ctx, span, a, machine, fmt.Errorf("score components: %w", err)), nil
	}
	s.step(machine, review.EventScore)

	a.Compound, err = s.detector.Detect(a.Findings)
	if err != nil {
		return s.failSafe(ctx, span, a, machine, fmt.Errorf("detect compound risk: %w", err)), nil
	}

	a.Decision = review.DecisionFor(a.Score.Compound)
	a.Confidence = review.Confidence(a.Score.Spread, semanticDegraded)
	s.step(machine, review.EventDecide)

	if a.Compound.IsHigh && s.remediator != nil {
		s.step(machine, review.EventRemediate)
		a.Remediation = s.remediate(ctx, a.Findings, text)
	}
	s.step(machine, review.EventFinish)
	a.States = machine.History()

	s.record(ctx, span, a)
	return a, nil
}

// runAnalyzers fans the analyzers out and joins on all of them. A returned
// error or a panic in any analyzer fails the whole run.
func (s *AnalysisService) runAnalyzers(ctx context.Context, snap *patterns.Snapshot, doc *document.Document) ([]risk.ComponentResult, error) {
	analyzers := s.analyzers(snap)
	results := make([]risk.ComponentResult, len(analyzers))

	g, gctx := errgroup.WithContext(ctx)
	for i, an := range analyzers {
		g.Go(func() (err error) {
			kind := an.Kind()
			actx, span := s.tracer.Start(gctx, "riskgate.analyzer."+string(kind))
			defer span.End()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("analyzer panicked", "component", kind, "panic", r, "stack", string(debug.Stack()))
					err = &risk.AnalysisError{Component: string(kind), Err: fmt.Errorf("panic: %v", r)}
				}
				if err != nil {
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
				}
			}()

			res, err := an.Analyze(actx, doc)
			if err != nil {
				return &risk.AnalysisError{Component: string(kind), Err: err}
			}
			if res.Degraded {
				s.logger.Warn("similarity search unavailable, using pattern-only scoring", "component", kind)
			}
			span.SetAttributes(
				attribute.Float64("riskgate.component_risk", res.Risk),
				attribute.Int("riskgate.findings", len(res.Findings)),
			)

			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *AnalysisService) remediate(ctx context.Context, findings []risk.Finding, text string) *risk.RemediationReport {
	input := make([]risk.Finding, len(findings))
	copy(input, findings)

	report, err := s.remediator.Remediate(ctx, input, text)
	if err != nil {
		s.logger.Warn("remediation failed", "component", "remediation", "error", err)
		return &risk.RemediationReport{Fixes: []risk.Fix{}, Error: err.Error()}
	}
	return report
}

// failSafe turns an internal failure into the conservative blocking verdict.
func (s *AnalysisService) failSafe(ctx context.Context, span trace.Span, a *risk.Assessment, m *review.Machine, err error) *risk.Assessment {
	s.logger.Error("analysis failed, blocking document", "assessment", a.ID, "error", err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	a.Compound = scoring.FailSafe(err)
	a.Decision = risk.DecisionCriticalBlock
	a.Confidence = 0
	a.Failure = err.Error()
	if a.Findings == nil {
		a.Findings = []risk.Finding{}
	}
	if m != nil {
		s.step(m, review.EventFail)
		s.step(m, review.EventFinish)
		a.States = m.History()
	}
	s.record(ctx, span, a)
	return a
}

// step advances the lifecycle. Transitions are fixed by Analyze, so a
// rejected event is a programming error worth logging, not failing on.
func (s *AnalysisService) step(m *review.Machine, event string) {
	if err := m.Transition(event); err != nil {
		s.logger.Error("unexpected lifecycle transition", "error", err)
	}
}

func (s *AnalysisService) record(ctx context.Context, span trace.Span, a *risk.Assessment) {
	span.SetAttributes(
		attribute.String("riskgate.decision", a.Decision.String()),
		attribute.Float64("riskgate.compound_score", a.Compound.Score),
		attribute.Bool("riskgate.high_risk", a.Compound.IsHigh),
		attribute.Bool("riskgate.degraded", a.Degraded),
	)
	s.scores.Record(ctx, a.Compound.Score, metric.WithAttributes(attribute.String("decision", a.Decision.String())))
	s.decisions.Add(ctx, 1, metric.WithAttributes(attribute.String("decision", a.Decision.String())))

	s.logger.Info("assessment complete",
		"assessment", a.ID,
		"decision", a.Decision,
		"score", a.Score.Compound,
		"compound", a.Compound.Score,
		"high_risk", a.Compound.IsHigh,
		"findings", len(a.Findings),
	)
}
