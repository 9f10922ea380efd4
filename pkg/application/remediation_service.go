package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/felixgeelhaar/riskgate/pkg/domain"
	"github.com/felixgeelhaar/riskgate/pkg/domain/ai"
	"github.com/felixgeelhaar/riskgate/pkg/domain/document"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
	"github.com/xeipuuv/gojsonschema"
)

const DefaultMaxFixes = 5

const maxFixContext = 1500

const fixSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["text", "confidence"],
  "properties": {
    "text": { "type": "string", "minLength": 1 },
    "confidence": { "type": "number", "minimum": 0, "maximum": 1 },
    "rationale": { "type": "string" }
  }
}`

var fixSchemaLoader = gojsonschema.NewStringLoader(fixSchemaJSON)

const remediationSystemPrompt = "You are a contracts and proposal editor. " +
	"Given one risk finding and the surrounding document text, draft replacement text that resolves it. " +
	`Reply with a single JSON object: {"text": string, "confidence": number between 0 and 1, "rationale": string}.`

// RemediationService drafts advisory fixes for findings with an AI provider.
// It never changes the findings or the decision they led to.
type RemediationService struct {
	provider ai.Provider
	audit    domain.AuditLogger
	maxFixes int
	logger   *slog.Logger
}

var (
	_ ai.FixGenerator = (*RemediationService)(nil)
	_ ai.Remediator   = (*RemediationService)(nil)
)

// NewRemediationService creates the service. audit may be nil; maxFixes of
// zero or less uses DefaultMaxFixes.
func NewRemediationService(provider ai.Provider, audit domain.AuditLogger, maxFixes int, logger *slog.Logger) *RemediationService {
	if maxFixes <= 0 {
		maxFixes = DefaultMaxFixes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RemediationService{provider: provider, audit: audit, maxFixes: maxFixes, logger: logger}
}

// Remediate asks for a fix for each of the most severe findings. A failure
// for one finding is recorded on its Fix and does not stop the others.
func (s *RemediationService) Remediate(ctx context.Context, findings []risk.Finding, text string) (*risk.RemediationReport, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("no AI provider configured")
	}

	ranked := make([]risk.Finding, len(findings))
	copy(ranked, findings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Severity.Score() > ranked[j].Severity.Score()
	})

	report := &risk.RemediationReport{Provider: s.provider.ID(), Fixes: []risk.Fix{}}
	if len(ranked) > s.maxFixes {
		report.Skipped = len(ranked) - s.maxFixes
		ranked = ranked[:s.maxFixes]
	}

	doc := document.New(text)
	failed := 0
	for _, f := range ranked {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		fix, err := s.GenerateFix(ctx, f, fixContext(doc, f))
		if err != nil {
			failed++
			s.logger.Warn("fix generation failed", "finding", f.ID, "error", err)
			report.Fixes = append(report.Fixes, risk.Fix{FindingID: f.ID, Error: err.Error()})
			continue
		}
		report.Fixes = append(report.Fixes, *fix)
	}

	if s.audit != nil {
		if err := s.audit.Log(domain.ActionRemediationGenerated, domain.ActorAI, map[string]interface{}{
			"provider": report.Provider,
			"fixes":    len(report.Fixes) - failed,
			"failed":   failed,
			"skipped":  report.Skipped,
		}); err != nil {
			s.logger.Warn("failed to audit remediation", "error", err)
		}
	}
	return report, nil
}

// GenerateFix drafts replacement text for one finding. The reply must be a
// JSON object matching the fix schema.
func (s *RemediationService) GenerateFix(ctx context.Context, finding risk.Finding, documentContext string) (*risk.Fix, error) {
	prompt := fmt.Sprintf("Finding %s (%s, %s): %s\nLocation: %s\n\nDocument context:\n%s\n\nReturn JSON only.",
		finding.ID, finding.Severity, finding.Theme, finding.Description, orNone(finding.Location), documentContext)

	resp, err := s.provider.Complete(ctx, ai.CompletionRequest{
		Prompt:      prompt,
		System:      remediationSystemPrompt,
		Temperature: 0.2,
		MaxTokens:   800,
	})
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	clean := extractJSONPayload(resp.Text)
	result, err := gojsonschema.Validate(fixSchemaLoader, gojsonschema.NewStringLoader(clean))
	if err != nil {
		return nil, fmt.Errorf("parse fix response: %w", err)
	}
	if !result.Valid() {
		var issues []string
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, fmt.Errorf("fix response does not match schema: %s", strings.Join(issues, "; "))
	}

	var out struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
		Rationale  string  `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("decode fix response: %w", err)
	}

	return &risk.Fix{
		FindingID:  finding.ID,
		Text:       strings.TrimSpace(out.Text),
		Confidence: math.Round(out.Confidence*1e4) / 1e4,
		Rationale:  strings.TrimSpace(out.Rationale),
	}, nil
}

// fixContext returns the section the finding points at, or the start of the
// document when the location is not a section.
func fixContext(doc *document.Document, f risk.Finding) string {
	for _, sec := range doc.Sections() {
		if f.Location != "" && strings.EqualFold(sec.Title, f.Location) {
			return truncateRunes(sec.Body, maxFixContext)
		}
	}
	return truncateRunes(doc.Text(), maxFixContext)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// extractJSONPayload strips code fences and surrounding prose from a model
// reply, keeping the outermost JSON object or array.
func extractJSONPayload(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	start := strings.IndexAny(clean, "[{")
	if start == -1 {
		return clean
	}
	end := strings.LastIndexAny(clean, "]}")
	if end <= start {
		return clean
	}
	return strings.TrimSpace(clean[start : end+1])
}
