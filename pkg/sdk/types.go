package sdk

import (
	"time"

	"github.com/felixgeelhaar/riskgate/pkg/domain/patterns"
	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

// SchemaInfo is the content of the riskgate://schema resource.
type SchemaInfo struct {
	SchemaVersion string          `json:"schema_version"`
	ServerVersion string          `json:"server_version"`
	Decisions     []risk.Decision `json:"decisions"`
	Blocking      []risk.Decision `json:"blocking_decisions"`
}

// PatternsInfo describes the library a server is analyzing with.
type PatternsInfo struct {
	Library       patterns.Stats `json:"library"`
	CorpusVersion string         `json:"corpus_version"`
	Clauses       int            `json:"reference_clauses"`
	Documents     int            `json:"template_documents"`
	Similarity    string         `json:"similarity_backend"`
}

// HistorySummary counts past decisions.
type HistorySummary struct {
	Total     int                   `json:"total"`
	Blocked   int                   `json:"blocked"`
	HighRisk  int                   `json:"high_risk"`
	Decisions map[risk.Decision]int `json:"decisions"`
}

// HistoryEntry is one recorded assessment, without its findings.
type HistoryEntry struct {
	ID           string        `json:"id"`
	Decision     risk.Decision `json:"decision"`
	Score        float64       `json:"score"`
	Compound     float64       `json:"compound_score"`
	HighRisk     bool          `json:"high_risk"`
	Findings     int           `json:"findings"`
	CreatedAt    time.Time     `json:"created_at"`
	Failure      string        `json:"failure,omitempty"`
	DocumentHash string        `json:"document_hash"`
}

// History is the result of the riskgate_history tool.
type History struct {
	Summary     HistorySummary `json:"summary"`
	Assessments []HistoryEntry `json:"assessments"`
}
