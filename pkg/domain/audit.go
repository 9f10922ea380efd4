package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// Audit actions recorded by riskgate.
const (
	ActionWorkspaceInitialized = "workspace.initialized"
	ActionAssessmentCompleted  = "assessment.completed"
	ActionAssessmentFailed     = "assessment.failed"
	ActionPatternsReloaded     = "patterns.reloaded"
	ActionRemediationGenerated = "remediation.generated"
)

// Actors.
const (
	ActorHuman  = "human"
	ActorSystem = "system"
	ActorAI     = "ai"
)

// Event is one entry in the hash-chained audit trail.
type Event struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Action    string                 `json:"action"`
	Actor     string                 `json:"actor"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	PrevHash  string                 `json:"prev_hash,omitempty"`
	Hash      string                 `json:"hash,omitempty"`
}

// CalculateHash returns the SHA256 of the previous hash followed by the
// event's own fields. Metadata is hashed in sorted-key order.
func (e *Event) CalculateHash() string {
	h := sha256.New()
	for _, part := range []string{
		e.PrevHash,
		e.ID,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.Action,
		e.Actor,
		canonicalJSON(e.Metadata),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func canonicalJSON(m map[string]interface{}) string {
	if len(m) == 0 {
		return ""
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := make([]byte, 0, 256)
	buf = append(buf, '{')
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(m[k])
		buf = append(buf, keyJSON...)
		buf = append(buf, ':')
		buf = append(buf, valJSON...)
	}
	buf = append(buf, '}')

	return string(buf)
}

// AuditLogger records auditable actions.
type AuditLogger interface {
	Log(action string, actor string, metadata map[string]interface{}) error
}

// AuditRepository persists the audit trail in append order.
type AuditRepository interface {
	RecordEvent(event Event) error
	LoadEvents() ([]Event, error)
}
