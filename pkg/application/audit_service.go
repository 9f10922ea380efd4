package application

import (
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/riskgate/pkg/domain"
	"github.com/google/uuid"
)

type AuditService struct {
	repo domain.AuditRepository
	now  func() time.Time
	mu   sync.Mutex
}

// Compile-time check that AuditService implements AuditLogger
var _ domain.AuditLogger = (*AuditService)(nil)

func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo, now: time.Now}
}

// Log appends an event to the hash chain.
func (s *AuditService) Log(action string, actor string, metadata map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.repo.LoadEvents()
	if err != nil {
		return fmt.Errorf("load audit trail: %w", err)
	}
	prevHash := ""
	if len(events) > 0 {
		prevHash = events[len(events)-1].Hash
	}

	event := domain.Event{
		ID:        uuid.New().String(),
		Timestamp: s.now().UTC(),
		Action:    action,
		Actor:     actor,
		Metadata:  metadata,
		PrevHash:  prevHash,
	}
	event.Hash = event.CalculateHash()

	return s.repo.RecordEvent(event)
}

func (s *AuditService) GetTimeline() ([]domain.Event, error) {
	return s.repo.LoadEvents()
}

// VerifyIntegrity walks the chain and reports every broken link and every
// event whose content no longer matches its hash.
func (s *AuditService) VerifyIntegrity() ([]string, error) {
	events, err := s.repo.LoadEvents()
	if err != nil {
		return nil, err
	}

	var violations []string
	lastHash := ""
	for i, e := range events {
		if e.PrevHash != lastHash {
			violations = append(violations, fmt.Sprintf("Event %d (%s): PrevHash mismatch. Audit trail broken.", i, e.ID))
		}
		if e.Hash != e.CalculateHash() {
			violations = append(violations, fmt.Sprintf("Event %d (%s): Content hash mismatch. Possible tampering.", i, e.ID))
		}
		lastHash = e.Hash
	}

	return violations, nil
}
