package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/riskgate/pkg/domain"
)

func (r *FilesystemRepository) RecordEvent(event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return r.appendLine(EventsFile, data)
}

func (r *FilesystemRepository) LoadEvents() ([]domain.Event, error) {
	data, err := r.readOptional(EventsFile)
	if err != nil {
		return nil, err
	}

	events := []domain.Event{}
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var e domain.Event
		if err := json.Unmarshal(line, &e); err != nil {
			continue // Skip malformed lines; audit verify reports the broken chain
		}
		events = append(events, e)
	}

	return events, nil
}
