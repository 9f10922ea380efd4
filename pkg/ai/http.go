package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-200 reply from a provider API.
type APIError struct {
	API        string
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned status: %s", e.API, e.Status)
}

// postJSON sends in as a JSON body and decodes a 200 reply into out.
func postJSON(ctx context.Context, client *http.Client, api, url string, header http.Header, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", api, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to %s API: %w", api, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

	if resp.StatusCode != http.StatusOK {
		return &APIError{API: api, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", api, err)
	}
	return nil
}
