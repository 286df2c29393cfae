package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lovlytt/lovlytt/app/fetch"
)

const forwardTimeout = 15 * time.Second

// IngestForwarder submits newly detected feed entries to the ingestion
// collaborator. It does not retry internally; failures come back classified
// so the caller can decide.
type IngestForwarder struct {
	client *http.Client
	url    string
	secret string
}

func NewIngestForwarder(client *http.Client, url, secret string) *IngestForwarder {
	return &IngestForwarder{client: client, url: url, secret: secret}
}

// Submit forwards a single entry. The collaborator is idempotent on its own
// conflict key, so re-submission after a partial batch is safe.
func (f *IngestForwarder) Submit(ctx context.Context, entry IngestEntry, requestID string) error {
	payload := struct {
		Items []IngestEntry `json:"items"`
	}{Items: []IngestEntry{entry}}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal ingest payload: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, forwardTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "POST", f.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create ingest request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-ingest-secret", f.secret)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := f.client.Do(req)
	if err != nil {
		return fetch.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fetch.StatusError(resp.StatusCode, f.url)
	}

	return nil
}
