package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lovlytt/lovlytt/app/fetch"
)

// MatcherForwarder submits one LinkingRequest per proposal to the
// matching/linking collaborator.
type MatcherForwarder struct {
	client *http.Client
	url    string
	secret string
}

func NewMatcherForwarder(client *http.Client, url, secret string) *MatcherForwarder {
	return &MatcherForwarder{client: client, url: url, secret: secret}
}

func (f *MatcherForwarder) Submit(ctx context.Context, linking LinkingRequest, requestID string) error {
	if linking.ExtractedIDs == nil {
		linking.ExtractedIDs = []string{}
	}

	body, err := json.Marshal(linking)
	if err != nil {
		return fmt.Errorf("failed to marshal linking request: %w", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, forwardTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "POST", f.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create matcher request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-worker-secret", f.secret)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := f.client.Do(req)
	if err != nil {
		return fetch.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fetch.StatusError(resp.StatusCode, f.url)
	}

	return nil
}
