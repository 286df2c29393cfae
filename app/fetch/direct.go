package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

const directTimeout = 20 * time.Second

// DirectStrategy fetches the raw HTML from the source itself and extracts
// the bounded content region demarcated by the INNHOLD comment markers.
// Pages without the markers fall back to readability extraction.
type DirectStrategy struct {
	client    *http.Client
	userAgent string
	minLength int
}

func NewDirectStrategy(client *http.Client, userAgent string, minLength int) *DirectStrategy {
	return &DirectStrategy{
		client:    client,
		userAgent: userAgent,
		minLength: minLength,
	}
}

func (s *DirectStrategy) Name() string {
	return "direct"
}

func (s *DirectStrategy) Fetch(ctx context.Context, url string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, directTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", StatusError(resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Classify(err)
	}

	text, err := s.extractText(string(data))
	if err != nil {
		return "", err
	}

	if len(text) < s.minLength {
		return "", newError(CodeContentTooShort,
			fmt.Sprintf("extracted %d chars from %s, need at least %d", len(text), url, s.minLength), false)
	}

	return text, nil
}

func (s *DirectStrategy) extractText(html string) (string, error) {
	if section, ok := extractBetweenComments(html, contentBeginMarker, contentEndMarker); ok {
		return stripHTMLTags(section), nil
	}

	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return "", newError(CodeMarkersMissing,
			fmt.Sprintf("content markers not found and readability failed: %v", err), false)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", newError(CodeMarkersMissing,
			"content markers not found and readability extracted no text", false)
	}

	return stripHTMLTags(text), nil
}
