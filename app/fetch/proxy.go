package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const proxyTimeout = 12 * time.Second

// ProxyStrategy fetches a URL through a text-extraction proxy that returns
// cleaned markdown/plain text directly.
type ProxyStrategy struct {
	client    *http.Client
	baseURL   string
	userAgent string
	minLength int
}

func NewProxyStrategy(client *http.Client, baseURL, userAgent string, minLength int) *ProxyStrategy {
	return &ProxyStrategy{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		minLength: minLength,
	}
}

func (s *ProxyStrategy) Name() string {
	return "proxy"
}

func (s *ProxyStrategy) Fetch(ctx context.Context, url string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, proxyTimeout)
	defer cancel()

	proxyURL := s.baseURL + "/" + url

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", proxyURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", StatusError(resp.StatusCode, proxyURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Classify(err)
	}

	text := strings.TrimSpace(string(data))

	// A proxy error page served as 200 OK is short; real proposal text is not.
	if len(text) < s.minLength {
		return "", newError(CodeContentTooShort,
			fmt.Sprintf("proxy returned %d chars, need at least %d", len(text), s.minLength), false)
	}

	return text, nil
}
