package fetch

import (
	"context"
	"fmt"
	"log/slog"
)

// Strategy is one way of turning a detail-page URL into clean text. Each
// strategy is independently timeout-bound and returns classified errors.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, url string) (string, error)
}

// Fetcher tries an ordered list of strategies; the first success wins. The
// order encodes the two-tier policy: text-extraction proxy first, direct
// HTML fetch as the fallback when the proxy is blocked or rate-limited.
type Fetcher struct {
	strategies []Strategy
}

func NewFetcher(strategies ...Strategy) *Fetcher {
	return &Fetcher{strategies: strategies}
}

// Fetch retrieves the clean text of a proposal's detail page. On total
// failure the last strategy's classified error is returned.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var lastErr error

	for _, strategy := range f.strategies {
		text, err := strategy.Fetch(ctx, url)
		if err == nil {
			slog.Debug("Detail fetch succeeded",
				"strategy", strategy.Name(),
				"url", url,
				"text_length", len(text))
			return text, nil
		}

		slog.Warn("Detail fetch attempt failed",
			"strategy", strategy.Name(),
			"url", url,
			"error", err)
		lastErr = err
	}

	if lastErr == nil {
		return "", fmt.Errorf("no fetch strategies configured")
	}
	return "", Classify(lastErr)
}
