package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lovlytt/lovlytt/app/feed"
	"github.com/lovlytt/lovlytt/app/forward"
	"github.com/lovlytt/lovlytt/app/sources"
)

// PollFeedTask runs one poll cycle for a source: fetch the feed, detect the
// entries newer than the seen marker, forward them oldest-first to the
// ingestion collaborator and advance the marker.
type PollFeedTask struct {
	Task
	SourceConfig   *sources.Config
	httpClient     *http.Client
	parser         *feed.Parser
	markers        MarkerStore
	ingest         IngestSubmitter
	userAgent      string
	pacingInterval int
	coldStartLimit int
}

func NewPollFeedTask(sourceName string, sourceConfig *sources.Config, httpClient *http.Client,
	parser *feed.Parser, markers MarkerStore, ingest IngestSubmitter,
	userAgent string, pacingInterval int, coldStartLimit int) *PollFeedTask {
	return &PollFeedTask{
		Task:           NewTask(TaskTypePollFeed, sourceName),
		SourceConfig:   sourceConfig,
		httpClient:     httpClient,
		parser:         parser,
		markers:        markers,
		ingest:         ingest,
		userAgent:      userAgent,
		pacingInterval: pacingInterval,
		coldStartLimit: coldStartLimit,
	}
}

func (t *PollFeedTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	data, err := t.fetchFeed(ctx, t.SourceConfig.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	entries, err := t.parser.Run(data)
	if err != nil {
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	lastSeen, err := t.markers.Get(ctx, t.SourceName)
	if err != nil {
		return fmt.Errorf("failed to read seen marker: %w", err)
	}

	fresh := feed.DetectNew(entries, lastSeen, t.coldStartLimit)
	if len(fresh) == 0 {
		slog.Info("Task completed",
			"type", "PollFeed",
			"source", t.SourceName,
			"duration", t.GetDuration(),
			"total", len(entries),
			"new", 0)
		return nil
	}

	forwarded, err := t.forwardEntries(ctx, fresh)

	// The marker only advances over entries that were actually forwarded.
	// fresh is newest-first, so after n forwarded oldest-first entries the
	// newest covered link sits at index len(fresh)-n.
	if forwarded > 0 {
		newestForwarded := fresh[len(fresh)-forwarded].Link
		if markerErr := t.markers.Set(ctx, t.SourceName, newestForwarded); markerErr != nil {
			return fmt.Errorf("failed to advance seen marker: %w", markerErr)
		}
	}

	if err != nil {
		return fmt.Errorf("failed to forward new entries (%d of %d forwarded): %w", forwarded, len(fresh), err)
	}

	slog.Info("Task completed",
		"type", "PollFeed",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", len(entries),
		"new", len(fresh),
		"forwarded", forwarded)

	return nil
}

// forwardEntries submits fresh entries oldest-first so that a failure mid-batch
// leaves the marker on a prefix of forwarded work, never skipping an entry.
// Submissions are paced to stay polite toward the collaborator.
func (t *PollFeedTask) forwardEntries(ctx context.Context, fresh []feed.Entry) (int, error) {
	requestID := forward.NewRequestID("poll")

	forwarded := 0
	for i := len(fresh) - 1; i >= 0; i-- {
		if forwarded > 0 && t.pacingInterval > 0 {
			select {
			case <-ctx.Done():
				return forwarded, ctx.Err()
			case <-time.After(time.Duration(t.pacingInterval) * time.Second):
			}
		}

		entry := fresh[i]
		ingestEntry := forward.IngestEntry{
			StortingetID:    entry.SourceID,
			Title:           entry.Title,
			StortingetLink:  entry.Link,
			FeedDescription: entry.Description,
			DecisionDate:    entry.DecisionDate,
		}

		if err := t.ingest.Submit(ctx, ingestEntry, requestID); err != nil {
			return forwarded, fmt.Errorf("failed to submit entry %q: %w", entry.SourceID, err)
		}

		forwarded++
		slog.Debug("Entry forwarded",
			"source", t.SourceName,
			"stortinget_id", entry.SourceID,
			"link", entry.Link,
			"request_id", requestID)
	}

	return forwarded, nil
}

func (t *PollFeedTask) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(t.SourceConfig.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
