package tasks

import (
	"context"

	"github.com/lovlytt/lovlytt/app/forward"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API handlers to manage background task
// processing.
// Example usage:
//
//	scheduler := NewScheduler(configCache, markers, httpClient, parser, ingest)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewLinkProposalTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// MarkerStore persists the per-source seen marker across poll cycles.
type MarkerStore interface {
	Get(ctx context.Context, source string) (string, error)
	Set(ctx context.Context, source, link string) error
}

// DetailFetcher turns a proposal detail-page URL into clean text.
type DetailFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// IngestSubmitter forwards one new feed entry to the ingestion collaborator.
type IngestSubmitter interface {
	Submit(ctx context.Context, entry forward.IngestEntry, requestID string) error
}

// LinkSubmitter forwards one linking request to the matching collaborator.
type LinkSubmitter interface {
	Submit(ctx context.Context, linking forward.LinkingRequest, requestID string) error
}
