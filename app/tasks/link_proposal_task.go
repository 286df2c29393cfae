package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lovlytt/lovlytt/app/extract"
	"github.com/lovlytt/lovlytt/app/forward"
)

// LinkProposalTask analyzes one proposal: fetch the detail page text, extract
// law identifiers and the enforcement classification, and hand the result to
// the linking collaborator.
//
// When the detail page cannot be fetched the task still submits a PARSER_FEIL
// classification with no identifiers, so the proposal is recorded as analyzed
// rather than silently stuck; the fetch error is then surfaced so retryable
// failures get another attempt that can overwrite the failure record.
type LinkProposalTask struct {
	Task
	ProposalID     string
	StortingetLink string
	fetcher        DetailFetcher
	linker         LinkSubmitter
	requestID      string
}

func NewLinkProposalTask(sourceName, proposalID, stortingetLink string,
	fetcher DetailFetcher, linker LinkSubmitter, requestID string) *LinkProposalTask {
	return &LinkProposalTask{
		Task:           NewTask(TaskTypeLinkProposal, sourceName),
		ProposalID:     proposalID,
		StortingetLink: stortingetLink,
		fetcher:        fetcher,
		linker:         linker,
		requestID:      forward.ResolveRequestID(requestID, "link"),
	}
}

func (t *LinkProposalTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if t.StortingetLink == "" {
		slog.Warn("Proposal has no detail link, skipping analysis",
			"proposal_id", t.ProposalID, "request_id", t.requestID)
		return nil
	}

	text, fetchErr := t.fetcher.Fetch(ctx, t.StortingetLink)

	var ids []string
	var result extract.EnforcementResult

	if fetchErr != nil {
		ids = []string{}
		result = extract.ParserFailResult()
	} else {
		ids = extract.LawIDs(text)
		result = extract.Enforcement(text)
	}

	linking := forward.LinkingRequest{
		ProposalID:      t.ProposalID,
		ExtractedIDs:    ids,
		EnforcementDate: result.Value,
	}

	if err := t.linker.Submit(ctx, linking, t.requestID); err != nil {
		return fmt.Errorf("failed to submit linking request: %w", err)
	}

	if fetchErr != nil {
		return fmt.Errorf("failed to fetch detail page: %w", fetchErr)
	}

	slog.Info("Task completed",
		"type", "LinkProposal",
		"proposal_id", t.ProposalID,
		"duration", t.GetDuration(),
		"extracted_ids", len(ids),
		"enforcement", result.Value,
		"enforcement_source", result.Source,
		"enforcement_snippet", result.Snippet,
		"request_id", t.requestID)

	return nil
}
