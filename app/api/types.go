package api

import (
	"github.com/lovlytt/lovlytt/app/database"
	"github.com/lovlytt/lovlytt/app/sources"
	"github.com/lovlytt/lovlytt/app/tasks"
)

type Handler struct {
	proposalRepo database.ProposalRepository
	documentRepo database.DocumentRepository
	configCache  *sources.Cache
	scheduler    tasks.TaskSchedulerInterface
	fetcher      tasks.DetailFetcher
	linker       tasks.LinkSubmitter
}

type ingestItem struct {
	StortingetID    string `json:"stortinget_id"`
	Title           string `json:"title"`
	StortingetLink  string `json:"stortinget_link"`
	FeedDescription string `json:"feed_description"`
	DecisionDate    string `json:"decision_date"`
}

type ingestRequest struct {
	Items []ingestItem `json:"items"`
}

type ingestItemResult struct {
	StortingetID string `json:"stortinget_id"`
	Status       string `json:"status"` // inserted, duplicate or error
	ProposalID   string `json:"proposal_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// webhookPayload mirrors a database-webhook notification about a newly
// inserted proposal row.
type webhookPayload struct {
	Record struct {
		ID             string `json:"id"`
		StortingetLink string `json:"stortinget_link"`
	} `json:"record"`
}

type linkRequest struct {
	ProposalID      string   `json:"proposal_id"`
	ExtractedIDs    []string `json:"extracted_ids"`
	EnforcementDate string   `json:"enforcement_date"`
}

type documentPayload struct {
	Dokid        string `json:"dokid"`
	LegacyID     string `json:"legacy_id"`
	Title        string `json:"title"`
	ShortTitle   string `json:"short_title"`
	DocumentType string `json:"document_type"`
}
