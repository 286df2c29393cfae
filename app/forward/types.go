package forward

// IngestEntry is one new feed decision in the shape the ingestion
// collaborator expects.
type IngestEntry struct {
	StortingetID    string `json:"stortinget_id"`
	Title           string `json:"title"`
	StortingetLink  string `json:"stortinget_link,omitempty"`
	FeedDescription string `json:"feed_description,omitempty"`
	DecisionDate    string `json:"decision_date,omitempty"`
}

// LinkingRequest is the unit handed to the matcher collaborator: the
// deduplicated extracted law identifiers and exactly one enforcement
// classification for a proposal. Immutable once built.
type LinkingRequest struct {
	ProposalID      string   `json:"proposal_id"`
	ExtractedIDs    []string `json:"extracted_ids"`
	EnforcementDate string   `json:"enforcement_date"`
}
