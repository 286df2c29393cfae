package database

// NewProposal is the input shape for ingesting a proposal. Empty optional
// fields are stored as NULL.
type NewProposal struct {
	StortingetID    string
	Title           string
	StortingetLink  string
	FeedDescription string
	DecisionDate    string // YYYY-MM-DD or empty
}

// NewDocument is the input shape for catalogue upserts, keyed by dokid.
type NewDocument struct {
	Dokid        string
	LegacyID     string
	Title        string
	ShortTitle   string
	DocumentType string
}

type ProposalRepository interface {
	// UpsertProposal inserts a proposal, ignoring conflicts on
	// stortinget_id. Reports the row id and whether a new row was created.
	UpsertProposal(proposal NewProposal) (string, bool, error)

	GetProposal(id string) (*Proposal, error)
	ListProposals(limit int) ([]Proposal, error)
	GetProposalCount() (int, error)

	// UpdateEnforcement stores the enforcement classification for a proposal.
	UpdateEnforcement(id string, enforcement string) error
}

type DocumentRepository interface {
	// UpsertDocument inserts or updates a catalogue entry keyed by dokid.
	UpsertDocument(doc NewDocument) (string, bool, error)

	// FindByExtractedID resolves an extracted citation against the
	// catalogue by legacy id or dokid. Returns nil when unknown.
	FindByExtractedID(extractedID string) (*LegalDocument, error)

	// LinkProposal upserts a (proposal, document) link; conflicts on the
	// composite key are ignored. Reports whether a new link was created.
	LinkProposal(proposalID, documentID, extractedID string) (bool, error)

	GetLinkedDocuments(proposalID string) ([]LinkedDocument, error)
	GetDocumentCount() (int, error)
	GetLinkCount() (int, error)
}
