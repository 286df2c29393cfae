package database

import (
	"time"
)

// Proposal is a law proposal record in the database.
type Proposal struct {
	ID              string // Database UUID
	StortingetID    string // Stable external identifier from the feed
	Title           string
	StortingetLink  string
	FeedDescription string
	DecisionDate    *time.Time
	EnforcementDate string // ISO date or sentinel token; empty until linked
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LegalDocument is one entry of the base-law catalogue.
type LegalDocument struct {
	ID           string // Database UUID
	Dokid        string // Lovdata document id, e.g. NL/lov/1884-06-14-3
	LegacyID     string // Hyphen-delimited legacy id, e.g. LOV-1884-06-14-3
	Title        string
	ShortTitle   string
	DocumentType string // lov, forskrift_sentral or forskrift_lokal
	CreatedAt    time.Time
}

// LinkedDocument is a legal document joined with the link row that ties it
// to a proposal.
type LinkedDocument struct {
	DocumentID   string
	Dokid        string
	LegacyID     string
	Title        string
	ShortTitle   string
	DocumentType string
	ExtractedID  string // The citation string that produced the link
}
