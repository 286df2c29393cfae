package feed

import (
	"time"
)

// Entry is one decision from the polled legislature feed. Entries only live
// for the duration of a poll cycle.
type Entry struct {
	SourceID     string // Stable external identifier (GUID, falling back to title)
	Title        string
	Link         string // Detail page URL, also the marker identifier
	Description  string
	DecisionDate string // YYYY-MM-DD, empty when the feed carries no usable date
	PublishedAt  *time.Time
}
