package feed

import (
	"log/slog"
)

// DetectNew returns the entries strictly newer than the last seen marker.
//
// Entries are expected newest-first, the feed's publishing convention. The
// marker is the link of the newest previously processed entry; scanning stops
// at the first entry matching it. When the marker no longer appears in the
// batch the feed window has rotated past it and every entry counts as new.
// On a first run (empty marker) the result is capped at coldStartLimit so a
// cold start cannot flood the ingestion path.
//
// Entries missing a link or source id cannot be ingested or fetched and are
// excluded here rather than failing the batch.
func DetectNew(entries []Entry, lastSeen string, coldStartLimit int) []Entry {
	var fresh []Entry

	for _, entry := range entries {
		if lastSeen != "" && entry.Link == lastSeen {
			break
		}

		if entry.Link == "" || entry.SourceID == "" {
			slog.Warn("Skipping malformed feed entry",
				"title", entry.Title,
				"link", entry.Link)
			continue
		}

		fresh = append(fresh, entry)
	}

	if lastSeen == "" && coldStartLimit > 0 && len(fresh) > coldStartLimit {
		slog.Info("Cold start: capping new entries",
			"total", len(fresh),
			"limit", coldStartLimit)
		fresh = fresh[:coldStartLimit]
	}

	return fresh
}
