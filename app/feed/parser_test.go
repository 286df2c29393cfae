package feed

import (
	"testing"
)

func TestParseStortingetRSS(t *testing.T) {
	rssData := `<?xml version="1.0" encoding="utf-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>Lovvedtak</title>
    <link>https://www.stortinget.no</link>
    <description>Vedtak fra Stortinget</description>
    <item>
      <title>Lovvedtak 12 (2025-2026)</title>
      <link>https://www.stortinget.no/no/Saker-og-publikasjoner/Vedtak/Beslutninger/Lovvedtak/2025-2026/vedtak-202526-012/</link>
      <description>Endringer i sikkerhetsloven</description>
      <guid>vedtak-202526-012</guid>
      <pubDate>Tue, 10 Feb 2026 12:30:00 GMT</pubDate>
      <dc:date>2026-02-09T00:00:00Z</dc:date>
    </item>
    <item>
      <title>Lovvedtak 11 (2025-2026)</title>
      <link>https://www.stortinget.no/no/Saker-og-publikasjoner/Vedtak/Beslutninger/Lovvedtak/2025-2026/vedtak-202526-011/</link>
      <description>Endringer i helsepersonelloven</description>
      <pubDate>Mon, 09 Feb 2026 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	entries, err := parser.Run([]byte(rssData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got: %d", len(entries))
	}

	first := entries[0]
	if first.SourceID != "vedtak-202526-012" {
		t.Errorf("Expected GUID as source id, got: %s", first.SourceID)
	}
	if first.Title != "Lovvedtak 12 (2025-2026)" {
		t.Errorf("Unexpected title: %s", first.Title)
	}
	if first.Description != "Endringer i sikkerhetsloven" {
		t.Errorf("Unexpected description: %s", first.Description)
	}
	if first.DecisionDate != "2026-02-09" {
		t.Errorf("Expected decision date from dc:date, got: %s", first.DecisionDate)
	}
	if first.PublishedAt == nil {
		t.Error("Expected a parsed published timestamp")
	}

	second := entries[1]
	if second.SourceID != "Lovvedtak 11 (2025-2026)" {
		t.Errorf("Expected title fallback when GUID is absent, got: %s", second.SourceID)
	}
	if second.DecisionDate != "2026-02-09" {
		t.Errorf("Expected decision date from pubDate fallback, got: %s", second.DecisionDate)
	}
}

func TestParseInvalidFeed(t *testing.T) {
	parser := NewParser()

	_, err := parser.Run([]byte("not a feed at all"))

	if err == nil {
		t.Error("Expected an error for invalid feed data")
	}
}

func TestParseEmptyChannel(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Lovvedtak</title>
    <link>https://www.stortinget.no</link>
    <description>Tom kanal</description>
  </channel>
</rss>`

	parser := NewParser()
	entries, err := parser.Run([]byte(rssData))

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries, got: %d", len(entries))
	}
}
