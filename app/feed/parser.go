package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses raw feed bytes into entries, newest-first as published by the
// feed. Individual items are normalized here; entries that are unusable for
// the pipeline are dropped later by the detector, not treated as parse errors.
func (p *Parser) Run(data []byte) ([]Entry, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, p.normalizeItem(item))
	}

	return entries, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Entry {
	entry := Entry{
		SourceID:    cmp.Or(item.GUID, item.Title),
		Title:       item.Title,
		Link:        item.Link,
		Description: item.Description,
	}

	if item.PublishedParsed != nil {
		entry.PublishedAt = item.PublishedParsed
	}

	entry.DecisionDate = p.extractDecisionDate(item)

	return entry
}

// extractDecisionDate derives the decision date from the dc:date extension
// (Stortinget's feed convention), falling back to the item's published date.
// Only the calendar-date prefix of the timestamp is kept.
func (p *Parser) extractDecisionDate(item *gofeed.Item) string {
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Date) > 0 {
		if date := isoDatePrefix(item.DublinCoreExt.Date[0]); date != "" {
			return date
		}
	}

	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format("2006-01-02")
	}

	return isoDatePrefix(item.Published)
}

func isoDatePrefix(value string) string {
	datePart, _, _ := strings.Cut(strings.TrimSpace(value), "T")
	if len(datePart) >= 10 {
		return datePart[:10]
	}
	return ""
}
