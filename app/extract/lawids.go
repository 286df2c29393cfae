package extract

import (
	"fmt"
	"sort"
	"strings"
)

// Citation grammars found in proposal text. All variants normalize to the
// hyphen-delimited legacy form (LOV-YYYY-MM-DD-N / FOR-YYYY-MM-DD-N) used by
// the legal-document catalogue.
var (
	// Prose form: "lov 16. juni 2017 nr. 60", "forskrift 15. desember 2006 nr. 1456"
	proseCitationRe = newTextRe(`\b(lov|forskrift)\s+(\d{1,2})\.\s*([a-zæøå]+)\s+(\d{4})\s+nr\.?\s+(\d+)`)

	// Legacy identifier form: "LOV-2017-06-16-60"
	legacyIDRe = newTextRe(`\b(lov|for)-(\d{4})-(\d{2})-(\d{2})-(\d+)\b`)

	// Lovdata dokid form: "NL/lov/2017-06-16-60", sequence number optional
	dokidRe = newTextRe(`\bnl/(lov|forskrift)/(\d{4})-(\d{2})-(\d{2})(?:-(\d+))?\b`)
)

// LawIDs scans text for embedded legal document identifiers and returns the
// deduplicated, sorted set in canonical hyphen-delimited form. Text without
// citation-shaped substrings yields an empty set, never an error. Calendar
// validity of the embedded date is checked; sequence numbers are not
// validated here, that is the downstream catalogue lookup's job.
func LawIDs(text string) []string {
	found := make(map[string]struct{})

	for _, m := range proseCitationRe.FindAllStringSubmatch(text, -1) {
		month, ok := norwegianMonths[strings.ToLower(m[3])]
		if !ok {
			continue
		}
		addLawID(found, m[1], atoi(m[4]), month, atoi(m[2]), m[5])
	}

	for _, m := range legacyIDRe.FindAllStringSubmatch(text, -1) {
		kind := "lov"
		if strings.EqualFold(m[1], "for") {
			kind = "forskrift"
		}
		addLawID(found, kind, atoi(m[2]), atoi(m[3]), atoi(m[4]), m[5])
	}

	for _, m := range dokidRe.FindAllStringSubmatch(text, -1) {
		addLawID(found, m[1], atoi(m[2]), atoi(m[3]), atoi(m[4]), m[5])
	}

	ids := make([]string, 0, len(found))
	for id := range found {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func addLawID(found map[string]struct{}, kind string, year, month, day int, seq string) {
	if !isValidDate(year, month, day) {
		return
	}

	prefix := "LOV"
	if strings.EqualFold(kind, "forskrift") {
		prefix = "FOR"
	}

	id := fmt.Sprintf("%s-%04d-%02d-%02d", prefix, year, month, day)
	if seq != "" {
		id = fmt.Sprintf("%s-%d", id, atoi(seq))
	}
	found[id] = struct{}{}
}
