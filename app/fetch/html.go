package fetch

import (
	"strings"
)

// Stortinget wraps the main content block of a proposal page in these
// comment markers.
const (
	contentBeginMarker = "<!-- INNHOLD -->"
	contentEndMarker   = "<!-- /INNHOLD -->"
)

// extractBetweenComments returns the region between the begin and end
// markers, or false when either marker is missing or they are reversed.
func extractBetweenComments(html, begin, end string) (string, bool) {
	startIdx := strings.Index(html, begin)
	if startIdx < 0 {
		return "", false
	}
	startIdx += len(begin)

	endIdx := strings.Index(html, end)
	if endIdx < startIdx {
		return "", false
	}

	return strings.TrimSpace(html[startIdx:endIdx]), true
}

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// stripHTMLTags removes markup from an extracted content region: tags are
// dropped, a small fixed set of entities is decoded, escaped line breaks and
// runs of whitespace collapse to single spaces.
func stripHTMLTags(html string) string {
	var text strings.Builder
	text.Grow(len(html))

	insideTag := false
	for _, c := range html {
		switch {
		case c == '<':
			insideTag = true
		case c == '>':
			insideTag = false
		case !insideTag:
			text.WriteRune(c)
		}
	}

	decoded := entityReplacer.Replace(text.String())
	decoded = strings.NewReplacer(`\r\n`, " ", `\n`, " ", `\r`, " ", `\t`, " ").Replace(decoded)

	var collapsed strings.Builder
	collapsed.Grow(len(decoded))
	lastWasSpace := false
	for _, c := range decoded {
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			if !lastWasSpace {
				collapsed.WriteByte(' ')
				lastWasSpace = true
			}
			continue
		}
		collapsed.WriteRune(c)
		lastWasSpace = false
	}

	return strings.TrimSpace(collapsed.String())
}
