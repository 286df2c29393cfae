package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	kongenRe           = newTextRe(`(fra\s+den\s+tid\s+)?kongen\s+(bestemmer|fastsetter)`)
	straksRe           = newTextRe(`trer\s+i\s+kraft\s+straks`)
	commencementDateRe = newTextRe(`trer\s+i\s+kraft\s+(?:den\s+)?(\d{1,2})\.\s*([a-zæøå]+)\s+(\d{4})`)
	trerIKraftRe       = newTextRe(`trer\s+i\s+kraft`)
	staggeredPhraseRe  = newTextRe(`ulike\s+tider|forskjellige\s+tidspunkt|til\s+ulike\s+tider`)
)

// Enforcement classifies the commencement semantics of proposal text.
// First match wins, in priority order:
//
//  1. deferred-authority phrasing ("fra den tid Kongen bestemmer/fastsetter")
//  2. immediate-on-sanction phrasing ("trer i kraft straks")
//  3. two or more distinct valid commencement dates
//  4. exactly one valid commencement date, returned as YYYY-MM-DD
//  5. no date, but commencement wording plus a staggered-dates signal
//  6. nothing found
//
// Dates failing calendar validation (Feb 30 and friends) are discarded rather
// than guessed at. Fetch failures never reach this function; callers use
// ParserFailResult for those.
func Enforcement(text string) EnforcementResult {
	if loc := kongenRe.FindStringIndex(text); loc != nil {
		return resultWithMatch(EnforcementKongenBestemmer, "kongen", text, loc)
	}

	if loc := straksRe.FindStringIndex(text); loc != nil {
		return resultWithMatch(EnforcementStraks, "straks", text, loc)
	}

	dates, firstLoc := commencementDates(text)
	switch {
	case len(dates) > 1:
		return resultWithMatch(EnforcementFlereDatoer, "multi", text, firstLoc)
	case len(dates) == 1:
		return EnforcementResult{
			Value:   dates[0],
			Source:  "fixed_date",
			Snippet: snippetAround(text, firstLoc),
		}
	}

	if loc := trerIKraftRe.FindStringIndex(text); loc != nil {
		if strings.Contains(text, "§") || staggeredPhraseRe.MatchString(text) {
			return resultWithMatch(EnforcementFlereDatoer, "multi", text, loc)
		}
	}

	return parserNoMatchResult()
}

// commencementDates collects the distinct valid calendar dates bound to
// commencement wording, plus the location of the first usable match.
func commencementDates(text string) ([]string, []int) {
	var (
		dates    []string
		seen     = make(map[string]struct{})
		firstLoc []int
	)

	matches := commencementDateRe.FindAllStringSubmatchIndex(text, -1)
	for _, m := range matches {
		day := atoi(text[m[2]:m[3]])
		month, ok := norwegianMonths[strings.ToLower(text[m[4]:m[5]])]
		if !ok {
			continue
		}
		year := atoi(text[m[6]:m[7]])

		if !isValidDate(year, month, day) {
			continue
		}

		iso := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		if firstLoc == nil {
			firstLoc = []int{m[0], m[1]}
		}
		if _, dup := seen[iso]; dup {
			continue
		}
		seen[iso] = struct{}{}
		dates = append(dates, iso)
	}

	return dates, firstLoc
}

func resultWithMatch(value, source, text string, loc []int) EnforcementResult {
	return EnforcementResult{
		Value:   value,
		Source:  source,
		Snippet: snippetAround(text, loc),
	}
}

const (
	snippetContextBytes = 80
	snippetMaxRunes     = 200
)

// snippetAround returns bounded context surrounding a match, clamped to rune
// boundaries so multi-byte Norwegian characters are never split.
func snippetAround(text string, loc []int) string {
	if loc == nil {
		return snippetNone
	}

	start := clampRuneStart(text, loc[0]-snippetContextBytes)
	end := clampRuneEnd(text, loc[1]+snippetContextBytes)

	snippet := strings.TrimSpace(text[start:end])
	if snippet == "" {
		return snippetNone
	}
	return truncateRunes(snippet, snippetMaxRunes)
}

func clampRuneStart(s string, i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

func clampRuneEnd(s string, i int) int {
	if i < 0 {
		i = 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	var b strings.Builder
	count := 0
	for _, r := range s {
		if count == max {
			break
		}
		b.WriteRune(r)
		count++
	}
	return strings.TrimRight(b.String(), " ") + "..."
}
