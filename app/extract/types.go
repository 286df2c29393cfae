package extract

// Enforcement classification sentinels. A proposal's enforcement date is
// either a concrete YYYY-MM-DD string or exactly one of these tokens; the
// downstream store never sees a null that could be read as "not yet checked".
const (
	EnforcementKongenBestemmer = "KONGEN_BESTEMMER"   // authority decides later
	EnforcementStraks          = "STRAKS"             // immediate on sanction
	EnforcementFlereDatoer     = "FLERE_DATOER"       // multiple staggered dates
	EnforcementIkkeFunnet      = "PARSER_IKKE_FUNNET" // no signal in text
	EnforcementFeil            = "PARSER_FEIL"        // fetch/parse failure upstream
)

const snippetNone = "none"

// EnforcementResult is one classification outcome. Source labels which rule
// matched and Snippet carries bounded surrounding text for logging.
type EnforcementResult struct {
	Value   string
	Source  string
	Snippet string
}

// ParserFailResult is the short-circuit classification used by callers when
// fetching or extracting the source text failed before analysis could run.
func ParserFailResult() EnforcementResult {
	return EnforcementResult{
		Value:   EnforcementFeil,
		Source:  "parser_fail",
		Snippet: snippetNone,
	}
}

func parserNoMatchResult() EnforcementResult {
	return EnforcementResult{
		Value:   EnforcementIkkeFunnet,
		Source:  "none",
		Snippet: snippetNone,
	}
}

// IsClassification reports whether value is a well-formed enforcement
// classification: a valid calendar date or one of the sentinel tokens.
func IsClassification(value string) bool {
	switch value {
	case EnforcementKongenBestemmer, EnforcementStraks, EnforcementFlereDatoer,
		EnforcementIkkeFunnet, EnforcementFeil:
		return true
	}

	m := isoDateRe.FindStringSubmatch(value)
	if m == nil {
		return false
	}
	return isValidDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
}
