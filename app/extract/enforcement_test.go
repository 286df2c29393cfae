package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEnforcement_KongenBestemmer(t *testing.T) {
	text := "Loven gjelder fra den tid Kongen bestemmer."

	result := Enforcement(text)

	if result.Value != EnforcementKongenBestemmer {
		t.Errorf("Expected %s, got: %s", EnforcementKongenBestemmer, result.Value)
	}
	if result.Source != "kongen" {
		t.Errorf("Expected source 'kongen', got: %s", result.Source)
	}
	if result.Snippet == snippetNone {
		t.Errorf("Expected a snippet around the match, got none")
	}
}

func TestEnforcement_KongenFastsetter(t *testing.T) {
	text := "Loven trer i kraft fra den tid Kongen fastsetter."

	result := Enforcement(text)

	if result.Value != EnforcementKongenBestemmer {
		t.Errorf("Expected %s, got: %s", EnforcementKongenBestemmer, result.Value)
	}
}

func TestEnforcement_KongenWinsOverStraks(t *testing.T) {
	text := "Del I trer i kraft straks. Del II gjelder fra den tid Kongen bestemmer."

	result := Enforcement(text)

	if result.Value != EnforcementKongenBestemmer {
		t.Errorf("Expected deferred-authority phrasing to take priority, got: %s", result.Value)
	}
}

func TestEnforcement_Straks(t *testing.T) {
	text := "Loven trer i kraft straks."

	result := Enforcement(text)

	if result.Value != EnforcementStraks {
		t.Errorf("Expected %s, got: %s", EnforcementStraks, result.Value)
	}
	if result.Source != "straks" {
		t.Errorf("Expected source 'straks', got: %s", result.Source)
	}
}

func TestEnforcement_SingleDate(t *testing.T) {
	text := "Loven trer i kraft 1. januar 2027."

	result := Enforcement(text)

	if result.Value != "2027-01-01" {
		t.Errorf("Expected '2027-01-01', got: %s", result.Value)
	}
	if result.Source != "fixed_date" {
		t.Errorf("Expected source 'fixed_date', got: %s", result.Source)
	}
}

func TestEnforcement_SingleDateWithDen(t *testing.T) {
	text := "Loven trer i kraft den 1. juli 2026."

	result := Enforcement(text)

	if result.Value != "2026-07-01" {
		t.Errorf("Expected '2026-07-01', got: %s", result.Value)
	}
}

func TestEnforcement_LeapYearDateAccepted(t *testing.T) {
	text := "Loven trer i kraft 29. februar 2024."

	result := Enforcement(text)

	if result.Value != "2024-02-29" {
		t.Errorf("Expected leap-year date '2024-02-29', got: %s", result.Value)
	}
}

func TestEnforcement_ImpossibleDateDiscarded(t *testing.T) {
	text := "Loven trer i kraft 30. februar 2026."

	result := Enforcement(text)

	if result.Value != EnforcementIkkeFunnet {
		t.Errorf("Expected impossible date to yield %s, got: %s", EnforcementIkkeFunnet, result.Value)
	}
}

func TestEnforcement_MultipleDistinctDates(t *testing.T) {
	text := "Del I trer i kraft 1. januar 2027. Del II trer i kraft 1. juli 2027."

	result := Enforcement(text)

	if result.Value != EnforcementFlereDatoer {
		t.Errorf("Expected %s, got: %s", EnforcementFlereDatoer, result.Value)
	}
	if result.Source != "multi" {
		t.Errorf("Expected source 'multi', got: %s", result.Source)
	}
}

func TestEnforcement_RepeatedSameDateIsSingle(t *testing.T) {
	text := "Loven trer i kraft 1. januar 2027. Forskriften trer i kraft 1. januar 2027."

	result := Enforcement(text)

	if result.Value != "2027-01-01" {
		t.Errorf("Expected repeated identical dates to classify as a single date, got: %s", result.Value)
	}
}

func TestEnforcement_SectionSignalWithoutDate(t *testing.T) {
	text := "Loven trer i kraft etter nærmere regler for § 2 og § 3."

	result := Enforcement(text)

	if result.Value != EnforcementFlereDatoer {
		t.Errorf("Expected section-staggered commencement to yield %s, got: %s", EnforcementFlereDatoer, result.Value)
	}
}

func TestEnforcement_StaggeredPhraseWithoutDate(t *testing.T) {
	text := "Bestemmelsene trer i kraft til ulike tider."

	result := Enforcement(text)

	if result.Value != EnforcementFlereDatoer {
		t.Errorf("Expected staggered phrasing to yield %s, got: %s", EnforcementFlereDatoer, result.Value)
	}
}

func TestEnforcement_NoSignal(t *testing.T) {
	text := "Stortinget har behandlet saken og fattet vedtak."

	result := Enforcement(text)

	if result.Value != EnforcementIkkeFunnet {
		t.Errorf("Expected %s, got: %s", EnforcementIkkeFunnet, result.Value)
	}
	if result.Snippet != "none" {
		t.Errorf("Expected snippet 'none', got: %s", result.Snippet)
	}
}

func TestEnforcement_SnippetBounded(t *testing.T) {
	padding := strings.Repeat("ø", 500)
	text := padding + " Loven trer i kraft straks. " + padding

	result := Enforcement(text)

	if result.Value != EnforcementStraks {
		t.Fatalf("Expected %s, got: %s", EnforcementStraks, result.Value)
	}
	if !strings.Contains(result.Snippet, "trer i kraft straks") {
		t.Errorf("Expected snippet to contain the match, got: %s", result.Snippet)
	}
	if utf8.RuneCountInString(result.Snippet) > 203 {
		t.Errorf("Expected snippet capped at 200 runes plus ellipsis, got %d runes", utf8.RuneCountInString(result.Snippet))
	}
	if !utf8.ValidString(result.Snippet) {
		t.Errorf("Expected snippet to be valid UTF-8 despite multi-byte context")
	}
}

func TestParserFailResult(t *testing.T) {
	result := ParserFailResult()

	if result.Value != EnforcementFeil {
		t.Errorf("Expected %s, got: %s", EnforcementFeil, result.Value)
	}
	if result.Source != "parser_fail" {
		t.Errorf("Expected source 'parser_fail', got: %s", result.Source)
	}
}

func TestIsClassification(t *testing.T) {
	valid := []string{
		EnforcementKongenBestemmer,
		EnforcementStraks,
		EnforcementFlereDatoer,
		EnforcementIkkeFunnet,
		EnforcementFeil,
		"2027-01-01",
		"2024-02-29",
	}
	for _, value := range valid {
		if !IsClassification(value) {
			t.Errorf("Expected %q to be a valid classification", value)
		}
	}

	invalid := []string{
		"",
		"garbage",
		"2027-13-01",
		"2027-02-30",
		"2027-1-1",
		"snart",
	}
	for _, value := range invalid {
		if IsClassification(value) {
			t.Errorf("Expected %q to be rejected", value)
		}
	}
}
