package forward

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lovlytt/lovlytt/app/fetch"
)

func TestIngestForwarder_Submit(t *testing.T) {
	var gotSecret, gotRequestID, gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("x-ingest-secret")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	forwarder := NewIngestForwarder(server.Client(), server.URL, "ingest-secret")

	entry := IngestEntry{
		StortingetID:   "vedtak-202526-012",
		Title:          "Lovvedtak 12 (2025-2026)",
		StortingetLink: "https://www.stortinget.no/vedtak/12",
		DecisionDate:   "2026-02-09",
	}

	err := forwarder.Submit(context.Background(), entry, "poll-abc123")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if gotSecret != "ingest-secret" {
		t.Errorf("Expected ingest secret header, got: %s", gotSecret)
	}
	if gotRequestID != "poll-abc123" {
		t.Errorf("Expected request id header, got: %s", gotRequestID)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected JSON content type, got: %s", gotContentType)
	}

	var payload struct {
		Items []IngestEntry `json:"items"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if len(payload.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(payload.Items))
	}
	if payload.Items[0].StortingetID != "vedtak-202526-012" {
		t.Errorf("Unexpected item: %+v", payload.Items[0])
	}
}

func TestIngestForwarder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	forwarder := NewIngestForwarder(server.Client(), server.URL, "secret")

	err := forwarder.Submit(context.Background(), IngestEntry{StortingetID: "x", Title: "y"}, "poll-1")
	if err == nil {
		t.Fatal("Expected an error for HTTP 500")
	}

	var fetchErr *fetch.Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected a classified error, got: %v", err)
	}
	if !fetchErr.Retryable {
		t.Error("Expected HTTP 500 to be retryable")
	}
}

func TestMatcherForwarder_Submit(t *testing.T) {
	var gotSecret, gotRequestID string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("x-worker-secret")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	forwarder := NewMatcherForwarder(server.Client(), server.URL, "worker-secret")

	linking := LinkingRequest{
		ProposalID:      "11111111-2222-3333-4444-555555555555",
		ExtractedIDs:    []string{"LOV-2017-06-16-60"},
		EnforcementDate: "STRAKS",
	}

	err := forwarder.Submit(context.Background(), linking, "link-xyz")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if gotSecret != "worker-secret" {
		t.Errorf("Expected worker secret header, got: %s", gotSecret)
	}
	if gotRequestID != "link-xyz" {
		t.Errorf("Expected request id header, got: %s", gotRequestID)
	}

	var payload LinkingRequest
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if payload.EnforcementDate != "STRAKS" {
		t.Errorf("Unexpected enforcement date: %s", payload.EnforcementDate)
	}
	if len(payload.ExtractedIDs) != 1 || payload.ExtractedIDs[0] != "LOV-2017-06-16-60" {
		t.Errorf("Unexpected extracted ids: %v", payload.ExtractedIDs)
	}
}

func TestMatcherForwarder_NilIDsSerializedAsEmptyArray(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	forwarder := NewMatcherForwarder(server.Client(), server.URL, "secret")

	err := forwarder.Submit(context.Background(), LinkingRequest{
		ProposalID:      "p1",
		EnforcementDate: "PARSER_FEIL",
	}, "link-1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(string(gotBody), `"extracted_ids":[]`) {
		t.Errorf("Expected nil ids serialized as an empty array, got: %s", gotBody)
	}
}

func TestResolveRequestID(t *testing.T) {
	if got := ResolveRequestID("incoming-id", "api"); got != "incoming-id" {
		t.Errorf("Expected inbound id to be kept, got: %s", got)
	}
	if got := ResolveRequestID("   ", "api"); !strings.HasPrefix(got, "api-") {
		t.Errorf("Expected a generated id with prefix, got: %s", got)
	}

	first := NewRequestID("poll")
	second := NewRequestID("poll")
	if first == second {
		t.Error("Expected generated request ids to be unique")
	}
}
