package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lovlytt/lovlytt/app/database"
	"github.com/lovlytt/lovlytt/app/sources"
	"github.com/lovlytt/lovlytt/app/tasks"
)

type stubProposalRepo struct {
	proposals map[string]*database.Proposal
	existing  map[string]string // stortinget_id -> proposal id
	enforced  map[string]string
}

func newStubProposalRepo() *stubProposalRepo {
	return &stubProposalRepo{
		proposals: make(map[string]*database.Proposal),
		existing:  make(map[string]string),
		enforced:  make(map[string]string),
	}
}

func (r *stubProposalRepo) UpsertProposal(proposal database.NewProposal) (string, bool, error) {
	if id, ok := r.existing[proposal.StortingetID]; ok {
		return id, false, nil
	}
	id := "id-" + proposal.StortingetID
	r.existing[proposal.StortingetID] = id
	r.proposals[id] = &database.Proposal{ID: id, StortingetID: proposal.StortingetID, Title: proposal.Title}
	return id, true, nil
}

func (r *stubProposalRepo) GetProposal(id string) (*database.Proposal, error) {
	return r.proposals[id], nil
}

func (r *stubProposalRepo) ListProposals(limit int) ([]database.Proposal, error) {
	var out []database.Proposal
	for _, p := range r.proposals {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProposalRepo) GetProposalCount() (int, error) { return len(r.proposals), nil }

func (r *stubProposalRepo) UpdateEnforcement(id string, enforcement string) error {
	r.enforced[id] = enforcement
	return nil
}

type stubDocumentRepo struct {
	byExtractedID map[string]*database.LegalDocument
	links         map[string]string // proposalID+documentID -> extractedID
}

func newStubDocumentRepo() *stubDocumentRepo {
	return &stubDocumentRepo{
		byExtractedID: make(map[string]*database.LegalDocument),
		links:         make(map[string]string),
	}
}

func (r *stubDocumentRepo) UpsertDocument(doc database.NewDocument) (string, bool, error) {
	return "doc-" + doc.Dokid, true, nil
}

func (r *stubDocumentRepo) FindByExtractedID(extractedID string) (*database.LegalDocument, error) {
	return r.byExtractedID[extractedID], nil
}

func (r *stubDocumentRepo) LinkProposal(proposalID, documentID, extractedID string) (bool, error) {
	key := proposalID + "/" + documentID
	if _, ok := r.links[key]; ok {
		return false, nil
	}
	r.links[key] = extractedID
	return true, nil
}

func (r *stubDocumentRepo) GetLinkedDocuments(proposalID string) ([]database.LinkedDocument, error) {
	return nil, nil
}

func (r *stubDocumentRepo) GetDocumentCount() (int, error) { return len(r.byExtractedID), nil }
func (r *stubDocumentRepo) GetLinkCount() (int, error)     { return len(r.links), nil }

type stubScheduler struct {
	enqueued []tasks.TaskInterface
}

func (s *stubScheduler) Start() {}
func (s *stubScheduler) Stop()  {}
func (s *stubScheduler) EnqueueTask(task tasks.TaskInterface) error {
	s.enqueued = append(s.enqueued, task)
	return nil
}

func handlerFixture() (*Handler, *stubProposalRepo, *stubDocumentRepo, *stubScheduler) {
	proposalRepo := newStubProposalRepo()
	documentRepo := newStubDocumentRepo()
	scheduler := &stubScheduler{}
	handler := NewHandler(proposalRepo, documentRepo, sources.NewCache(nil), scheduler, nil, nil)
	return handler, proposalRepo, documentRepo, scheduler
}

func postJSON(t *testing.T, handlerFunc gin.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}

	r := gin.New()
	r.POST(path, handlerFunc)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIngest_InsertsAndEnqueuesLinkTask(t *testing.T) {
	handler, _, _, scheduler := handlerFixture()

	w := postJSON(t, handler.Ingest, "/api/ingest", map[string]interface{}{
		"items": []map[string]string{
			{
				"stortinget_id":   "vedtak-12",
				"title":           "Lovvedtak 12",
				"stortinget_link": "https://www.stortinget.no/vedtak/12",
				"decision_date":   "2026-02-09",
			},
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Results  []ingestItemResult `json:"results"`
		Inserted int                `json:"inserted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Inserted != 1 {
		t.Errorf("Expected 1 inserted, got %d", resp.Inserted)
	}
	if resp.Results[0].Status != "inserted" {
		t.Errorf("Expected status 'inserted', got: %s", resp.Results[0].Status)
	}

	if len(scheduler.enqueued) != 1 {
		t.Fatalf("Expected 1 enqueued analysis task, got %d", len(scheduler.enqueued))
	}
	if scheduler.enqueued[0].GetType() != tasks.TaskTypeLinkProposal {
		t.Errorf("Expected a link task, got: %s", scheduler.enqueued[0].GetType())
	}
}

func TestIngest_DuplicateReportedWithoutTask(t *testing.T) {
	handler, proposalRepo, _, scheduler := handlerFixture()
	proposalRepo.existing["vedtak-12"] = "id-vedtak-12"
	proposalRepo.proposals["id-vedtak-12"] = &database.Proposal{ID: "id-vedtak-12", StortingetID: "vedtak-12"}

	w := postJSON(t, handler.Ingest, "/api/ingest", map[string]interface{}{
		"items": []map[string]string{
			{"stortinget_id": "vedtak-12", "title": "Lovvedtak 12", "stortinget_link": "https://www.stortinget.no/vedtak/12"},
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Results []ingestItemResult `json:"results"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Results[0].Status != "duplicate" {
		t.Errorf("Expected status 'duplicate', got: %s", resp.Results[0].Status)
	}
	if len(scheduler.enqueued) != 0 {
		t.Errorf("Expected no task for a duplicate, got %d", len(scheduler.enqueued))
	}
}

func TestIngest_ItemMissingFieldsDoesNotFailBatch(t *testing.T) {
	handler, _, _, _ := handlerFixture()

	w := postJSON(t, handler.Ingest, "/api/ingest", map[string]interface{}{
		"items": []map[string]string{
			{"stortinget_id": "", "title": "Uten id"},
			{"stortinget_id": "vedtak-13", "title": "Lovvedtak 13"},
		},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Results []ingestItemResult `json:"results"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Results[0].Status != "error" {
		t.Errorf("Expected first item status 'error', got: %s", resp.Results[0].Status)
	}
	if resp.Results[1].Status != "inserted" {
		t.Errorf("Expected second item status 'inserted', got: %s", resp.Results[1].Status)
	}
}

func TestIngest_EmptyBatchRejected(t *testing.T) {
	handler, _, _, _ := handlerFixture()

	w := postJSON(t, handler.Ingest, "/api/ingest", map[string]interface{}{"items": []map[string]string{}})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestLink_ResolvesAndReportsUnmatched(t *testing.T) {
	handler, proposalRepo, documentRepo, _ := handlerFixture()
	proposalRepo.proposals["p1"] = &database.Proposal{ID: "p1", StortingetID: "vedtak-12"}
	documentRepo.byExtractedID["LOV-2017-06-16-60"] = &database.LegalDocument{ID: "d1", Dokid: "NL/lov/2017-06-16-60"}

	w := postJSON(t, handler.Link, "/api/link", linkRequest{
		ProposalID:      "p1",
		ExtractedIDs:    []string{"LOV-2017-06-16-60", "LOV-1999-01-01-99"},
		EnforcementDate: "STRAKS",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Linked     []string `json:"linked"`
		Duplicates []string `json:"duplicates"`
		Unmatched  []string `json:"unmatched"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	if len(resp.Linked) != 1 || resp.Linked[0] != "LOV-2017-06-16-60" {
		t.Errorf("Unexpected linked set: %v", resp.Linked)
	}
	if len(resp.Unmatched) != 1 || resp.Unmatched[0] != "LOV-1999-01-01-99" {
		t.Errorf("Unexpected unmatched set: %v", resp.Unmatched)
	}
	if proposalRepo.enforced["p1"] != "STRAKS" {
		t.Errorf("Expected enforcement stored, got: %s", proposalRepo.enforced["p1"])
	}
}

func TestLink_RepeatSubmissionReportsDuplicates(t *testing.T) {
	handler, proposalRepo, documentRepo, _ := handlerFixture()
	proposalRepo.proposals["p1"] = &database.Proposal{ID: "p1"}
	documentRepo.byExtractedID["LOV-2017-06-16-60"] = &database.LegalDocument{ID: "d1"}

	payload := linkRequest{ProposalID: "p1", ExtractedIDs: []string{"LOV-2017-06-16-60"}, EnforcementDate: "2027-01-01"}

	postJSON(t, handler.Link, "/api/link", payload)
	w := postJSON(t, handler.Link, "/api/link", payload)

	var resp struct {
		Linked     []string `json:"linked"`
		Duplicates []string `json:"duplicates"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	if len(resp.Linked) != 0 {
		t.Errorf("Expected no new links on resubmission, got: %v", resp.Linked)
	}
	if len(resp.Duplicates) != 1 {
		t.Errorf("Expected 1 duplicate, got: %v", resp.Duplicates)
	}
}

func TestLink_InvalidClassificationRejected(t *testing.T) {
	handler, proposalRepo, _, _ := handlerFixture()
	proposalRepo.proposals["p1"] = &database.Proposal{ID: "p1"}

	w := postJSON(t, handler.Link, "/api/link", linkRequest{
		ProposalID:      "p1",
		EnforcementDate: "snart",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an invalid classification, got %d", w.Code)
	}
}

func TestLink_UnknownProposal(t *testing.T) {
	handler, _, _, _ := handlerFixture()

	w := postJSON(t, handler.Link, "/api/link", linkRequest{
		ProposalID:      "missing",
		EnforcementDate: "STRAKS",
	})

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestUpsertDocument_InvalidTypeRejected(t *testing.T) {
	handler, _, _, _ := handlerFixture()

	w := postJSON(t, handler.UpsertDocument, "/api/documents", documentPayload{
		Dokid:        "NL/lov/2017-06-16-60",
		Title:        "Sikkerhetsloven",
		DocumentType: "rundskriv",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown document type, got %d", w.Code)
	}
}
