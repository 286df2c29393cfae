package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lovlytt/lovlytt/app/database"
	"github.com/lovlytt/lovlytt/app/extract"
	"github.com/lovlytt/lovlytt/app/sources"
	"github.com/lovlytt/lovlytt/app/tasks"
)

func NewHandler(proposalRepo database.ProposalRepository, documentRepo database.DocumentRepository,
	configCache *sources.Cache, scheduler tasks.TaskSchedulerInterface,
	fetcher tasks.DetailFetcher, linker tasks.LinkSubmitter) *Handler {
	return &Handler{
		proposalRepo: proposalRepo,
		documentRepo: documentRepo,
		configCache:  configCache,
		scheduler:    scheduler,
		fetcher:      fetcher,
		linker:       linker,
	}
}

// Ingest stores a batch of feed decisions. Each item is handled independently:
// duplicates are reported rather than failing the batch, and every newly
// inserted proposal with a detail link gets an analysis task enqueued.
func (h *Handler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body", "details": err.Error()})
		return
	}

	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No items in request"})
		return
	}

	requestID := requestIDFrom(c)

	results := make([]ingestItemResult, 0, len(req.Items))
	inserted := 0

	for _, item := range req.Items {
		result := ingestItemResult{StortingetID: item.StortingetID}

		if item.StortingetID == "" || item.Title == "" {
			result.Status = "error"
			result.Error = "stortinget_id and title are required"
			results = append(results, result)
			continue
		}

		proposalID, isNew, err := h.proposalRepo.UpsertProposal(database.NewProposal{
			StortingetID:    item.StortingetID,
			Title:           item.Title,
			StortingetLink:  item.StortingetLink,
			FeedDescription: item.FeedDescription,
			DecisionDate:    item.DecisionDate,
		})
		if err != nil {
			slog.Error("Database error", "operation", "upsert_proposal", "stortinget_id", item.StortingetID, "request_id", requestID, "error", err)
			result.Status = "error"
			result.Error = "database error"
			results = append(results, result)
			continue
		}

		result.ProposalID = proposalID

		if !isNew {
			result.Status = "duplicate"
			results = append(results, result)
			continue
		}

		result.Status = "inserted"
		inserted++

		if item.StortingetLink != "" {
			h.enqueueLinkTask(proposalID, item.StortingetLink, requestID)
		}

		results = append(results, result)
	}

	c.JSON(http.StatusOK, gin.H{
		"results":    results,
		"total":      len(req.Items),
		"inserted":   inserted,
		"request_id": requestID,
	})
}

// MatchWebhook accepts a database-webhook notification for a proposal row and
// enqueues its analysis. The webhook path exists so an external insert (for
// example a manual backfill) also gets analyzed.
func (h *Handler) MatchWebhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body", "details": err.Error()})
		return
	}

	if payload.Record.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "record.id is required"})
		return
	}

	requestID := requestIDFrom(c)
	h.enqueueLinkTask(payload.Record.ID, payload.Record.StortingetLink, requestID)

	c.JSON(http.StatusOK, gin.H{
		"enqueued":    true,
		"proposal_id": payload.Record.ID,
		"request_id":  requestID,
	})
}

func (h *Handler) enqueueLinkTask(proposalID, stortingetLink, requestID string) {
	task := tasks.NewLinkProposalTask(proposalID, proposalID, stortingetLink, h.fetcher, h.linker, requestID)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue LinkProposalTask", "proposal_id", proposalID, "request_id", requestID, "error", err)
	}
}

// Link records the analysis result for a proposal: resolve every extracted
// identifier against the catalogue, upsert the resulting links and store the
// enforcement classification. Identifiers without a catalogue match are
// reported back, not stored.
func (h *Handler) Link(c *gin.Context) {
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body", "details": err.Error()})
		return
	}

	if req.ProposalID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposal_id is required"})
		return
	}
	if !extract.IsClassification(req.EnforcementDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enforcement_date must be a valid date or classification token"})
		return
	}

	requestID := requestIDFrom(c)

	proposal, err := h.proposalRepo.GetProposal(req.ProposalID)
	if err != nil {
		slog.Error("Database error", "operation", "get_proposal", "proposal_id", req.ProposalID, "request_id", requestID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if proposal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
		return
	}

	linked := make([]string, 0, len(req.ExtractedIDs))
	duplicates := make([]string, 0)
	unmatched := make([]string, 0)

	for _, extractedID := range req.ExtractedIDs {
		doc, err := h.documentRepo.FindByExtractedID(extractedID)
		if err != nil {
			slog.Error("Database error", "operation", "find_document", "extracted_id", extractedID, "request_id", requestID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if doc == nil {
			unmatched = append(unmatched, extractedID)
			continue
		}

		isNew, err := h.documentRepo.LinkProposal(req.ProposalID, doc.ID, extractedID)
		if err != nil {
			slog.Error("Database error", "operation", "link_proposal", "proposal_id", req.ProposalID, "document_id", doc.ID, "request_id", requestID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		if isNew {
			linked = append(linked, extractedID)
		} else {
			duplicates = append(duplicates, extractedID)
		}
	}

	if err := h.proposalRepo.UpdateEnforcement(req.ProposalID, req.EnforcementDate); err != nil {
		slog.Error("Database error", "operation", "update_enforcement", "proposal_id", req.ProposalID, "request_id", requestID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	slog.Info("Proposal linked",
		"proposal_id", req.ProposalID,
		"linked", len(linked),
		"duplicates", len(duplicates),
		"unmatched", len(unmatched),
		"enforcement", req.EnforcementDate,
		"request_id", requestID)

	c.JSON(http.StatusOK, gin.H{
		"proposal_id":      req.ProposalID,
		"linked":           linked,
		"duplicates":       duplicates,
		"unmatched":        unmatched,
		"enforcement_date": req.EnforcementDate,
		"request_id":       requestID,
	})
}

// UpsertDocument maintains the base-law catalogue the linker resolves against.
func (h *Handler) UpsertDocument(c *gin.Context) {
	var payload documentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body", "details": err.Error()})
		return
	}

	if payload.Dokid == "" || payload.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dokid and title are required"})
		return
	}

	switch payload.DocumentType {
	case "lov", "forskrift_sentral", "forskrift_lokal":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "document_type must be lov, forskrift_sentral or forskrift_lokal"})
		return
	}

	id, isNew, err := h.documentRepo.UpsertDocument(database.NewDocument{
		Dokid:        payload.Dokid,
		LegacyID:     payload.LegacyID,
		Title:        payload.Title,
		ShortTitle:   payload.ShortTitle,
		DocumentType: payload.DocumentType,
	})
	if err != nil {
		slog.Error("Database error", "operation", "upsert_document", "dokid", payload.Dokid, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}

	c.JSON(status, gin.H{
		"id":       id,
		"dokid":    payload.Dokid,
		"inserted": isNew,
	})
}

func (h *Handler) ListProposals(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = parsed
	}

	proposals, err := h.proposalRepo.ListProposals(limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_proposals", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	list := make([]gin.H, 0, len(proposals))
	for _, proposal := range proposals {
		list = append(list, proposalJSON(proposal))
	}

	c.JSON(http.StatusOK, gin.H{
		"proposals": list,
		"total":     len(list),
	})
}

func (h *Handler) GetProposal(c *gin.Context) {
	id := c.Param("id")

	proposal, err := h.proposalRepo.GetProposal(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_proposal", "proposal_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if proposal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
		return
	}

	docs, err := h.documentRepo.GetLinkedDocuments(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_linked_documents", "proposal_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	linkedDocs := make([]gin.H, 0, len(docs))
	for _, doc := range docs {
		linkedDocs = append(linkedDocs, gin.H{
			"document_id":   doc.DocumentID,
			"dokid":         doc.Dokid,
			"legacy_id":     doc.LegacyID,
			"title":         doc.Title,
			"short_title":   doc.ShortTitle,
			"document_type": doc.DocumentType,
			"extracted_id":  doc.ExtractedID,
		})
	}

	body := proposalJSON(*proposal)
	body["linked_documents"] = linkedDocs

	c.JSON(http.StatusOK, body)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if proposalCount, err := h.proposalRepo.GetProposalCount(); err == nil {
		health["proposals"] = proposalCount
	}

	health["loaded_sources"] = len(h.configCache.GetConfigs())

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if count, err := h.proposalRepo.GetProposalCount(); err == nil {
		stats["proposals"] = count
	}
	if count, err := h.documentRepo.GetDocumentCount(); err == nil {
		stats["documents"] = count
	}
	if count, err := h.documentRepo.GetLinkCount(); err == nil {
		stats["links"] = count
	}

	sourceStats := make([]gin.H, 0)
	for _, sourceConfig := range h.configCache.GetConfigs() {
		sourceStats = append(sourceStats, gin.H{
			"name":             sourceConfig.Name,
			"url":              sourceConfig.URL,
			"enabled":          sourceConfig.Settings.Enabled,
			"refresh_interval": (time.Duration(sourceConfig.Settings.RefreshInterval) * time.Second).String(),
		})
	}
	stats["sources"] = sourceStats

	c.JSON(http.StatusOK, stats)
}

func proposalJSON(proposal database.Proposal) gin.H {
	body := gin.H{
		"id":               proposal.ID,
		"stortinget_id":    proposal.StortingetID,
		"title":            proposal.Title,
		"stortinget_link":  proposal.StortingetLink,
		"feed_description": proposal.FeedDescription,
		"enforcement_date": proposal.EnforcementDate,
		"created_at":       proposal.CreatedAt,
		"updated_at":       proposal.UpdatedAt,
	}
	if proposal.DecisionDate != nil {
		body["decision_date"] = proposal.DecisionDate.Format("2006-01-02")
	}
	return body
}
