package database

import (
	"database/sql"
	"fmt"
)

var _ DocumentRepository = (*documentRepository)(nil)

type documentRepository struct {
	db *DB
}

func NewDocumentRepository(db *DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) UpsertDocument(doc NewDocument) (string, bool, error) {
	var id string
	err := r.db.QueryRow(`
		SELECT id FROM legal_documents WHERE dokid = $1
	`, doc.Dokid).Scan(&id)

	if err != nil && err != sql.ErrNoRows {
		return "", false, fmt.Errorf("failed to check existing document: %w", err)
	}

	if err == nil {
		_, err = r.db.Exec(`
			UPDATE legal_documents
			SET legacy_id = NULLIF($2, ''), title = $3, short_title = NULLIF($4, ''),
			    document_type = $5
			WHERE dokid = $1
		`, doc.Dokid, doc.LegacyID, doc.Title, doc.ShortTitle, doc.DocumentType)
		if err != nil {
			return "", false, fmt.Errorf("failed to update document: %w", err)
		}
		return id, false, nil
	}

	err = r.db.QueryRow(`
		INSERT INTO legal_documents (dokid, legacy_id, title, short_title, document_type)
		VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5)
		RETURNING id
	`, doc.Dokid, doc.LegacyID, doc.Title, doc.ShortTitle, doc.DocumentType).Scan(&id)
	if err != nil {
		return "", false, fmt.Errorf("failed to insert document: %w", err)
	}

	return id, true, nil
}

func (r *documentRepository) FindByExtractedID(extractedID string) (*LegalDocument, error) {
	var doc LegalDocument
	err := r.db.QueryRow(`
		SELECT id, dokid, COALESCE(legacy_id, ''), title, COALESCE(short_title, ''),
		       document_type, created_at
		FROM legal_documents
		WHERE legacy_id = $1 OR dokid = $1
		LIMIT 1
	`, extractedID).Scan(
		&doc.ID, &doc.Dokid, &doc.LegacyID, &doc.Title, &doc.ShortTitle,
		&doc.DocumentType, &doc.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up document: %w", err)
	}

	return &doc, nil
}

func (r *documentRepository) LinkProposal(proposalID, documentID, extractedID string) (bool, error) {
	result, err := r.db.Exec(`
		INSERT INTO proposal_targets (proposal_id, document_id, extracted_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (proposal_id, document_id) DO NOTHING
	`, proposalID, documentID, extractedID)
	if err != nil {
		return false, fmt.Errorf("failed to link proposal to document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check link insert: %w", err)
	}

	return affected > 0, nil
}

func (r *documentRepository) GetLinkedDocuments(proposalID string) ([]LinkedDocument, error) {
	rows, err := r.db.Query(`
		SELECT d.id, d.dokid, COALESCE(d.legacy_id, ''), d.title,
		       COALESCE(d.short_title, ''), d.document_type, t.extracted_id
		FROM proposal_targets t
		JOIN legal_documents d ON d.id = t.document_id
		WHERE t.proposal_id = $1
		ORDER BY d.dokid
	`, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get linked documents: %w", err)
	}
	defer rows.Close()

	var docs []LinkedDocument
	for rows.Next() {
		var doc LinkedDocument
		err := rows.Scan(
			&doc.DocumentID, &doc.Dokid, &doc.LegacyID, &doc.Title,
			&doc.ShortTitle, &doc.DocumentType, &doc.ExtractedID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan linked document row: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating linked document rows: %w", err)
	}

	return docs, nil
}

func (r *documentRepository) GetDocumentCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM legal_documents").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get document count: %w", err)
	}
	return count, nil
}

func (r *documentRepository) GetLinkCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM proposal_targets").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get link count: %w", err)
	}
	return count, nil
}
