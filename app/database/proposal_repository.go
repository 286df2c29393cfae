package database

import (
	"database/sql"
	"fmt"
)

var _ ProposalRepository = (*proposalRepository)(nil)

type proposalRepository struct {
	db *DB
}

func NewProposalRepository(db *DB) ProposalRepository {
	return &proposalRepository{db: db}
}

func (r *proposalRepository) UpsertProposal(proposal NewProposal) (string, bool, error) {
	var id string
	err := r.db.QueryRow(`
		INSERT INTO proposals (stortinget_id, title, stortinget_link, feed_description, decision_date)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, '')::date)
		ON CONFLICT (stortinget_id) DO NOTHING
		RETURNING id
	`, proposal.StortingetID, proposal.Title, proposal.StortingetLink,
		proposal.FeedDescription, proposal.DecisionDate).Scan(&id)

	if err == nil {
		return id, true, nil
	}
	if err != sql.ErrNoRows {
		return "", false, fmt.Errorf("failed to upsert proposal: %w", err)
	}

	// Conflict: the proposal already exists, report the existing row.
	err = r.db.QueryRow(`
		SELECT id FROM proposals WHERE stortinget_id = $1
	`, proposal.StortingetID).Scan(&id)
	if err != nil {
		return "", false, fmt.Errorf("failed to look up existing proposal: %w", err)
	}

	return id, false, nil
}

func (r *proposalRepository) GetProposal(id string) (*Proposal, error) {
	var proposal Proposal
	err := r.db.QueryRow(`
		SELECT id, stortinget_id, title, COALESCE(stortinget_link, ''),
		       COALESCE(feed_description, ''), decision_date,
		       COALESCE(enforcement_date, ''), created_at, updated_at
		FROM proposals
		WHERE id = $1
	`, id).Scan(
		&proposal.ID, &proposal.StortingetID, &proposal.Title, &proposal.StortingetLink,
		&proposal.FeedDescription, &proposal.DecisionDate,
		&proposal.EnforcementDate, &proposal.CreatedAt, &proposal.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	return &proposal, nil
}

func (r *proposalRepository) ListProposals(limit int) ([]Proposal, error) {
	rows, err := r.db.Query(`
		SELECT id, stortinget_id, title, COALESCE(stortinget_link, ''),
		       COALESCE(feed_description, ''), decision_date,
		       COALESCE(enforcement_date, ''), created_at, updated_at
		FROM proposals
		ORDER BY decision_date DESC NULLS LAST, created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []Proposal
	for rows.Next() {
		var proposal Proposal
		err := rows.Scan(
			&proposal.ID, &proposal.StortingetID, &proposal.Title, &proposal.StortingetLink,
			&proposal.FeedDescription, &proposal.DecisionDate,
			&proposal.EnforcementDate, &proposal.CreatedAt, &proposal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan proposal row: %w", err)
		}
		proposals = append(proposals, proposal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating proposal rows: %w", err)
	}

	return proposals, nil
}

func (r *proposalRepository) GetProposalCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM proposals").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get proposal count: %w", err)
	}
	return count, nil
}

func (r *proposalRepository) UpdateEnforcement(id string, enforcement string) error {
	result, err := r.db.Exec(`
		UPDATE proposals
		SET enforcement_date = $2, updated_at = NOW()
		WHERE id = $1
	`, id, enforcement)
	if err != nil {
		return fmt.Errorf("failed to update enforcement date: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check enforcement update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("proposal %s not found", id)
	}

	return nil
}
