package store

import (
	"context"
	"time"

	"github.com/tkarpov/claimscope/internal/errors"
	"github.com/tkarpov/claimscope/internal/model"
)

// DeleteRelationsForClaims removes every relation touching any of the given
// claim ids. Called before a relation recompute so each pass rebuilds the
// cluster's pairwise edges from scratch.
func DeleteRelationsForClaims(ctx context.Context, q Querier, claimIDs []string) error {
	if len(claimIDs) == 0 {
		return nil
	}
	ph := placeholders(len(claimIDs))
	args := append(toAnySlice(claimIDs), toAnySlice(claimIDs)...)
	_, err := q.ExecContext(ctx,
		`DELETE FROM claim_relations WHERE left_claim_id IN (`+ph+`) OR right_claim_id IN (`+ph+`)`, args...)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// InsertRelation records one pairwise relation with its similarity score.
func InsertRelation(ctx context.Context, q Querier, leftClaimID, rightClaimID string, relationType model.RelationType, score float64) error {
	id, err := NewID()
	if err != nil {
		return errors.NewInternal(err)
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO claim_relations (id, left_claim_id, right_claim_id, relation_type, score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, leftClaimID, rightClaimID, string(relationType), score, time.Now().Unix(),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// RelationsAmong returns relations whose both endpoints are in the given claim
// id set.
func RelationsAmong(ctx context.Context, q Querier, claimIDs []string) ([]model.ClaimRelation, error) {
	if len(claimIDs) == 0 {
		return nil, nil
	}
	ph := placeholders(len(claimIDs))
	args := append(toAnySlice(claimIDs), toAnySlice(claimIDs)...)
	rows, err := q.QueryContext(ctx,
		`SELECT id, left_claim_id, right_claim_id, relation_type, score, created_at
		 FROM claim_relations
		 WHERE left_claim_id IN (`+ph+`) AND right_claim_id IN (`+ph+`)
		 ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var relations []model.ClaimRelation
	for rows.Next() {
		var r model.ClaimRelation
		var relType string
		if err := rows.Scan(&r.ID, &r.LeftClaimID, &r.RightClaimID, &relType, &r.Score, &r.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		r.RelationType = model.RelationType(relType)
		relations = append(relations, r)
	}
	return relations, rows.Err()
}

// CountRelationsForClaim returns the number of relations touching one claim.
// Used by tests to verify re-extraction cleanup.
func CountRelationsForClaim(ctx context.Context, q Querier, claimID string) (int, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM claim_relations WHERE left_claim_id = ? OR right_claim_id = ?`,
		claimID, claimID).Scan(&count)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return count, nil
}
