package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tkarpov/claimscope/internal/errors"
	"github.com/tkarpov/claimscope/internal/extract"
	"github.com/tkarpov/claimscope/internal/model"
)

// PersistExtraction replaces an article's entire claim set with a validated
// extraction result. This is a full replace, not an append: stale summary
// citations and relations referencing the old claim ids are deleted first,
// then the old claims and their evidence, then the new set is inserted with
// fresh ids. The whole operation commits or rolls back as one transaction.
func (s *Store) PersistExtraction(ctx context.Context, articleID string, res *extract.ExtractionResult, extractionModel, extractionVersion string) (model.ClaimPersistResult, error) {
	var result model.ClaimPersistResult

	err := s.InTx(ctx, func(q Querier) error {
		article, err := GetArticleByID(ctx, q, articleID)
		if err != nil {
			return err
		}

		oldIDs, err := claimIDsForArticle(ctx, q, article.ID)
		if err != nil {
			return err
		}
		if len(oldIDs) > 0 {
			// Two-phase cleanup: dependents first, then owners.
			ph := placeholders(len(oldIDs))
			args := toAnySlice(oldIDs)
			if _, err := q.ExecContext(ctx, `DELETE FROM summary_citations WHERE claim_id IN (`+ph+`)`, args...); err != nil {
				return errors.NewInternal(err)
			}
			relArgs := append(toAnySlice(oldIDs), toAnySlice(oldIDs)...)
			if _, err := q.ExecContext(ctx, `DELETE FROM claim_relations WHERE left_claim_id IN (`+ph+`) OR right_claim_id IN (`+ph+`)`, relArgs...); err != nil {
				return errors.NewInternal(err)
			}
			if _, err := q.ExecContext(ctx, `DELETE FROM claim_evidence WHERE claim_id IN (`+ph+`)`, args...); err != nil {
				return errors.NewInternal(err)
			}
			if _, err := q.ExecContext(ctx, `DELETE FROM claims WHERE article_id = ?`, article.ID); err != nil {
				return errors.NewInternal(err)
			}
		}

		now := time.Now().Unix()
		for _, extracted := range res.Claims {
			claimID, err := NewID()
			if err != nil {
				return errors.NewInternal(err)
			}
			_, err = q.ExecContext(ctx,
				`INSERT INTO claims (id, article_id, event_cluster_id, claim_text, claim_type, confidence, extraction_model, extraction_version, created_at)
				 VALUES (?, ?, NULL, ?, ?, ?, ?, ?, ?)`,
				claimID, article.ID, extracted.ClaimText, string(extracted.ClaimType),
				toNullFloat(extracted.Confidence), toNullString(extractionModel), toNullString(extractionVersion), now,
			)
			if err != nil {
				return errors.NewInternal(err)
			}
			result.ClaimsCreated++

			for _, ev := range extracted.Evidence {
				evidenceID, err := NewID()
				if err != nil {
					return errors.NewInternal(err)
				}
				_, err = q.ExecContext(ctx,
					`INSERT INTO claim_evidence (id, claim_id, article_id, evidence_text, start_char, end_char, evidence_type, created_at)
					 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
					evidenceID, claimID, article.ID, ev.EvidenceText,
					toNullInt(ev.StartChar), toNullInt(ev.EndChar), string(ev.EvidenceType), now,
				)
				if err != nil {
					return errors.NewInternal(err)
				}
				result.EvidenceCreated++
			}
		}
		return nil
	})
	if err != nil {
		return model.ClaimPersistResult{}, err
	}
	return result, nil
}

func claimIDsForArticle(ctx context.Context, q Querier, articleID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT id FROM claims WHERE article_id = ?`, articleID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewInternal(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const claimSelect = `SELECT id, article_id, event_cluster_id, claim_text, claim_type, confidence, extraction_model, extraction_version, created_at FROM claims`

// ClaimsInWindow returns claims whose articles were created at or after since,
// in ascending (created_at, id) order so every clustering pass scans claims in
// the same deterministic order.
func ClaimsInWindow(ctx context.Context, q Querier, since int64) ([]model.Claim, error) {
	rows, err := q.QueryContext(ctx,
		claimSelect+` WHERE article_id IN (SELECT id FROM articles WHERE created_at >= ?) ORDER BY created_at, id`, since)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()
	return scanClaims(rows)
}

// ClaimsByCluster returns all claims linked to one cluster in stable order.
func ClaimsByCluster(ctx context.Context, q Querier, clusterID string) ([]model.Claim, error) {
	rows, err := q.QueryContext(ctx, claimSelect+` WHERE event_cluster_id = ? ORDER BY created_at, id`, clusterID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()
	return scanClaims(rows)
}

func scanClaims(rows *sql.Rows) ([]model.Claim, error) {
	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		var clusterID, extractionModel, extractionVersion sql.NullString
		var confidence sql.NullFloat64
		var claimType string
		if err := rows.Scan(&c.ID, &c.ArticleID, &clusterID, &c.ClaimText, &claimType, &confidence, &extractionModel, &extractionVersion, &c.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		c.EventClusterID = clusterID.String
		c.ClaimType = model.ClaimType(claimType)
		c.ExtractionModel = extractionModel.String
		c.ExtractionVersion = extractionVersion.String
		if confidence.Valid {
			v := confidence.Float64
			c.Confidence = &v
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

// AssignClaimToCluster links a claim to an event cluster.
func AssignClaimToCluster(ctx context.Context, q Querier, claimID, clusterID string) error {
	_, err := q.ExecContext(ctx, `UPDATE claims SET event_cluster_id = ? WHERE id = ?`, clusterID, claimID)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// FirstEvidenceForClaim returns the claim's earliest evidence span, or nil if
// the claim has none on file.
func FirstEvidenceForClaim(ctx context.Context, q Querier, claimID string) (*model.ClaimEvidence, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, claim_id, article_id, evidence_text, start_char, end_char, evidence_type, created_at
		 FROM claim_evidence WHERE claim_id = ? ORDER BY created_at, id LIMIT 1`, claimID)

	var ev model.ClaimEvidence
	var start, end sql.NullInt64
	var evType string
	err := row.Scan(&ev.ID, &ev.ClaimID, &ev.ArticleID, &ev.EvidenceText, &start, &end, &evType, &ev.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if start.Valid {
		v := int(start.Int64)
		ev.StartChar = &v
	}
	if end.Valid {
		v := int(end.Int64)
		ev.EndChar = &v
	}
	ev.EvidenceType = model.EvidenceType(evType)
	return &ev, nil
}

// DistinctSourceCountForClaims returns the number of distinct sources behind
// the given claims' articles.
func DistinctSourceCountForClaims(ctx context.Context, q Querier, claimIDs []string) (int, error) {
	if len(claimIDs) == 0 {
		return 0, nil
	}
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT a.source_id) FROM claims c JOIN articles a ON a.id = c.article_id
		 WHERE c.id IN (`+placeholders(len(claimIDs))+`)`, toAnySlice(claimIDs)...).Scan(&count)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return count, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toAnySlice(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
