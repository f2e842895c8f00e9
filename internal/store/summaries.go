package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/tkarpov/claimscope/internal/errors"
	"github.com/tkarpov/claimscope/internal/model"
)

// InsertSummary stores one summary row. The bullet lists are serialized as
// JSON arrays; summaries are append-only history, never updated in place.
func InsertSummary(ctx context.Context, q Querier, s *model.Summary) error {
	id, err := NewID()
	if err != nil {
		return errors.NewInternal(err)
	}
	s.ID = id
	s.CreatedAt = time.Now().Unix()

	agreed, err := json.Marshal(emptyIfNil(s.AgreedFacts))
	if err != nil {
		return errors.NewInternal(err)
	}
	disputed, err := json.Marshal(emptyIfNil(s.DisputedClaims))
	if err != nil {
		return errors.NewInternal(err)
	}
	unknowns, err := json.Marshal(emptyIfNil(s.Unknowns))
	if err != nil {
		return errors.NewInternal(err)
	}

	_, err = q.ExecContext(ctx,
		`INSERT INTO summaries (id, event_cluster_id, agreed_facts_json, disputed_claims_json, unknowns_json, confidence_rationale, confidence_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.EventClusterID, string(agreed), string(disputed), string(unknowns),
		s.ConfidenceRationale, s.ConfidenceScore, s.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// InsertCitation records one summary-bullet citation.
func InsertCitation(ctx context.Context, q Querier, c *model.SummaryCitation) error {
	id, err := NewID()
	if err != nil {
		return errors.NewInternal(err)
	}
	c.ID = id
	c.CreatedAt = time.Now().Unix()
	_, err = q.ExecContext(ctx,
		`INSERT INTO summary_citations (id, summary_id, section, bullet_index, claim_id, evidence_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.SummaryID, string(c.Section), c.BulletIndex, c.ClaimID, toNullString(c.EvidenceID), c.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// LatestSummaries returns the limit most recent summaries, newest first.
func LatestSummaries(ctx context.Context, q Querier, limit int) ([]model.Summary, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, event_cluster_id, agreed_facts_json, disputed_claims_json, unknowns_json, confidence_rationale, confidence_score, created_at
		 FROM summaries ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var summaries []model.Summary
	for rows.Next() {
		var s model.Summary
		var agreed, disputed, unknowns string
		if err := rows.Scan(&s.ID, &s.EventClusterID, &agreed, &disputed, &unknowns, &s.ConfidenceRationale, &s.ConfidenceScore, &s.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := json.Unmarshal([]byte(agreed), &s.AgreedFacts); err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := json.Unmarshal([]byte(disputed), &s.DisputedClaims); err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := json.Unmarshal([]byte(unknowns), &s.Unknowns); err != nil {
			return nil, errors.NewInternal(err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ClusterTitle returns the canonical title for a cluster id, or a fixed
// placeholder if the cluster is unknown.
func ClusterTitle(ctx context.Context, q Querier, clusterID string) (string, error) {
	var title string
	err := q.QueryRowContext(ctx,
		`SELECT canonical_title FROM event_clusters WHERE id = ?`, clusterID).Scan(&title)
	if err == sql.ErrNoRows {
		return "Untitled cluster", nil
	}
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return title, nil
}

// SourceLinksForCluster returns the de-duplicated article URLs for a cluster's
// claims, preserving first-seen order over the stable claim scan order.
func SourceLinksForCluster(ctx context.Context, q Querier, clusterID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT a.url FROM claims c JOIN articles a ON a.id = c.article_id
		 WHERE c.event_cluster_id = ? ORDER BY c.created_at, c.id`, clusterID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, errors.NewInternal(err)
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// CountCitationsForClaim returns citation rows referencing one claim.
// Used by tests to verify re-extraction cleanup.
func CountCitationsForClaim(ctx context.Context, q Querier, claimID string) (int, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM summary_citations WHERE claim_id = ?`, claimID).Scan(&count)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return count, nil
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
