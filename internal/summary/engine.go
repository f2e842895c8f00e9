// Package summary builds citation-enforced, confidence-scored summary cards
// for event clusters.
package summary

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/tkarpov/claimscope/internal/errors"
	"github.com/tkarpov/claimscope/internal/model"
	"github.com/tkarpov/claimscope/internal/relation"
	"github.com/tkarpov/claimscope/internal/store"
)

// maxBullets caps the agreed-facts and disputed-claims sections.
const maxBullets = 5

// disputedSeparator joins the two sides of a contradiction bullet. The pairing
// must survive a round trip through storage so citation lookup can recover
// either side by splitting on it.
const disputedSeparator = " <> "

// confidence blend weights when model-supplied per-claim confidences exist.
const (
	baseWeight  = 0.75
	claimWeight = 0.25
)

var alnumPattern = regexp.MustCompile(`[a-z0-9]+`)

// Engine builds summaries with enforced provenance.
type Engine struct {
	store  *store.Store
	logger *zap.Logger
}

// NewEngine creates a summary engine.
func NewEngine(st *store.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: st, logger: logger}
}

// BuildSummaries recomputes relations and builds one summary per active
// cluster that has claims, optionally filtered to clusterIDs. Each cluster is
// one transaction: an invariant violation (a cluster whose claims include no
// factual claim, or a bullet that cannot be cited) rolls that cluster back and
// fails the run loudly; clusters already committed keep their summaries.
func (e *Engine) BuildSummaries(ctx context.Context, clusterIDs []string) (model.SummaryBuildResult, error) {
	var result model.SummaryBuildResult

	var clusters []model.EventCluster
	var err error
	if len(clusterIDs) > 0 {
		clusters, err = store.ActiveClustersByID(ctx, e.store.DB(), clusterIDs)
	} else {
		clusters, err = store.ActiveClusters(ctx, e.store.DB())
	}
	if err != nil {
		return result, err
	}

	for _, cl := range clusters {
		err := e.store.InTx(ctx, func(q store.Querier) error {
			claims, err := store.ClaimsByCluster(ctx, q, cl.ID)
			if err != nil {
				return err
			}
			if len(claims) == 0 {
				return nil
			}

			relationsCreated, err := relation.Recompute(ctx, q, claims)
			if err != nil {
				return err
			}
			result.RelationsCreated += relationsCreated

			summaryRow, err := e.buildClusterSummary(ctx, q, cl.ID, claims)
			if err != nil {
				return err
			}
			citations, err := e.persistCitations(ctx, q, summaryRow, claims)
			if err != nil {
				return err
			}
			result.CitationsCreated += citations
			result.SummariesCreated++
			return nil
		})
		if err != nil {
			e.logger.Error("summary build aborted", zap.String("cluster_id", cl.ID), zap.Error(err))
			return result, err
		}
	}
	return result, nil
}

// buildClusterSummary assembles the three sections and the confidence score
// for one cluster and inserts the summary row.
func (e *Engine) buildClusterSummary(ctx context.Context, q store.Querier, clusterID string, claims []model.Claim) (*model.Summary, error) {
	factual := make([]model.Claim, 0, len(claims))
	for _, c := range claims {
		if c.ClaimType.IsFactual() {
			factual = append(factual, c)
		}
	}
	if len(factual) == 0 {
		return nil, errors.NewNoFactualClaims(clusterID)
	}

	factualIDs := make([]string, len(factual))
	claimsByID := make(map[string]model.Claim, len(factual))
	for i, c := range factual {
		factualIDs[i] = c.ID
		claimsByID[c.ID] = c
	}

	relations, err := store.RelationsAmong(ctx, q, factualIDs)
	if err != nil {
		return nil, err
	}
	var supports, contradicts []model.ClaimRelation
	for _, r := range relations {
		switch r.RelationType {
		case model.RelationSupports:
			supports = append(supports, r)
		case model.RelationContradicts:
			contradicts = append(contradicts, r)
		}
	}

	// Agreed facts: claims participating in at least one supports relation,
	// deduplicated by normalized text, capped. Falls back to the first factual
	// claim so a summary is never empty when factual claims exist.
	supportIDs := make(map[string]struct{})
	for _, r := range supports {
		supportIDs[r.LeftClaimID] = struct{}{}
		supportIDs[r.RightClaimID] = struct{}{}
	}
	var agreed []string
	seenNorm := make(map[string]struct{})
	for _, c := range factual {
		if _, ok := supportIDs[c.ID]; !ok {
			continue
		}
		norm := normalizeClaimText(c.ClaimText)
		if _, dup := seenNorm[norm]; dup {
			continue
		}
		seenNorm[norm] = struct{}{}
		agreed = append(agreed, c.ClaimText)
		if len(agreed) == maxBullets {
			break
		}
	}
	if len(agreed) == 0 {
		agreed = []string{factual[0].ClaimText}
	}

	// Disputed claims: both sides of each contradiction as one bullet.
	var disputed []string
	for i, r := range contradicts {
		if i == maxBullets {
			break
		}
		left, lok := claimsByID[r.LeftClaimID]
		right, rok := claimsByID[r.RightClaimID]
		if !lok || !rok {
			continue
		}
		disputed = append(disputed, left.ClaimText+disputedSeparator+right.ClaimText)
	}

	// Unknowns: reserved for insufficient-evidence detection; always empty.
	unknowns := []string{}

	sourceCount, err := store.DistinctSourceCountForClaims(ctx, q, factualIDs)
	if err != nil {
		return nil, err
	}

	uniqueNorm := make(map[string]struct{}, len(factual))
	for _, c := range factual {
		uniqueNorm[normalizeClaimText(c.ClaimText)] = struct{}{}
	}

	totalFactual := len(factual)
	sourceRatio := math.Min(1, float64(sourceCount)/float64(max(totalFactual, 1)))
	uniqueClaimRatio := math.Min(1, float64(len(uniqueNorm))/float64(max(totalFactual, 1)))
	// Laplace-smoothed so a cluster with no relations of either kind sits at 0.5.
	supportContradictionRatio := float64(len(supports)+1) / float64(len(supports)+len(contradicts)+2)

	base := (sourceRatio + uniqueClaimRatio + supportContradictionRatio) / 3

	var claimConfidences []float64
	for _, c := range factual {
		if c.Confidence != nil {
			claimConfidences = append(claimConfidences, *c.Confidence)
		}
	}
	confidence := base
	var meanClaimConfidence float64
	hasClaimConfidence := len(claimConfidences) > 0
	if hasClaimConfidence {
		for _, v := range claimConfidences {
			meanClaimConfidence += v
		}
		meanClaimConfidence /= float64(len(claimConfidences))
		confidence = baseWeight*base + claimWeight*meanClaimConfidence
	}
	confidence = math.Min(1, math.Max(0, confidence))

	// The rationale string is a contract, not a log line: downstream consumers
	// parse and display it verbatim.
	rationale := fmt.Sprintf(
		"Derived from %d factual claims across %d sources; source_ratio=%.2f, unique_claim_ratio=%.2f, support_contradiction_ratio=%.2f, supports=%d, contradicts=%d",
		totalFactual, sourceCount, sourceRatio, uniqueClaimRatio, supportContradictionRatio, len(supports), len(contradicts),
	)
	if hasClaimConfidence {
		rationale += fmt.Sprintf(", mean_claim_confidence=%.2f.", meanClaimConfidence)
	} else {
		rationale += "."
	}

	summaryRow := &model.Summary{
		EventClusterID:      clusterID,
		AgreedFacts:         agreed,
		DisputedClaims:      disputed,
		Unknowns:            unknowns,
		ConfidenceRationale: rationale,
		ConfidenceScore:     math.Round(confidence*1000) / 1000,
	}
	if err := store.InsertSummary(ctx, q, summaryRow); err != nil {
		return nil, err
	}
	return summaryRow, nil
}

// persistCitations resolves every bullet of every section to an originating
// claim with at least one evidence span and writes one citation row per
// bullet. An unresolvable bullet is a hard failure: the cluster's summary
// build aborts rather than committing uncited output.
func (e *Engine) persistCitations(ctx context.Context, q store.Querier, s *model.Summary, claims []model.Claim) (int, error) {
	claimByText := make(map[string]model.Claim, len(claims))
	for _, c := range claims {
		claimByText[c.ClaimText] = c
	}

	sections := []struct {
		name    model.SummarySection
		bullets []string
	}{
		{model.SectionAgreedFacts, s.AgreedFacts},
		{model.SectionDisputedClaims, s.DisputedClaims},
		{model.SectionUnknowns, s.Unknowns},
	}

	created := 0
	for _, section := range sections {
		for idx, bullet := range section.bullets {
			claim, ok := resolveBullet(bullet, claimByText)
			if !ok {
				return created, errors.NewCitationEnforcement(string(section.name), idx)
			}
			evidence, err := store.FirstEvidenceForClaim(ctx, q, claim.ID)
			if err != nil {
				return created, err
			}
			if evidence == nil {
				return created, errors.NewCitationEnforcement(string(section.name), idx)
			}
			citation := &model.SummaryCitation{
				SummaryID:   s.ID,
				Section:     section.name,
				BulletIndex: idx,
				ClaimID:     claim.ID,
				EvidenceID:  evidence.ID,
			}
			if err := store.InsertCitation(ctx, q, citation); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// resolveBullet finds the claim behind a bullet: exact text match first, then
// either side of a disputed pairing.
func resolveBullet(bullet string, claimByText map[string]model.Claim) (model.Claim, bool) {
	if claim, ok := claimByText[bullet]; ok {
		return claim, true
	}
	if strings.Contains(bullet, disputedSeparator) {
		for _, side := range strings.SplitN(bullet, disputedSeparator, 2) {
			if claim, ok := claimByText[side]; ok {
				return claim, true
			}
		}
	}
	return model.Claim{}, false
}

// normalizeClaimText collapses a claim to its lowercase alphanumeric tokens
// joined by single spaces, for dedupe and uniqueness counting.
func normalizeClaimText(text string) string {
	return strings.Join(alnumPattern.FindAllString(strings.ToLower(text), -1), " ")
}
