package cluster

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tkarpov/claimscope/internal/model"
	"github.com/tkarpov/claimscope/internal/store"
)

// UntitledCluster is the canonical title used when the founding claim's text
// is empty.
const UntitledCluster = "Untitled cluster"

// canonicalTitleWords caps how many leading words of the founding claim become
// the cluster's canonical title.
const canonicalTitleWords = 12

// Engine runs incremental clustering passes over recent claims.
type Engine struct {
	store  *store.Store
	logger *zap.Logger
}

// NewEngine creates a cluster engine.
func NewEngine(st *store.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: st, logger: logger}
}

// BuildClusters assigns each factual claim from articles in the lookback
// window to the best-matching active cluster, founding new clusters where no
// match clears the threshold. The pass is idempotent: rerunning it over an
// unchanged claim set creates no clusters and reassigns nothing.
//
// Claims are scanned in ascending (created_at, id) order and clusters are
// considered in ascending (created_at, id) order, so a later claim can join a
// cluster founded earlier in the same pass and similarity ties always resolve
// to the earliest-founded cluster.
func (e *Engine) BuildClusters(ctx context.Context, lookbackHours int, similarityThreshold float64) (model.ClusterBuildResult, error) {
	var result model.ClusterBuildResult

	since := time.Now().Add(-time.Duration(lookbackHours) * time.Hour).Unix()

	err := e.store.InTx(ctx, func(q store.Querier) error {
		claims, err := store.ClaimsInWindow(ctx, q, since)
		if err != nil {
			return err
		}

		active, err := store.ActiveClusters(ctx, q)
		if err != nil {
			return err
		}
		tokenCache := make(map[string]map[string]struct{}, len(active))
		for _, c := range active {
			tokenCache[c.ID] = Tokens(c.CanonicalTitle)
		}

		for _, claim := range claims {
			// Every window claim counts as scanned; only factual claims
			// participate in clustering.
			result.ClaimsScanned++
			if !claim.ClaimType.IsFactual() {
				continue
			}

			tokens := Tokens(claim.ClaimText)
			if len(tokens) == 0 {
				continue
			}

			match := bestMatchingCluster(tokens, active, tokenCache, similarityThreshold)
			if match == nil {
				founded, err := store.InsertCluster(ctx, q, canonicalTitle(claim.ClaimText))
				if err != nil {
					return err
				}
				active = append(active, *founded)
				tokenCache[founded.ID] = tokens
				result.ClustersCreated++
				match = founded
			}

			if claim.EventClusterID != match.ID {
				if err := store.AssignClaimToCluster(ctx, q, claim.ID, match.ID); err != nil {
					return err
				}
				result.ClaimsClustered++
			}
		}
		return nil
	})
	if err != nil {
		return model.ClusterBuildResult{}, err
	}

	e.logger.Debug("clustering pass complete",
		zap.Int("clusters_created", result.ClustersCreated),
		zap.Int("claims_clustered", result.ClaimsClustered),
		zap.Int("claims_scanned", result.ClaimsScanned))
	return result, nil
}

// bestMatchingCluster returns the active cluster with the strictly highest
// Jaccard score against the claim tokens, or nil if no score clears the
// threshold. Ties keep the first-found cluster in iteration order.
func bestMatchingCluster(claimTokens map[string]struct{}, clusters []model.EventCluster, tokenCache map[string]map[string]struct{}, threshold float64) *model.EventCluster {
	var best *model.EventCluster
	bestScore := 0.0
	for i := range clusters {
		score := Jaccard(claimTokens, tokenCache[clusters[i].ID])
		if score > bestScore {
			bestScore = score
			best = &clusters[i]
		}
	}
	if best == nil || bestScore < threshold {
		return nil
	}
	return best
}

// canonicalTitle derives a cluster title from its founding claim: the first
// twelve words, or a fixed placeholder for empty text.
func canonicalTitle(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return UntitledCluster
	}
	if len(words) > canonicalTitleWords {
		words = words[:canonicalTitleWords]
	}
	return strings.Join(words, " ")
}
