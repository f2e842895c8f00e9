// Package relation infers pairwise support/contradiction relations among the
// factual claims of one event cluster.
package relation

import (
	"context"
	"regexp"
	"strings"

	"github.com/tkarpov/claimscope/internal/cluster"
	"github.com/tkarpov/claimscope/internal/model"
	"github.com/tkarpov/claimscope/internal/store"
)

// Classification thresholds. Contradiction is checked at a lower similarity
// bar than support so near-duplicate claims differing only by negation are
// never misfiled as agreeing.
const (
	contradictionThreshold = 0.35
	supportThreshold       = 0.6
)

// negationCues is the token set signalling a negated claim.
var negationCues = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "without": {},
}

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// Recompute rebuilds the relations for one cluster's claim set. Every relation
// touching any of the claims is deleted first, then each unordered pair of
// factual claims is classified: contradiction before support, so the two rules
// never compete. Returns the number of relations created. The caller supplies
// the transaction.
func Recompute(ctx context.Context, q store.Querier, claims []model.Claim) (int, error) {
	factual := make([]model.Claim, 0, len(claims))
	for _, c := range claims {
		if c.ClaimType.IsFactual() {
			factual = append(factual, c)
		}
	}
	if len(factual) < 2 {
		return 0, nil
	}

	ids := make([]string, len(factual))
	for i, c := range factual {
		ids[i] = c.ID
	}
	if err := store.DeleteRelationsForClaims(ctx, q, ids); err != nil {
		return 0, err
	}

	created := 0
	for i, left := range factual {
		leftTokens := cluster.Tokens(left.ClaimText)
		for _, right := range factual[i+1:] {
			rightTokens := cluster.Tokens(right.ClaimText)
			score := cluster.Jaccard(leftTokens, rightTokens)

			var relType model.RelationType
			switch {
			case score >= contradictionThreshold && negationMismatch(left.ClaimText, right.ClaimText):
				relType = model.RelationContradicts
			case score >= supportThreshold:
				relType = model.RelationSupports
			default:
				continue
			}

			if err := store.InsertRelation(ctx, q, left.ID, right.ID, relType, score); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// negationMismatch reports whether exactly one side of the pair carries a
// negation cue. The check tokenizes without the length filter used for
// similarity, since "no" would otherwise never be seen.
func negationMismatch(left, right string) bool {
	return hasNegationCue(left) != hasNegationCue(right)
}

func hasNegationCue(text string) bool {
	for _, tok := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, ok := negationCues[tok]; ok {
			return true
		}
	}
	return false
}
