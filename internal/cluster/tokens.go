// Package cluster assigns claims to event clusters by lexical-overlap
// similarity against each cluster's cached token set.
package cluster

import (
	"regexp"
	"strings"
)

var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Tokens derives the similarity token set for a piece of claim text:
// lowercased, split on non-alphanumeric runs, tokens longer than two
// characters, set semantics. Shared by clustering and relation inference.
func Tokens(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range tokenSplitPattern.Split(strings.ToLower(text), -1) {
		if len(tok) > 2 {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

// Jaccard computes |intersection| / |union| over two token sets.
// Either side empty yields 0.
func Jaccard(left, right map[string]struct{}) float64 {
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	intersection := 0
	for tok := range left {
		if _, ok := right[tok]; ok {
			intersection++
		}
	}
	union := len(left) + len(right) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
