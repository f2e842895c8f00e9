package model

// EventCluster groups claims believed to describe the same real-world event.
// The canonical title is derived once from the claim that founds the cluster
// and never recomputed.
type EventCluster struct {
	ID             string        `json:"id"`
	CanonicalTitle string        `json:"canonical_title"`
	Status         ClusterStatus `json:"status"`
	CreatedAt      int64         `json:"created_at"`
}

// ClusterStatus is the lifecycle state of an event cluster
type ClusterStatus string

const (
	ClusterStatusActive ClusterStatus = "active"
)

// ClaimRelation is a pairwise judgment between two factual claims in the same
// cluster. Relations are scoped to a single pass: they are deleted and rebuilt
// in full before every recompute.
type ClaimRelation struct {
	ID           string       `json:"id"`
	LeftClaimID  string       `json:"left_claim_id"`
	RightClaimID string       `json:"right_claim_id"`
	RelationType RelationType `json:"relation_type"`
	Score        float64      `json:"score"` // Jaccard similarity, [0,1]
	CreatedAt    int64        `json:"created_at"`
}

// RelationType classifies the relation between two claims
type RelationType string

const (
	RelationSupports    RelationType = "supports"
	RelationContradicts RelationType = "contradicts"
)
