package model

// Summary is an auditable summary card for one event cluster. Summaries are
// append-only derived artifacts: a cluster accumulates rows over time and
// "latest" is selected by created_at descending.
type Summary struct {
	ID                  string   `json:"id"`
	EventClusterID      string   `json:"event_cluster_id"`
	AgreedFacts         []string `json:"agreed_facts"`
	DisputedClaims      []string `json:"disputed_claims"`
	Unknowns            []string `json:"unknowns"`
	ConfidenceRationale string   `json:"confidence_rationale"`
	ConfidenceScore     float64  `json:"confidence_score"`
	CreatedAt           int64    `json:"created_at"`
}

// SummarySection names one of the three bullet lists of a summary
type SummarySection string

const (
	SectionAgreedFacts    SummarySection = "agreed_facts"
	SectionDisputedClaims SummarySection = "disputed_claims"
	SectionUnknowns       SummarySection = "unknowns"
)

// SummaryCitation ties one summary bullet to the claim and evidence span that
// justify it. Every bullet of every non-empty section carries at least one.
type SummaryCitation struct {
	ID          string         `json:"id"`
	SummaryID   string         `json:"summary_id"`
	Section     SummarySection `json:"section"`
	BulletIndex int            `json:"bullet_index"`
	ClaimID     string         `json:"claim_id"`
	EvidenceID  string         `json:"evidence_id,omitempty"`
	CreatedAt   int64          `json:"created_at"`
}

// EventCard is the read-only projection returned by the latest-events feed.
type EventCard struct {
	ClusterID           string   `json:"cluster_id"`
	ClusterTitle        string   `json:"cluster_title"`
	AgreedFacts         []string `json:"agreed_facts"`
	DisputedClaims      []string `json:"disputed_claims"`
	Unknowns            []string `json:"unknowns"`
	ConfidenceRationale string   `json:"confidence_rationale"`
	ConfidenceScore     float64  `json:"confidence_score"`
	SourceLinks         []string `json:"source_links"`
}
