package model

// ArticleUpsertResult reports the outcome of ingesting one raw item.
// Deduped means an equivalent article already existed and its id is returned.
type ArticleUpsertResult struct {
	ArticleID string `json:"article_id"`
	Deduped   bool   `json:"deduped"`
}

// SourceIngestStats reports per-source counts for one ingestion run.
type SourceIngestStats struct {
	Fetched  int    `json:"fetched"`
	Ingested int    `json:"ingested"`
	Skipped  int    `json:"skipped"`
	Error    string `json:"error,omitempty"`
}

// IngestResult aggregates an ingestion run across sources.
type IngestResult struct {
	Ingested int                          `json:"ingested"`
	Skipped  int                          `json:"skipped"`
	Sources  map[string]SourceIngestStats `json:"sources"`
}

// ClaimPersistResult reports rows created by persisting one extraction.
type ClaimPersistResult struct {
	ClaimsCreated   int `json:"claims_created"`
	EvidenceCreated int `json:"evidence_created"`
}

// ClusterBuildResult reports the outcome of one clustering pass.
type ClusterBuildResult struct {
	ClustersCreated int `json:"clusters_created"`
	ClaimsClustered int `json:"claims_clustered"`
	ClaimsScanned   int `json:"claims_scanned"`
}

// SummaryBuildResult reports the outcome of one summarization pass.
type SummaryBuildResult struct {
	SummariesCreated int `json:"summaries_created"`
	CitationsCreated int `json:"citations_created"`
	RelationsCreated int `json:"relations_created"`
}
