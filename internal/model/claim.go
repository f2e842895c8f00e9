package model

// Claim represents one atomic factual assertion extracted from an article.
// Claims are owned by their article: re-extracting an article destroys and
// replaces its entire claim set.
type Claim struct {
	ID                string    `json:"id"`
	ArticleID         string    `json:"article_id"`
	EventClusterID    string    `json:"event_cluster_id,omitempty"`
	ClaimText         string    `json:"claim_text"`
	ClaimType         ClaimType `json:"claim_type"`
	Confidence        *float64  `json:"confidence,omitempty"` // model-supplied, [0,1]
	ExtractionModel   string    `json:"extraction_model,omitempty"`
	ExtractionVersion string    `json:"extraction_version,omitempty"`
	CreatedAt         int64     `json:"created_at"`
}

// ClaimType categorizes the epistemic kind of a claim
type ClaimType string

const (
	ClaimTypeObservedFact        ClaimType = "observed_fact"
	ClaimTypeAttributedStatement ClaimType = "attributed_statement"
	ClaimTypeInference           ClaimType = "inference"
	ClaimTypePrediction          ClaimType = "prediction"
	ClaimTypeOpinion             ClaimType = "opinion"
)

// IsFactual reports whether claims of this type are eligible for clustering,
// relation inference, and summarization. Inference, prediction, and opinion
// claims are explicitly non-factual.
func (t ClaimType) IsFactual() bool {
	return t == ClaimTypeObservedFact || t == ClaimTypeAttributedStatement
}

// Valid reports whether t is one of the five enumerated claim kinds.
func (t ClaimType) Valid() bool {
	switch t {
	case ClaimTypeObservedFact, ClaimTypeAttributedStatement,
		ClaimTypeInference, ClaimTypePrediction, ClaimTypeOpinion:
		return true
	}
	return false
}

// ClaimEvidence is a verbatim text excerpt supporting a claim, with optional
// character offsets into the article. Every claim carries at least one.
type ClaimEvidence struct {
	ID           string       `json:"id"`
	ClaimID      string       `json:"claim_id"`
	ArticleID    string       `json:"article_id"`
	EvidenceText string       `json:"evidence_text"`
	StartChar    *int         `json:"start_char,omitempty"`
	EndChar      *int         `json:"end_char,omitempty"`
	EvidenceType EvidenceType `json:"evidence_type"`
	CreatedAt    int64        `json:"created_at"`
}

// EvidenceType classifies how the evidence span relates to the source text
type EvidenceType string

const (
	EvidenceTypeDirectQuote       EvidenceType = "direct_quote"
	EvidenceTypeReportedFact      EvidenceType = "reported_fact"
	EvidenceTypeDocumentReference EvidenceType = "document_reference"
)

// Valid reports whether t is one of the three enumerated evidence kinds.
func (t EvidenceType) Valid() bool {
	switch t {
	case EvidenceTypeDirectQuote, EvidenceTypeReportedFact, EvidenceTypeDocumentReference:
		return true
	}
	return false
}
