// Package extract validates claim-extraction model output. The core never
// invokes the model: it accepts an opaque JSON string and either produces a
// validated structure or a single descriptive validation error.
package extract

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tkarpov/claimscope/internal/errors"
	"github.com/tkarpov/claimscope/internal/model"
)

// ExtractionResult is the validated shape of one model extraction run.
type ExtractionResult struct {
	Claims []ExtractedClaim `json:"claims"`
}

// ExtractedClaim is one claim as returned by the model. Optional structured
// fields (subject/predicate/object, occurrence metadata) pass through when
// present but are not interpreted by the pipeline.
type ExtractedClaim struct {
	ClaimText         string              `json:"claim_text"`
	ClaimType         model.ClaimType     `json:"claim_type"`
	Subject           *string             `json:"subject,omitempty"`
	Predicate         *string             `json:"predicate,omitempty"`
	Object            *string             `json:"object,omitempty"`
	OccurredAt        *string             `json:"occurred_at,omitempty"`
	LocationText      *string             `json:"location_text,omitempty"`
	Confidence        *float64            `json:"confidence,omitempty"`
	UncertaintyReason *string             `json:"uncertainty_reason,omitempty"`
	Evidence          []ExtractedEvidence `json:"evidence"`
}

// ExtractedEvidence is one evidence span attached to an extracted claim.
type ExtractedEvidence struct {
	EvidenceText string             `json:"evidence_text"`
	StartChar    *int               `json:"start_char,omitempty"`
	EndChar      *int               `json:"end_char,omitempty"`
	EvidenceType model.EvidenceType `json:"evidence_type"`
}

// ParseExtraction parses and strictly validates model output JSON.
// Unknown fields are rejected so silent drift in the model's output shape
// surfaces as a validation error instead of dropped data. There is no partial
// recovery: any violation fails the whole extraction.
func ParseExtraction(modelOutputJSON string) (*ExtractionResult, error) {
	dec := json.NewDecoder(strings.NewReader(modelOutputJSON))
	dec.DisallowUnknownFields()

	var result ExtractionResult
	if err := dec.Decode(&result); err != nil {
		return nil, errors.NewValidationFailed(fmt.Sprintf("invalid claim extraction output: %v", err))
	}
	// Reject trailing content after the top-level object.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errors.NewValidationFailed("invalid claim extraction output: trailing data after JSON object")
	}

	if result.Claims == nil {
		return nil, errors.NewValidationFailed("invalid claim extraction output: missing required field \"claims\"")
	}
	for i, claim := range result.Claims {
		if err := validateClaim(i, claim); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

func validateClaim(idx int, claim ExtractedClaim) error {
	if strings.TrimSpace(claim.ClaimText) == "" {
		return errors.NewValidationFailed(fmt.Sprintf("claim %d: claim_text must be a non-empty string", idx))
	}
	if !claim.ClaimType.Valid() {
		return errors.NewValidationFailed(fmt.Sprintf("claim %d: claim_type %q is not one of the enumerated kinds", idx, claim.ClaimType))
	}
	if claim.Confidence != nil && (*claim.Confidence < 0 || *claim.Confidence > 1) {
		return errors.NewValidationFailed(fmt.Sprintf("claim %d: confidence %v outside [0,1]", idx, *claim.Confidence))
	}
	if len(claim.Evidence) == 0 {
		return errors.NewValidationFailed(fmt.Sprintf("claim %d: evidence requires at least one entry", idx))
	}
	for j, ev := range claim.Evidence {
		if ev.EvidenceText == "" {
			return errors.NewValidationFailed(fmt.Sprintf("claim %d evidence %d: evidence_text is required", idx, j))
		}
		if !ev.EvidenceType.Valid() {
			return errors.NewValidationFailed(fmt.Sprintf("claim %d evidence %d: evidence_type %q is not one of the enumerated kinds", idx, j, ev.EvidenceType))
		}
	}
	return nil
}
