package errors

import "fmt"

// ErrorCode represents a claimscope error code.
type ErrorCode string

const (
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"      // 400
	ErrValidationFailed    ErrorCode = "VALIDATION_FAILED"    // 422: malformed extraction output
	ErrNotFound            ErrorCode = "NOT_FOUND"            // 404
	ErrConflict            ErrorCode = "CONFLICT"             // 409
	ErrNoFactualClaims     ErrorCode = "NO_FACTUAL_CLAIMS"    // 422: cluster has nothing to summarize
	ErrCitationEnforcement ErrorCode = "CITATION_ENFORCEMENT" // 500: provenance invariant violated
	ErrInternal            ErrorCode = "INTERNAL"             // 500
)

// Error is a structured error with code, HTTP status, and optional details.
type Error struct {
	Code    ErrorCode      `json:"code"`
	Status  int            `json:"-"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewValidationFailed creates a 422 error for malformed or non-conformant
// claim-extraction model output.
func NewValidationFailed(msg string) *Error {
	return &Error{
		Code:    ErrValidationFailed,
		Status:  422,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for an unknown entity id.
func NewNotFound(kind, id string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]any{"kind": kind, "id": id},
	}
}

// NewConflict creates a 409 error for storage conflicts.
func NewConflict(msg string) *Error {
	return &Error{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewNoFactualClaims creates a 422 error for a summarization attempt against a
// cluster with no factual claims.
func NewNoFactualClaims(clusterID string) *Error {
	return &Error{
		Code:    ErrNoFactualClaims,
		Status:  422,
		Message: fmt.Sprintf("cluster %s has no factual claims available for summary generation", clusterID),
		Details: map[string]any{"cluster_id": clusterID},
	}
}

// NewCitationEnforcement creates a 500 error for a bullet that cannot be
// resolved to a cited claim with evidence. This aborts the summary build for
// the cluster rather than producing uncited output.
func NewCitationEnforcement(section string, bulletIndex int) *Error {
	return &Error{
		Code:    ErrCitationEnforcement,
		Status:  500,
		Message: fmt.Sprintf("citation enforcement failed for section=%s bullet=%d", section, bulletIndex),
		Details: map[string]any{"section": section, "bullet_index": bulletIndex},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a claimscope Error with the given code.
func Is(err error, code ErrorCode) bool {
	if cErr, ok := err.(*Error); ok {
		return cErr.Code == code
	}
	return false
}
