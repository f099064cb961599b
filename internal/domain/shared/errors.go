// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Payload errors. Everything the caller can fix by resubmitting a
	// corrected request is an InvalidPayload.
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrInvalidID       = errors.New("invalid ID")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Internal errors (unexpected store or infrastructure failure).
	ErrInternal           = errors.New("internal error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "researcher", "proposal", "milestone"
	Op      string // Operation that failed, e.g., "Register", "Fund"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Researcher domain errors
var (
	ErrResearcherNotFound   = NewDomainError("researcher", "Find", ErrNotFound, "researcher not found")
	ErrDuplicateEmail       = NewDomainError("researcher", "Register", ErrInvalidPayload, "researcher with this email already exists")
	ErrDuplicatePhone       = NewDomainError("researcher", "Register", ErrInvalidPayload, "researcher with this phone already exists")
	ErrNoResearchers        = NewDomainError("researcher", "List", ErrNotFound, "no researchers registered")
	ErrOwnerHasNoResearcher = NewDomainError("researcher", "FindByOwner", ErrNotFound, "caller has no researcher profile")
)

// Proposal domain errors
var (
	ErrProposalNotFound    = NewDomainError("proposal", "Find", ErrNotFound, "proposal not found")
	ErrNoProposals         = NewDomainError("proposal", "List", ErrNotFound, "no proposals found")
	ErrFundingBelowMinimum = NewDomainError("proposal", "Fund", ErrInvalidPayload, "funding amount must be at least 100 units")
	ErrStageRegression     = NewDomainError("proposal", "AdvanceStage", ErrStateTransition, "proposal stage can only advance forward")
)

// Milestone domain errors
var (
	ErrMilestoneNotFound   = NewDomainError("milestone", "Find", ErrNotFound, "milestone not found")
	ErrMilestoneNotPending = NewDomainError("milestone", "Verify", ErrInvalidPayload, "milestone is not in a pending state")
	ErrProofNotFound       = NewDomainError("milestone", "FindProof", ErrNotFound, "proof of reproduction not found")
	ErrNoVerifiedProof     = NewDomainError("milestone", "Verify", ErrInvalidPayload, "milestone has no verified proof of reproduction")
)

// Review domain errors
var (
	ErrReviewNotFound    = NewDomainError("review", "Find", ErrNotFound, "review not found")
	ErrScoreOutOfRange   = NewDomainError("review", "Submit", ErrInvalidPayload, "score must be between 1 and 10")
	ErrStakeBelowMinimum = NewDomainError("review", "Submit", ErrInvalidPayload, "stake amount must be at least 100 units")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidPayload checks if the error is caused by malformed caller input.
func IsInvalidPayload(err error) bool {
	return errors.Is(err, ErrInvalidPayload) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrStateTransition)
}

// IsUnauthorized checks if the error is an authorization failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// IsInternal checks if the error is an unexpected internal failure.
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
