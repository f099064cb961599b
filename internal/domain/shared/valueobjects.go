// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// EntityID represents an opaque unique identifier generated at creation time.
// The ledger does not assume any internal structure beyond "non-empty after
// trimming": IDs produced by older deployments are not UUID-shaped.
type EntityID string

// IsValid checks that the ID is non-empty after trimming.
func (id EntityID) IsValid() bool {
	return strings.TrimSpace(string(id)) != ""
}

// String returns the string representation.
func (id EntityID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty.
func (id EntityID) IsEmpty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// NewEntityID validates and normalizes a caller-supplied identifier.
// Every ID-typed input passes through this check before any store lookup.
func NewEntityID(raw string) (EntityID, error) {
	id := EntityID(strings.TrimSpace(raw))
	if !id.IsValid() {
		return "", NewDomainError("shared", "NewEntityID", ErrInvalidID, "identifier must be a non-empty string")
	}
	return id, nil
}

// Principal represents the caller identity attached to mutating requests.
// It is opaque to the domain: the interface layer resolves API keys to a
// principal, the domain only compares it for ownership.
type Principal string

// IsValid checks that the principal is non-empty.
func (p Principal) IsValid() bool {
	return strings.TrimSpace(string(p)) != ""
}

// String returns the string representation.
func (p Principal) String() string {
	return string(p)
}

// ═══════════════════════════════════════════════════════════════════════════
// Contact Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Email represents a normalized researcher email address.
type Email string

// emailRegex matches the standard local@domain.tld shape.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsValid checks the email shape.
func (e Email) IsValid() bool {
	return emailRegex.MatchString(string(e))
}

// String returns the string representation.
func (e Email) String() string {
	return string(e)
}

// NewEmail validates, trims, and lower-cases an email address.
// The normalized form is what gets stored and compared for uniqueness.
func NewEmail(raw string) (Email, error) {
	e := Email(strings.ToLower(strings.TrimSpace(raw)))
	if !e.IsValid() {
		return "", NewDomainError("shared", "NewEmail", ErrInvalidFormat, "email must match local@domain.tld")
	}
	return e, nil
}

// Phone represents a normalized phone number (digits only).
type Phone string

// IsValid checks that the phone is 10-15 digits.
func (p Phone) IsValid() bool {
	if len(p) < 10 || len(p) > 15 {
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String returns the string representation.
func (p Phone) String() string {
	return string(p)
}

// NewPhone strips all non-digit characters and validates the result.
// "+7 (701) 123-45-67" and "77011234567" normalize to the same value.
func NewPhone(raw string) (Phone, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	p := Phone(b.String())
	if !p.IsValid() {
		return "", NewDomainError("shared", "NewPhone", ErrInvalidFormat, "phone must contain 10-15 digits")
	}
	return p, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Amount Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// FundingAmount represents funding units. The ledger tracks integral units;
// fractional currency is out of scope.
type FundingAmount int64

// IsValid checks that the amount is non-negative.
func (a FundingAmount) IsValid() bool {
	return a >= 0
}

// Add returns the sum of two amounts.
func (a FundingAmount) Add(delta FundingAmount) FundingAmount {
	return a + delta
}

// Int64 returns the underlying int64 value.
func (a FundingAmount) Int64() int64 {
	return int64(a)
}

// MinFundingContribution is the smallest accepted single funding event.
const MinFundingContribution FundingAmount = 100

// MinReviewStake is the smallest accepted review stake (spam deterrent).
const MinReviewStake FundingAmount = 100

// Points represents the integer reputation currency. Points are earned per
// contribution event and never decremented.
type Points int64

// IsValid checks that the points value is non-negative.
func (p Points) IsValid() bool {
	return p >= 0
}

// Add accumulates earned points.
func (p Points) Add(delta Points) Points {
	return p + delta
}

// Int64 returns the underlying int64 value.
func (p Points) Int64() int64 {
	return int64(p)
}
