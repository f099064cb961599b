// Package milestone содержит доменную модель этапа исследования и
// доказательства воспроизведения. Это ядро бизнес-логики - здесь нет
// внешних зависимостей.
package milestone

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет статус этапа. Переход только pending→completed.
type Status string

const (
	// StatusPending - этап ожидает верификации.
	StatusPending Status = "pending"
	// StatusCompleted - этап верифицирован.
	StatusCompleted Status = "completed"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusCompleted
}

// ProofStatus определяет статус доказательства воспроизведения.
type ProofStatus string

const (
	// ProofPending - доказательство отправлено, не проверено.
	ProofPending ProofStatus = "pending"
	// ProofVerified - доказательство проверено.
	ProofVerified ProofStatus = "verified"
)

// IsValid проверяет, что статус доказательства корректен.
func (s ProofStatus) IsValid() bool {
	return s == ProofPending || s == ProofVerified
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: MILESTONE
// ══════════════════════════════════════════════════════════════════════════════

// Milestone - этап исследования. Создаётся в контексте владеющего
// предложения; привязка к предложению хранится в списке предложения.
// Статус становится completed только через операцию верификации,
// никогда автоматически при отправке доказательства.
type Milestone struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Description - описание этапа.
	Description string

	// RequiredFunding - финансирование, необходимое для этапа.
	RequiredFunding shared.FundingAmount

	// Deadline - срок этапа.
	Deadline time.Time

	// Status - текущий статус (pending или completed).
	Status Status

	// Proofs - упорядоченный список ID доказательств (append-only).
	Proofs []string

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// PROOF OF REPRODUCTION
// ══════════════════════════════════════════════════════════════════════════════

// Proof - доказательство воспроизведения: пара контентных хешей
// (методология, результаты). Неизменяемо, кроме статуса.
type Proof struct {
	// ID - внутренний уникальный идентификатор.
	ID string

	// MilestoneID - ID этапа, к которому относится доказательство.
	MilestoneID string

	// MethodologyHash - хеш методологии.
	MethodologyHash string

	// ResultsHash - хеш результатов.
	ResultsHash string

	// Status - статус доказательства (pending или verified).
	Status ProofStatus

	// SubmittedAt - время отправки.
	SubmittedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidMilestoneDescription - пустое описание этапа.
	ErrInvalidMilestoneDescription = errors.New("invalid milestone description: must not be empty")

	// ErrInvalidRequiredFunding - отрицательное требуемое финансирование.
	ErrInvalidRequiredFunding = errors.New("invalid required funding: must be non-negative")

	// ErrNotPending - этап не в статусе pending.
	ErrNotPending = errors.New("milestone is not in a pending state")

	// ErrMilestoneNotFound - этап не найден.
	ErrMilestoneNotFound = errors.New("milestone not found")

	// ErrProofNotFound - доказательство не найдено.
	ErrProofNotFound = errors.New("proof of reproduction not found")

	// ErrEmptyHash - пустой контентный хеш.
	ErrEmptyHash = errors.New("proof hash must not be empty")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewMilestoneParams содержит параметры для создания этапа.
type NewMilestoneParams struct {
	ID              string
	Description     string
	RequiredFunding shared.FundingAmount
	Deadline        time.Time
}

// NewMilestone создаёт новый этап со статусом pending и пустым
// списком доказательств.
func NewMilestone(params NewMilestoneParams) (*Milestone, error) {
	if params.ID == "" {
		return nil, errors.New("milestone id is required")
	}

	description := strings.TrimSpace(params.Description)
	if description == "" {
		return nil, ErrInvalidMilestoneDescription
	}

	if params.RequiredFunding < 0 {
		return nil, ErrInvalidRequiredFunding
	}

	now := time.Now().UTC()

	return &Milestone{
		ID:              params.ID,
		Description:     description,
		RequiredFunding: params.RequiredFunding,
		Deadline:        params.Deadline,
		Status:          StatusPending,
		Proofs:          []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// NewProofParams содержит параметры для создания доказательства.
type NewProofParams struct {
	ID              string
	MilestoneID     string
	MethodologyHash string
	ResultsHash     string
}

// NewProof создаёт доказательство воспроизведения со статусом pending.
func NewProof(params NewProofParams) (*Proof, error) {
	if params.ID == "" {
		return nil, errors.New("proof id is required")
	}

	if params.MilestoneID == "" {
		return nil, errors.New("milestone id is required")
	}

	methodologyHash := strings.TrimSpace(params.MethodologyHash)
	resultsHash := strings.TrimSpace(params.ResultsHash)
	if methodologyHash == "" || resultsHash == "" {
		return nil, ErrEmptyHash
	}

	return &Proof{
		ID:              params.ID,
		MilestoneID:     params.MilestoneID,
		MethodologyHash: methodologyHash,
		ResultsHash:     resultsHash,
		Status:          ProofPending,
		SubmittedAt:     time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// Verify переводит этап pending→completed.
// Повторная верификация отклоняется: статус движется только вперёд.
func (m *Milestone) Verify() error {
	if m.Status != StatusPending {
		return ErrNotPending
	}

	m.Status = StatusCompleted
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// AttachProof дописывает ID доказательства в список. Статус этапа
// при этом не меняется.
func (m *Milestone) AttachProof(proofID string) {
	if proofID == "" {
		return
	}

	m.Proofs = append(m.Proofs, proofID)
	m.UpdatedAt = time.Now().UTC()
}

// IsPending проверяет, что этап ожидает верификации.
func (m *Milestone) IsPending() bool {
	return m.Status == StatusPending
}

// IsOverdue проверяет, истёк ли срок незавершённого этапа.
func (m *Milestone) IsOverdue(now time.Time) bool {
	return m.Status == StatusPending && !m.Deadline.IsZero() && now.After(m.Deadline)
}

// MarkVerified переводит доказательство pending→verified.
func (p *Proof) MarkVerified() {
	p.Status = ProofVerified
}

// String возвращает строковое представление для логирования.
func (m *Milestone) String() string {
	return fmt.Sprintf(
		"Milestone{ID: %s, Status: %s, Proofs: %d}",
		m.ID, m.Status, len(m.Proofs),
	)
}

// Clone создаёт глубокую копию этапа.
func (m *Milestone) Clone() *Milestone {
	if m == nil {
		return nil
	}

	clone := *m
	clone.Proofs = append([]string{}, m.Proofs...)
	return &clone
}
