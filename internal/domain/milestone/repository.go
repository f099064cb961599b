package milestone

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Этапы и доказательства хранятся в независимых хранилищах,
// связь идёт через списки ID.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции над записями этапов.
type Repository interface {
	// Create создаёт новый этап.
	Create(ctx context.Context, m *Milestone) error

	// GetByID возвращает этап по ID.
	// Возвращает ErrMilestoneNotFound, если этап не найден.
	GetByID(ctx context.Context, id string) (*Milestone, error)

	// Update сохраняет изменённую запись этапа.
	// Возвращает ErrMilestoneNotFound, если этап не найден.
	Update(ctx context.Context, m *Milestone) error

	// GetAll возвращает все этапы (порядок не специфицирован).
	GetAll(ctx context.Context) ([]*Milestone, error)
}

// ProofRepository определяет операции над доказательствами воспроизведения.
type ProofRepository interface {
	// Create создаёт новое доказательство.
	Create(ctx context.Context, p *Proof) error

	// GetByID возвращает доказательство по ID.
	// Возвращает ErrProofNotFound, если доказательство не найдено.
	GetByID(ctx context.Context, id string) (*Proof, error)

	// Update сохраняет изменённую запись доказательства.
	Update(ctx context.Context, p *Proof) error

	// GetByMilestoneID возвращает доказательства этапа.
	GetByMilestoneID(ctx context.Context, milestoneID string) ([]*Proof, error)
}
