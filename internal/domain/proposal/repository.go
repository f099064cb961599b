package proposal

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции над записями предложений.
type Repository interface {
	// Create создаёт новое предложение.
	Create(ctx context.Context, p *Proposal) error

	// GetByID возвращает предложение по ID.
	// Возвращает ErrProposalNotFound, если предложение не найдено.
	GetByID(ctx context.Context, id string) (*Proposal, error)

	// Update сохраняет изменённую запись предложения.
	// Возвращает ErrProposalNotFound, если предложение не найдено.
	Update(ctx context.Context, p *Proposal) error

	// GetAll возвращает все предложения (порядок не специфицирован).
	GetAll(ctx context.Context) ([]*Proposal, error)

	// GetByResearcherID возвращает предложения исследователя.
	// Пустой результат - это пустой срез, не ошибка: семантику
	// "нет предложений = NotFound" реализует слой запросов.
	GetByResearcherID(ctx context.Context, researcherID string) ([]*Proposal, error)

	// Count возвращает общее количество предложений.
	Count(ctx context.Context) (int, error)
}
