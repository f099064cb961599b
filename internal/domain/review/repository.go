package review

import (
	"context"
)

// Repository определяет операции над записями рецензий.
// Реализации находятся в infrastructure/persistence.
type Repository interface {
	// Create создаёт новую рецензию.
	Create(ctx context.Context, r *Review) error

	// GetByID возвращает рецензию по ID.
	// Возвращает ErrReviewNotFound, если рецензия не найдена.
	GetByID(ctx context.Context, id string) (*Review, error)

	// Update сохраняет изменённую запись рецензии (только флаг Verified).
	Update(ctx context.Context, r *Review) error

	// GetByProposalID возвращает рецензии предложения.
	GetByProposalID(ctx context.Context, proposalID string) ([]*Review, error)

	// Count возвращает общее количество рецензий.
	Count(ctx context.Context) (int, error)
}
