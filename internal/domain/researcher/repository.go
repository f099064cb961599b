package researcher

import (
	"context"
	"time"

	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции над записями исследователей.
// Хранилище долговечно: его содержимое и есть полное состояние системы.
type Repository interface {
	// Create создаёт нового исследователя.
	// Возвращает ErrResearcherAlreadyExists при конфликте email или телефона.
	Create(ctx context.Context, r *Researcher) error

	// GetByID возвращает исследователя по внутреннему ID.
	// Возвращает ErrResearcherNotFound, если исследователь не найден.
	GetByID(ctx context.Context, id string) (*Researcher, error)

	// GetByOwner возвращает исследователя по принципалу владельца.
	// Возвращает ErrResearcherNotFound, если профиль не найден.
	GetByOwner(ctx context.Context, owner shared.Principal) (*Researcher, error)

	// GetByEmail возвращает исследователя по нормализованному email.
	GetByEmail(ctx context.Context, email shared.Email) (*Researcher, error)

	// GetByPhone возвращает исследователя по нормализованному телефону.
	GetByPhone(ctx context.Context, phone shared.Phone) (*Researcher, error)

	// Update сохраняет изменённую запись исследователя.
	// Возвращает ErrResearcherNotFound, если исследователь не найден.
	Update(ctx context.Context, r *Researcher) error

	// GetAll возвращает всех исследователей в порядке убывания очков
	// (ID как вторичный ключ для стабильности).
	GetAll(ctx context.Context) ([]*Researcher, error)

	// ExistsByEmail проверяет существование по нормализованному email.
	ExistsByEmail(ctx context.Context, email shared.Email) (bool, error)

	// ExistsByPhone проверяет существование по нормализованному телефону.
	ExistsByPhone(ctx context.Context, phone shared.Phone) (bool, error)

	// Count возвращает общее количество исследователей.
	Count(ctx context.Context) (int, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGE CATALOG REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// BadgeRepository определяет операции над статическим каталогом значков.
type BadgeRepository interface {
	// Seed вставляет каталог значков. Идемпотентна: повторный запуск
	// перезаписывает идентичные записи.
	Seed(ctx context.Context, catalog []Badge) error

	// GetByID возвращает значок по ID.
	GetByID(ctx context.Context, id string) (*Badge, error)

	// GetAll возвращает весь каталог.
	GetAll(ctx context.Context) ([]Badge, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD
// Рейтинг исследователей по очкам (обычно реализуется через Redis ZSET).
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardEntry - одна запись рейтинга.
type LeaderboardEntry struct {
	// Rank - позиция в рейтинге (начиная с 1).
	Rank int

	// ResearcherID - внутренний ID исследователя.
	ResearcherID string

	// Name - отображаемое имя.
	Name string

	// TotalPoints - накопленные очки.
	TotalPoints shared.Points

	// Badges - количество значков.
	Badges int
}

// Leaderboard определяет операции рейтинга.
type Leaderboard interface {
	// UpdateScore обновляет очки исследователя в рейтинге.
	UpdateScore(ctx context.Context, r *Researcher) error

	// Top возвращает топ-N записей рейтинга.
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)

	// Rank возвращает позицию исследователя (начиная с 1).
	Rank(ctx context.Context, researcherID string) (int, error)

	// Around возвращает окно рейтинга вокруг исследователя: radius записей
	// выше и ниже его позиции, включая его самого. Возвращает ошибку,
	// если исследователь не в рейтинге.
	Around(ctx context.Context, researcherID string, radius int) ([]LeaderboardEntry, error)

	// Rebuild полностью перестраивает рейтинг из хранилища.
	Rebuild(ctx context.Context, researchers []*Researcher) error
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Cache определяет операции кеширования профилей исследователей.
type Cache interface {
	// Get получает исследователя из кеша.
	Get(ctx context.Context, researcherID string) (*Researcher, error)

	// Set сохраняет исследователя в кеш.
	Set(ctx context.Context, r *Researcher, ttl time.Duration) error

	// Invalidate удаляет запись исследователя из кеша.
	Invalidate(ctx context.Context, researcherID string) error
}
