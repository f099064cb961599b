// Package researcher содержит доменную модель исследователя реестра финансирования.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package researcher

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Name представляет имя исследователя.
type Name string

// IsValid проверяет, что имя содержит минимум 2 символа.
func (n Name) IsValid() bool {
	return len(strings.TrimSpace(string(n))) >= 2
}

// String возвращает строковое представление имени.
func (n Name) String() string {
	return string(n)
}

// Address представляет почтовый адрес исследователя.
type Address string

// IsValid проверяет, что адрес содержит минимум 5 символов.
func (a Address) IsValid() bool {
	return len(strings.TrimSpace(string(a))) >= 5
}

// String возвращает строковое представление адреса.
func (a Address) String() string {
	return string(a)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: RESEARCHER
// ══════════════════════════════════════════════════════════════════════════════

// Researcher - центральная сущность реестра, представляющая зарегистрированного
// исследователя. Запись создаётся при регистрации и никогда не удаляется;
// движок репутации мутирует её при каждом событии вклада.
type Researcher struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Owner - идентичность вызывающей стороны, владеющей профилем.
	// Движок репутации и система предложений используют один и тот же
	// ключ (ID исследователя); Owner служит только для поиска профиля
	// по принципалу вызывающего.
	Owner shared.Principal

	// APIKeyHash - bcrypt-хеш API-ключа исследователя.
	// Сам ключ выдаётся один раз при регистрации и не хранится.
	APIKeyHash string

	// Name - имя исследователя (минимум 2 символа).
	Name Name

	// Address - почтовый адрес (минимум 5 символов).
	Address Address

	// Email - нормализованный email (нижний регистр, без пробелов).
	Email shared.Email

	// Phone - нормализованный телефон (только цифры, 10-15 знаков).
	Phone shared.Phone

	// ReputationScore - производный показатель репутации.
	ReputationScore int

	// TotalPoints - накопленные очки вклада. Монотонно не убывают.
	TotalPoints shared.Points

	// Badges - множество полученных значков (по ID значка).
	// Значок не отзывается, даже если логика очков изменится.
	Badges []string

	// Contributions - упорядоченный список ID вкладов (предложения, рецензии).
	Contributions []string

	// Achievements - свободные текстовые отметки достижений.
	Achievements []string

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidName - имя короче 2 символов.
	ErrInvalidName = errors.New("invalid name: must be at least 2 characters")

	// ErrInvalidAddress - адрес короче 5 символов.
	ErrInvalidAddress = errors.New("invalid address: must be at least 5 characters")

	// ErrInvalidOwner - пустой принципал владельца.
	ErrInvalidOwner = errors.New("invalid owner: principal is required")

	// ErrResearcherNotFound - исследователь не найден.
	ErrResearcherNotFound = errors.New("researcher not found")

	// ErrResearcherAlreadyExists - исследователь с таким email или телефоном уже есть.
	ErrResearcherAlreadyExists = errors.New("researcher already exists")

	// ErrNegativePoints - попытка начислить отрицательные очки.
	ErrNegativePoints = errors.New("points delta must be positive")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewResearcherParams содержит параметры для регистрации исследователя.
// Email и Phone передаются в сыром виде и нормализуются здесь.
type NewResearcherParams struct {
	ID         string
	Owner      shared.Principal
	APIKeyHash string
	Name       string
	Address    string
	Email      string
	Phone      string
}

// NewResearcher создаёт нового исследователя с валидацией всех полей.
// Порядок проверок фиксирован: первая нарушенная проверка определяет
// текст ошибки InvalidPayload.
func NewResearcher(params NewResearcherParams) (*Researcher, error) {
	if params.ID == "" {
		return nil, errors.New("researcher id is required")
	}

	if !params.Owner.IsValid() {
		return nil, ErrInvalidOwner
	}

	name := Name(strings.TrimSpace(params.Name))
	if !name.IsValid() {
		return nil, ErrInvalidName
	}

	address := Address(strings.TrimSpace(params.Address))
	if !address.IsValid() {
		return nil, ErrInvalidAddress
	}

	email, err := shared.NewEmail(params.Email)
	if err != nil {
		return nil, err
	}

	phone, err := shared.NewPhone(params.Phone)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Researcher{
		ID:              params.ID,
		Owner:           params.Owner,
		APIKeyHash:      params.APIKeyHash,
		Name:            name,
		Address:         address,
		Email:           email,
		Phone:           phone,
		ReputationScore: 0,
		TotalPoints:     0,
		Badges:          []string{},
		Contributions:   []string{},
		Achievements:    []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// AwardPoints начисляет очки за вклад и дописывает ID вклада в историю.
// Очки монотонны: отрицательная дельта отклоняется.
func (r *Researcher) AwardPoints(delta shared.Points, contributionID string) error {
	if delta <= 0 {
		return ErrNegativePoints
	}

	r.TotalPoints = r.TotalPoints.Add(delta)
	if contributionID != "" {
		r.Contributions = append(r.Contributions, contributionID)
	}
	r.UpdatedAt = time.Now().UTC()

	return nil
}

// HasBadge проверяет, есть ли у исследователя значок.
func (r *Researcher) HasBadge(badgeID string) bool {
	for _, b := range r.Badges {
		if b == badgeID {
			return true
		}
	}
	return false
}

// GrantBadge добавляет значок в множество. Повторная выдача - no-op.
func (r *Researcher) GrantBadge(badgeID string) bool {
	if badgeID == "" || r.HasBadge(badgeID) {
		return false
	}

	r.Badges = append(r.Badges, badgeID)
	r.UpdatedAt = time.Now().UTC()
	return true
}

// RecordAchievement добавляет текстовую отметку достижения.
func (r *Researcher) RecordAchievement(achievement string) {
	achievement = strings.TrimSpace(achievement)
	if achievement == "" {
		return
	}

	r.Achievements = append(r.Achievements, achievement)
	r.UpdatedAt = time.Now().UTC()
}

// ContributionCount возвращает количество учтённых вкладов.
func (r *Researcher) ContributionCount() int {
	return len(r.Contributions)
}

// OwnedBy проверяет принадлежность профиля принципалу.
func (r *Researcher) OwnedBy(principal shared.Principal) bool {
	return r.Owner == principal
}

// String возвращает строковое представление для логирования.
func (r *Researcher) String() string {
	return fmt.Sprintf(
		"Researcher{ID: %s, Name: %s, Points: %d, Badges: %d}",
		r.ID, r.Name, r.TotalPoints, len(r.Badges),
	)
}

// Clone создаёт глубокую копию исследователя.
func (r *Researcher) Clone() *Researcher {
	if r == nil {
		return nil
	}

	clone := *r
	clone.Badges = append([]string{}, r.Badges...)
	clone.Contributions = append([]string{}, r.Contributions...)
	clone.Achievements = append([]string{}, r.Achievements...)
	return &clone
}
