// Package command contains write operations (CQRS - Commands).
// Commands validate input, load state, apply domain logic, and persist the
// result as the final step, so a failed call leaves no partial state.
package command

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/reprofund/research-ledger/internal/domain/researcher"
	"github.com/reprofund/research-ledger/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER RESEARCHER COMMAND
// Регистрирует нового исследователя в реестре. Выдаёт API-ключ ровно один
// раз: хранится только bcrypt-хеш секретной части.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterResearcherCommand содержит данные регистрации.
// Email и Phone принимаются в сыром виде и нормализуются доменом.
type RegisterResearcherCommand struct {
	// Name - имя исследователя (минимум 2 символа).
	Name string

	// Address - почтовый адрес (минимум 5 символов).
	Address string

	// Email - email в свободной форме.
	Email string

	// Phone - телефон в свободной форме.
	Phone string
}

// Validate проверяет, что обязательные поля присутствуют.
// Содержательную валидацию (длины, форматы) выполняет доменная фабрика.
func (c RegisterResearcherCommand) Validate() error {
	if c.Name == "" && c.Address == "" && c.Email == "" && c.Phone == "" {
		return shared.NewDomainError("researcher", "Register", shared.ErrInvalidPayload, "registration payload is empty")
	}
	return nil
}

// RegisterResearcherResult содержит результат регистрации.
type RegisterResearcherResult struct {
	// ResearcherID - внутренний ID созданного исследователя.
	ResearcherID string

	// APIKey - выданный ключ в открытом виде. Показывается один раз
	// и нигде не сохраняется.
	APIKey string

	// CreatedAt - время регистрации.
	CreatedAt time.Time
}

// RegisterResearcherHandler обрабатывает команду регистрации.
type RegisterResearcherHandler struct {
	researcherRepo researcher.Repository
	eventPublisher shared.EventPublisher
	bcryptCost     int
}

// NewRegisterResearcherHandler создаёт обработчик регистрации.
func NewRegisterResearcherHandler(
	researcherRepo researcher.Repository,
	eventPublisher shared.EventPublisher,
) *RegisterResearcherHandler {
	return &RegisterResearcherHandler{
		researcherRepo: researcherRepo,
		eventPublisher: eventPublisher,
		bcryptCost:     bcrypt.DefaultCost,
	}
}

// Handle выполняет регистрацию исследователя.
func (h *RegisterResearcherHandler) Handle(ctx context.Context, cmd RegisterResearcherCommand) (*RegisterResearcherResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Нормализуем контакты до проверки дубликатов: уникальность
	// сравнивается по нормализованной форме.
	email, err := shared.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}

	phone, err := shared.NewPhone(cmd.Phone)
	if err != nil {
		return nil, err
	}

	if exists, err := h.researcherRepo.ExistsByEmail(ctx, email); err != nil {
		return nil, shared.WrapError("researcher", "Register", shared.ErrInternal, "email lookup failed", err)
	} else if exists {
		return nil, shared.ErrDuplicateEmail
	}

	if exists, err := h.researcherRepo.ExistsByPhone(ctx, phone); err != nil {
		return nil, shared.WrapError("researcher", "Register", shared.ErrInternal, "phone lookup failed", err)
	} else if exists {
		return nil, shared.ErrDuplicatePhone
	}

	id := uuid.NewString()

	secret, err := newAPIKeySecret()
	if err != nil {
		return nil, shared.WrapError("researcher", "Register", shared.ErrInternal, "failed to generate api key", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.bcryptCost)
	if err != nil {
		return nil, shared.WrapError("researcher", "Register", shared.ErrInternal, "failed to hash api key", err)
	}

	r, err := researcher.NewResearcher(researcher.NewResearcherParams{
		ID:         id,
		Owner:      shared.Principal(uuid.NewString()),
		APIKeyHash: string(hash),
		Name:       cmd.Name,
		Address:    cmd.Address,
		Email:      cmd.Email,
		Phone:      cmd.Phone,
	})
	if err != nil {
		return nil, err
	}

	if err := h.researcherRepo.Create(ctx, r); err != nil {
		// Гонка между проверкой дубликата и вставкой: хранилище
		// остаётся последним арбитром уникальности.
		if err == researcher.ErrResearcherAlreadyExists {
			return nil, shared.ErrDuplicateEmail
		}
		return nil, shared.WrapError("researcher", "Register", shared.ErrInternal, "failed to persist researcher", err)
	}

	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(researcher.NewRegisteredEvent(r))
	}

	return &RegisterResearcherResult{
		ResearcherID: r.ID,
		APIKey:       FormatAPIKey(r.ID, secret),
		CreatedAt:    r.CreatedAt,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// API KEY HELPERS
// Ключ имеет вид "<researcher_id>.<secret>": ID позволяет middleware найти
// запись за один запрос, секрет сверяется с bcrypt-хешем.
// ══════════════════════════════════════════════════════════════════════════════

const apiKeySecretBytes = 32

// newAPIKeySecret генерирует криптослучайный секрет ключа.
func newAPIKeySecret() (string, error) {
	buf := make([]byte, apiKeySecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// FormatAPIKey собирает полный API-ключ из ID и секрета.
func FormatAPIKey(researcherID, secret string) string {
	return fmt.Sprintf("%s.%s", researcherID, secret)
}
