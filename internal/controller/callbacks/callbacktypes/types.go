package callbacktypes

import (
	"context"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

// StateManager интерфейс для управления состоянием пользователей
type StateManager interface {
	ClearState(telegramID int64)
	GetState(telegramID int64) UserState
	SetState(telegramID int64, state UserState)
	SetData(telegramID int64, key string, value interface{})
	GetData(telegramID int64, key string) (interface{}, bool)
	StartSelection(telegramID, chatID int64, messageID int)
	OwnsMessage(telegramID int64, messageID int) bool
}

// ClaimService шаги выбора слота и роли
type ClaimService interface {
	Begin(ctx context.Context, actor int64) (*service.ClaimResult, error)
	ChooseSlot(ctx context.Context, actor int64, slotID uuid.UUID) (*service.ClaimResult, error)
	ChooseRole(ctx context.Context, actor int64, slotID uuid.UUID, role string) (*service.ClaimResult, error)
}

// UserService регистрация участников
type UserService interface {
	RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (*model.User, error)
}

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	UserService  UserService
	ClaimService ClaimService
	StateManager StateManager
	Location     *time.Location // пояс для подписей кнопок
	Logger       *zap.Logger
}
