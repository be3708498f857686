package handlers

import (
	"context"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/sessions_bot/internal/controller/state"
	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Sender часть API бота для команд: сообщения и картинки
type Sender interface {
	common.Messenger
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
}

// UserService регистрация участников
type UserService interface {
	ResolveActor(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (int64, error)
}

// ClaimService роли участника
type ClaimService interface {
	MyClaims(ctx context.Context, actor int64) ([]*model.Session, error)
}

// Display публикация и чтение расписания недели
type Display interface {
	Publish(ctx context.Context, chatID int64) (*model.WeekView, *model.DisplayPointer, error)
	BuildView(ctx context.Context) (*model.WeekView, error)
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService  UserService
	claimService ClaimService
	display      Display
	stateManager *state.Manager
	isAdmin      func(telegramID int64) bool
	location     *time.Location
	logger       *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService UserService,
	claimService ClaimService,
	display Display,
	stateManager *state.Manager,
	isAdmin func(telegramID int64) bool,
	location *time.Location,
	logger *zap.Logger,
) *Handlers {
	if isAdmin == nil {
		isAdmin = func(int64) bool { return true }
	}
	return &Handlers{
		userService:  userService,
		claimService: claimService,
		display:      display,
		stateManager: stateManager,
		isAdmin:      isAdmin,
		location:     location,
		logger:       logger,
	}
}

// Func обработчик команды, которому достаточно Sender
type Func func(ctx context.Context, s Sender, update *models.Update)

// Bot приводит обработчик к сигнатуре go-telegram/bot
func Bot(fn Func) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		fn(ctx, b, update)
	}
}
