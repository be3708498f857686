package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/sessions_bot/internal/controller/handlers"
	"github.com/Freeeeeet/sessions_bot/internal/controller/state"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Services зависимости контроллера
type Services struct {
	Users    *service.UserService
	Claims   *service.ClaimService
	Display  *service.DisplaySynchronizer
	IsAdmin  func(telegramID int64) bool
	Location *time.Location
}

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(botInstance *bot.Bot, services Services, logger *zap.Logger) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager()

	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		services.Users,
		services.Claims,
		services.Display,
		stateManager,
		services.IsAdmin,
		services.Location,
		logger,
	)

	// Создаём callback handler с зависимостями
	callbackHandler := callbacks.NewHandler(
		services.Users,
		services.Claims,
		state.NewAdapter(stateManager),
		services.Location,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	commands := map[string]handlers.Func{
		"/start":      c.handlers.HandleStart,
		"/help":       c.handlers.HandleHelp,
		"/sessions":   c.handlers.HandleSessions,
		"/mysessions": c.handlers.HandleMySessions,
		"/board":      c.handlers.HandleBoard,
		"/cancel":     c.handlers.HandleCancel,
	}
	for pattern, fn := range commands {
		c.bot.RegisterHandler(bot.HandlerTypeMessageText, pattern, bot.MatchTypeExact, handlers.Bot(fn))
	}

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "sessions", Description: "📅 Display the sessions for this week"},
		{Command: "mysessions", Description: "🗓 Sessions you have claimed"},
		{Command: "board", Description: "🖼 Weekly board as a picture"},
		{Command: "cancel", Description: "❌ Cancel your current selection"},
		{Command: "help", Description: "❓ Help"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
