package common

import (
	"context"

	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/callbacktypes"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// WithActor создаёт HandlerContext и регистрирует пользователя.
// При ошибке отвечает пользователю сам. Callback подтверждается в любом случае
func WithActor(
	ctx context.Context,
	m Messenger,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	handler func(*HandlerContext),
) {
	hc := NewHandlerContext(ctx, m, callback, h)
	defer hc.Answer()

	if err := hc.RegisterActor(); err != nil {
		h.Logger.Error("Failed to register user",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
		_ = hc.AnswerAlert(ErrorMessage(ErrUserRegistration))
		return
	}

	handler(hc)
}

// WithSelection как WithActor, но дополнительно проверяет владельца сообщения с кнопками
func WithSelection(
	ctx context.Context,
	m Messenger,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
	handler func(*HandlerContext),
) {
	WithActor(ctx, m, callback, h, func(hc *HandlerContext) {
		if err := hc.RequireSelection(); err != nil {
			h.Logger.Debug("Selection check failed",
				zap.Int64("telegram_id", hc.TelegramID),
				zap.Int("message_id", hc.MessageID),
				zap.Error(err))
			_ = hc.AnswerAlert(ErrorMessage(err))
			return
		}
		handler(hc)
	})
}
