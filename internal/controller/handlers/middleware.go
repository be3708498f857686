package handlers

import (
	"context"

	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/common"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requireUser регистрирует отправителя команды и возвращает его actor id.
// При ошибке отвечает сам и возвращает false
func (h *Handlers) requireUser(ctx context.Context, s Sender, update *models.Update) (int64, bool) {
	if update.Message == nil || update.Message.From == nil {
		return 0, false
	}

	from := update.Message.From
	actor, err := h.userService.ResolveActor(ctx, from.ID, from.Username, from.FirstName, from.LastName, from.LanguageCode)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Int64("telegram_id", from.ID), zap.Error(err))
		h.reply(ctx, s, update, common.ErrorMessage(common.ErrUserRegistration))
		return 0, false
	}
	return actor, true
}

// requireAdmin проверяет что команду вызвал участник из SESSIONS_ADMIN_IDS
func (h *Handlers) requireAdmin(ctx context.Context, s Sender, update *models.Update) bool {
	actor, ok := h.requireUser(ctx, s, update)
	if !ok {
		return false
	}

	if !h.isAdmin(actor) {
		h.logger.Warn("Sessions command denied", zap.Int64("telegram_id", actor))
		h.reply(ctx, s, update, common.ErrorMessage(common.ErrNotAllowed))
		return false
	}
	return true
}

// reply отвечает на команду и логирует если не удалось
func (h *Handlers) reply(ctx context.Context, s Sender, update *models.Update, text string) {
	r := common.NewMessageResponder(s, update.Message.Chat.ID, update.Message.ID)
	if _, err := r.Reply(ctx, text, nil); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", update.Message.Chat.ID),
			zap.Error(err),
		)
	}
}
