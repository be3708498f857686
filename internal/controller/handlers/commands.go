package handlers

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/sessions_bot/internal/controller/state"
	"github.com/Freeeeeet/sessions_bot/internal/formatting"
	"github.com/Freeeeeet/sessions_bot/internal/render"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const (
	helpText = "📚 <b>Training sessions</b>\n\n" +
		"/sessions - Display the sessions for this week\n" +
		"/mysessions - Sessions you have claimed\n" +
		"/board - Weekly board as a picture\n" +
		"/cancel - Cancel your current selection\n" +
		"/help - Show this help\n\n" +
		"Press <b>" + keyboard.ClaimButtonText + "</b> under the schedule to claim or unclaim a role."

	msgNothingToCancel    = "❌ Nothing to cancel."
	msgSelectionCancelled = "✅ Selection cancelled."
	msgPublishedFormat    = "Sessions for %s have been displayed below."
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, s Sender, update *models.Update) {
	actor, ok := h.requireUser(ctx, s, update)
	if !ok {
		return
	}

	from := update.Message.From
	h.logger.Info("User started bot", zap.Int64("telegram_id", actor))

	h.reply(ctx, s, update, fmt.Sprintf("👋 Hi, %s!\n\n%s", common.Mention(*from), helpText))
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, s Sender, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.reply(ctx, s, update, helpText)
}

// HandleSessions публикует расписание недели новым сообщением и запоминает его
func (h *Handlers) HandleSessions(ctx context.Context, s Sender, update *models.Update) {
	if !h.requireAdmin(ctx, s, update) {
		return
	}

	chatID := update.Message.Chat.ID
	view, _, err := h.display.Publish(ctx, chatID)
	if err != nil {
		h.logger.Error("Failed to publish sessions",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		h.reply(ctx, s, update, common.ErrorMessage(common.ErrPublishFailed))
		return
	}

	h.reply(ctx, s, update, fmt.Sprintf(msgPublishedFormat, formatting.Pluralize(len(view.Days), "day", "days")))
}

// HandleMySessions показывает роли участника в окне недели
func (h *Handlers) HandleMySessions(ctx context.Context, s Sender, update *models.Update) {
	actor, ok := h.requireUser(ctx, s, update)
	if !ok {
		return
	}

	claims, err := h.claimService.MyClaims(ctx, actor)
	if err != nil {
		h.logger.Error("Failed to list claims", zap.Int64("telegram_id", actor), zap.Error(err))
		h.reply(ctx, s, update, common.MsgProcessingFailed)
		return
	}

	h.reply(ctx, s, update, formatting.FormatMyClaims(claims, h.location))
}

// HandleBoard отправляет картинку с окном недели
func (h *Handlers) HandleBoard(ctx context.Context, s Sender, update *models.Update) {
	if !h.requireAdmin(ctx, s, update) {
		return
	}

	chatID := update.Message.Chat.ID
	view, err := h.display.BuildView(ctx)
	if err != nil {
		h.logger.Error("Failed to build week view", zap.Error(err))
		h.reply(ctx, s, update, common.ErrorMessage(common.ErrPublishFailed))
		return
	}

	img, err := render.WeekBoard(view, h.location)
	if err != nil {
		h.logger.Error("Failed to render week board", zap.Error(err))
		h.reply(ctx, s, update, common.MsgProcessingFailed)
		return
	}

	_, err = s.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: "week.png", Data: bytes.NewReader(img)},
		Caption: fmt.Sprintf("🗓 %d claimed role(s) this week", view.ClaimCount()),
	})
	if err != nil {
		h.logger.Error("Failed to send week board", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// HandleCancel обрабатывает команду /cancel - отмена текущего выбора слота
func (h *Handlers) HandleCancel(ctx context.Context, s Sender, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.reply(ctx, s, update, msgNothingToCancel)
		return
	}

	// Гасим кнопки сообщения с выбором в том чате, где оно было отправлено
	if chatID, messageID, ok := h.stateManager.OptionsMessage(telegramID); ok {
		_, err := s.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        msgSelectionCancelled,
			ReplyMarkup: keyboard.Empty(),
		})
		if err != nil && !common.IsMessageNotModifiedError(err) {
			h.logger.Warn("Failed to close options message",
				zap.Int64("telegram_id", telegramID),
				zap.Int64("chat_id", chatID),
				zap.Int("message_id", messageID),
				zap.Error(err))
		}
	}

	h.stateManager.ClearState(telegramID)
	h.reply(ctx, s, update, msgSelectionCancelled)
}
