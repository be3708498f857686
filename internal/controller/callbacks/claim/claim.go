// Package claim обрабатывает кнопки выбора слота и роли
package claim

import (
	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/sessions_bot/internal/controller/state"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleClaim нажатие "Claim/Unclaim Session" под расписанием.
// Отправляет участнику отдельное сообщение с кнопками слотов
func HandleClaim(hc *common.HandlerContext) {
	h := hc.Handler

	result, err := h.ClaimService.Begin(hc.Ctx, hc.TelegramID)
	if err != nil {
		h.Logger.Error("Failed to list claimable sessions",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
		_ = hc.AnswerAlert(common.MsgProcessingFailed)
		return
	}

	if result.Outcome == service.OutcomeNoSlots {
		_ = hc.AnswerAlert(common.MsgNoSlots)
		return
	}

	text := common.MsgChooseSlot + "\n<i>for " + common.Mention(hc.From) + "</i>"
	messageID, err := hc.SendMessage(text, keyboard.TimeOptions(result.Options, h.Location))
	if err != nil {
		h.Logger.Error("Failed to send time options",
			zap.Int64("chat_id", hc.ChatID),
			zap.Error(err))
		_ = hc.AnswerAlert(common.MsgProcessingFailed)
		return
	}

	h.StateManager.StartSelection(hc.TelegramID, hc.ChatID, messageID)

	h.Logger.Info("Claim selection started",
		zap.Int64("telegram_id", hc.TelegramID),
		zap.Int("options", len(result.Options)),
		zap.Time("day", result.Day))
}

// HandleTimeSelect выбор слота: снимает роль участника или предлагает свободные роли
func HandleTimeSelect(hc *common.HandlerContext) {
	h := hc.Handler

	slotID, err := keyboard.ParseTime(hc.Data)
	if err != nil {
		h.Logger.Warn("Invalid time callback", zap.String("data", hc.Data), zap.Error(err))
		_ = hc.AnswerAlert(common.ErrorMessage(common.ErrInvalidFormat))
		return
	}

	result, err := h.ClaimService.ChooseSlot(hc.Ctx, hc.TelegramID, slotID)
	if err != nil {
		h.Logger.Error("Failed to choose session slot",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.String("slot_id", slotID.String()),
			zap.Error(err))
	}

	if result.Outcome == service.OutcomeChooseRole {
		hc.SetState(callbacktypes.UserState(state.StateChoosingRole))
		hc.SetData(state.KeySlotID, slotID.String())
		editOrLog(hc, common.OutcomeMessage(result), keyboard.RoleOptions(slotID, result.Roles))
		return
	}

	finish(hc, result)
}

// HandleRoleSelect выбор роли: фиксирует её за участником
func HandleRoleSelect(hc *common.HandlerContext) {
	h := hc.Handler

	slotID, role, err := keyboard.ParseRole(hc.Data)
	if err != nil {
		h.Logger.Warn("Invalid role callback", zap.String("data", hc.Data), zap.Error(err))
		_ = hc.AnswerAlert(common.ErrorMessage(common.ErrInvalidFormat))
		return
	}

	result, err := h.ClaimService.ChooseRole(hc.Ctx, hc.TelegramID, slotID, role)
	if err != nil {
		h.Logger.Error("Failed to claim session role",
			zap.Int64("telegram_id", hc.TelegramID),
			zap.String("slot_id", slotID.String()),
			zap.String("role", role),
			zap.Error(err))
	}

	finish(hc, result)
}

// finish показывает итог в сообщении с кнопками и закрывает выбор
func finish(hc *common.HandlerContext, result *service.ClaimResult) {
	hc.ClearState()
	text := common.OutcomeMessage(result)
	editOrLog(hc, text, keyboard.Empty())
	_ = hc.AnswerAlert(text)
}

func editOrLog(hc *common.HandlerContext, text string, kb *models.InlineKeyboardMarkup) {
	if err := hc.EditMessage(text, kb); err != nil {
		hc.Handler.Logger.Warn("Failed to edit options message",
			zap.Int64("chat_id", hc.ChatID),
			zap.Int("message_id", hc.MessageID),
			zap.Error(err))
	}
}
