package common

import (
	"context"

	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/callbacktypes"
	"github.com/go-telegram/bot/models"
)

// HandlerContext содержит общие данные для обработки callback
// Это избавляет от дублирования кода получения пользователя, сообщения и т.д.
type HandlerContext struct {
	Ctx        context.Context
	Responder  Responder
	Handler    *callbacktypes.Handler
	From       models.User
	Data       string
	TelegramID int64
	ChatID     int64
	MessageID  int
}

// NewHandlerContext создаёт новый контекст обработчика
func NewHandlerContext(
	ctx context.Context,
	m Messenger,
	callback *models.CallbackQuery,
	h *callbacktypes.Handler,
) *HandlerContext {
	chatID, messageID := CallbackMessageRef(callback)

	return &HandlerContext{
		Ctx:        ctx,
		Responder:  NewCallbackResponder(m, callback.ID, chatID, messageID),
		Handler:    h,
		From:       callback.From,
		Data:       callback.Data,
		TelegramID: callback.From.ID,
		ChatID:     chatID,
		MessageID:  messageID,
	}
}

// RegisterActor регистрирует нажавшего пользователя, чтобы его имя попало в расписание
func (hc *HandlerContext) RegisterActor() error {
	_, err := hc.Handler.UserService.RegisterUser(
		hc.Ctx,
		hc.From.ID,
		hc.From.Username,
		hc.From.FirstName,
		hc.From.LastName,
		hc.From.LanguageCode,
	)
	return err
}

// RequireSelection проверяет что сообщение с кнопками принадлежит пользователю
func (hc *HandlerContext) RequireSelection() error {
	if hc.MessageID == 0 {
		return ErrNoMessage
	}
	if !hc.Handler.StateManager.OwnsMessage(hc.TelegramID, hc.MessageID) {
		return ErrNotYourSelection
	}
	return nil
}

// Answer отвечает на callback query без alert
func (hc *HandlerContext) Answer() {
	hc.Responder.Finish(hc.Ctx)
}

// AnswerAlert отвечает на callback query с alert
func (hc *HandlerContext) AnswerAlert(text string) error {
	return hc.Responder.Notify(hc.Ctx, text)
}

// EditMessage редактирует сообщение с кнопками
func (hc *HandlerContext) EditMessage(text string, keyboard *models.InlineKeyboardMarkup) error {
	return hc.Responder.EditReply(hc.Ctx, text, keyboard)
}

// SendMessage отправляет новое сообщение в чат
func (hc *HandlerContext) SendMessage(text string, keyboard *models.InlineKeyboardMarkup) (int, error) {
	return hc.Responder.Reply(hc.Ctx, text, keyboard)
}

// ClearState очищает состояние пользователя
func (hc *HandlerContext) ClearState() {
	hc.Handler.StateManager.ClearState(hc.TelegramID)
}

// SetState устанавливает состояние пользователя
func (hc *HandlerContext) SetState(state callbacktypes.UserState) {
	hc.Handler.StateManager.SetState(hc.TelegramID, state)
}

// SetData устанавливает данные в state
func (hc *HandlerContext) SetData(key string, value interface{}) {
	hc.Handler.StateManager.SetData(hc.TelegramID, key, value)
}

// GetData получает данные из state
func (hc *HandlerContext) GetData(key string) (interface{}, bool) {
	return hc.Handler.StateManager.GetData(hc.TelegramID, key)
}
