package common

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Messenger часть API бота, которой пользуются обработчики
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// Responder отвечает пользователю независимо от того, пришла команда или нажатие кнопки
type Responder interface {
	// Reply отправляет новое сообщение и возвращает его id
	Reply(ctx context.Context, text string, kb *models.InlineKeyboardMarkup) (int, error)
	// EditReply заменяет текст сообщения, к которому относится ответ
	EditReply(ctx context.Context, text string, kb *models.InlineKeyboardMarkup) error
	// Notify короткое уведомление: всплывающее окно для кнопки, сообщение для команды
	Notify(ctx context.Context, text string) error
	// Finish завершает обработку (подтверждает callback, если на него ещё не ответили)
	Finish(ctx context.Context)
}

// CallbackResponder отвечает на нажатие inline кнопки
type CallbackResponder struct {
	m          Messenger
	callbackID string
	chatID     int64
	messageID  int
	answered   bool
}

func NewCallbackResponder(m Messenger, callbackID string, chatID int64, messageID int) *CallbackResponder {
	return &CallbackResponder{m: m, callbackID: callbackID, chatID: chatID, messageID: messageID}
}

func (r *CallbackResponder) Reply(ctx context.Context, text string, kb *models.InlineKeyboardMarkup) (int, error) {
	msg, err := r.m.SendMessage(ctx, sendParams(r.chatID, text, kb, 0))
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// EditReply редактирует сообщение, на кнопку которого нажали
func (r *CallbackResponder) EditReply(ctx context.Context, text string, kb *models.InlineKeyboardMarkup) error {
	if r.messageID == 0 {
		return ErrNoMessage
	}
	return editText(ctx, r.m, r.chatID, r.messageID, text, kb)
}

func (r *CallbackResponder) Notify(ctx context.Context, text string) error {
	r.answered = true
	_, err := r.m.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: r.callbackID,
		Text:            text,
		ShowAlert:       text != "",
	})
	return err
}

func (r *CallbackResponder) Finish(ctx context.Context) {
	if !r.answered {
		_ = r.Notify(ctx, "")
	}
}

// MessageResponder отвечает на команду в чате
type MessageResponder struct {
	m       Messenger
	chatID  int64
	replyTo int
	lastID  int
}

func NewMessageResponder(m Messenger, chatID int64, replyTo int) *MessageResponder {
	return &MessageResponder{m: m, chatID: chatID, replyTo: replyTo}
}

func (r *MessageResponder) Reply(ctx context.Context, text string, kb *models.InlineKeyboardMarkup) (int, error) {
	msg, err := r.m.SendMessage(ctx, sendParams(r.chatID, text, kb, r.replyTo))
	if err != nil {
		return 0, err
	}
	r.lastID = msg.ID
	return msg.ID, nil
}

// EditReply редактирует последний ответ, а если его нет, отправляет новый
func (r *MessageResponder) EditReply(ctx context.Context, text string, kb *models.InlineKeyboardMarkup) error {
	if r.lastID == 0 {
		_, err := r.Reply(ctx, text, kb)
		return err
	}
	return editText(ctx, r.m, r.chatID, r.lastID, text, kb)
}

func (r *MessageResponder) Notify(ctx context.Context, text string) error {
	_, err := r.Reply(ctx, text, nil)
	return err
}

func (r *MessageResponder) Finish(context.Context) {}

func sendParams(chatID int64, text string, kb *models.InlineKeyboardMarkup, replyTo int) *bot.SendMessageParams {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	if replyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo, AllowSendingWithoutReply: true}
	}
	return params
}

func editText(ctx context.Context, m Messenger, chatID int64, messageID int, text string, kb *models.InlineKeyboardMarkup) error {
	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}

	_, err := m.EditMessageText(ctx, params)

	// Игнорируем ошибку "message is not modified" - это не настоящая ошибка
	if IsMessageNotModifiedError(err) {
		return nil
	}
	return err
}

var (
	_ Responder = (*CallbackResponder)(nil)
	_ Responder = (*MessageResponder)(nil)
)
