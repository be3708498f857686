package common

import (
	"strings"

	"github.com/Freeeeeet/sessions_bot/internal/formatting"
	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/go-telegram/bot/models"
)

// GetMessageFromCallback извлекает сообщение из callback query
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// CallbackMessageRef возвращает чат и id сообщения, на кнопку которого нажали.
// Работает и для сообщений, которые бот уже не может прочитать
func CallbackMessageRef(callback *models.CallbackQuery) (chatID int64, messageID int) {
	if msg := GetMessageFromCallback(callback); msg != nil {
		return msg.Chat.ID, msg.ID
	}
	if inaccessible := callback.Message.InaccessibleMessage; inaccessible != nil {
		return inaccessible.Chat.ID, inaccessible.MessageID
	}
	return 0, 0
}

// IsMessageNotModifiedError проверяет ответ Telegram "message is not modified"
func IsMessageNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

// Mention упоминание пользователя Telegram в HTML-разметке
func Mention(u models.User) string {
	user := model.User{TelegramID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
	return formatting.Mention(u.ID, user.DisplayName())
}
