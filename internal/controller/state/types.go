package state

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Состояния выбора слота и роли
	StateChoosingSlot UserState = "choosing_slot"
	StateChoosingRole UserState = "choosing_role"
)

// Ключи временных данных
const (
	KeyOptionsMessageID = "options_message_id" // сообщение с кнопками выбора
	KeyOptionsChatID    = "options_chat_id"    // чат этого сообщения
	KeySlotID           = "slot_id"            // выбранный слот
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]interface{} // Временные данные для текущего диалога
}
