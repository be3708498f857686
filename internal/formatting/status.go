package formatting

import "github.com/Freeeeeet/sessions_bot/internal/model"

// StatusGlyph возвращает индикатор слота: есть занятые роли или нет
func StatusGlyph(claims int) string {
	if claims > 0 {
		return model.GlyphClaimed
	}
	return model.GlyphUnclaimed
}

// RoleEmoji возвращает emoji для роли
func RoleEmoji(role model.Role) string {
	switch role {
	case model.RoleHost:
		return "🎙"
	case model.RoleTrainer:
		return "📋"
	case model.RoleAssistant:
		return "🤝"
	default:
		return "❓"
	}
}
