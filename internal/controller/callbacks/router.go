package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/claim"
	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/common/keyboard"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, m common.Messenger, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	switch {
	case data == keyboard.ClaimData:
		common.WithActor(ctx, m, callback, h, claim.HandleClaim)
	case strings.HasPrefix(data, keyboard.TimePrefix):
		common.WithSelection(ctx, m, callback, h, claim.HandleTimeSelect)
	case strings.HasPrefix(data, keyboard.RolePrefix):
		common.WithSelection(ctx, m, callback, h, claim.HandleRoleSelect)
	default:
		h.Logger.Warn("Unknown callback",
			zap.String("data", data),
			zap.Int64("user_id", callback.From.ID))
		// Подтверждаем, чтобы у пользователя не висели "часики"
		_, _ = m.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: callback.ID})
	}
}
