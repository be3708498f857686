package keyboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/formatting"
	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

// Форматы callback data кнопок расписания
const (
	ClaimData  = "session-claim"
	TimePrefix = "session-time:" // session-time:<slot uuid>
	RolePrefix = "session-role:" // session-role:<slot uuid>:<Role>

	ClaimButtonText = "Claim/Unclaim Session"
)

// Claim клавиатура опубликованного расписания с единственной кнопкой
func Claim() *models.InlineKeyboardMarkup {
	return NewBuilder().Row(Button(ClaimButtonText, ClaimData)).Build()
}

// TimeOptions кнопки выбора слота, по одной в ряд
func TimeOptions(options []service.SlotOption, loc *time.Location) *models.InlineKeyboardMarkup {
	kb := NewBuilder()
	for _, o := range options {
		kb.Row(Button(optionText(o, loc), TimePrefix+o.ID.String()))
	}
	return kb.Build()
}

// RoleOptions кнопки выбора свободной роли
func RoleOptions(slotID uuid.UUID, roles []model.Role) *models.InlineKeyboardMarkup {
	row := make([]models.InlineKeyboardButton, 0, len(roles))
	for _, role := range roles {
		row = append(row, Button(
			formatting.RoleEmoji(role)+" "+string(role),
			fmt.Sprintf("%s%s:%s", RolePrefix, slotID, role),
		))
	}
	return NewBuilder().Row(row...).Build()
}

// ParseTime разбирает session-time:<uuid>
func ParseTime(data string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(data, TimePrefix)
	if !ok {
		return uuid.Nil, fmt.Errorf("unexpected callback data %q", data)
	}
	return uuid.Parse(raw)
}

// ParseRole разбирает session-role:<uuid>:<Role>
func ParseRole(data string) (uuid.UUID, string, error) {
	raw, ok := strings.CutPrefix(data, RolePrefix)
	if !ok {
		return uuid.Nil, "", fmt.Errorf("unexpected callback data %q", data)
	}
	rawID, role, ok := strings.Cut(raw, ":")
	if !ok || role == "" {
		return uuid.Nil, "", fmt.Errorf("role missing in callback data %q", data)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id, role, nil
}

func optionText(o service.SlotOption, loc *time.Location) string {
	text := fmt.Sprintf("%s · %s", o.Label, formatting.FormatTime(o.StartsAt.In(loc)))
	if o.HeldRole != nil {
		return fmt.Sprintf("✅ %s (unclaim %s)", text, *o.HeldRole)
	}
	return fmt.Sprintf("%s %s (%d/%d)", formatting.StatusGlyph(o.Claimed), text, o.Claimed, len(model.Roles()))
}
