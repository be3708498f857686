package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/sessions_bot/internal/formatting"
	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// TelegramPublisher рисует расписание недели сообщением Telegram с кнопкой "Claim/Unclaim Session"
type TelegramPublisher struct {
	m   common.Messenger
	now func() time.Time
}

func NewTelegramPublisher(m common.Messenger) *TelegramPublisher {
	return &TelegramPublisher{m: m, now: time.Now}
}

// Publish отправляет новое сообщение с расписанием
func (p *TelegramPublisher) Publish(ctx context.Context, chatID int64, view *model.WeekView) (*model.DisplayPointer, error) {
	msg, err := p.m.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        formatting.FormatWeekView(view),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: keyboard.Claim(),
	})
	if err != nil {
		return nil, fmt.Errorf("send sessions message: %w", err)
	}

	return &model.DisplayPointer{
		ArtifactID:  msg.ID,
		ContainerID: chatID,
		UpdatedAt:   p.now(),
	}, nil
}

// Edit заменяет текст опубликованного сообщения. Неизменённый текст не считается ошибкой
func (p *TelegramPublisher) Edit(ctx context.Context, pointer model.DisplayPointer, view *model.WeekView) error {
	_, err := p.m.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      pointer.ContainerID,
		MessageID:   pointer.ArtifactID,
		Text:        formatting.FormatWeekView(view),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: keyboard.Claim(),
	})
	if err != nil && !common.IsMessageNotModifiedError(err) {
		return fmt.Errorf("edit sessions message: %w", err)
	}
	return nil
}

var _ service.ArtifactPublisher = (*TelegramPublisher)(nil)
