package common

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/sessions_bot/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrNoMessage        = errors.New("no message in callback")
	ErrInvalidFormat    = errors.New("invalid callback format")
	ErrNotYourSelection = errors.New("options message belongs to another user")
	ErrNotAllowed       = errors.New("user is not allowed to manage sessions")
	ErrUserRegistration = errors.New("user registration failed")
	ErrPublishFailed    = errors.New("sessions display could not be published")
)

// Тексты ответов участнику
const (
	MsgNoSlots          = "No upcoming sessions are available to claim."
	MsgChooseSlot       = "Select a time to claim below:"
	MsgNotFound         = "This session no longer exists."
	MsgAlreadyStarted   = "This session has already started."
	MsgUnclaimed        = "You have unclaimed this session."
	MsgAllClaimed       = "All roles for this session have been claimed."
	MsgChooseRole       = "Select your role for this session:"
	MsgRoleTaken        = "This role has already been claimed for this session."
	MsgAlreadyHolding   = "You already hold a role in this session."
	MsgInvalidRole      = "That role does not exist."
	MsgClaimedFormat    = "You have claimed this session as %s."
	MsgProcessingFailed = "An error occurred while processing your request."
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoMessage):
		return "❌ This message can no longer be used."
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Invalid button data."
	case errors.Is(err, ErrNotYourSelection):
		return "Press \"Claim/Unclaim Session\" to start your own selection."
	case errors.Is(err, ErrNotAllowed):
		return "❌ You are not allowed to manage sessions."
	case errors.Is(err, ErrUserRegistration):
		return "❌ Could not register you. Please try again later."
	case errors.Is(err, ErrPublishFailed):
		return "There was an error while fetching the sessions. Please try again."
	case errors.Is(err, service.ErrSlotNotFound):
		return MsgNotFound
	case errors.Is(err, service.ErrAlreadyStarted):
		return MsgAlreadyStarted
	case errors.Is(err, service.ErrRoleTaken):
		return MsgRoleTaken
	case errors.Is(err, service.ErrAlreadyHolding):
		return MsgAlreadyHolding
	case errors.Is(err, service.ErrAllClaimed):
		return MsgAllClaimed
	case errors.Is(err, service.ErrInvalidRole):
		return MsgInvalidRole
	default:
		return MsgProcessingFailed
	}
}

// OutcomeMessage возвращает текст для результата шага выбора
func OutcomeMessage(result *service.ClaimResult) string {
	switch result.Outcome {
	case service.OutcomeNoSlots:
		return MsgNoSlots
	case service.OutcomeChooseSlot:
		return MsgChooseSlot
	case service.OutcomeUnclaimed:
		return MsgUnclaimed
	case service.OutcomeChooseRole:
		return MsgChooseRole
	case service.OutcomeClaimed:
		if result.Session != nil && result.Session.Role != nil {
			return fmt.Sprintf(MsgClaimedFormat, *result.Session.Role)
		}
		return fmt.Sprintf(MsgClaimedFormat, "a participant")
	case service.OutcomeFailed:
		return MsgProcessingFailed
	default:
		return ErrorMessage(result.Err())
	}
}
