package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/clock"
	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// refreshTimeout ограничивает обновление расписания после шага
const refreshTimeout = 15 * time.Second

// Outcome результат шага выбора слота/роли
type Outcome string

const (
	OutcomeNoSlots        Outcome = "no_slots"
	OutcomeChooseSlot     Outcome = "choose_slot"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeAlreadyStarted Outcome = "already_started"
	OutcomeUnclaimed      Outcome = "unclaimed"
	OutcomeAllClaimed     Outcome = "all_claimed"
	OutcomeChooseRole     Outcome = "choose_role"
	OutcomeInvalidRole    Outcome = "invalid_role"
	OutcomeRoleTaken      Outcome = "role_taken"
	OutcomeAlreadyHolding Outcome = "already_holding"
	OutcomeClaimed        Outcome = "claimed"
	OutcomeFailed         Outcome = "failed"
)

// SlotOption слот, который можно выбрать на первом шаге
type SlotOption struct {
	ID       uuid.UUID
	Label    string
	StartsAt time.Time
	Claimed  int
	HeldRole *model.Role // роль, которую участник уже держит в слоте
}

// ClaimResult итог шага
type ClaimResult struct {
	Outcome Outcome
	Day     time.Time      // OutcomeChooseSlot: за какой день показаны слоты
	Options []SlotOption   // OutcomeChooseSlot
	SlotID  uuid.UUID      // выбранный слот
	Slot    model.SlotKey  // выбранный слот
	Roles   []model.Role   // OutcomeChooseRole: свободные роли
	Session *model.Session // затронутая запись (claimed/unclaimed)
}

// Terminal проверяет что сессия выбора завершена
func (r *ClaimResult) Terminal() bool {
	return r.Outcome != OutcomeChooseSlot && r.Outcome != OutcomeChooseRole
}

// Err возвращает ошибку, соответствующую неуспешному исходу
func (r *ClaimResult) Err() error {
	switch r.Outcome {
	case OutcomeNotFound:
		return ErrSlotNotFound
	case OutcomeAlreadyStarted:
		return ErrAlreadyStarted
	case OutcomeAllClaimed:
		return ErrAllClaimed
	case OutcomeInvalidRole:
		return ErrInvalidRole
	case OutcomeRoleTaken:
		return ErrRoleTaken
	case OutcomeAlreadyHolding:
		return ErrAlreadyHolding
	default:
		return nil
	}
}

// ClaimService ведёт участника через выбор слота и роли.
// Состояние между шагами хранит только UI: записи появляются лишь при фиксации роли.
type ClaimService struct {
	store     SessionStore
	clock     *clock.Clock
	generator *SlotGenerator
	refresher Refresher
	logger    *zap.Logger
}

func NewClaimService(store SessionStore, generator *SlotGenerator, refresher Refresher, logger *zap.Logger) *ClaimService {
	return &ClaimService{
		store:     store,
		clock:     generator.Clock(),
		generator: generator,
		refresher: refresher,
		logger:    logger,
	}
}

// Begin возвращает слоты, доступные участнику для claim/unclaim.
// Если все слоты сегодня уже начались, показывается следующий день.
func (s *ClaimService) Begin(ctx context.Context, actor int64) (*ClaimResult, error) {
	now := s.clock.Now()
	day := s.clock.Today()

	records, err := s.dayRecords(ctx, day)
	if err != nil {
		return failed(err)
	}

	if allStarted(records, now) {
		day = s.clock.AddDays(day, 1)
		records, err = s.dayRecords(ctx, day)
		if err != nil {
			return failed(err)
		}
	}

	var options []SlotOption
	for _, slot := range GroupSlots(records) {
		if !slot.Key.StartsAt.After(now) {
			continue
		}

		held := slot.HeldBy(actor)
		if slot.Full() && held == nil {
			continue
		}

		option := SlotOption{
			ID:       slot.ID,
			Label:    slot.Key.TimeLabel,
			StartsAt: slot.Key.StartsAt,
			Claimed:  len(slot.Claims),
		}
		if held != nil {
			option.HeldRole = held.Role
		}
		options = append(options, option)
	}

	if len(options) == 0 {
		return &ClaimResult{Outcome: OutcomeNoSlots, Day: day}, nil
	}

	return &ClaimResult{Outcome: OutcomeChooseSlot, Day: day, Options: options}, nil
}

// ChooseSlot обрабатывает выбор слота: снимает роль участника если она есть,
// иначе возвращает список свободных ролей.
func (s *ClaimService) ChooseSlot(ctx context.Context, actor int64, slotID uuid.UUID) (*ClaimResult, error) {
	defer s.refresh(ctx)

	session, result, err := s.loadFutureSlot(ctx, slotID)
	if result != nil || err != nil {
		return result, err
	}
	key := session.Key()

	claims, err := s.store.ListClaimed(ctx, key)
	if err != nil {
		return failed(fmt.Errorf("list claims: %w", err))
	}

	for _, claim := range claims {
		if claim.ClaimedBy == nil || *claim.ClaimedBy != actor {
			continue
		}

		if err := s.store.Release(ctx, claim.ID); err != nil {
			return failed(fmt.Errorf("release claim: %w", err))
		}

		s.logger.Info("Session unclaimed",
			zap.String("session_id", claim.ID.String()),
			zap.String("time", key.TimeLabel),
			zap.Time("starts_at", key.StartsAt),
			zap.Int64("claimant", actor),
		)
		return &ClaimResult{Outcome: OutcomeUnclaimed, SlotID: slotID, Slot: key, Session: claim}, nil
	}

	taken := make(map[model.Role]bool, len(claims))
	for _, claim := range claims {
		if claim.Role != nil {
			taken[*claim.Role] = true
		}
	}

	var roles []model.Role
	for _, role := range model.Roles() {
		if !taken[role] {
			roles = append(roles, role)
		}
	}

	if len(roles) == 0 {
		return &ClaimResult{Outcome: OutcomeAllClaimed, SlotID: slotID, Slot: key}, nil
	}

	return &ClaimResult{Outcome: OutcomeChooseRole, SlotID: slotID, Slot: key, Roles: roles}, nil
}

// ChooseRole фиксирует роль за участником после повторной проверки что её не заняли
func (s *ClaimService) ChooseRole(ctx context.Context, actor int64, slotID uuid.UUID, roleName string) (*ClaimResult, error) {
	defer s.refresh(ctx)

	role, ok := model.ParseRole(roleName)
	if !ok {
		return &ClaimResult{Outcome: OutcomeInvalidRole, SlotID: slotID}, nil
	}

	session, result, err := s.loadFutureSlot(ctx, slotID)
	if result != nil || err != nil {
		return result, err
	}
	key := session.Key()

	existing, err := s.store.FindClaim(ctx, key, role)
	if err != nil {
		return failed(fmt.Errorf("find claim: %w", err))
	}
	if existing != nil {
		return &ClaimResult{Outcome: OutcomeRoleTaken, SlotID: slotID, Slot: key}, nil
	}

	claim := model.NewClaim(key, role, actor)
	err = s.store.Create(ctx, claim)
	switch {
	case errors.Is(err, ErrRoleTaken):
		return &ClaimResult{Outcome: OutcomeRoleTaken, SlotID: slotID, Slot: key}, nil
	case errors.Is(err, ErrAlreadyHolding):
		return &ClaimResult{Outcome: OutcomeAlreadyHolding, SlotID: slotID, Slot: key}, nil
	case err != nil:
		return failed(fmt.Errorf("create claim: %w", err))
	}

	s.logger.Info("Session claimed",
		zap.String("session_id", claim.ID.String()),
		zap.String("time", key.TimeLabel),
		zap.Time("starts_at", key.StartsAt),
		zap.String("role", string(role)),
		zap.Int64("claimant", actor),
	)

	return &ClaimResult{Outcome: OutcomeClaimed, SlotID: slotID, Slot: key, Session: claim}, nil
}

// MyClaims возвращает роли участника в текущем окне недели
func (s *ClaimService) MyClaims(ctx context.Context, actor int64) ([]*model.Session, error) {
	window := s.generator.Window()
	from, _ := s.clock.DayBounds(window[0])
	_, to := s.clock.DayBounds(window[len(window)-1])

	claims, err := s.store.ListClaimedBy(ctx, actor, from, to)
	if err != nil {
		return nil, fmt.Errorf("list claims by claimant: %w", err)
	}
	return claims, nil
}

// loadFutureSlot перечитывает слот по id и проверяет что он ещё не начался.
// Возвращает готовый результат для терминальных исходов.
func (s *ClaimService) loadFutureSlot(ctx context.Context, slotID uuid.UUID) (*model.Session, *ClaimResult, error) {
	session, err := s.store.GetByID(ctx, slotID)
	if err != nil {
		result, err := failed(fmt.Errorf("get session: %w", err))
		return nil, result, err
	}
	if session == nil {
		return nil, &ClaimResult{Outcome: OutcomeNotFound, SlotID: slotID}, nil
	}

	if !session.StartsAt.After(s.clock.Now()) {
		return nil, &ClaimResult{Outcome: OutcomeAlreadyStarted, SlotID: slotID, Slot: session.Key()}, nil
	}

	return session, nil, nil
}

func (s *ClaimService) dayRecords(ctx context.Context, day time.Time) ([]*model.Session, error) {
	from, to := s.clock.DayBounds(day)
	records, err := s.store.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return records, nil
}

// refresh обновляет расписание. Ошибки только логируются.
func (s *ClaimService) refresh(ctx context.Context) {
	if s.refresher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
	defer cancel()

	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Warn("Failed to refresh sessions display", zap.Error(err))
	}
}

func allStarted(records []*model.Session, now time.Time) bool {
	for _, r := range records {
		if r.StartsAt.After(now) {
			return false
		}
	}
	return true
}

func failed(err error) (*ClaimResult, error) {
	return &ClaimResult{Outcome: OutcomeFailed}, err
}
