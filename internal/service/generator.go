package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/clock"
	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// dayConcurrency ограничивает число дней, обрабатываемых параллельно
const dayConcurrency = 4

// ScheduleSettings настройки недельной сетки
type ScheduleSettings struct {
	Times       []string     // "10AM", "1PM", ...
	LabelSuffix string       // "EET" -> метка "10AM EET"
	WeekEnd     time.Weekday // последний день окна
}

// Label возвращает хранимую метку слота
func (s ScheduleSettings) Label(t string) string {
	if s.LabelSuffix == "" {
		return t
	}
	return t + " " + s.LabelSuffix
}

// Slot слот (метка, дата) со всеми занятыми ролями
type Slot struct {
	Key     model.SlotKey
	ID      uuid.UUID        // представитель группы, по нему слот выбирают в UI
	Claims  []*model.Session // отсортированы Host < Trainer < Assistant
	Records int              // число записей в группе
}

// HeldBy возвращает роль, занятую участником в этом слоте
func (s *Slot) HeldBy(claimant int64) *model.Session {
	for _, c := range s.Claims {
		if *c.ClaimedBy == claimant {
			return c
		}
	}
	return nil
}

// Full проверяет что заняты все роли
func (s *Slot) Full() bool {
	return len(s.Claims) >= len(model.Roles())
}

// DaySlots слоты одной даты окна
type DaySlots struct {
	Date  time.Time
	Slots []Slot
}

// SlotGenerator поддерживает в хранилище ровно один набор слотов на каждую пару (метка, дата)
type SlotGenerator struct {
	store    SessionStore
	clock    *clock.Clock
	settings ScheduleSettings
	logger   *zap.Logger
}

func NewSlotGenerator(store SessionStore, clk *clock.Clock, settings ScheduleSettings, logger *zap.Logger) *SlotGenerator {
	return &SlotGenerator{
		store:    store,
		clock:    clk,
		settings: settings,
		logger:   logger,
	}
}

// Clock возвращает адаптер часового пояса
func (g *SlotGenerator) Clock() *clock.Clock {
	return g.clock
}

// Settings возвращает настройки сетки
func (g *SlotGenerator) Settings() ScheduleSettings {
	return g.settings
}

// Window возвращает даты от сегодня до ближайшего конца недели включительно.
// Если сегодня уже после конца недели, окно состоит из одного сегодняшнего дня.
func (g *SlotGenerator) Window() []time.Time {
	today := g.clock.Today()
	weekday := int(today.Weekday())
	end := int(g.settings.WeekEnd)

	if weekday > end {
		return []time.Time{today}
	}

	dates := make([]time.Time, 0, end-weekday+1)
	for i := 0; i <= end-weekday; i++ {
		dates = append(dates, g.clock.AddDays(today, i))
	}
	return dates
}

// EnsureWeek создаёт недостающие слоты и чинит дубли для каждой даты окна
func (g *SlotGenerator) EnsureWeek(ctx context.Context) ([]DaySlots, error) {
	dates := g.Window()
	days := make([]DaySlots, len(dates))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(dayConcurrency)
	for i, date := range dates {
		eg.Go(func() error {
			day, err := g.EnsureDay(egCtx, date)
			if err != nil {
				return err
			}
			days[i] = day
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return days, nil
}

// EnsureDay приводит одну дату к каноническому набору слотов
func (g *SlotGenerator) EnsureDay(ctx context.Context, date time.Time) (DaySlots, error) {
	date = g.clock.StartOfDay(date)
	from, to := g.clock.DayBounds(date)

	records, err := g.store.ListBetween(ctx, from, to)
	if err != nil {
		return DaySlots{}, fmt.Errorf("list sessions for %s: %w", date.Format("2006-01-02"), err)
	}

	// Чистим дубли available, оставшиеся от повторной генерации
	records, duplicates := Reconcile(records)
	if len(duplicates) > 0 {
		deleted, err := g.store.DeleteByIDs(ctx, duplicates)
		if err != nil {
			return DaySlots{}, fmt.Errorf("delete duplicate sessions: %w", err)
		}
		g.logger.Info("Removed duplicate sessions",
			zap.Time("date", date),
			zap.Int64("deleted", deleted),
		)
	}

	existing := make(map[string]bool, len(records))
	for _, r := range records {
		existing[r.TimeLabel] = true
	}

	created := 0
	for _, t := range g.settings.Times {
		label := g.settings.Label(t)
		if existing[label] {
			continue
		}

		placeholder := model.NewPlaceholder(label, g.clock.MustLocalize(date, t))
		if err := g.store.Create(ctx, placeholder); err != nil {
			return DaySlots{}, fmt.Errorf("create session %s: %w", label, err)
		}
		records = append(records, placeholder)
		created++
	}

	if created > 0 {
		g.logger.Info("Created session slots",
			zap.Time("date", date),
			zap.Int("created", created),
		)
	}

	return DaySlots{Date: date, Slots: GroupSlots(records)}, nil
}

// Reconcile возвращает записи без дублей и id дублей для удаления.
// Для пары с занятой ролью удаляются все available, иначе остаётся самая старая available.
func Reconcile(records []*model.Session) ([]*model.Session, []uuid.UUID) {
	byKey := make(map[model.SlotKey][]*model.Session)
	for _, r := range records {
		byKey[r.Key()] = append(byKey[r.Key()], r)
	}

	remove := make(map[uuid.UUID]bool)
	for _, group := range byKey {
		hasClaimed := false
		var available []*model.Session
		for _, r := range group {
			if r.Status == model.SessionStatusClaimed {
				hasClaimed = true
			} else {
				available = append(available, r)
			}
		}

		if !hasClaimed && len(available) > 0 {
			sortOldestFirst(available)
			available = available[1:]
		}
		for _, r := range available {
			remove[r.ID] = true
		}
	}

	if len(remove) == 0 {
		return records, nil
	}

	kept := make([]*model.Session, 0, len(records)-len(remove))
	ids := make([]uuid.UUID, 0, len(remove))
	for _, r := range records {
		if remove[r.ID] {
			ids = append(ids, r.ID)
			continue
		}
		kept = append(kept, r)
	}
	return kept, ids
}

// GroupSlots сворачивает записи в слоты, отсортированные по времени начала.
// Занятые роли собираются в слот, плейсхолдеры только обозначают его наличие.
func GroupSlots(records []*model.Session) []Slot {
	byKey := make(map[model.SlotKey][]*model.Session)
	var order []model.SlotKey
	for _, r := range records {
		key := r.Key()
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], r)
	}

	slots := make([]Slot, 0, len(order))
	for _, key := range order {
		group := byKey[key]
		sortOldestFirst(group)

		slot := Slot{Key: key, ID: group[0].ID, Records: len(group)}
		for _, r := range group {
			if r.IsClaimed() {
				slot.Claims = append(slot.Claims, r)
			}
		}
		sort.SliceStable(slot.Claims, func(i, j int) bool {
			return slot.Claims[i].Role.Order() < slot.Claims[j].Role.Order()
		})
		slots = append(slots, slot)
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if !slots[i].Key.StartsAt.Equal(slots[j].Key.StartsAt) {
			return slots[i].Key.StartsAt.Before(slots[j].Key.StartsAt)
		}
		return slots[i].Key.TimeLabel < slots[j].Key.TimeLabel
	})
	return slots
}

func sortOldestFirst(records []*model.Session) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID.String() < records[j].ID.String()
	})
}
