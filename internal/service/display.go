package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/Freeeeeet/sessions_bot/internal/clock"
	"github.com/Freeeeeet/sessions_bot/internal/formatting"
	"github.com/Freeeeeet/sessions_bot/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DisplaySynchronizer строит представление недели и держит единственное
// опубликованное сообщение в актуальном состоянии. Хранилище он не меняет,
// кроме генерации слотов при явной публикации.
type DisplaySynchronizer struct {
	store     SessionStore
	pointers  PointerStore
	publisher ArtifactPublisher
	names     NameResolver
	generator *SlotGenerator
	clock     *clock.Clock
	logger    *zap.Logger

	mu sync.Mutex // сериализует публикацию и редактирование
}

func NewDisplaySynchronizer(
	store SessionStore,
	pointers PointerStore,
	publisher ArtifactPublisher,
	names NameResolver,
	generator *SlotGenerator,
	logger *zap.Logger,
) *DisplaySynchronizer {
	return &DisplaySynchronizer{
		store:     store,
		pointers:  pointers,
		publisher: publisher,
		names:     names,
		generator: generator,
		clock:     generator.Clock(),
		logger:    logger,
	}
}

// SetPublisher подменяет транспорт
func (d *DisplaySynchronizer) SetPublisher(publisher ArtifactPublisher) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.publisher = publisher
}

// BuildView читает текущее состояние окна недели и строит представление
func (d *DisplaySynchronizer) BuildView(ctx context.Context) (*model.WeekView, error) {
	dates := d.generator.Window()
	days := make([]DaySlots, len(dates))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(dayConcurrency)
	for i, date := range dates {
		eg.Go(func() error {
			from, to := d.clock.DayBounds(date)
			records, err := d.store.ListBetween(egCtx, from, to)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			days[i] = DaySlots{Date: date, Slots: GroupSlots(records)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return d.render(ctx, days), nil
}

// Publish генерирует слоты недели, отправляет новое сообщение и сохраняет указатель на него
func (d *DisplaySynchronizer) Publish(ctx context.Context, containerID int64) (*model.WeekView, *model.DisplayPointer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	days, err := d.generator.EnsureWeek(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("ensure week: %w", err)
	}

	view := d.render(ctx, days)

	pointer, err := d.publisher.Publish(ctx, containerID, view)
	if err != nil {
		return nil, nil, fmt.Errorf("publish sessions display: %w", err)
	}

	if err := d.pointers.Save(ctx, *pointer); err != nil {
		return nil, nil, fmt.Errorf("save display pointer: %w", err)
	}

	d.logger.Info("Sessions display published",
		zap.Int64("chat_id", pointer.ContainerID),
		zap.Int("message_id", pointer.ArtifactID),
		zap.Int("days", len(view.Days)),
	)

	return view, pointer, nil
}

// Refresh перерисовывает опубликованное сообщение на месте.
// Новое сообщение не создаётся никогда: без указателя возвращается ErrNoDisplay.
func (d *DisplaySynchronizer) Refresh(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	pointer, err := d.pointers.Get(ctx)
	if err != nil {
		return fmt.Errorf("get display pointer: %w", err)
	}
	if pointer == nil {
		d.logger.Warn("Sessions display is not published, skipping refresh")
		return ErrNoDisplay
	}

	view, err := d.BuildView(ctx)
	if err != nil {
		return fmt.Errorf("build view: %w", err)
	}

	if err := d.publisher.Edit(ctx, *pointer, view); err != nil {
		d.logger.Error("Sessions display not found or not editable",
			zap.Int64("chat_id", pointer.ContainerID),
			zap.Int("message_id", pointer.ArtifactID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}

	return nil
}

// Pointer возвращает текущий указатель на опубликованное сообщение
func (d *DisplaySynchronizer) Pointer(ctx context.Context) (*model.DisplayPointer, error) {
	return d.pointers.Get(ctx)
}

func (d *DisplaySynchronizer) render(ctx context.Context, days []DaySlots) *model.WeekView {
	now := d.clock.Now()
	names := d.resolveNames(ctx, days)
	zone := d.generator.Settings().LabelSuffix

	view := &model.WeekView{
		Days:        make([]model.DaySection, 0, len(days)),
		GeneratedAt: now,
	}

	for _, day := range days {
		section := model.DaySection{
			Date:  day.Date,
			Title: formatting.DayTitle(d.clock.ToZoned(day.Date), zone),
			Empty: len(day.Slots) == 0,
		}

		for _, slot := range day.Slots {
			line := model.SlotLine{
				Label:     slot.Key.TimeLabel,
				StartsAt:  slot.Key.StartsAt,
				LocalTime: formatting.FormatTime(d.clock.ToZoned(slot.Key.StartsAt)),
				Glyph:     formatting.StatusGlyph(len(slot.Claims)),
				Relative:  formatting.Relative(now, slot.Key.StartsAt),
			}
			for _, claim := range slot.Claims {
				line.Claims = append(line.Claims, model.ClaimLine{
					Role:         *claim.Role,
					ClaimantID:   *claim.ClaimedBy,
					ClaimantName: names[*claim.ClaimedBy],
				})
			}
			section.Slots = append(section.Slots, line)
		}

		view.Days = append(view.Days, section)
	}

	return view
}

// resolveNames подгружает имена участников. Ошибка не мешает отрисовке.
func (d *DisplaySynchronizer) resolveNames(ctx context.Context, days []DaySlots) map[int64]string {
	if d.names == nil {
		return nil
	}

	seen := make(map[int64]bool)
	var ids []int64
	for _, day := range days {
		for _, slot := range day.Slots {
			for _, claim := range slot.Claims {
				if !seen[*claim.ClaimedBy] {
					seen[*claim.ClaimedBy] = true
					ids = append(ids, *claim.ClaimedBy)
				}
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	names, err := d.names.DisplayNames(ctx, ids)
	if err != nil {
		d.logger.Warn("Failed to resolve claimant names", zap.Error(err))
		return nil
	}
	return names
}
