package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout ограничивает одну фоновую задачу
const jobTimeout = 2 * time.Minute

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	cron      *cron.Cron
	generator *service.SlotGenerator
	refresher service.Refresher
	schedule  string
	logger    *zap.Logger
}

// NewScheduler создаёт планировщик, работающий в опорном часовом поясе
func NewScheduler(generator *service.SlotGenerator, refresher service.Refresher, schedule string, loc *time.Location, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		generator: generator,
		refresher: refresher,
		schedule:  schedule,
		logger:    logger,
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting background scheduler", zap.String("schedule", s.schedule))

	_, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) })
	if err != nil {
		return fmt.Errorf("add refresh job: %w", err)
	}

	// Первый запуск сразу при старте
	go s.RunOnce(ctx)

	s.cron.Start()
	return nil
}

// Stop останавливает фоновые задачи и ждёт завершения текущей
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	<-s.cron.Stop().Done()
}

// RunOnce догенерирует слоты окна и обновляет опубликованное расписание
func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	s.logger.Info("Starting scheduled slot generation")

	if _, err := s.generator.EnsureWeek(ctx); err != nil {
		s.logger.Error("Failed to generate slots", zap.Error(err))
		return
	}

	if err := s.refresher.Refresh(ctx); err != nil {
		if errors.Is(err, service.ErrNoDisplay) {
			s.logger.Info("Sessions display not published yet")
			return
		}
		s.logger.Error("Failed to refresh sessions display", zap.Error(err))
		return
	}

	s.logger.Info("Scheduled slot generation completed successfully")
}
