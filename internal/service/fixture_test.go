package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/clock"
	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/Freeeeeet/sessions_bot/internal/repository/memstore"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var defaultTimes = []string{"10AM", "1PM", "4PM", "7PM", "10PM"}

// athens возвращает момент в Europe/Athens
func athens(t *testing.T, year int, month time.Month, day, hour, min int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Athens")
	require.NoError(t, err)
	return time.Date(year, month, day, hour, min, 0, 0, loc)
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (m *manualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *manualClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

type fakePublisher struct {
	mu        sync.Mutex
	published int
	edits     []*model.WeekView
	editErr   error
	nextID    int
}

func (p *fakePublisher) Publish(_ context.Context, containerID int64, _ *model.WeekView) (*model.DisplayPointer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published++
	p.nextID++
	return &model.DisplayPointer{ArtifactID: p.nextID, ContainerID: containerID}, nil
}

func (p *fakePublisher) Edit(_ context.Context, _ model.DisplayPointer, view *model.WeekView) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.editErr != nil {
		return p.editErr
	}
	p.edits = append(p.edits, view)
	return nil
}

func (p *fakePublisher) lastEdit() *model.WeekView {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.edits) == 0 {
		return nil
	}
	return p.edits[len(p.edits)-1]
}

type countingRefresher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

func (r *countingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// brokenStore ломает чтение по id
type brokenStore struct {
	*memstore.SessionStore
}

func (brokenStore) GetByID(context.Context, uuid.UUID) (*model.Session, error) {
	return nil, errors.New("connection refused")
}

type fixture struct {
	now       *manualClock
	clock     *clock.Clock
	store     *memstore.SessionStore
	pointers  *memstore.PointerStore
	users     *service.UserService
	publisher *fakePublisher
	generator *service.SlotGenerator
	display   *service.DisplaySynchronizer
	claims    *service.ClaimService
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	manual := &manualClock{now: now}
	clk := clock.New(now.Location(), manual.Now)
	logger := zap.NewNop()

	f := &fixture{
		now:       manual,
		clock:     clk,
		store:     memstore.NewSessionStore(),
		pointers:  memstore.NewPointerStore(),
		publisher: &fakePublisher{},
	}

	users, err := service.NewUserService(memstore.NewUserStore(), 16, logger)
	require.NoError(t, err)
	f.users = users

	f.generator = service.NewSlotGenerator(f.store, clk, service.ScheduleSettings{
		Times:       defaultTimes,
		LabelSuffix: "EET",
		WeekEnd:     time.Friday,
	}, logger)
	f.display = service.NewDisplaySynchronizer(f.store, f.pointers, f.publisher, f.users, f.generator, logger)
	f.claims = service.NewClaimService(f.store, f.generator, f.display, logger)
	return f
}

// optionAt находит вариант выбора по метке
func optionAt(t *testing.T, result *service.ClaimResult, label string) service.SlotOption {
	t.Helper()
	for _, o := range result.Options {
		if o.Label == label {
			return o
		}
	}
	t.Fatalf("option %q not found", label)
	return service.SlotOption{}
}
