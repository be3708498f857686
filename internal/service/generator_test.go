package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotGenerator_Window(t *testing.T) {
	tests := []struct {
		name  string
		day   int
		first time.Weekday
		size  int
	}{
		{"monday", 12, time.Monday, 5},
		{"friday", 16, time.Friday, 1},
		{"saturday", 17, time.Saturday, 1},
		{"sunday", 18, time.Sunday, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, athens(t, 2026, time.January, tt.day, 9, 0))

			window := f.generator.Window()
			require.Len(t, window, tt.size)
			assert.Equal(t, tt.first, window[0].Weekday())
			assert.Equal(t, f.clock.Today(), window[0])
			for i := 1; i < len(window); i++ {
				assert.Equal(t, f.clock.AddDays(window[0], i), window[i])
			}
		})
	}
}

func TestSlotGenerator_EnsureWeekCreatesGrid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))

	days, err := f.generator.EnsureWeek(ctx)
	require.NoError(t, err)
	require.Len(t, days, 5)

	all := f.store.All()
	require.Len(t, all, 25)
	for _, r := range all {
		assert.Equal(t, model.SessionStatusAvailable, r.Status)
		assert.Nil(t, r.ClaimedBy)
		assert.Nil(t, r.Role)
	}

	monday := days[0]
	require.Len(t, monday.Slots, 5)
	wantLabels := []string{"10AM EET", "1PM EET", "4PM EET", "7PM EET", "10PM EET"}
	for i, slot := range monday.Slots {
		assert.Equal(t, wantLabels[i], slot.Key.TimeLabel)
		assert.Empty(t, slot.Claims)
	}
	// 10AM Athens зимой это 08:00 UTC
	assert.Equal(t, time.Date(2026, time.January, 12, 8, 0, 0, 0, time.UTC), monday.Slots[0].Key.StartsAt)
	assert.Equal(t, time.Date(2026, time.January, 12, 20, 0, 0, 0, time.UTC), monday.Slots[4].Key.StartsAt)
}

func TestSlotGenerator_EnsureWeekIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))

	_, err := f.generator.EnsureWeek(ctx)
	require.NoError(t, err)
	before := ids(f.store.All())

	_, err = f.generator.EnsureWeek(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, ids(f.store.All()))
}

func TestSlotGenerator_EnsureDayRepairsDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))

	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	ten := model.SlotKey{TimeLabel: "10AM EET", StartsAt: time.Date(2026, time.January, 12, 8, 0, 0, 0, time.UTC)}
	one := model.SlotKey{TimeLabel: "1PM EET", StartsAt: time.Date(2026, time.January, 12, 11, 0, 0, 0, time.UTC)}

	insert := func(s *model.Session, age int) *model.Session {
		s.CreatedAt = base.Add(time.Duration(age) * time.Minute)
		require.NoError(t, f.store.Create(ctx, s))
		return s
	}

	// 10AM: две available рядом с занятой ролью
	insert(model.NewPlaceholder(ten.TimeLabel, ten.StartsAt), 1)
	insert(model.NewPlaceholder(ten.TimeLabel, ten.StartsAt), 2)
	claim := insert(model.NewClaim(ten, model.RoleHost, 7), 3)

	// 1PM: три available, должна остаться самая старая
	insert(model.NewPlaceholder(one.TimeLabel, one.StartsAt), 5)
	oldest := insert(model.NewPlaceholder(one.TimeLabel, one.StartsAt), 4)
	insert(model.NewPlaceholder(one.TimeLabel, one.StartsAt), 6)

	day, err := f.generator.EnsureDay(ctx, f.clock.Today())
	require.NoError(t, err)
	require.Len(t, day.Slots, 5)

	tenRecords := byKey(f.store.All(), ten)
	require.Len(t, tenRecords, 1)
	assert.Equal(t, claim.ID, tenRecords[0].ID)

	oneRecords := byKey(f.store.All(), one)
	require.Len(t, oneRecords, 1)
	assert.Equal(t, oldest.ID, oneRecords[0].ID)

	assert.Len(t, f.store.All(), 5)
	assert.Equal(t, claim.ID, day.Slots[0].ID)
	require.Len(t, day.Slots[0].Claims, 1)
}

func TestSlotGenerator_EnsureDayKeepsAllClaims(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))

	key := model.SlotKey{TimeLabel: "4PM EET", StartsAt: time.Date(2026, time.January, 12, 14, 0, 0, 0, time.UTC)}
	require.NoError(t, f.store.Create(ctx, model.NewClaim(key, model.RoleAssistant, 3)))
	require.NoError(t, f.store.Create(ctx, model.NewClaim(key, model.RoleHost, 1)))
	require.NoError(t, f.store.Create(ctx, model.NewClaim(key, model.RoleTrainer, 2)))

	day, err := f.generator.EnsureDay(ctx, f.clock.Today())
	require.NoError(t, err)

	assert.Len(t, byKey(f.store.All(), key), 3)

	var slot service.Slot
	for _, s := range day.Slots {
		if s.Key == key {
			slot = s
		}
	}
	require.Len(t, slot.Claims, 3)
	assert.Equal(t, model.RoleHost, *slot.Claims[0].Role)
	assert.Equal(t, model.RoleTrainer, *slot.Claims[1].Role)
	assert.Equal(t, model.RoleAssistant, *slot.Claims[2].Role)
	assert.True(t, slot.Full())
	assert.NotNil(t, slot.HeldBy(2))
	assert.Nil(t, slot.HeldBy(4))
}

func TestSlotGenerator_EnsureDayAcrossDST(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.March, 30, 8, 0))

	day, err := f.generator.EnsureDay(ctx, f.clock.Today())
	require.NoError(t, err)
	require.NotEmpty(t, day.Slots)

	// Летнее время: UTC+3
	assert.Equal(t, time.Date(2026, time.March, 30, 7, 0, 0, 0, time.UTC), day.Slots[0].Key.StartsAt)
}

func TestReconcile_NoDuplicates(t *testing.T) {
	records := []*model.Session{
		{ID: uuid.New(), TimeLabel: "10AM EET", StartsAt: time.Unix(100, 0), Status: model.SessionStatusAvailable},
		{ID: uuid.New(), TimeLabel: "1PM EET", StartsAt: time.Unix(200, 0), Status: model.SessionStatusAvailable},
	}

	kept, removed := service.Reconcile(records)
	assert.Len(t, kept, 2)
	assert.Empty(t, removed)
}

func TestGroupSlots_OrdersByInstant(t *testing.T) {
	records := []*model.Session{
		{ID: uuid.New(), TimeLabel: "10PM EET", StartsAt: time.Unix(500, 0), Status: model.SessionStatusAvailable},
		{ID: uuid.New(), TimeLabel: "10AM EET", StartsAt: time.Unix(100, 0), Status: model.SessionStatusAvailable},
		{ID: uuid.New(), TimeLabel: "4PM EET", StartsAt: time.Unix(300, 0), Status: model.SessionStatusAvailable},
	}

	slots := service.GroupSlots(records)
	require.Len(t, slots, 3)
	assert.Equal(t, "10AM EET", slots[0].Key.TimeLabel)
	assert.Equal(t, "4PM EET", slots[1].Key.TimeLabel)
	assert.Equal(t, "10PM EET", slots[2].Key.TimeLabel)
}

func ids(records []*model.Session) []uuid.UUID {
	result := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		result = append(result, r.ID)
	}
	return result
}

func byKey(records []*model.Session, key model.SlotKey) []*model.Session {
	var result []*model.Session
	for _, r := range records {
		if r.Key() == key {
			result = append(result, r)
		}
	}
	return result
}
