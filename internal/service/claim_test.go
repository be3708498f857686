package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	alice int64 = 101
	bob   int64 = 202
	carol int64 = 303
	dave  int64 = 404
)

func ensureWeek(t *testing.T, f *fixture) {
	t.Helper()
	_, err := f.generator.EnsureWeek(context.Background())
	require.NoError(t, err)
}

func TestClaimService_BeginWithoutSlots(t *testing.T) {
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))

	result, err := f.claims.Begin(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeNoSlots, result.Outcome)
	assert.True(t, result.Terminal())
}

func TestClaimService_BeginListsFutureSlotsOfToday(t *testing.T) {
	f := newFixture(t, athens(t, 2026, time.January, 12, 11, 0))
	ensureWeek(t, f)

	result, err := f.claims.Begin(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, service.OutcomeChooseSlot, result.Outcome)
	assert.False(t, result.Terminal())
	assert.Equal(t, f.clock.Today(), result.Day)

	// 10AM уже прошёл
	require.Len(t, result.Options, 4)
	assert.Equal(t, "1PM EET", result.Options[0].Label)
	assert.Equal(t, "10PM EET", result.Options[3].Label)
}

func TestClaimService_BeginAdvancesToNextDay(t *testing.T) {
	f := newFixture(t, athens(t, 2026, time.January, 12, 23, 0))
	ensureWeek(t, f)

	result, err := f.claims.Begin(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, service.OutcomeChooseSlot, result.Outcome)
	assert.Equal(t, f.clock.AddDays(f.clock.Today(), 1), result.Day)
	require.Len(t, result.Options, 5)
	assert.Equal(t, time.Date(2026, time.January, 13, 8, 0, 0, 0, time.UTC), result.Options[0].StartsAt)
}

func TestClaimService_ClaimFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))
	ensureWeek(t, f)

	begin, err := f.claims.Begin(ctx, alice)
	require.NoError(t, err)
	option := optionAt(t, begin, "10AM EET")
	assert.Equal(t, 0, option.Claimed)
	assert.Nil(t, option.HeldRole)

	step, err := f.claims.ChooseSlot(ctx, alice, option.ID)
	require.NoError(t, err)
	require.Equal(t, service.OutcomeChooseRole, step.Outcome)
	assert.Equal(t, model.Roles(), step.Roles)

	done, err := f.claims.ChooseRole(ctx, alice, option.ID, "Host")
	require.NoError(t, err)
	require.Equal(t, service.OutcomeClaimed, done.Outcome)
	require.NotNil(t, done.Session)
	assert.Equal(t, alice, *done.Session.ClaimedBy)
	assert.Equal(t, model.RoleHost, *done.Session.Role)
	assert.Equal(t, "10AM EET", done.Session.TimeLabel)

	again, err := f.claims.Begin(ctx, alice)
	require.NoError(t, err)
	held := optionAt(t, again, "10AM EET")
	assert.Equal(t, 1, held.Claimed)
	require.NotNil(t, held.HeldRole)
	assert.Equal(t, model.RoleHost, *held.HeldRole)
}

func TestClaimService_RoleConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))
	ensureWeek(t, f)

	begin, err := f.claims.Begin(ctx, alice)
	require.NoError(t, err)
	slotID := optionAt(t, begin, "1PM EET").ID

	// Оба видят Host свободным
	aliceStep, err := f.claims.ChooseSlot(ctx, alice, slotID)
	require.NoError(t, err)
	bobStep, err := f.claims.ChooseSlot(ctx, bob, slotID)
	require.NoError(t, err)
	assert.Contains(t, aliceStep.Roles, model.RoleHost)
	assert.Contains(t, bobStep.Roles, model.RoleHost)

	first, err := f.claims.ChooseRole(ctx, alice, slotID, "Host")
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeClaimed, first.Outcome)

	second, err := f.claims.ChooseRole(ctx, bob, slotID, "Host")
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeRoleTaken, second.Outcome)
	assert.ErrorIs(t, second.Err(), service.ErrRoleTaken)

	claims, err := f.store.ListClaimed(ctx, first.Slot)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, alice, *claims[0].ClaimedBy)

	third, err := f.claims.ChooseRole(ctx, bob, slotID, "Trainer")
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeClaimed, third.Outcome)
}

func TestClaimService_ToggleUnclaim(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))
	ensureWeek(t, f)

	begin, err := f.claims.Begin(ctx, alice)
	require.NoError(t, err)
	slotID := optionAt(t, begin, "4PM EET").ID

	claimed, err := f.claims.ChooseRole(ctx, alice, slotID, "Trainer")
	require.NoError(t, err)
	require.Equal(t, service.OutcomeClaimed, claimed.Outcome)

	released, err := f.claims.ChooseSlot(ctx, alice, slotID)
	require.NoError(t, err)
	require.Equal(t, service.OutcomeUnclaimed, released.Outcome)
	assert.True(t, released.Terminal())

	record, err := f.store.GetByID(ctx, claimed.Session.ID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, model.SessionStatusAvailable, record.Status)
	assert.Nil(t, record.ClaimedBy)
	assert.Nil(t, record.Role)

	reopened, err := f.claims.ChooseSlot(ctx, alice, slotID)
	require.NoError(t, err)
	require.Equal(t, service.OutcomeChooseRole, reopened.Outcome)
	assert.Len(t, reopened.Roles, 3)
}

func TestClaimService_AlreadyHolding(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))
	ensureWeek(t, f)

	begin, err := f.claims.Begin(ctx, alice)
	require.NoError(t, err)
	slotID := optionAt(t, begin, "7PM EET").ID

	_, err = f.claims.ChooseRole(ctx, alice, slotID, "Host")
	require.NoError(t, err)

	// Устаревшая клавиатура: второй выбор роли в том же слоте
	result, err := f.claims.ChooseRole(ctx, alice, slotID, "Assistant")
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeAlreadyHolding, result.Outcome)
	assert.ErrorIs(t, result.Err(), service.ErrAlreadyHolding)
}

func TestClaimService_AllRolesClaimed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))
	ensureWeek(t, f)

	begin, err := f.claims.Begin(ctx, alice)
	require.NoError(t, err)
	slotID := optionAt(t, begin, "10PM EET").ID

	for actor, role := range map[int64]string{alice: "Host", bob: "Trainer", carol: "Assistant"} {
		result, err := f.claims.ChooseRole(ctx, actor, slotID, role)
		require.NoError(t, err)
		require.Equal(t, service.OutcomeClaimed, result.Outcome)
	}

	full, err := f.claims.ChooseSlot(ctx, dave, slotID)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeAllClaimed, full.Outcome)

	daveOptions, err := f.claims.Begin(ctx, dave)
	require.NoError(t, err)
	for _, o := range daveOptions.Options {
		assert.NotEqual(t, "10PM EET", o.Label)
	}

	// Участник слота всё ещё видит его, чтобы снять роль
	aliceOptions, err := f.claims.Begin(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 3, optionAt(t, aliceOptions, "10PM EET").Claimed)
}

func TestClaimService_RejectsStartedSlots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))
	ensureWeek(t, f)

	begin, err := f.claims.Begin(ctx, alice)
	require.NoError(t, err)
	slotID := optionAt(t, begin, "10AM EET").ID

	step, err := f.claims.ChooseSlot(ctx, alice, slotID)
	require.NoError(t, err)
	require.Equal(t, service.OutcomeChooseRole, step.Outcome)

	// Слот начался, пока участник выбирал роль
	f.now.Set(athens(t, 2026, time.January, 12, 10, 0))

	result, err := f.claims.ChooseRole(ctx, alice, slotID, "Host")
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeAlreadyStarted, result.Outcome)

	result, err = f.claims.ChooseSlot(ctx, alice, slotID)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeAlreadyStarted, result.Outcome)

	claims, err := f.store.ListClaimed(ctx, step.Slot)
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestClaimService_UnknownSlotAndRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))
	ensureWeek(t, f)

	result, err := f.claims.ChooseSlot(ctx, alice, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeNotFound, result.Outcome)
	assert.ErrorIs(t, result.Err(), service.ErrSlotNotFound)

	result, err = f.claims.ChooseRole(ctx, alice, uuid.New(), "Host")
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeNotFound, result.Outcome)

	begin, err := f.claims.Begin(ctx, alice)
	require.NoError(t, err)
	result, err = f.claims.ChooseRole(ctx, alice, begin.Options[0].ID, "Janitor")
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeInvalidRole, result.Outcome)
}

func TestClaimService_RefreshAfterEveryStep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))
	ensureWeek(t, f)

	refresher := &countingRefresher{err: errors.New("display gone")}
	claims := service.NewClaimService(f.store, f.generator, refresher, zap.NewNop())

	begin, err := claims.Begin(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, refresher.count())

	slotID := begin.Options[0].ID
	_, err = claims.ChooseSlot(ctx, alice, slotID)
	require.NoError(t, err)
	assert.Equal(t, 1, refresher.count())

	// Ошибка обновления не влияет на результат шага
	result, err := claims.ChooseRole(ctx, alice, slotID, "Host")
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeClaimed, result.Outcome)
	assert.Equal(t, 2, refresher.count())

	_, err = claims.ChooseSlot(ctx, bob, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 3, refresher.count())
}

func TestClaimService_StoreFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))

	claims := service.NewClaimService(brokenStore{f.store}, f.generator, nil, zap.NewNop())

	result, err := claims.ChooseSlot(ctx, alice, uuid.New())
	require.Error(t, err)
	assert.Equal(t, service.OutcomeFailed, result.Outcome)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClaimService_MyClaims(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, athens(t, 2026, time.January, 12, 9, 0))
	ensureWeek(t, f)

	begin, err := f.claims.Begin(ctx, alice)
	require.NoError(t, err)
	_, err = f.claims.ChooseRole(ctx, alice, optionAt(t, begin, "1PM EET").ID, "Assistant")
	require.NoError(t, err)
	_, err = f.claims.ChooseRole(ctx, bob, optionAt(t, begin, "4PM EET").ID, "Host")
	require.NoError(t, err)

	mine, err := f.claims.MyClaims(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "1PM EET", mine[0].TimeLabel)
	assert.Equal(t, model.RoleAssistant, *mine[0].Role)
}
