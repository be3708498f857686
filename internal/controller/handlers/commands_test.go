package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/sessions_bot/internal/controller/state"
	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/Freeeeeet/sessions_bot/internal/repository/memstore"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent   []*bot.SendMessageParams
	edits  []*bot.EditMessageTextParams
	photos []*bot.SendPhotoParams
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.sent = append(f.sent, params)
	return &models.Message{ID: len(f.sent)}, nil
}

func (f *fakeSender) EditMessageText(_ context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	f.edits = append(f.edits, params)
	return &models.Message{ID: params.MessageID}, nil
}

func (f *fakeSender) AnswerCallbackQuery(context.Context, *bot.AnswerCallbackQueryParams) (bool, error) {
	return true, nil
}

func (f *fakeSender) SendPhoto(_ context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	f.photos = append(f.photos, params)
	return &models.Message{ID: 99}, nil
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1].Text
}

type fakeDisplay struct {
	view       *model.WeekView
	publishErr error
	published  []int64
}

func (d *fakeDisplay) Publish(_ context.Context, chatID int64) (*model.WeekView, *model.DisplayPointer, error) {
	if d.publishErr != nil {
		return nil, nil, d.publishErr
	}
	d.published = append(d.published, chatID)
	return d.view, &model.DisplayPointer{ArtifactID: 10, ContainerID: chatID}, nil
}

func (d *fakeDisplay) BuildView(context.Context) (*model.WeekView, error) {
	return d.view, nil
}

type fakeClaims struct {
	claims []*model.Session
}

func (c *fakeClaims) MyClaims(context.Context, int64) ([]*model.Session, error) {
	return c.claims, nil
}

func newHandlers(t *testing.T, display *fakeDisplay, claims *fakeClaims, admins ...int64) (*Handlers, *state.Manager) {
	t.Helper()
	users, err := service.NewUserService(memstore.NewUserStore(), 0, zap.NewNop())
	require.NoError(t, err)

	var isAdmin func(int64) bool
	if len(admins) > 0 {
		isAdmin = func(id int64) bool {
			for _, a := range admins {
				if a == id {
					return true
				}
			}
			return false
		}
	}

	sm := state.NewManager()
	return NewHandlers(users, claims, display, sm, isAdmin, time.UTC, zap.NewNop()), sm
}

func command(from int64, text string) *models.Update {
	return &models.Update{Message: &models.Message{
		ID:   7,
		Text: text,
		From: &models.User{ID: from, FirstName: "Ann"},
		Chat: models.Chat{ID: -500},
	}}
}

func twoDayView() *model.WeekView {
	monday := time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)
	return &model.WeekView{
		GeneratedAt: monday.Add(9 * time.Hour),
		Days: []model.DaySection{
			{Date: monday, Slots: []model.SlotLine{{Label: "10AM EET", StartsAt: monday.Add(10 * time.Hour)}}},
			{Date: monday.AddDate(0, 0, 1), Empty: true},
		},
	}
}

func TestHandleSessionsPublishes(t *testing.T) {
	display := &fakeDisplay{view: twoDayView()}
	h, _ := newHandlers(t, display, &fakeClaims{})
	s := &fakeSender{}

	h.HandleSessions(context.Background(), s, command(1, "/sessions"))

	assert.Equal(t, []int64{-500}, display.published)
	assert.Equal(t, "Sessions for 2 days have been displayed below.", s.lastText(t))
}

func TestHandleSessionsFailure(t *testing.T) {
	display := &fakeDisplay{publishErr: errors.New("telegram down")}
	h, _ := newHandlers(t, display, &fakeClaims{})
	s := &fakeSender{}

	h.HandleSessions(context.Background(), s, command(1, "/sessions"))

	assert.Equal(t, "There was an error while fetching the sessions. Please try again.", s.lastText(t))
}

func TestHandleSessionsRequiresAdmin(t *testing.T) {
	display := &fakeDisplay{view: twoDayView()}
	h, _ := newHandlers(t, display, &fakeClaims{}, 42)
	s := &fakeSender{}

	h.HandleSessions(context.Background(), s, command(1, "/sessions"))
	assert.Empty(t, display.published)
	assert.Equal(t, common.ErrorMessage(common.ErrNotAllowed), s.lastText(t))

	h.HandleSessions(context.Background(), s, command(42, "/sessions"))
	assert.Len(t, display.published, 1)
}

func TestHandleMySessions(t *testing.T) {
	claim := model.NewClaim(model.SlotKey{
		TimeLabel: "1PM EET",
		StartsAt:  time.Date(2026, time.January, 13, 11, 0, 0, 0, time.UTC),
	}, model.RoleHost, 1)
	h, _ := newHandlers(t, &fakeDisplay{}, &fakeClaims{claims: []*model.Session{claim}})
	s := &fakeSender{}

	h.HandleMySessions(context.Background(), s, command(1, "/mysessions"))

	assert.Contains(t, s.lastText(t), "1PM EET (Host)")
}

func TestHandleBoardSendsPhoto(t *testing.T) {
	h, _ := newHandlers(t, &fakeDisplay{view: twoDayView()}, &fakeClaims{})
	s := &fakeSender{}

	h.HandleBoard(context.Background(), s, command(1, "/board"))

	require.Len(t, s.photos, 1)
	upload, ok := s.photos[0].Photo.(*models.InputFileUpload)
	require.True(t, ok)
	assert.Equal(t, "week.png", upload.Filename)
}

func TestHandleCancel(t *testing.T) {
	h, sm := newHandlers(t, &fakeDisplay{}, &fakeClaims{})
	s := &fakeSender{}

	h.HandleCancel(context.Background(), s, command(1, "/cancel"))
	assert.Equal(t, msgNothingToCancel, s.lastText(t))

	// Кнопки были отправлены в групповой чат, а /cancel пришёл в личку
	sm.StartSelection(1, -900, 77)
	h.HandleCancel(context.Background(), s, command(1, "/cancel"))

	require.Len(t, s.edits, 1)
	assert.Equal(t, 77, s.edits[0].MessageID)
	assert.Equal(t, int64(-900), s.edits[0].ChatID)
	assert.Equal(t, msgSelectionCancelled, s.lastText(t))
	assert.Equal(t, state.StateNone, sm.GetState(1))
}

func TestHandleStartAndHelp(t *testing.T) {
	h, _ := newHandlers(t, &fakeDisplay{}, &fakeClaims{})
	s := &fakeSender{}

	h.HandleStart(context.Background(), s, command(1, "/start"))
	assert.Contains(t, s.lastText(t), "/sessions")
	assert.Contains(t, s.lastText(t), `<a href="tg://user?id=1">Ann</a>`)

	h.HandleHelp(context.Background(), s, command(1, "/help"))
	assert.Equal(t, helpText, s.lastText(t))
}
