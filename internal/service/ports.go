package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/google/uuid"
)

// SessionStore хранилище записей слотов и занятых ролей.
// Create для claimed-записи возвращает ErrRoleTaken или ErrAlreadyHolding
// если нарушена уникальность (слот, роль) или (слот, участник).
type SessionStore interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]*model.Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	ListClaimed(ctx context.Context, key model.SlotKey) ([]*model.Session, error)
	FindClaim(ctx context.Context, key model.SlotKey, role model.Role) (*model.Session, error)
	ListClaimedBy(ctx context.Context, claimant int64, from, to time.Time) ([]*model.Session, error)
	Create(ctx context.Context, session *model.Session) error
	Release(ctx context.Context, id uuid.UUID) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// PointerStore хранит единственный Display Pointer
type PointerStore interface {
	Get(ctx context.Context) (*model.DisplayPointer, error)
	Save(ctx context.Context, pointer model.DisplayPointer) error
}

// ArtifactPublisher рисует WeekView во внешнем транспорте.
// Edit возвращает ошибку если сообщение пропало или не редактируется.
type ArtifactPublisher interface {
	Publish(ctx context.Context, containerID int64, view *model.WeekView) (*model.DisplayPointer, error)
	Edit(ctx context.Context, pointer model.DisplayPointer, view *model.WeekView) error
}

// NameResolver возвращает отображаемые имена участников
type NameResolver interface {
	DisplayNames(ctx context.Context, telegramIDs []int64) (map[int64]string, error)
}

// Refresher обновляет опубликованное расписание после мутаций
type Refresher interface {
	Refresh(ctx context.Context) error
}
