package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusAvailable SessionStatus = "available" // Плейсхолдер "ещё никто не занял"
	SessionStatusClaimed   SessionStatus = "claimed"   // Роль занята участником
)

// Role роль участника в тренировке. Порядок значим для отображения.
type Role string

const (
	RoleHost      Role = "Host"
	RoleTrainer   Role = "Trainer"
	RoleAssistant Role = "Assistant"
)

// Roles возвращает все роли в порядке отображения
func Roles() []Role {
	return []Role{RoleHost, RoleTrainer, RoleAssistant}
}

// Order возвращает позицию роли при сортировке (неизвестные роли в конце)
func (r Role) Order() int {
	for i, role := range Roles() {
		if role == r {
			return i
		}
	}
	return len(Roles())
}

// ParseRole проверяет что строка является известной ролью
func ParseRole(s string) (Role, bool) {
	for _, role := range Roles() {
		if string(role) == s {
			return role, true
		}
	}
	return "", false
}

// Session одна запись в таблице sessions: плейсхолдер слота или занятая роль.
// Слот идентифицируется парой (TimeLabel, StartsAt), ID - суррогатный ключ.
type Session struct {
	ID        uuid.UUID     `json:"id"`
	TimeLabel string        `json:"time_label"` // "10AM EET"
	StartsAt  time.Time     `json:"starts_at"`  // абсолютное время начала (UTC)
	Status    SessionStatus `json:"status"`
	ClaimedBy *int64        `json:"claimed_by"` // telegram id участника, nil для available
	Role      *Role         `json:"role"`
	CreatedAt time.Time     `json:"created_at"`
}

// IsClaimed проверяет что запись - занятая роль
func (s *Session) IsClaimed() bool {
	return s.Status == SessionStatusClaimed && s.ClaimedBy != nil && s.Role != nil
}

// Key возвращает семантический ключ слота
func (s *Session) Key() SlotKey {
	return SlotKey{TimeLabel: s.TimeLabel, StartsAt: s.StartsAt.UTC()}
}

// SlotKey семантическая идентичность слота
type SlotKey struct {
	TimeLabel string
	StartsAt  time.Time
}

// NewPlaceholder создаёт available-запись для слота
func NewPlaceholder(label string, startsAt time.Time) *Session {
	return &Session{
		TimeLabel: label,
		StartsAt:  startsAt.UTC(),
		Status:    SessionStatusAvailable,
	}
}

// NewClaim создаёт занятую роль для слота
func NewClaim(key SlotKey, role Role, claimant int64) *Session {
	return &Session{
		TimeLabel: key.TimeLabel,
		StartsAt:  key.StartsAt.UTC(),
		Status:    SessionStatusClaimed,
		ClaimedBy: &claimant,
		Role:      &role,
	}
}
