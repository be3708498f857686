package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/Freeeeeet/sessions_bot/internal/service"
)

// UserStore пользователи в памяти, ключ - telegram id
type UserStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[int64]model.User)}
}

// Upsert создаёт пользователя или обновляет его профиль
func (s *UserStore) Upsert(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.users[user.TelegramID]; ok {
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
	} else {
		s.nextID++
		user.ID = s.nextID
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.TelegramID] = *user
	return nil
}

func (s *UserStore) GetByTelegramIDs(_ context.Context, telegramIDs []int64) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []*model.User
	for _, id := range telegramIDs {
		if u, ok := s.users[id]; ok {
			users = append(users, &u)
		}
	}
	return users, nil
}

var _ service.UserStore = (*UserStore)(nil)
