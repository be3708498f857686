// Package memstore хранит записи в памяти процесса. Используется в тестах и при STORE=memory.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/google/uuid"
)

// SessionStore реализует service.SessionStore с теми же правилами уникальности, что и Postgres
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]model.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]model.Session)}
}

// ListBetween возвращает записи с началом в [from, to)
func (s *SessionStore) ListBetween(_ context.Context, from, to time.Time) ([]*model.Session, error) {
	return s.filter(func(r model.Session) bool {
		return !r.StartsAt.Before(from) && r.StartsAt.Before(to)
	}), nil
}

func (s *SessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return clone(r), nil
}

func (s *SessionStore) ListClaimed(_ context.Context, key model.SlotKey) ([]*model.Session, error) {
	return s.filter(func(r model.Session) bool {
		return r.IsClaimed() && r.Key() == key
	}), nil
}

func (s *SessionStore) FindClaim(_ context.Context, key model.SlotKey, role model.Role) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.sessions {
		if r.IsClaimed() && r.Key() == key && *r.Role == role {
			return clone(r), nil
		}
	}
	return nil, nil
}

func (s *SessionStore) ListClaimedBy(_ context.Context, claimant int64, from, to time.Time) ([]*model.Session, error) {
	return s.filter(func(r model.Session) bool {
		return r.IsClaimed() && *r.ClaimedBy == claimant &&
			!r.StartsAt.Before(from) && r.StartsAt.Before(to)
	}), nil
}

// Create сохраняет запись, назначая id и created_at если они пустые
func (s *SessionStore) Create(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.IsClaimed() {
		key := session.Key()
		for _, r := range s.sessions {
			if !r.IsClaimed() || r.Key() != key {
				continue
			}
			if *r.Role == *session.Role {
				return service.ErrRoleTaken
			}
			if *r.ClaimedBy == *session.ClaimedBy {
				return service.ErrAlreadyHolding
			}
		}
	}

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	session.StartsAt = session.StartsAt.UTC()

	s.sessions[session.ID] = *clone(*session)
	return nil
}

// Release переводит запись в available
func (s *SessionStore) Release(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.sessions[id]
	if !ok {
		return service.ErrSlotNotFound
	}
	r.Status = model.SessionStatusAvailable
	r.ClaimedBy = nil
	r.Role = nil
	s.sessions[id] = r
	return nil
}

func (s *SessionStore) DeleteByIDs(_ context.Context, ids []uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		if _, ok := s.sessions[id]; ok {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// All возвращает все записи, отсортированные по времени начала
func (s *SessionStore) All() []*model.Session {
	return s.filter(func(model.Session) bool { return true })
}

func (s *SessionStore) filter(match func(model.Session) bool) []*model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Session
	for _, r := range s.sessions {
		if match(r) {
			result = append(result, clone(r))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartsAt.Equal(result[j].StartsAt) {
			return result[i].StartsAt.Before(result[j].StartsAt)
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result
}

func clone(r model.Session) *model.Session {
	c := r
	if r.ClaimedBy != nil {
		v := *r.ClaimedBy
		c.ClaimedBy = &v
	}
	if r.Role != nil {
		v := *r.Role
		c.Role = &v
	}
	return &c
}

var _ service.SessionStore = (*SessionStore)(nil)
