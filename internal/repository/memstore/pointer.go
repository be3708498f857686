package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/Freeeeeet/sessions_bot/internal/service"
)

// PointerStore держит Display Pointer в памяти
type PointerStore struct {
	mu      sync.RWMutex
	pointer *model.DisplayPointer
}

func NewPointerStore() *PointerStore {
	return &PointerStore{}
}

func (s *PointerStore) Get(_ context.Context) (*model.DisplayPointer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pointer == nil {
		return nil, nil
	}
	p := *s.pointer
	return &p, nil
}

// Save перезаписывает указатель
func (s *PointerStore) Save(_ context.Context, pointer model.DisplayPointer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pointer.UpdatedAt.IsZero() {
		pointer.UpdatedAt = time.Now().UTC()
	}
	s.pointer = &pointer
	return nil
}

var _ service.PointerStore = (*PointerStore)(nil)
