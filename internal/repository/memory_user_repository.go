package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/user-directory/internal/domain"
)

// MemoryUserStore keeps users in an owned map plus an insertion-order index.
// All methods are safe for concurrent use.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
	order []uuid.UUID
}

var _ UserStore = (*MemoryUserStore)(nil)

// NewMemoryUserStore creates a store pre-populated with seed records.
// Seeds with a nil or repeated id are skipped.
func NewMemoryUserStore(seed ...domain.User) *MemoryUserStore {
	s := &MemoryUserStore{
		users: make(map[uuid.UUID]domain.User, len(seed)),
	}
	for _, user := range seed {
		if user.ID == uuid.Nil {
			continue
		}
		if _, exists := s.users[user.ID]; exists {
			continue
		}
		s.users[user.ID] = user
		s.order = append(s.order, user.ID)
	}
	return s
}

func (s *MemoryUserStore) SelectAll(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.User, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.users[id])
	}
	return result, nil
}

func (s *MemoryUserStore) SelectByID(ctx context.Context, id uuid.UUID) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	return user, ok, nil
}

func (s *MemoryUserStore) Insert(ctx context.Context, id uuid.UUID, user domain.User) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; exists {
		return 0, nil
	}
	user.ID = id
	s.users[id] = user
	s.order = append(s.order, id)
	return 1, nil
}

func (s *MemoryUserStore) Update(ctx context.Context, user domain.User) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; !exists {
		return 0, nil
	}
	s.users[user.ID] = user
	return 1, nil
}

func (s *MemoryUserStore) DeleteByID(ctx context.Context, id uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return 0, nil
	}
	delete(s.users, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return 1, nil
}
