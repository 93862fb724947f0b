package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"confbooking/internal/domain"
)

// UserRepo is an in-memory domain.UserRepository keyed by user id. Reads hand
// out copies and writes store copies, so a user obtained from the repo is
// never mutated behind a reader's back.
type UserRepo struct {
	mu   sync.RWMutex
	byID map[string]*domain.User
}

func copyUser(user *domain.User) *domain.User {
	cp := *user
	cp.BookingStatuses = maps.Clone(user.BookingStatuses)
	return &cp
}

// NewUserRepo returns an empty UserRepo.
func NewUserRepo() *UserRepo {
	return &UserRepo{byID: make(map[string]*domain.User)}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; ok {
		return &domain.Error{
			Kind:    domain.KindDuplicate,
			Message: fmt.Sprintf("user %q already exists", user.ID),
			UserID:  user.ID,
		}
	}
	r.byID[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, &domain.Error{
			Kind:    domain.KindNotFound,
			Message: fmt.Sprintf("user %q not found", id),
			UserID:  id,
		}
	}
	return copyUser(user), nil
}

func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return &domain.Error{
			Kind:    domain.KindNotFound,
			Message: fmt.Sprintf("user %q not found", user.ID),
			UserID:  user.ID,
		}
	}
	r.byID[user.ID] = copyUser(user)
	return nil
}
