package record

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"blogapi/internal/domain"
	"blogapi/internal/repository"
)

// UserRepository mirrors the credential collection to its backend the
// same way PostRepository does.
type UserRepository struct {
	mu      sync.RWMutex
	backend Backend
	users   []domain.User
}

func NewUserRepository(backend Backend) *UserRepository {
	return &UserRepository{backend: backend}
}

func (r *UserRepository) Init(ctx context.Context) error {
	data, err := r.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = nil
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &r.users); err != nil {
		return fmt.Errorf("decode users snapshot: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].Username == user.Username {
			return fmt.Errorf("user %s: %w", user.Username, domain.ErrConflict)
		}
	}

	r.users = append(r.users, *user)
	if err := r.flushLocked(ctx); err != nil {
		r.users = r.users[:len(r.users)-1]
		return err
	}
	return nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.users {
		if r.users[i].Username == username {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", username, domain.ErrNotFound)
}

func (r *UserRepository) flushLocked(ctx context.Context) error {
	data, err := json.MarshalIndent(r.users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users snapshot: %w", err)
	}
	if err := r.backend.Save(ctx, data); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
