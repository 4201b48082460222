package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"convoke/internal/domain"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewUserRepository returns an empty in-memory UserRepository.
func NewUserRepository() domain.UserRepository {
	return &userRepository{users: make(map[string]*domain.User)}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(u.Email)
	for _, existing := range r.users {
		if strings.ToLower(existing.Email) == needle {
			return domain.NewError(domain.KindConflict, "Email already in use")
		}
	}
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if strings.ToLower(u.Email) == needle {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.NewError(domain.KindNotFound, "User not found")
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "User not found")
	}
	out := *u
	return &out, nil
}

func (r *userRepository) SetActive(ctx context.Context, id string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.NewError(domain.KindNotFound, "User not found")
	}
	u.Active = true
	u.UpdatedAt = updatedAt
	return nil
}
