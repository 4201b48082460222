package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"convoke/internal/domain"
)

type resourceRepository struct {
	mu        sync.RWMutex
	resources map[string]*domain.EventResource
	order     []string
}

// NewResourceRepository returns an empty in-memory ResourceRepository.
func NewResourceRepository() domain.ResourceRepository {
	return &resourceRepository{resources: make(map[string]*domain.EventResource)}
}

func (r *resourceRepository) Create(ctx context.Context, res *domain.EventResource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	stored := *res
	r.resources[res.ID] = &stored
	r.order = append(r.order, res.ID)
	return nil
}

func (r *resourceRepository) GetByID(ctx context.Context, id string) (*domain.EventResource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "Resource not found")
	}
	out := *res
	return &out, nil
}

func (r *resourceRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventResource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.EventResource{}
	for _, id := range r.order {
		res := r.resources[id]
		if res != nil && res.EventID == eventID {
			c := *res
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *resourceRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resources[id]; !ok {
		return domain.NewError(domain.KindNotFound, "Resource not found")
	}
	delete(r.resources, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
