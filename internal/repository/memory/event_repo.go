// Package memory holds mutex-guarded in-memory implementations of the
// domain repositories. The process-local store is the default backing for
// development and tests; the postgres package implements the same
// interfaces for persistent deployments.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"convoke/internal/domain"
)

type eventRepository struct {
	mu     sync.RWMutex
	events map[string]*domain.Event
}

// NewEventRepository returns an empty in-memory EventRepository.
func NewEventRepository() domain.EventRepository {
	return &eventRepository{events: make(map[string]*domain.Event)}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	stored := *e
	r.events[e.ID] = &stored
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "Event not found")
	}
	out := *e
	return &out, nil
}

func (r *eventRepository) GetByName(ctx context.Context, name string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, e := range r.events {
		if strings.ToLower(e.Name) == needle {
			out := *e
			return &out, nil
		}
	}
	return nil, domain.NewError(domain.KindNotFound, "Event not found")
}

func (r *eventRepository) ListPublicUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Event{}
	for _, e := range r.events {
		if e.Privacy == domain.PrivacyPublic && e.StartAt.After(now) {
			c := *e
			out = append(out, &c)
		}
	}
	sortByStart(out)
	return out, nil
}

func (r *eventRepository) ListByOwnerSince(ctx context.Context, ownerID string, cutoff time.Time) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Event{}
	for _, e := range r.events {
		if e.OwnerID == ownerID && e.StartAt.After(cutoff) {
			c := *e
			out = append(out, &c)
		}
	}
	sortByStart(out)
	return out, nil
}

func (r *eventRepository) CountByOwnerSince(ctx context.Context, ownerID string, cutoff time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, e := range r.events {
		if e.OwnerID == ownerID && e.StartAt.After(cutoff) {
			count++
		}
	}
	return count, nil
}

func (r *eventRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Event{}
	for _, id := range ids {
		if e, ok := r.events[id]; ok {
			c := *e
			out = append(out, &c)
		}
	}
	sortByStart(out)
	return out, nil
}

func (r *eventRepository) ListNonTerminal(ctx context.Context) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Event{}
	for _, e := range r.events {
		if !e.Status.Terminal() {
			c := *e
			out = append(out, &c)
		}
	}
	sortByStart(out)
	return out, nil
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id string, status domain.EventStatus, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return domain.NewError(domain.KindNotFound, "Event not found")
	}
	e.Status = status
	e.UpdatedAt = updatedAt
	return nil
}

func sortByStart(events []*domain.Event) {
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			if events[j].StartAt.Before(events[i].StartAt) {
				events[i], events[j] = events[j], events[i]
			}
		}
	}
}
