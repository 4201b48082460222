package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"convoke/internal/domain"
)

type invitationRepository struct {
	mu          sync.RWMutex
	invitations map[string]*domain.Invitation
}

// NewInvitationRepository returns an empty in-memory InvitationRepository.
func NewInvitationRepository() domain.InvitationRepository {
	return &invitationRepository{invitations: make(map[string]*domain.Invitation)}
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	inv.Email = strings.ToLower(inv.Email)
	stored := *inv
	r.invitations[inv.ID] = &stored
	return nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invitations[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "Invitation not found")
	}
	out := *inv
	return &out, nil
}

func (r *invitationRepository) GetActiveByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, inv := range r.invitations {
		if inv.EventID == eventID && inv.Email == needle && inv.Status.Active() {
			out := *inv
			return &out, nil
		}
	}
	return nil, domain.NewError(domain.KindNotFound, "Invitation not found")
}

func (r *invitationRepository) CountActiveByEventID(ctx context.Context, eventID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, inv := range r.invitations {
		if inv.EventID == eventID && inv.Status.Active() {
			count++
		}
	}
	return count, nil
}

func (r *invitationRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Invitation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(email))
	out := []*domain.Invitation{}
	for _, inv := range r.invitations {
		if inv.Email == needle {
			c := *inv
			out = append(out, &c)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *invitationRepository) ListByEventID(ctx context.Context, eventID string, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(search))
	matched := []*domain.Invitation{}
	for _, inv := range r.invitations {
		if inv.EventID != eventID {
			continue
		}
		if needle != "" && !strings.Contains(inv.Email, needle) {
			continue
		}
		c := *inv
		matched = append(matched, &c)
	}
	sortByCreated(matched)

	total := len(matched)
	offset := params.Offset()
	if offset >= total {
		return []*domain.Invitation{}, total, nil
	}
	end := offset + params.PageSize
	if params.PageSize <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return domain.NewError(domain.KindNotFound, "Invitation not found")
	}
	inv.Status = status
	return nil
}

func sortByCreated(invs []*domain.Invitation) {
	sort.Slice(invs, func(i, j int) bool {
		return invs[i].CreatedAt.Before(invs[j].CreatedAt)
	})
}
