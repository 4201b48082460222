package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"convoke/internal/domain"
)

// fakeClock returns a fixed time that tests can advance.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type mockEventRepository struct {
	events map[string]*domain.Event
	nextID int
	err    error
}

func newMockEventRepository(events ...*domain.Event) *mockEventRepository {
	m := &mockEventRepository{events: map[string]*domain.Event{}}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *mockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	event.ID = fmt.Sprintf("ev-%d", m.nextID)
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "Event not found")
	}
	return ev, nil
}

func (m *mockEventRepository) GetByName(ctx context.Context, name string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, ev := range m.events {
		if strings.EqualFold(ev.Name, name) {
			return ev, nil
		}
	}
	return nil, domain.NewError(domain.KindNotFound, "Event not found")
}

func (m *mockEventRepository) ListPublicUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Event
	for _, ev := range m.events {
		if ev.Privacy == domain.PrivacyPublic && ev.StartAt.After(now) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockEventRepository) ListByOwnerSince(ctx context.Context, ownerID string, cutoff time.Time) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Event
	for _, ev := range m.events {
		if ev.OwnerID == ownerID && ev.StartAt.After(cutoff) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockEventRepository) CountByOwnerSince(ctx context.Context, ownerID string, cutoff time.Time) (int, error) {
	evs, err := m.ListByOwnerSince(ctx, ownerID, cutoff)
	if err != nil {
		return 0, err
	}
	return len(evs), nil
}

func (m *mockEventRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Event
	for _, id := range ids {
		if ev, ok := m.events[id]; ok {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockEventRepository) ListNonTerminal(ctx context.Context) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Event
	for _, ev := range m.events {
		if !ev.Status.Terminal() {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockEventRepository) UpdateStatus(ctx context.Context, id string, status domain.EventStatus, updatedAt time.Time) error {
	if m.err != nil {
		return m.err
	}
	ev, ok := m.events[id]
	if !ok {
		return domain.NewError(domain.KindNotFound, "Event not found")
	}
	ev.Status = status
	ev.UpdatedAt = updatedAt
	return nil
}

type mockInvitationRepository struct {
	invitations map[string]*domain.Invitation
	nextID      int
	err         error
}

func newMockInvitationRepository(invs ...*domain.Invitation) *mockInvitationRepository {
	m := &mockInvitationRepository{invitations: map[string]*domain.Invitation{}}
	for _, inv := range invs {
		m.invitations[inv.ID] = inv
	}
	return m
}

func (m *mockInvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	inv.ID = fmt.Sprintf("inv-%d", m.nextID)
	m.invitations[inv.ID] = inv
	return nil
}

func (m *mockInvitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	if m.err != nil {
		return nil, m.err
	}
	inv, ok := m.invitations[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "Invitation not found")
	}
	return inv, nil
}

func (m *mockInvitationRepository) GetActiveByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Invitation, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, inv := range m.invitations {
		if inv.EventID == eventID && strings.EqualFold(inv.Email, email) && inv.Status.Active() {
			return inv, nil
		}
	}
	return nil, domain.NewError(domain.KindNotFound, "Invitation not found")
}

func (m *mockInvitationRepository) CountActiveByEventID(ctx context.Context, eventID string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	count := 0
	for _, inv := range m.invitations {
		if inv.EventID == eventID && inv.Status.Active() {
			count++
		}
	}
	return count, nil
}

func (m *mockInvitationRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Invitation, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Invitation
	for _, inv := range m.invitations {
		if strings.EqualFold(inv.Email, email) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *mockInvitationRepository) ListByEventID(ctx context.Context, eventID string, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var out []*domain.Invitation
	for _, inv := range m.invitations {
		if inv.EventID != eventID {
			continue
		}
		if search != "" && !strings.Contains(inv.Email, strings.ToLower(search)) {
			continue
		}
		out = append(out, inv)
	}
	return out, len(out), nil
}

func (m *mockInvitationRepository) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus) error {
	if m.err != nil {
		return m.err
	}
	inv, ok := m.invitations[id]
	if !ok {
		return domain.NewError(domain.KindNotFound, "Invitation not found")
	}
	inv.Status = status
	return nil
}

type mockAttendanceRepository struct {
	records map[string]*domain.AttendanceRecord
	err     error
}

func newMockAttendanceRepository(recs ...*domain.AttendanceRecord) *mockAttendanceRepository {
	m := &mockAttendanceRepository{records: map[string]*domain.AttendanceRecord{}}
	for _, r := range recs {
		m.records[r.EventID+":"+r.UserID] = r
	}
	return m
}

func (m *mockAttendanceRepository) Create(ctx context.Context, rec *domain.AttendanceRecord) error {
	if m.err != nil {
		return m.err
	}
	key := rec.EventID + ":" + rec.UserID
	if _, ok := m.records[key]; ok {
		return domain.NewError(domain.KindConflict, "Already confirmed")
	}
	m.records[key] = rec
	return nil
}

func (m *mockAttendanceRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.records[eventID+":"+userID]
	return ok, nil
}

func (m *mockAttendanceRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	count := 0
	for _, r := range m.records {
		if r.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (m *mockAttendanceRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.AttendanceRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.AttendanceRecord
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepository) ListUserIDsByEventID(ctx context.Context, eventID string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []string
	for _, r := range m.records {
		if r.EventID == eventID {
			out = append(out, r.UserID)
		}
	}
	return out, nil
}

type mockUserRepository struct {
	users  map[string]*domain.User
	nextID int
	err    error
}

func newMockUserRepository(users ...*domain.User) *mockUserRepository {
	m := &mockUserRepository{users: map[string]*domain.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	user.ID = fmt.Sprintf("u-%d", m.nextID)
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.NewError(domain.KindNotFound, "User not found")
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "User not found")
	}
	return u, nil
}

func (m *mockUserRepository) SetActive(ctx context.Context, id string, updatedAt time.Time) error {
	if m.err != nil {
		return m.err
	}
	u, ok := m.users[id]
	if !ok {
		return domain.NewError(domain.KindNotFound, "User not found")
	}
	u.Active = true
	u.UpdatedAt = updatedAt
	return nil
}

type mockResourceRepository struct {
	resources map[string]*domain.EventResource
	nextID    int
	err       error
}

func newMockResourceRepository(resources ...*domain.EventResource) *mockResourceRepository {
	m := &mockResourceRepository{resources: map[string]*domain.EventResource{}}
	for _, r := range resources {
		m.resources[r.ID] = r
	}
	return m
}

func (m *mockResourceRepository) Create(ctx context.Context, res *domain.EventResource) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	res.ID = fmt.Sprintf("res-%d", m.nextID)
	m.resources[res.ID] = res
	return nil
}

func (m *mockResourceRepository) GetByID(ctx context.Context, id string) (*domain.EventResource, error) {
	if m.err != nil {
		return nil, m.err
	}
	res, ok := m.resources[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "Resource not found")
	}
	return res, nil
}

func (m *mockResourceRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventResource, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.EventResource
	for _, res := range m.resources {
		if res.EventID == eventID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (m *mockResourceRepository) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.resources[id]; !ok {
		return domain.NewError(domain.KindNotFound, "Resource not found")
	}
	delete(m.resources, id)
	return nil
}

type mockEmailService struct {
	activations []*domain.ActivationEmailData
	invitations []*domain.InvitationEmailData
	err         error
}

func (m *mockEmailService) SendAccountActivation(ctx context.Context, data *domain.ActivationEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.activations = append(m.activations, data)
	return nil
}

func (m *mockEmailService) SendEventInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.invitations = append(m.invitations, data)
	return nil
}
