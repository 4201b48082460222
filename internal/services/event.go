package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"convoke/internal/domain"
	"convoke/internal/policy"
)

type eventService struct {
	eventRepo      domain.EventRepository
	resourceRepo   domain.ResourceRepository
	cities         *policy.CityAllowList
	clock          domain.Clock
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repositories,
// city allow list, and clock.
func NewEventService(
	eventRepo domain.EventRepository,
	resourceRepo domain.ResourceRepository,
	cities *policy.CityAllowList,
	clock domain.Clock,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		resourceRepo:   resourceRepo,
		cities:         cities,
		clock:          clock,
		contextTimeout: timeout,
	}
}

// CreateEvent validates the input rules in order, failing fast on the first
// violation: unique name, future start, derived end, allowed city, capacity
// bounds, owner quota. Nothing is written until every rule has passed.
func (s *eventService) CreateEvent(ctx context.Context, input domain.CreateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if input.OwnerID == "" {
		return nil, domain.NewError(domain.KindPolicyViolation, "Event owner is required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.NewError(domain.KindPolicyViolation, "Event name is required")
	}
	if _, err := s.eventRepo.GetByName(ctx, name); err == nil {
		return nil, domain.NewError(domain.KindConflict, "Event name must be unique")
	} else if !notFound(err) {
		return nil, fmt.Errorf("get event by name: %w", err)
	}

	now := s.clock.Now()
	if err := policy.FutureStart(input.StartAt, now); err != nil {
		return nil, err
	}
	// End is server-derived as start + 24h; user-supplied end dates are
	// ignored on purpose.
	end := input.StartAt.Add(domain.EventDuration)
	if err := policy.EndAfterStart(input.StartAt, end); err != nil {
		return nil, err
	}
	if err := s.cities.Check(input.City); err != nil {
		return nil, err
	}
	if err := policy.CapacityInRange(input.Capacity); err != nil {
		return nil, err
	}

	cutoff := now.Add(-policy.RecencyCutoff)
	count, err := s.eventRepo.CountByOwnerSince(ctx, input.OwnerID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("count owner events: %w", err)
	}
	if err := policy.BelowOwnerQuota(count); err != nil {
		return nil, err
	}

	privacy := input.Privacy
	if privacy == "" {
		privacy = domain.PrivacyPublic
	}
	event := domain.NewEvent(name, input.OwnerID, strings.TrimSpace(input.City), input.StartAt, input.Capacity, privacy, now)
	event.Description = input.Description
	event.ImageURL = input.ImageURL
	event.Category = input.Category
	event.Lat = input.Lat
	event.Lng = input.Lng
	event.Address = input.Address

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if notFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event.WithDerivedStatus(s.clock.Now()), nil
}

func (s *eventService) ListPublicEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.clock.Now()
	events, err := s.eventRepo.ListPublicUpcoming(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list public events: %w", err)
	}
	return derivedCopies(events, now), nil
}

func (s *eventService) ListManagedEvents(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.clock.Now()
	events, err := s.eventRepo.ListByOwnerSince(ctx, ownerID, now.Add(-policy.RecencyCutoff))
	if err != nil {
		return nil, fmt.Errorf("list managed events: %w", err)
	}
	return derivedCopies(events, now), nil
}

// CancelEvent sets the event to cancelled from any non-terminal state. Only
// the owner may cancel; there is no transition-table check beyond
// terminality.
func (s *eventService) CancelEvent(ctx context.Context, eventID, byUserID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if notFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != byUserID {
		return nil, domain.NewError(domain.KindForbidden, "Only the organizer can cancel the event")
	}

	now := s.clock.Now()
	current := domain.DeriveStatus(event, now)
	if current.Terminal() {
		return nil, domain.Errorf(domain.KindInvalidTransition, "Cannot cancel a %s event", current)
	}
	if err := s.eventRepo.UpdateStatus(ctx, eventID, domain.EventCancelled, now); err != nil {
		return nil, fmt.Errorf("update event status: %w", err)
	}
	event.Status = domain.EventCancelled
	event.UpdatedAt = now
	return event, nil
}

// UpdateEventStatus applies an owner-initiated transition, enforced against
// the strict transition table. The current state is the time-derived one, so
// an event that has silently moved past its start cannot be "started" again.
func (s *eventService) UpdateEventStatus(ctx context.Context, eventID string, newStatus domain.EventStatus, byUserID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.ValidEventStatus(newStatus) {
		return nil, domain.Errorf(domain.KindPolicyViolation, "Unknown status %q", newStatus)
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if notFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != byUserID {
		return nil, domain.NewError(domain.KindForbidden, "Only the organizer can change event status")
	}

	now := s.clock.Now()
	current := domain.DeriveStatus(event, now)
	if !domain.CanTransition(current, newStatus) {
		return nil, domain.Errorf(domain.KindInvalidTransition, "Cannot change status from %s to %s", current, newStatus)
	}
	if err := s.eventRepo.UpdateStatus(ctx, eventID, newStatus, now); err != nil {
		return nil, fmt.Errorf("update event status: %w", err)
	}
	event.Status = newStatus
	event.UpdatedAt = now
	return event, nil
}

func (s *eventService) AddResource(ctx context.Context, eventID, byUserID string, input domain.AddResourceInput) (*domain.EventResource, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if notFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != byUserID {
		return nil, domain.NewError(domain.KindForbidden, "Only the organizer can add resources")
	}
	resourceType := input.Type
	if resourceType == "" {
		resourceType = domain.ResourceLink
	}
	if !domain.ValidResourceType(resourceType) {
		return nil, domain.Errorf(domain.KindPolicyViolation, "Unknown resource type %q", resourceType)
	}

	res := &domain.EventResource{
		EventID:   eventID,
		Name:      strings.TrimSpace(input.Name),
		URL:       strings.TrimSpace(input.URL),
		Type:      resourceType,
		CreatedAt: s.clock.Now(),
	}
	if res.Name == "" || res.URL == "" {
		return nil, domain.NewError(domain.KindPolicyViolation, "Resource name and url are required")
	}
	if err := s.resourceRepo.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return res, nil
}

func (s *eventService) ListResources(ctx context.Context, eventID string) ([]*domain.EventResource, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if notFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	resources, err := s.resourceRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	if resources == nil {
		resources = []*domain.EventResource{}
	}
	return resources, nil
}

func (s *eventService) RemoveResource(ctx context.Context, eventID, resourceID, byUserID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if notFound(err) {
			return err
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != byUserID {
		return domain.NewError(domain.KindForbidden, "Only the organizer can remove resources")
	}
	res, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		if notFound(err) {
			return err
		}
		return fmt.Errorf("get resource: %w", err)
	}
	if res.EventID != eventID {
		return domain.NewError(domain.KindNotFound, "Resource not found")
	}
	if err := s.resourceRepo.Delete(ctx, resourceID); err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return nil
}

// ReconcileStatuses persists the time-derived status of every non-terminal
// event. Reads never depend on this; it exists so external SQL consumers see
// fresh statuses without going through the service.
func (s *eventService) ReconcileStatuses(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListNonTerminal(ctx)
	if err != nil {
		return 0, fmt.Errorf("list non-terminal events: %w", err)
	}
	now := s.clock.Now()
	updated := 0
	for _, event := range events {
		derived := domain.DeriveStatus(event, now)
		if derived == event.Status {
			continue
		}
		if err := s.eventRepo.UpdateStatus(ctx, event.ID, derived, now); err != nil {
			return updated, fmt.Errorf("update event status: %w", err)
		}
		updated++
	}
	return updated, nil
}

// derivedCopies maps events to copies carrying the derived status for now.
func derivedCopies(events []*domain.Event, now time.Time) []*domain.Event {
	out := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		out = append(out, e.WithDerivedStatus(now))
	}
	return out
}

// notFound reports whether err is a KindNotFound domain error.
func notFound(err error) bool {
	kind, ok := domain.KindOf(err)
	return ok && kind == domain.KindNotFound
}
