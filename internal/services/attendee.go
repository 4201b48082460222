package services

import (
	"context"
	"fmt"
	"time"

	"convoke/internal/domain"
	"convoke/internal/policy"
)

type attendeeService struct {
	eventRepo      domain.EventRepository
	attendanceRepo domain.AttendanceRepository
	userRepo       domain.UserRepository
	locker         *EventLocker
	clock          domain.Clock
	contextTimeout time.Duration
}

// NewAttendeeService creates an AttendeeService with the given repositories
// and per-event locker.
func NewAttendeeService(
	eventRepo domain.EventRepository,
	attendanceRepo domain.AttendanceRepository,
	userRepo domain.UserRepository,
	locker *EventLocker,
	clock domain.Clock,
	timeout time.Duration,
) domain.AttendeeService {
	return &attendeeService{
		eventRepo:      eventRepo,
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		locker:         locker,
		clock:          clock,
		contextTimeout: timeout,
	}
}

func (s *attendeeService) ConfirmAttendance(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if notFound(err) {
			return err
		}
		return fmt.Errorf("get event: %w", err)
	}

	now := s.clock.Now()
	if !event.StartAt.After(now) {
		return domain.NewError(domain.KindInvalidTransition, "Event already started")
	}

	// Capacity check and insert must not interleave with another confirm
	// for the same event.
	unlock := s.locker.Lock(eventID)
	defer unlock()

	exists, err := s.attendanceRepo.Exists(ctx, eventID, userID)
	if err != nil {
		return fmt.Errorf("check attendance: %w", err)
	}
	if exists {
		return domain.NewError(domain.KindConflict, "Already confirmed")
	}

	count, err := s.attendanceRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("count attendance: %w", err)
	}
	if count >= event.Capacity {
		return domain.NewError(domain.KindCapacityExceeded, "Event is full")
	}

	rec := &domain.AttendanceRecord{EventID: eventID, UserID: userID, CreatedAt: now}
	if err := s.attendanceRepo.Create(ctx, rec); err != nil {
		return fmt.Errorf("create attendance record: %w", err)
	}
	return nil
}

func (s *attendeeService) ListAttendedEvents(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	records, err := s.attendanceRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	if len(records) == 0 {
		return []*domain.Event{}, nil
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.EventID)
	}
	events, err := s.eventRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	now := s.clock.Now()
	cutoff := now.Add(-policy.RecencyCutoff)
	out := []*domain.Event{}
	for _, e := range events {
		if e.StartAt.After(cutoff) {
			out = append(out, e.WithDerivedStatus(now))
		}
	}
	return out, nil
}

func (s *attendeeService) ListAttendees(ctx context.Context, eventID string) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if notFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	userIDs, err := s.attendanceRepo.ListUserIDsByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendee ids: %w", err)
	}

	// Resolve users one by one (N+1). Attendee lists are capped at event
	// capacity, so this stays small.
	attendees := []*domain.User{}
	for _, id := range userIDs {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			if notFound(err) {
				// Deleted user with a surviving record; skip.
				continue
			}
			return nil, fmt.Errorf("get user: %w", err)
		}
		attendees = append(attendees, user)
	}
	return attendees, nil
}
