package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"convoke/internal/domain"
	"convoke/internal/policy"
)

type invitationService struct {
	eventRepo      domain.EventRepository
	invitationRepo domain.InvitationRepository
	attendanceRepo domain.AttendanceRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	locker         *EventLocker
	clock          domain.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewInvitationService creates an InvitationService with the given
// repositories, email service, and per-event locker.
func NewInvitationService(
	eventRepo domain.EventRepository,
	invitationRepo domain.InvitationRepository,
	attendanceRepo domain.AttendanceRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	locker *EventLocker,
	clock domain.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		eventRepo:      eventRepo,
		invitationRepo: invitationRepo,
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		locker:         locker,
		clock:          clock,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *invitationService) Invite(ctx context.Context, eventID, inviteeEmail string, expiresAt *time.Time) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if notFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	email := strings.TrimSpace(strings.ToLower(inviteeEmail))
	invitee, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !notFound(err) {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if dup, err := s.invitationRepo.GetActiveByEventAndEmail(ctx, eventID, email); err == nil && dup != nil {
		return nil, domain.NewError(domain.KindConflict, "User already invited")
	} else if err != nil && !notFound(err) {
		return nil, fmt.Errorf("get active invitation: %w", err)
	}

	// Counting and creating must not interleave with other invites or
	// confirmations for the same event.
	unlock := s.locker.Lock(eventID)
	defer unlock()

	activeInvs, err := s.invitationRepo.CountActiveByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count invitations: %w", err)
	}
	attending, err := s.attendanceRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}

	now := s.clock.Now()
	if err := policy.CheckInvitationEligibility(policy.EligibilityInput{
		Event:             event,
		Invitee:           invitee,
		ActiveInvitations: activeInvs,
		Attendance:        attending,
		Now:               now,
	}); err != nil {
		return nil, err
	}

	inv := &domain.Invitation{
		EventID:   eventID,
		Email:     email,
		Status:    domain.InvitationPending,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	// Email delivery is best-effort; the invitation stands either way.
	data := &domain.InvitationEmailData{
		Email:     email,
		EventName: event.Name,
		EventCity: event.City,
		StartAt:   event.StartAt.Format(time.RFC1123),
	}
	if err := s.emailService.SendEventInvitation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "invitation email failed", "event_id", eventID, "email", email, "err", err)
	}
	return inv, nil
}

func (s *invitationService) ListForInvitee(ctx context.Context, email string) ([]*domain.InvitationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	invs, err := s.invitationRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	if len(invs) == 0 {
		return []*domain.InvitationWithEvent{}, nil
	}

	now := s.clock.Now()
	eventsByID := make(map[string]*domain.Event)
	result := []*domain.InvitationWithEvent{}
	for _, inv := range invs {
		event, ok := eventsByID[inv.EventID]
		if !ok {
			event, err = s.eventRepo.GetByID(ctx, inv.EventID)
			if err != nil {
				if notFound(err) {
					// Event deleted but invitation remains; skip the entry.
					continue
				}
				return nil, fmt.Errorf("get event for invitation: %w", err)
			}
			eventsByID[inv.EventID] = event
		}
		result = append(result, &domain.InvitationWithEvent{
			Invitation: inv,
			Event:      event.WithDerivedStatus(now),
		})
	}
	return result, nil
}

func (s *invitationService) ListForEvent(ctx context.Context, eventID, callerID, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if notFound(err) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != callerID {
		return nil, 0, domain.NewError(domain.KindForbidden, "Only the organizer can list invitations")
	}
	invs, total, err := s.invitationRepo.ListByEventID(ctx, eventID, search, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list event invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, total, nil
}

func (s *invitationService) Respond(ctx context.Context, invitationID string, accept bool, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if notFound(err) {
			return err
		}
		return fmt.Errorf("get invitation: %w", err)
	}
	if inv.Status != domain.InvitationPending {
		return domain.NewError(domain.KindInvalidTransition, "Already responded")
	}

	event, err := s.eventRepo.GetByID(ctx, inv.EventID)
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
	if inv.ExpiresAt != nil && now.After(*inv.ExpiresAt) {
		return domain.NewError(domain.KindInvalidTransition, "Invitation expired")
	}

	if !accept {
		if err := s.invitationRepo.UpdateStatus(ctx, inv.ID, domain.InvitationRejected); err != nil {
			return fmt.Errorf("update invitation status: %w", err)
		}
		return nil
	}

	unlock := s.locker.Lock(event.ID)
	defer unlock()

	count, err := s.attendanceRepo.CountByEventID(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("count attendance: %w", err)
	}
	if count >= event.Capacity {
		return domain.NewError(domain.KindCapacityExceeded, "Event is full")
	}
	rec := &domain.AttendanceRecord{EventID: event.ID, UserID: userID, CreatedAt: now}
	if err := s.attendanceRepo.Create(ctx, rec); err != nil {
		return fmt.Errorf("create attendance record: %w", err)
	}
	if err := s.invitationRepo.UpdateStatus(ctx, inv.ID, domain.InvitationAccepted); err != nil {
		return fmt.Errorf("update invitation status: %w", err)
	}
	return nil
}
