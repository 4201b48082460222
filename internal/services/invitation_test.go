package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"convoke/internal/domain"
)

func newTestInvitationService(
	eventRepo *mockEventRepository,
	invitationRepo *mockInvitationRepository,
	attendanceRepo *mockAttendanceRepository,
	userRepo *mockUserRepository,
	emailService *mockEmailService,
	clock *fakeClock,
) *invitationService {
	return &invitationService{
		eventRepo:      eventRepo,
		invitationRepo: invitationRepo,
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		locker:         NewEventLocker(),
		clock:          clock,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		contextTimeout: time.Second,
	}
}

func TestInvitationService_Invite(t *testing.T) {
	start := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	now := start.Add(-72 * time.Hour)

	newPrivateEvent := func(capacity int) *domain.Event {
		return &domain.Event{
			ID: "e1", Name: "Organizers Dinner", OwnerID: "owner-1", Capacity: capacity,
			Privacy: domain.PrivacyPrivate, Status: domain.EventScheduled,
			StartAt: start, EndAt: start.Add(domain.EventDuration),
		}
	}
	guest := &domain.User{ID: "u1", Email: "guest@example.com", Active: true}

	t.Run("creates pending invitation and sends email", func(t *testing.T) {
		emails := &mockEmailService{}
		svc := newTestInvitationService(
			newMockEventRepository(newPrivateEvent(10)),
			newMockInvitationRepository(),
			newMockAttendanceRepository(),
			newMockUserRepository(guest),
			emails,
			&fakeClock{now: now},
		)
		inv, err := svc.Invite(context.Background(), "e1", "Guest@Example.com", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if inv.Status != domain.InvitationPending {
			t.Fatalf("status = %s, want %s", inv.Status, domain.InvitationPending)
		}
		if inv.Email != "guest@example.com" {
			t.Fatalf("email = %s, want lowercased", inv.Email)
		}
		if len(emails.invitations) != 1 {
			t.Fatalf("sent %d invitation emails, want 1", len(emails.invitations))
		}
	})

	t.Run("public event rejects invitations", func(t *testing.T) {
		ev := newPrivateEvent(10)
		ev.Privacy = domain.PrivacyPublic
		svc := newTestInvitationService(
			newMockEventRepository(ev),
			newMockInvitationRepository(),
			newMockAttendanceRepository(),
			newMockUserRepository(guest),
			&mockEmailService{},
			&fakeClock{now: now},
		)
		_, err := svc.Invite(context.Background(), "e1", "guest@example.com", nil)
		if kind, ok := domain.KindOf(err); !ok || kind != domain.KindPolicyViolation {
			t.Fatalf("error kind = %v, want %v", kind, domain.KindPolicyViolation)
		}
	})

	t.Run("unregistered invitee", func(t *testing.T) {
		svc := newTestInvitationService(
			newMockEventRepository(newPrivateEvent(10)),
			newMockInvitationRepository(),
			newMockAttendanceRepository(),
			newMockUserRepository(),
			&mockEmailService{},
			&fakeClock{now: now},
		)
		_, err := svc.Invite(context.Background(), "e1", "stranger@example.com", nil)
		if kind, ok := domain.KindOf(err); !ok || kind != domain.KindNotFound {
			t.Fatalf("error kind = %v, want %v", kind, domain.KindNotFound)
		}
	})

	t.Run("duplicate active invitation", func(t *testing.T) {
		svc := newTestInvitationService(
			newMockEventRepository(newPrivateEvent(10)),
			newMockInvitationRepository(&domain.Invitation{
				ID: "inv-0", EventID: "e1", Email: "guest@example.com", Status: domain.InvitationPending,
			}),
			newMockAttendanceRepository(),
			newMockUserRepository(guest),
			&mockEmailService{},
			&fakeClock{now: now},
		)
		_, err := svc.Invite(context.Background(), "e1", "GUEST@example.com", nil)
		if kind, ok := domain.KindOf(err); !ok || kind != domain.KindConflict {
			t.Fatalf("error kind = %v, want %v", kind, domain.KindConflict)
		}
	})

	t.Run("rejected invitation frees the slot", func(t *testing.T) {
		svc := newTestInvitationService(
			newMockEventRepository(newPrivateEvent(10)),
			newMockInvitationRepository(&domain.Invitation{
				ID: "inv-0", EventID: "e1", Email: "guest@example.com", Status: domain.InvitationRejected,
			}),
			newMockAttendanceRepository(),
			newMockUserRepository(guest),
			&mockEmailService{},
			&fakeClock{now: now},
		)
		if _, err := svc.Invite(context.Background(), "e1", "guest@example.com", nil); err != nil {
			t.Fatalf("re-invite after rejection failed: %v", err)
		}
	})

	t.Run("invitations plus attendance capped at capacity", func(t *testing.T) {
		svc := newTestInvitationService(
			newMockEventRepository(newPrivateEvent(3)),
			newMockInvitationRepository(
				&domain.Invitation{ID: "i1", EventID: "e1", Email: "a@example.com", Status: domain.InvitationPending},
				&domain.Invitation{ID: "i2", EventID: "e1", Email: "b@example.com", Status: domain.InvitationAccepted},
			),
			newMockAttendanceRepository(&domain.AttendanceRecord{EventID: "e1", UserID: "u9"}),
			newMockUserRepository(guest),
			&mockEmailService{},
			&fakeClock{now: now},
		)
		_, err := svc.Invite(context.Background(), "e1", "guest@example.com", nil)
		if kind, ok := domain.KindOf(err); !ok || kind != domain.KindCapacityExceeded {
			t.Fatalf("error kind = %v, want %v", kind, domain.KindCapacityExceeded)
		}
	})

	t.Run("email failure does not fail the invite", func(t *testing.T) {
		svc := newTestInvitationService(
			newMockEventRepository(newPrivateEvent(10)),
			newMockInvitationRepository(),
			newMockAttendanceRepository(),
			newMockUserRepository(guest),
			&mockEmailService{err: context.DeadlineExceeded},
			&fakeClock{now: now},
		)
		if _, err := svc.Invite(context.Background(), "e1", "guest@example.com", nil); err != nil {
			t.Fatalf("invite failed on email error: %v", err)
		}
	})
}

func TestInvitationService_Respond(t *testing.T) {
	start := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	now := start.Add(-24 * time.Hour)

	newEvent := func(capacity int) *domain.Event {
		return &domain.Event{
			ID: "e1", OwnerID: "owner-1", Capacity: capacity,
			Privacy: domain.PrivacyPrivate, Status: domain.EventScheduled,
			StartAt: start, EndAt: start.Add(domain.EventDuration),
		}
	}
	newPending := func() *domain.Invitation {
		return &domain.Invitation{
			ID: "inv-1", EventID: "e1", Email: "guest@example.com", Status: domain.InvitationPending,
		}
	}

	t.Run("accept confirms attendance", func(t *testing.T) {
		inv := newPending()
		attendance := newMockAttendanceRepository()
		svc := newTestInvitationService(
			newMockEventRepository(newEvent(10)),
			newMockInvitationRepository(inv),
			attendance,
			newMockUserRepository(),
			&mockEmailService{},
			&fakeClock{now: now},
		)
		if err := svc.Respond(context.Background(), "inv-1", true, "u1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if inv.Status != domain.InvitationAccepted {
			t.Fatalf("invitation status = %s, want %s", inv.Status, domain.InvitationAccepted)
		}
		exists, _ := attendance.Exists(context.Background(), "e1", "u1")
		if !exists {
			t.Fatal("attendance record missing after accept")
		}
	})

	t.Run("reject leaves no attendance", func(t *testing.T) {
		inv := newPending()
		attendance := newMockAttendanceRepository()
		svc := newTestInvitationService(
			newMockEventRepository(newEvent(10)),
			newMockInvitationRepository(inv),
			attendance,
			newMockUserRepository(),
			&mockEmailService{},
			&fakeClock{now: now},
		)
		if err := svc.Respond(context.Background(), "inv-1", false, "u1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if inv.Status != domain.InvitationRejected {
			t.Fatalf("invitation status = %s, want %s", inv.Status, domain.InvitationRejected)
		}
		count, _ := attendance.CountByEventID(context.Background(), "e1")
		if count != 0 {
			t.Fatalf("attendance count = %d, want 0", count)
		}
	})

	t.Run("already responded", func(t *testing.T) {
		inv := newPending()
		inv.Status = domain.InvitationAccepted
		svc := newTestInvitationService(
			newMockEventRepository(newEvent(10)),
			newMockInvitationRepository(inv),
			newMockAttendanceRepository(),
			newMockUserRepository(),
			&mockEmailService{},
			&fakeClock{now: now},
		)
		err := svc.Respond(context.Background(), "inv-1", true, "u1")
		if kind, ok := domain.KindOf(err); !ok || kind != domain.KindInvalidTransition {
			t.Fatalf("error kind = %v, want %v", kind, domain.KindInvalidTransition)
		}
	})

	t.Run("event already started", func(t *testing.T) {
		svc := newTestInvitationService(
			newMockEventRepository(newEvent(10)),
			newMockInvitationRepository(newPending()),
			newMockAttendanceRepository(),
			newMockUserRepository(),
			&mockEmailService{},
			&fakeClock{now: start},
		)
		err := svc.Respond(context.Background(), "inv-1", true, "u1")
		if kind, ok := domain.KindOf(err); !ok || kind != domain.KindInvalidTransition {
			t.Fatalf("error kind = %v, want %v", kind, domain.KindInvalidTransition)
		}
	})

	t.Run("expired invitation", func(t *testing.T) {
		inv := newPending()
		expired := now.Add(-time.Hour)
		inv.ExpiresAt = &expired
		svc := newTestInvitationService(
			newMockEventRepository(newEvent(10)),
			newMockInvitationRepository(inv),
			newMockAttendanceRepository(),
			newMockUserRepository(),
			&mockEmailService{},
			&fakeClock{now: now},
		)
		err := svc.Respond(context.Background(), "inv-1", true, "u1")
		if kind, ok := domain.KindOf(err); !ok || kind != domain.KindInvalidTransition {
			t.Fatalf("error kind = %v, want %v", kind, domain.KindInvalidTransition)
		}
	})

	t.Run("accept against a full event", func(t *testing.T) {
		inv := newPending()
		svc := newTestInvitationService(
			newMockEventRepository(newEvent(1)),
			newMockInvitationRepository(inv),
			newMockAttendanceRepository(&domain.AttendanceRecord{EventID: "e1", UserID: "other"}),
			newMockUserRepository(),
			&mockEmailService{},
			&fakeClock{now: now},
		)
		err := svc.Respond(context.Background(), "inv-1", true, "u1")
		if kind, ok := domain.KindOf(err); !ok || kind != domain.KindCapacityExceeded {
			t.Fatalf("error kind = %v, want %v", kind, domain.KindCapacityExceeded)
		}
		if inv.Status != domain.InvitationPending {
			t.Fatalf("invitation status changed to %s on failed accept", inv.Status)
		}
	})
}

func TestInvitationService_ListForInvitee(t *testing.T) {
	start := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	now := start.Add(-time.Hour)
	event := &domain.Event{
		ID: "e1", Name: "Organizers Dinner", Privacy: domain.PrivacyPrivate,
		Status: domain.EventScheduled, StartAt: start, EndAt: start.Add(domain.EventDuration),
	}
	svc := newTestInvitationService(
		newMockEventRepository(event),
		newMockInvitationRepository(
			&domain.Invitation{ID: "i1", EventID: "e1", Email: "guest@example.com", Status: domain.InvitationPending},
			&domain.Invitation{ID: "i2", EventID: "gone", Email: "guest@example.com", Status: domain.InvitationPending},
			&domain.Invitation{ID: "i3", EventID: "e1", Email: "other@example.com", Status: domain.InvitationPending},
		),
		newMockAttendanceRepository(),
		newMockUserRepository(),
		&mockEmailService{},
		&fakeClock{now: now},
	)

	items, err := svc.ListForInvitee(context.Background(), "Guest@Example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The invitation whose event no longer exists is skipped.
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Event.ID != "e1" {
		t.Fatalf("event = %s, want e1", items[0].Event.ID)
	}
}

func TestInvitationService_ListForEvent(t *testing.T) {
	start := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	event := &domain.Event{
		ID: "e1", OwnerID: "owner-1", Privacy: domain.PrivacyPrivate,
		Status: domain.EventScheduled, StartAt: start, EndAt: start.Add(domain.EventDuration),
	}
	svc := newTestInvitationService(
		newMockEventRepository(event),
		newMockInvitationRepository(
			&domain.Invitation{ID: "i1", EventID: "e1", Email: "a@example.com", Status: domain.InvitationPending},
		),
		newMockAttendanceRepository(),
		newMockUserRepository(),
		&mockEmailService{},
		&fakeClock{now: start.Add(-time.Hour)},
	)

	invs, total, err := svc.ListForEvent(context.Background(), "e1", "owner-1", "", domain.PaginationParams{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(invs) != 1 {
		t.Fatalf("got %d/%d, want 1/1", len(invs), total)
	}

	_, _, err = svc.ListForEvent(context.Background(), "e1", "intruder", "", domain.PaginationParams{Page: 1, PageSize: 20})
	if kind, ok := domain.KindOf(err); !ok || kind != domain.KindForbidden {
		t.Fatalf("error kind = %v, want %v", kind, domain.KindForbidden)
	}
}
