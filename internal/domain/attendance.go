package domain

import (
	"context"
	"time"
)

// AttendanceRecord is proof that a user will attend an event. Identity is
// the (event, user) pair; records are never mutated once written.
// swagger:model AttendanceRecord
type AttendanceRecord struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AttendanceRepository defines storage operations for attendance records.
type AttendanceRepository interface {
	Create(ctx context.Context, rec *AttendanceRecord) error
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	ListByUserID(ctx context.Context, userID string) ([]*AttendanceRecord, error)
	ListUserIDsByEventID(ctx context.Context, eventID string) ([]string, error)
}

// AttendeeService defines attendee-facing operations.
type AttendeeService interface {
	// ConfirmAttendance records that the user will attend the event,
	// enforcing the start-time, duplicate, and capacity checks.
	ConfirmAttendance(ctx context.Context, eventID, userID string) error
	// ListAttendedEvents returns events the user has a record for whose
	// start is after the recency cutoff.
	ListAttendedEvents(ctx context.Context, userID string) ([]*Event, error)
	ListAttendees(ctx context.Context, eventID string) ([]*User, error)
}
