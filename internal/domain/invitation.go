package domain

import (
	"context"
	"time"
)

// InvitationStatus is the lifecycle status of an invitation. A pending
// invitation transitions exactly once, to accepted or rejected, and is
// terminal thereafter.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

// Active reports whether the invitation still counts against the event's
// capacity: pending and accepted do, rejected does not.
func (s InvitationStatus) Active() bool {
	return s == InvitationPending || s == InvitationAccepted
}

// Invitation is a pending offer of attendance for a private event.
// swagger:model Invitation
type Invitation struct {
	ID        string           `json:"id"`
	EventID   string           `json:"event_id"`
	Email     string           `json:"email"`
	Status    InvitationStatus `json:"status"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// InvitationWithEvent bundles an invitation with its event for inbox views.
type InvitationWithEvent struct {
	Invitation *Invitation `json:"invitation"`
	Event      *Event      `json:"event"`
}

// InvitationRepository defines storage operations for invitations. Email
// matching is case-insensitive throughout.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	// GetActiveByEventAndEmail returns the pending or accepted invitation
	// for the pair, if any.
	GetActiveByEventAndEmail(ctx context.Context, eventID, email string) (*Invitation, error)
	CountActiveByEventID(ctx context.Context, eventID string) (int, error)
	ListByEmail(ctx context.Context, email string) ([]*Invitation, error)
	ListByEventID(ctx context.Context, eventID string, search string, params PaginationParams) ([]*Invitation, int, error)
	UpdateStatus(ctx context.Context, id string, status InvitationStatus) error
}

// InvitationService defines the invitation workflow for private events.
type InvitationService interface {
	Invite(ctx context.Context, eventID, inviteeEmail string, expiresAt *time.Time) (*Invitation, error)
	ListForInvitee(ctx context.Context, email string) ([]*InvitationWithEvent, error)
	ListForEvent(ctx context.Context, eventID, callerID, search string, params PaginationParams) ([]*Invitation, int, error)
	Respond(ctx context.Context, invitationID string, accept bool, userID string) error
}
