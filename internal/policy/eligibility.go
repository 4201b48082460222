package policy

import (
	"time"

	"convoke/internal/domain"
)

// EligibilityInput gathers everything the invitation eligibility verdict
// depends on. ActiveInvitations counts pending plus accepted invitations
// for the event; Attendance counts confirmed records.
type EligibilityInput struct {
	Event             *domain.Event
	Invitee           *domain.User
	ActiveInvitations int
	Attendance        int
	Now               time.Time
}

// CheckInvitationEligibility is the single home for the invitation rules:
// private event only, known invitee, and outstanding invitations plus
// confirmed attendance must stay under capacity. Duplicate-invitation
// detection needs the existing invitation itself and stays with the caller.
func CheckInvitationEligibility(in EligibilityInput) error {
	if in.Event.Privacy != domain.PrivacyPrivate {
		return domain.NewError(domain.KindPolicyViolation, "Invitations only for private events")
	}
	if in.Invitee == nil {
		return domain.NewError(domain.KindNotFound, "User not found")
	}
	if in.ActiveInvitations+in.Attendance >= in.Event.Capacity {
		return domain.NewError(domain.KindCapacityExceeded, "Invitation limit reached for this event")
	}
	return nil
}
