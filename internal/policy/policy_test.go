package policy

import (
	"testing"
	"time"

	"convoke/internal/domain"
)

func TestCapacityInRange(t *testing.T) {
	tests := []struct {
		n       int
		wantErr bool
	}{
		{0, true},
		{-5, true},
		{1, false},
		{50, false},
		{100, false},
		{101, true},
	}
	for _, tt := range tests {
		err := CapacityInRange(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("CapacityInRange(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
		}
	}
}

func TestFutureStart(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := FutureStart(now.Add(time.Minute), now); err != nil {
		t.Errorf("future start rejected: %v", err)
	}
	if err := FutureStart(now, now); err == nil {
		t.Error("start equal to now accepted")
	}
	if err := FutureStart(now.Add(-time.Minute), now); err == nil {
		t.Error("past start accepted")
	}
}

func TestBelowOwnerQuota(t *testing.T) {
	if err := BelowOwnerQuota(MaxEventsPerOwner - 1); err != nil {
		t.Errorf("count below quota rejected: %v", err)
	}
	err := BelowOwnerQuota(MaxEventsPerOwner)
	if err == nil {
		t.Fatal("count at quota accepted")
	}
	if kind, ok := domain.KindOf(err); !ok || kind != domain.KindPolicyViolation {
		t.Errorf("quota error kind = %v, want %v", kind, domain.KindPolicyViolation)
	}
}

func TestCityAllowList(t *testing.T) {
	list := NewCityAllowList([]string{"Lima", " Cusco "})

	tests := []struct {
		city string
		want bool
	}{
		{"Lima", true},
		{"lima", true},
		{"  LIMA  ", true},
		{"Cusco", true},
		{"Arequipa", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := list.Allows(tt.city); got != tt.want {
			t.Errorf("Allows(%q) = %v, want %v", tt.city, got, tt.want)
		}
	}

	err := list.Check("Arequipa")
	if err == nil {
		t.Fatal("Check accepted city off the list")
	}
	if kind, _ := domain.KindOf(err); kind != domain.KindPolicyViolation {
		t.Errorf("Check error kind = %v, want %v", kind, domain.KindPolicyViolation)
	}
}

func TestCheckInvitationEligibility(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	private := &domain.Event{ID: "e1", Privacy: domain.PrivacyPrivate, Capacity: 10}
	public := &domain.Event{ID: "e2", Privacy: domain.PrivacyPublic, Capacity: 10}
	invitee := &domain.User{ID: "u1", Email: "guest@example.com"}

	tests := []struct {
		name     string
		in       EligibilityInput
		wantKind domain.Kind
	}{
		{
			name: "eligible",
			in:   EligibilityInput{Event: private, Invitee: invitee, ActiveInvitations: 4, Attendance: 5, Now: now},
		},
		{
			name:     "public event rejects invitations",
			in:       EligibilityInput{Event: public, Invitee: invitee, Now: now},
			wantKind: domain.KindPolicyViolation,
		},
		{
			name:     "unknown invitee",
			in:       EligibilityInput{Event: private, Invitee: nil, Now: now},
			wantKind: domain.KindNotFound,
		},
		{
			name:     "active invitations plus attendance at capacity",
			in:       EligibilityInput{Event: private, Invitee: invitee, ActiveInvitations: 5, Attendance: 5, Now: now},
			wantKind: domain.KindCapacityExceeded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckInvitationEligibility(tt.in)
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			kind, ok := domain.KindOf(err)
			if !ok || kind != tt.wantKind {
				t.Fatalf("error kind = %v, want %v (err=%v)", kind, tt.wantKind, err)
			}
		})
	}
}
