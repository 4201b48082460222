package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle status of an event.
type EventStatus string

const (
	EventScheduled  EventStatus = "scheduled"
	EventInProgress EventStatus = "in_progress"
	EventFinished   EventStatus = "finished"
	EventCancelled  EventStatus = "cancelled"
)

// Terminal reports whether the status is absorbing: no further transitions,
// automatic or owner-initiated, are allowed out of it.
func (s EventStatus) Terminal() bool {
	return s == EventFinished || s == EventCancelled
}

// EventPrivacy controls who can see an event and how attendance is gained.
type EventPrivacy string

const (
	PrivacyPublic  EventPrivacy = "public"
	PrivacyPrivate EventPrivacy = "private"
)

// EventDuration is the fixed event length. End time is always derived as
// start + EventDuration; any user-supplied end date is ignored.
const EventDuration = 24 * time.Hour

// Event represents a schedulable activity with capacity, privacy, and a
// lifecycle status.
// swagger:model Event
type Event struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	StartAt     time.Time    `json:"start_at"`
	EndAt       time.Time    `json:"end_at"`
	Capacity    int          `json:"capacity"`
	Description *string      `json:"description,omitempty"`
	OwnerID     string       `json:"owner_id"`
	Privacy     EventPrivacy `json:"privacy"`
	Status      EventStatus  `json:"status"`
	City        string       `json:"city"`
	ImageURL    *string      `json:"image_url,omitempty"`
	Category    *string      `json:"category,omitempty"`
	Lat         *float64     `json:"lat,omitempty"`
	Lng         *float64     `json:"lng,omitempty"`
	Address     *string      `json:"address,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewEvent returns a scheduled Event with the end time derived from the start.
// ID is typically set by the repository on create.
func NewEvent(name, ownerID, city string, startAt time.Time, capacity int, privacy EventPrivacy, now time.Time) *Event {
	return &Event{
		Name:      name,
		StartAt:   startAt,
		EndAt:     startAt.Add(EventDuration),
		Capacity:  capacity,
		OwnerID:   ownerID,
		Privacy:   privacy,
		Status:    EventScheduled,
		City:      city,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DeriveStatus returns the effective status of e at the given time. Terminal
// statuses are returned unchanged. The function is pure, idempotent, and
// monotonic: repeated calls with a fixed now converge, and the result never
// regresses as now advances.
func DeriveStatus(e *Event, now time.Time) EventStatus {
	status := e.Status
	if status.Terminal() {
		return status
	}
	if status == EventScheduled && !now.Before(e.StartAt) {
		status = EventInProgress
	}
	if status == EventInProgress && !now.Before(e.EndAt) {
		status = EventFinished
	}
	return status
}

// WithDerivedStatus returns a copy of e whose Status is derived for now.
// Read paths hand out these copies so stored state stays untouched.
func (e *Event) WithDerivedStatus(now time.Time) *Event {
	out := *e
	out.Status = DeriveStatus(e, now)
	return &out
}

// statusTransitions is the owner-initiated transition table. Automatic
// time-driven advancement goes through DeriveStatus instead.
var statusTransitions = map[EventStatus][]EventStatus{
	EventScheduled:  {EventInProgress, EventCancelled},
	EventInProgress: {EventFinished, EventCancelled},
	EventFinished:   {},
	EventCancelled:  {},
}

// CanTransition reports whether an owner may move an event from one status
// to another.
func CanTransition(from, to EventStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidEventStatus reports whether s is one of the known statuses.
func ValidEventStatus(s EventStatus) bool {
	_, ok := statusTransitions[s]
	return ok
}

// EventRepository defines storage operations for events. Implementations
// report a missing event with a KindNotFound domain error.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetByName matches the event name case-insensitively.
	GetByName(ctx context.Context, name string) (*Event, error)
	// ListPublicUpcoming returns public events whose start is after now,
	// cancelled ones included.
	ListPublicUpcoming(ctx context.Context, now time.Time) ([]*Event, error)
	// ListByOwnerSince returns the owner's events whose start is after cutoff.
	ListByOwnerSince(ctx context.Context, ownerID string, cutoff time.Time) ([]*Event, error)
	CountByOwnerSince(ctx context.Context, ownerID string, cutoff time.Time) (int, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Event, error)
	ListNonTerminal(ctx context.Context) ([]*Event, error)
	UpdateStatus(ctx context.Context, id string, status EventStatus, updatedAt time.Time) error
}

// CreateEventInput carries the caller-supplied fields for event creation.
// End time is not accepted; it is derived server-side.
type CreateEventInput struct {
	Name        string
	StartAt     time.Time
	Capacity    int
	Description *string
	OwnerID     string
	Privacy     EventPrivacy
	City        string
	ImageURL    *string
	Category    *string
	Lat         *float64
	Lng         *float64
	Address     *string
}

// EventService defines the event lifecycle operations.
type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*Event, error)
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	ListPublicEvents(ctx context.Context) ([]*Event, error)
	ListManagedEvents(ctx context.Context, ownerID string) ([]*Event, error)
	CancelEvent(ctx context.Context, eventID, byUserID string) (*Event, error)
	UpdateEventStatus(ctx context.Context, eventID string, newStatus EventStatus, byUserID string) (*Event, error)

	AddResource(ctx context.Context, eventID, byUserID string, input AddResourceInput) (*EventResource, error)
	ListResources(ctx context.Context, eventID string) ([]*EventResource, error)
	RemoveResource(ctx context.Context, eventID, resourceID, byUserID string) error

	// ReconcileStatuses persists the time-derived status of every
	// non-terminal event. Returns the number of events advanced.
	ReconcileStatuses(ctx context.Context) (int, error)
}
