package domain

import (
	"context"
	"time"
)

// Resource types accepted for event attachments. All resources are links;
// file uploads are handled elsewhere and referenced by URL here.
const (
	ResourceLink     = "link"
	ResourceDocument = "document"
	ResourceVideo    = "video"
)

// ValidResourceType reports whether t is a known resource type.
func ValidResourceType(t string) bool {
	return t == ResourceLink || t == ResourceDocument || t == ResourceVideo
}

// EventResource is a link attachment on an event.
// swagger:model EventResource
type EventResource struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// AddResourceInput carries the caller-supplied fields for a new resource.
type AddResourceInput struct {
	Name string
	URL  string
	Type string
}

// ResourceRepository defines storage operations for event resources.
type ResourceRepository interface {
	Create(ctx context.Context, res *EventResource) error
	GetByID(ctx context.Context, id string) (*EventResource, error)
	ListByEventID(ctx context.Context, eventID string) ([]*EventResource, error)
	Delete(ctx context.Context, id string) error
}
