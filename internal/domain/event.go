package domain

import (
	"context"
	"time"
)

// EventStatus is the publication state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusArchived  EventStatus = "archived"
)

// Event represents a ticketed event owned by an organizer.
// swagger:model Event
type Event struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	Venue       *string     `json:"venue,omitempty"`
	OrganizerID string      `json:"organizer_id"`
	Status      EventStatus `json:"status"`
	// LinkActive gates public visibility of the event page independent of Status.
	LinkActive  bool       `json:"link_active"`
	Capacity    int        `json:"capacity"`
	DateStart   time.Time  `json:"date_start"`
	DateEnd     time.Time  `json:"date_end"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewEvent returns a new draft Event. ID is set by the repository on create.
func NewEvent(name, organizerID string, capacity int, dateStart, dateEnd time.Time, createdAt time.Time) *Event {
	return &Event{
		Name:        name,
		OrganizerID: organizerID,
		Status:      EventStatusDraft,
		LinkActive:  true,
		Capacity:    capacity,
		DateStart:   dateStart,
		DateEnd:     dateEnd,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// IsPubliclyVisible reports whether the public reservation surface may show
// and sell this event: published, link active, and not cancelled.
func (e *Event) IsPubliclyVisible() bool {
	return e.Status == EventStatusPublished && e.LinkActive && e.CancelledAt == nil
}

// EventUpdate holds optional fields for a partial event update; nil fields
// are left unchanged.
type EventUpdate struct {
	Name        *string
	Description *string
	Venue       *string
	Capacity    *int
	DateStart   *time.Time
	DateEnd     *time.Time
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	Update(ctx context.Context, eventID string, upd EventUpdate) (*Event, error)
	UpdateStatus(ctx context.Context, eventID string, status EventStatus) error
	SetLinkActive(ctx context.Context, eventID string, active bool) error
	SetCancelledAt(ctx context.Context, eventID string, at time.Time) error
}

// EventService defines organizer-facing event management operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID, callerID string) (*Event, error)
	ListMyEvents(ctx context.Context, callerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, callerID string, upd EventUpdate) (*Event, error)
	PublishEvent(ctx context.Context, eventID, callerID string) (*Event, error)
	CancelEvent(ctx context.Context, eventID, callerID string) (*Event, error)
	ArchiveEvent(ctx context.Context, eventID, callerID string) (*Event, error)
	UnarchiveEvent(ctx context.Context, eventID, callerID string) (*Event, error)
	SetEventLinkActive(ctx context.Context, eventID, callerID string, active bool) (*Event, error)

	AddTeamMemberByEmail(ctx context.Context, eventID, email, callerID string) (*EventTeamMember, error)
	ListTeamMembers(ctx context.Context, eventID, callerID string) ([]*EventTeamMember, error)
	RemoveTeamMember(ctx context.Context, eventID, userID, callerID string) error
}
