package domain

import (
	"context"
	"errors"
)

// ErrAlreadyMember is returned when adding a user who is already a team member of the event.
var ErrAlreadyMember = errors.New("already a team member")

// EventTeamMember represents a user who helps manage an event (excluding the organizer).
// swagger:model EventTeamMember
type EventTeamMember struct {
	EventID  string `json:"event_id"`
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Email    string `json:"email"`
}

// EventTeamMemberRepository defines the interface for event team member storage.
type EventTeamMemberRepository interface {
	Add(ctx context.Context, eventID, userID string) error
	IsMember(ctx context.Context, eventID, userID string) (bool, error)
	ListByEventID(ctx context.Context, eventID string) ([]*EventTeamMember, error)
	Remove(ctx context.Context, eventID, userID string) error
}
