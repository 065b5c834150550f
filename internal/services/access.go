package services

import (
	"context"
	"fmt"

	"doorlist/internal/domain"
)

// canManageEvent reports whether the caller may manage the event: the
// organizer always can, event team members can.
func canManageEvent(ctx context.Context, teamRepo domain.EventTeamMemberRepository, event *domain.Event, callerID string) (bool, error) {
	if event.OrganizerID == callerID {
		return true, nil
	}
	ok, err := teamRepo.IsMember(ctx, event.ID, callerID)
	if err != nil {
		return false, fmt.Errorf("check team membership: %w", err)
	}
	return ok, nil
}
