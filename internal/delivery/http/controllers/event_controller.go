package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"doorlist/internal/delivery/http/helpers"
	"doorlist/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{Logger: logger, Service: svc}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Venue       *string   `json:"venue"`
	Capacity    int       `json:"capacity"`
	DateStart   time.Time `json:"date_start"`
	DateEnd     time.Time `json:"date_end"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	if c.Capacity < 0 {
		errs = append(errs, "capacity must not be negative")
	}
	if c.DateStart.IsZero() || c.DateEnd.IsZero() {
		errs = append(errs, "date_start and date_end are required")
	} else if !c.DateStart.Before(c.DateEnd) {
		errs = append(errs, "date_start must be before date_end")
	}
	return errs
}

// EventSuccessResponse is the success envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates a draft event owned by the authenticated user.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	event := domain.NewEvent(req.Name, userID, req.Capacity, req.DateStart, req.DateEnd, time.Now())
	event.Description = req.Description
	event.Venue = req.Venue
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEventsSuccessResponse is the success envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEvents godoc
// @Summary List events the user can manage
// @Description Returns events the user owns or is a team member of.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListMyEvents(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}.
// Absent fields remain unchanged.
type UpdateEventRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Venue       *string    `json:"venue"`
	Capacity    *int       `json:"capacity"`
	DateStart   *time.Time `json:"date_start"`
	DateEnd     *time.Time `json:"date_end"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Name != nil && *u.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if u.Capacity != nil && *u.Capacity < 0 {
		errs = append(errs, "capacity must not be negative")
	}
	return errs
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partially updates event fields. The date window is re-validated server-side against the merged values.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	upd := domain.EventUpdate{
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		Capacity:    req.Capacity,
		DateStart:   req.DateStart,
		DateEnd:     req.DateEnd,
	}
	event, err := c.Service.UpdateEvent(r.Context(), r.PathValue("eventID"), userID, upd)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// lifecycle runs one of the owner-only event state transitions.
func (c *EventController) lifecycle(w http.ResponseWriter, r *http.Request, fn func(eventID, callerID string) (*domain.Event, error)) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	event, err := fn(r.PathValue("eventID"), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// PublishEvent godoc
// @Summary Publish a draft event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not a draft)"
// @Router /events/{eventID}/publish [post]
func (c *EventController) PublishEvent(w http.ResponseWriter, r *http.Request) {
	c.lifecycle(w, r, func(eventID, callerID string) (*domain.Event, error) {
		return c.Service.PublishEvent(r.Context(), eventID, callerID)
	})
}

// CancelEvent godoc
// @Summary Cancel an event
// @Description Marks the event cancelled. The public page stops selling; existing tickets are untouched.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already cancelled)"
// @Router /events/{eventID}/cancel [post]
func (c *EventController) CancelEvent(w http.ResponseWriter, r *http.Request) {
	c.lifecycle(w, r, func(eventID, callerID string) (*domain.Event, error) {
		return c.Service.CancelEvent(r.Context(), eventID, callerID)
	})
}

// ArchiveEvent godoc
// @Summary Archive an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/archive [post]
func (c *EventController) ArchiveEvent(w http.ResponseWriter, r *http.Request) {
	c.lifecycle(w, r, func(eventID, callerID string) (*domain.Event, error) {
		return c.Service.ArchiveEvent(r.Context(), eventID, callerID)
	})
}

// UnarchiveEvent godoc
// @Summary Restore an archived event to published
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/unarchive [post]
func (c *EventController) UnarchiveEvent(w http.ResponseWriter, r *http.Request) {
	c.lifecycle(w, r, func(eventID, callerID string) (*domain.Event, error) {
		return c.Service.UnarchiveEvent(r.Context(), eventID, callerID)
	})
}

// SetLinkActiveRequest is the request body for PATCH /events/{eventID}/link.
type SetLinkActiveRequest struct {
	Active *bool `json:"active"`
}

// Validate implements Validator.
func (s SetLinkActiveRequest) Validate() []string {
	if s.Active == nil {
		return []string{"active is required"}
	}
	return nil
}

// SetLinkActive godoc
// @Summary Enable or disable the public event link
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body SetLinkActiveRequest true "Link state"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events/{eventID}/link [patch]
func (c *EventController) SetLinkActive(w http.ResponseWriter, r *http.Request) {
	var req SetLinkActiveRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.SetEventLinkActive(r.Context(), r.PathValue("eventID"), userID, *req.Active)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// AddTeamMemberRequest is the request body for POST /events/{eventID}/team.
type AddTeamMemberRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (a AddTeamMemberRequest) Validate() []string {
	var errs []string
	if a.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(a.Email) {
		errs = append(errs, "email format is invalid")
	}
	return errs
}

// TeamMemberSuccessResponse is the success envelope for POST /events/{eventID}/team (201).
type TeamMemberSuccessResponse struct {
	Data  *domain.EventTeamMember `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// AddTeamMember godoc
// @Summary Add a team member by email
// @Description Grants an existing user management access to the event. Owner only.
// @Tags team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body AddTeamMemberRequest true "User email"
// @Success 201 {object} controllers.TeamMemberSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no such user)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already a member)"
// @Router /events/{eventID}/team [post]
func (c *EventController) AddTeamMember(w http.ResponseWriter, r *http.Request) {
	var req AddTeamMemberRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	member, err := c.Service.AddTeamMemberByEmail(r.Context(), r.PathValue("eventID"), req.Email, userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, member)
}

// ListTeamSuccessResponse is the success envelope for GET /events/{eventID}/team (200).
type ListTeamSuccessResponse struct {
	Data  []*domain.EventTeamMember `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// ListTeamMembers godoc
// @Summary List event team members
// @Tags team
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.ListTeamSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/team [get]
func (c *EventController) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	members, err := c.Service.ListTeamMembers(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, members)
}

// RemoveTeamMember godoc
// @Summary Remove a team member
// @Description Owner only.
// @Tags team
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param userID path string true "User ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/team/{userID} [delete]
func (c *EventController) RemoveTeamMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.RemoveTeamMember(r.Context(), r.PathValue("eventID"), r.PathValue("userID"), userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "removed"})
}
