package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"doorlist/internal/delivery/http/helpers"
	"doorlist/internal/domain"
)

type TicketController struct {
	Logger  *slog.Logger
	Booking domain.BookingService
}

func NewTicketController(logger *slog.Logger, booking domain.BookingService) *TicketController {
	return &TicketController{Logger: logger, Booking: booking}
}

// WalkInRequest is the request body for POST /events/{eventID}/tickets/walk-in.
type WalkInRequest struct {
	TierID     string `json:"tier_id"`
	Quantity   int    `json:"quantity"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`
}

// Validate implements Validator.
func (q WalkInRequest) Validate() []string {
	var errs []string
	if q.TierID == "" {
		errs = append(errs, "tier_id is required")
	}
	if q.Quantity < 1 {
		errs = append(errs, "quantity must be at least 1")
	}
	if q.GuestName == "" {
		errs = append(errs, "guest_name is required")
	}
	if q.GuestEmail != "" && !emailRegex.MatchString(q.GuestEmail) {
		errs = append(errs, "guest_email format is invalid")
	}
	return errs
}

// IssueWalkIn godoc
// @Summary Issue a walk-in ticket at the door
// @Description Staff-side issue that bypasses the public flow split. Paid tiers record the cash amount as paid.
// @Tags tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body WalkInRequest true "Walk-in data"
// @Success 201 {object} controllers.TicketSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict, message carries the rejection reason"
// @Router /events/{eventID}/tickets/walk-in [post]
func (c *TicketController) IssueWalkIn(w http.ResponseWriter, r *http.Request) {
	var req WalkInRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	ticket, err := c.Booking.IssueWalkIn(r.Context(), userID, domain.RSVPInput{
		EventID:    r.PathValue("eventID"),
		TierID:     req.TierID,
		Quantity:   req.Quantity,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		GuestPhone: req.GuestPhone,
	})
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, ticket)
}

// ListTicketsResponse is the data payload for GET /events/{eventID}/tickets.
type ListTicketsResponse struct {
	Tickets    []*domain.Ticket       `json:"tickets"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListTicketsSuccessResponse is the success envelope for GET /events/{eventID}/tickets (200).
type ListTicketsSuccessResponse struct {
	Data  ListTicketsResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ListTickets godoc
// @Summary List the event's tickets
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListTicketsSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/tickets [get]
func (c *TicketController) ListTickets(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	tickets, total, err := c.Booking.ListEventTickets(r.Context(), r.PathValue("eventID"), userID, params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListTicketsResponse{
		Tickets:    tickets,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// ListStalePendingSuccessResponse is the success envelope for the stale-pending listing (200).
type ListStalePendingSuccessResponse struct {
	Data  []*domain.Ticket  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListStalePending godoc
// @Summary List abandoned pending tickets
// @Description Pending tickets older than older_than_minutes (default 60). Nothing expires them automatically; this is the operator's reconciliation view.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param older_than_minutes query int false "Age cutoff in minutes (default 60)"
// @Success 200 {object} controllers.ListStalePendingSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/tickets/stale-pending [get]
func (c *TicketController) ListStalePending(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	olderThan := 60 * time.Minute
	if s := r.URL.Query().Get("older_than_minutes"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			olderThan = time.Duration(v) * time.Minute
		}
	}
	tickets, err := c.Booking.ListStalePendingTickets(r.Context(), r.PathValue("eventID"), userID, olderThan)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tickets)
}

// CheckIn godoc
// @Summary Check a ticket in at the door
// @Description Transitions a confirmed ticket to checked_in. A ticket in any other state answers 409.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param code path string true "Ticket code"
// @Success 200 {object} controllers.TicketSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not in a checkable state)"
// @Router /events/{eventID}/tickets/{code}/check-in [post]
func (c *TicketController) CheckIn(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Booking.CheckInTicket)
}

// UndoCheckIn godoc
// @Summary Undo a check-in
// @Description Returns a checked_in ticket to confirmed.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param code path string true "Ticket code"
// @Success 200 {object} controllers.TicketSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/tickets/{code}/undo-check-in [post]
func (c *TicketController) UndoCheckIn(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Booking.UndoCheckIn)
}

// Cancel godoc
// @Summary Cancel a confirmed ticket
// @Description Cancels the ticket and releases its seats back to the tier.
// @Tags tickets
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param code path string true "Ticket code"
// @Success 200 {object} controllers.TicketSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/tickets/{code}/cancel [post]
func (c *TicketController) Cancel(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Booking.CancelTicket)
}

func (c *TicketController) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, eventID, code, callerID string) (*domain.Ticket, error)) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	ticket, err := fn(r.Context(), r.PathValue("eventID"), r.PathValue("code"), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}
