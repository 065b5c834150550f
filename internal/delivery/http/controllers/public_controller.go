package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"doorlist/internal/delivery/http/helpers"
	"doorlist/internal/domain"
)

type PublicController struct {
	Logger  *slog.Logger
	Public  domain.PublicService
	Booking domain.BookingService
}

func NewPublicController(logger *slog.Logger, public domain.PublicService, booking domain.BookingService) *PublicController {
	return &PublicController{Logger: logger, Public: public, Booking: booking}
}

// PublicTier is the guest-facing view of a tier. Sold counts are not exposed,
// only what is left.
type PublicTier struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PriceCents    int    `json:"price_cents"`
	Remaining     int    `json:"remaining"`
	MaxPerContact *int   `json:"max_per_contact,omitempty"`
}

// PublicEvent is the guest-facing view of an event.
type PublicEvent struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Venue       *string   `json:"venue,omitempty"`
	DateStart   time.Time `json:"date_start"`
	DateEnd     time.Time `json:"date_end"`
}

// PublicEventResponse is the data payload for GET /public/events/{eventID}.
type PublicEventResponse struct {
	Event PublicEvent  `json:"event"`
	Tiers []PublicTier `json:"tiers"`
}

// PublicEventSuccessResponse is the success envelope for GET /public/events/{eventID} (200).
type PublicEventSuccessResponse struct {
	Data  PublicEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// GetEvent godoc
// @Summary Public event page
// @Description Returns the event and its tiers with remaining counts. Unpublished, link-disabled and cancelled events answer 404.
// @Tags public
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.PublicEventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /public/events/{eventID} [get]
func (c *PublicController) GetEvent(w http.ResponseWriter, r *http.Request) {
	view, err := c.Public.GetPublicEvent(r.Context(), r.PathValue("eventID"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	tiers := make([]PublicTier, 0, len(view.Tiers))
	for _, t := range view.Tiers {
		tiers = append(tiers, PublicTier{
			ID:            t.ID,
			Name:          t.Name,
			PriceCents:    t.PriceCents,
			Remaining:     t.Remaining(),
			MaxPerContact: t.MaxPerContact,
		})
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PublicEventResponse{
		Event: PublicEvent{
			ID:          view.Event.ID,
			Name:        view.Event.Name,
			Description: view.Event.Description,
			Venue:       view.Event.Venue,
			DateStart:   view.Event.DateStart,
			DateEnd:     view.Event.DateEnd,
		},
		Tiers: tiers,
	})
}

// ReserveRequest is the shared request body for checkout and RSVP.
type ReserveRequest struct {
	TierID     string `json:"tier_id"`
	Quantity   int    `json:"quantity"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`
}

// Validate implements Validator.
func (q ReserveRequest) Validate() []string {
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
	if q.GuestEmail == "" && q.GuestPhone == "" {
		errs = append(errs, "guest_email or guest_phone is required")
	}
	if q.GuestEmail != "" && !emailRegex.MatchString(q.GuestEmail) {
		errs = append(errs, "guest_email format is invalid")
	}
	return errs
}

// CheckoutSuccessResponse is the success envelope for POST /public/events/{eventID}/checkout (201).
type CheckoutSuccessResponse struct {
	Data  *domain.CheckoutResult `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// Checkout godoc
// @Summary Start a paid-tier checkout
// @Description Creates a pending ticket and a hosted payment session. The caller is redirected to data.redirect_url; the ticket confirms via webhook after payment.
// @Tags public
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Param body body ReserveRequest true "Reservation"
// @Success 201 {object} controllers.CheckoutSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict, message carries the rejection reason"
// @Router /public/events/{eventID}/checkout [post]
func (c *PublicController) Checkout(w http.ResponseWriter, r *http.Request) {
	var req ReserveRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Booking.Checkout(r.Context(), domain.CheckoutInput{
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
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// TicketSuccessResponse is the success envelope for endpoints returning one ticket.
type TicketSuccessResponse struct {
	Data  *domain.Ticket    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RSVP godoc
// @Summary Reserve a free tier
// @Description Confirms the reservation immediately; no payment is involved. A sold-out or over-cap request answers 409 with the reason.
// @Tags public
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Param body body ReserveRequest true "Reservation"
// @Success 201 {object} controllers.TicketSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict, message carries the rejection reason"
// @Router /public/events/{eventID}/rsvp [post]
func (c *PublicController) RSVP(w http.ResponseWriter, r *http.Request) {
	var req ReserveRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ticket, err := c.Booking.RSVP(r.Context(), domain.RSVPInput{
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

// GetTicket godoc
// @Summary Look up a ticket by code
// @Description Public lookup for the printable ticket page.
// @Tags public
// @Produce json
// @Param code path string true "Ticket code"
// @Success 200 {object} controllers.TicketSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /public/tickets/{code} [get]
func (c *PublicController) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := c.Booking.GetTicketByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ticket)
}
