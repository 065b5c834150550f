package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"doorlist/internal/delivery/http/helpers"
	"doorlist/internal/domain"
)

type TierController struct {
	Logger  *slog.Logger
	Service domain.TierService
}

func NewTierController(logger *slog.Logger, svc domain.TierService) *TierController {
	return &TierController{Logger: logger, Service: svc}
}

// CreateTierRequest is the request body for POST /events/{eventID}/tiers.
type CreateTierRequest struct {
	Name          string `json:"name"`
	PriceCents    int    `json:"price_cents"`
	QuantityTotal int    `json:"quantity_total"`
	MaxPerContact *int   `json:"max_per_contact"`
}

// Validate implements Validator.
func (c CreateTierRequest) Validate() []string {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	if c.PriceCents < 0 {
		errs = append(errs, "price_cents must not be negative")
	}
	if c.QuantityTotal < 1 {
		errs = append(errs, "quantity_total must be at least 1")
	}
	if c.MaxPerContact != nil && *c.MaxPerContact < 1 {
		errs = append(errs, "max_per_contact must be at least 1")
	}
	return errs
}

// TierSuccessResponse is the success envelope for endpoints returning one tier.
type TierSuccessResponse struct {
	Data  *domain.TicketTier `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// CreateTier godoc
// @Summary Create a ticket tier
// @Description Adds a tier to the event. price_cents 0 makes the tier free (RSVP flow).
// @Tags tiers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param tier body CreateTierRequest true "Tier data"
// @Success 201 {object} controllers.TierSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/tiers [post]
func (c *TierController) CreateTier(w http.ResponseWriter, r *http.Request) {
	var req CreateTierRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID := r.PathValue("eventID")
	tier := domain.NewTicketTier(eventID, req.Name, req.PriceCents, req.QuantityTotal, req.MaxPerContact, time.Now())
	created, err := c.Service.CreateTier(r.Context(), eventID, userID, tier)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// ListTiersSuccessResponse is the success envelope for GET /events/{eventID}/tiers (200).
type ListTiersSuccessResponse struct {
	Data  []*domain.TicketTier `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListTiers godoc
// @Summary List an event's ticket tiers
// @Tags tiers
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.ListTiersSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/tiers [get]
func (c *TierController) ListTiers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	tiers, err := c.Service.ListTiers(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tiers)
}

// UpdateTierRequest is the request body for PATCH /events/{eventID}/tiers/{tierID}.
// Absent fields remain unchanged; clear_max_per_contact removes the cap.
type UpdateTierRequest struct {
	Name               *string `json:"name"`
	PriceCents         *int    `json:"price_cents"`
	QuantityTotal      *int    `json:"quantity_total"`
	MaxPerContact      *int    `json:"max_per_contact"`
	ClearMaxPerContact bool    `json:"clear_max_per_contact"`
}

// Validate implements Validator.
func (u UpdateTierRequest) Validate() []string {
	var errs []string
	if u.Name != nil && *u.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if u.PriceCents != nil && *u.PriceCents < 0 {
		errs = append(errs, "price_cents must not be negative")
	}
	if u.QuantityTotal != nil && *u.QuantityTotal < 1 {
		errs = append(errs, "quantity_total must be at least 1")
	}
	if u.MaxPerContact != nil && *u.MaxPerContact < 1 {
		errs = append(errs, "max_per_contact must be at least 1")
	}
	if u.MaxPerContact != nil && u.ClearMaxPerContact {
		errs = append(errs, "max_per_contact and clear_max_per_contact are mutually exclusive")
	}
	return errs
}

// UpdateTier godoc
// @Summary Update a ticket tier
// @Description quantity_total may not be reduced below what is already sold.
// @Tags tiers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param tierID path string true "Tier ID"
// @Param tier body UpdateTierRequest true "Fields to change"
// @Success 200 {object} controllers.TierSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/tiers/{tierID} [patch]
func (c *TierController) UpdateTier(w http.ResponseWriter, r *http.Request) {
	var req UpdateTierRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	upd := domain.TierUpdate{
		Name:               req.Name,
		PriceCents:         req.PriceCents,
		QuantityTotal:      req.QuantityTotal,
		MaxPerContact:      req.MaxPerContact,
		ClearMaxPerContact: req.ClearMaxPerContact,
	}
	tier, err := c.Service.UpdateTier(r.Context(), r.PathValue("eventID"), r.PathValue("tierID"), userID, upd)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tier)
}

// DeleteTier godoc
// @Summary Delete a ticket tier
// @Description Fails with a conflict when the tier has sold tickets.
// @Tags tiers
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param tierID path string true "Tier ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (tier has sold tickets)"
// @Router /events/{eventID}/tiers/{tierID} [delete]
func (c *TierController) DeleteTier(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteTier(r.Context(), r.PathValue("eventID"), r.PathValue("tierID"), userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}
