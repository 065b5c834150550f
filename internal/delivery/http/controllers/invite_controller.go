package controllers

import (
	"log/slog"
	"net/http"

	"doorlist/internal/delivery/http/helpers"
	"doorlist/internal/domain"
)

type InviteController struct {
	Logger  *slog.Logger
	Service domain.InviteService
}

func NewInviteController(logger *slog.Logger, svc domain.InviteService) *InviteController {
	return &InviteController{Logger: logger, Service: svc}
}

// SendInvitationsRequest is the request body for POST /events/{eventID}/invitations.
type SendInvitationsRequest struct {
	OnlyUninvited bool `json:"only_uninvited"`
}

// SendReportSuccessResponse is the success envelope for message fan-out endpoints (200).
type SendReportSuccessResponse struct {
	Data  *domain.SendReport `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// SendInvitations godoc
// @Summary Send invitations to the guest list
// @Description Messages each contact on its preferred channel. Per-contact failures are collected in the report; the send never aborts partway.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body SendInvitationsRequest true "Targeting scope"
// @Success 200 {object} controllers.SendReportSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/invitations [post]
func (c *InviteController) SendInvitations(w http.ResponseWriter, r *http.Request) {
	var req SendInvitationsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	report, err := c.Service.SendInvitations(r.Context(), r.PathValue("eventID"), userID, req.OnlyUninvited)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

// SendThankYou godoc
// @Summary Send thank-you messages
// @Description Messages contacts holding a confirmed or checked-in ticket.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.SendReportSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/thank-you [post]
func (c *InviteController) SendThankYou(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	report, err := c.Service.SendThankYou(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

// MessageLogResponse is the data payload for GET /events/{eventID}/messages.
type MessageLogResponse struct {
	Messages   []*domain.InvitationLog `json:"messages"`
	Pagination helpers.PaginationMeta  `json:"pagination"`
}

// MessageLogSuccessResponse is the success envelope for GET /events/{eventID}/messages (200).
type MessageLogSuccessResponse struct {
	Data  MessageLogResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListMessageLog godoc
// @Summary List the event's message audit log
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.MessageLogSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/messages [get]
func (c *InviteController) ListMessageLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	logs, total, err := c.Service.ListMessageLog(r.Context(), r.PathValue("eventID"), userID, params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MessageLogResponse{
		Messages:   logs,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}
